/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/datacheck/storagemodels"
)

// KeyValue is a local byte store. Get and Delete return an
// errors.NotFoundError for absent keys.
type KeyValue interface {
	Get(ctx context.Context, key string) ([]byte, error)

	Put(ctx context.Context, key string, value []byte) error

	Has(ctx context.Context, key string) (bool, error)

	// Keys lists the stored keys in ascending order.
	Keys(ctx context.Context) ([]string, error)

	Delete(ctx context.Context, key string) error
}

// Remote is a resource API speaking storagemodels envelopes. Every method
// returning a payload returns the raw envelope as received, so callers own
// parsing and its errors.
type Remote interface {
	// Get fetches one resource by id.
	Get(ctx context.Context, resourceType storagemodels.ResourceType, id string) ([]byte, error)

	// List fetches the resources of a type as a list envelope.
	List(ctx context.Context, resourceType storagemodels.ResourceType, opts ...storagemodels.ListOption) ([]byte, error)

	// Create stores a new resource and returns it with its assigned id.
	Create(ctx context.Context, resourceType storagemodels.ResourceType, body []byte) ([]byte, error)

	// Replace overwrites the resource with the given id.
	Replace(ctx context.Context, resourceType storagemodels.ResourceType, id string, body []byte) ([]byte, error)

	Delete(ctx context.Context, resourceType storagemodels.ResourceType, id string) error
}
