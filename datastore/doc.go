/*
Package datastore defines the persistence backends behind the stores.

Two interfaces cover the two store modes:

	type KeyValue interface {
	    Get(ctx context.Context, key string) ([]byte, error)
	    Put(ctx context.Context, key string, value []byte) error
	    Has(ctx context.Context, key string) (bool, error)
	    Keys(ctx context.Context) ([]string, error)
	    Delete(ctx context.Context, key string) error
	}

	type Remote interface {
	    Get(ctx context.Context, resourceType storagemodels.ResourceType, id string) ([]byte, error)
	    List(ctx context.Context, resourceType storagemodels.ResourceType, opts ...storagemodels.ListOption) ([]byte, error)
	    Create(ctx context.Context, resourceType storagemodels.ResourceType, body []byte) ([]byte, error)
	    Replace(ctx context.Context, resourceType storagemodels.ResourceType, id string, body []byte) ([]byte, error)
	    Delete(ctx context.Context, resourceType storagemodels.ResourceType, id string) error
	}

Implementations:
  - fs: one JSON file per key in a directory
  - badger: BadgerDB, on disk or in memory
  - ddb: DynamoDB single-table remote
  - mock: in-memory KeyValue and Remote with error injection for testing

Backends move bytes only; encoding is the concern of the store package.
*/
package datastore
