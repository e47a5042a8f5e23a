/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/suparena/datacheck/errors"
)

// ResourceType names a kind of persisted resource.
type ResourceType string

const (
	ResourceValidationConfig ResourceType = "validation_config"
	ResourceExpectationSuite ResourceType = "expectation_suite"
)

// Resource is one resource of a remote payload. Attributes holds the
// resource body under its attribute name, e.g. {"validation_config": {...}}.
type Resource struct {
	ID         string                     `json:"id,omitempty"`
	Type       ResourceType               `json:"type,omitempty"`
	Attributes map[string]json.RawMessage `json:"attributes,omitempty"`
}

// Envelope is the {"data": ...} document exchanged with a remote. Data is
// either a single resource or a list of them.
type Envelope struct {
	Data json.RawMessage `json:"data"`
}

// NewEnvelope wraps a single resource.
func NewEnvelope(r Resource) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode resource: %w", err)
	}
	return json.Marshal(Envelope{Data: data})
}

// NewListEnvelope wraps a list of resources.
func NewListEnvelope(rs []Resource) ([]byte, error) {
	if rs == nil {
		rs = []Resource{}
	}
	data, err := json.Marshal(rs)
	if err != nil {
		return nil, fmt.Errorf("encode resources: %w", err)
	}
	return json.Marshal(Envelope{Data: data})
}

// ParseEnvelope decodes a remote payload into its resources. A single
// resource yields a list of one.
func ParseEnvelope(payload []byte) ([]Resource, error) {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, errors.NewStoreParseError(fmt.Sprintf("invalid json: %v", err), string(payload))
	}
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, errors.NewStoreParseError("missing data", string(payload))
	}

	if data[0] == '[' {
		var rs []Resource
		if err := json.Unmarshal(data, &rs); err != nil {
			return nil, errors.NewStoreParseError(fmt.Sprintf("invalid data list: %v", err), string(payload))
		}
		return rs, nil
	}
	var r Resource
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.NewStoreParseError(fmt.Sprintf("invalid data: %v", err), string(payload))
	}
	return []Resource{r}, nil
}

// ParseSingle decodes a payload that must hold exactly one resource.
func ParseSingle(payload []byte) (Resource, error) {
	rs, err := ParseEnvelope(payload)
	if err != nil {
		return Resource{}, err
	}
	switch len(rs) {
	case 1:
		return rs[0], nil
	case 0:
		return Resource{}, errors.NewStoreParseError("empty payload", string(payload))
	default:
		return Resource{}, errors.NewStoreParseError("ambiguous payload", string(payload))
	}
}

// Attribute returns the body stored under name. The resource must carry an
// id and the attribute.
func (r Resource) Attribute(name string, payload []byte) (json.RawMessage, error) {
	if r.ID == "" {
		return nil, errors.NewStoreParseError("missing id", string(payload))
	}
	if r.Attributes == nil {
		return nil, errors.NewStoreParseError("missing attributes", string(payload))
	}
	body, ok := r.Attributes[name]
	if !ok || len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, errors.NewStoreParseError("missing "+name+" attribute", string(payload))
	}
	return body, nil
}

// ListOptions filters remote listings.
type ListOptions struct {
	// Name keeps resources whose body "name" equals Name.
	Name string
	// Limit caps the number of resources returned; 0 means no cap.
	Limit int
}

// ListOption is a functional option for listings.
type ListOption func(*ListOptions)

// WithName filters by resource name.
func WithName(name string) ListOption {
	return func(o *ListOptions) {
		o.Name = name
	}
}

// WithLimit caps the listing size.
func WithLimit(n int) ListOption {
	return func(o *ListOptions) {
		if n > 0 {
			o.Limit = n
		}
	}
}

// ApplyListOptions folds opts into a ListOptions value.
func ApplyListOptions(opts ...ListOption) ListOptions {
	var o ListOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ResourceName returns the "name" field of the body stored under attr, or
// "" when absent.
func (r Resource) ResourceName(attr string) string {
	var body struct {
		Name string `json:"name"`
	}
	if raw, ok := r.Attributes[attr]; ok {
		_ = json.Unmarshal(raw, &body)
	}
	return body.Name
}
