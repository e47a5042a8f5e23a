/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/suparena/datacheck/errors"
	"github.com/suparena/datacheck/storagemodels"
)

// Call records one Remote invocation
type Call struct {
	Method       string
	ResourceType storagemodels.ResourceType
	ID           string
	Body         []byte
}

// Remote is an in-memory datastore.Remote. Resources are kept per type and
// served as storagemodels envelopes, the way a resource API would.
type Remote struct {
	mu        sync.Mutex
	resources map[storagemodels.ResourceType]map[string]storagemodels.Resource
	calls     []Call
	err       error
	response  func(call Call) ([]byte, bool)
}

// NewRemote creates an empty mock Remote
func NewRemote() *Remote {
	return &Remote{
		resources: make(map[storagemodels.ResourceType]map[string]storagemodels.Resource),
	}
}

// WithError makes every operation return err
func (m *Remote) WithError(err error) *Remote {
	m.err = err
	return m
}

// WithResponse overrides payloads: when f returns true its bytes are
// returned as is, which lets tests feed malformed envelopes
func (m *Remote) WithResponse(f func(call Call) ([]byte, bool)) *Remote {
	m.response = f
	return m
}

func (m *Remote) record(c Call) ([]byte, bool, error) {
	m.calls = append(m.calls, c)
	if m.err != nil {
		return nil, true, m.err
	}
	if m.response != nil {
		if payload, ok := m.response(c); ok {
			return payload, true, nil
		}
	}
	return nil, false, nil
}

func (m *Remote) Get(_ context.Context, resourceType storagemodels.ResourceType, id string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if payload, done, err := m.record(Call{Method: "Get", ResourceType: resourceType, ID: id}); done {
		return payload, err
	}
	r, ok := m.resources[resourceType][id]
	if !ok {
		return nil, errors.NewNotFoundError(string(resourceType), id)
	}
	return storagemodels.NewEnvelope(r)
}

func (m *Remote) List(_ context.Context, resourceType storagemodels.ResourceType, opts ...storagemodels.ListOption) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if payload, done, err := m.record(Call{Method: "List", ResourceType: resourceType}); done {
		return payload, err
	}
	o := storagemodels.ApplyListOptions(opts...)
	ids := make([]string, 0, len(m.resources[resourceType]))
	for id := range m.resources[resourceType] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []storagemodels.Resource
	for _, id := range ids {
		r := m.resources[resourceType][id]
		if o.Name != "" && r.ResourceName(string(resourceType)) != o.Name {
			continue
		}
		out = append(out, r)
		if o.Limit > 0 && len(out) == o.Limit {
			break
		}
	}
	return storagemodels.NewListEnvelope(out)
}

func (m *Remote) Create(_ context.Context, resourceType storagemodels.ResourceType, body []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if payload, done, err := m.record(Call{Method: "Create", ResourceType: resourceType, Body: body}); done {
		return payload, err
	}
	r, err := decodeBody(body)
	if err != nil {
		return nil, err
	}
	r.ID = uuid.NewString()
	return m.store(resourceType, r)
}

func (m *Remote) Replace(_ context.Context, resourceType storagemodels.ResourceType, id string, body []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if payload, done, err := m.record(Call{Method: "Replace", ResourceType: resourceType, ID: id, Body: body}); done {
		return payload, err
	}
	if _, ok := m.resources[resourceType][id]; !ok {
		return nil, errors.NewNotFoundError(string(resourceType), id)
	}
	r, err := decodeBody(body)
	if err != nil {
		return nil, err
	}
	r.ID = id
	return m.store(resourceType, r)
}

func (m *Remote) Delete(_ context.Context, resourceType storagemodels.ResourceType, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, done, err := m.record(Call{Method: "Delete", ResourceType: resourceType, ID: id}); done {
		return err
	}
	if _, ok := m.resources[resourceType][id]; !ok {
		return errors.NewNotFoundError(string(resourceType), id)
	}
	delete(m.resources[resourceType], id)
	return nil
}

func (m *Remote) store(resourceType storagemodels.ResourceType, r storagemodels.Resource) ([]byte, error) {
	r.Type = resourceType
	if m.resources[resourceType] == nil {
		m.resources[resourceType] = make(map[string]storagemodels.Resource)
	}
	m.resources[resourceType][r.ID] = r
	return storagemodels.NewEnvelope(r)
}

func decodeBody(body []byte) (storagemodels.Resource, error) {
	r, err := storagemodels.ParseSingle(body)
	if err != nil {
		return r, errors.NewValidationError("body", err.Error())
	}
	return r, nil
}

// Helper methods for testing

// Calls returns the recorded invocations
func (m *Remote) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// Resource returns a stored resource
func (m *Remote) Resource(resourceType storagemodels.ResourceType, id string) (storagemodels.Resource, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.resources[resourceType][id]
	return r, ok
}

// Seed stores a resource under its id, bypassing error injection
func (m *Remote) Seed(resourceType storagemodels.ResourceType, id string, attributes map[string]json.RawMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, _ = m.store(resourceType, storagemodels.Resource{ID: id, Attributes: attributes})
}
