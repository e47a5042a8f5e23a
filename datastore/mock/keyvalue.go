/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides in-memory datastore implementations for testing
package mock

import (
	"context"
	"sort"
	"sync"

	"github.com/suparena/datacheck/errors"
)

// KeyValue is an in-memory datastore.KeyValue with error injection
type KeyValue struct {
	mu          sync.RWMutex
	data        map[string][]byte
	getError    error
	putError    error
	deleteError error
	puts        int
}

// NewKeyValue creates an empty mock KeyValue
func NewKeyValue() *KeyValue {
	return &KeyValue{
		data: make(map[string][]byte),
	}
}

// WithGetError makes Get operations return an error
func (m *KeyValue) WithGetError(err error) *KeyValue {
	m.getError = err
	return m
}

// WithPutError makes Put operations return an error
func (m *KeyValue) WithPutError(err error) *KeyValue {
	m.putError = err
	return m
}

// WithDeleteError makes Delete operations return an error
func (m *KeyValue) WithDeleteError(err error) *KeyValue {
	m.deleteError = err
	return m
}

func (m *KeyValue) Get(_ context.Context, key string) ([]byte, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, errors.NewNotFoundError("key", key)
	}
	return append([]byte(nil), v...), nil
}

func (m *KeyValue) Put(_ context.Context, key string, value []byte) error {
	if m.putError != nil {
		return m.putError
	}
	if key == "" {
		return errors.NewValidationError("key", "key is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = append([]byte(nil), value...)
	m.puts++
	return nil
}

func (m *KeyValue) Has(_ context.Context, key string) (bool, error) {
	if m.getError != nil {
		return false, m.getError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *KeyValue) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *KeyValue) Delete(_ context.Context, key string) error {
	if m.deleteError != nil {
		return m.deleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data[key]; !ok {
		return errors.NewNotFoundError("key", key)
	}
	delete(m.data, key)
	return nil
}

// Helper methods for testing

// Raw returns the stored bytes of key, or nil
func (m *KeyValue) Raw(key string) []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data[key]
}

// SetRaw stores bytes directly, bypassing error injection
func (m *KeyValue) SetRaw(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

// Puts returns the number of successful Put calls
func (m *KeyValue) Puts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.puts
}

// Count returns the number of stored keys
func (m *KeyValue) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
