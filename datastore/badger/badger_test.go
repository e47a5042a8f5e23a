/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/datacheck/errors"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	_, err = s.Get(ctx, "orders")
	assert.True(t, errors.IsNotFound(err))

	require.NoError(t, s.Put(ctx, "orders", []byte("v1")))
	require.NoError(t, s.Put(ctx, "customers", []byte("v2")))

	got, err := s.Get(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(got))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"customers", "orders"}, keys)

	require.NoError(t, s.Delete(ctx, "orders"))
	assert.True(t, errors.IsNotFound(s.Delete(ctx, "orders")))

	ok, err := s.Has(ctx, "orders")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNamespacesShareDatabase(t *testing.T) {
	ctx := context.Background()
	owner, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { owner.Close() })

	suites := New(owner.db, "expectation_suites")
	configs := suites.Namespace("validation_configs")

	require.NoError(t, suites.Put(ctx, "orders", []byte("suite")))
	require.NoError(t, configs.Put(ctx, "orders", []byte("config")))

	got, err := suites.Get(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, "suite", string(got))

	keys, err := configs.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"orders"}, keys)
	require.NoError(t, configs.Close(), "borrowed databases are left open")
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.True(t, errors.IsValidationError(err))
}
