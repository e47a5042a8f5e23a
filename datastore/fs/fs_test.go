/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/datacheck/errors"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s, err := New(filepath.Join(t.TempDir(), "validation_configs"))
	require.NoError(t, err)

	_, err = s.Get(ctx, "nightly")
	assert.True(t, errors.IsNotFound(err))

	require.NoError(t, s.Put(ctx, "nightly", []byte(`{"a":1}`)))
	require.NoError(t, s.Put(ctx, "orders/daily", []byte(`{"b":2}`)))
	require.NoError(t, s.Put(ctx, "nightly", []byte(`{"a":2}`)))

	got, err := s.Get(ctx, "nightly")
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(got))

	ok, err := s.Has(ctx, "orders/daily")
	require.NoError(t, err)
	assert.True(t, ok)

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"nightly", "orders/daily"}, keys)

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temporary files left behind")

	require.NoError(t, s.Delete(ctx, "nightly"))
	assert.True(t, errors.IsNotFound(s.Delete(ctx, "nightly")))
	ok, err = s.Has(ctx, "nightly")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewRequiresDir(t *testing.T) {
	_, err := New("")
	assert.True(t, errors.IsValidationError(err))
}
