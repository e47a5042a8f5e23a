/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datacheck

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/datacheck/batch"
	"github.com/suparena/datacheck/errors"
	"github.com/suparena/datacheck/execution"
)

// ordersDatasource builds a datasource "shop" with a frame asset "orders"
// and a batch config "all_orders".
func ordersDatasource(t *testing.T) (*batch.Datasource, *batch.Config) {
	t.Helper()
	frame, err := execution.FrameFromColumns("orders", []string{"id", "status"}, map[string][]any{
		"id":     {1, 2, 3, 4},
		"status": {"ok", "late", "ok", "lost"},
	})
	require.NoError(t, err)
	ds := batch.NewDatasource("shop")
	asset, err := ds.AddFrameAsset("orders", frame)
	require.NoError(t, err)
	cfg, err := asset.AddBatchConfig("all_orders", nil)
	require.NoError(t, err)
	return ds, cfg
}

func TestDatasources(t *testing.T) {
	sources := NewDatasources()
	ds, _ := ordersDatasource(t)

	require.NoError(t, sources.Register(ds))
	assert.True(t, errors.IsAlreadyExists(sources.Register(ds)))
	assert.True(t, errors.IsValidationError(sources.Register(batch.NewDatasource(""))))
	require.NoError(t, sources.Register(batch.NewDatasource("archive")))
	assert.Equal(t, []string{"archive", "shop"}, sources.Names())

	got, err := sources.Get("shop")
	require.NoError(t, err)
	assert.Same(t, ds, got)

	require.NoError(t, sources.Remove("archive"))
	assert.True(t, errors.IsNotFound(sources.Remove("archive")))
	_, err = sources.Get("archive")
	assert.True(t, errors.IsNotFound(err))
}

func TestResolveBatchConfig(t *testing.T) {
	ctx := context.Background()
	sources := NewDatasources()
	ds, cfg := ordersDatasource(t)
	ds.ID = "0b6f1c1e-2d7a-4c59-9f0e-0c1d2e3f4a5b"
	require.NoError(t, sources.Register(ds))

	bundle, err := cfg.IdentifierBundle()
	require.NoError(t, err)

	got, err := sources.ResolveBatchConfig(ctx, bundle)
	require.NoError(t, err)
	assert.Same(t, cfg, got)

	tests := []struct {
		name  string
		edit  func(b *batch.IdentifierBundle)
		check func(error) bool
	}{
		{name: "unknown datasource", edit: func(b *batch.IdentifierBundle) { b.Datasource.Name = "missing" }, check: errors.IsNotFound},
		{name: "unknown asset", edit: func(b *batch.IdentifierBundle) { b.Asset.Name = "missing" }, check: errors.IsNotFound},
		{name: "unknown batch definition", edit: func(b *batch.IdentifierBundle) { b.BatchDefinition.Name = "missing" }, check: errors.IsNotFound},
		{name: "datasource id mismatch", edit: func(b *batch.IdentifierBundle) { b.Datasource.ID = "other" }, check: errors.IsIdentityConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := bundle
			tt.edit(&b)
			_, err := sources.ResolveBatchConfig(ctx, b)
			require.Error(t, err)
			assert.True(t, tt.check(err), "got %v", err)
		})
	}
}
