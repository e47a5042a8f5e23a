/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/datacheck/batch"
	"github.com/suparena/datacheck/datastore/mock"
	"github.com/suparena/datacheck/errors"
	"github.com/suparena/datacheck/execution"
	"github.com/suparena/datacheck/expectation"
	"github.com/suparena/datacheck/storagemodels"
	validation "github.com/suparena/datacheck/validator"
)

type datasourceResolver struct {
	ds *batch.Datasource
}

func (r datasourceResolver) ResolveBatchConfig(_ context.Context, b batch.IdentifierBundle) (*batch.Config, error) {
	if b.Datasource.Name != r.ds.Name {
		return nil, errors.NewNotFoundError("datasource", b.Datasource.Name)
	}
	a, err := r.ds.Asset(b.Asset.Name)
	if err != nil {
		return nil, err
	}
	return a.BatchConfig(b.BatchDefinition.Name)
}

func ordersSuite() *expectation.Suite {
	return expectation.NewSuite("orders",
		expectation.NewConfiguration(expectation.ValuesNotNull, map[string]any{"column": "id"}),
		expectation.NewConfiguration(expectation.ValuesInSet, map[string]any{"column": "status", "value_set": []any{"ok", "late"}}),
	)
}

func ordersBatchConfig(t *testing.T) (*batch.Datasource, *batch.Config) {
	t.Helper()
	frame, err := execution.FrameFromColumns("orders", []string{"id", "status"}, map[string][]any{
		"id":     {1, 2, 3},
		"status": {"ok", "late", "ok"},
	})
	require.NoError(t, err)
	ds := batch.NewDatasource("shop")
	asset, err := ds.AddFrameAsset("orders", frame)
	require.NoError(t, err)
	cfg, err := asset.AddBatchConfig("all_orders", nil)
	require.NoError(t, err)
	return ds, cfg
}

func TestLocalSuiteStore(t *testing.T) {
	ctx := context.Background()
	kv := mock.NewKeyValue()
	suites := NewLocal[*expectation.Suite](kv, SuiteCodec{})
	key := suites.Key("orders", "ignored")
	assert.Equal(t, StringKey{Name: "orders"}, key)

	suite := ordersSuite()
	require.NoError(t, suites.Add(ctx, key, suite))
	require.True(t, strfmt.IsUUID(suite.ID))
	first := append([]byte(nil), kv.Raw("orders")...)

	t.Run("repeat saves are byte-identical", func(t *testing.T) {
		require.NoError(t, suites.Add(ctx, key, suite))
		assert.Equal(t, first, kv.Raw("orders"))
		assert.Equal(t, 2, kv.Puts())
	})

	t.Run("keys are sorted", func(t *testing.T) {
		doc := string(first)
		order := []string{"\n  \"expectations\"", "\n  \"id\"", "\n  \"meta\"", "\n  \"name\""}
		for i := 1; i < len(order); i++ {
			require.Contains(t, doc, order[i])
			assert.Less(t, strings.Index(doc, order[i-1]), strings.Index(doc, order[i]), doc)
		}
		assert.True(t, strings.HasSuffix(doc, "}\n"))
	})

	t.Run("identity conflicts are rejected", func(t *testing.T) {
		other := ordersSuite()
		err := suites.Add(ctx, key, other)
		require.Error(t, err)
		assert.True(t, errors.IsIdentityConflict(err))
		assert.Empty(t, other.ID)

		other.ID = "00000000-0000-4000-8000-000000000000"
		assert.True(t, errors.IsIdentityConflict(suites.Add(ctx, key, other)))
		assert.Equal(t, first, kv.Raw("orders"))
	})

	t.Run("get", func(t *testing.T) {
		got, err := suites.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, suite.ID, got.ID)
		assert.Equal(t, suite.Name, got.Name)
		assert.Len(t, got.Expectations, 2)

		_, err = suites.Get(ctx, StringKey{Name: "missing"})
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("update", func(t *testing.T) {
		version := suite.Meta.Version
		suite.Add(expectation.NewConfiguration(expectation.ValuesNotNull, map[string]any{"column": "status"}))
		require.NoError(t, suites.Update(ctx, key, suite))
		assert.Equal(t, version+1, suite.Meta.Version)

		got, err := suites.Get(ctx, key)
		require.NoError(t, err)
		assert.Len(t, got.Expectations, 3)
		assert.Equal(t, suite.ID, got.ID)

		stranger := ordersSuite()
		stranger.ID = "00000000-0000-4000-8000-000000000000"
		assert.True(t, errors.IsIdentityConflict(suites.Update(ctx, key, stranger)))
		assert.True(t, errors.IsNotFound(suites.Update(ctx, StringKey{Name: "missing"}, ordersSuite())))
	})

	t.Run("list, has, remove", func(t *testing.T) {
		require.NoError(t, suites.Add(ctx, suites.Key("customers", ""), expectation.NewSuite("customers")))
		keys, err := suites.ListKeys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []Key{StringKey{Name: "customers"}, StringKey{Name: "orders"}}, keys)

		require.NoError(t, suites.Remove(ctx, key))
		ok, err := suites.HasKey(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("wrong key kind", func(t *testing.T) {
		_, err := suites.Get(ctx, CloudIdentifier{ResourceName: "orders"})
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("invalid suites are not written", func(t *testing.T) {
		bad := expectation.NewSuite("bad", expectation.NewConfiguration("expect_unknown", nil))
		err := suites.Add(ctx, suites.Key("bad", ""), bad)
		require.Error(t, err)
		ok, err := suites.HasKey(ctx, suites.Key("bad", ""))
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestLocalValidationConfigStore(t *testing.T) {
	ctx := context.Background()
	ds, batchConfig := ordersBatchConfig(t)

	suites := NewLocal[*expectation.Suite](mock.NewKeyValue(), SuiteCodec{})
	suite := ordersSuite()
	require.NoError(t, suites.Add(ctx, suites.Key(suite.Name, ""), suite))

	kv := mock.NewKeyValue()
	configs := NewLocal[*ValidationConfig](kv, ValidationConfigCodec{
		Suites:  SuiteLookup{Suites: suites},
		Batches: datasourceResolver{ds: ds},
	})

	vc := NewValidationConfig("nightly", batchConfig, suite)
	require.NoError(t, configs.Add(ctx, configs.Key("nightly", ""), vc))
	require.True(t, strfmt.IsUUID(vc.ID))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(kv.Raw("nightly"), &doc))
	assert.Equal(t, map[string]any{"name": "orders", "id": suite.ID}, doc["suite"])
	assert.Equal(t, map[string]any{
		"datasource":       map[string]any{"name": "shop"},
		"asset":            map[string]any{"name": "orders"},
		"batch_definition": map[string]any{"name": "all_orders"},
	}, doc["data"])

	got, err := configs.Get(ctx, configs.Key("nightly", ""))
	require.NoError(t, err)
	assert.Equal(t, vc.ID, got.ID)
	assert.Same(t, batchConfig, got.Data)
	assert.Equal(t, suite.ID, got.Suite.ID)

	res, err := got.Run(ctx, nil, validation.WithMaxConcurrency(2))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "orders", res.Meta.SuiteName)

	t.Run("dangling suite reference", func(t *testing.T) {
		require.NoError(t, suites.Remove(ctx, suites.Key("orders", "")))
		_, err := configs.Get(ctx, configs.Key("nightly", ""))
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("incomplete configs are rejected", func(t *testing.T) {
		err := configs.Add(ctx, configs.Key("broken", ""), NewValidationConfig("broken", nil, suite))
		assert.True(t, errors.IsValidationError(err))
	})
}

func TestCloudSuiteStore(t *testing.T) {
	ctx := context.Background()
	remote := mock.NewRemote()
	suites := NewCloud[*expectation.Suite](remote, SuiteCodec{})
	assert.Equal(t, ModeCloud, suites.Mode())

	suite := ordersSuite()
	require.NoError(t, suites.Add(ctx, suites.Key("orders", ""), suite))
	require.True(t, strfmt.IsUUID(suite.ID))
	_, stored := remote.Resource(storagemodels.ResourceExpectationSuite, suite.ID)
	require.True(t, stored)

	t.Run("get by name and by id", func(t *testing.T) {
		byName, err := suites.Get(ctx, suites.Key("orders", ""))
		require.NoError(t, err)
		assert.Equal(t, suite.ID, byName.ID)

		byID, err := suites.Get(ctx, suites.Key("", suite.ID))
		require.NoError(t, err)
		assert.Equal(t, "orders", byID.Name)
	})

	t.Run("has key", func(t *testing.T) {
		ok, err := suites.HasKey(ctx, suites.Key("orders", ""))
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = suites.HasKey(ctx, suites.Key("missing", ""))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("update keeps the remote id", func(t *testing.T) {
		id := suite.ID
		suite.Meta.Notes = "reviewed"
		require.NoError(t, suites.Update(ctx, suites.Key("orders", ""), suite))
		assert.Equal(t, id, suite.ID)
		assert.Equal(t, 2, suite.Meta.Version)

		got, err := suites.Get(ctx, suites.Key("", id))
		require.NoError(t, err)
		assert.Equal(t, "reviewed", got.Meta.Notes)
	})

	t.Run("list keys", func(t *testing.T) {
		keys, err := suites.ListKeys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []Key{CloudIdentifier{
			ResourceType: storagemodels.ResourceExpectationSuite,
			ID:           suite.ID,
			ResourceName: "orders",
		}}, keys)
	})

	t.Run("ids must be uuids", func(t *testing.T) {
		_, err := suites.Get(ctx, suites.Key("", "not-a-uuid"))
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("fresh value under a taken name conflicts", func(t *testing.T) {
		other := ordersSuite()
		err := suites.Add(ctx, suites.Key("orders", ""), other)
		require.Error(t, err)
		assert.True(t, errors.IsIdentityConflict(err))
		assert.Empty(t, other.ID)

		keys, err := suites.ListKeys(ctx)
		require.NoError(t, err)
		assert.Len(t, keys, 1)
		got, err := suites.Get(ctx, suites.Key("orders", ""))
		require.NoError(t, err)
		assert.Equal(t, suite.ID, got.ID)
	})

	t.Run("same id overwrites", func(t *testing.T) {
		require.NoError(t, suites.Add(ctx, suites.Key("orders", ""), suite))
		keys, err := suites.ListKeys(ctx)
		require.NoError(t, err)
		assert.Len(t, keys, 1)
	})

	t.Run("remove by name", func(t *testing.T) {
		require.NoError(t, suites.Remove(ctx, suites.Key("orders", "")))
		_, err := suites.Get(ctx, suites.Key("", suite.ID))
		assert.True(t, errors.IsNotFound(err))
	})
}

func TestCloudValidationConfigStore(t *testing.T) {
	ctx := context.Background()
	ds, batchConfig := ordersBatchConfig(t)
	remote := mock.NewRemote()
	configs := NewCloud[*ValidationConfig](remote, ValidationConfigCodec{Batches: datasourceResolver{ds: ds}})

	vc := NewValidationConfig("nightly", batchConfig, ordersSuite())
	require.NoError(t, configs.Add(ctx, configs.Key("nightly", ""), vc))

	r, ok := remote.Resource(storagemodels.ResourceValidationConfig, vc.ID)
	require.True(t, ok)
	var body map[string]any
	require.NoError(t, json.Unmarshal(r.Attributes["validation_config"], &body))
	inline, isObject := body["suite"].(map[string]any)
	require.True(t, isObject)
	assert.Equal(t, "orders", inline["name"])
	assert.Len(t, inline["expectations"], 2)

	got, err := configs.Get(ctx, configs.Key("nightly", ""))
	require.NoError(t, err)
	assert.Equal(t, vc.ID, got.ID)
	assert.Same(t, batchConfig, got.Data)
	assert.Len(t, got.Suite.Expectations, 2)
}

func TestCloudPayloadErrors(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		payload string
		reason  string
	}{
		{name: "empty list", payload: `{"data": []}`, reason: "empty payload"},
		{name: "several items", payload: `{"data": [{"id": "a", "attributes": {}}, {"id": "b", "attributes": {}}]}`, reason: "ambiguous payload"},
		{name: "missing id", payload: `{"data": {"attributes": {"validation_config": {}}}}`, reason: "missing id"},
		{name: "missing attributes", payload: `{"data": {"id": "a"}}`, reason: "missing attributes"},
		{name: "missing config attribute", payload: `{"data": [{"id": "a", "attributes": {"other": {}}}]}`, reason: "missing validation_config attribute"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := mock.NewRemote().WithResponse(func(mock.Call) ([]byte, bool) {
				return []byte(tt.payload), true
			})
			configs := NewCloud[*ValidationConfig](remote, ValidationConfigCodec{})

			_, err := configs.Get(ctx, configs.Key("nightly", ""))
			require.Error(t, err)
			var perr *errors.StoreParseError
			require.True(t, errors.As(err, &perr), "got %v", err)
			assert.Equal(t, tt.reason, perr.Reason)
			assert.Contains(t, err.Error(), tt.payload)
			assert.Len(t, remote.Calls(), 1, "parse failures are not retried")
		})
	}
}

func TestCanonicalJSON(t *testing.T) {
	out, err := canonicalJSON(map[string]any{"b": 1, "a": map[string]any{"d": 12345678901234567, "c": true}})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": {\n    \"c\": true,\n    \"d\": 12345678901234567\n  },\n  \"b\": 1\n}\n", string(out))
}

const accountsSuiteID = "6f1c2b1e-8a57-4d8e-9d0e-2f4f1a6b7c8d"

func accountsSuite() *expectation.Suite {
	s := expectation.NewSuite("accounts",
		expectation.NewConfiguration(expectation.ValuesInSet, map[string]any{
			"column":    "account_id",
			"value_set": []any{int64(12345678901234567), int64(9007199254740993)},
			"mostly":    0.5,
		}),
		expectation.Configuration{
			Type:   expectation.ColumnMaxBetween,
			Kwargs: map[string]any{"column": "balance", "min_value": 0, "max_value": 1.5e12},
			Meta:   map[string]any{"owner": map[string]any{"team": "ledger", "priority": 3}},
		},
	)
	s.ID = accountsSuiteID
	return s
}

func accountsBatchConfig(t *testing.T) (*batch.Datasource, *batch.Config) {
	t.Helper()
	frame, err := execution.FrameFromColumns("accounts", []string{"account_id", "balance"}, map[string][]any{
		"account_id": {int64(12345678901234567), int64(9007199254740993), int64(12345678901234568)},
		"balance":    {10.0, 20.5, 30.0},
	})
	require.NoError(t, err)
	ds := batch.NewDatasource("bank")
	asset, err := ds.AddFrameAsset("accounts", frame)
	require.NoError(t, err)
	cfg, err := asset.AddBatchConfig("all_accounts", nil)
	require.NoError(t, err)
	return ds, cfg
}

func TestCodecRoundTrip(t *testing.T) {
	ctx := context.Background()
	ds, batchConfig := accountsBatchConfig(t)

	t.Run("local suite", func(t *testing.T) {
		codec := SuiteCodec{}
		first, err := codec.EncodeLocal(accountsSuite())
		require.NoError(t, err)
		assert.Contains(t, string(first), "12345678901234567")
		assert.Contains(t, string(first), "9007199254740993")

		decoded, err := codec.DecodeLocal(ctx, first)
		require.NoError(t, err)
		second, err := codec.EncodeLocal(decoded)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(second))
	})

	t.Run("cloud suite", func(t *testing.T) {
		codec := SuiteCodec{}
		first, err := codec.EncodeCloud(accountsSuite())
		require.NoError(t, err)
		decoded, err := codec.DecodeCloud(ctx, first)
		require.NoError(t, err)
		second, err := codec.EncodeCloud(decoded)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(second))
	})

	t.Run("local validation config", func(t *testing.T) {
		suites := NewLocal[*expectation.Suite](mock.NewKeyValue(), SuiteCodec{})
		suite := accountsSuite()
		require.NoError(t, suites.Add(ctx, suites.Key(suite.Name, ""), suite))
		codec := ValidationConfigCodec{Suites: SuiteLookup{Suites: suites}, Batches: datasourceResolver{ds: ds}}

		vc := NewValidationConfig("ledger", batchConfig, suite)
		vc.ID = "0b7e6a52-3c1d-4f0a-8e2b-5d9c7a1f4e63"
		first, err := codec.EncodeLocal(vc)
		require.NoError(t, err)
		decoded, err := codec.DecodeLocal(ctx, first)
		require.NoError(t, err)
		second, err := codec.EncodeLocal(decoded)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(second))
	})

	t.Run("cloud validation config", func(t *testing.T) {
		codec := ValidationConfigCodec{Batches: datasourceResolver{ds: ds}}
		vc := NewValidationConfig("ledger", batchConfig, accountsSuite())
		first, err := codec.EncodeCloud(vc)
		require.NoError(t, err)
		decoded, err := codec.DecodeCloud(ctx, first)
		require.NoError(t, err)
		second, err := codec.EncodeCloud(decoded)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(second))
	})
}

func TestReloadedSuiteChecksSameRows(t *testing.T) {
	ctx := context.Background()
	_, batchConfig := accountsBatchConfig(t)
	suites := NewLocal[*expectation.Suite](mock.NewKeyValue(), SuiteCodec{})
	require.NoError(t, suites.Add(ctx, suites.Key("accounts", ""), accountsSuite()))

	got, err := suites.Get(ctx, suites.Key("accounts", ""))
	require.NoError(t, err)

	res, err := validation.New(batchConfig).ValidateExpectation(ctx, got.Expectations[0], nil)
	require.NoError(t, err)
	require.False(t, res.Raised(), "%v", res.Err)
	require.NotNil(t, res.Result.UnexpectedCount)
	assert.Equal(t, 1, *res.Result.UnexpectedCount)
	assert.Equal(t, []any{int64(12345678901234568)}, res.Result.PartialUnexpectedList)
}

func TestCloudPayloadShapes(t *testing.T) {
	ctx := context.Background()
	body, err := SuiteCodec{}.EncodeCloud(accountsSuite())
	require.NoError(t, err)
	resource := fmt.Sprintf(`{"id": %q, "type": "expectation_suite", "attributes": {"expectation_suite": %s}}`, accountsSuiteID, body)

	get := func(payload string) *expectation.Suite {
		remote := mock.NewRemote().WithResponse(func(mock.Call) ([]byte, bool) {
			return []byte(payload), true
		})
		suites := NewCloud[*expectation.Suite](remote, SuiteCodec{})
		got, err := suites.Get(ctx, suites.Key("accounts", ""))
		require.NoError(t, err, payload)
		return got
	}

	single := get(`{"data": ` + resource + `}`)
	list := get(`{"data": [` + resource + `]}`)
	assert.Equal(t, single, list)
	assert.Equal(t, accountsSuiteID, single.ID)
	valueSet, ok := single.Expectations[0].Kwargs["value_set"].([]any)
	require.True(t, ok)
	assert.Equal(t, json.Number("12345678901234567"), valueSet[0])
}
