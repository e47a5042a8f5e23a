/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package batch

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// RequestOptions select a subset of an asset's rows. Keys name columns;
// a value is either a single allowed value or a list of them.
type RequestOptions map[string]any

// Keys returns the option keys, sorted.
func (o RequestOptions) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Allowed returns the allowed values of key as a list.
func (o RequestOptions) Allowed(key string) []any {
	switch v := o[key].(type) {
	case []any:
		return v
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	default:
		return []any{v}
	}
}

// Partitioner splits a batch into partitions evaluated independently.
type Partitioner struct {
	Partitions  int `json:"partitions" yaml:"partitions" validate:"gte=1"`
	Parallelism int `json:"parallelism,omitempty" yaml:"parallelism,omitempty" validate:"gte=0"`
}

// Request identifies the batch to build from an asset.
type Request struct {
	DatasourceName string         `json:"datasource_name"`
	DataAssetName  string         `json:"data_asset_name"`
	Options        RequestOptions `json:"options,omitempty"`
	Partitioner    *Partitioner   `json:"partitioner,omitempty"`
}

// ID identifies the batch built from the request. A request with a single
// option is named after it ("path=/data/a.csv"); several options are hashed;
// no options falls back to the asset name.
func (r Request) ID() string {
	switch len(r.Options) {
	case 0:
		return r.DatasourceName + "-" + r.DataAssetName
	case 1:
		for k, v := range r.Options {
			return fmt.Sprintf("%s=%v", k, v)
		}
	}
	raw, err := json.Marshal(r.Options)
	if err != nil {
		raw = []byte(fmt.Sprint(r.Options))
	}
	sum := md5.Sum(raw)
	return hex.EncodeToString(sum[:])
}
