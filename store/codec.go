/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/suparena/datacheck/errors"
	"github.com/suparena/datacheck/expectation"
	"github.com/suparena/datacheck/storagemodels"
)

// canonicalJSON renders v as indented JSON with every object's keys sorted,
// so equal values always produce equal bytes.
func canonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(generic, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// SuiteCodec encodes expectation suites. Suites hold no references, so
// both modes store the full document.
type SuiteCodec struct{}

func (SuiteCodec) ResourceType() storagemodels.ResourceType {
	return storagemodels.ResourceExpectationSuite
}

func (SuiteCodec) EncodeLocal(s *expectation.Suite) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	out, err := canonicalJSON(s)
	if err != nil {
		return nil, fmt.Errorf("encode suite %s: %w", s.Name, err)
	}
	return out, nil
}

func (SuiteCodec) DecodeLocal(_ context.Context, data []byte) (*expectation.Suite, error) {
	var s expectation.Suite
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.NewStoreParseError(fmt.Sprintf("invalid suite: %v", err), string(data))
	}
	return &s, nil
}

func (SuiteCodec) EncodeCloud(s *expectation.Suite) (json.RawMessage, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(s)
}

func (c SuiteCodec) DecodeCloud(ctx context.Context, body json.RawMessage) (*expectation.Suite, error) {
	return c.DecodeLocal(ctx, body)
}
