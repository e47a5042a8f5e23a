/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package store

import (
	"context"

	"github.com/suparena/datacheck/errors"
	"github.com/suparena/datacheck/expectation"
)

// SuiteLookup resolves suite references from a suite store.
type SuiteLookup struct {
	Suites *Store[*expectation.Suite]
}

// ResolveSuite loads the suite named name. A non-empty id must match the
// persisted one.
func (l SuiteLookup) ResolveSuite(ctx context.Context, name, id string) (*expectation.Suite, error) {
	s, err := l.Suites.Get(ctx, l.Suites.Key(name, id))
	if err != nil {
		return nil, err
	}
	if id != "" && s.ID != id {
		return nil, errors.NewIdentityConflictError(name, s.ID, id)
	}
	return s, nil
}
