/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/datacheck/errors"
)

func TestRegistry(t *testing.T) {
	r := New[int]("widget")

	require.NoError(t, r.Register("b", 2))
	require.NoError(t, r.Register("a", 1))

	t.Run("Get", func(t *testing.T) {
		v, err := r.Get("a")
		require.NoError(t, err)
		assert.Equal(t, 1, v)

		_, err = r.Get("missing")
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("Duplicate", func(t *testing.T) {
		err := r.Register("a", 3)
		assert.True(t, errors.IsAlreadyExists(err))
		assert.Panics(t, func() { r.MustRegister("b", 4) })

		v, _ := r.Get("a")
		assert.Equal(t, 1, v)
	})

	t.Run("EmptyName", func(t *testing.T) {
		assert.True(t, errors.IsValidationError(r.Register("", 0)))
	})

	assert.Equal(t, []string{"a", "b"}, r.Names())
	assert.True(t, r.Has("b"))
	assert.False(t, r.Has("c"))
}

type keyed struct {
	Type string
	ID   string
}

func TestKeyTemplate(t *testing.T) {
	_, ok := KeyTemplate[keyed]()
	assert.False(t, ok)

	tmpl := map[string]string{"PK": "RESOURCE#{Type}", "SK": "ID#{ID}"}
	RegisterKeyTemplate[keyed](tmpl)
	tmpl["PK"] = "changed"

	got, ok := KeyTemplate[keyed]()
	require.True(t, ok)
	assert.Equal(t, "RESOURCE#{Type}", got["PK"])

	_, ok = KeyTemplate[*keyed]()
	assert.False(t, ok)

	assert.Panics(t, func() {
		RegisterKeyTemplate[struct{ X int }](map[string]string{"PK": "X"})
	})
}
