/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"reflect"
	"sync"
)

var (
	keyTemplates = make(map[reflect.Type]map[string]string)
	keyMu        sync.RWMutex
)

// RegisterKeyTemplate associates T with the key attributes (PK, SK, ...)
// written alongside it. Template values may reference fields of T as
// {Field}. A template without PK or SK panics.
func RegisterKeyTemplate[T any](tmpl map[string]string) {
	for _, attr := range []string{"PK", "SK"} {
		if tmpl[attr] == "" {
			panic(fmt.Sprintf("key template for %s has no %s", typeOf[T](), attr))
		}
	}
	cp := make(map[string]string, len(tmpl))
	for k, v := range tmpl {
		cp[k] = v
	}

	keyMu.Lock()
	defer keyMu.Unlock()
	keyTemplates[typeOf[T]()] = cp
}

// KeyTemplate returns the key template registered for T.
func KeyTemplate[T any]() (map[string]string, bool) {
	keyMu.RLock()
	defer keyMu.RUnlock()
	m, ok := keyTemplates[typeOf[T]()]
	return m, ok
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
