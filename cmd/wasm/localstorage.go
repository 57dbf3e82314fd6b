//go:build js && wasm

package main

import (
	"context"
	"fmt"
	"syscall/js"

	"github.com/polystage/polystage/internal/store"
)

// localStorage is a store.Store over window.localStorage.
type localStorage struct{}

var _ store.Store = localStorage{}

func (localStorage) storage() js.Value {
	return js.Global().Get("localStorage")
}

func (l localStorage) Get(_ context.Context, key string) ([]byte, error) {
	v := l.storage().Call("getItem", key)
	if v.IsNull() || v.IsUndefined() {
		return nil, store.ErrNotFound
	}
	return []byte(v.String()), nil
}

// Put reports quota errors thrown by setItem.
func (l localStorage) Put(_ context.Context, key string, value []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("localStorage setItem: %v", r)
		}
	}()
	l.storage().Call("setItem", key, string(value))
	return nil
}

func (l localStorage) Delete(_ context.Context, key string) error {
	l.storage().Call("removeItem", key)
	return nil
}

func (localStorage) Close() error { return nil }
