package cartstore

import (
	"context"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/norun9/mobilecart/storage"
)

func TestFromContext(t *testing.T) {
	s := New(storage.NewLocalStorage())
	t.Cleanup(func() { _ = s.Close() })

	ctx := ContextWithStore(context.Background(), s)
	assert.True(t, FromContext(ctx) == s)

	got, ok := StoreFromContext(ctx)
	assert.True(t, ok)
	assert.True(t, got == s)
}

func TestFromContextPanicsOutsideScope(t *testing.T) {
	assert.Panics(t, func() { FromContext(context.Background()) })

	_, ok := StoreFromContext(context.Background())
	assert.False(t, ok)
}

func TestFromContextPanicsOnNilStore(t *testing.T) {
	ctx := ContextWithStore(context.Background(), nil)
	assert.Panics(t, func() { FromContext(ctx) })
}
