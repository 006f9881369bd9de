// mobilecart/cartstore/scope.go

package cartstore

import "context"

type contextKey struct{}

// ContextWithStore returns a new context scoped to the given store. Use
// FromContext to retrieve it.
func ContextWithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext retrieves the store from the context or panics.
func FromContext(ctx context.Context) *Store {
	if s, ok := StoreFromContext(ctx); ok {
		return s
	}
	panic("cartstore: FromContext must be used within a cart scope")
}

// StoreFromContext is the non-panicking form of FromContext.
func StoreFromContext(ctx context.Context) (*Store, bool) {
	s, ok := ctx.Value(contextKey{}).(*Store)
	if !ok || s == nil {
		return nil, false
	}
	return s, true
}
