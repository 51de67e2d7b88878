package qdrant

// NewStoreForTest creates a Store over the provided API (test-only).
func NewStoreForTest(api API) *Store {
	return &Store{api: api}
}
