package store

import "context"

// KV is the key-value collaborator used for lecture records, documents and
// keyword indexes. Values are JSON-encoded by the implementation; Get decodes
// into out and reports whether the key existed.
type KV interface {
	Get(ctx context.Context, key string, out any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}
