package repository

import "context"

// Persisted blob keys. The version suffix guards against silently decoding
// data written under an older schema.
const (
	KeyTasks   = "todocore_tasks_v3"
	KeyMetrics = "todocore_metrics_v3"
)

// BlobStore is the durable key-value contract the board persists through.
// Implementations store opaque string blobs; the board owns serialization.
type BlobStore interface {
	// Get returns the blob for key. The boolean is false when the key is
	// absent, which is not an error.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Clear(ctx context.Context) error
}
