package catalog

import (
	"context"

	"proxydash/core/storage"
)

// SnapshotStore persists the last catalog document that parsed cleanly.
type SnapshotStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// ObjectSnapshot keeps the snapshot in object storage.
type ObjectSnapshot struct {
	Client storage.Client
	Bucket string
	Object string
}

func (s *ObjectSnapshot) Load(ctx context.Context) ([]byte, error) {
	return storage.ReadObject(ctx, s.Client, s.Bucket, s.Object)
}

func (s *ObjectSnapshot) Save(ctx context.Context, data []byte) error {
	return storage.WriteObject(ctx, s.Client, s.Bucket, s.Object, data, "application/json")
}
