package interfaces

import "context"

// Uploader stores and releases raw file bytes in the blob store,
// addressed by path.
type Uploader interface {
	UploadBytes(ctx context.Context, folder string, filename string, b []byte) (string, error)
	Delete(ctx context.Context, path string) error
}
