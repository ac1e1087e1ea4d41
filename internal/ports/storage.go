package ports

import (
	"context"
	"io"
)

type ObjectStorage interface {
	// PutObject загружает файл и возвращает публичный URL
	PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}
