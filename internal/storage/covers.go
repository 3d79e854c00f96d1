package storage

import (
	"context"
	"errors"
	"io"
)

var ErrUnsupportedImage = errors.New("unsupported image format")

// CoverStore persists book cover images and returns their public URL.
type CoverStore interface {
	Put(ctx context.Context, bookID uint, r io.Reader) (string, error)
}
