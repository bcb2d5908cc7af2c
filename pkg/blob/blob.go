// Package blob stores uploaded files under opaque slash-separated keys.
package blob

import (
	"context"
	"errors"
	"io"
)

// Driver identifies a storage backend
type Driver string

const (
	DriverFilesystem Driver = "fs"
	DriverS3         Driver = "s3"
	DriverMemory     Driver = "memory"
)

// ErrUnsupportedDriver is returned by Open for unknown drivers
var ErrUnsupportedDriver = errors.New("blob: unsupported driver")

// Store is the file side of the image write-through store.
// Delete of a missing key is not an error.
type Store interface {
	Driver() Driver
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
