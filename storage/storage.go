// Package storage keeps uploaded files and generated documents in an
// S3-compatible object store.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

//go:generate mockgen -source=storage.go -destination=mocks/mock_storage.go -package=mocks

// ErrDisabled is returned by every operation of a store built without an
// endpoint.
var ErrDisabled = errors.New("object storage is not configured")

// PutObjectOptions carries the optional upload parameters. Size is -1 when
// unknown.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get streams an object. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

type disabled struct{}

// Disabled returns a Storage that rejects every call with ErrDisabled.
func Disabled() Storage {
	return disabled{}
}

func (disabled) Put(context.Context, string, io.Reader, PutObjectOptions) (ObjectInfo, error) {
	return ObjectInfo{}, ErrDisabled
}

func (disabled) Get(context.Context, string) (io.ReadCloser, ObjectInfo, error) {
	return nil, ObjectInfo{}, ErrDisabled
}

func (disabled) Delete(context.Context, string) error {
	return ErrDisabled
}

func (disabled) PresignGet(context.Context, string, time.Duration) (string, error) {
	return "", ErrDisabled
}
