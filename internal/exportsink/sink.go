// Package exportsink stores published CSV exports and hands out download URLs.
package exportsink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// Driver identifies a concrete sink implementation.
type Driver string

const (
	DriverFS     Driver = "fs"     // local filesystem (default)
	DriverMemory Driver = "memory" // in-memory (tests)
	DriverS3     Driver = "s3"     // S3 / MinIO compatible
)

// DefaultURLExpiry is used when a caller passes a non-positive expiry.
const DefaultURLExpiry = 15 * time.Minute

var (
	// ErrExists is returned when writing a key that is already stored.
	ErrExists = errors.New("export already exists")
	// ErrInvalidKey is returned for empty, absolute or escaping keys.
	ErrInvalidKey = errors.New("invalid export key")
)

// Info describes a stored export.
type Info struct {
	Key         string `json:"key"`
	Size        int64  `json:"size_bytes"`
	ContentType string `json:"content_type,omitempty"`
}

// Sink is a write-once destination for exports.
type Sink interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (Info, error)
	PresignURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	Driver() Driver
}

// Key builds the storage key of a published export.
func Key(workspaceID, schemaName string, at time.Time) string {
	return path.Join("results", workspaceID, fmt.Sprintf("%s-%s.csv", schemaName, at.UTC().Format("20060102T150405.000Z")))
}

// cleanKey rejects keys that could escape the sink's root.
func cleanKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("%w: absolute key %q", ErrInvalidKey, key)
	}
	clean := path.Clean(key)
	if clean == ".." || strings.HasPrefix(clean, "../") || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q escapes the root", ErrInvalidKey, key)
	}
	return clean, nil
}

func expiryOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultURLExpiry
	}
	return d
}
