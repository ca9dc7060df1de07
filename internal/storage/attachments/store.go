// Package attachments keeps files uploaded with notes.
package attachments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mamadbah2/herdbook/internal/config"
)

// ErrNotFound is returned when no object exists under a key.
var ErrNotFound = errors.New("attachment not found")

// Info describes a stored object.
type Info struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// Store persists attachment bodies by key.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	// Delete removes the object and reports whether it existed.
	Delete(ctx context.Context, key string) (bool, error)
}

// NewKey builds a unique object key that keeps the upload's extension.
func NewKey(farmID uint, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("farms/%d/notes/%s%s", farmID, uuid.NewString(), ext)
}

// Open selects the store configured for the process.
func Open(ctx context.Context, cfg config.AttachmentsConfig) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "memory":
		return NewMemory(), nil
	case "s3":
		store, err := NewS3(ctx, S3Config{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			PathStyle: cfg.PathStyle,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported attachments driver %q", cfg.Driver)
	}
}
