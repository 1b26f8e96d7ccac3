// Package storage keeps compliance documents in an S3-compatible object store.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"
)

// MaxDocumentSize is the largest compliance document accepted for upload.
const MaxDocumentSize = 10 << 20

// PresignExpiry is how long a document download link stays valid.
const PresignExpiry = 15 * time.Minute

var documentExtensions = map[string]string{
	"application/pdf": ".pdf",
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
}

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; -1 lets the backend chunk the stream.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about a stored object.
type ObjectInfo struct {
	Key         string
	Size        int64
	ETag        string
	ContentType string
}

// Storage is the object store used for compliance documents.
type Storage interface {
	// Put uploads an object under the given key using streaming I/O.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited download URL.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	// Ping reports whether the bucket is reachable.
	Ping(ctx context.Context) error
}

// DocumentExtension returns the file extension for an accepted document content type.
func DocumentExtension(contentType string) (string, bool) {
	ext, ok := documentExtensions[contentType]
	return ext, ok
}

// ComplianceKey builds the object key compliance/<agency>/<type>/<id><ext>.
func ComplianceKey(agencyID, complianceType, id, ext string) string {
	return fmt.Sprintf("compliance/%s/%s/%s%s", agencyID, complianceType, id, ext)
}
