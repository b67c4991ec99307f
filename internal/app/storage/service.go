/*
Package storage stores user avatars in an S3-compatible bucket.

Browsers upload directly to the bucket through short-lived presigned PUT URLs;
the server only signs URLs, checks uploaded objects and removes replaced ones.
Avatars are served from a public base URL, so no download signing is needed.
*/
package storage

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrObjectNotFound is returned when a key does not exist in the bucket.
var ErrObjectNotFound = errors.New("storage: object not found")

// ServiceConfig holds the configuration required to connect to the storage service.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string

	// PublicURL is the base URL objects are publicly readable under.
	PublicURL string
}

// ObjectInfo is the subset of object metadata the server checks.
type ObjectInfo struct {
	ContentType string
	Size        int64
}

// StorageService is the avatar storage backend.
type StorageService interface {
	// PresignUpload returns a URL that accepts one PUT of exactly fileSize bytes of mimeType.
	PresignUpload(ctx context.Context, key, mimeType string, fileSize int64, duration time.Duration) (string, error)

	// Stat returns the metadata of an uploaded object, or ErrObjectNotFound.
	Stat(ctx context.Context, key string) (ObjectInfo, error)

	// Delete removes the object under key.
	Delete(ctx context.Context, key string) error

	// PublicURL returns the public address of key.
	PublicURL(key string) string

	// KeyFromURL reverses PublicURL. It reports false for URLs outside the bucket.
	KeyFromURL(url string) (string, bool)
}

// NewStorageService returns the S3-compatible implementation of StorageService.
func NewStorageService(ctx context.Context, cfg ServiceConfig) (StorageService, error) {
	return newS3Client(ctx, cfg)
}

// publicURL joins base and key.
func publicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}

// keyFromURL strips base from url.
func keyFromURL(base, url string) (string, bool) {
	prefix := strings.TrimRight(base, "/") + "/"
	if base == "" || !strings.HasPrefix(url, prefix) {
		return "", false
	}

	key := strings.TrimPrefix(url, prefix)
	if key == "" {
		return "", false
	}
	return key, true
}
