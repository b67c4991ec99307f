package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"callchat/internal/pkg/errs"
)

const (
	// MaxAvatarSize is the largest accepted avatar, in bytes.
	MaxAvatarSize = 2 * 1024 * 1024

	// PresignDuration is how long an upload URL stays valid.
	PresignDuration = 5 * time.Minute

	avatarPrefix = "avatars"
)

var extToMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// ValidateAvatar checks the declared name, type and size of an avatar upload.
// The extension must agree with the MIME type.
func ValidateAvatar(fileName, mimeType string, fileSize int64) *errs.CustomError {
	if fileSize <= 0 || fileSize > MaxAvatarSize {
		return errs.NewError(errs.ErrFileTypeInvalid)
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	expected, ok := extToMIME[ext]
	if !ok || expected != strings.ToLower(mimeType) {
		return errs.NewError(errs.ErrFileTypeInvalid)
	}

	return nil
}

// ValidateUploaded checks the metadata of an object already in the bucket.
func ValidateUploaded(info ObjectInfo) *errs.CustomError {
	if info.Size <= 0 || info.Size > MaxAvatarSize {
		return errs.NewError(errs.ErrFileTypeInvalid)
	}

	for _, mime := range extToMIME {
		if strings.EqualFold(info.ContentType, mime) {
			return nil
		}
	}
	return errs.NewError(errs.ErrFileTypeInvalid)
}

// NewAvatarKey returns a fresh object key for an avatar of userID.
func NewAvatarKey(userID, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("%s/%s/%s%s", avatarPrefix, userID, uuid.NewString(), ext)
}

// OwnsAvatarKey reports whether key is an avatar key issued to userID.
func OwnsAvatarKey(userID, key string) bool {
	prefix := fmt.Sprintf("%s/%s/", avatarPrefix, userID)
	return strings.HasPrefix(key, prefix) && !strings.Contains(strings.TrimPrefix(key, prefix), "/")
}
