// Package storage uploads listing images to an S3-compatible object store.
package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// File is one uploaded image held in memory
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// ImageStorage stores an image and returns its public URL
type ImageStorage interface {
	Upload(ctx context.Context, folder string, file File) (string, error)
}

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// objectKey builds "<folder>/<uuid><ext>", preferring the extension implied by the content type
func objectKey(folder string, file File) string {
	ext, ok := extensions[file.ContentType]
	if !ok {
		ext = strings.ToLower(filepath.Ext(file.Name))
	}
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return uuid.New().String() + ext
	}
	return fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), ext)
}
