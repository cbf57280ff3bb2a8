// utils/files.go - Attachment storage helpers
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UploadBasePath returns the attachment storage root.
func UploadBasePath() string {
	uploadPath := os.Getenv("UPLOAD_PATH")
	if uploadPath == "" {
		uploadPath = "./uploads"
	}
	return uploadPath
}

// GenerateStoredName builds a collision-free stored filename that keeps
// the original extension.
func GenerateStoredName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return uuid.NewString() + ext
}

// RequestFolderPath returns (and creates) the per-month folder that
// holds request attachments, e.g. uploads/requests/2025-01.
func RequestFolderPath(now time.Time) (string, error) {
	folder := filepath.Join(UploadBasePath(), "requests", now.Format("2006-01"))
	if err := os.MkdirAll(folder, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create upload folder: %w", err)
	}
	return folder, nil
}

// RemoveStoredFile deletes a stored attachment file. Used to compensate
// when the owning transaction rolls back.
func RemoveStoredFile(storedPath string) error {
	if strings.TrimSpace(storedPath) == "" {
		return nil
	}
	return os.Remove(storedPath)
}
