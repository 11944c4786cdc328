package dataset

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// StorageConfig holds configuration for file storage
type StorageConfig struct {
	BasePath    string // Directory relative references resolve against
	MaxFileSize int64  // Files larger than this are refused; 0 disables the check
}

// DefaultStorageConfig returns sensible defaults
func DefaultStorageConfig() *StorageConfig {
	return &StorageConfig{
		BasePath:    "data",
		MaxFileSize: 2 * 1024 * 1024 * 1024,
	}
}

// LocalFileStorage resolves dataset and asset references on the local filesystem
type LocalFileStorage struct {
	config *StorageConfig
}

// NewLocalFileStorage creates a new local file storage instance
func NewLocalFileStorage(config *StorageConfig) *LocalFileStorage {
	if config == nil {
		config = DefaultStorageConfig()
	}
	return &LocalFileStorage{config: config}
}

// NewLocalFileStorageWithPath creates a new local file storage with a simple path
func NewLocalFileStorageWithPath(basePath string) *LocalFileStorage {
	config := DefaultStorageConfig()
	config.BasePath = basePath
	return NewLocalFileStorage(config)
}

// BasePath returns the directory relative references resolve against
func (s *LocalFileStorage) BasePath() string {
	return s.config.BasePath
}

// Resolve maps a reference to a filesystem path. Absolute paths pass through;
// a "#fragment" (sheet selector) is preserved.
func (s *LocalFileStorage) Resolve(ref string) string {
	path, frag := ref, ""
	if i := strings.LastIndex(ref, "#"); i >= 0 {
		path, frag = ref[:i], ref[i:]
	}
	if !filepath.IsAbs(path) && s.config.BasePath != "" {
		path = filepath.Join(s.config.BasePath, path)
	}
	return path + frag
}

// Check verifies a resolved reference names a readable regular file within limits
func (s *LocalFileStorage) Check(ctx context.Context, resolved string) error {
	info, err := os.Stat(stripFragment(resolved))
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", resolved, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", resolved)
	}
	if s.config.MaxFileSize > 0 && info.Size() > s.config.MaxFileSize {
		return fmt.Errorf("%s is %d bytes, limit is %d", resolved, info.Size(), s.config.MaxFileSize)
	}
	return nil
}

// GetReader returns a reader for the stored file
func (s *LocalFileStorage) GetReader(ctx context.Context, filePath string) (io.ReadCloser, error) {
	file, err := os.Open(s.Resolve(filePath))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// ReadText reads a whole text file verbatim
func (s *LocalFileStorage) ReadText(ctx context.Context, filePath string) (string, error) {
	rc, err := s.GetReader(ctx, filePath)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	return string(b), nil
}

// Exists checks if a file exists in storage
func (s *LocalFileStorage) Exists(ctx context.Context, filePath string) (bool, error) {
	_, err := os.Stat(stripFragment(s.Resolve(filePath)))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check file existence: %w", err)
	}
	return true, nil
}

// Fingerprint identifies the current file contents by size and modification time
func (s *LocalFileStorage) Fingerprint(ctx context.Context, ref string) (string, error) {
	info, err := os.Stat(stripFragment(s.Resolve(ref)))
	if err != nil {
		return "", fmt.Errorf("failed to get file info: %w", err)
	}
	return strconv.FormatInt(info.Size(), 10) + "-" + strconv.FormatInt(info.ModTime().UnixNano(), 10), nil
}

func stripFragment(path string) string {
	if i := strings.LastIndex(path, "#"); i >= 0 {
		return path[:i]
	}
	return path
}
