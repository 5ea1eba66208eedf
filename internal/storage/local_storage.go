package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mlhuang/tastemap-backend/config"
	"github.com/mlhuang/tastemap-backend/pkg/logger"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds the upload size limit")
	ErrInvalidFileType = errors.New("file type is not allowed")
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// LocalStorage writes uploaded images to a directory served as static files.
type LocalStorage struct {
	dir        string
	publicPath string
	maxSize    int64
}

func NewLocalStorage(cfg *config.UploadConfig) (*LocalStorage, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &LocalStorage{
		dir:        cfg.Dir,
		publicPath: cfg.PublicPath,
		maxSize:    cfg.MaxSize,
	}, nil
}

// Save stores the uploaded file under a random name and returns the public
// URL path to reference it from restaurant and profile records.
func (s *LocalStorage) Save(file *multipart.FileHeader) (string, error) {
	if file.Size > s.maxSize {
		return "", ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return "", ErrInvalidFileType
	}

	name := uuid.NewString() + ext
	dst := filepath.Join(s.dir, name)

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("write file: %w", err)
	}

	logger.Debug("File stored", map[string]interface{}{
		"file": name,
		"size": file.Size,
	})
	return s.publicPath + "/" + name, nil
}
