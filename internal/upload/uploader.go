// Package upload validates and stores PDF files handed in by the HTTP layer.
// The ingestion core receives only paths that passed validation here.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// MaxFileSize caps uploads at 50MB.
	MaxFileSize = 50 << 20
)

var (
	ErrNoFile       = errors.New("no file provided")
	ErrNotPDF       = errors.New("only PDF files are accepted")
	ErrTooLarge     = errors.New("file exceeds the maximum allowed size")
	ErrFileNotFound = errors.New("file not found")
)

// FileInfo describes one stored document file.
type FileInfo struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Modified string `json:"modified"`
}

type Uploader struct {
	dir     string
	maxSize int64
}

// NewUploader ensures the upload directory exists.
func NewUploader(dir string, maxSize int64) (*Uploader, error) {
	if maxSize <= 0 {
		maxSize = MaxFileSize
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory %q failed: %w", dir, err)
	}
	return &Uploader{dir: dir, maxSize: maxSize}, nil
}

// Validate checks the file before any bytes are written.
func (u *Uploader) Validate(header *multipart.FileHeader) error {
	if header == nil || header.Filename == "" {
		return ErrNoFile
	}
	if strings.ToLower(filepath.Ext(header.Filename)) != ".pdf" {
		return ErrNotPDF
	}
	if header.Size > u.maxSize {
		return ErrTooLarge
	}
	return nil
}

// Save writes the uploaded file into the upload directory and returns the
// stored name and absolute path. The base name is kept as the stable
// external document key.
func (u *Uploader) Save(header *multipart.FileHeader) (string, string, error) {
	if err := u.Validate(header); err != nil {
		return "", "", err
	}

	name := filepath.Base(header.Filename)
	dst := filepath.Join(u.dir, name)

	src, err := header.Open()
	if err != nil {
		return "", "", fmt.Errorf("open uploaded file failed: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", "", fmt.Errorf("create %q failed: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return "", "", fmt.Errorf("write %q failed: %w", dst, err)
	}
	return name, dst, nil
}

// List returns the stored PDF files, newest first.
func (u *Uploader) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(u.dir)
	if err != nil {
		return nil, fmt.Errorf("read upload directory failed: %w", err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || strings.ToLower(filepath.Ext(entry.Name())) != ".pdf" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Name:     entry.Name(),
			Path:     filepath.Join(u.dir, entry.Name()),
			Size:     info.Size(),
			Modified: info.ModTime().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Modified > files[j].Modified })
	return files, nil
}

// Delete removes a stored file by name.
func (u *Uploader) Delete(name string) error {
	path := filepath.Join(u.dir, filepath.Base(name))
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return ErrFileNotFound
		}
		return fmt.Errorf("stat %q failed: %w", path, err)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete %q failed: %w", path, err)
	}
	return nil
}
