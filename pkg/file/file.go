package file

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

// File describes stored content.
type File struct {
	Filename     string
	Size         int64
	MIMEType     string
	Extension    string
	Checksum     string // hex SHA-256 of the content
	AbsolutePath string // empty for remote storages
	RelativePath string
}

// Storage persists content below a storage-specific root.
type Storage interface {
	// Save writes r to path and returns the stored file's metadata.
	Save(ctx context.Context, path string, r io.Reader, mimeType string) (*File, error)
	// Delete removes a single file.
	Delete(ctx context.Context, path string) error
	// Exists reports whether a file exists.
	Exists(ctx context.Context, path string) bool
	// URL returns the public URL for a file.
	URL(path string) string
}

// Upload is a file offered for validation. Filename, ContentType and Size are
// declared by the client and are not trusted.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// FromFileHeader wraps a multipart upload.
func FromFileHeader(fh *multipart.FileHeader) *Upload {
	if fh == nil {
		return nil
	}
	return &Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// FromBytes wraps in-memory content.
func FromBytes(filename, contentType string, data []byte) *Upload {
	return &Upload{
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// FromPath wraps a file on disk. An empty contentType is sniffed from the content.
func FromPath(path, contentType string) (*Upload, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrFailedToStatPath, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}

	u := &Upload{
		Filename:    filepath.Base(path),
		ContentType: contentType,
		Size:        info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
	if u.ContentType == "" {
		if u.ContentType, err = u.DetectMIMEType(); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// Extension returns the lowercased extension including the dot.
func (u *Upload) Extension() string {
	return strings.ToLower(filepath.Ext(u.Filename))
}

// DetectMIMEType sniffs the content type from the first bytes of the content.
func (u *Upload) DetectMIMEType() (string, error) {
	rc, err := u.open()
	if err != nil {
		return "", err
	}
	defer func() { _ = rc.Close() }()
	return DetectMIMEType(rc)
}

// ActualSize counts the content bytes, reading at most limit+1 of them.
// Declared sizes can lie; the count cannot.
func (u *Upload) ActualSize(limit int64) (int64, error) {
	rc, err := u.open()
	if err != nil {
		return 0, err
	}
	defer func() { _ = rc.Close() }()

	n, err := io.Copy(io.Discard, io.LimitReader(rc, limit+1))
	if err != nil {
		return n, fmt.Errorf("%w: %v", ErrFailedToReadFile, err)
	}
	return n, nil
}

func (u *Upload) open() (io.ReadCloser, error) {
	if u == nil || u.Open == nil {
		return nil, ErrNilUpload
	}
	rc, err := u.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToOpenFile, err)
	}
	return rc, nil
}

// ValidateSize checks size against maxBytes. A non-positive maxBytes disables the check.
func ValidateSize(size, maxBytes int64) error {
	if maxBytes > 0 && size > maxBytes {
		return fmt.Errorf("file size %d bytes exceeds %d bytes limit: %w", size, maxBytes, ErrFileTooLarge)
	}
	return nil
}

// SanitizeFilename removes any path components and NUL bytes from a filename.
// Returns "unnamed" for empty or special directory references.
//
//	file.SanitizeFilename("../../../etc/passwd") // "passwd"
//	file.SanitizeFilename("C:\\Windows\\file.txt") // "file.txt"
func SanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "\\", "/")
	filename = filepath.Base(filename)
	filename = strings.ReplaceAll(filename, "\x00", "")

	if filename == "." || filename == ".." || filename == "" || filename == "/" {
		filename = "unnamed"
	}

	return filename
}
