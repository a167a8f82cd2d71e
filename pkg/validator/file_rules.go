package validator

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dmitrymomot/inputguard/pkg/file"
	"github.com/dmitrymomot/inputguard/pkg/logger"
	"github.com/dmitrymomot/inputguard/pkg/scan"
)

// FileContentRule checks an upload's declared type and size, its actual size,
// optionally that sniffed content agrees with the declared type, and finally
// asks the scanner. An empty AllowedTypes accepts any declared type. The
// result is the content.
type FileContentRule struct {
	AllowedTypes []string
	MaxSize      int64
	SniffContent bool
}

func (FileContentRule) Kind() Kind { return KindFileContent }

func (r FileContentRule) check() error {
	if r.MaxSize <= 0 {
		return fmt.Errorf("%w: file content needs a positive max size", ErrInvalidRule)
	}
	return nil
}

func (r FileContentRule) apply(c *call, _ string) (any, error) {
	return r.read(c, c.in.File)
}

func (r FileContentRule) read(c *call, u *file.Upload) ([]byte, error) {
	declared := file.BaseMIMEType(u.ContentType)
	if len(r.AllowedTypes) > 0 && !file.MatchMIMEType(declared, r.AllowedTypes...) {
		return nil, failWith(file.ErrMIMETypeNotAllowed, "validation.file_type",
			"file type must be one of: "+strings.Join(r.AllowedTypes, ", "),
			map[string]any{"types": strings.Join(r.AllowedTypes, ", ")})
	}

	tooLarge := failWith(file.ErrFileTooLarge, "validation.file_size",
		fmt.Sprintf("file must not be larger than %d bytes", r.MaxSize),
		map[string]any{"max": r.MaxSize})
	if u.Size > r.MaxSize {
		return nil, tooLarge
	}

	if u.Open == nil {
		return nil, failWith(file.ErrNilUpload, "validation.file", "file has no content", nil)
	}
	rc, err := u.Open()
	if err != nil {
		return nil, unavailable("upload", err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(io.LimitReader(rc, r.MaxSize+1))
	if err != nil {
		return nil, unavailable("upload", err)
	}
	if int64(len(data)) > r.MaxSize {
		return nil, tooLarge
	}

	if r.SniffContent {
		sniffed, err := file.DetectMIMEType(bytes.NewReader(data))
		if err != nil {
			return nil, unavailable("content sniffing", err)
		}
		if !file.ConsistentMIMEType(declared, sniffed) {
			return nil, failWith(file.ErrMIMETypeMismatch, "validation.file_mismatch",
				"file content does not match its declared type", nil)
		}
	}

	ctx, cancel := context.WithTimeout(c.ctx, c.v.scanTimeout)
	defer cancel()

	res, err := scan.Within(ctx, c.v.scanner, bytes.NewReader(data))
	if err != nil {
		return nil, unavailable("content scan", err)
	}
	if res.Infected() {
		c.v.log.WarnContext(c.ctx, "content scan rejected upload",
			slog.String("signature", res.Signature),
			slog.Int("size", len(data)),
		)
		return nil, fail("validation.file_infected", "file was rejected by the content scanner", nil)
	}

	return data, nil
}

// UploadRule validates an upload as Filename, then destination Directory,
// then Content, stopping at the first failure. The destination comes from
// Input.Text. A nil Directory treats the destination as relative to a
// storage root and only checks it lexically. The result is a *file.File
// describing where the upload would be stored.
type UploadRule struct {
	Filename  FilenameRule
	Directory *DirectoryRule
	Content   FileContentRule
}

func (UploadRule) Kind() Kind { return KindUpload }

func (r UploadRule) check() error {
	if err := r.Filename.check(); err != nil {
		return err
	}
	if r.Directory != nil {
		if err := r.Directory.check(); err != nil {
			return err
		}
	}
	return r.Content.check()
}

func (r UploadRule) apply(c *call, dir string) (any, error) {
	u := c.in.File
	name := u.Filename

	if c.canonicalize {
		var err error
		if name, err = c.canon(name); err != nil {
			return nil, err
		}
		if dir, err = c.canon(dir); err != nil {
			return nil, err
		}
	}

	if isBlank(name) {
		return nil, fail("validation.filename", "file name is required", nil)
	}
	if _, err := r.Filename.apply(c, name); err != nil {
		return nil, err
	}

	var abs, rel string
	if r.Directory != nil {
		resolved, err := r.Directory.apply(c, dir)
		if err != nil {
			return nil, err
		}
		abs = filepath.Join(resolved.(string), name)
		if root, err := filepath.Abs(r.Directory.Root); err == nil {
			if p, err := filepath.Rel(root, abs); err == nil {
				rel = filepath.ToSlash(p)
			}
		}
	} else {
		if isBlank(dir) {
			dir = "."
		}
		if !filepath.IsLocal(dir) {
			return nil, intrusion("destination escapes the storage root")
		}
		rel = filepath.ToSlash(filepath.Join(dir, name))
	}

	data, err := r.Content.read(c, u)
	if err != nil {
		return nil, err
	}
	c.content = data

	sum := sha256.Sum256(data)
	return &file.File{
		Filename:     name,
		Size:         int64(len(data)),
		MIMEType:     file.BaseMIMEType(u.ContentType),
		Extension:    strings.ToLower(filepath.Ext(name)),
		Checksum:     hex.EncodeToString(sum[:]),
		AbsolutePath: abs,
		RelativePath: rel,
	}, nil
}

func uploadLogAttrs(u *file.Upload) slog.Attr {
	if u == nil {
		return slog.Attr{}
	}
	return logger.Group("upload",
		slog.String("content_type", file.BaseMIMEType(u.ContentType)),
		slog.Int64("declared_size", u.Size),
	)
}
