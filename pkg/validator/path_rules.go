package validator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrymomot/inputguard/pkg/file"
)

// DirectoryRule resolves a path against Root. Escaping the root, lexically
// or through a symlink, is an intrusion and is detected before the filesystem
// is touched. With MustExist the target must be an existing directory. The
// filesystem check is bounded by the validator's path timeout and fails
// closed. The result is the absolute resolved path.
type DirectoryRule struct {
	Root      string
	MustExist bool
}

func (DirectoryRule) Kind() Kind { return KindDirectory }

func (r DirectoryRule) check() error {
	if r.Root == "" {
		return fmt.Errorf("%w: directory root is required", ErrInvalidRule)
	}
	return nil
}

func (r DirectoryRule) apply(c *call, text string) (any, error) {
	ctx, cancel := context.WithTimeout(c.ctx, c.v.pathTimeout)
	defer cancel()

	p, err := file.ResolveDir(ctx, r.Root, text, r.MustExist)
	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, file.ErrPathEscapesRoot):
		return nil, intrusion("path escapes the configured root")
	case errors.Is(err, file.ErrInvalidPath):
		return nil, intrusion("path contains a NUL byte")
	case errors.Is(err, file.ErrDirectoryNotFound):
		return nil, fail("validation.directory_exists", "directory does not exist", nil)
	case errors.Is(err, file.ErrNotDirectory):
		return nil, fail("validation.directory", "is not a directory", nil)
	default:
		return nil, unavailable("path resolution", err)
	}
}

const defaultFilenameLength = 255

var windowsDevices = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// FilenameRule accepts a single path element that is safe on common
// filesystems. AllowedExtensions defaults to the validator's list; an empty
// list accepts any extension.
type FilenameRule struct {
	MaxLength         int
	AllowedExtensions []string
}

func (FilenameRule) Kind() Kind { return KindFilename }

func (r FilenameRule) check() error {
	if r.MaxLength < 0 {
		return fmt.Errorf("%w: negative max length", ErrInvalidRule)
	}
	return nil
}

func (r FilenameRule) apply(c *call, name string) (any, error) {
	maxLen := r.MaxLength
	if maxLen == 0 {
		maxLen = defaultFilenameLength
	}
	if utf8.RuneCountInString(name) > maxLen {
		return nil, tooLong(maxLen)
	}
	if name == "." || name == ".." {
		return nil, fail("validation.filename", "is not a valid file name", nil)
	}

	for _, ch := range name {
		switch {
		case ch == '/' || ch == '\\':
			return nil, fail("validation.filename_separator", "must not contain path separators", nil)
		case strings.ContainsRune(`<>:"|?*`, ch):
			return nil, fail("validation.filename_reserved", "must not contain reserved characters", nil)
		case unicode.IsControl(ch):
			return nil, fail("validation.filename_control", "must not contain control characters", nil)
		}
	}

	if strings.HasSuffix(name, ".") || strings.HasSuffix(name, " ") {
		return nil, fail("validation.filename", "must not end with a dot or space", nil)
	}

	stem, _, _ := strings.Cut(name, ".")
	if windowsDevices[strings.ToUpper(strings.TrimSpace(stem))] {
		return nil, fail("validation.filename", "is a reserved device name", nil)
	}

	exts := r.AllowedExtensions
	if len(exts) == 0 {
		exts = c.v.allowedExtensions
	}
	if len(exts) > 0 && !extensionAllowed(filepath.Ext(name), exts) {
		return nil, fail("validation.filename_extension",
			"file extension must be one of: "+strings.Join(exts, ", "),
			map[string]any{"extensions": strings.Join(exts, ", ")})
	}

	return name, nil
}

func extensionAllowed(ext string, allowed []string) bool {
	ext = strings.ToLower(ext)
	if ext == "" {
		return false
	}
	for _, a := range allowed {
		a = strings.ToLower(strings.TrimSpace(a))
		if !strings.HasPrefix(a, ".") {
			a = "." + a
		}
		if a == ext {
			return true
		}
	}
	return false
}
