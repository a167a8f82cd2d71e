package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolveWithin resolves p against root and returns the absolute result.
// Absolute paths are taken as-is and must already lie below root. The result
// must stay inside root both lexically and after following symlinks of the
// existing part of the path; otherwise the error wraps ErrPathEscapesRoot.
func ResolveWithin(root, p string) (string, error) {
	absRoot, candidate, err := resolveLexical(root, p)
	if err != nil {
		return "", err
	}
	if err := checkLinks(absRoot, candidate, p); err != nil {
		return "", err
	}
	return candidate, nil
}

// ResolveDir is ResolveWithin followed, when mustExist is set, by a check that
// the target is an existing directory. Lexical escapes are reported before any
// filesystem access. Filesystem work is abandoned when ctx is done and the
// error wraps ErrOperationTimeout or ErrOperationCanceled.
func ResolveDir(ctx context.Context, root, p string, mustExist bool) (string, error) {
	absRoot, candidate, err := resolveLexical(root, p)
	if err != nil {
		return "", err
	}

	done := make(chan error, 1)
	go func() {
		if err := checkLinks(absRoot, candidate, p); err != nil {
			done <- err
			return
		}
		if mustExist {
			done <- checkDir(candidate, p)
			return
		}
		done <- nil
	}()

	select {
	case err := <-done:
		if err != nil {
			return "", err
		}
		return candidate, nil
	case <-ctx.Done():
		return "", contextError(ctx.Err(), "resolve directory")
	}
}

func resolveLexical(root, p string) (string, string, error) {
	if root == "" {
		return "", "", fmt.Errorf("%w: empty root", ErrInvalidConfig)
	}
	if strings.ContainsRune(p, 0) {
		return "", "", fmt.Errorf("%w: contains NUL byte", ErrInvalidPath)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrFailedToGetAbsolutePath, err)
	}

	var candidate string
	if filepath.IsAbs(p) {
		candidate = filepath.Clean(p)
	} else {
		candidate = filepath.Join(absRoot, p)
	}

	if !within(absRoot, candidate) {
		return "", "", fmt.Errorf("%w: %s", ErrPathEscapesRoot, filepath.Clean(p))
	}
	return absRoot, candidate, nil
}

func checkLinks(absRoot, candidate, p string) error {
	realRoot, err := evalExisting(absRoot)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToStatPath, err)
	}
	realCandidate, err := evalExisting(candidate)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToStatPath, err)
	}
	if !within(realRoot, realCandidate) {
		return fmt.Errorf("%w: %s resolves outside root", ErrPathEscapesRoot, filepath.Clean(p))
	}
	return nil
}

func checkDir(path, p string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrDirectoryNotFound, filepath.Clean(p))
		}
		return fmt.Errorf("%w: %v", ErrFailedToStatPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, filepath.Clean(p))
	}
	return nil
}

// evalExisting follows symlinks in the longest existing prefix of path and
// re-appends the part that does not exist yet.
func evalExisting(path string) (string, error) {
	for cur := path; ; {
		real, err := filepath.EvalSymlinks(cur)
		if err == nil {
			rest, _ := filepath.Rel(cur, path)
			return filepath.Join(real, rest), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return path, nil
		}
		cur = parent
	}
}

func within(root, path string) bool {
	if path == root {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(root, string(filepath.Separator))+string(filepath.Separator))
}

func contextError(err error, operation string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s operation", ErrOperationTimeout, operation)
	}
	return fmt.Errorf("%w: %s operation", ErrOperationCanceled, operation)
}
