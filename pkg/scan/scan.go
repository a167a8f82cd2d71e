package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Verdict is the outcome of a successful scan.
type Verdict int

const (
	Clean Verdict = iota
	Infected
)

func (v Verdict) String() string {
	switch v {
	case Clean:
		return "clean"
	case Infected:
		return "infected"
	default:
		return "unknown"
	}
}

// Result is returned by a Scanner. Signature names the detection for Infected results.
type Result struct {
	Verdict   Verdict
	Signature string
}

// Infected reports whether the scanner flagged the content.
func (r Result) Infected() bool { return r.Verdict == Infected }

// Scanner inspects a content stream.
type Scanner interface {
	Scan(ctx context.Context, r io.Reader) (Result, error)
}

// ScannerFunc adapts a function to the Scanner interface.
type ScannerFunc func(ctx context.Context, r io.Reader) (Result, error)

func (f ScannerFunc) Scan(ctx context.Context, r io.Reader) (Result, error) { return f(ctx, r) }

// wrapCtxErr maps context errors to ErrTimeout so callers fail closed on a
// single sentinel.
func wrapCtxErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}
