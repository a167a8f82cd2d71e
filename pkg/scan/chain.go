package scan

import (
	"bytes"
	"context"
	"fmt"
	"io"
)

// Chain runs scanners in order against the same content. The first Infected
// result or error stops the chain. Content is buffered once so every scanner
// sees the full stream.
type Chain []Scanner

func (c Chain) Scan(ctx context.Context, r io.Reader) (Result, error) {
	if len(c) == 0 {
		return Result{}, ErrNoScanners
	}
	if len(c) == 1 {
		return c[0].Scan(ctx, r)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrScanFailed, err)
	}

	for _, s := range c {
		res, err := s.Scan(ctx, bytes.NewReader(data))
		if err != nil {
			return Result{}, err
		}
		if res.Infected() {
			return res, nil
		}
	}
	return Result{Verdict: Clean}, nil
}
