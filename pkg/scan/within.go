package scan

import (
	"context"
	"io"
)

// Within runs s and returns as soon as ctx ends, even when s ignores ctx. A
// result that arrives after ctx has ended is discarded and reported as
// ErrTimeout. r may still be read by the abandoned scan, so pass a reader the
// caller does not reuse.
func Within(ctx context.Context, s Scanner, r io.Reader) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, wrapCtxErr(err)
	}

	type outcome struct {
		res Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := s.Scan(ctx, r)
		done <- outcome{res: res, err: err}
	}()

	select {
	case o := <-done:
		if err := ctx.Err(); err != nil {
			return Result{}, wrapCtxErr(err)
		}
		if o.err != nil {
			return Result{}, wrapCtxErr(o.err)
		}
		return o.res, nil
	case <-ctx.Done():
		return Result{}, wrapCtxErr(ctx.Err())
	}
}
