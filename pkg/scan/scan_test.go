package scan_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/inputguard/pkg/scan"
)

func TestSignatureScanner(t *testing.T) {
	t.Parallel()

	s, err := scan.NewSignatureScanner(nil)
	require.NoError(t, err)

	t.Run("clean content", func(t *testing.T) {
		t.Parallel()
		res, err := s.Scan(context.Background(), strings.NewReader("hello world"))
		require.NoError(t, err)
		assert.Equal(t, scan.Clean, res.Verdict)
		assert.False(t, res.Infected())
	})

	t.Run("eicar", func(t *testing.T) {
		t.Parallel()
		res, err := s.Scan(context.Background(), strings.NewReader("prefix "+scan.EICAR+" suffix"))
		require.NoError(t, err)
		assert.Equal(t, scan.Infected, res.Verdict)
		assert.Equal(t, "Eicar-Test-Signature", res.Signature)
	})

	t.Run("signature across read boundary", func(t *testing.T) {
		t.Parallel()
		data := append(bytes.Repeat([]byte{'a'}, 32*1024-10), []byte(scan.EICAR)...)
		res, err := s.Scan(context.Background(), io.MultiReader(bytes.NewReader(data[:32*1024]), bytes.NewReader(data[32*1024:])))
		require.NoError(t, err)
		assert.True(t, res.Infected())
	})

	t.Run("cancelled context fails closed", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := s.Scan(ctx, strings.NewReader("x"))
		assert.ErrorIs(t, err, scan.ErrTimeout)
	})
}

func TestNewSignatureScanner_EmptySignature(t *testing.T) {
	t.Parallel()

	_, err := scan.NewSignatureScanner(map[string]string{"bad": ""})
	assert.ErrorIs(t, err, scan.ErrEmptySignature)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestSignatureScanner_ReadError(t *testing.T) {
	t.Parallel()

	s, err := scan.NewSignatureScanner(map[string]string{"x": "EVIL"})
	require.NoError(t, err)
	_, err = s.Scan(context.Background(), failingReader{})
	assert.ErrorIs(t, err, scan.ErrScanFailed)
}

func TestChain(t *testing.T) {
	t.Parallel()

	clean := scan.ScannerFunc(func(_ context.Context, r io.Reader) (scan.Result, error) {
		_, _ = io.Copy(io.Discard, r)
		return scan.Result{Verdict: scan.Clean}, nil
	})
	evil := scan.ScannerFunc(func(_ context.Context, r io.Reader) (scan.Result, error) {
		data, _ := io.ReadAll(r)
		if bytes.Contains(data, []byte("EVIL")) {
			return scan.Result{Verdict: scan.Infected, Signature: "Evil"}, nil
		}
		return scan.Result{Verdict: scan.Clean}, nil
	})
	broken := scan.ScannerFunc(func(context.Context, io.Reader) (scan.Result, error) {
		return scan.Result{}, scan.ErrScanFailed
	})

	t.Run("every scanner sees full content", func(t *testing.T) {
		t.Parallel()
		res, err := scan.Chain{clean, evil}.Scan(context.Background(), strings.NewReader("an EVIL file"))
		require.NoError(t, err)
		assert.Equal(t, "Evil", res.Signature)
	})

	t.Run("clean when all clean", func(t *testing.T) {
		t.Parallel()
		res, err := scan.Chain{clean, evil}.Scan(context.Background(), strings.NewReader("fine"))
		require.NoError(t, err)
		assert.Equal(t, scan.Clean, res.Verdict)
	})

	t.Run("error stops chain", func(t *testing.T) {
		t.Parallel()
		_, err := scan.Chain{broken, evil}.Scan(context.Background(), strings.NewReader("fine"))
		assert.ErrorIs(t, err, scan.ErrScanFailed)
	})

	t.Run("empty chain", func(t *testing.T) {
		t.Parallel()
		_, err := scan.Chain{}.Scan(context.Background(), strings.NewReader(""))
		assert.ErrorIs(t, err, scan.ErrNoScanners)
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	s, err := scan.New(scan.Config{})
	require.NoError(t, err)
	assert.IsType(t, &scan.SignatureScanner{}, s)

	s, err = scan.New(scan.Config{ClamdAddr: "127.0.0.1:3310", ClamdNetwork: "tcp", DialTimeout: time.Second})
	require.NoError(t, err)
	assert.IsType(t, scan.Chain{}, s)
}

func TestVerdict_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "clean", scan.Clean.String())
	assert.Equal(t, "infected", scan.Infected.String())
	assert.Equal(t, "unknown", scan.Verdict(9).String())
}

func TestWithin(t *testing.T) {
	t.Parallel()

	clean := scan.ScannerFunc(func(context.Context, io.Reader) (scan.Result, error) {
		return scan.Result{Verdict: scan.Clean}, nil
	})
	stubborn := scan.ScannerFunc(func(context.Context, io.Reader) (scan.Result, error) {
		time.Sleep(300 * time.Millisecond)
		return scan.Result{Verdict: scan.Clean}, nil
	})
	broken := scan.ScannerFunc(func(context.Context, io.Reader) (scan.Result, error) {
		return scan.Result{}, scan.ErrScanFailed
	})

	t.Run("returns scanner result in time", func(t *testing.T) {
		t.Parallel()
		res, err := scan.Within(context.Background(), clean, strings.NewReader("x"))
		require.NoError(t, err)
		assert.Equal(t, scan.Clean, res.Verdict)
	})

	t.Run("passes scanner errors through", func(t *testing.T) {
		t.Parallel()
		_, err := scan.Within(context.Background(), broken, strings.NewReader("x"))
		assert.ErrorIs(t, err, scan.ErrScanFailed)
	})

	t.Run("gives up when scanner ignores deadline", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		start := time.Now()
		res, err := scan.Within(ctx, stubborn, strings.NewReader("x"))
		assert.ErrorIs(t, err, scan.ErrTimeout)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.False(t, res.Infected())
		assert.Less(t, time.Since(start), 200*time.Millisecond)
	})

	t.Run("ended context is not scanned", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		called := false
		s := scan.ScannerFunc(func(context.Context, io.Reader) (scan.Result, error) {
			called = true
			return scan.Result{Verdict: scan.Clean}, nil
		})
		_, err := scan.Within(ctx, s, strings.NewReader("x"))
		assert.ErrorIs(t, err, scan.ErrTimeout)
		assert.False(t, called)
	})

	t.Run("late clean result is discarded", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		s := scan.ScannerFunc(func(context.Context, io.Reader) (scan.Result, error) {
			cancel()
			return scan.Result{Verdict: scan.Clean}, nil
		})
		_, err := scan.Within(ctx, s, strings.NewReader("x"))
		assert.ErrorIs(t, err, scan.ErrTimeout)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
