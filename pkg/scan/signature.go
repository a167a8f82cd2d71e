package scan

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
)

// EICAR is the standard antivirus test file content.
const EICAR = `X5O!P%@AP[4\PZX54(P^)7CC)7}$EICAR-STANDARD-ANTIVIRUS-TEST-FILE!$H+H*`

const signatureBufferSize = 32 * 1024

// SignatureScanner detects fixed byte signatures anywhere in the stream.
type SignatureScanner struct {
	names   []string
	sigs    map[string][]byte
	longest int
}

// NewSignatureScanner creates a scanner for the given name → signature map.
// A nil or empty map installs the EICAR signature.
func NewSignatureScanner(signatures map[string]string) (*SignatureScanner, error) {
	if len(signatures) == 0 {
		signatures = map[string]string{"Eicar-Test-Signature": EICAR}
	}

	s := &SignatureScanner{sigs: make(map[string][]byte, len(signatures))}
	for name, sig := range signatures {
		if sig == "" {
			return nil, fmt.Errorf("%w: %q", ErrEmptySignature, name)
		}
		s.sigs[name] = []byte(sig)
		s.names = append(s.names, name)
		s.longest = max(s.longest, len(sig))
	}
	slices.Sort(s.names)
	return s, nil
}

// Scan reads r in chunks, keeping enough overlap that a signature spanning two
// reads is still found.
func (s *SignatureScanner) Scan(ctx context.Context, r io.Reader) (Result, error) {
	buf := make([]byte, 0, signatureBufferSize+s.longest)
	chunk := make([]byte, signatureBufferSize)

	for {
		if err := ctx.Err(); err != nil {
			return Result{}, wrapCtxErr(err)
		}

		n, err := r.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			if name, ok := s.match(buf); ok {
				return Result{Verdict: Infected, Signature: name}, nil
			}
			if keep := s.longest - 1; len(buf) > keep {
				buf = append(buf[:0], buf[len(buf)-keep:]...)
			}
		}
		if err == io.EOF {
			return Result{Verdict: Clean}, nil
		}
		if err != nil {
			return Result{}, fmt.Errorf("%w: %w", ErrScanFailed, err)
		}
	}
}

func (s *SignatureScanner) match(buf []byte) (string, bool) {
	for _, name := range s.names {
		if bytes.Contains(buf, s.sigs[name]) {
			return name, true
		}
	}
	return "", false
}
