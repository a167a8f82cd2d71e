package scan

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

const (
	defaultChunkSize = 64 * 1024
	replyLimit       = 4096
)

// Clamd is a client for the ClamAV daemon. Each Scan opens its own connection,
// so a Clamd value is safe for concurrent use.
type Clamd struct {
	network   string
	addr      string
	chunkSize int
	dialer    net.Dialer
}

// ClamdOption configures a Clamd client.
type ClamdOption func(*Clamd)

// WithChunkSize sets the INSTREAM chunk size in bytes.
func WithChunkSize(n int) ClamdOption {
	return func(c *Clamd) {
		if n > 0 {
			c.chunkSize = n
		}
	}
}

// WithDialTimeout bounds connection establishment.
func WithDialTimeout(d time.Duration) ClamdOption {
	return func(c *Clamd) {
		c.dialer.Timeout = d
	}
}

// NewClamd creates a client for clamd listening on network ("tcp" or "unix") at addr.
func NewClamd(network, addr string, opts ...ClamdOption) *Clamd {
	if network == "" {
		network = "tcp"
	}
	c := &Clamd{network: network, addr: addr, chunkSize: defaultChunkSize}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ping checks that the daemon answers.
func (c *Clamd) Ping(ctx context.Context) error {
	reply, err := c.command(ctx, "zPING\x00", nil)
	if err != nil {
		return err
	}
	if reply != "PONG" {
		return fmt.Errorf("%w: %q", ErrUnexpectedReply, reply)
	}
	return nil
}

// Scan streams r to clamd with the INSTREAM command.
func (c *Clamd) Scan(ctx context.Context, r io.Reader) (Result, error) {
	reply, err := c.command(ctx, "zINSTREAM\x00", func(w io.Writer) error {
		return c.stream(ctx, w, r)
	})
	if err != nil {
		return Result{}, err
	}
	return parseReply(reply)
}

func (c *Clamd) command(ctx context.Context, cmd string, body func(io.Writer) error) (string, error) {
	conn, err := c.dialer.DialContext(ctx, c.network, c.addr)
	if err != nil {
		return "", fmt.Errorf("%w: dial clamd: %w", ErrScanFailed, wrapCtxErr(err))
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	if _, err := io.WriteString(conn, cmd); err != nil {
		return "", c.ioErr(ctx, "write command", err)
	}
	if body != nil {
		if err := body(conn); err != nil {
			return "", c.ioErr(ctx, "send stream", err)
		}
	}

	reply, err := bufio.NewReader(io.LimitReader(conn, replyLimit)).ReadString(0)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", c.ioErr(ctx, "read reply", err)
	}
	reply = strings.TrimRight(reply, "\x00\n")
	if reply == "" {
		return "", fmt.Errorf("%w: empty reply", ErrUnexpectedReply)
	}
	return reply, nil
}

func (c *Clamd) stream(ctx context.Context, w io.Writer, r io.Reader) error {
	buf := make([]byte, 4+c.chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := io.ReadFull(r, buf[4:])
		if n > 0 {
			binary.BigEndian.PutUint32(buf[:4], uint32(n))
			if _, werr := w.Write(buf[:4+n]); werr != nil {
				return werr
			}
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return err
		}
	}
	var terminator [4]byte
	_, err := w.Write(terminator[:])
	return err
}

func (c *Clamd) ioErr(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %s: %w", ErrScanFailed, op, wrapCtxErr(ctxErr))
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s: %w", ErrScanFailed, op, fmt.Errorf("%w: %w", ErrTimeout, err))
	}
	return fmt.Errorf("%w: %s: %w", ErrScanFailed, op, err)
}

// parseReply interprets replies of the form "stream: OK",
// "stream: <signature> FOUND" and "<reason> ERROR".
func parseReply(reply string) (Result, error) {
	body := reply
	if i := strings.Index(body, ": "); i >= 0 {
		body = body[i+2:]
	}

	switch {
	case body == "OK":
		return Result{Verdict: Clean}, nil
	case strings.HasSuffix(body, " FOUND"):
		return Result{Verdict: Infected, Signature: strings.TrimSuffix(body, " FOUND")}, nil
	case strings.Contains(body, "size limit exceeded"):
		return Result{}, fmt.Errorf("%w: %s", ErrStreamSizeLimit, body)
	case strings.HasSuffix(body, " ERROR"):
		return Result{}, fmt.Errorf("%w: %s", ErrScanFailed, strings.TrimSuffix(body, " ERROR"))
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnexpectedReply, reply)
	}
}
