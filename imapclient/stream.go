// Package imapclient implements a synchronous IMAP4rev1 client connection:
// tagging, the literal-continuation handshake, tagged/untagged demux,
// authentication, and the IDLE push-notification flow.
//
// A Connection is not safe for concurrent use. Exactly one command may be in
// flight at a time; callers that need concurrency should serialize access
// externally or open one connection per goroutine.
package imapclient

import (
	"bufio"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"time"

	imap "github.com/arkemlar/imapengine"
)

// Stream is the byte-oriented duplex transport a Connection drives. The
// default implementation wraps a net.Conn; tests use FakeStream instead.
type Stream interface {
	io.Reader
	io.Writer

	// SetDeadline arms the next read/write's timeout. A zero time.Time
	// disables the deadline.
	SetDeadline(t time.Time) error

	// EnableTLS upgrades the stream in place, as STARTTLS requires. Any
	// bytes already buffered ahead of the upgrade point must not be lost;
	// callers are expected to have drained their read buffer into cfg's
	// handshake via a io.MultiReader before calling this, which is what
	// Connection.StartTLS does.
	EnableTLS(cfg *tls.Config, serverName string) error

	// Close tears down the transport.
	Close() error
}

// netStream adapts a net.Conn (or *tls.Conn) to Stream, tracking enough
// state to classify failures the way the error taxonomy expects.
type netStream struct {
	conn net.Conn
}

// DialTCP opens a plain TCP connection to addr.
func DialTCP(network, addr string, timeout time.Duration) (Stream, error) {
	conn, err := net.DialTimeout(network, addr, timeout)
	if err != nil {
		return nil, classifyDialErr(err)
	}
	return &netStream{conn: conn}, nil
}

// DialTLS opens a connection to addr and performs the TLS handshake before
// returning, for the "tls" transport (implicit TLS, as on port 993).
func DialTLS(network, addr string, cfg *tls.Config, timeout time.Duration) (Stream, error) {
	dialer := &net.Dialer{Timeout: timeout}
	conn, err := tls.DialWithDialer(dialer, network, addr, cfg)
	if err != nil {
		return nil, classifyDialErr(err)
	}
	return &netStream{conn: conn}, nil
}

func classifyDialErr(err error) error {
	if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
		return imap.NewConnError(imap.ErrConnectionTimedOut, err)
	}
	return imap.NewConnError(imap.ErrConnectionFailed, err)
}

func (s *netStream) Read(p []byte) (int, error)  { return s.conn.Read(p) }
func (s *netStream) Write(p []byte) (int, error) { return s.conn.Write(p) }
func (s *netStream) Close() error                { return s.conn.Close() }

func (s *netStream) SetDeadline(t time.Time) error {
	return s.conn.SetDeadline(t)
}

func (s *netStream) EnableTLS(cfg *tls.Config, serverName string) error {
	if cfg == nil {
		cfg = &tls.Config{}
	} else {
		cfg = cfg.Clone()
	}
	if cfg.ServerName == "" {
		cfg.ServerName = serverName
	}
	tlsConn := tls.Client(s.conn, cfg)
	if err := tlsConn.Handshake(); err != nil {
		return imap.NewConnError(imap.ErrConnectionFailed, err)
	}
	s.conn = tlsConn
	return nil
}

// classifyIOErr maps a raw I/O error to the connection error taxonomy, as
// Stream callers other than Dial must do themselves since io.Reader/Writer
// don't carry that classification.
func classifyIOErr(err error) error {
	if err == nil {
		return nil
	}
	if ce, ok := err.(*imap.ConnError); ok {
		return ce // already classified, e.g. a wire-level protocol error
	}
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return imap.NewConnError(imap.ErrConnectionClosed, err)
	}
	if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
		return imap.NewConnError(imap.ErrConnectionTimedOut, err)
	}
	return imap.NewConnError(imap.ErrConnectionFailed, err)
}

// FakeStream is a test double that serves a pre-scripted sequence of bytes
// to readers and discards (or records) everything written to it. It lets
// tests drive the tokenizer, parser, and Connection state machine without a
// real socket.
type FakeStream struct {
	in     *bufio.Reader
	Writes [][]byte

	tlsEnabled  bool
	tlsUpgrades int
}

// NewFakeStream returns a FakeStream that will serve script verbatim to
// readers, byte for byte, in order.
func NewFakeStream(script []byte) *FakeStream {
	return &FakeStream{in: bufio.NewReader(newSliceReader(script))}
}

// Feed appends more bytes to the pending read script, for tests that need
// to stage a continuation response after inspecting what the Connection
// wrote so far.
func (f *FakeStream) Feed(more []byte) {
	f.in = bufio.NewReader(io.MultiReader(f.in, newSliceReader(more)))
}

func (f *FakeStream) Read(p []byte) (int, error) { return f.in.Read(p) }

func (f *FakeStream) Write(p []byte) (int, error) {
	cp := make([]byte, len(p))
	copy(cp, p)
	f.Writes = append(f.Writes, cp)
	return len(p), nil
}

func (f *FakeStream) SetDeadline(t time.Time) error { return nil }

func (f *FakeStream) EnableTLS(cfg *tls.Config, serverName string) error {
	f.tlsUpgrades++
	f.tlsEnabled = true
	return nil
}

// TLSUpgrades returns how many times EnableTLS was called, so tests can
// assert STARTTLS fired exactly once.
func (f *FakeStream) TLSUpgrades() int { return f.tlsUpgrades }

func (f *FakeStream) Close() error { return nil }

type sliceReader struct {
	data []byte
	pos  int
}

func newSliceReader(data []byte) *sliceReader { return &sliceReader{data: data} }

func (r *sliceReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

var _ Stream = (*netStream)(nil)
var _ Stream = (*FakeStream)(nil)

// withDeadline is used by Connection to apply a per-call timeout without
// threading a context through the tokenizer.
func withDeadline(s Stream, timeout time.Duration, fn func() error) error {
	if timeout > 0 {
		if err := s.SetDeadline(time.Now().Add(timeout)); err != nil {
			return fmt.Errorf("imapclient: set deadline: %w", err)
		}
		defer s.SetDeadline(time.Time{})
	}
	return fn()
}
