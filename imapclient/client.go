package imapclient

import (
	"bufio"
	"crypto/tls"
	"fmt"
	"io"
	"time"

	imap "github.com/arkemlar/imapengine"
	"github.com/arkemlar/imapengine/internal/wire"
)

// Options configures a Connection beyond the bare transport.
type Options struct {
	// TLSConfig is used for the "tls" transport and for STARTTLS upgrades.
	// A nil value means crypto/tls's zero-value default.
	TLSConfig *tls.Config

	// TraceWriter, if set, receives a copy of every byte read from and
	// written to the wire: each read chunk and each written chunk becomes
	// one Go-quoted entry prefixed "<- " or "-> ". Intended for protocol
	// debugging, not machine parsing.
	TraceWriter io.Writer

	// Timeout bounds every individual read or write. Zero means no
	// deadline is applied.
	Timeout time.Duration
}

// Connection is a single IMAP session: one transport, one pending command
// at a time, one selected mailbox. It is not safe for concurrent use.
type Connection struct {
	stream Stream
	br     *bufio.Reader
	parser *wire.Parser
	tags   tagGenerator
	opts   Options

	state       imap.ConnState
	caps        imap.CapSet
	mailbox     string
	mailboxMode imap.SelectOptions
	idleTag     string

	// notifications holds untagged frames that arrived during an
	// AUTHENTICATE exchange. No method of Connection returns them.
	notifications []frame
}

// Dial opens transport to addr ("host:port") and performs the handshake
// appropriate to transport: "tcp" (plain, STARTTLS optional later), "tls"
// (implicit TLS), or "starttls" (plain then immediately negotiate
// STARTTLS).
func Dial(transport, addr string, opts Options) (*Connection, error) {
	var (
		stream Stream
		err    error
	)
	switch transport {
	case "tcp", "starttls":
		stream, err = DialTCP("tcp", addr, opts.Timeout)
	case "tls", "ssl":
		stream, err = DialTLS("tcp", addr, opts.TLSConfig, opts.Timeout)
	default:
		return nil, imap.NewConnError(imap.ErrConnectionFailed, fmt.Errorf("imapclient: unknown transport %q", transport))
	}
	if err != nil {
		return nil, err
	}

	c, err := New(stream, opts)
	if err != nil {
		stream.Close()
		return nil, err
	}

	if transport == "starttls" {
		host := addr
		if h, _, splitErr := splitHostPort(addr); splitErr == nil {
			host = h
		}
		if err := c.StartTLS(host); err != nil {
			c.stream.Close()
			return nil, err
		}
	}
	return c, nil
}

func splitHostPort(addr string) (string, string, error) {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[:i], addr[i+1:], nil
		}
	}
	return addr, "", fmt.Errorf("imapclient: no port in address %q", addr)
}

// New wraps an already-connected Stream and reads the server's opening
// greeting. The greeting must be "* OK ..." (NotAuthenticated) or
// "* PREAUTH ..." (Authenticated); anything else is ConnectionFailed.
func New(stream Stream, opts Options) (*Connection, error) {
	c := &Connection{
		stream: stream,
		br:     bufio.NewReader(&tracedReader{r: stream, w: opts.TraceWriter}),
		opts:   opts,
		state:  imap.ConnStateGreeting,
		caps:   make(imap.CapSet),
	}
	c.parser = newParser(c.br)

	fr, err := c.withTimeout(c.readFrame)
	if err != nil {
		return nil, imap.NewConnError(imap.ErrConnectionFailed, err)
	}
	if fr.Kind != frameUntagged || len(fr.Values) == 0 {
		return nil, imap.NewConnError(imap.ErrConnectionFailed, fmt.Errorf("imapclient: malformed greeting"))
	}

	switch fr.Values[0].String() {
	case "OK":
		c.state = imap.ConnStateNotAuthenticated
	case "PREAUTH":
		c.state = imap.ConnStateAuthenticated
	case "BYE":
		return nil, imap.NewConnError(imap.ErrConnectionFailed, fmt.Errorf("imapclient: server refused connection"))
	default:
		return nil, imap.NewConnError(imap.ErrConnectionFailed, fmt.Errorf("imapclient: unexpected greeting status %q", fr.Values[0]))
	}
	applyCapsHint(c, fr.Values[1:])
	return c, nil
}

// State reports the connection's current lifecycle state.
func (c *Connection) State() imap.ConnState { return c.state }

// Mailbox reports the name of the currently selected mailbox, or "" if
// none is selected.
func (c *Connection) Mailbox() string { return c.mailbox }

// Caps reports the capability set last learned from the server, via the
// greeting's CAPABILITY response code or an explicit Capability() call.
// CAPABILITY response codes on later tagged responses are not applied.
func (c *Connection) Caps() imap.CapSet { return c.caps }

// StartTLS negotiates STARTTLS on an already-open plaintext connection and
// upgrades the Stream in place. serverName is used for certificate
// verification when opts.TLSConfig.ServerName is unset.
func (c *Connection) StartTLS(serverName string) error {
	if c.state != imap.ConnStateNotAuthenticated {
		return imap.NewConnError(imap.ErrProtocol, fmt.Errorf("imapclient: STARTTLS only valid before authentication"))
	}

	enc := wire.NewEncoder()
	tag := c.tags.next()
	enc.Atom(tag).SP().Atom("STARTTLS").CRLF()

	_, status, _, err := c.execute(tag, enc)
	if err != nil {
		return err
	}
	if status.Type != imap.StatusResponseTypeOK {
		return &imap.ServerError{Type: status.Type, Code: status.Code, Text: status.Text}
	}

	// Any bytes already buffered past the tagged OK belong to the TLS
	// handshake itself; draining them into the handshake reader (rather
	// than discarding c.br) is what lets STARTTLS upgrade mid-stream
	// without losing already-read server bytes.
	buffered, _ := c.br.Peek(c.br.Buffered())
	leftover := append([]byte(nil), buffered...)

	if err := c.stream.EnableTLS(c.opts.TLSConfig, serverName); err != nil {
		return err
	}

	combined := io.MultiReader(newBytesReader(leftover), c.stream)
	c.br = bufio.NewReader(&tracedReader{r: readerFunc(combined.Read), w: c.opts.TraceWriter})
	c.parser = newParser(c.br)
	c.caps = make(imap.CapSet) // capabilities must be re-queried post-STARTTLS
	return nil
}

type readerFunc func(p []byte) (int, error)

func (f readerFunc) Read(p []byte) (int, error) { return f(p) }

func newBytesReader(b []byte) io.Reader {
	return &sliceReader{data: b}
}

// Close abandons the connection without attempting LOGOUT. Prefer Logout
// for a clean shutdown; Close is for the abortive path (stream already
// judged dead).
func (c *Connection) Close() error {
	c.state = imap.ConnStateLoggedOut
	return c.stream.Close()
}

func (c *Connection) withTimeout(fn func() (frame, error)) (frame, error) {
	var (
		fr  frame
		err error
	)
	werr := withDeadline(c.stream, c.opts.Timeout, func() error {
		fr, err = fn()
		return err
	})
	if werr != nil && err == nil {
		err = werr
	}
	return fr, err
}

// tracedReader tees every Read through w, if set, without altering what the
// underlying reader returns.
type tracedReader struct {
	r io.Reader
	w io.Writer
}

func (t *tracedReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if n > 0 && t.w != nil {
		fmt.Fprintf(t.w, "<- %q\n", p[:n])
	}
	return n, err
}

// applyCapsHint updates c.caps when a response's trailing tokens include a
// bracketed CAPABILITY list, as greetings and some tagged OKs do:
// "* OK [CAPABILITY IMAP4rev1 IDLE] ready".
func applyCapsHint(c *Connection, rest []imap.Value) {
	code, args := extractResponseCode(rest)
	if code != "CAPABILITY" {
		return
	}
	caps := make(imap.CapSet, len(args))
	for _, v := range args {
		caps[imap.Cap(v.String())] = struct{}{}
	}
	c.caps = caps
}
