package wire

import (
	"bytes"
	"fmt"
	"strconv"

	imap "github.com/arkemlar/imapengine"
)

// literalThreshold is the string length above which Encoder.String prefers a
// literal over a quoted string, even when the bytes would otherwise quote
// cleanly. Keeps long strings (message bodies pasted in as APPEND data,
// long search terms) off a single absurdly long wire line.
const literalThreshold = 1024

// Encoder builds one IMAP command as a sequence of write chunks. A chunk
// that ends in a literal marker ("{n}\r\n") must be written and acknowledged
// with a "+ " continuation from the server before the next chunk is sent;
// Connection drives that handshake using NeedsContinuation.
type Encoder struct {
	chunks [][]byte
	cur    bytes.Buffer
}

// NewEncoder returns an empty Encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Lines finalizes and returns the accumulated chunks. Calling it more than
// once after further writes appends the newly written bytes as another
// chunk; it does not reset prior chunks.
func (e *Encoder) Lines() [][]byte {
	if e.cur.Len() > 0 {
		e.chunks = append(e.chunks, append([]byte(nil), e.cur.Bytes()...))
		e.cur.Reset()
	}
	return e.chunks
}

// NeedsContinuation reports whether chunk must be followed by awaiting a
// "+ " continuation response before the next chunk is written.
func NeedsContinuation(chunk []byte) bool {
	return bytes.HasSuffix(chunk, []byte("}\r\n"))
}

// Atom writes a bare token verbatim. Callers are responsible for only
// passing bytes that form a valid atom.
func (e *Encoder) Atom(s string) *Encoder {
	e.cur.WriteString(s)
	return e
}

// SP writes a single space.
func (e *Encoder) SP() *Encoder {
	e.cur.WriteByte(' ')
	return e
}

// Special writes a single punctuation byte, e.g. '(', ')', '[', ']', '<', '>'.
func (e *Encoder) Special(b byte) *Encoder {
	e.cur.WriteByte(b)
	return e
}

// CRLF terminates the command.
func (e *Encoder) CRLF() *Encoder {
	e.cur.WriteString("\r\n")
	return e
}

// NIL writes the NIL atom.
func (e *Encoder) NIL() *Encoder {
	return e.Atom("NIL")
}

// Number writes an unsigned 32-bit decimal, as used for sequence numbers,
// UIDs, and most sizes.
func (e *Encoder) Number(n uint32) *Encoder {
	return e.Atom(strconv.FormatUint(uint64(n), 10))
}

// Number64 writes a signed 64-bit decimal, as used for RFC822.SIZE and
// partial-fetch offsets.
func (e *Encoder) Number64(n int64) *Encoder {
	return e.Atom(strconv.FormatInt(n, 10))
}

// Flag writes a flag atom.
func (e *Encoder) Flag(f imap.Flag) *Encoder {
	return e.Atom(string(f))
}

// MailboxAttr writes a mailbox attribute atom.
func (e *Encoder) MailboxAttr(a imap.MailboxAttr) *Encoder {
	return e.Atom(string(a))
}

// Mailbox writes a mailbox name as a quoted string or literal, per the
// quoting rules of String.
func (e *Encoder) Mailbox(name string) *Encoder {
	return e.String(name)
}

// Quoted writes s as a double-quoted string, escaping backslashes and
// double quotes and stripping CTL bytes. It panics if s contains CR or LF;
// callers that cannot guarantee that should use String instead.
func (e *Encoder) Quoted(s string) *Encoder {
	e.cur.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\r' || c == '\n':
			panic("wire: CR/LF cannot appear in a quoted string")
		case c < 0x20 || c == 0x7f:
			// CTL bytes are silently stripped per the quoting rules.
			continue
		case c == '\\' || c == '"':
			e.cur.WriteByte('\\')
			e.cur.WriteByte(c)
		default:
			e.cur.WriteByte(c)
		}
	}
	e.cur.WriteByte('"')
	return e
}

// Literal writes data as a synchronizing literal: "{len}\r\n" followed, once
// the caller has awaited the server's "+ " continuation, by the raw bytes.
// Lines splits the chunk here so Connection can drive that handshake.
func (e *Encoder) Literal(data []byte) *Encoder {
	fmt.Fprintf(&e.cur, "{%d}\r\n", len(data))
	e.chunks = append(e.chunks, append([]byte(nil), e.cur.Bytes()...))
	e.cur.Reset()
	e.cur.Write(data)
	return e
}

// String writes s using whichever form the quoting rules call for: a quoted
// string when s is short and free of CR, LF, and NUL; a synchronizing
// literal otherwise.
func (e *Encoder) String(s string) *Encoder {
	if needsLiteral(s) {
		return e.Literal([]byte(s))
	}
	return e.Quoted(s)
}

func needsLiteral(s string) bool {
	if len(s) > literalThreshold {
		return true
	}
	for i := 0; i < len(s); i++ {
		if s[i] == '\r' || s[i] == '\n' || s[i] == 0 {
			return true
		}
	}
	return false
}

// List writes a parenthesized list, invoking fn to fill in the elements
// with spaces left to the caller.
func (e *Encoder) List(fn func(*Encoder)) *Encoder {
	e.Special('(')
	fn(e)
	e.Special(')')
	return e
}

// NumSet writes a sequence- or UID-set in its wire form: "n", "n:m",
// "n:*", or a comma-joined union of such ranges.
func (e *Encoder) NumSet(set imap.NumSet) *Encoder {
	return e.Atom(set.String())
}
