package wire

import (
	"bufio"
	"fmt"
	"io"

	"github.com/arkemlar/imapengine"
)

const (
	charSP     = ' '
	charCR     = '\r'
	charLF     = '\n'
	charDQuote = '"'
	charLParen = '('
	charRParen = ')'
	charLCurly = '{'
	charRCurly = '}'
	charBSlash = '\\'
)

// isAtomBreak reports whether b terminates an atom: SP, CTL, or one of the
// characters that introduce another token type.
func isAtomBreak(b byte) bool {
	if b < 0x20 || b == 0x7f {
		return true
	}
	switch b {
	case charSP, charLParen, charRParen, charLCurly, charDQuote:
		return true
	}
	return false
}

// Tokenizer is a streaming lexer over an IMAP byte stream. It never reads
// ahead further than a single token requires, except while consuming a
// literal's payload, which is read in one shot once its length is known.
type Tokenizer struct {
	r *bufio.Reader
}

// NewTokenizer wraps r. Callers own r and are responsible for timeouts;
// the tokenizer only performs blocking reads.
func NewTokenizer(r *bufio.Reader) *Tokenizer {
	return &Tokenizer{r: r}
}

// protoErr wraps err (or a new error built from format/args when err is nil)
// as a protocol-level failure.
func protoErr(format string, args ...interface{}) error {
	return imap.NewConnError(imap.ErrProtocol, fmt.Errorf(format, args...))
}

// Next reads and returns the next token. Whitespace (a single SP) between
// tokens is consumed silently; callers that need to notice doubled spaces
// don't get that signal, matching the lenient stance most IMAP
// implementations take on SP repetition.
func (t *Tokenizer) Next() (Token, error) {
	b, err := t.r.ReadByte()
	if err != nil {
		return Token{}, err
	}
	for b == charSP {
		b, err = t.r.ReadByte()
		if err != nil {
			return Token{}, err
		}
	}

	switch b {
	case charCR:
		if err := t.expect(charLF); err != nil {
			return Token{}, err
		}
		return Token{Type: TokenCRLF}, nil
	case charLParen:
		return Token{Type: TokenListOpen}, nil
	case charRParen:
		return Token{Type: TokenListClose}, nil
	case charDQuote:
		return t.readQuoted()
	case charLCurly:
		return t.readLiteral()
	default:
		if err := t.r.UnreadByte(); err != nil {
			return Token{}, err
		}
		return t.readAtom()
	}
}

func (t *Tokenizer) expect(want byte) error {
	got, err := t.r.ReadByte()
	if err != nil {
		return err
	}
	if got != want {
		return protoErr("wire: expected %q, got %q", want, got)
	}
	return nil
}

func (t *Tokenizer) readAtom() (Token, error) {
	var buf []byte
	for {
		b, err := t.r.ReadByte()
		if err != nil {
			if err == io.EOF && len(buf) > 0 {
				return Token{Type: TokenAtom, Data: buf}, nil
			}
			return Token{}, err
		}
		if isAtomBreak(b) {
			if err := t.r.UnreadByte(); err != nil {
				return Token{}, err
			}
			break
		}
		buf = append(buf, b)
	}
	if len(buf) == 0 {
		return Token{}, protoErr("wire: empty atom")
	}
	return Token{Type: TokenAtom, Data: buf}, nil
}

func (t *Tokenizer) readQuoted() (Token, error) {
	var buf []byte
	for {
		b, err := t.r.ReadByte()
		if err != nil {
			return Token{}, err
		}
		switch b {
		case charDQuote:
			return Token{Type: TokenQuoted, Data: buf}, nil
		case charCR, charLF:
			return Token{}, protoErr("wire: unescaped CR/LF in quoted string")
		case charBSlash:
			esc, err := t.r.ReadByte()
			if err != nil {
				return Token{}, err
			}
			if esc != charBSlash && esc != charDQuote {
				return Token{}, protoErr("wire: invalid escape %q in quoted string", esc)
			}
			buf = append(buf, esc)
		default:
			buf = append(buf, b)
		}
	}
}

// readLiteral handles the sequence {DIGITS[+]}CRLF<DIGITS bytes>. The
// tokenizer accepts the LITERAL+ '+' suffix (no synchronizing continuation
// expected) but does not itself decide whether to wait for "+ "; that is
// Connection's job, since it owns the write side of the handshake.
func (t *Tokenizer) readLiteral() (Token, error) {
	var digits []byte
	for {
		b, err := t.r.ReadByte()
		if err != nil {
			return Token{}, err
		}
		if b == '+' {
			continue // LITERAL+ marker, non-synchronizing; length unaffected
		}
		if b == charRCurly {
			break
		}
		if b < '0' || b > '9' {
			return Token{}, protoErr("wire: invalid literal length byte %q", b)
		}
		digits = append(digits, b)
	}
	if len(digits) == 0 {
		return Token{}, protoErr("wire: empty literal length")
	}

	var n int
	for _, d := range digits {
		n = n*10 + int(d-'0')
		if n < 0 {
			return Token{}, protoErr("wire: literal length overflow")
		}
	}

	if err := t.expect(charCR); err != nil {
		return Token{}, err
	}
	if err := t.expect(charLF); err != nil {
		return Token{}, err
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(t.r, payload); err != nil {
		return Token{}, err
	}
	return Token{Type: TokenLiteral, Data: payload}, nil
}
