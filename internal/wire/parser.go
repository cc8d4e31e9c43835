package wire

import (
	imap "github.com/arkemlar/imapengine"
)

// Parser groups a Tokenizer's output into imap.Value trees terminated by a
// top-level CRLF.
type Parser struct {
	tok *Tokenizer
}

// NewParser builds a Parser reading tokens from tok.
func NewParser(tok *Tokenizer) *Parser {
	return &Parser{tok: tok}
}

// ParseLine consumes tokens up to the next top-level CRLF and returns the
// values found.
//
// A single scalar followed by CRLF is returned as a one-element slice; a
// sequence of scalars is returned flat; any top-level `(...)` becomes a
// single imap.List element. Unmatched `)` is a protocol error. A literal
// EOF with parentheses still open promotes the accumulated stack to the
// result instead of failing, matching real-world servers that occasionally
// drop the connection mid-response rather than sending a clean error.
func (p *Parser) ParseLine() ([]imap.Value, error) {
	stack := [][]imap.Value{{}}

	for {
		tk, err := p.tok.Next()
		if err != nil {
			if len(stack) > 1 {
				return flattenStack(stack), nil
			}
			return nil, err
		}

		switch tk.Type {
		case TokenCRLF:
			if len(stack) == 1 {
				return stack[0], nil
			}
			// A bare CRLF while lists remain open is itself a server
			// bug; tolerate it the same way as EOF rather than erroring.
			return flattenStack(stack), nil
		case TokenListOpen:
			stack = append(stack, []imap.Value{})
		case TokenListClose:
			if len(stack) == 1 {
				return nil, protoErr("wire: unexpected ')' with no matching '('")
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			stack[len(stack)-1] = append(stack[len(stack)-1], imap.List(top))
		case TokenAtom:
			stack[len(stack)-1] = append(stack[len(stack)-1], valueForAtom(tk.Data))
		case TokenQuoted, TokenLiteral:
			stack[len(stack)-1] = append(stack[len(stack)-1], imap.String(tk.Data))
		}
	}
}

func valueForAtom(data []byte) imap.Value {
	return imap.Atom(data)
}

// flattenStack collapses an unterminated nesting (EOF or bare CRLF with open
// lists) by promoting each open list's accumulated elements up one level,
// innermost first, so the caller still gets a best-effort result rather than
// nothing.
func flattenStack(stack [][]imap.Value) []imap.Value {
	for len(stack) > 1 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		stack[len(stack)-1] = append(stack[len(stack)-1], top...)
	}
	return stack[0]
}
