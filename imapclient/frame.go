package imapclient

import (
	"bufio"
	"fmt"

	imap "github.com/arkemlar/imapengine"
	"github.com/arkemlar/imapengine/internal/wire"
)

// frameKind is the leading-token classification of a response line.
type frameKind int

const (
	frameUntagged frameKind = iota
	frameContinuation
	frameTagged
)

func (k frameKind) String() string {
	switch k {
	case frameUntagged:
		return "untagged"
	case frameContinuation:
		return "continuation"
	case frameTagged:
		return "tagged"
	default:
		return "unknown"
	}
}

// frame is one fully parsed response line: a greeting, an untagged data
// response, a "+" continuation request, or a tagged status response.
type frame struct {
	Kind   frameKind
	Tag    string
	Values []imap.Value
}

// readFrame reads one response unit (following literal-length framing as
// needed) and classifies it by its leading token.
func (c *Connection) readFrame() (frame, error) {
	values, err := c.parser.ParseLine()
	if err != nil {
		return frame{}, classifyIOErr(err)
	}
	if len(values) == 0 {
		return frame{}, imap.NewConnError(imap.ErrProtocol, fmt.Errorf("imapclient: empty response line"))
	}

	lead := values[0].String()
	switch lead {
	case "*":
		return frame{Kind: frameUntagged, Values: values[1:]}, nil
	case "+":
		return frame{Kind: frameContinuation, Values: values[1:]}, nil
	default:
		return frame{Kind: frameTagged, Tag: lead, Values: values[1:]}, nil
	}
}

// newParser builds the tokenizer/parser pair Connection reads frames
// through, wrapping br so literal payloads can be read in one shot.
func newParser(br *bufio.Reader) *wire.Parser {
	return wire.NewParser(wire.NewTokenizer(br))
}
