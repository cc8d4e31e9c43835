package imapclient

import (
	"fmt"

	imap "github.com/arkemlar/imapengine"
	"github.com/arkemlar/imapengine/internal/wire"
)

// execute writes enc's wire lines (handling the literal-continuation
// handshake along the way), then reads frames until the tagged response for
// tag arrives. Untagged frames observed in between are returned for the
// caller to interpret; a non-OK tagged status is returned as an error
// alongside the parsed imap.StatusResponse. statusArgs carries the tagged
// line's raw values after the status type (e.g. the full "[APPENDUID 38505
// 3955]" token run), since classifyStatus's StatusResponse.Code only keeps
// the bracketed code's name, not its arguments.
func (c *Connection) execute(tag string, enc *wire.Encoder) (untagged []frame, status *imap.StatusResponse, statusArgs []imap.Value, err error) {
	lines := enc.Lines()
	for _, line := range lines {
		if err := c.writeLine(line); err != nil {
			return nil, nil, nil, err
		}
		if wire.NeedsContinuation(line) {
			if err := c.awaitContinuation(); err != nil {
				return nil, nil, nil, err
			}
		}
	}
	return c.readUntil(tag)
}

// readUntil reads frames until the tagged response matching tag arrives.
// Untagged frames are appended to the returned slice; a tag mismatch is a
// protocol violation since only one command is ever in flight.
func (c *Connection) readUntil(tag string) ([]frame, *imap.StatusResponse, []imap.Value, error) {
	var untagged []frame
	for {
		fr, err := c.withTimeout(c.readFrame)
		if err != nil {
			return untagged, nil, nil, err
		}
		switch fr.Kind {
		case frameUntagged:
			untagged = append(untagged, fr)
		case frameContinuation:
			return untagged, nil, nil, imap.NewConnError(imap.ErrProtocol, fmt.Errorf("imapclient: unexpected continuation request"))
		case frameTagged:
			if fr.Tag != tag {
				return untagged, nil, nil, imap.NewConnError(imap.ErrProtocol, fmt.Errorf("imapclient: tagged response %q does not match pending command %q", fr.Tag, tag))
			}
			var statusArgs []imap.Value
			if len(fr.Values) > 1 {
				statusArgs = fr.Values[1:]
			}
			status, err := classifyStatus(fr.Values)
			if err != nil {
				return untagged, nil, nil, err
			}
			if status.Type != imap.StatusResponseTypeOK {
				return untagged, status, statusArgs, &imap.ServerError{Type: status.Type, Code: status.Code, Text: status.Text}
			}
			return untagged, status, statusArgs, nil
		}
	}
}

func (c *Connection) writeLine(line []byte) error {
	if c.opts.TraceWriter != nil {
		fmt.Fprintf(c.opts.TraceWriter, "-> %q\n", line)
	}
	return withDeadline(c.stream, c.opts.Timeout, func() error {
		_, err := c.stream.Write(line)
		return classifyIOErr(err)
	})
}

// awaitContinuation reads one frame and requires it to be a "+"
// continuation; anything else means the server refused the literal and the
// write must abort.
func (c *Connection) awaitContinuation() error {
	fr, err := c.withTimeout(c.readFrame)
	if err != nil {
		return err
	}
	if fr.Kind != frameContinuation {
		return imap.NewConnError(imap.ErrProtocol, fmt.Errorf("imapclient: expected continuation, got %v response", fr.Kind))
	}
	return nil
}

// queueNotification appends fr to c.notifications. Authenticate uses it for
// untagged frames that arrive during its exchange. Poll and
// NextNotification read the stream directly and do not return queued
// frames.
func (c *Connection) queueNotification(fr frame) {
	c.notifications = append(c.notifications, fr)
}
