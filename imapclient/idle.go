package imapclient

import (
	"fmt"

	imap "github.com/arkemlar/imapengine"
	"github.com/arkemlar/imapengine/internal/wire"
)

// Notification is one untagged line delivered outside a normal command's
// response, almost always while idling: "* 4 EXISTS", "* 2 EXPUNGE",
// "* 1 FETCH (FLAGS (\Seen))".
type Notification struct {
	Values []imap.Value
}

func (n Notification) String() string { return joinText(n.Values) }

// Idle sends IDLE and blocks until the server's "+ idling" continuation
// arrives, moving the connection to Idle. Use Poll or NextNotification to
// read pushes, and Done to leave idle state.
func (c *Connection) Idle() error {
	if c.state != imap.ConnStateSelected {
		return imap.NewConnError(imap.ErrProtocol, fmt.Errorf("imapclient: IDLE requires a selected mailbox"))
	}

	tag := c.tags.next()
	enc := wire.NewEncoder()
	enc.Atom(tag).SP().Atom("IDLE").CRLF()
	if err := c.writeLine(enc.Lines()[0]); err != nil {
		return err
	}
	if err := c.awaitContinuation(); err != nil {
		return err
	}

	c.idleTag = tag
	c.state = imap.ConnStateIdle
	return nil
}

// Poll performs a nonblocking check for a pending push notification: if no
// bytes are buffered from the server, it returns immediately with ok=false
// rather than blocking on the socket.
func (c *Connection) Poll() (notification Notification, ok bool, err error) {
	if c.br.Buffered() == 0 {
		return Notification{}, false, nil
	}
	fr, err := c.readFrame()
	if err != nil {
		return Notification{}, false, err
	}
	if fr.Kind != frameUntagged {
		return Notification{}, false, imap.NewConnError(imap.ErrProtocol, fmt.Errorf("imapclient: unexpected %v response during IDLE", fr.Kind))
	}
	return Notification{Values: fr.Values}, true, nil
}

// NextNotification blocks until the server pushes an untagged line.
func (c *Connection) NextNotification() (Notification, error) {
	fr, err := c.withTimeout(c.readFrame)
	if err != nil {
		return Notification{}, err
	}
	if fr.Kind != frameUntagged {
		return Notification{}, imap.NewConnError(imap.ErrProtocol, fmt.Errorf("imapclient: unexpected %v response during IDLE", fr.Kind))
	}
	return Notification{Values: fr.Values}, nil
}

// Done leaves idle state: it writes DONE and awaits the tagged OK that
// completes the original IDLE command. Untagged lines observed while
// draining that response (EXISTS/EXPUNGE notifications racing the DONE
// write) are returned rather than discarded.
func (c *Connection) Done() ([]Notification, error) {
	if c.state != imap.ConnStateIdle {
		return nil, imap.NewConnError(imap.ErrProtocol, fmt.Errorf("imapclient: DONE requires an active IDLE"))
	}

	if err := c.writeLine([]byte("DONE\r\n")); err != nil {
		return nil, err
	}

	untagged, _, _, err := c.readUntil(c.idleTag)
	notifications := make([]Notification, len(untagged))
	for i, fr := range untagged {
		notifications[i] = Notification{Values: fr.Values}
	}
	if err != nil {
		return notifications, err
	}

	c.state = imap.ConnStateSelected
	return notifications, nil
}
