package imapclient

import (
	"encoding/base64"
	"fmt"

	"github.com/emersion/go-sasl"

	imap "github.com/arkemlar/imapengine"
	"github.com/arkemlar/imapengine/internal/wire"
)

// Login authenticates with a plaintext username and password via the LOGIN
// command. Most servers disable this unless the connection is already
// protected by TLS (CapLoginDisabled is set until then).
func (c *Connection) Login(username, password string) error {
	tag := c.tags.next()
	enc := wire.NewEncoder()
	enc.Atom(tag).SP().Atom("LOGIN").SP().String(username).SP().String(password).CRLF()

	_, status, _, err := c.execute(tag, enc)
	if err != nil {
		var serverErr *imap.ServerError
		if asServerError(err, &serverErr) {
			return imap.NewConnError(imap.ErrAuthFailed, serverErr)
		}
		return err
	}
	if status.Type == imap.StatusResponseTypeOK {
		c.state = imap.ConnStateAuthenticated
	}
	return nil
}

// Authenticate drives a SASL exchange to completion using client, handling
// the AUTHENTICATE command's continuation round-trips. On success the
// connection moves to Authenticated.
func (c *Connection) Authenticate(client sasl.Client) error {
	mech, ir, err := client.Start()
	if err != nil {
		return imap.NewConnError(imap.ErrAuthFailed, err)
	}

	tag := c.tags.next()
	enc := wire.NewEncoder()
	enc.Atom(tag).SP().Atom("AUTHENTICATE").SP().Atom(mech)
	if ir != nil {
		enc.SP().Atom(base64.StdEncoding.EncodeToString(ir))
	}
	enc.CRLF()

	if err := c.writeLine(enc.Lines()[0]); err != nil {
		return err
	}

	for {
		fr, err := c.withTimeout(c.readFrame)
		if err != nil {
			return err
		}
		switch fr.Kind {
		case frameContinuation:
			challenge, decodeErr := decodeChallenge(fr.Values)
			if decodeErr != nil {
				return imap.NewConnError(imap.ErrProtocol, decodeErr)
			}
			resp, nextErr := client.Next(challenge)
			if nextErr != nil {
				// RFC 3501 4.3: abort the exchange with a lone "*".
				c.writeLine([]byte("*\r\n"))
				_, _, _, _ = c.readUntil(tag)
				return imap.NewConnError(imap.ErrAuthFailed, nextErr)
			}
			line := append([]byte(base64.StdEncoding.EncodeToString(resp)), '\r', '\n')
			if err := c.writeLine(line); err != nil {
				return err
			}
		case frameUntagged:
			c.queueNotification(fr)
		case frameTagged:
			if fr.Tag != tag {
				return imap.NewConnError(imap.ErrProtocol, fmt.Errorf("imapclient: tagged response %q does not match pending command %q", fr.Tag, tag))
			}
			status, serr := classifyStatus(fr.Values)
			if serr != nil {
				return serr
			}
			if status.Type != imap.StatusResponseTypeOK {
				return imap.NewConnError(imap.ErrAuthFailed, &imap.ServerError{Type: status.Type, Code: status.Code, Text: status.Text})
			}
			c.state = imap.ConnStateAuthenticated
			return nil
		}
	}
}

// AuthenticateXOAUTH2 is a convenience wrapper around Authenticate for
// OAuth2 bearer-token login (Gmail, Outlook, and most other modern
// providers require this instead of LOGIN).
func (c *Connection) AuthenticateXOAUTH2(username, token string) error {
	return c.Authenticate(sasl.NewXOAuth2Client(username, token))
}

func decodeChallenge(values []imap.Value) ([]byte, error) {
	if len(values) == 0 {
		return nil, nil
	}
	s, err := imap.AsString(values[0])
	if err != nil {
		return nil, err
	}
	if len(s) == 0 {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(string(s))
}

// Logout gracefully tears down the session: LOGOUT, wait for BYE + tagged
// OK (best-effort), then close the stream. It is idempotent and swallows
// its own errors past the first call, per the teardown policy: a drop-path
// release must not throw.
func (c *Connection) Logout() error {
	if c.state == imap.ConnStateLoggedOut {
		return nil
	}

	tag := c.tags.next()
	enc := wire.NewEncoder()
	enc.Atom(tag).SP().Atom("LOGOUT").CRLF()
	_, _, _, _ = c.execute(tag, enc) // best-effort: LOGOUT failing doesn't block teardown

	c.state = imap.ConnStateLoggedOut
	return c.stream.Close()
}

func asServerError(err error, target **imap.ServerError) bool {
	se, ok := err.(*imap.ServerError)
	if ok {
		*target = se
	}
	return ok
}
