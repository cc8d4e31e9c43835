package imapclient_test

import (
	"strings"
	"testing"

	imap "github.com/arkemlar/imapengine"
)

func TestLoginSuccess(t *testing.T) {
	c, stream := newTestConnection(t, "TAG1 OK LOGIN completed.\r\n")
	if err := c.Login("alice", "hunter2"); err != nil {
		t.Fatalf("Login() = %v", err)
	}
	if c.State() != imap.ConnStateAuthenticated {
		t.Errorf("State() = %v, want %v", c.State(), imap.ConnStateAuthenticated)
	}
	if len(stream.Writes) != 1 {
		t.Fatalf("Writes = %d, want 1", len(stream.Writes))
	}
	if want := "TAG1 LOGIN \"alice\" \"hunter2\"\r\n"; string(stream.Writes[0]) != want {
		t.Errorf("wrote %q, want %q", stream.Writes[0], want)
	}
}

func TestLoginFailure(t *testing.T) {
	c, _ := newTestConnection(t, "TAG1 NO [AUTHENTICATIONFAILED] Invalid credentials\r\n")
	err := c.Login("alice", "wrong")
	if err == nil {
		t.Fatalf("Login() = nil error, want failure")
	}
	if !imap.IsKind(err, imap.ErrAuthFailed) {
		t.Errorf("Login() error = %v, want ErrAuthFailed", err)
	}
	if !strings.Contains(err.Error(), "Invalid credentials") {
		t.Errorf("Login() error = %q, want it to carry the server's text", err)
	}
	if c.State() == imap.ConnStateAuthenticated {
		t.Errorf("State() = Authenticated after a failed LOGIN")
	}
}

func TestLogoutIdempotent(t *testing.T) {
	c, _ := newTestConnection(t, "TAG1 OK LOGOUT completed.\r\n")
	if err := c.Logout(); err != nil {
		t.Fatalf("Logout() = %v", err)
	}
	if err := c.Logout(); err != nil {
		t.Fatalf("second Logout() = %v, want nil (idempotent)", err)
	}
}
