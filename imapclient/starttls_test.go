package imapclient_test

import (
	"crypto/tls"
	"testing"

	imap "github.com/arkemlar/imapengine"
	"github.com/arkemlar/imapengine/imapclient"
)

func TestStartTLS(t *testing.T) {
	stream := imapclient.NewFakeStream([]byte("* OK ready.\r\nTAG1 OK Begin TLS negotiation now.\r\n"))
	c, err := imapclient.New(stream, imapclient.Options{TLSConfig: &tls.Config{InsecureSkipVerify: true}})
	if err != nil {
		t.Fatalf("New() = %v", err)
	}

	if err := c.StartTLS("imap.example.org"); err != nil {
		t.Fatalf("StartTLS() = %v", err)
	}

	if got := stream.TLSUpgrades(); got != 1 {
		t.Fatalf("TLSUpgrades() = %d, want exactly 1", got)
	}
	if len(stream.Writes) != 1 {
		t.Fatalf("Writes = %d, want 1 (only the STARTTLS command before the upgrade)", len(stream.Writes))
	}
	if want := "TAG1 STARTTLS\r\n"; string(stream.Writes[0]) != want {
		t.Errorf("wrote %q, want %q", stream.Writes[0], want)
	}
	if c.Caps() != nil && len(c.Caps()) != 0 {
		t.Errorf("Caps() = %v, want empty after STARTTLS (must be re-queried)", c.Caps())
	}
}

func TestStartTLSRejectedBeforeAuth(t *testing.T) {
	stream := imapclient.NewFakeStream([]byte("* PREAUTH already authenticated\r\n"))
	c, err := imapclient.New(stream, imapclient.Options{})
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	if c.State() != imap.ConnStateAuthenticated {
		t.Fatalf("State() = %v, want Authenticated", c.State())
	}
	if err := c.StartTLS("imap.example.org"); err == nil {
		t.Fatalf("StartTLS() = nil error, want rejection outside NotAuthenticated")
	}
	if stream.TLSUpgrades() != 0 {
		t.Errorf("TLSUpgrades() = %d, want 0", stream.TLSUpgrades())
	}
}
