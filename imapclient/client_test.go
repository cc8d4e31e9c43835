package imapclient_test

import (
	"testing"

	imap "github.com/arkemlar/imapengine"
	"github.com/arkemlar/imapengine/imapclient"
)

func TestNewParsesGreeting(t *testing.T) {
	stream := imapclient.NewFakeStream([]byte("* OK [CAPABILITY IMAP4rev1 IDLE] Dovecot ready.\r\n"))
	c, err := imapclient.New(stream, imapclient.Options{})
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	if c.State() != imap.ConnStateNotAuthenticated {
		t.Errorf("State() = %v, want %v", c.State(), imap.ConnStateNotAuthenticated)
	}
	if !c.Caps().Has(imap.CapIdle) {
		t.Errorf("Caps() = %v, want IDLE from the greeting's CAPABILITY hint", c.Caps())
	}
}

func TestNewPreauth(t *testing.T) {
	stream := imapclient.NewFakeStream([]byte("* PREAUTH server already authenticated\r\n"))
	c, err := imapclient.New(stream, imapclient.Options{})
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	if c.State() != imap.ConnStateAuthenticated {
		t.Errorf("State() = %v, want %v", c.State(), imap.ConnStateAuthenticated)
	}
}

func TestNewRejectsBye(t *testing.T) {
	stream := imapclient.NewFakeStream([]byte("* BYE too many connections\r\n"))
	if _, err := imapclient.New(stream, imapclient.Options{}); err == nil {
		t.Fatalf("New() = nil error, want failure on a BYE greeting")
	}
}

func newTestConnection(t *testing.T, script string) (*imapclient.Connection, *imapclient.FakeStream) {
	t.Helper()
	stream := imapclient.NewFakeStream([]byte("* OK ready.\r\n" + script))
	c, err := imapclient.New(stream, imapclient.Options{})
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	return c, stream
}

func TestCapability(t *testing.T) {
	c, _ := newTestConnection(t, "* CAPABILITY IMAP4rev1 IDLE MOVE\r\nTAG1 OK CAPABILITY completed.\r\n")
	caps, err := c.Capability()
	if err != nil {
		t.Fatalf("Capability() = %v", err)
	}
	for _, want := range []imap.Cap{imap.CapIMAP4rev1, imap.CapIdle, imap.CapMove} {
		if !caps.Has(want) {
			t.Errorf("Capability() = %v, want it to include %v", caps, want)
		}
	}
}

func TestNoop(t *testing.T) {
	c, _ := newTestConnection(t, "TAG1 OK NOOP completed.\r\n")
	if err := c.Noop(); err != nil {
		t.Fatalf("Noop() = %v", err)
	}
}
