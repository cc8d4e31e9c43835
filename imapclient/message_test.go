package imapclient_test

import (
	"testing"

	imap "github.com/arkemlar/imapengine"
)

func TestCopyParsesUIDPlusResponseCode(t *testing.T) {
	c, _ := newTestConnection(t, "TAG1 OK [COPYUID 38505 1:3 101:103] COPY completed.\r\n")
	data, err := c.Copy(imap.SeqSetRange(imap.Num(1), imap.Num(3)), imap.ST_MSGN, "Archive")
	if err != nil {
		t.Fatalf("Copy() = %v", err)
	}
	if data.UIDValidity != 38505 {
		t.Errorf("UIDValidity = %d, want 38505", data.UIDValidity)
	}
	if got := data.SourceUIDs.String(); got != "1:3" {
		t.Errorf("SourceUIDs = %q, want %q", got, "1:3")
	}
	if got := data.DestUIDs.String(); got != "101:103" {
		t.Errorf("DestUIDs = %q, want %q", got, "101:103")
	}
}

func TestMoveCollectsExpungedSeqNums(t *testing.T) {
	c, _ := newTestConnection(t,
		"* 1 EXPUNGE\r\nTAG1 OK [COPYUID 1 1 10] MOVE completed.\r\n")
	_, expunged, err := c.Move(imap.SeqSetNum(1), imap.ST_MSGN, "Archive")
	if err != nil {
		t.Fatalf("Move() = %v", err)
	}
	if len(expunged) != 1 || expunged[0] != 1 {
		t.Errorf("expunged = %v, want [1]", expunged)
	}
}

func TestSearchReturnsMatchingUIDs(t *testing.T) {
	c, _ := newTestConnection(t, "* SEARCH 100 101 104\r\nTAG1 OK SEARCH completed.\r\n")
	data, err := c.Search(imap.SearchCriteria{Flag: []imap.Flag{imap.FlagSeen}}, imap.ST_UID)
	if err != nil {
		t.Fatalf("Search() = %v", err)
	}
	uids, ok := data.All.(imap.UIDSet).Nums()
	if !ok {
		t.Fatalf("Nums() ok = false")
	}
	want := []imap.UID{100, 101, 104}
	if len(uids) != len(want) {
		t.Fatalf("uids = %v, want %v", uids, want)
	}
	for i := range want {
		if uids[i] != want[i] {
			t.Errorf("uids[%d] = %d, want %d", i, uids[i], want[i])
		}
	}
}

func TestAppendReturnsUID(t *testing.T) {
	c, _ := newTestConnection(t, "TAG1 OK [APPENDUID 38505 3955] APPEND completed.\r\n")
	data, err := c.Append("INBOX", []byte("From: a@b.c\r\n\r\nhi"), imap.AppendOptions{Flags: []imap.Flag{imap.FlagSeen}})
	if err != nil {
		t.Fatalf("Append() = %v", err)
	}
	if data.UIDValidity != 38505 || data.UID != 3955 {
		t.Errorf("Append() = %+v, want UIDValidity=38505 UID=3955", data)
	}
}
