package imapclient_test

import (
	"testing"

	imap "github.com/arkemlar/imapengine"
)

func TestSelectParsesMailboxAttributes(t *testing.T) {
	c, _ := newTestConnection(t,
		"* 172 EXISTS\r\n"+
			"* 1 RECENT\r\n"+
			"* OK [UNSEEN 12] Message 12 is first unseen\r\n"+
			"* OK [UIDVALIDITY 3857529045] UIDs valid\r\n"+
			"* OK [UIDNEXT 4392] Predicted next UID\r\n"+
			"* FLAGS (\\Answered \\Flagged \\Deleted \\Seen \\Draft)\r\n"+
			"* OK [PERMANENTFLAGS (\\Deleted \\Seen \\*)] Limited\r\n"+
			"TAG1 OK [READ-WRITE] SELECT completed.\r\n")

	data, err := c.SelectFolder("INBOX")
	if err != nil {
		t.Fatalf("SelectFolder() = %v", err)
	}
	if data.NumMessages != 172 {
		t.Errorf("NumMessages = %d, want 172", data.NumMessages)
	}
	if data.NumRecent != 1 {
		t.Errorf("NumRecent = %d, want 1", data.NumRecent)
	}
	if data.Unseen != 12 {
		t.Errorf("Unseen = %d, want 12", data.Unseen)
	}
	if data.UIDValidity != 3857529045 {
		t.Errorf("UIDValidity = %d, want 3857529045", data.UIDValidity)
	}
	if data.UIDNext != 4392 {
		t.Errorf("UIDNext = %d, want 4392", data.UIDNext)
	}
	if len(data.PermanentFlags) != 3 || data.PermanentFlags[0] != imap.FlagDeleted {
		t.Errorf("PermanentFlags = %v, want [\\Deleted \\Seen \\*]", data.PermanentFlags)
	}
	if c.State() != imap.ConnStateSelected {
		t.Errorf("State() = %v, want Selected", c.State())
	}
}

func TestExamineOpensReadOnly(t *testing.T) {
	c, stream := newTestConnection(t, "* 5 EXISTS\r\nTAG1 OK [READ-ONLY] EXAMINE completed.\r\n")
	if _, err := c.ExamineFolder("INBOX"); err != nil {
		t.Fatalf("ExamineFolder() = %v", err)
	}
	if want := "TAG1 EXAMINE \"INBOX\"\r\n"; string(stream.Writes[0]) != want {
		t.Errorf("write = %q, want %q", stream.Writes[0], want)
	}
}

func TestFolderStatus(t *testing.T) {
	c, _ := newTestConnection(t,
		"* STATUS INBOX (MESSAGES 231 UIDNEXT 44292)\r\nTAG1 OK STATUS completed.\r\n")
	data, err := c.FolderStatus("INBOX", imap.StatusOptions{NumMessages: true, UIDNext: true})
	if err != nil {
		t.Fatalf("FolderStatus() = %v", err)
	}
	if data.NumMessages == nil || *data.NumMessages != 231 {
		t.Errorf("NumMessages = %v, want 231", data.NumMessages)
	}
	if data.UIDNext != 44292 {
		t.Errorf("UIDNext = %d, want 44292", data.UIDNext)
	}
}

func TestListFolders(t *testing.T) {
	c, _ := newTestConnection(t,
		"* LIST (\\HasNoChildren) \"/\" \"INBOX\"\r\n"+
			"* LIST (\\HasChildren) \"/\" \"Archive\"\r\n"+
			"TAG1 OK LIST completed.\r\n")
	folders, err := c.ListFolders("", "*")
	if err != nil {
		t.Fatalf("ListFolders() = %v", err)
	}
	if len(folders) != 2 {
		t.Fatalf("ListFolders() = %v, want 2 entries", folders)
	}
	if folders[0].Mailbox != "INBOX" || folders[0].Delim != '/' {
		t.Errorf("folders[0] = %+v", folders[0])
	}
	if folders[1].Mailbox != "Archive" {
		t.Errorf("folders[1] = %+v", folders[1])
	}
}

func TestListFoldersUnescapesMailboxName(t *testing.T) {
	c, _ := newTestConnection(t,
		"* LIST () \"/\" \"My \\\"Project\\\"\"\r\nTAG1 OK LIST completed.\r\n")
	folders, err := c.ListFolders("", "*")
	if err != nil {
		t.Fatalf("ListFolders() = %v", err)
	}
	if len(folders) != 1 || folders[0].Mailbox != `My "Project"` {
		t.Errorf("folders = %+v, want unescaped mailbox name", folders)
	}
}

func TestCreateDeleteSubscribeUnsubscribe(t *testing.T) {
	c, stream := newTestConnection(t,
		"TAG1 OK CREATE completed.\r\n"+
			"TAG2 OK DELETE completed.\r\n"+
			"TAG3 OK SUBSCRIBE completed.\r\n"+
			"TAG4 OK UNSUBSCRIBE completed.\r\n")

	if err := c.CreateFolder("Archive"); err != nil {
		t.Fatalf("CreateFolder() = %v", err)
	}
	if err := c.DeleteFolder("Archive"); err != nil {
		t.Fatalf("DeleteFolder() = %v", err)
	}
	if err := c.SubscribeFolder("Archive"); err != nil {
		t.Fatalf("SubscribeFolder() = %v", err)
	}
	if err := c.UnsubscribeFolder("Archive"); err != nil {
		t.Fatalf("UnsubscribeFolder() = %v", err)
	}

	want := []string{
		"TAG1 CREATE \"Archive\"\r\n",
		"TAG2 DELETE \"Archive\"\r\n",
		"TAG3 SUBSCRIBE \"Archive\"\r\n",
		"TAG4 UNSUBSCRIBE \"Archive\"\r\n",
	}
	for i, w := range want {
		if string(stream.Writes[i]) != w {
			t.Errorf("write[%d] = %q, want %q", i, stream.Writes[i], w)
		}
	}
}

func TestRenameFolder(t *testing.T) {
	c, stream := newTestConnection(t, "TAG1 OK RENAME completed.\r\n")
	if err := c.RenameFolder("Drafts", "Drafts-old"); err != nil {
		t.Fatalf("RenameFolder() = %v", err)
	}
	if want := "TAG1 RENAME \"Drafts\" \"Drafts-old\"\r\n"; string(stream.Writes[0]) != want {
		t.Errorf("write = %q, want %q", stream.Writes[0], want)
	}
}

func TestCloseFolderReturnsToAuthenticated(t *testing.T) {
	c, _ := newTestConnection(t,
		"* 1 EXISTS\r\nTAG1 OK [READ-WRITE] SELECT completed.\r\n"+
			"TAG2 OK CLOSE completed.\r\n")
	if _, err := c.SelectFolder("INBOX"); err != nil {
		t.Fatalf("SelectFolder() = %v", err)
	}
	if err := c.CloseFolder(); err != nil {
		t.Fatalf("CloseFolder() = %v", err)
	}
	if c.State() != imap.ConnStateAuthenticated {
		t.Errorf("State() = %v, want Authenticated", c.State())
	}
}

func TestUnselectFolderReturnsToAuthenticated(t *testing.T) {
	c, _ := newTestConnection(t,
		"* 1 EXISTS\r\nTAG1 OK [READ-WRITE] SELECT completed.\r\n"+
			"TAG2 OK UNSELECT completed.\r\n")
	if _, err := c.SelectFolder("INBOX"); err != nil {
		t.Fatalf("SelectFolder() = %v", err)
	}
	if err := c.UnselectFolder(); err != nil {
		t.Fatalf("UnselectFolder() = %v", err)
	}
	if c.State() != imap.ConnStateAuthenticated {
		t.Errorf("State() = %v, want Authenticated", c.State())
	}
}

func TestExpungeCollectsSeqNums(t *testing.T) {
	c, _ := newTestConnection(t,
		"* 3 EXPUNGE\r\n* 3 EXPUNGE\r\n* 5 EXPUNGE\r\nTAG1 OK EXPUNGE completed.\r\n")
	seqNums, err := c.Expunge()
	if err != nil {
		t.Fatalf("Expunge() = %v", err)
	}
	want := []uint32{3, 3, 5}
	if len(seqNums) != len(want) {
		t.Fatalf("Expunge() = %v, want %v", seqNums, want)
	}
	for i := range want {
		if seqNums[i] != want[i] {
			t.Errorf("seqNums[%d] = %d, want %d", i, seqNums[i], want[i])
		}
	}
}
