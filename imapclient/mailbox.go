package imapclient

import (
	"strings"

	imap "github.com/arkemlar/imapengine"
	"github.com/arkemlar/imapengine/internal/wire"
)

// SelectFolder opens mailbox for read-write access, moving the connection
// to Selected.
func (c *Connection) SelectFolder(mailbox string) (*imap.SelectData, error) {
	return c.selectOrExamine(mailbox, imap.SelectOptions{})
}

// ExamineFolder opens mailbox read-only (RFC 3501 section 6.3.2).
func (c *Connection) ExamineFolder(mailbox string) (*imap.SelectData, error) {
	return c.selectOrExamine(mailbox, imap.SelectOptions{ReadOnly: true})
}

func (c *Connection) selectOrExamine(mailbox string, opts imap.SelectOptions) (*imap.SelectData, error) {
	cmd := "SELECT"
	if opts.ReadOnly {
		cmd = "EXAMINE"
	}

	tag := c.tags.next()
	enc := wire.NewEncoder()
	enc.Atom(tag).SP().Atom(cmd).SP().Mailbox(mailbox).CRLF()

	untagged, _, statusArgs, err := c.execute(tag, enc)
	if err != nil {
		return nil, err
	}

	data := &imap.SelectData{}
	for _, fr := range untagged {
		applySelectFrame(data, fr)
	}
	if code, args, _ := splitResponseCode(statusArgs); code != "" {
		applySelectCode(data, code, args)
	}

	c.state = imap.ConnStateSelected
	c.mailbox = mailbox
	c.mailboxMode = opts
	return data, nil
}

func applySelectFrame(data *imap.SelectData, fr frame) {
	if len(fr.Values) == 0 {
		return
	}
	switch {
	case equalFold(fr.Values[0].String(), "FLAGS"):
		if len(fr.Values) < 2 {
			return
		}
		list, err := imap.AsList(fr.Values[1])
		if err != nil {
			return
		}
		data.Flags = flagsFromList(list)
	case len(fr.Values) == 2 && equalFold(fr.Values[1].String(), "EXISTS"):
		if n, err := imap.AsNumber(fr.Values[0]); err == nil {
			data.NumMessages = n
		}
	case len(fr.Values) == 2 && equalFold(fr.Values[1].String(), "RECENT"):
		if n, err := imap.AsNumber(fr.Values[0]); err == nil {
			data.NumRecent = n
		}
	case equalFold(fr.Values[0].String(), "OK"):
		code, args, _ := splitResponseCode(fr.Values[1:])
		applySelectCode(data, code, args)
	}
}

func flagsFromList(list imap.List) []imap.Flag {
	flags := make([]imap.Flag, len(list))
	for i, v := range list {
		flags[i] = imap.Flag(v.String())
	}
	return flags
}

func applySelectCode(data *imap.SelectData, code string, args []imap.Value) {
	switch code {
	case "PERMANENTFLAGS":
		if len(args) == 0 {
			return
		}
		list, err := imap.AsList(args[0])
		if err != nil {
			return
		}
		data.PermanentFlags = flagsFromList(list)
	case "UIDNEXT":
		if len(args) > 0 {
			if n, err := imap.AsNumber(args[0]); err == nil {
				data.UIDNext = imap.UID(n)
			}
		}
	case "UIDVALIDITY":
		if len(args) > 0 {
			if n, err := imap.AsNumber(args[0]); err == nil {
				data.UIDValidity = n
			}
		}
	case "UNSEEN":
		if len(args) > 0 {
			if n, err := imap.AsNumber(args[0]); err == nil {
				data.Unseen = n
			}
		}
	}
}

// FolderStatus runs STATUS for mailbox, returning only the attributes
// requested in opts.
func (c *Connection) FolderStatus(mailbox string, opts imap.StatusOptions) (*imap.StatusData, error) {
	tag := c.tags.next()
	enc := wire.NewEncoder()
	enc.Atom(tag).SP().Atom("STATUS").SP().Mailbox(mailbox).SP()
	enc.List(func(enc *wire.Encoder) {
		first := true
		add := func(name string) {
			if !first {
				enc.SP()
			}
			first = false
			enc.Atom(name)
		}
		if opts.NumMessages {
			add("MESSAGES")
		}
		if opts.UIDNext {
			add("UIDNEXT")
		}
		if opts.UIDValidity {
			add("UIDVALIDITY")
		}
		if opts.NumUnseen {
			add("UNSEEN")
		}
	})
	enc.CRLF()

	untagged, _, _, err := c.execute(tag, enc)
	if err != nil {
		return nil, err
	}

	data := &imap.StatusData{Mailbox: mailbox}
	for _, fr := range untagged {
		if len(fr.Values) < 3 || !equalFold(fr.Values[0].String(), "STATUS") {
			continue
		}
		list, err := imap.AsList(fr.Values[2])
		if err != nil {
			continue
		}
		applyStatusList(data, list)
	}
	return data, nil
}

// applyStatusList parses the alternating key/value list into data's fields,
// lowercasing keys for comparison as the distilled contract requires.
func applyStatusList(data *imap.StatusData, list imap.List) {
	for i := 0; i+1 < len(list); i += 2 {
		key := strings.ToLower(list[i].String())
		n, err := imap.AsNumber(list[i+1])
		if err != nil {
			continue
		}
		switch key {
		case "messages":
			v := n
			data.NumMessages = &v
		case "uidnext":
			data.UIDNext = imap.UID(n)
		case "uidvalidity":
			data.UIDValidity = n
		case "unseen":
			v := n
			data.NumUnseen = &v
		}
	}
}

// ListFolders runs LIST with the given reference name and mailbox pattern
// ("%" and "*" wildcards per RFC 3501 section 6.3.8).
func (c *Connection) ListFolders(ref, pattern string) ([]imap.ListData, error) {
	tag := c.tags.next()
	enc := wire.NewEncoder()
	enc.Atom(tag).SP().Atom("LIST").SP().Mailbox(ref).SP().Mailbox(pattern).CRLF()

	untagged, _, _, err := c.execute(tag, enc)
	if err != nil {
		return nil, err
	}

	var out []imap.ListData
	for _, fr := range untagged {
		if ld, ok := parseListFrame(fr); ok {
			out = append(out, ld)
		}
	}
	return out, nil
}

func parseListFrame(fr frame) (imap.ListData, bool) {
	if len(fr.Values) < 4 || !equalFold(fr.Values[0].String(), "LIST") {
		return imap.ListData{}, false
	}
	list, err := imap.AsList(fr.Values[1])
	if err != nil {
		return imap.ListData{}, false
	}
	attrs := make([]imap.MailboxAttr, len(list))
	for i, v := range list {
		attrs[i] = imap.MailboxAttr(v.String())
	}

	var delim rune
	if !imap.IsNil(fr.Values[2]) {
		s, _ := imap.AsString(fr.Values[2])
		if len(s) > 0 {
			delim = rune(s[0])
		}
	}

	name, _ := imap.AsString(fr.Values[3])
	return imap.ListData{
		Attrs:   attrs,
		Delim:   delim,
		Mailbox: unescapeMailbox(string(name)),
	}, true
}

// unescapeMailbox reverses the quoted-string escaping the server applies to
// mailbox names: \" -> ", \\ -> \.
func unescapeMailbox(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '"' || s[i+1] == '\\') {
			i++
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// CreateFolder runs CREATE.
func (c *Connection) CreateFolder(mailbox string) error {
	return c.simpleMailboxCmd("CREATE", mailbox)
}

// DeleteFolder runs DELETE.
func (c *Connection) DeleteFolder(mailbox string) error {
	return c.simpleMailboxCmd("DELETE", mailbox)
}

// SubscribeFolder runs SUBSCRIBE.
func (c *Connection) SubscribeFolder(mailbox string) error {
	return c.simpleMailboxCmd("SUBSCRIBE", mailbox)
}

// UnsubscribeFolder runs UNSUBSCRIBE.
func (c *Connection) UnsubscribeFolder(mailbox string) error {
	return c.simpleMailboxCmd("UNSUBSCRIBE", mailbox)
}

func (c *Connection) simpleMailboxCmd(cmdName, mailbox string) error {
	tag := c.tags.next()
	enc := wire.NewEncoder()
	enc.Atom(tag).SP().Atom(cmdName).SP().Mailbox(mailbox).CRLF()
	_, _, _, err := c.execute(tag, enc)
	return err
}

// RenameFolder runs RENAME.
func (c *Connection) RenameFolder(from, to string) error {
	tag := c.tags.next()
	enc := wire.NewEncoder()
	enc.Atom(tag).SP().Atom("RENAME").SP().Mailbox(from).SP().Mailbox(to).CRLF()
	_, _, _, err := c.execute(tag, enc)
	return err
}

// CloseFolder runs CLOSE, which also silently expunges \Deleted messages,
// and moves the connection back to Authenticated.
func (c *Connection) CloseFolder() error {
	tag := c.tags.next()
	enc := wire.NewEncoder()
	enc.Atom(tag).SP().Atom("CLOSE").CRLF()
	_, _, _, err := c.execute(tag, enc)
	if err == nil {
		c.state = imap.ConnStateAuthenticated
		c.mailbox = ""
	}
	return err
}

// UnselectFolder runs UNSELECT (RFC 3691): like CLOSE but without the
// implicit expunge. Only available when the server advertises the UNSELECT
// capability; the core does not gate on capabilities itself.
func (c *Connection) UnselectFolder() error {
	tag := c.tags.next()
	enc := wire.NewEncoder()
	enc.Atom(tag).SP().Atom("UNSELECT").CRLF()
	_, _, _, err := c.execute(tag, enc)
	if err == nil {
		c.state = imap.ConnStateAuthenticated
		c.mailbox = ""
	}
	return err
}

// Expunge permanently removes messages marked \Deleted from the selected
// mailbox and returns the sequence numbers the server reported as expunged.
func (c *Connection) Expunge() ([]uint32, error) {
	tag := c.tags.next()
	enc := wire.NewEncoder()
	enc.Atom(tag).SP().Atom("EXPUNGE").CRLF()

	untagged, _, _, err := c.execute(tag, enc)
	if err != nil {
		return nil, err
	}

	var seqNums []uint32
	for _, fr := range untagged {
		if len(fr.Values) == 2 && equalFold(fr.Values[1].String(), "EXPUNGE") {
			if n, err := imap.AsNumber(fr.Values[0]); err == nil {
				seqNums = append(seqNums, n)
			}
		}
	}
	return seqNums, nil
}
