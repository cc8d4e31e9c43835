package imap

// ListData is one mailbox entry returned by the LIST command: its attributes,
// hierarchy delimiter, and name.
//
// Mailbox has already been unescaped (\" -> ", \\ -> \); see distilled spec
// section 4.5 "LIST response".
type ListData struct {
	Attrs   []MailboxAttr
	Delim   rune
	Mailbox string
}
