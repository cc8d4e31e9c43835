package imap

// SelectOptions configures the SELECT/EXAMINE command.
type SelectOptions struct {
	// ReadOnly requests EXAMINE instead of SELECT.
	ReadOnly bool
}

// SelectData is the data accumulated from a SELECT or EXAMINE response: the
// mailbox's FLAGS, EXISTS, RECENT, and the [UIDVALIDITY]/[UIDNEXT]/[UNSEEN]
// response codes.
type SelectData struct {
	// Flags this mailbox defines.
	Flags []Flag
	// PermanentFlags the client may set permanently.
	PermanentFlags []Flag
	// NumMessages is the mailbox's EXISTS count.
	NumMessages uint32
	// NumRecent is the mailbox's RECENT count.
	NumRecent   uint32
	UIDNext     UID
	UIDValidity uint32
	// Unseen is the sequence number of the first unseen message, if the
	// server reported [UNSEEN n].
	Unseen uint32
}
