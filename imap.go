// Package imap contains the types shared between the wire engine and its
// callers: connection state, mailbox flags, message identifiers, and the
// structured request/response payloads for each command.
//
// The wire-level machinery (tokenizer, parser, command encoder, connection
// state machine) lives in the imapclient package; this package only holds
// data shapes.
package imap

import "fmt"

// ConnState describes where a Connection is in its lifecycle.
//
// See RFC 3501 section 3.
type ConnState int

const (
	ConnStateDisconnected ConnState = iota
	ConnStateGreeting
	ConnStateNotAuthenticated
	ConnStateAuthenticated
	ConnStateSelected
	ConnStateIdle
	ConnStateLoggedOut
)

// String implements fmt.Stringer.
func (state ConnState) String() string {
	switch state {
	case ConnStateDisconnected:
		return "disconnected"
	case ConnStateGreeting:
		return "greeting"
	case ConnStateNotAuthenticated:
		return "not authenticated"
	case ConnStateAuthenticated:
		return "authenticated"
	case ConnStateSelected:
		return "selected"
	case ConnStateIdle:
		return "idle"
	case ConnStateLoggedOut:
		return "logged out"
	default:
		panic(fmt.Errorf("imap: unknown connection state %v", int(state)))
	}
}

// MailboxAttr is a mailbox attribute, as returned by LIST.
//
// See RFC 3501 section 7.2.2.
type MailboxAttr string

const (
	MailboxAttrNoInferiors   MailboxAttr = "\\Noinferiors"
	MailboxAttrNoSelect      MailboxAttr = "\\Noselect"
	MailboxAttrMarked        MailboxAttr = "\\Marked"
	MailboxAttrUnmarked      MailboxAttr = "\\Unmarked"
	MailboxAttrHasChildren   MailboxAttr = "\\HasChildren"
	MailboxAttrHasNoChildren MailboxAttr = "\\HasNoChildren"
)

// Flag is a message flag, either a system flag (RFC 3501 section 2.3.2) or a
// keyword.
type Flag string

const (
	FlagSeen     Flag = "\\Seen"
	FlagAnswered Flag = "\\Answered"
	FlagFlagged  Flag = "\\Flagged"
	FlagDeleted  Flag = "\\Deleted"
	FlagDraft    Flag = "\\Draft"
	FlagRecent   Flag = "\\Recent"

	// FlagWildcard ("\*") is reported in PERMANENTFLAGS to mean the server
	// accepts arbitrary keywords.
	FlagWildcard Flag = "\\*"
)

// UID is the persistent unique identifier of a message within a mailbox.
// UIDs survive expunges and across sessions, unlike sequence numbers.
type UID uint32

// Mode selects whether an id-bearing operation addresses messages by UID or
// by sequence number.
type Mode int

const (
	// ST_UID addresses messages by UID. The wire command is prefixed with
	// "UID ".
	ST_UID Mode = iota
	// ST_MSGN addresses messages by sequence number (ephemeral, 1-based
	// index into the selected mailbox). No command prefix.
	ST_MSGN
)

func (m Mode) String() string {
	if m == ST_UID {
		return "UID"
	}
	return "MSGN"
}
