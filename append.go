package imap

import "time"

// AppendOptions configures the APPEND command.
type AppendOptions struct {
	Flags []Flag
	Time  time.Time
}

// AppendData is the data returned by APPEND.
//
// UID and UIDValidity are only populated when the server supports UIDPLUS
// (RFC 4315) and answers with an [APPENDUID] response code.
type AppendData struct {
	UID         UID
	UIDValidity uint32
}
