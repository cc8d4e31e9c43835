package imap

import "time"

// SearchCriteria describes the SEARCH command's query.
//
// When multiple fields are populated, the result is the intersection of
// messages matching every field ("and"). Not and Or combine criteria
// explicitly: the following matches messages that do not contain "hello":
//
//	SearchCriteria{Not: []SearchCriteria{{Body: []string{"hello"}}}}
type SearchCriteria struct {
	SeqNum []SeqSet
	UID    []UIDSet

	// Only the date is used; time and zone are ignored.
	Since      time.Time
	Before     time.Time
	SentSince  time.Time
	SentBefore time.Time

	Header []SearchCriteriaHeaderField
	Body   []string
	Text   []string

	Flag    []Flag
	NotFlag []Flag

	Larger  int64
	Smaller int64

	Not []SearchCriteria
	Or  [][2]SearchCriteria
}

// SearchCriteriaHeaderField is a HEADER <field> <value> search term.
type SearchCriteriaHeaderField struct {
	Key, Value string
}

// SearchData is the data returned by SEARCH: the matching message numbers or
// UIDs.
//
// An empty All is a valid, successful result, not an error.
type SearchData struct {
	All NumSet
}
