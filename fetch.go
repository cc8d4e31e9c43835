package imap

import "fmt"

// FetchItem names a single data item requested by FETCH, e.g. "FLAGS",
// "UID", "INTERNALDATE", "RFC822.SIZE", "ENVELOPE", "BODYSTRUCTURE", or a
// body section such as "BODY[HEADER]" or "BODY.PEEK[]<0.512>".
//
// The core does not parse ENVELOPE or BODYSTRUCTURE payloads; it hands back
// the raw parenthesized Value exactly as the server sent it.
type FetchItem string

// Well-known whole-message FETCH items.
const (
	FetchItemFlags         FetchItem = "FLAGS"
	FetchItemUID           FetchItem = "UID"
	FetchItemInternalDate  FetchItem = "INTERNALDATE"
	FetchItemRFC822Size    FetchItem = "RFC822.SIZE"
	FetchItemEnvelope      FetchItem = "ENVELOPE"
	FetchItemBodyStructure FetchItem = "BODYSTRUCTURE"
)

// PartSpecifier names the part of a message a BODY[] section addresses.
type PartSpecifier string

const (
	PartSpecifierNone   PartSpecifier = ""
	PartSpecifierHeader PartSpecifier = "HEADER"
	PartSpecifierMIME   PartSpecifier = "MIME"
	PartSpecifierText   PartSpecifier = "TEXT"
)

// SectionPartial describes a byte range requested with BODY[...]<offset.size>.
type SectionPartial struct {
	Offset, Size int64
}

// BodySection describes a BODY[] or BODY.PEEK[] data item.
//
// The zero value requests the entire message: BodySection{}. Part selects a
// MIME sub-part by its dotted path, e.g. []int{1, 2} for part "1.2".
type BodySection struct {
	Specifier       PartSpecifier
	Part            []int
	HeaderFields    []string
	HeaderFieldsNot []string
	Partial         *SectionPartial
	Peek            bool
}

// Item renders the section as a FetchItem, e.g. "BODY.PEEK[HEADER]<0.100>".
func (s BodySection) Item() FetchItem {
	name := "BODY"
	if s.Peek {
		name += ".PEEK"
	}
	name += "[" + s.sectionSpec() + "]"
	if s.Partial != nil {
		name += fmt.Sprintf("<%d.%d>", s.Partial.Offset, s.Partial.Size)
	}
	return FetchItem(name)
}

func (s BodySection) sectionSpec() string {
	spec := ""
	for i, part := range s.Part {
		if i > 0 {
			spec += "."
		}
		spec += fmt.Sprintf("%d", part)
	}
	if s.Specifier == PartSpecifierNone {
		return spec
	}
	if spec != "" {
		spec += "."
	}
	spec += string(s.Specifier)
	if len(s.HeaderFields) > 0 {
		spec += ".FIELDS (" + joinQuoted(s.HeaderFields) + ")"
	} else if len(s.HeaderFieldsNot) > 0 {
		spec += ".FIELDS.NOT (" + joinQuoted(s.HeaderFieldsNot) + ")"
	}
	return spec
}

func joinQuoted(fields []string) string {
	out := ""
	for i, f := range fields {
		if i > 0 {
			out += " "
		}
		out += f
	}
	return out
}

// FetchData is one message's FETCH response: the data items the server
// returned, keyed by item name as the server sent it (e.g. "FLAGS", "UID",
// "BODY[1]"). That name can differ from the requested FetchItem: a
// BODY.PEEK[...] request is answered as BODY[...], and a partial
// BODY[...]<offset.size> as BODY[...]<offset>.
//
// Per RFC 3501, UID is always present when the request includes it,
// regardless of the item's position in the server's response; Connection
// extracts it before building this map so callers can key results by UID.
type FetchData map[FetchItem]Value

// Flags extracts the FLAGS item, if present.
func (d FetchData) Flags() ([]Flag, bool) {
	v, ok := d[FetchItemFlags]
	if !ok {
		return nil, false
	}
	l, err := AsList(v)
	if err != nil {
		return nil, false
	}
	flags := make([]Flag, 0, len(l))
	for _, item := range l {
		flags = append(flags, Flag(item.String()))
	}
	return flags, true
}
