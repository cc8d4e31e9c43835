package imapclient

import (
	"fmt"
	"strings"

	imap "github.com/arkemlar/imapengine"
	"github.com/arkemlar/imapengine/internal/wire"
)

// Fetch runs FETCH (or UID FETCH) for ids, requesting items, and returns a
// map keyed by the id each response line carried: UID when mode is ST_UID,
// sequence number when mode is ST_MSGN.
//
// Per message, if exactly one item was requested the map's value is that
// item's bare Value; if more than one, it's the full FetchData for that
// message. The bare Value is looked up under the requested name, or under
// BODY[...] for a BODY.PEEK[...] request; when the server's key matches
// neither (as for a partial <offset.size> request, which comes back as
// <offset>), the value is the full FetchData. UID is located in the key/value pairs by name, not position,
// since servers vary in where they place it.
func (c *Connection) Fetch(ids imap.NumSet, items []imap.FetchItem, mode imap.Mode) (map[uint32]interface{}, error) {
	tag := c.tags.next()
	enc := wire.NewEncoder()
	enc.Atom(tag).SP()
	if mode == imap.ST_UID {
		enc.Atom("UID").SP()
	}
	enc.Atom("FETCH").SP().NumSet(ids).SP()
	if len(items) == 1 {
		enc.Atom(string(items[0]))
	} else {
		enc.List(func(enc *wire.Encoder) {
			for i, item := range items {
				if i > 0 {
					enc.SP()
				}
				enc.Atom(string(item))
			}
		})
	}
	enc.CRLF()

	untagged, _, _, err := c.execute(tag, enc)
	if err != nil {
		return nil, err
	}

	single := isSingleID(ids)
	results := make(map[uint32]interface{})
	for _, fr := range untagged {
		id, data, ok, err := parseFetchFrame(fr, mode)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if single && !numSetContains(ids, id) {
			// A concurrent session's notification for an id we didn't ask
			// about; the server is free to interleave these mid-command.
			continue
		}
		if len(items) == 1 {
			if v, found := data[items[0]]; found {
				results[id] = v
				continue
			}
			// Servers answer a BODY.PEEK[...] request under BODY[...].
			unpeeked := imap.FetchItem(strings.Replace(string(items[0]), "BODY.PEEK[", "BODY[", 1))
			if v, found := data[unpeeked]; found {
				results[id] = v
				continue
			}
		}
		results[id] = data
	}
	return results, nil
}

// isSingleID reports whether ids names exactly one message: a single
// non-dynamic range whose endpoints are equal. FETCH/STORE responses for any
// other id, seen while such a request is outstanding, belong to a
// concurrent session's notification, not this command.
func isSingleID(ids imap.NumSet) bool {
	switch s := ids.(type) {
	case imap.SeqSet:
		return len(s) == 1 && !s.Dynamic() && s[0].Start == s[0].Stop
	case imap.UIDSet:
		return len(s) == 1 && !s.Dynamic() && s[0].Start == s[0].Stop
	default:
		return false
	}
}

// numSetContains reports whether id (a sequence number or UID, per the mode
// ids was built for) is a member of ids.
func numSetContains(ids imap.NumSet, id uint32) bool {
	switch s := ids.(type) {
	case imap.SeqSet:
		return s.Contains(id)
	case imap.UIDSet:
		return s.Contains(imap.UID(id))
	default:
		return true
	}
}

// parseFetchFrame decodes "* n FETCH (k1 v1 k2 v2 ...)" into the id it's
// keyed by (UID or sequence number, per mode) and its FetchData.
func parseFetchFrame(fr frame, mode imap.Mode) (uint32, imap.FetchData, bool, error) {
	if len(fr.Values) < 3 || !equalFold(fr.Values[1].String(), "FETCH") {
		return 0, nil, false, nil
	}
	seqNum, err := imap.AsNumber(fr.Values[0])
	if err != nil {
		return 0, nil, false, nil
	}
	list, err := imap.AsList(fr.Values[2])
	if err != nil {
		return 0, nil, false, fmt.Errorf("imapclient: malformed FETCH response: %w", err)
	}
	if len(list)%2 != 0 {
		return 0, nil, false, fmt.Errorf("imapclient: FETCH data has odd element count")
	}

	data := make(imap.FetchData, len(list)/2)
	id := seqNum
	for i := 0; i+1 < len(list); i += 2 {
		key := imap.FetchItem(list[i].String())
		data[key] = list[i+1]
		if mode == imap.ST_UID && equalFold(string(key), "UID") {
			if uid, err := imap.AsNumber(list[i+1]); err == nil {
				id = uid
			}
		}
	}
	return id, data, true, nil
}

// Content fetches the full RFC822 body of each message in ids.
func (c *Connection) Content(ids imap.NumSet, mode imap.Mode) (map[uint32][]byte, error) {
	item := imap.BodySection{}.Item()
	results, err := c.Fetch(ids, []imap.FetchItem{item}, mode)
	if err != nil {
		return nil, err
	}
	return valuesAsBytes(results)
}

// Headers fetches just the RFC822 header of each message in ids.
func (c *Connection) Headers(ids imap.NumSet, mode imap.Mode) (map[uint32][]byte, error) {
	item := imap.BodySection{Specifier: imap.PartSpecifierHeader, Peek: true}.Item()
	results, err := c.Fetch(ids, []imap.FetchItem{item}, mode)
	if err != nil {
		return nil, err
	}
	return valuesAsBytes(results)
}

// Flags fetches the current flag list of each message in ids.
func (c *Connection) Flags(ids imap.NumSet, mode imap.Mode) (map[uint32][]imap.Flag, error) {
	results, err := c.Fetch(ids, []imap.FetchItem{imap.FetchItemFlags}, mode)
	if err != nil {
		return nil, err
	}
	out := make(map[uint32][]imap.Flag, len(results))
	for id, v := range results {
		val, ok := v.(imap.Value)
		if !ok {
			continue
		}
		list, err := imap.AsList(val)
		if err != nil {
			continue
		}
		out[id] = flagsFromList(list)
	}
	return out, nil
}

// Sizes fetches the RFC822.SIZE of each message in ids.
func (c *Connection) Sizes(ids imap.NumSet, mode imap.Mode) (map[uint32]int64, error) {
	results, err := c.Fetch(ids, []imap.FetchItem{imap.FetchItemRFC822Size}, mode)
	if err != nil {
		return nil, err
	}
	out := make(map[uint32]int64, len(results))
	for id, v := range results {
		val, ok := v.(imap.Value)
		if !ok {
			continue
		}
		n, err := imap.AsNumber(val)
		if err != nil {
			continue
		}
		out[id] = int64(n)
	}
	return out, nil
}

func valuesAsBytes(results map[uint32]interface{}) (map[uint32][]byte, error) {
	out := make(map[uint32][]byte, len(results))
	for id, v := range results {
		val, ok := v.(imap.Value)
		if !ok {
			continue
		}
		b, err := imap.AsString(val)
		if err != nil {
			if imap.IsNil(val) {
				continue
			}
			return nil, err
		}
		out[id] = b
	}
	return out, nil
}

// Store changes flags on ids in the selected mailbox and, unless Silent is
// set, returns the resulting flag list per message the way Fetch does.
func (c *Connection) Store(ids imap.NumSet, mode imap.Mode, store imap.StoreFlags) (map[uint32][]imap.Flag, error) {
	tag := c.tags.next()
	enc := wire.NewEncoder()
	enc.Atom(tag).SP()
	if mode == imap.ST_UID {
		enc.Atom("UID").SP()
	}
	enc.Atom("STORE").SP().NumSet(ids).SP().Atom(store.Op.Item())
	if store.Silent {
		enc.Atom(".SILENT")
	}
	enc.SP().List(func(enc *wire.Encoder) {
		for i, f := range store.Flags {
			if i > 0 {
				enc.SP()
			}
			enc.Flag(f)
		}
	})
	enc.CRLF()

	untagged, _, _, err := c.execute(tag, enc)
	if err != nil {
		return nil, err
	}
	if store.Silent {
		return nil, nil
	}

	single := isSingleID(ids)
	out := make(map[uint32][]imap.Flag)
	for _, fr := range untagged {
		id, data, ok, err := parseFetchFrame(fr, mode)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if single && !numSetContains(ids, id) {
			continue
		}
		if flags, ok := data.Flags(); ok {
			out[id] = flags
		}
	}
	return out, nil
}
