package imapclient

import (
	"fmt"

	imap "github.com/arkemlar/imapengine"
	"github.com/arkemlar/imapengine/internal/wire"
)

// Capability runs the CAPABILITY command and returns (and caches) the
// server's capability set.
func (c *Connection) Capability() (imap.CapSet, error) {
	tag := c.tags.next()
	enc := wire.NewEncoder()
	enc.Atom(tag).SP().Atom("CAPABILITY").CRLF()

	untagged, _, _, err := c.execute(tag, enc)
	if err != nil {
		return nil, err
	}

	caps := make(imap.CapSet)
	for _, fr := range untagged {
		if len(fr.Values) == 0 {
			continue
		}
		if !equalFold(fr.Values[0].String(), "CAPABILITY") {
			continue
		}
		for _, v := range fr.Values[1:] {
			caps[imap.Cap(v.String())] = struct{}{}
		}
	}
	c.caps = caps
	return caps, nil
}

func equalFold(a, b string) bool {
	return imap.Atom(a).EqualFold(b)
}

// Noop sends NOOP. Servers use the response to deliver mailbox-state
// updates (EXISTS, EXPUNGE, FETCH) without requiring a command that
// changes state; Noop discards those untagged responses and returns only
// the command's error, so callers that want them should use Idle instead.
func (c *Connection) Noop() error {
	tag := c.tags.next()
	enc := wire.NewEncoder()
	enc.Atom(tag).SP().Atom("NOOP").CRLF()
	_, _, _, err := c.execute(tag, enc)
	return err
}

// Id exchanges client/server identification via the ID extension (RFC
// 2971). Pass nil to send "ID NIL" (identify without disclosing fields).
func (c *Connection) Id(fields imap.IDFields) (imap.IDFields, error) {
	tag := c.tags.next()
	enc := wire.NewEncoder()
	enc.Atom(tag).SP().Atom("ID").SP()
	if fields == nil {
		enc.NIL()
	} else {
		enc.List(func(enc *wire.Encoder) {
			first := true
			for k, v := range fields {
				if !first {
					enc.SP()
				}
				first = false
				enc.String(k).SP().String(v)
			}
		})
	}
	enc.CRLF()

	untagged, _, _, err := c.execute(tag, enc)
	if err != nil {
		return nil, err
	}

	for _, fr := range untagged {
		if len(fr.Values) < 2 || !equalFold(fr.Values[0].String(), "ID") {
			continue
		}
		if imap.IsNil(fr.Values[1]) {
			return nil, nil
		}
		list, err := imap.AsList(fr.Values[1])
		if err != nil {
			return nil, imap.NewConnError(imap.ErrBadRequest, err)
		}
		return idFieldsFromList(list)
	}
	return nil, nil
}

func idFieldsFromList(list imap.List) (imap.IDFields, error) {
	if len(list)%2 != 0 {
		return nil, fmt.Errorf("imapclient: ID response has odd element count")
	}
	out := make(imap.IDFields, len(list)/2)
	for i := 0; i+1 < len(list); i += 2 {
		key := list[i].String()
		if imap.IsNil(list[i+1]) {
			out[key] = ""
			continue
		}
		val, err := imap.AsString(list[i+1])
		if err != nil {
			return nil, err
		}
		out[key] = string(val)
	}
	return out, nil
}

// GetQuota fetches the resource usage and limits for a quota root (RFC
// 2087). Most servers name the root after the mailbox hierarchy's root,
// often "" or "INBOX".
func (c *Connection) GetQuota(root string) (*imap.QuotaData, error) {
	tag := c.tags.next()
	enc := wire.NewEncoder()
	enc.Atom(tag).SP().Atom("GETQUOTA").SP().String(root).CRLF()

	untagged, _, _, err := c.execute(tag, enc)
	if err != nil {
		return nil, err
	}
	for _, fr := range untagged {
		if q, ok := parseQuotaFrame(fr); ok {
			return &q, nil
		}
	}
	return nil, imap.NewConnError(imap.ErrBadRequest, fmt.Errorf("imapclient: no QUOTA response for root %q", root))
}

// GetQuotaRoot resolves the quota root(s) associated with mailbox and
// returns the usage/limit data for each.
func (c *Connection) GetQuotaRoot(mailbox string) ([]imap.QuotaData, error) {
	tag := c.tags.next()
	enc := wire.NewEncoder()
	enc.Atom(tag).SP().Atom("GETQUOTAROOT").SP().Mailbox(mailbox).CRLF()

	untagged, _, _, err := c.execute(tag, enc)
	if err != nil {
		return nil, err
	}

	var out []imap.QuotaData
	for _, fr := range untagged {
		if q, ok := parseQuotaFrame(fr); ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func parseQuotaFrame(fr frame) (imap.QuotaData, bool) {
	if len(fr.Values) < 2 || !equalFold(fr.Values[0].String(), "QUOTA") {
		return imap.QuotaData{}, false
	}
	root := fr.Values[1].String()
	list, err := imap.AsList(fr.Values[2])
	if err != nil {
		return imap.QuotaData{}, false
	}

	var resources []imap.QuotaResource
	for i := 0; i+2 < len(list); i += 3 {
		usage, uerr := imap.AsNumber(list[i+1])
		limit, lerr := imap.AsNumber(list[i+2])
		if uerr != nil || lerr != nil {
			continue
		}
		resources = append(resources, imap.QuotaResource{
			Type:  imap.QuotaResourceType(list[i].String()),
			Usage: int64(usage),
			Limit: int64(limit),
		})
	}
	return imap.QuotaData{Root: root, Resources: resources}, true
}
