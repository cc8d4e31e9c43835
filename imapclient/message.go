package imapclient

import (
	imap "github.com/arkemlar/imapengine"
	"github.com/arkemlar/imapengine/internal/wire"
)

const internalDateLayout = "02-Jan-2006 15:04:05 -0700"

// Append uploads msg into mailbox as a new message, returning the UID
// assigned when the server supports UIDPLUS and reports [APPENDUID].
func (c *Connection) Append(mailbox string, msg []byte, opts imap.AppendOptions) (*imap.AppendData, error) {
	tag := c.tags.next()
	enc := wire.NewEncoder()
	enc.Atom(tag).SP().Atom("APPEND").SP().Mailbox(mailbox)
	if len(opts.Flags) > 0 {
		enc.SP().List(func(enc *wire.Encoder) {
			for i, f := range opts.Flags {
				if i > 0 {
					enc.SP()
				}
				enc.Flag(f)
			}
		})
	}
	if !opts.Time.IsZero() {
		enc.SP().Quoted(opts.Time.Format(internalDateLayout))
	}
	enc.SP().Literal(msg).CRLF()

	_, _, statusArgs, err := c.execute(tag, enc)
	if err != nil {
		return nil, err
	}

	data := &imap.AppendData{}
	if args, ok := responseCodeArgs(statusArgs, "APPENDUID"); ok && len(args) == 2 {
		if uidValidity, err := imap.AsNumber(args[0]); err == nil {
			data.UIDValidity = uidValidity
		}
		if uid, err := imap.AsNumber(args[1]); err == nil {
			data.UID = imap.UID(uid)
		}
	}
	return data, nil
}

// Copy copies ids from the selected mailbox into dest.
func (c *Connection) Copy(ids imap.NumSet, mode imap.Mode, dest string) (*imap.CopyData, error) {
	return c.copyOrMove("COPY", ids, mode, dest)
}

// Move moves ids from the selected mailbox into dest (RFC 6851): each moved
// message is expunged from the source, so Move also returns the sequence
// numbers the server reported as expunged.
func (c *Connection) Move(ids imap.NumSet, mode imap.Mode, dest string) (*imap.CopyData, []uint32, error) {
	tag := c.tags.next()
	enc := wire.NewEncoder()
	writeIDCommand(enc, tag, mode, "MOVE", ids)
	enc.SP().Mailbox(dest).CRLF()

	untagged, _, statusArgs, err := c.execute(tag, enc)
	if err != nil {
		return nil, nil, err
	}

	var expunged []uint32
	for _, fr := range untagged {
		if len(fr.Values) == 2 && equalFold(fr.Values[1].String(), "EXPUNGE") {
			if n, err := imap.AsNumber(fr.Values[0]); err == nil {
				expunged = append(expunged, n)
			}
		}
	}
	return copyDataFromStatus(statusArgs), expunged, nil
}

func (c *Connection) copyOrMove(cmdName string, ids imap.NumSet, mode imap.Mode, dest string) (*imap.CopyData, error) {
	tag := c.tags.next()
	enc := wire.NewEncoder()
	writeIDCommand(enc, tag, mode, cmdName, ids)
	enc.SP().Mailbox(dest).CRLF()

	_, _, statusArgs, err := c.execute(tag, enc)
	if err != nil {
		return nil, err
	}
	return copyDataFromStatus(statusArgs), nil
}

func copyDataFromStatus(statusArgs []imap.Value) *imap.CopyData {
	args, ok := responseCodeArgs(statusArgs, "COPYUID")
	if !ok || len(args) != 3 {
		return &imap.CopyData{}
	}
	uidValidity, _ := imap.AsNumber(args[0])
	src := parseUIDSetArg(args[1])
	dst := parseUIDSetArg(args[2])
	return &imap.CopyData{UIDValidity: uidValidity, SourceUIDs: src, DestUIDs: dst}
}

func parseUIDSetArg(v imap.Value) imap.UIDSet {
	ranges, err := parseNumSet(v.String())
	if err != nil {
		return nil
	}
	return imap.UIDSet(ranges)
}

// writeIDCommand encodes "[UID ]<cmdName> <ids>", the shared prefix of
// every id-bearing command.
func writeIDCommand(enc *wire.Encoder, tag string, mode imap.Mode, cmdName string, ids imap.NumSet) {
	enc.Atom(tag).SP()
	if mode == imap.ST_UID {
		enc.Atom("UID").SP()
	}
	enc.Atom(cmdName).SP().NumSet(ids)
}

// Search runs SEARCH (or UID SEARCH) with criteria and returns the matching
// ids. An empty result is a valid success, not an error.
func (c *Connection) Search(criteria imap.SearchCriteria, mode imap.Mode) (*imap.SearchData, error) {
	tag := c.tags.next()
	enc := wire.NewEncoder()
	enc.Atom(tag).SP()
	if mode == imap.ST_UID {
		enc.Atom("UID").SP()
	}
	enc.Atom("SEARCH").SP()
	encodeSearchCriteria(enc, criteria)
	enc.CRLF()

	untagged, _, _, err := c.execute(tag, enc)
	if err != nil {
		return nil, err
	}

	for _, fr := range untagged {
		if len(fr.Values) == 0 || !equalFold(fr.Values[0].String(), "SEARCH") {
			continue
		}
		var nums []uint32
		for _, v := range fr.Values[1:] {
			n, err := imap.AsNumber(v)
			if err != nil {
				continue
			}
			nums = append(nums, n)
		}
		if mode == imap.ST_UID {
			uids := make([]imap.UID, len(nums))
			for i, n := range nums {
				uids[i] = imap.UID(n)
			}
			return &imap.SearchData{All: imap.UIDSetNum(uids...)}, nil
		}
		return &imap.SearchData{All: imap.SeqSetNum(nums...)}, nil
	}
	return &imap.SearchData{}, nil
}

// Uids resolves sequence numbers to UIDs by running "UID SEARCH" against the
// sequence set built from msgns.
func (c *Connection) Uids(msgns []uint32) ([]imap.UID, error) {
	data, err := c.Search(imap.SearchCriteria{SeqNum: []imap.SeqSet{imap.SeqSetNum(msgns...)}}, imap.ST_UID)
	if err != nil {
		return nil, err
	}
	uids, _ := data.All.(imap.UIDSet).Nums()
	return uids, nil
}

func encodeSearchCriteria(enc *wire.Encoder, c imap.SearchCriteria) {
	w := &searchWriter{enc: enc}
	for _, s := range c.SeqNum {
		w.key(func() { enc.NumSet(s) })
	}
	for _, s := range c.UID {
		w.key(func() { enc.Atom("UID").SP().NumSet(s) })
	}
	if !c.Since.IsZero() {
		w.key(func() { enc.Atom("SINCE").SP().Quoted(c.Since.Format("02-Jan-2006")) })
	}
	if !c.Before.IsZero() {
		w.key(func() { enc.Atom("BEFORE").SP().Quoted(c.Before.Format("02-Jan-2006")) })
	}
	if !c.SentSince.IsZero() {
		w.key(func() { enc.Atom("SENTSINCE").SP().Quoted(c.SentSince.Format("02-Jan-2006")) })
	}
	if !c.SentBefore.IsZero() {
		w.key(func() { enc.Atom("SENTBEFORE").SP().Quoted(c.SentBefore.Format("02-Jan-2006")) })
	}
	for _, h := range c.Header {
		w.key(func() { enc.Atom("HEADER").SP().String(h.Key).SP().String(h.Value) })
	}
	for _, body := range c.Body {
		w.key(func() { enc.Atom("BODY").SP().String(body) })
	}
	for _, text := range c.Text {
		w.key(func() { enc.Atom("TEXT").SP().String(text) })
	}
	for _, f := range c.Flag {
		w.key(func() { enc.Atom(flagSearchKey(f)) })
	}
	for _, f := range c.NotFlag {
		w.key(func() { enc.Atom("NOT").SP().Atom(flagSearchKey(f)) })
	}
	if c.Larger > 0 {
		w.key(func() { enc.Atom("LARGER").SP().Number64(c.Larger) })
	}
	if c.Smaller > 0 {
		w.key(func() { enc.Atom("SMALLER").SP().Number64(c.Smaller) })
	}
	for _, not := range c.Not {
		w.key(func() { enc.Atom("NOT").SP().List(func(enc *wire.Encoder) { encodeSearchCriteria(enc, not) }) })
	}
	for _, pair := range c.Or {
		w.key(func() {
			enc.Atom("OR").SP()
			enc.List(func(enc *wire.Encoder) { encodeSearchCriteria(enc, pair[0]) })
			enc.SP()
			enc.List(func(enc *wire.Encoder) { encodeSearchCriteria(enc, pair[1]) })
		})
	}
	if !w.wrote {
		enc.Atom("ALL")
	}
}

// flagSearchKey maps a system flag to its SEARCH keyword, e.g. "\Seen" ->
// "SEEN". Keyword flags (not starting with '\') are searched via KEYWORD.
func flagSearchKey(f imap.Flag) string {
	s := string(f)
	if len(s) > 0 && s[0] == '\\' {
		return toUpperASCII(s[1:])
	}
	return "KEYWORD " + s
}

func toUpperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'a' <= c && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}

// searchWriter inserts a separating SP between search keys without the
// caller having to track whether it's the first one.
type searchWriter struct {
	enc   *wire.Encoder
	wrote bool
}

func (w *searchWriter) key(fn func()) {
	if w.wrote {
		w.enc.SP()
	}
	w.wrote = true
	fn()
}
