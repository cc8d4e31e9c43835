package imap

import (
	"sort"
	"strconv"
	"strings"
)

// Bound is one endpoint of a message/UID range. It replaces the floating
// point infinity sentinel some IMAP client implementations use to stand in
// for "*": a Bound is either a concrete number or the explicit Star variant,
// so the two can never be confused.
type Bound struct {
	num  uint32
	star bool
}

// Num returns a concrete Bound for n.
func Num(n uint32) Bound { return Bound{num: n} }

// StarBound is the "*" bound: the largest number the server knows about.
var StarBound = Bound{star: true}

// IsStar reports whether b is the "*" bound.
func (b Bound) IsStar() bool { return b.star }

// Value returns the concrete number of b and true, or (0, false) if b is
// Star.
func (b Bound) Value() (uint32, bool) {
	if b.star {
		return 0, false
	}
	return b.num, true
}

func (b Bound) String() string {
	if b.star {
		return "*"
	}
	return strconv.FormatUint(uint64(b.num), 10)
}

// Range is a contiguous range of message numbers or UIDs: "n", "n:m", or
// "n:*".
type Range struct {
	Start, Stop Bound
}

func (r Range) String() string {
	if r.Start == r.Stop {
		return r.Start.String()
	}
	return r.Start.String() + ":" + r.Stop.String()
}

func (r Range) dynamic() bool {
	return r.Start.IsStar() || r.Stop.IsStar()
}

func (r Range) contains(n uint32) bool {
	start, startOK := r.Start.Value()
	stop, stopOK := r.Stop.Value()
	if !startOK {
		// A Star start only matches another "*" sentinel server-side; as a
		// concrete number it can never be satisfied by a finite n.
		return false
	}
	if !stopOK {
		return n >= start
	}
	if start > stop {
		start, stop = stop, start
	}
	return n >= start && n <= stop
}

// NumSet identifies a set of messages, either by sequence number (SeqSet) or
// by UID (UIDSet).
//
// See the range-set syntax in distilled spec section 6: callers build sets
// from integers, arrays, or [from, to] pairs where to may be ST_MSGN/ST_UID's
// "*" via StarBound.
type NumSet interface {
	// String returns the IMAP wire representation of the set, e.g.
	// "1,3:5,9:*".
	String() string
	// Dynamic reports whether the set contains a "*" bound, meaning its
	// membership depends on the current state of the mailbox.
	Dynamic() bool
}

var (
	_ NumSet = SeqSet(nil)
	_ NumSet = UIDSet(nil)
)

// SeqSet is an ordered set of message sequence-number ranges.
type SeqSet []Range

// SeqSetNum returns a SeqSet containing exactly the given sequence numbers.
func SeqSetNum(nums ...uint32) SeqSet {
	s := make(SeqSet, len(nums))
	for i, n := range nums {
		s[i] = Range{Num(n), Num(n)}
	}
	return s
}

// SeqSetRange returns a single-range SeqSet, "start:stop".
func SeqSetRange(start, stop Bound) SeqSet {
	return SeqSet{{start, stop}}
}

func (s SeqSet) String() string { return rangesString([]Range(s)) }
func (s SeqSet) Dynamic() bool  { return rangesDynamic([]Range(s)) }

// Contains reports whether num is covered by a range in s. A range ending in
// "*" covers every number from its start upward; a range starting with "*"
// covers nothing.
func (s SeqSet) Contains(num uint32) bool { return rangesContain([]Range(s), num) }

// Nums returns every sequence number in s; ok is false if s is Dynamic, since
// a Star bound has no fixed membership without consulting the server.
func (s SeqSet) Nums() (nums []uint32, ok bool) { return rangesNums([]Range(s)) }

// UIDSet is an ordered set of message UID ranges.
type UIDSet []Range

// UIDSetNum returns a UIDSet containing exactly the given UIDs.
func UIDSetNum(uids ...UID) UIDSet {
	s := make(UIDSet, len(uids))
	for i, u := range uids {
		s[i] = Range{Num(uint32(u)), Num(uint32(u))}
	}
	return s
}

// UIDSetRange returns a single-range UIDSet, "start:stop".
func UIDSetRange(start, stop Bound) UIDSet {
	return UIDSet{{start, stop}}
}

func (s UIDSet) String() string { return rangesString([]Range(s)) }
func (s UIDSet) Dynamic() bool  { return rangesDynamic([]Range(s)) }

// Contains reports whether uid is covered by a range in s, with "*" bounds
// treated as in SeqSet.Contains.
func (s UIDSet) Contains(uid UID) bool { return rangesContain([]Range(s), uint32(uid)) }

// Nums returns every UID in s; ok is false if s is Dynamic.
func (s UIDSet) Nums() (uids []UID, ok bool) {
	nums, ok := rangesNums([]Range(s))
	if !ok {
		return nil, false
	}
	uids = make([]UID, len(nums))
	for i, n := range nums {
		uids[i] = UID(n)
	}
	return uids, true
}

func rangesString(ranges []Range) string {
	parts := make([]string, len(ranges))
	for i, r := range ranges {
		parts[i] = r.String()
	}
	return strings.Join(parts, ",")
}

func rangesDynamic(ranges []Range) bool {
	for _, r := range ranges {
		if r.dynamic() {
			return true
		}
	}
	return false
}

func rangesContain(ranges []Range, n uint32) bool {
	for _, r := range ranges {
		if r.contains(n) {
			return true
		}
	}
	return false
}

func rangesNums(ranges []Range) ([]uint32, bool) {
	var nums []uint32
	for _, r := range ranges {
		if r.dynamic() {
			return nil, false
		}
		start, _ := r.Start.Value()
		stop, _ := r.Stop.Value()
		if start > stop {
			start, stop = stop, start
		}
		for n := start; n <= stop; n++ {
			nums = append(nums, n)
		}
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })
	return nums, true
}
