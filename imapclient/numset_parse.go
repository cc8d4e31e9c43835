package imapclient

import (
	"strconv"
	"strings"

	imap "github.com/arkemlar/imapengine"
)

// parseNumSet parses the wire form of a sequence/UID set ("1,3:5,9:*") back
// into ranges, the inverse of imap.NumSet.String. It's used to decode
// response codes like [COPYUID validity srcset dstset] that echo sets back
// as plain text rather than structured tokens.
func parseNumSet(s string) ([]imap.Range, error) {
	var ranges []imap.Range
	for _, part := range strings.Split(s, ",") {
		if part == "" {
			continue
		}
		bounds := strings.SplitN(part, ":", 2)
		start, err := parseBound(bounds[0])
		if err != nil {
			return nil, err
		}
		stop := start
		if len(bounds) == 2 {
			stop, err = parseBound(bounds[1])
			if err != nil {
				return nil, err
			}
		}
		ranges = append(ranges, imap.Range{Start: start, Stop: stop})
	}
	return ranges, nil
}

func parseBound(s string) (imap.Bound, error) {
	if s == "*" {
		return imap.StarBound, nil
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return imap.Bound{}, err
	}
	return imap.Num(uint32(n)), nil
}
