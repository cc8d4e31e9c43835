package imapclient

import "strconv"

// tagGenerator hands out monotonically increasing command tags of the form
// "TAG1", "TAG2", ... Tags are unique for the lifetime of a Connection.
type tagGenerator struct {
	n uint64
}

func (g *tagGenerator) next() string {
	g.n++
	return "TAG" + strconv.FormatUint(g.n, 10)
}
