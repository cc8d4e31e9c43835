package imap

// StoreFlagsOp selects how STORE should combine the given flags with a
// message's existing flags.
type StoreFlagsOp int

const (
	StoreFlagsSet StoreFlagsOp = iota
	StoreFlagsAdd
	StoreFlagsDel
)

// Item returns the STORE data item name for op: "FLAGS", "+FLAGS", or
// "-FLAGS". The ".SILENT" suffix, if wanted, is the caller's to add.
func (op StoreFlagsOp) Item() string {
	switch op {
	case StoreFlagsAdd:
		return "+FLAGS"
	case StoreFlagsDel:
		return "-FLAGS"
	default:
		return "FLAGS"
	}
}

// StoreFlags describes a STORE command: set, add, or remove Flags, and
// whether to suppress the server's untagged FETCH responses (Silent).
type StoreFlags struct {
	Op     StoreFlagsOp
	Silent bool
	Flags  []Flag
}
