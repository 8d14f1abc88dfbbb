package deploy

import (
	"sort"

	"xdao.co/raforge/addr"
)

// Holder is the published content of one materialized account: one metadata
// blob, an ordered sequence of opaque module blobs, and the mutability flag.
//
// Contents are opaque bytes to this core; only ordering is significant, and
// it is preserved end-to-end because the execution engine's module-identity
// checks depend on it. Immutable flips to true exactly once and never back.
type Holder struct {
	Metadata  []byte
	Modules   [][]byte
	Immutable bool
}

func (h *Holder) clone() *Holder {
	if h == nil {
		return nil
	}
	out := &Holder{
		Metadata:  append([]byte(nil), h.Metadata...),
		Immutable: h.Immutable,
	}
	out.Modules = make([][]byte, len(h.Modules))
	for i, m := range h.Modules {
		out.Modules[i] = append([]byte(nil), m...)
	}
	return out
}

// holders is the keyed registry mapping account -> Holder. A registry entry
// appears at first publish, not at materialization.
type holders struct {
	byAccount map[addr.Address]*Holder
}

func newHolders() *holders {
	return &holders{byAccount: make(map[addr.Address]*Holder)}
}

func (hs *holders) get(account addr.Address) (*Holder, bool) {
	h, ok := hs.byAccount[account]
	return h, ok
}

func (hs *holders) put(account addr.Address, h *Holder) {
	hs.byAccount[account] = h
}

func (hs *holders) accounts() []addr.Address {
	out := make([]addr.Address, 0, len(hs.byAccount))
	for a := range hs.byAccount {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func (hs *holders) snapshot() map[addr.Address]*Holder {
	out := make(map[addr.Address]*Holder, len(hs.byAccount))
	for k, v := range hs.byAccount {
		out[k] = v.clone()
	}
	return out
}

func (hs *holders) restore(snap map[addr.Address]*Holder) {
	hs.byAccount = make(map[addr.Address]*Holder, len(snap))
	for k, v := range snap {
		hs.byAccount[k] = v.clone()
	}
}
