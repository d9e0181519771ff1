// Package storefront owns the per-session application state and the
// command handlers that mutate it. Handlers return the side effects the
// render layer has to perform; derived views are recomputed on demand.
package storefront

import (
	"github.com/ikkim/vitrine-backend/internal/cart"
	"github.com/ikkim/vitrine-backend/internal/catalog"
	"github.com/ikkim/vitrine-backend/internal/checkout"
	"github.com/ikkim/vitrine-backend/internal/selection"
)

type State struct {
	ActiveFilter string
	Search       string
	Cart         *cart.Store
	Modal        *selection.Selection
	Checkout     checkout.Fields
}

// NewState starts on the "new" filter with an empty cart.
func NewState() *State {
	return &State{
		ActiveFilter: catalog.FilterNew,
		Cart:         cart.New(),
	}
}

// Snapshot is the serializable form of a State.
type Snapshot struct {
	ActiveFilter string           `json:"active_filter"`
	Search       string           `json:"search"`
	Cart         *cart.Store      `json:"cart"`
	Modal        *selection.State `json:"modal,omitempty"`
	Checkout     checkout.Fields  `json:"checkout"`
}

func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		ActiveFilter: s.ActiveFilter,
		Search:       s.Search,
		Cart:         s.Cart.Clone(),
		Checkout:     s.Checkout,
	}
	if s.Modal != nil {
		m := s.Modal.State()
		snap.Modal = &m
	}
	return snap
}

// Restore rebuilds a State. A modal whose product disappeared is dropped.
func Restore(cat *catalog.Catalog, snap Snapshot) *State {
	st := NewState()
	if snap.ActiveFilter != "" {
		st.ActiveFilter = snap.ActiveFilter
	}
	st.Search = snap.Search
	if snap.Cart != nil {
		st.Cart = snap.Cart.Clone()
	}
	if snap.Modal != nil {
		if m, ok := selection.Restore(cat, *snap.Modal); ok {
			st.Modal = m
		}
	}
	st.Checkout = snap.Checkout.Normalize()
	return st
}
