// Package selection tracks the in-progress configuration of one product:
// tier, box slot choices and quantity. A nil *Selection is the closed state.
package selection

import (
	"errors"
	"strings"

	"github.com/ikkim/vitrine-backend/internal/app/model"
	"github.com/ikkim/vitrine-backend/internal/cart"
	"github.com/ikkim/vitrine-backend/internal/cartkey"
	"github.com/ikkim/vitrine-backend/internal/catalog"
)

var ErrIncomplete = errors.New("every box slot needs a selection")

type Selection struct {
	product   *model.Product
	tierIndex int
	slots     []string
	qty       int
}

// Open starts a selection with the first tier, empty slots and qty 1.
// Unknown products leave the modal closed.
func Open(cat *catalog.Catalog, id model.ProductID) (*Selection, bool) {
	p := cat.Find(id)
	if p == nil {
		return nil, false
	}
	s := &Selection{product: p, qty: 1}
	if p.IsBox {
		s.slots = make([]string, len(p.BoxPicks))
	}
	return s, true
}

func (s *Selection) Product() *model.Product {
	return s.product
}

func (s *Selection) TierIndex() int {
	return s.tierIndex
}

func (s *Selection) Qty() int {
	return s.qty
}

// Slots returns a copy of the current slot choices ("" when unset).
func (s *Selection) Slots() []string {
	return append([]string(nil), s.slots...)
}

// SelectTier ignores indices the product does not have.
func (s *Selection) SelectTier(i int) bool {
	if i < 0 || i >= len(s.product.Tiers) {
		return false
	}
	s.tierIndex = i
	return true
}

// SelectSlot records the option for slot i. An empty id clears the slot.
// Ids not offered by that slot are rejected.
func (s *Selection) SelectSlot(i int, optionID string) bool {
	if !s.product.IsBox || i < 0 || i >= len(s.slots) {
		return false
	}
	optionID = strings.TrimSpace(optionID)
	if optionID != "" && !s.product.HasOption(i, optionID) {
		return false
	}
	s.slots[i] = optionID
	return true
}

// Increment stops at cart.MaxQty.
func (s *Selection) Increment() {
	if s.qty < cart.MaxQty {
		s.qty++
	}
}

// Decrement floors at 1.
func (s *Selection) Decrement() {
	if s.qty > 1 {
		s.qty--
	}
}

// Step applies a stepper delta; the result stays in [1, cart.MaxQty].
func (s *Selection) Step(delta int) {
	s.qty = max(1, min(s.qty+cart.ClampDelta(delta), cart.MaxQty))
}

// CanCommit is recomputed from the slots on every call.
func (s *Selection) CanCommit() bool {
	if !s.product.IsBox {
		return true
	}
	for _, v := range s.slots {
		if v == "" {
			return false
		}
	}
	return true
}

// TierLabel is the active tier's label, or DEFAULT when there are no tiers.
func (s *Selection) TierLabel() string {
	if s.tierIndex < len(s.product.Tiers) {
		return s.product.Tiers[s.tierIndex].Label
	}
	return cartkey.DefaultTier
}

// Commit returns the cart key and quantity to add.
func (s *Selection) Commit() (cartkey.Key, int, error) {
	if !s.CanCommit() {
		return cartkey.Key{}, 0, ErrIncomplete
	}
	key := cartkey.Key{ProductID: s.product.ID, TierLabel: s.TierLabel()}
	if s.product.IsBox {
		key.Selections = s.Slots()
	}
	return key, s.qty, nil
}

// State is the serializable form of a selection.
type State struct {
	ProductID model.ProductID `json:"product_id"`
	TierIndex int             `json:"tier_index"`
	Slots     []string        `json:"slots,omitempty"`
	Qty       int             `json:"qty"`
}

func (s *Selection) State() State {
	return State{ProductID: s.product.ID, TierIndex: s.tierIndex, Slots: s.Slots(), Qty: s.qty}
}

// Restore re-opens a saved selection against the catalog, replaying only
// the choices that are still valid.
func Restore(cat *catalog.Catalog, st State) (*Selection, bool) {
	s, ok := Open(cat, st.ProductID)
	if !ok {
		return nil, false
	}
	s.SelectTier(st.TierIndex)
	for i, v := range st.Slots {
		s.SelectSlot(i, v)
	}
	if st.Qty > 1 {
		s.qty = min(st.Qty, cart.MaxQty)
	}
	return s, true
}
