package storefront

import (
	"errors"

	"github.com/ikkim/vitrine-backend/internal/app/model"
	"github.com/ikkim/vitrine-backend/internal/cartkey"
	"github.com/ikkim/vitrine-backend/internal/catalog"
	"github.com/ikkim/vitrine-backend/internal/checkout"
	"github.com/ikkim/vitrine-backend/internal/selection"
)

// Controller binds the command handlers to a catalog and a WhatsApp
// number. It holds no session state of its own.
type Controller struct {
	catalog  *catalog.Catalog
	whatsApp string
}

func NewController(cat *catalog.Catalog, whatsAppNumber string) *Controller {
	return &Controller{catalog: cat, whatsApp: whatsAppNumber}
}

func (c *Controller) Catalog() *catalog.Catalog {
	return c.catalog
}

func (c *Controller) OnFilterChange(st *State, filter string) []Effect {
	if filter == "" || filter == st.ActiveFilter {
		return nil
	}
	st.ActiveFilter = filter
	return []Effect{effect(EffectGridChanged)}
}

func (c *Controller) OnSearch(st *State, raw string) []Effect {
	term := catalog.NormalizeSearch(raw)
	if term == st.Search {
		return nil
	}
	st.Search = term
	return []Effect{effect(EffectGridChanged)}
}

// OnQuickAdd adds one unit of the first tier. Box products cannot be added
// without their slot choices, so they open the modal instead. A line already
// at cart.MaxQty is left alone and no effect is emitted.
func (c *Controller) OnQuickAdd(st *State, id model.ProductID) []Effect {
	p := c.catalog.Find(id)
	if p == nil {
		return nil
	}
	if p.IsBox {
		return c.OnOpenProduct(st, id)
	}
	label := cartkey.DefaultTier
	if t, ok := p.FirstTier(); ok {
		label = t.Label
	}
	if err := st.Cart.Add(cartkey.Encode(p.ID, label, nil), 1); err != nil {
		return nil
	}
	return []Effect{effect(EffectCartChanged), toast(ToastAdded)}
}

// OnOpenProduct is a no-op for unknown ids.
func (c *Controller) OnOpenProduct(st *State, id model.ProductID) []Effect {
	s, ok := selection.Open(c.catalog, id)
	if !ok {
		return nil
	}
	st.Modal = s
	return []Effect{effect(EffectModalOpened)}
}

func (c *Controller) OnTierSelect(st *State, index int) []Effect {
	if st.Modal == nil || !st.Modal.SelectTier(index) {
		return nil
	}
	return []Effect{effect(EffectModalChanged)}
}

func (c *Controller) OnSlotSelect(st *State, slot int, optionID string) []Effect {
	if st.Modal == nil || !st.Modal.SelectSlot(slot, optionID) {
		return nil
	}
	return []Effect{effect(EffectModalChanged)}
}

func (c *Controller) OnQtyStep(st *State, delta int) []Effect {
	if st.Modal == nil || delta == 0 {
		return nil
	}
	before := st.Modal.Qty()
	st.Modal.Step(delta)
	if st.Modal.Qty() == before {
		return nil
	}
	return []Effect{effect(EffectModalChanged)}
}

// OnCommit adds the configured line and closes the modal. An unfinished
// box keeps the modal open and returns selection.ErrIncomplete.
func (c *Controller) OnCommit(st *State) ([]Effect, error) {
	if st.Modal == nil {
		return nil, ErrModalClosed
	}
	key, qty, err := st.Modal.Commit()
	if err != nil {
		return nil, err
	}
	if err := st.Cart.Add(key.String(), qty); err != nil {
		return nil, err
	}
	st.Modal = nil
	return []Effect{effect(EffectCartChanged), toast(ToastAdded), effect(EffectModalClosed)}, nil
}

// OnCloseModal discards the in-progress selection.
func (c *Controller) OnCloseModal(st *State) []Effect {
	if st.Modal == nil {
		return nil
	}
	st.Modal = nil
	return []Effect{effect(EffectModalClosed)}
}

// OnCartAdjust is the +/- control of a cart line. Keys not in the cart are
// ignored.
func (c *Controller) OnCartAdjust(st *State, key string, delta int) []Effect {
	if delta == 0 || !st.Cart.Has(key) {
		return nil
	}
	st.Cart.Step(key, delta)
	return []Effect{effect(EffectCartChanged)}
}

// OnCartSetQty removes the line when qty <= 0.
func (c *Controller) OnCartSetQty(st *State, key string, qty int) []Effect {
	if !st.Cart.Has(key) {
		return nil
	}
	st.Cart.SetQty(key, qty)
	return []Effect{effect(EffectCartChanged)}
}

func (c *Controller) OnCartRemove(st *State, key string) []Effect {
	if !st.Cart.Has(key) {
		return nil
	}
	st.Cart.Remove(key)
	return []Effect{effect(EffectCartChanged)}
}

func (c *Controller) OnCartClear(st *State) []Effect {
	if st.Cart.Len() == 0 {
		return nil
	}
	st.Cart.Clear()
	return []Effect{effect(EffectCartChanged)}
}

// OnCheckoutFields stores the trimmed form values; the link changes with
// them, so the cart view is refreshed.
func (c *Controller) OnCheckoutFields(st *State, f checkout.Fields) []Effect {
	f = f.Normalize()
	if f == st.Checkout {
		return nil
	}
	st.Checkout = f
	return []Effect{effect(EffectCartChanged)}
}

// OnSend validates and emits the navigation to the order link. It never
// changes the cart.
func (c *Controller) OnSend(st *State) ([]Effect, error) {
	err := checkout.Validate(st.Cart.Len(), st.Checkout)
	switch {
	case err == nil:
		return []Effect{{Type: EffectNavigate, URL: c.CheckoutLink(st)}}, nil
	case errors.Is(err, checkout.ErrCartEmpty):
		return []Effect{toast(ToastCartEmpty)}, err
	default:
		effects := []Effect{toast(ToastFieldsRequired)}
		if missing := st.Checkout.Missing(); len(missing) > 0 {
			effects = append(effects, Effect{Type: EffectFocusField, Field: missing[0]})
		}
		return effects, err
	}
}

// CheckoutLink is always up to date, even while the form is incomplete.
func (c *Controller) CheckoutLink(st *State) string {
	return checkout.Link(c.whatsApp, st.Cart.Entries(), c.catalog, st.Checkout)
}
