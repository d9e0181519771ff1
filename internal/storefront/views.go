package storefront

import (
	"github.com/ikkim/vitrine-backend/internal/app/model"
	"github.com/ikkim/vitrine-backend/internal/catalog"
	"github.com/ikkim/vitrine-backend/internal/checkout"
	"github.com/shopspring/decimal"
)

// Card is one product tile of the grid.
type Card struct {
	ID         model.ProductID `json:"id"`
	Title      string          `json:"title"`
	Subtitle   string          `json:"subtitle"`
	Badge      string          `json:"badge"`
	Poster     string          `json:"poster"`
	PriceLabel string          `json:"price_label"`
	MetaLabel  string          `json:"meta_label"`
	Tags       []string        `json:"tags"`
	IsBox      bool            `json:"is_box"`
}

type GridView struct {
	Filter string `json:"filter"`
	Search string `json:"search"`
	Cards  []Card `json:"cards"`
}

func NewCard(p *model.Product) Card {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return Card{
		ID:         p.ID,
		Title:      p.Title,
		Subtitle:   p.Subtitle,
		Badge:      p.Badge,
		Poster:     p.Poster,
		PriceLabel: p.CardPriceLabel(),
		MetaLabel:  p.MetaLabel(),
		Tags:       tags,
		IsBox:      p.IsBox,
	}
}

func (c *Controller) Grid(st *State) GridView {
	products := catalog.Filtered(c.catalog, st.ActiveFilter, st.Search)
	view := GridView{Filter: st.ActiveFilter, Search: st.Search, Cards: make([]Card, 0, len(products))}
	for i := range products {
		view.Cards = append(view.Cards, NewCard(&products[i]))
	}
	return view
}

// CartLine is a resolved cart entry plus its display strings.
type CartLine struct {
	checkout.Line
	Note           string `json:"note,omitempty"`
	UnitPriceLabel string `json:"unit_price_label"`
	LineTotalLabel string `json:"line_total_label"`
}

type CartView struct {
	Lines      []CartLine      `json:"lines"`
	Count      int             `json:"count"`
	Total      decimal.Decimal `json:"total"`
	TotalLabel string          `json:"total_label"`
	Empty      bool            `json:"empty"`
	Checkout   checkout.Fields `json:"checkout"`
	Link       string          `json:"link"`
}

// Cart resolves the lines against the catalog. Count covers every entry,
// including stale ones that no longer resolve to a product.
func (c *Controller) Cart(st *State) CartView {
	entries := st.Cart.Entries()
	order := checkout.BuildOrder(entries, c.catalog)
	view := CartView{
		Lines:      make([]CartLine, 0, len(order.Lines)),
		Count:      st.Cart.TotalQty(),
		Total:      order.Total,
		TotalLabel: model.FormatMoney(order.Total),
		Empty:      len(entries) == 0,
		Checkout:   st.Checkout,
		Link:       c.CheckoutLink(st),
	}
	for _, l := range order.Lines {
		view.Lines = append(view.Lines, CartLine{
			Line:           l,
			Note:           l.Note(),
			UnitPriceLabel: model.FormatMoney(l.UnitPrice),
			LineTotalLabel: model.FormatMoney(l.LineTotal),
		})
	}
	return view
}

type TierRow struct {
	Index     int             `json:"index"`
	Label     string          `json:"label"`
	Price     decimal.Decimal `json:"price"`
	PriceText string          `json:"price_text"`
	UnitText  string          `json:"unit_text"`
	Active    bool            `json:"active"`
}

type SlotRow struct {
	Index    int               `json:"index"`
	Label    string            `json:"label"`
	Options  []model.BoxOption `json:"options"`
	Selected string            `json:"selected"`
}

type ModalView struct {
	ProductID model.ProductID `json:"product_id"`
	Title     string          `json:"title"`
	Brand     string          `json:"brand"`
	Badge     string          `json:"badge"`
	Meta      string          `json:"meta"`
	Desc      string          `json:"desc"`
	Poster    string          `json:"poster"`
	Video     string          `json:"video"`
	Tags      []string        `json:"tags"`
	MainPrice string          `json:"main_price"`
	MainUnit  string          `json:"main_unit"`
	Tiers     []TierRow       `json:"tiers"`
	IsBox     bool            `json:"is_box"`
	Slots     []SlotRow       `json:"slots,omitempty"`
	Qty       int             `json:"qty"`
	CanCommit bool            `json:"can_commit"`
}

// Modal returns nil while the modal is closed.
func (c *Controller) Modal(st *State) *ModalView {
	s := st.Modal
	if s == nil {
		return nil
	}
	p := s.Product()
	view := &ModalView{
		ProductID: p.ID,
		Title:     p.Title,
		Brand:     p.Subtitle,
		Badge:     p.Badge,
		Meta:      p.MetaLabel(),
		Desc:      p.Desc,
		Poster:    p.Poster,
		Video:     p.Video,
		Tags:      p.Tags,
		IsBox:     p.IsBox,
		Qty:       s.Qty(),
		CanCommit: s.CanCommit(),
	}
	for i, t := range p.Tiers {
		active := i == s.TierIndex()
		view.Tiers = append(view.Tiers, TierRow{
			Index:     i,
			Label:     t.Label,
			Price:     t.Price,
			PriceText: model.FormatMoney(t.Price),
			UnitText:  t.UnitText,
			Active:    active,
		})
		if active {
			view.MainPrice = model.FormatMoney(t.Price)
			view.MainUnit = t.UnitText
		}
	}
	if !p.IsBox {
		return view
	}
	slots := s.Slots()
	for i, slot := range p.BoxPicks {
		view.Slots = append(view.Slots, SlotRow{
			Index:    i,
			Label:    slot.Label,
			Options:  slot.Options,
			Selected: slots[i],
		})
	}
	return view
}
