// Package checkout turns a cart into the order summary text and the
// WhatsApp deep link used to send it.
package checkout

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/ikkim/vitrine-backend/internal/app/model"
	"github.com/ikkim/vitrine-backend/internal/cart"
	"github.com/ikkim/vitrine-backend/internal/cartkey"
	"github.com/ikkim/vitrine-backend/internal/catalog"
	"github.com/shopspring/decimal"
)

const (
	// Placeholder rendered for blank checkout fields.
	Placeholder = "—"

	whatsAppBase = "https://wa.me/"
)

var (
	ErrCartEmpty      = errors.New("cart empty")
	ErrFieldsRequired = errors.New("fields required")
)

// Fields are the free-text inputs collected before sending.
type Fields struct {
	Department string `json:"department"`
	Address    string `json:"address"`
	Slot       string `json:"slot"`
}

// Normalize trims every field.
func (f Fields) Normalize() Fields {
	return Fields{
		Department: strings.TrimSpace(f.Department),
		Address:    strings.TrimSpace(f.Address),
		Slot:       strings.TrimSpace(f.Slot),
	}
}

// Missing lists blank fields in form order.
func (f Fields) Missing() []string {
	f = f.Normalize()
	var missing []string
	if f.Department == "" {
		missing = append(missing, "department")
	}
	if f.Address == "" {
		missing = append(missing, "address")
	}
	if f.Slot == "" {
		missing = append(missing, "slot")
	}
	return missing
}

// FieldsRequiredError names the blank fields. It matches ErrFieldsRequired.
type FieldsRequiredError struct {
	Missing []string
}

func (e *FieldsRequiredError) Error() string {
	return "fields required: " + strings.Join(e.Missing, ", ")
}

func (e *FieldsRequiredError) Is(target error) bool {
	return target == ErrFieldsRequired
}

// Validate gates the send action. An empty cart is reported before
// missing fields.
func Validate(lines int, f Fields) error {
	if lines == 0 {
		return ErrCartEmpty
	}
	if missing := f.Missing(); len(missing) > 0 {
		return &FieldsRequiredError{Missing: missing}
	}
	return nil
}

// Line is a cart entry resolved against the catalog.
type Line struct {
	Key       string          `json:"key"`
	ProductID model.ProductID `json:"product_id"`
	Title     string          `json:"title"`
	Subtitle  string          `json:"subtitle"`
	TierLabel string          `json:"tier_label"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Qty       int             `json:"qty"`
	LineTotal decimal.Decimal `json:"line_total"`
	Choices   []string        `json:"choices,omitempty"`
}

// Note is the "Choix: a | b" line shown under box entries.
func (l Line) Note() string {
	if len(l.Choices) == 0 {
		return ""
	}
	return "Choix: " + strings.Join(l.Choices, " | ")
}

type Order struct {
	Lines []Line          `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

// ResolveLine returns false when the product is gone from the catalog.
func ResolveLine(e cart.Entry, cat *catalog.Catalog) (Line, bool) {
	d := cartkey.Decode(e.Key)
	p := cat.Find(d.ProductID)
	if p == nil {
		return Line{}, false
	}

	title := p.Title
	if title == "" {
		title = "Produit"
	}
	line := Line{
		Key:       e.Key,
		ProductID: p.ID,
		Title:     title,
		Subtitle:  p.Subtitle,
		TierLabel: d.TierLabel,
		UnitPrice: decimal.Zero,
		Qty:       e.Qty,
	}
	if t, ok := p.TierByLabel(d.TierLabel); ok {
		line.TierLabel = t.Label
		line.UnitPrice = t.Price
	}
	line.LineTotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(e.Qty)))
	for _, id := range d.Selections() {
		line.Choices = append(line.Choices, p.OptionText(id))
	}
	return line, true
}

// BuildOrder resolves every entry, silently dropping lines whose product
// no longer exists. Those entries stay in the cart.
func BuildOrder(entries []cart.Entry, cat *catalog.Catalog) Order {
	order := Order{Lines: []Line{}, Total: decimal.Zero}
	for _, e := range entries {
		line, ok := ResolveLine(e, cat)
		if !ok {
			continue
		}
		order.Lines = append(order.Lines, line)
		order.Total = order.Total.Add(line.LineTotal)
	}
	return order
}

// Text renders the message sent over WhatsApp.
func (o Order) Text(f Fields) string {
	f = f.Normalize()
	lines := []string{"🛒 Commande :"}
	for _, l := range o.Lines {
		entry := "- " + l.Title + " (" + l.TierLabel + ") x" + strconv.Itoa(l.Qty) + " = " + model.FormatMoney(l.LineTotal)
		if note := l.Note(); note != "" {
			entry += "\n  " + note
		}
		lines = append(lines, entry)
	}
	lines = append(lines,
		"",
		"Total: "+model.FormatMoney(o.Total),
		"",
		"Département: "+orPlaceholder(f.Department),
		"Adresse: "+orPlaceholder(f.Address),
		"Tournée: "+orPlaceholder(f.Slot),
	)
	return strings.Join(lines, "\n")
}

// BuildOrderText is BuildOrder followed by Text.
func BuildOrderText(entries []cart.Entry, cat *catalog.Catalog, f Fields) string {
	return BuildOrder(entries, cat).Text(f)
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}

// WhatsAppURL builds the deep link. Non-digits are stripped from the
// number; an empty text yields the bare contact link.
func WhatsAppURL(number, text string) string {
	u := whatsAppBase + digitsOnly(number)
	if text == "" {
		return u
	}
	return u + "?text=" + encodeURIComponent(text)
}

// Link returns the bare contact link for an empty cart and the prefilled
// order link otherwise.
func Link(number string, entries []cart.Entry, cat *catalog.Catalog, f Fields) string {
	if len(entries) == 0 {
		return WhatsAppURL(number, "")
	}
	return WhatsAppURL(number, BuildOrderText(entries, cat, f))
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// encodeURIComponent percent-encodes the text for a query value with spaces
// as %20 rather than '+'. Unlike the browser function it also escapes
// ! ' ( ) and *; the escaped forms decode to the same text.
func encodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
