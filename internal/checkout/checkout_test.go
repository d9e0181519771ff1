package checkout

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/ikkim/vitrine-backend/internal/cart"
	"github.com/ikkim/vitrine-backend/internal/catalog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testNumber = "212665358533"

func demoCatalog(t *testing.T) *catalog.Catalog {
	c, err := catalog.Load(context.Background(), catalog.EmbeddedSource{})
	require.NoError(t, err)
	return c
}

func TestBuildOrder_TierLine(t *testing.T) {
	order := BuildOrder([]cart.Entry{{Key: "3001::50G::", Qty: 2}}, demoCatalog(t))

	require.Len(t, order.Lines, 1)
	assert.True(t, decimal.NewFromInt(540).Equal(order.Total))
	assert.Contains(t, order.Text(Fields{}), "- Static Drugs (50G) x2 = 540 €")
}

func TestBuildOrder_BoxNote(t *testing.T) {
	order := BuildOrder([]cart.Entry{{Key: "99901::1BOX::217,200,202", Qty: 1}}, demoCatalog(t))

	require.Len(t, order.Lines, 1)
	want := "Choix: Piatella — Piatella | Black Cherry — DrySift 190/45U By East Cost Mountains | Hulkberry — DrySift 160/73U By Squadra Farm"
	assert.Equal(t, want, order.Lines[0].Note())
	assert.Contains(t, order.Text(Fields{}), "- BOX SPECIAL DEGUSTATION (1BOX) x1 = 200 €\n  "+want)
}

func TestBuildOrder_Degrades(t *testing.T) {
	entries := []cart.Entry{
		{Key: "404::10G::", Qty: 3},
		{Key: "3001::75G::", Qty: 1},
		{Key: "99901::1BOX::217,999", Qty: 1},
	}
	order := BuildOrder(entries, demoCatalog(t))

	require.Len(t, order.Lines, 2, "unknown product is dropped")
	assert.Equal(t, "100G", order.Lines[0].TierLabel, "unknown tier falls back to first")
	assert.True(t, decimal.NewFromInt(500).Equal(order.Lines[0].LineTotal))
	assert.Equal(t, []string{"Piatella — Piatella", "999"}, order.Lines[1].Choices)
	assert.True(t, decimal.NewFromInt(700).Equal(order.Total))
}

func TestOrderText_Shape(t *testing.T) {
	c := demoCatalog(t)
	entries := []cart.Entry{{Key: "3001::25G::", Qty: 1}}

	text := BuildOrderText(entries, c, Fields{Department: " 75 ", Address: "", Slot: "Matin"})
	want := strings.Join([]string{
		"🛒 Commande :",
		"- Static Drugs (25G) x1 = 150 €",
		"",
		"Total: 150 €",
		"",
		"Département: 75",
		"Adresse: —",
		"Tournée: Matin",
	}, "\n")
	assert.Equal(t, want, text)
}

func TestWhatsAppURL(t *testing.T) {
	assert.Equal(t, "https://wa.me/212665358533", WhatsAppURL("+212 665-358-533", ""))

	u := WhatsAppURL(testNumber, "a b&c\n€")
	assert.Equal(t, "https://wa.me/212665358533?text=a%20b%26c%0A%E2%82%AC", u)

	parsed, err := url.Parse(u)
	require.NoError(t, err)
	assert.Equal(t, "a b&c\n€", parsed.Query().Get("text"))
}

func TestWhatsAppURL_ReservedMarksRoundTrip(t *testing.T) {
	u := WhatsAppURL(testNumber, "x (2)! it's *new*")
	assert.Equal(t, "https://wa.me/212665358533?text=x%20%282%29%21%20it%27s%20%2Anew%2A", u)

	parsed, err := url.Parse(u)
	require.NoError(t, err)
	assert.Equal(t, "x (2)! it's *new*", parsed.Query().Get("text"))
}

func TestLink_EmptyCartOmitsText(t *testing.T) {
	link := Link(testNumber, nil, demoCatalog(t), Fields{Department: "75"})
	assert.Equal(t, "https://wa.me/212665358533", link)
	assert.NotContains(t, link, "text=")
}

func TestLink_WithOrder(t *testing.T) {
	c := demoCatalog(t)
	link := Link(testNumber, []cart.Entry{{Key: "3001::50G::", Qty: 2}}, c, Fields{})

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/212665358533", parsed.Path)
	assert.Contains(t, parsed.Query().Get("text"), "Total: 540 €")
}

func TestValidate(t *testing.T) {
	full := Fields{Department: "75", Address: "1 rue X", Slot: "Soir"}

	assert.ErrorIs(t, Validate(0, full), ErrCartEmpty)
	assert.ErrorIs(t, Validate(0, Fields{}), ErrCartEmpty, "empty cart wins over missing fields")
	assert.NoError(t, Validate(1, full))

	err := Validate(2, Fields{Department: "  ", Address: "x"})
	require.ErrorIs(t, err, ErrFieldsRequired)
	var fre *FieldsRequiredError
	require.ErrorAs(t, err, &fre)
	assert.Equal(t, []string{"department", "slot"}, fre.Missing)
}
