// Package cartkey encodes the composite identity of a cart line.
//
// A key is "<productID>::<tierLabel>::<selections>" where selections are the
// chosen box option ids joined with "," in slot order, and empty for
// products that are not boxes. Fields are not escaped: catalogs must not
// contain either delimiter in product ids, tier labels or option ids
// (see CheckField, enforced when a catalog is loaded).
package cartkey

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ikkim/vitrine-backend/internal/app/model"
)

const (
	FieldSeparator     = "::"
	SelectionSeparator = ","

	// DefaultTier labels lines of products that carry no tiers at all.
	DefaultTier = "DEFAULT"
)

var ErrReservedDelimiter = errors.New("value contains a cart key delimiter")

// Key is the typed form of a cart line identity.
type Key struct {
	ProductID  model.ProductID
	TierLabel  string
	Selections []string
}

// Decoded is the syntactic result of Decode. No catalog lookup happens here.
type Decoded struct {
	ProductID     model.ProductID
	TierLabel     string
	SelectionsRaw string
}

// Encode builds the mapping key for a cart line.
func Encode(productID model.ProductID, tierLabel string, selections []string) string {
	return string(productID) + FieldSeparator + tierLabel + FieldSeparator + strings.Join(selections, SelectionSeparator)
}

// Decode splits a key back into its fields. Missing trailing fields decode
// as empty strings.
func Decode(key string) Decoded {
	parts := strings.SplitN(key, FieldSeparator, 3)
	d := Decoded{ProductID: model.ProductID(parts[0])}
	if len(parts) > 1 {
		d.TierLabel = parts[1]
	}
	if len(parts) > 2 {
		d.SelectionsRaw = parts[2]
	}
	return d
}

// Selections splits the raw selections field, dropping empty ids.
func (d Decoded) Selections() []string {
	if d.SelectionsRaw == "" {
		return nil
	}
	var out []string
	for _, id := range strings.Split(d.SelectionsRaw, SelectionSeparator) {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}

// Key converts the decoded fields into the typed tuple.
func (d Decoded) Key() Key {
	return Key{ProductID: d.ProductID, TierLabel: d.TierLabel, Selections: d.Selections()}
}

func (k Key) String() string {
	return Encode(k.ProductID, k.TierLabel, k.Selections)
}

// Parse is Decode followed by Key.
func Parse(raw string) Key {
	return Decode(raw).Key()
}

// CheckField reports values that would make an encoded key ambiguous. A
// single ':' at either end would merge with the adjacent separator.
func CheckField(name, value string) error {
	if strings.Contains(value, FieldSeparator) || strings.HasPrefix(value, ":") || strings.HasSuffix(value, ":") {
		return fmt.Errorf("%s %q: %w", name, value, ErrReservedDelimiter)
	}
	return nil
}

// CheckSelection is CheckField plus the selection separator.
func CheckSelection(name, value string) error {
	if err := CheckField(name, value); err != nil {
		return err
	}
	if strings.Contains(value, SelectionSeparator) {
		return fmt.Errorf("%s %q: %w", name, value, ErrReservedDelimiter)
	}
	return nil
}
