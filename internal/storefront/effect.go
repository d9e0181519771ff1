package storefront

import "errors"

// ErrModalClosed is returned by commands that need an open modal.
var ErrModalClosed = errors.New("no product modal is open")

// EffectType names a side effect the render layer must carry out.
type EffectType string

const (
	EffectToast        EffectType = "toast"
	EffectGridChanged  EffectType = "grid_changed"
	EffectCartChanged  EffectType = "cart_changed"
	EffectModalOpened  EffectType = "modal_opened"
	EffectModalChanged EffectType = "modal_changed"
	EffectModalClosed  EffectType = "modal_closed"
	EffectFocusField   EffectType = "focus_field"
	EffectNavigate     EffectType = "navigate"
)

// Toast texts shown by the widget.
const (
	ToastAdded          = "Ajouté au panier ✔️"
	ToastCartEmpty      = "⚠️ Panier vide."
	ToastFieldsRequired = "⚠️ Tous les champs sont obligatoires."
)

type Effect struct {
	Type    EffectType `json:"type"`
	Message string     `json:"message,omitempty"`
	URL     string     `json:"url,omitempty"`
	Field   string     `json:"field,omitempty"`
}

func toast(msg string) Effect {
	return Effect{Type: EffectToast, Message: msg}
}

func effect(t EffectType) Effect {
	return Effect{Type: t}
}
