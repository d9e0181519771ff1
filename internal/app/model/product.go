package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ProductID is stable for a session. Catalog files may carry it as a JSON
// number or a JSON string; it is always compared as a string.
type ProductID string

func (id *ProductID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ProductID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("product id must be a string or a number: %w", err)
	}
	*id = ProductID(n.String())
	return nil
}

func (id ProductID) String() string {
	return string(id)
}

// ParseProductID normalizes an id coming from a path or form value.
func ParseProductID(raw string) ProductID {
	return ProductID(strings.TrimSpace(raw))
}

type Product struct {
	ID        ProductID `gorm:"primaryKey;type:varchar(64)" json:"id" validate:"required"` // 상품 ID
	Position  int       `gorm:"not null;default:0;index" json:"-"`                         // 카탈로그 순서
	Shop      string    `gorm:"type:varchar(64);index" json:"shop"`                        // 필터용 샵 태그
	IsNew     bool      `gorm:"default:false" json:"isNew"`                                // "new" 필터
	Title     string    `gorm:"not null" json:"title"`                                     // 상품명
	Subtitle  string    `json:"subtitle"`                                                  // 부제
	Badge     string    `json:"badge"`                                                     // 배지
	Desc      string    `gorm:"type:text" json:"desc"`                                     // 설명
	Rating    float64   `gorm:"default:0" json:"rating" validate:"gte=0,lte=5"`            // 평점 (0-5)
	Tags      []string  `gorm:"serializer:json" json:"tags"`                               // 검색 태그
	Poster    string    `json:"poster"`                                                    // 포스터 URL
	Video     string    `json:"video"`                                                     // 영상 URL
	Tiers     []Tier    `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"tiers" validate:"required,min=1,dive"`
	IsBox     bool      `gorm:"default:false" json:"isBox"`
	BoxPicks  []BoxSlot `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"boxPicks,omitempty" validate:"dive"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (Product) TableName() string {
	return "products"
}

// Tier is a purchasable quantity/price option.
type Tier struct {
	RowID     uint            `gorm:"column:id;primarykey" json:"-"`
	ProductID ProductID       `gorm:"type:varchar(64);not null;index" json:"-"`
	Position  int             `gorm:"not null;default:0" json:"-"`
	Label     string          `gorm:"not null" json:"label" validate:"required"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	UnitText  string          `json:"unitText"`
}

func (Tier) TableName() string {
	return "product_tiers"
}

// BoxSlot is one fixed choice a box buyer must make.
type BoxSlot struct {
	RowID     uint        `gorm:"column:id;primarykey" json:"-"`
	ProductID ProductID   `gorm:"type:varchar(64);not null;index" json:"-"`
	Position  int         `gorm:"not null;default:0" json:"-"`
	Label     string      `gorm:"not null" json:"label"`
	Options   []BoxOption `gorm:"foreignKey:SlotID;constraint:OnDelete:CASCADE" json:"options" validate:"required,min=1,dive"`
}

func (BoxSlot) TableName() string {
	return "box_slots"
}

// BoxOption ids are unique within a slot, not necessarily across the catalog.
type BoxOption struct {
	RowID    uint   `gorm:"column:id;primarykey" json:"-"`
	SlotID   uint   `gorm:"not null;index" json:"-"`
	Position int    `gorm:"not null;default:0" json:"-"`
	ID       string `gorm:"column:option_id;type:varchar(64);not null" json:"id" validate:"required"`
	Text     string `json:"text"`
}

func (BoxOption) TableName() string {
	return "box_options"
}

// FirstTier returns the default tier, or false when the product has none.
func (p *Product) FirstTier() (Tier, bool) {
	if len(p.Tiers) == 0 {
		return Tier{}, false
	}
	return p.Tiers[0], true
}

// TierByLabel falls back to the first tier when the label no longer
// matches, which happens for cart keys built against an older catalog.
func (p *Product) TierByLabel(label string) (Tier, bool) {
	for _, t := range p.Tiers {
		if t.Label == label {
			return t, true
		}
	}
	return p.FirstTier()
}

// OptionText looks an option id up across every slot. Unknown ids are
// returned unchanged so the caller can still display something.
func (p *Product) OptionText(optionID string) string {
	for _, slot := range p.BoxPicks {
		for _, o := range slot.Options {
			if o.ID == optionID {
				return o.Text
			}
		}
	}
	return optionID
}

// HasOption reports whether optionID is offered in the given slot.
func (p *Product) HasOption(slot int, optionID string) bool {
	if slot < 0 || slot >= len(p.BoxPicks) {
		return false
	}
	for _, o := range p.BoxPicks[slot].Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}

// CardPriceLabel renders the grid price, e.g. "500 € / 100G".
func (p *Product) CardPriceLabel() string {
	t, ok := p.FirstTier()
	if !ok {
		return ""
	}
	unit := strings.TrimSpace(strings.SplitN(t.UnitText, "·", 2)[0])
	return strings.TrimSpace(FormatMoney(t.Price) + " " + unit)
}

// MetaLabel renders rating and badge, e.g. "4.8★ • Indica 70%".
func (p *Product) MetaLabel() string {
	rating := strconv.FormatFloat(p.Rating, 'f', 1, 64) + "★"
	if p.Badge == "" {
		return rating
	}
	return rating + " • " + p.Badge
}

// FormatMoney renders an amount the way the storefront shows prices:
// no decimals and a trailing euro sign.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(0) + " €"
}

// AssignPositions records slice order on every row so the database source
// can return products, tiers, slots and options in catalog order.
func AssignPositions(products []Product) {
	for i := range products {
		p := &products[i]
		p.Position = i
		for j := range p.Tiers {
			p.Tiers[j].Position = j
		}
		for j := range p.BoxPicks {
			p.BoxPicks[j].Position = j
			for k := range p.BoxPicks[j].Options {
				p.BoxPicks[j].Options[k].Position = k
			}
		}
	}
}
