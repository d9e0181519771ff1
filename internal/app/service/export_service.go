package service

import (
	"fmt"

	"github.com/ikkim/vitrine-backend/internal/storefront"
	"github.com/ikkim/vitrine-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

const cartSheet = "Panier"

var cartHeader = []interface{}{"Produit", "Format", "Choix", "Prix unitaire (€)", "Quantité", "Total (€)"}

// ExportService renders cart views as spreadsheets.
type ExportService interface {
	CartWorkbook(view storefront.CartView) ([]byte, error)
}

type exportService struct{}

func NewExportService() ExportService {
	return &exportService{}
}

// CartWorkbook writes one row per resolved line, then the total and the
// delivery fields.
func (s *exportService) CartWorkbook(view storefront.CartView) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), cartSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(cartSheet, "A1", &cartHeader); err != nil {
		return nil, err
	}

	row := 2
	for _, line := range view.Lines {
		unit, _ := line.UnitPrice.Float64()
		total, _ := line.LineTotal.Float64()
		values := []interface{}{line.Title, line.TierLabel, line.Note, unit, line.Qty, total}
		if err := f.SetSheetRow(cartSheet, cellName(1, row), &values); err != nil {
			return nil, err
		}
		row++
	}

	grand, _ := view.Total.Float64()
	footer := [][]interface{}{
		{},
		{"Total", "", "", "", view.Count, grand},
		{"Département", view.Checkout.Department},
		{"Adresse", view.Checkout.Address},
		{"Tournée", view.Checkout.Slot},
	}
	for i := range footer {
		if err := f.SetSheetRow(cartSheet, cellName(1, row), &footer[i]); err != nil {
			return nil, err
		}
		row++
	}

	if err := f.SetColWidth(cartSheet, "A", "C", 32); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		logger.Error("Failed to render cart workbook", err)
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
