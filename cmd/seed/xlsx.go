package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ikkim/vitrine-backend/internal/app/model"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Workbook layout, one header row per sheet:
//
//	products: id, shop, new, title, subtitle, badge, rating, tags, poster, video, desc, box
//	tiers:    product_id, label, price, unit_text
//	box:      product_id, slot, option_id, option_text
//
// Row order is catalog order. Tags are comma separated.
const (
	sheetProducts = "products"
	sheetTiers    = "tiers"
	sheetBox      = "box"
)

func readCatalogXLSX(path string) ([]model.Product, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()
	return parseCatalogWorkbook(f)
}

func parseCatalogWorkbook(f *excelize.File) ([]model.Product, error) {
	productRows, err := sheetRecords(f, sheetProducts, true)
	if err != nil {
		return nil, err
	}

	var products []model.Product
	index := make(map[model.ProductID]int)
	for i, r := range productRows {
		id := model.ParseProductID(r["id"])
		if id == "" {
			return nil, fmt.Errorf("%s row %d: missing id", sheetProducts, i+2)
		}
		rating := 0.0
		if v := r["rating"]; v != "" {
			if rating, err = strconv.ParseFloat(v, 64); err != nil {
				return nil, fmt.Errorf("%s row %d: rating %q: %w", sheetProducts, i+2, v, err)
			}
		}
		index[id] = len(products)
		products = append(products, model.Product{
			ID:       id,
			Shop:     r["shop"],
			IsNew:    parseFlag(r["new"]),
			Title:    r["title"],
			Subtitle: r["subtitle"],
			Badge:    r["badge"],
			Rating:   rating,
			Tags:     splitTags(r["tags"]),
			Poster:   r["poster"],
			Video:    r["video"],
			Desc:     r["desc"],
			IsBox:    parseFlag(r["box"]),
		})
	}

	tierRows, err := sheetRecords(f, sheetTiers, true)
	if err != nil {
		return nil, err
	}
	for i, r := range tierRows {
		p, err := lookup(products, index, r["product_id"], sheetTiers, i)
		if err != nil {
			return nil, err
		}
		price, err := decimal.NewFromString(r["price"])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: price %q: %w", sheetTiers, i+2, r["price"], err)
		}
		p.Tiers = append(p.Tiers, model.Tier{Label: r["label"], Price: price, UnitText: r["unit_text"]})
	}

	boxRows, err := sheetRecords(f, sheetBox, false)
	if err != nil {
		return nil, err
	}
	for i, r := range boxRows {
		p, err := lookup(products, index, r["product_id"], sheetBox, i)
		if err != nil {
			return nil, err
		}
		slot := r["slot"]
		n := len(p.BoxPicks)
		if n == 0 || p.BoxPicks[n-1].Label != slot {
			p.BoxPicks = append(p.BoxPicks, model.BoxSlot{Label: slot})
			n++
		}
		p.BoxPicks[n-1].Options = append(p.BoxPicks[n-1].Options, model.BoxOption{
			ID:   strings.TrimSpace(r["option_id"]),
			Text: r["option_text"],
		})
	}

	return products, nil
}

// sheetRecords maps each data row to its header names. A missing optional
// sheet yields no records.
func sheetRecords(f *excelize.File, sheet string, required bool) ([]map[string]string, error) {
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		if required {
			return nil, fmt.Errorf("sheet %q not found", sheet)
		}
		return nil, nil
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var records []map[string]string
	for _, row := range rows[1:] {
		rec := make(map[string]string, len(header))
		empty := true
		for i, name := range header {
			if i < len(row) {
				rec[name] = strings.TrimSpace(row[i])
				if rec[name] != "" {
					empty = false
				}
			}
		}
		if !empty {
			records = append(records, rec)
		}
	}
	return records, nil
}

func lookup(products []model.Product, index map[model.ProductID]int, raw, sheet string, row int) (*model.Product, error) {
	i, ok := index[model.ParseProductID(raw)]
	if !ok {
		return nil, fmt.Errorf("%s row %d: unknown product %q", sheet, row+2, raw)
	}
	return &products[i], nil
}

func parseFlag(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "x", "oui":
		return true
	}
	return false
}

func splitTags(v string) []string {
	tags := []string{}
	for _, t := range strings.Split(v, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
