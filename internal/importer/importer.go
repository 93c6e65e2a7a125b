// Package importer loads product catalogs from CSV into a store.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"nimbus-pos/internal/domain"
	productsvc "nimbus-pos/internal/service/product"

	"github.com/shopspring/decimal"
)

type ProductWriter interface {
	Import(ctx context.Context, st domain.Store, in productsvc.Input) (*domain.Product, error)
}

type CategoryWriter interface {
	Ensure(ctx context.Context, storeID, name string) (*domain.Category, error)
}

// CSVImporter reads product rows and upserts them by SKU. Recognized columns:
// name, sku, barcode, category, price, cost_price, stock, description,
// image_url and active. Only name and price are required.
type CSVImporter struct {
	reader     *csv.Reader
	products   ProductWriter
	categories CategoryWriter
	store      domain.Store
}

func NewCSVImporter(r io.Reader, products ProductWriter, categories CategoryWriter, st domain.Store) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // spreadsheet exports often drop trailing empty cells
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:     csvr,
		products:   products,
		categories: categories,
		store:      st,
	}
}

// Run imports every row and returns the number of products written. It stops
// at the first invalid row.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, required := range []string{"name", "price"} {
		if _, ok := index[required]; !ok {
			return 0, fmt.Errorf("%w: missing %q column", domain.ErrInvalidInput, required)
		}
	}

	categoryIDs := make(map[string]string)
	imported := 0
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line, _ := i.reader.FieldPos(0)
		if blank(record) {
			continue
		}

		in, category, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("row %d: %w", line, err)
		}
		if category != "" {
			id, ok := categoryIDs[strings.ToLower(category)]
			if !ok {
				cat, err := i.categories.Ensure(ctx, i.store.ID, category)
				if err != nil {
					return imported, fmt.Errorf("row %d: ensure category %q: %w", line, category, err)
				}
				id = cat.ID
				categoryIDs[strings.ToLower(category)] = id
			}
			in.CategoryID = &id
		}

		if _, err := i.products.Import(ctx, i.store, in); err != nil {
			return imported, fmt.Errorf("row %d: import %q: %w", line, in.Name, err)
		}
		imported++
	}
	return imported, nil
}

func parseRow(record []string, index map[string]int) (productsvc.Input, string, error) {
	in := productsvc.Input{
		Name:        pick(record, index, "name"),
		SKU:         pick(record, index, "sku"),
		Barcode:     pick(record, index, "barcode"),
		Description: pick(record, index, "description"),
		ImageURL:    pick(record, index, "image_url"),
	}

	price, err := decimal.NewFromString(pick(record, index, "price"))
	if err != nil {
		return in, "", fmt.Errorf("%w: price %q", domain.ErrInvalidInput, pick(record, index, "price"))
	}
	in.Price = price

	if v := pick(record, index, "cost_price"); v != "" {
		cost, err := decimal.NewFromString(v)
		if err != nil {
			return in, "", fmt.Errorf("%w: cost_price %q", domain.ErrInvalidInput, v)
		}
		in.CostPrice = &cost
	}
	if v := pick(record, index, "stock"); v != "" {
		stock, err := strconv.Atoi(v)
		if err != nil {
			return in, "", fmt.Errorf("%w: stock %q", domain.ErrInvalidInput, v)
		}
		in.CurrentStock = stock
	}
	if v := pick(record, index, "active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return in, "", fmt.Errorf("%w: active %q", domain.ErrInvalidInput, v)
		}
		in.IsActive = &active
	}
	return in, pick(record, index, "category"), nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
