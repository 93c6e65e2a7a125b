package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"nimbus-pos/internal/domain"
	productsvc "nimbus-pos/internal/service/product"
)

type stubProducts struct {
	items []productsvc.Input
	err   error
}

func (s *stubProducts) Import(_ context.Context, st domain.Store, in productsvc.Input) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.items = append(s.items, in)
	return &domain.Product{StoreID: st.ID, Name: in.Name}, nil
}

type stubCategories struct {
	calls []string
}

func (s *stubCategories) Ensure(_ context.Context, storeID, name string) (*domain.Category, error) {
	s.calls = append(s.calls, name)
	return &domain.Category{ID: "cat-" + strings.ToLower(name), StoreID: storeID, Name: name}, nil
}

var store = domain.Store{ID: "store-1", Currency: "USD"}

func TestCSVImporter_Run(t *testing.T) {
	csvData := "\ufeffName,SKU,Barcode,Category,Price,Cost_Price,Stock,Active\n" +
		"Cola,COL-1,4006381333931,Drinks,2.99,1.10,24,true\n" +
		"\n" +
		"Water,,,drinks,0.89,,12\n" +
		"Chips,CHI-1,,Snacks,1.49,,0,false\n"

	products := &stubProducts{}
	categories := &stubCategories{}
	imp := NewCSVImporter(strings.NewReader(csvData), products, categories, store)

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 3 || len(products.items) != 3 {
		t.Fatalf("expected 3 products imported, got %d (%d saved)", count, len(products.items))
	}

	cola := products.items[0]
	if cola.Name != "Cola" || cola.SKU != "COL-1" || cola.Price.String() != "2.99" || cola.CurrentStock != 24 {
		t.Fatalf("unexpected product data: %+v", cola)
	}
	if cola.CostPrice == nil || cola.CostPrice.String() != "1.1" {
		t.Fatalf("unexpected cost price %v", cola.CostPrice)
	}
	if cola.CategoryID == nil || *cola.CategoryID != "cat-drinks" {
		t.Fatalf("unexpected category %v", cola.CategoryID)
	}
	if products.items[1].IsActive != nil || products.items[1].SKU != "" {
		t.Fatalf("expected defaults on second row, got %+v", products.items[1])
	}
	if products.items[2].IsActive == nil || *products.items[2].IsActive {
		t.Fatalf("expected inactive third row")
	}
	if len(categories.calls) != 2 {
		t.Fatalf("expected categories ensured once per name, got %v", categories.calls)
	}
}

func TestCSVImporter_MissingColumn(t *testing.T) {
	imp := NewCSVImporter(strings.NewReader("name,sku\nCola,COL-1\n"), &stubProducts{}, &stubCategories{}, store)

	_, err := imp.Run(context.Background())
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestCSVImporter_StopsAtBadRow(t *testing.T) {
	csvData := "name,price,stock\nCola,2.99,1\nWater,free,2\nChips,1.49,3\n"
	products := &stubProducts{}
	imp := NewCSVImporter(strings.NewReader(csvData), products, &stubCategories{}, store)

	count, err := imp.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "row 3") {
		t.Fatalf("expected row 3 error, got %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 product before failure, got %d", count)
	}
}

func TestCSVImporter_WriterError(t *testing.T) {
	products := &stubProducts{err: domain.ErrAlreadyExists}
	imp := NewCSVImporter(strings.NewReader("name,price\nCola,2.99\n"), products, &stubCategories{}, store)

	_, err := imp.Run(context.Background())
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected wrapped writer error, got %v", err)
	}
}
