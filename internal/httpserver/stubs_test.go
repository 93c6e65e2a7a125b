package httpserver

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"testing"

	"nimbus-pos/internal/cart"
	"nimbus-pos/internal/domain"
	productrepo "nimbus-pos/internal/repository/product"
	"nimbus-pos/internal/service/checkout"
	productsvc "nimbus-pos/internal/service/product"
	"nimbus-pos/internal/service/report"
	staffsvc "nimbus-pos/internal/service/staff"
	storesvc "nimbus-pos/internal/service/store"
	"nimbus-pos/internal/service/terminal"

	"github.com/gin-gonic/gin"
)

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type stubStoreSvc struct {
	store   *domain.Store
	role    string
	err     error
	list    []domain.Store
	ownerID string
	input   storesvc.Input
}

func (s *stubStoreSvc) Create(_ context.Context, ownerID string, in storesvc.Input) (*domain.Store, error) {
	s.ownerID, s.input = ownerID, in
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Store{ID: "new-store", Name: in.Name, Currency: in.Currency, OwnerID: ownerID}, nil
}

func (s *stubStoreSvc) Update(_ context.Context, id string, in storesvc.Input) (*domain.Store, error) {
	s.input = in
	return &domain.Store{ID: id, Name: in.Name}, s.err
}

func (s *stubStoreSvc) ListForUser(_ context.Context, _ string) ([]domain.Store, error) {
	return s.list, s.err
}

func (s *stubStoreSvc) Resolve(_ context.Context, _ string, _ string) (*domain.Store, string, error) {
	return s.store, s.role, s.err
}

type stubCategorySvc struct {
	list []domain.Category
	err  error
}

func (s *stubCategorySvc) List(_ context.Context, _ string) ([]domain.Category, error) {
	return s.list, s.err
}

func (s *stubCategorySvc) Create(_ context.Context, storeID, name string) (*domain.Category, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Category{ID: "cat-1", StoreID: storeID, Name: name}, nil
}

func (s *stubCategorySvc) Rename(_ context.Context, storeID, id, name string) (*domain.Category, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Category{ID: id, StoreID: storeID, Name: name}, nil
}

func (s *stubCategorySvc) Delete(_ context.Context, _ string, _ string) error {
	return s.err
}

type stubProductSvc struct {
	products []domain.Product
	filter   productrepo.ListFilter
	lowStock int
	err      error
}

func (s *stubProductSvc) List(_ context.Context, _ string, f productrepo.ListFilter) ([]domain.Product, error) {
	s.filter = f
	return s.products, s.err
}

func (s *stubProductSvc) Get(_ context.Context, _ string, id string) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, p := range s.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubProductSvc) Create(_ context.Context, st domain.Store, in productsvc.Input) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Product{ID: "p-new", StoreID: st.ID, Name: in.Name}, nil
}

func (s *stubProductSvc) Update(_ context.Context, st domain.Store, id string, in productsvc.Input) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Product{ID: id, StoreID: st.ID, Name: in.Name}, nil
}

func (s *stubProductSvc) Delete(_ context.Context, _ string, _ string) error {
	return s.err
}

func (s *stubProductSvc) LowStockCount(_ context.Context, _ string) (int, error) {
	return s.lowStock, s.err
}

func (s *stubProductSvc) LowStockThreshold() int {
	return productsvc.DefaultLowStockThreshold
}

func (s *stubProductSvc) View(p domain.Product, _ string) productsvc.View {
	return productsvc.View{Product: p}
}

func (s *stubProductSvc) Views(products []domain.Product, currency string) []productsvc.View {
	out := make([]productsvc.View, 0, len(products))
	for _, p := range products {
		out = append(out, s.View(p, currency))
	}
	return out
}

type stubStaffSvc struct {
	members []domain.Member
	err     error
}

func (s *stubStaffSvc) List(_ context.Context, _ string) ([]domain.Member, error) {
	return s.members, s.err
}

func (s *stubStaffSvc) Add(_ context.Context, st domain.Store, in staffsvc.AddInput) (*domain.Member, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Member{ID: "m-1", StoreID: st.ID, UserID: in.UserID, Role: in.Role}, nil
}

func (s *stubStaffSvc) Update(_ context.Context, storeID, userID string, _ staffsvc.UpdateInput) (*domain.Member, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Member{StoreID: storeID, UserID: userID}, nil
}

func (s *stubStaffSvc) Remove(_ context.Context, _ string, _ string) error {
	return s.err
}

func (s *stubStaffSvc) VerifyPIN(_ context.Context, storeID, userID, _ string) (*domain.Member, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Member{StoreID: storeID, UserID: userID, Role: domain.RoleCashier, PINHash: "hash"}, nil
}

type stubTerminalSvc struct {
	view     terminal.View
	err      error
	session  string
	product  string
	quantity int
}

func (s *stubTerminalSvc) result(session string) (terminal.View, error) {
	s.session = session
	v := s.view
	v.SessionID = session
	return v, s.err
}

func (s *stubTerminalSvc) Get(_ context.Context, _ domain.Store, session string) (terminal.View, error) {
	return s.result(session)
}

func (s *stubTerminalSvc) AddProduct(_ context.Context, _ domain.Store, session, productID string, quantity int) (terminal.View, error) {
	s.product, s.quantity = productID, quantity
	return s.result(session)
}

func (s *stubTerminalSvc) SetQuantity(_ context.Context, _ domain.Store, session, productID string, quantity int) (terminal.View, error) {
	s.product, s.quantity = productID, quantity
	return s.result(session)
}

func (s *stubTerminalSvc) RemoveLine(_ context.Context, _ domain.Store, session, productID string) (terminal.View, error) {
	s.product = productID
	return s.result(session)
}

func (s *stubTerminalSvc) Clear(_ context.Context, _ domain.Store, session string) (terminal.View, error) {
	return s.result(session)
}

func (s *stubTerminalSvc) MarkPending(_ context.Context, _ domain.Store, session string) (terminal.View, error) {
	return s.result(session)
}

type stubCheckoutSvc struct {
	receipt   *checkout.Receipt
	err       error
	cashierID string
	session   string
	payment   checkout.Payment
}

func (s *stubCheckoutSvc) Checkout(_ context.Context, _ domain.Store, cashierID, session string, pay checkout.Payment) (*checkout.Receipt, error) {
	s.cashierID, s.session, s.payment = cashierID, session, pay
	return s.receipt, s.err
}

type stubReportSvc struct {
	report   *report.Report
	overview *report.Overview
	err      error
}

func (s *stubReportSvc) ParseRange(start, end string) (report.Range, error) {
	if start == "bad" {
		return report.Range{}, fmt.Errorf("%w: start date", domain.ErrInvalidInput)
	}
	return report.Range{}, nil
}

func (s *stubReportSvc) Sales(_ context.Context, _ domain.Store, _ report.Range) (*report.Report, error) {
	return s.report, s.err
}

func (s *stubReportSvc) Overview(_ context.Context, _ domain.Store) (*report.Overview, error) {
	return s.overview, s.err
}

func (s *stubReportSvc) WriteCSV(w io.Writer, r *report.Report) error {
	_, err := io.WriteString(w, "Date,Transaction ID\n"+r.StoreID+"\n")
	return err
}

type testEnv struct {
	stores     *stubStoreSvc
	categories *stubCategorySvc
	products   *stubProductSvc
	staff      *stubStaffSvc
	terminal   *stubTerminalSvc
	checkout   *stubCheckoutSvc
	reports    *stubReportSvc
}

func newTestEnv(role string) *testEnv {
	return &testEnv{
		stores:     &stubStoreSvc{store: &domain.Store{ID: "store-1", Name: "Corner Shop", Currency: "USD", OwnerID: "owner"}, role: role},
		categories: &stubCategorySvc{},
		products:   &stubProductSvc{},
		staff:      &stubStaffSvc{},
		terminal:   &stubTerminalSvc{view: terminal.View{StoreID: "store-1", Outcome: cart.Unchanged}},
		checkout:   &stubCheckoutSvc{},
		reports:    &stubReportSvc{},
	}
}

func (e *testEnv) deps() Deps {
	return Deps{
		StoreSvc:    e.stores,
		CategorySvc: e.categories,
		ProductSvc:  e.products,
		StaffSvc:    e.staff,
		TerminalSvc: e.terminal,
		CheckoutSvc: e.checkout,
		ReportSvc:   e.reports,
	}
}

func (e *testEnv) router(t *testing.T) *gin.Engine {
	t.Helper()
	router, err := buildRouter(logDiscard(), e.deps(), Options{})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	gin.SetMode(gin.TestMode)
	return router
}

func serve(router *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func asUser(id string) map[string]string {
	return map[string]string{userIDHeader: id}
}
