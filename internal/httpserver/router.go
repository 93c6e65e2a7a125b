package httpserver

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"nimbus-pos/internal/domain"
	productrepo "nimbus-pos/internal/repository/product"
	"nimbus-pos/internal/service/checkout"
	productsvc "nimbus-pos/internal/service/product"
	"nimbus-pos/internal/service/report"
	staffsvc "nimbus-pos/internal/service/staff"
	storesvc "nimbus-pos/internal/service/store"
	"nimbus-pos/internal/service/terminal"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const (
	userIDHeader  = "X-User-ID"
	sessionHeader = "X-POS-Session"
)

type ctxKey string

const (
	storeCtxKey ctxKey = "store"
	roleCtxKey  ctxKey = "role"
)

type storeService interface {
	Create(ctx context.Context, ownerID string, in storesvc.Input) (*domain.Store, error)
	Update(ctx context.Context, id string, in storesvc.Input) (*domain.Store, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Store, error)
	Resolve(ctx context.Context, storeID, userID string) (*domain.Store, string, error)
}

type categoryService interface {
	List(ctx context.Context, storeID string) ([]domain.Category, error)
	Create(ctx context.Context, storeID, name string) (*domain.Category, error)
	Rename(ctx context.Context, storeID, id, name string) (*domain.Category, error)
	Delete(ctx context.Context, storeID, id string) error
}

type productService interface {
	List(ctx context.Context, storeID string, f productrepo.ListFilter) ([]domain.Product, error)
	Get(ctx context.Context, storeID, id string) (*domain.Product, error)
	Create(ctx context.Context, st domain.Store, in productsvc.Input) (*domain.Product, error)
	Update(ctx context.Context, st domain.Store, id string, in productsvc.Input) (*domain.Product, error)
	Delete(ctx context.Context, storeID, id string) error
	LowStockCount(ctx context.Context, storeID string) (int, error)
	LowStockThreshold() int
	View(p domain.Product, currency string) productsvc.View
	Views(products []domain.Product, currency string) []productsvc.View
}

type staffService interface {
	List(ctx context.Context, storeID string) ([]domain.Member, error)
	Add(ctx context.Context, st domain.Store, in staffsvc.AddInput) (*domain.Member, error)
	Update(ctx context.Context, storeID, userID string, in staffsvc.UpdateInput) (*domain.Member, error)
	Remove(ctx context.Context, storeID, userID string) error
	VerifyPIN(ctx context.Context, storeID, userID, pin string) (*domain.Member, error)
}

type terminalService interface {
	Get(ctx context.Context, st domain.Store, session string) (terminal.View, error)
	AddProduct(ctx context.Context, st domain.Store, session, productID string, quantity int) (terminal.View, error)
	SetQuantity(ctx context.Context, st domain.Store, session, productID string, quantity int) (terminal.View, error)
	RemoveLine(ctx context.Context, st domain.Store, session, productID string) (terminal.View, error)
	Clear(ctx context.Context, st domain.Store, session string) (terminal.View, error)
	MarkPending(ctx context.Context, st domain.Store, session string) (terminal.View, error)
}

type checkoutService interface {
	Checkout(ctx context.Context, st domain.Store, cashierID, session string, pay checkout.Payment) (*checkout.Receipt, error)
}

type reportService interface {
	ParseRange(start, end string) (report.Range, error)
	Sales(ctx context.Context, st domain.Store, r report.Range) (*report.Report, error)
	Overview(ctx context.Context, st domain.Store) (*report.Overview, error)
	WriteCSV(w io.Writer, r *report.Report) error
}

// Deps groups the services served by the router.
type Deps struct {
	StoreSvc    storeService
	CategorySvc categoryService
	ProductSvc  productService
	StaffSvc    staffService
	TerminalSvc terminalService
	CheckoutSvc checkoutService
	ReportSvc   reportService
}

func (d Deps) validate() error {
	switch {
	case d.StoreSvc == nil:
		return errors.New("store service is required")
	case d.CategorySvc == nil:
		return errors.New("category service is required")
	case d.ProductSvc == nil:
		return errors.New("product service is required")
	case d.StaffSvc == nil:
		return errors.New("staff service is required")
	case d.TerminalSvc == nil:
		return errors.New("terminal service is required")
	case d.CheckoutSvc == nil:
		return errors.New("checkout service is required")
	case d.ReportSvc == nil:
		return errors.New("report service is required")
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, deps Deps, opts Options) (*gin.Engine, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery(), corsMiddleware(opts.CORSOrigins))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(logger, opts.Ready))

	h := &handlers{logger: logger, deps: deps}

	router.GET("/stores", h.listStores)
	router.POST("/stores", h.createStore)

	store := router.Group("/stores/:storeID", storeMiddleware(deps.StoreSvc))
	store.GET("", h.getStore)
	store.PUT("", requireRole(domain.CanManage), h.updateStore)
	store.GET("/dashboard", h.dashboard)

	categories := store.Group("/categories")
	categories.GET("", h.listCategories)
	categories.POST("", requireRole(domain.CanEditInventory), h.createCategory)
	categories.PUT("/:categoryID", requireRole(domain.CanEditInventory), h.renameCategory)
	categories.DELETE("/:categoryID", requireRole(domain.CanEditInventory), h.deleteCategory)

	products := store.Group("/products")
	products.GET("", h.listProducts)
	products.POST("", requireRole(domain.CanEditInventory), h.createProduct)
	products.GET("/:productID", h.getProduct)
	products.PUT("/:productID", requireRole(domain.CanEditInventory), h.updateProduct)
	products.DELETE("/:productID", requireRole(domain.CanEditInventory), h.deleteProduct)

	staff := store.Group("/staff")
	staff.GET("", requireRole(domain.CanManage), h.listStaff)
	staff.POST("", requireRole(domain.CanManage), h.addStaff)
	staff.PUT("/:userID", requireRole(domain.CanManage), h.updateStaff)
	staff.DELETE("/:userID", requireRole(domain.CanManage), h.removeStaff)
	staff.POST("/:userID/verify-pin", h.verifyPIN)

	cartGroup := store.Group("/cart")
	cartGroup.GET("", h.getCart)
	cartGroup.DELETE("", h.clearCart)
	cartGroup.POST("/lines", h.addCartLine)
	cartGroup.PUT("/lines/:productID", h.setCartLine)
	cartGroup.DELETE("/lines/:productID", h.removeCartLine)
	cartGroup.POST("/pending", h.markCartPending)
	cartGroup.POST("/checkout", h.checkout)

	reports := store.Group("/reports", requireRole(domain.CanEditInventory))
	reports.GET("/sales", h.salesReport)
	reports.GET("/sales.csv", h.salesReportCSV)

	return router, nil
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AddAllowHeaders(userIDHeader, sessionHeader)
	cfg.AddExposeHeaders(sessionHeader, "Content-Disposition")
	return cors.New(cfg)
}

func userID(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(userIDHeader))
}

// storeMiddleware resolves the store in the path and the caller's role in it.
// Stores the caller cannot access are reported as missing.
func storeMiddleware(stores storeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		storeID := strings.TrimSpace(c.Param("storeID"))
		if storeID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "store id required"})
			return
		}
		st, role, err := stores.Resolve(c.Request.Context(), storeID, userID(c))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrForbidden) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "store not found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to load store"})
			return
		}
		ctx := context.WithValue(c.Request.Context(), storeCtxKey, st)
		ctx = context.WithValue(ctx, roleCtxKey, role)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func requireRole(allowed func(role string) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !allowed(currentRole(c)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
		c.Next()
	}
}

func currentStore(c *gin.Context) domain.Store {
	if st, ok := c.Request.Context().Value(storeCtxKey).(*domain.Store); ok && st != nil {
		return *st
	}
	return domain.Store{}
}

func currentRole(c *gin.Context) string {
	role, _ := c.Request.Context().Value(roleCtxKey).(string)
	return role
}
