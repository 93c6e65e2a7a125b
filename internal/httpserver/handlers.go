package httpserver

import (
	"log"
	"net/http"
	"strings"

	"nimbus-pos/internal/domain"
	productrepo "nimbus-pos/internal/repository/product"
	productsvc "nimbus-pos/internal/service/product"
	"nimbus-pos/internal/service/report"
	staffsvc "nimbus-pos/internal/service/staff"
	storesvc "nimbus-pos/internal/service/store"

	"github.com/gin-gonic/gin"
)

type handlers struct {
	logger *log.Logger
	deps   Deps
}

func (h *handlers) listStores(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user"})
		return
	}
	stores, err := h.deps.StoreSvc.ListForUser(c.Request.Context(), uid)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if stores == nil {
		stores = []domain.Store{}
	}
	c.JSON(http.StatusOK, stores)
}

func (h *handlers) createStore(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user"})
		return
	}
	var in storesvc.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	st, err := h.deps.StoreSvc.Create(c.Request.Context(), uid, in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

func (h *handlers) getStore(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"store": currentStore(c), "role": currentRole(c)})
}

func (h *handlers) updateStore(c *gin.Context) {
	var in storesvc.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	st, err := h.deps.StoreSvc.Update(c.Request.Context(), currentStore(c).ID, in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *handlers) dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	st := currentStore(c)

	products, err := h.deps.ProductSvc.List(ctx, st.ID, productrepo.ListFilter{})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	lowStock, err := h.deps.ProductSvc.LowStockCount(ctx, st.ID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	overview, err := h.deps.ReportSvc.Overview(ctx, st)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"store":             st,
		"productCount":      len(products),
		"lowStockCount":     lowStock,
		"lowStockThreshold": h.deps.ProductSvc.LowStockThreshold(),
		"sales":             overview,
	})
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (h *handlers) listCategories(c *gin.Context) {
	list, err := h.deps.CategorySvc.List(c.Request.Context(), currentStore(c).ID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if list == nil {
		list = []domain.Category{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *handlers) createCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	cat, err := h.deps.CategorySvc.Create(c.Request.Context(), currentStore(c).ID, req.Name)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *handlers) renameCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	cat, err := h.deps.CategorySvc.Rename(c.Request.Context(), currentStore(c).ID, c.Param("categoryID"), req.Name)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *handlers) deleteCategory(c *gin.Context) {
	if err := h.deps.CategorySvc.Delete(c.Request.Context(), currentStore(c).ID, c.Param("categoryID")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) listProducts(c *gin.Context) {
	st := currentStore(c)
	f := productrepo.ListFilter{
		Search:     strings.TrimSpace(c.Query("q")),
		CategoryID: strings.TrimSpace(c.Query("categoryId")),
		ActiveOnly: c.Query("active") == "true",
	}
	list, err := h.deps.ProductSvc.List(c.Request.Context(), st.ID, f)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, h.deps.ProductSvc.Views(list, st.Currency))
}

func (h *handlers) getProduct(c *gin.Context) {
	st := currentStore(c)
	p, err := h.deps.ProductSvc.Get(c.Request.Context(), st.ID, c.Param("productID"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, h.deps.ProductSvc.View(*p, st.Currency))
}

func (h *handlers) createProduct(c *gin.Context) {
	var in productsvc.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	st := currentStore(c)
	p, err := h.deps.ProductSvc.Create(c.Request.Context(), st, in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, h.deps.ProductSvc.View(*p, st.Currency))
}

func (h *handlers) updateProduct(c *gin.Context) {
	var in productsvc.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	st := currentStore(c)
	p, err := h.deps.ProductSvc.Update(c.Request.Context(), st, c.Param("productID"), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, h.deps.ProductSvc.View(*p, st.Currency))
}

func (h *handlers) deleteProduct(c *gin.Context) {
	if err := h.deps.ProductSvc.Delete(c.Request.Context(), currentStore(c).ID, c.Param("productID")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type memberResponse struct {
	domain.Member
	HasPIN bool `json:"hasPin"`
}

func toMemberResponse(m domain.Member) memberResponse {
	return memberResponse{Member: m, HasPIN: m.HasPIN()}
}

func (h *handlers) listStaff(c *gin.Context) {
	members, err := h.deps.StaffSvc.List(c.Request.Context(), currentStore(c).ID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	out := make([]memberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, toMemberResponse(m))
	}
	c.JSON(http.StatusOK, out)
}

func (h *handlers) addStaff(c *gin.Context) {
	var in staffsvc.AddInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	m, err := h.deps.StaffSvc.Add(c.Request.Context(), currentStore(c), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, toMemberResponse(*m))
}

func (h *handlers) updateStaff(c *gin.Context) {
	var in staffsvc.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	m, err := h.deps.StaffSvc.Update(c.Request.Context(), currentStore(c).ID, c.Param("userID"), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toMemberResponse(*m))
}

func (h *handlers) removeStaff(c *gin.Context) {
	if err := h.deps.StaffSvc.Remove(c.Request.Context(), currentStore(c).ID, c.Param("userID")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) verifyPIN(c *gin.Context) {
	var req struct {
		PIN string `json:"pin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.PIN) == "" {
		badRequest(c, "pin required")
		return
	}
	m, err := h.deps.StaffSvc.VerifyPIN(c.Request.Context(), currentStore(c).ID, c.Param("userID"), req.PIN)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toMemberResponse(*m))
}

func (h *handlers) loadReport(c *gin.Context) (*report.Report, bool) {
	r, err := h.deps.ReportSvc.ParseRange(c.Query("start"), c.Query("end"))
	if err != nil {
		writeError(c, h.logger, err)
		return nil, false
	}
	rep, err := h.deps.ReportSvc.Sales(c.Request.Context(), currentStore(c), r)
	if err != nil {
		writeError(c, h.logger, err)
		return nil, false
	}
	return rep, true
}

func (h *handlers) salesReport(c *gin.Context) {
	rep, ok := h.loadReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (h *handlers) salesReportCSV(c *gin.Context) {
	rep, ok := h.loadReport(c)
	if !ok {
		return
	}
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+rep.Filename()+`"`)
	c.Status(http.StatusOK)
	if err := h.deps.ReportSvc.WriteCSV(c.Writer, rep); err != nil {
		h.logger.Printf("http: write sales csv store=%s error=%v", rep.StoreID, err)
	}
}
