package handler

import (
	"net/http"

	"github.com/azmi-amirullah/minimarket-pos/internal/apierror"
	"github.com/azmi-amirullah/minimarket-pos/internal/dto"
	"github.com/azmi-amirullah/minimarket-pos/internal/infra"
	"github.com/azmi-amirullah/minimarket-pos/internal/middleware"
	"github.com/azmi-amirullah/minimarket-pos/internal/repository"
	"github.com/azmi-amirullah/minimarket-pos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SalesHandler struct {
	svc         service.SaleService
	sales       repository.SaleRepository
	storagePath string
	storeName   string
}

func NewSalesHandler(svc service.SaleService, sales repository.SaleRepository, storagePath, storeName string) *SalesHandler {
	return &SalesHandler{svc: svc, sales: sales, storagePath: storagePath, storeName: storeName}
}

// Checkout godoc
// @Summary      Record a sale
// @Description  Commits the cart atomically: totals are computed server-side, payment is validated, and the sale with its line snapshots is appended to the ledger. Receipt generation is dispatched asynchronously.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CheckoutRequest true "Cart lines and payment"
// @Success      201  {object} dto.SaleResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/sales [post]
func (h *SalesHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	userID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Checkout(c.Request.Context(), userID, req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List sales
// @Description  Returns a paginated sales list for one calendar day (default: today).
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        date  query string false "Date YYYY-MM-DD (default: today)"
// @Param        page  query int    false "Page (default 1)"
// @Param        limit query int    false "Records per page (default 50)"
// @Success      200   {object} dto.SaleListResponse
// @Failure      400   {object} apierror.APIError
// @Router       /v1/sales [get]
func (h *SalesHandler) List(c *gin.Context) {
	var filter dto.SaleFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get a sale by id
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Sale UUID"
// @Success      200 {object} dto.SaleResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/sales/{id} [get]
func (h *SalesHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Receipt godoc
// @Summary      Download the PDF receipt for a sale
// @Description  Renders the receipt on demand and streams it. The async worker usually has it pre-rendered in the storage dir already.
// @Tags         sales
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path string true "Sale UUID"
// @Success      200 {file} file
// @Failure      404 {object} apierror.APIError
// @Router       /v1/sales/{id}/receipt [get]
func (h *SalesHandler) Receipt(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	sale, err := h.sales.FindByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("sale not found"))
		return
	}
	path, err := infra.GenerateReceiptPDF(sale, h.storagePath, h.storeName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("could not render receipt"))
		return
	}
	c.FileAttachment(path, "receipt_"+id.String()+".pdf")
}
