package handler

import (
	"net/http"

	"github.com/azmi-amirullah/minimarket-pos/internal/apierror"
	"github.com/azmi-amirullah/minimarket-pos/internal/dto"
	"github.com/azmi-amirullah/minimarket-pos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InventoryHandler exposes stock batches and the derived stock view.
type InventoryHandler struct{ svc service.InventoryService }

func NewInventoryHandler(svc service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// ListStock godoc
// @Summary      Products with derived available stock
// @Description  Lists every product with its batches and the available quantity (batch totals minus units sold).
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array}  dto.ProductWithStock
// @Failure      500 {object} apierror.APIError
// @Router       /v1/products/stock [get]
func (h *InventoryHandler) ListStock(c *gin.Context) {
	resp, err := h.svc.ListProductsWithStock(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AddBatch godoc
// @Summary      Register a stock batch
// @Description  Records a restock delivery for a product. Quantity must be positive.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.AddBatchRequest true "Batch data"
// @Success      201  {object} dto.BatchResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/batches [post]
func (h *InventoryHandler) AddBatch(c *gin.Context) {
	var req dto.AddBatchRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddBatch(c.Request.Context(), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// UpdateBatch godoc
// @Summary      Update a stock batch
// @Description  Changes expiration or quantity of a batch. Sold-out flag is untouched.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                 true "Batch UUID"
// @Param        body body dto.UpdateBatchRequest true "Fields to update"
// @Success      200  {object} dto.BatchResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/batches/{id} [put]
func (h *InventoryHandler) UpdateBatch(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.UpdateBatchRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateBatch(c.Request.Context(), id, req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ToggleSoldOut godoc
// @Summary      Toggle the sold-out flag on a batch
// @Description  A sold-out batch stops contributing to available stock without losing its history.
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Batch UUID"
// @Success      200 {object} dto.BatchResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/batches/{id}/sold-out [post]
func (h *InventoryHandler) ToggleSoldOut(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.ToggleSoldOut(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteBatch godoc
// @Summary      Soft-delete a stock batch
// @Description  The batch stops counting toward stock but can be restored until the next sync.
// @Tags         inventory
// @Security     BearerAuth
// @Param        id path string true "Batch UUID"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/batches/{id} [delete]
func (h *InventoryHandler) DeleteBatch(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	if err := h.svc.DeleteBatch(c.Request.Context(), id); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RestoreBatch godoc
// @Summary      Restore a soft-deleted stock batch
// @Tags         inventory
// @Security     BearerAuth
// @Param        id path string true "Batch UUID"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/batches/{id}/restore [post]
func (h *InventoryHandler) RestoreBatch(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	if err := h.svc.RestoreBatch(c.Request.Context(), id); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
