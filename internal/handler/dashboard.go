package handler

import (
	"net/http"

	"github.com/azmi-amirullah/minimarket-pos/internal/apierror"
	"github.com/azmi-amirullah/minimarket-pos/internal/dto"
	"github.com/azmi-amirullah/minimarket-pos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type DashboardHandler struct{ svc service.AnalyticsService }

func NewDashboardHandler(svc service.AnalyticsService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Dashboard godoc
// @Summary      Sales analytics dashboard
// @Description  Revenue/profit trend, top products, and KPI summary for a date window, optionally filtered to one product. All figures are recomputed from line snapshots.
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Param        range      query string false "today | last7 | last30 | all (default last7)"
// @Param        product_id query string false "Product UUID or 'all' (default all)"
// @Success      200 {object} dto.DashboardResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/dashboard [get]
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	var filter dto.DashboardFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	if err := validate.Struct(filter); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return
	}
	resp, err := h.svc.Dashboard(c.Request.Context(), filter)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
