package handler

import (
	"net/http"

	"github.com/azmi-amirullah/minimarket-pos/internal/service"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct{ svc service.SyncService }

func NewSyncHandler(svc service.SyncService) *SyncHandler { return &SyncHandler{svc: svc} }

// Sync godoc
// @Summary      Run a manual sync cycle
// @Description  Pulls the remote snapshot, pushes unsynced local sales, and swaps local state all-or-nothing. Local sales never recorded remotely survive the swap.
// @Tags         sync
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.SyncResult
// @Failure      502 {object} apierror.APIError
// @Router       /v1/sync [post]
func (h *SyncHandler) Sync(c *gin.Context) {
	resp, err := h.svc.Sync(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
