package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/bp848/mqdriven-sub001/internal/core/ports/services"
	"github.com/bp848/mqdriven-sub001/internal/dto"
	"github.com/bp848/mqdriven-sub001/internal/middleware"
)

type accountingHandler struct {
	accountingService portssvc.AccountingSvc
}

func registerAccountingRoutes(rg *gin.RouterGroup, accountingService portssvc.AccountingSvc) {
	h := &accountingHandler{accountingService: accountingService}
	rg.GET("/accounting/approved-applications", h.listApprovedApplications)
}

// listApprovedApplications godoc
// @Summary List approved applications with their journal batches
// @Tags accounting
// @Produce  json
// @Param   code query []string false "Application code filter (repeatable)" collectionFormat(multi)
// @Success 200 {object} map[string][]dto.ApprovedApplicationResponse
// @Failure 500 {object} map[string]string "Failed to list approved applications"
// @Security BearerAuth
// @Router /accounting/approved-applications [get]
func (h *accountingHandler) listApprovedApplications(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	items, err := h.accountingService.ListApprovedApplications(c.Request.Context(), c.QueryArray("code")...)
	if err != nil {
		respondError(c, logger, err, "Failed to list approved applications")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": dto.ToApprovedApplicationResponses(items)})
}
