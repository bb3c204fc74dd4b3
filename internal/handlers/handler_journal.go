package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/bp848/mqdriven-sub001/internal/core/ports/services"
	"github.com/bp848/mqdriven-sub001/internal/dto"
	"github.com/bp848/mqdriven-sub001/internal/middleware"
)

// journalHandler handles HTTP requests related to journal batches.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

func registerJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade) {
	h := &journalHandler{journalService: journalService}

	batches := rg.Group("/journal-batches")
	{
		batches.GET("/:batchID", h.getBatch)
		batches.POST("/:batchID/post", h.postBatch)
	}
}

func (h *journalHandler) getBatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	batchID := c.Param("batchID")

	batch, err := h.journalService.GetBatch(c.Request.Context(), batchID)
	if err != nil {
		respondError(c, logger.With(slog.String("batch_id", batchID)), err, "Failed to retrieve journal batch")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalBatchResponse(batch))
}

// postBatch godoc
// @Summary Post a draft journal batch
// @Description Moves a draft batch to posted. Posting is one-way.
// @Tags journal
// @Produce  json
// @Param   batchID path string true "Batch ID"
// @Success 200 {object} dto.JournalBatchResponse
// @Failure 404 {object} map[string]string "Batch not found"
// @Failure 409 {object} map[string]string "Batch is already posted"
// @Security BearerAuth
// @Router /journal-batches/{batchID}/post [post]
func (h *journalHandler) postBatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	batchID := c.Param("batchID")

	batch, err := h.journalService.Post(c.Request.Context(), batchID)
	if err != nil {
		respondError(c, logger.With(slog.String("batch_id", batchID)), err, "Failed to post journal batch")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalBatchResponse(batch))
}
