package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/bp848/mqdriven-sub001/internal/core/ports/services"
	"github.com/bp848/mqdriven-sub001/internal/dto"
	"github.com/bp848/mqdriven-sub001/internal/middleware"
)

// maxDocumentBytes bounds uploaded attachments.
const maxDocumentBytes = 10 << 20

// applicationHandler handles HTTP requests related to applications.
type applicationHandler struct {
	appService     portssvc.ApplicationSvcFacade
	journalService portssvc.JournalSvcFacade
	intakeService  portssvc.IntakeSvc
}

// registerApplicationRoutes registers routes related to applications and their journal batch.
func registerApplicationRoutes(rg *gin.RouterGroup, appService portssvc.ApplicationSvcFacade, journalService portssvc.JournalSvcFacade, intakeService portssvc.IntakeSvc) {
	h := &applicationHandler{
		appService:     appService,
		journalService: journalService,
		intakeService:  intakeService,
	}

	apps := rg.Group("/applications")
	{
		apps.POST("", h.submitApplication)
		apps.GET("", h.listApplications)
		apps.PUT("/drafts", h.saveDraft)
		apps.GET("/:id", h.getApplication)
		apps.POST("/:id/approve", h.approveApplication)
		apps.POST("/:id/reject", h.rejectApplication)
		apps.POST("/:id/journal", h.generateJournal)
		apps.GET("/:id/journal", h.getApplicationJournal)
		apps.POST("/:id/documents", h.attachDocument)
	}
}

// submitApplication godoc
// @Summary Submit an application
// @Description Starts the approval flow, or stores a draft when status is "draft"
// @Tags applications
// @Accept  json
// @Produce  json
// @Param   application body dto.SubmitApplicationRequest true "Application"
// @Success 201 {object} dto.ApplicationResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 409 {object} map[string]string "Draft can no longer be promoted"
// @Security BearerAuth
// @Router /applications [post]
func (h *applicationHandler) submitApplication(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SubmitApplication", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	applicantID, ok := actingUser(c, logger)
	if !ok {
		return
	}

	app, err := h.appService.Submit(c.Request.Context(), req, applicantID)
	if err != nil {
		respondError(c, logger, err, "Failed to submit application")
		return
	}
	c.JSON(http.StatusCreated, dto.ToApplicationResponse(app))
}

// saveDraft godoc
// @Summary Save the caller's draft for an application code
// @Tags applications
// @Accept  json
// @Produce  json
// @Param   draft body dto.SaveDraftRequest true "Draft"
// @Success 200 {object} dto.ApplicationResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Security BearerAuth
// @Router /applications/drafts [put]
func (h *applicationHandler) saveDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.SaveDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SaveDraft", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	applicantID, ok := actingUser(c, logger)
	if !ok {
		return
	}

	app, err := h.appService.SaveDraft(c.Request.Context(), req, applicantID)
	if err != nil {
		respondError(c, logger, err, "Failed to save draft")
		return
	}
	c.JSON(http.StatusOK, dto.ToApplicationResponse(app))
}

func (h *applicationHandler) getApplication(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	applicationID := c.Param("id")

	app, err := h.appService.GetApplication(c.Request.Context(), applicationID)
	if err != nil {
		respondError(c, logger.With(slog.String("application_id", applicationID)), err, "Failed to retrieve application")
		return
	}
	c.JSON(http.StatusOK, dto.ToApplicationResponse(app))
}

// listApplications lists what the caller submitted or must approve.
func (h *applicationHandler) listApplications(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := actingUser(c, logger)
	if !ok {
		return
	}

	apps, err := h.appService.ListApplications(c.Request.Context(), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to list applications")
		return
	}
	c.JSON(http.StatusOK, dto.ToListApplicationsResponse(apps))
}

// approveApplication godoc
// @Summary Approve the current step of an application
// @Tags applications
// @Produce  json
// @Param   id path string true "Application ID"
// @Success 200 {object} dto.ApplicationResponse
// @Failure 403 {object} map[string]string "Caller is not the current approver"
// @Failure 409 {object} map[string]string "Application is not pending approval"
// @Security BearerAuth
// @Router /applications/{id}/approve [post]
func (h *applicationHandler) approveApplication(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	approverID, ok := actingUser(c, logger)
	if !ok {
		return
	}
	applicationID := c.Param("id")

	app, err := h.appService.Approve(c.Request.Context(), applicationID, approverID)
	if err != nil {
		respondError(c, logger.With(slog.String("application_id", applicationID)), err, "Failed to approve application")
		return
	}
	c.JSON(http.StatusOK, dto.ToApplicationResponse(app))
}

// rejectApplication godoc
// @Summary Reject an application
// @Tags applications
// @Accept  json
// @Produce  json
// @Param   id path string true "Application ID"
// @Param   rejection body dto.RejectApplicationRequest true "Rejection"
// @Success 200 {object} dto.ApplicationResponse
// @Failure 400 {object} map[string]string "Reason is required"
// @Failure 409 {object} map[string]string "Application is not pending approval"
// @Security BearerAuth
// @Router /applications/{id}/reject [post]
func (h *applicationHandler) rejectApplication(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RejectApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RejectApplication", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	approverID, ok := actingUser(c, logger)
	if !ok {
		return
	}
	applicationID := c.Param("id")

	app, err := h.appService.Reject(c.Request.Context(), applicationID, req.Reason, approverID)
	if err != nil {
		respondError(c, logger.With(slog.String("application_id", applicationID)), err, "Failed to reject application")
		return
	}
	c.JSON(http.StatusOK, dto.ToApplicationResponse(app))
}

// generateJournal derives (or returns the existing) batch of an approved application.
func (h *applicationHandler) generateJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	applicationID := c.Param("id")

	batch, err := h.journalService.Generate(c.Request.Context(), applicationID)
	if err != nil {
		respondError(c, logger.With(slog.String("application_id", applicationID)), err, "Failed to generate journal batch")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalBatchResponse(batch))
}

func (h *applicationHandler) getApplicationJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	applicationID := c.Param("id")

	batch, err := h.journalService.GetBatchForApplication(c.Request.Context(), applicationID)
	if err != nil {
		respondError(c, logger.With(slog.String("application_id", applicationID)), err, "Failed to retrieve journal batch")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalBatchResponse(batch))
}

// attachDocument accepts a multipart "file" and attaches it to a draft.
func (h *applicationHandler) attachDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	applicantID, ok := actingUser(c, logger)
	if !ok {
		return
	}
	applicationID := c.Param("id")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field \"file\" is required"})
		return
	}
	if fileHeader.Size > maxDocumentBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "document too large"})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open uploaded document", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable upload"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxDocumentBytes))
	if err != nil {
		logger.Error("Failed to read uploaded document", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable upload"})
		return
	}
	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}

	resp, err := h.intakeService.AttachDocument(c.Request.Context(), applicationID, applicantID, data, mimeType)
	if err != nil {
		respondError(c, logger.With(slog.String("application_id", applicationID)), err, "Failed to attach document")
		return
	}
	c.JSON(http.StatusCreated, resp)
}
