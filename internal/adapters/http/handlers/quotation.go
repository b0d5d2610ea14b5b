package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotation-service/internal/adapters/export"
	"github.com/jsamuelsen/quotation-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotation-service/internal/app"
	"github.com/jsamuelsen/quotation-service/internal/domain"
	"github.com/jsamuelsen/quotation-service/internal/platform/logging"
)

// QuotationHandler serves the quotation list, summary, export and create endpoints.
type QuotationHandler struct {
	service     *app.QuotationService
	exportTitle string
	now         func() time.Time
}

// NewQuotationHandler creates a quotation handler. An empty exportTitle
// defaults to "Quotations".
func NewQuotationHandler(service *app.QuotationService, exportTitle string) *QuotationHandler {
	if exportTitle == "" {
		exportTitle = "Quotations"
	}

	return &QuotationHandler{
		service:     service,
		exportTitle: exportTitle,
		now:         time.Now,
	}
}

// List handles GET /api/v1/quotations.
//
// @Summary List quotations
// @Description Joins quotations with their clients and applies the company, email and date filters
// @Tags quotations
// @Produce json
// @Param company query string false "Company name substring"
// @Param email query string false "Client email substring"
// @Param start_date query string false "Created on or after (YYYY-MM-DD)"
// @Param end_date query string false "Created and valid until on or before (YYYY-MM-DD)"
// @Param cursor query string false "Cursor from a previous page"
// @Param limit query int false "Page size (1-100)"
// @Success 200 {object} dto.QuotationListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/quotations [get]
func (h *QuotationHandler) List(c *gin.Context) {
	var req dto.ListQuotationsRequest
	if !bindQuery(c, &req) {
		return
	}

	criteria, err := req.Criteria()
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), criteria)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	resp, err := dto.PageQuotations(result, &req.PaginationRequest)
	if err != nil {
		dto.AbortWithCode(c, dto.ErrorCodeBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Summary handles GET /api/v1/quotations/summary.
//
// @Summary Summarize quotations
// @Tags quotations
// @Produce json
// @Success 200 {object} dto.SummaryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/quotations/summary [get]
func (h *QuotationHandler) Summary(c *gin.Context) {
	var req dto.CriteriaRequest
	if !bindQuery(c, &req) {
		return
	}

	criteria, err := req.Criteria()
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), criteria)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSummaryResponse(summary))
}

// Export handles GET /api/v1/quotations/export.
// The whole filtered list is rendered; pagination does not apply.
//
// @Summary Export quotations
// @Tags quotations
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce application/pdf
// @Param format query string false "xlsx (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/quotations/export [get]
func (h *QuotationHandler) Export(c *gin.Context) {
	var req dto.ExportRequest
	if !bindQuery(c, &req) {
		return
	}

	format, err := export.ParseFormat(req.Format)
	if err != nil {
		dto.AbortWithCode(c, dto.ErrorCodeBadRequest, err.Error())
		return
	}

	criteria, err := req.Criteria()
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), criteria)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	now := h.now()
	doc := export.NewDocument(h.exportTitle, criteria, result.Items, now)

	c.Header("Content-Disposition", "attachment; filename="+format.Filename(now))
	c.Header("Content-Type", format.ContentType())
	c.Status(http.StatusOK)

	if err := export.Write(c.Writer, format, doc); err != nil {
		// Headers are gone; all that is left is to log and drop the connection.
		logging.FromContext(c.Request.Context()).ErrorContext(c.Request.Context(), "export failed",
			slog.String("format", string(format)),
			slog.String("error", err.Error()),
		)
		_ = c.Error(err)
		c.Abort()
	}
}

// Create handles POST /api/v1/quotations.
//
// @Summary Create a quotation
// @Description Resolves the client by company name and derives tax and total from the subtotal
// @Tags quotations
// @Accept json
// @Produce json
// @Param body body dto.CreateQuotationRequest true "Quotation"
// @Success 201 {object} dto.QuotationResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/quotations [post]
func (h *QuotationHandler) Create(c *gin.Context) {
	var req dto.CreateQuotationRequest

	if err := dto.BindAndValidate(c, &req); err != nil {
		respondBindError(c, err)
		return
	}

	created, err := h.service.Create(c.Request.Context(), req.Input())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToQuotationResponse(domain.EnrichedQuotation{Quotation: *created}))
}

// RegisterQuotationRoutes registers quotation routes on the given router group.
func (h *QuotationHandler) RegisterQuotationRoutes(rg *gin.RouterGroup) {
	quotations := rg.Group("/quotations")
	quotations.GET("", h.List)
	quotations.GET("/summary", h.Summary)
	quotations.GET("/export", h.Export)
	quotations.POST("", h.Create)
}

func bindQuery(c *gin.Context, v any) bool {
	if err := dto.BindQueryAndValidate(c, v); err != nil {
		respondBindError(c, err)
		return false
	}

	return true
}

func respondBindError(c *gin.Context, err error) {
	if dto.IsValidationError(err) {
		dto.RespondWithFieldErrors(c, dto.ValidationErrors(err))
		return
	}

	dto.AbortWithCode(c, dto.ErrorCodeBadRequest, err.Error())
}
