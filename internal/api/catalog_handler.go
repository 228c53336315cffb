package api

import (
	"alcyxob/fitness-catalog/internal/domain"
	"alcyxob/fitness-catalog/internal/service"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// CatalogHandler exposes catalog parsing and imports.
type CatalogHandler struct {
	catalogService service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// --- DTOs ---

// CatalogTextRequest carries catalog text, one exercise per line.
type CatalogTextRequest struct {
	Text string `json:"text" binding:"required"`
}

// UploadURLRequest asks for a presigned upload URL.
type UploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

// UploadURLResponse returns where to PUT the catalog file.
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// ImportFromUploadRequest names a previously uploaded catalog file.
type ImportFromUploadRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

// RejectedLineResponse explains why one catalog line was refused.
type RejectedLineResponse struct {
	LineNumber int    `json:"lineNumber"`
	Line       string `json:"line"`
	Reason     string `json:"reason"`
}

// PreviewResponse is the result of parsing a catalog without saving it.
type PreviewResponse struct {
	Accepted   int                    `json:"accepted"`
	Rejected   int                    `json:"rejected"`
	Exercises  []ExerciseResponse     `json:"exercises"`
	Rejections []RejectedLineResponse `json:"rejections"`
}

// CatalogImportResponse is the DTO for an import run.
type CatalogImportResponse struct {
	ID          string                 `json:"id"`
	ImportedBy  string                 `json:"importedBy"`
	Source      domain.ImportSource    `json:"source"`
	ObjectKey   string                 `json:"objectKey,omitempty"`
	TotalLines  int                    `json:"totalLines"`
	Accepted    int                    `json:"accepted"`
	Rejections  []RejectedLineResponse `json:"rejections"`
	StartedAt   time.Time              `json:"startedAt"`
	CompletedAt time.Time              `json:"completedAt"`
}

func mapRejectedLines(lines []domain.RejectedLine) []RejectedLineResponse {
	out := make([]RejectedLineResponse, len(lines))
	for i, l := range lines {
		out[i] = RejectedLineResponse{LineNumber: l.LineNumber, Line: l.Line, Reason: l.Reason}
	}
	return out
}

// MapCatalogImportToResponse converts a domain.CatalogImport to its DTO.
func MapCatalogImportToResponse(imp *domain.CatalogImport) CatalogImportResponse {
	return CatalogImportResponse{
		ID:          imp.ID.Hex(),
		ImportedBy:  imp.ImportedBy.Hex(),
		Source:      imp.Source,
		ObjectKey:   imp.S3ObjectKey,
		TotalLines:  imp.TotalLines,
		Accepted:    imp.Accepted,
		Rejections:  mapRejectedLines(imp.Rejected),
		StartedAt:   imp.StartedAt,
		CompletedAt: imp.CompletedAt,
	}
}

// --- Handler Methods ---

// Preview godoc
// @Summary Parse catalog text without saving it
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CatalogTextRequest true "Catalog text"
// @Success 200 {object} PreviewResponse
// @Failure 400 {object} gin.H "Empty catalog"
// @Failure 413 {object} gin.H "Too many lines"
// @Router /catalog/preview [post]
func (h *CatalogHandler) Preview(c *gin.Context) {
	var req CatalogTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	batch, err := h.catalogService.Preview(c.Request.Context(), req.Text)
	if err != nil {
		handleServiceError(c, err, "Failed to parse catalog.")
		return
	}

	exercises := batch.Exercises()
	resp := PreviewResponse{
		Accepted:   batch.Accepted,
		Rejected:   batch.Rejected,
		Exercises:  make([]ExerciseResponse, len(exercises)),
		Rejections: mapRejectedLines(batch.RejectedLines()),
	}
	for i, ex := range exercises {
		resp.Exercises[i] = MapExerciseToResponse(ex)
	}
	c.JSON(http.StatusOK, resp)
}

// CreateImport godoc
// @Summary Import catalog text into the exercise library
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CatalogTextRequest true "Catalog text"
// @Success 201 {object} CatalogImportResponse
// @Failure 400 {object} gin.H "Empty catalog"
// @Failure 403 {object} gin.H "Forbidden (not a curator)"
// @Router /catalog/imports [post]
func (h *CatalogHandler) CreateImport(c *gin.Context) {
	principal, err := getPrincipalFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	var req CatalogTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	imp, err := h.catalogService.Import(c.Request.Context(), service.ImportRequest{
		ImportedBy: principal.UserID,
		Source:     domain.ImportSourceInline,
		Text:       req.Text,
	})
	if err != nil {
		handleServiceError(c, err, "Failed to import catalog.")
		return
	}
	c.JSON(http.StatusCreated, MapCatalogImportToResponse(imp))
}

// RequestUploadURL godoc
// @Summary Get a presigned URL for uploading a catalog file
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UploadURLRequest true "Content type of the file"
// @Success 200 {object} UploadURLResponse
// @Failure 400 {object} gin.H "Not a text content type"
// @Router /catalog/uploads [post]
func (h *CatalogHandler) RequestUploadURL(c *gin.Context) {
	principal, err := getPrincipalFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	resp, err := h.catalogService.RequestUploadURL(c.Request.Context(), principal.UserID, req.ContentType)
	if err != nil {
		handleServiceError(c, err, "Failed to generate upload URL.")
		return
	}
	c.JSON(http.StatusOK, UploadURLResponse{UploadURL: resp.UploadURL, ObjectKey: resp.ObjectKey})
}

// ImportFromUpload godoc
// @Summary Import a previously uploaded catalog file
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ImportFromUploadRequest true "Object key returned by /catalog/uploads"
// @Success 201 {object} CatalogImportResponse
// @Failure 403 {object} gin.H "Object key belongs to another user"
// @Failure 404 {object} gin.H "File not uploaded"
// @Router /catalog/imports/from-upload [post]
func (h *CatalogHandler) ImportFromUpload(c *gin.Context) {
	principal, err := getPrincipalFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	var req ImportFromUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	imp, err := h.catalogService.ImportFromStorage(c.Request.Context(), principal.UserID, req.ObjectKey)
	if err != nil {
		handleServiceError(c, err, "Failed to import catalog.")
		return
	}
	c.JSON(http.StatusCreated, MapCatalogImportToResponse(imp))
}

// ListImports godoc
// @Summary List recent catalog imports
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum results"
// @Success 200 {array} CatalogImportResponse
// @Router /catalog/imports [get]
func (h *CatalogHandler) ListImports(c *gin.Context) {
	var limit int64
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			abortWithError(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	imports, err := h.catalogService.ListImports(c.Request.Context(), limit)
	if err != nil {
		handleServiceError(c, err, "Failed to retrieve imports.")
		return
	}

	resp := make([]CatalogImportResponse, len(imports))
	for i := range imports {
		resp[i] = MapCatalogImportToResponse(&imports[i])
	}
	c.JSON(http.StatusOK, resp)
}

// GetImport godoc
// @Summary Get one catalog import with its rejected lines
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param id path string true "Import ObjectID Hex"
// @Success 200 {object} CatalogImportResponse
// @Failure 404 {object} gin.H "Import not found"
// @Router /catalog/imports/{id} [get]
func (h *CatalogHandler) GetImport(c *gin.Context) {
	importID, ok := pathObjectID(c, "id", "import")
	if !ok {
		return
	}

	imp, err := h.catalogService.GetImport(c.Request.Context(), importID)
	if err != nil {
		handleServiceError(c, err, "Failed to retrieve import.")
		return
	}
	c.JSON(http.StatusOK, MapCatalogImportToResponse(imp))
}
