package api

import (
	"alcyxob/fitness-catalog/internal/domain"
	"alcyxob/fitness-catalog/internal/repository"
	"alcyxob/fitness-catalog/internal/service"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// --- DTOs for API (Data Transfer Objects) ---

// ReplaceExerciseRequest carries a corrected catalog line.
type ReplaceExerciseRequest struct {
	Line string `json:"line" binding:"required"`
}

// ExerciseResponse is the DTO for returning exercise details.
type ExerciseResponse struct {
	ID                   string                 `json:"id,omitempty"`
	ImportID             string                 `json:"importId,omitempty"`
	Name                 string                 `json:"name"`
	Modality             string                 `json:"modality"`
	MovementPattern      string                 `json:"movementPattern"`
	PrimaryMuscles       []string               `json:"primaryMuscles"`
	SecondaryMuscles     []string               `json:"secondaryMuscles"`
	BodyRegion           domain.BodyRegion      `json:"bodyRegion"`
	EquipmentCategory    string                 `json:"equipmentCategory"`
	EquipmentDetail      *string                `json:"equipmentDetail,omitempty"`
	Difficulty           string                 `json:"difficulty"`
	ImpactLevel          domain.ImpactLevel     `json:"impactLevel"`
	Environment          domain.Environment     `json:"environment"`
	GoalTags             []string               `json:"goalTags"`
	LoggingOptions       []domain.LoggingOption `json:"loggingOptions"`
	Sets                 int                    `json:"sets"`
	Reps                 *int                   `json:"reps,omitempty"`
	RepsUpper            *int                   `json:"repsUpper,omitempty"`
	DurationSeconds      *int                   `json:"durationSeconds,omitempty"`
	DurationUpperSeconds *int                   `json:"durationUpperSeconds,omitempty"`
	RestSeconds          int                    `json:"restSeconds"`
	DefaultPrescription  string                 `json:"defaultPrescription"`
	CreatedAt            *time.Time             `json:"createdAt,omitempty"`
	UpdatedAt            *time.Time             `json:"updatedAt,omitempty"`
}

// MapExerciseToResponse converts a domain.Exercise to ExerciseResponse DTO.
// Unsaved (previewed) exercises have no ID or timestamps.
func MapExerciseToResponse(ex *domain.Exercise) ExerciseResponse {
	if ex == nil {
		return ExerciseResponse{}
	}
	resp := ExerciseResponse{
		Name:                 ex.Name,
		Modality:             ex.Modality,
		MovementPattern:      ex.MovementPattern,
		PrimaryMuscles:       nonNil(ex.PrimaryMuscles),
		SecondaryMuscles:     nonNil(ex.SecondaryMuscles),
		BodyRegion:           ex.BodyRegion,
		EquipmentCategory:    ex.EquipmentCategory,
		EquipmentDetail:      ex.EquipmentDetail,
		Difficulty:           ex.Difficulty,
		ImpactLevel:          ex.ImpactLevel,
		Environment:          ex.Environment,
		GoalTags:             nonNil(ex.GoalTags),
		LoggingOptions:       nonNil(ex.LoggingOptions),
		Sets:                 ex.Sets,
		Reps:                 ex.Reps,
		RepsUpper:            ex.RepsUpper,
		DurationSeconds:      ex.DurationSeconds,
		DurationUpperSeconds: ex.DurationUpperSeconds,
		RestSeconds:          ex.RestSeconds,
		DefaultPrescription:  ex.DefaultPrescription,
	}
	if !ex.ID.IsZero() {
		resp.ID = ex.ID.Hex()
	}
	if !ex.ImportID.IsZero() {
		resp.ImportID = ex.ImportID.Hex()
	}
	if !ex.CreatedAt.IsZero() {
		created, updated := ex.CreatedAt, ex.UpdatedAt
		resp.CreatedAt, resp.UpdatedAt = &created, &updated
	}
	return resp
}

// MapExercisesToResponse converts a slice of domain.Exercise to a slice of ExerciseResponse DTO.
func MapExercisesToResponse(exercises []domain.Exercise) []ExerciseResponse {
	responses := make([]ExerciseResponse, len(exercises))
	for i := range exercises {
		responses[i] = MapExerciseToResponse(&exercises[i])
	}
	return responses
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// --- Handler Methods ---

// ListExercises godoc
// @Summary Browse the exercise library
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param bodyRegion query string false "lower, upper, core or full"
// @Param environment query string false "gym, home or any"
// @Param impactLevel query string false "low, medium or high"
// @Param goal query string false "Goal tag, e.g. strength"
// @Param modality query string false "Exact modality"
// @Param difficulty query string false "Exact difficulty"
// @Param q query string false "Name search"
// @Param importId query string false "Only exercises from this import"
// @Param limit query int false "Maximum results"
// @Success 200 {array} ExerciseResponse
// @Failure 400 {object} gin.H "Invalid filter"
// @Router /exercises [get]
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	filter, err := parseExerciseFilter(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	exercises, err := h.exerciseService.ListExercises(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve exercises.")
		return
	}
	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

func parseExerciseFilter(c *gin.Context) (repository.ExerciseFilter, error) {
	filter := repository.ExerciseFilter{
		BodyRegion:  domain.BodyRegion(c.Query("bodyRegion")),
		Environment: domain.Environment(c.Query("environment")),
		ImpactLevel: domain.ImpactLevel(c.Query("impactLevel")),
		GoalTag:     c.Query("goal"),
		Modality:    c.Query("modality"),
		Difficulty:  c.Query("difficulty"),
		NameSearch:  c.Query("q"),
	}

	switch filter.BodyRegion {
	case "", domain.BodyRegionLower, domain.BodyRegionUpper, domain.BodyRegionCore, domain.BodyRegionFull:
	default:
		return filter, errors.New("bodyRegion must be one of lower, upper, core, full")
	}
	switch filter.Environment {
	case "", domain.EnvironmentGym, domain.EnvironmentHome, domain.EnvironmentAny:
	default:
		return filter, errors.New("environment must be one of gym, home, any")
	}
	switch filter.ImpactLevel {
	case "", domain.ImpactLow, domain.ImpactMedium, domain.ImpactHigh:
	default:
		return filter, errors.New("impactLevel must be one of low, medium, high")
	}

	if raw := c.Query("importId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return filter, errors.New("invalid importId format")
		}
		filter.ImportID = id
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || limit <= 0 {
			return filter, errors.New("limit must be a positive integer")
		}
		filter.Limit = limit
	}
	return filter, nil
}

// GetExercise godoc
// @Summary Get one library exercise
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ObjectID Hex"
// @Success 200 {object} ExerciseResponse
// @Failure 400 {object} gin.H "Invalid exercise ID format"
// @Failure 404 {object} gin.H "Exercise not found"
// @Router /exercises/{id} [get]
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	exerciseID, ok := pathObjectID(c, "id", "exercise")
	if !ok {
		return
	}

	exercise, err := h.exerciseService.GetExerciseByID(c.Request.Context(), exerciseID)
	if err != nil {
		handleServiceError(c, err, "Failed to retrieve exercise.")
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

// ReplaceExercise godoc
// @Summary Replace an exercise from a corrected catalog line
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ObjectID Hex"
// @Param body body ReplaceExerciseRequest true "Catalog line"
// @Success 200 {object} ExerciseResponse
// @Failure 400 {object} gin.H "Invalid input or unparseable line"
// @Failure 404 {object} gin.H "Exercise not found"
// @Router /exercises/{id} [put]
func (h *ExerciseHandler) ReplaceExercise(c *gin.Context) {
	exerciseID, ok := pathObjectID(c, "id", "exercise")
	if !ok {
		return
	}
	var req ReplaceExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	exercise, err := h.exerciseService.ReplaceFromLine(c.Request.Context(), exerciseID, req.Line)
	if err != nil {
		handleServiceError(c, err, "Failed to update exercise.")
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

// DeleteExercise godoc
// @Summary Remove an exercise from the library
// @Tags Exercises
// @Security BearerAuth
// @Param id path string true "Exercise ObjectID Hex"
// @Success 204
// @Failure 404 {object} gin.H "Exercise not found"
// @Router /exercises/{id} [delete]
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	exerciseID, ok := pathObjectID(c, "id", "exercise")
	if !ok {
		return
	}

	if err := h.exerciseService.DeleteExercise(c.Request.Context(), exerciseID); err != nil {
		handleServiceError(c, err, "Failed to delete exercise.")
		return
	}
	c.Status(http.StatusNoContent)
}

// pathObjectID parses an ObjectID path parameter, aborting with 400 on failure.
func pathObjectID(c *gin.Context, param, what string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+what+" ID format.")
		return primitive.NilObjectID, false
	}
	return id, true
}

// handleServiceError maps service sentinel errors to HTTP responses.
func handleServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrExerciseNotFound),
		errors.Is(err, service.ErrImportNotFound),
		errors.Is(err, service.ErrCatalogObjectNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidCatalogLine),
		errors.Is(err, service.ErrEmptyCatalog),
		errors.Is(err, service.ErrInvalidContentType):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrCatalogTooLarge):
		abortWithError(c, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, service.ErrInvalidObjectKey):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}
