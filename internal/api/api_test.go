package api

import (
	"alcyxob/fitness-catalog/internal/catalog"
	"alcyxob/fitness-catalog/internal/domain"
	"alcyxob/fitness-catalog/internal/repository"
	"alcyxob/fitness-catalog/internal/service"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

type stubExerciseService struct {
	exercises  map[primitive.ObjectID]*domain.Exercise
	lastFilter repository.ExerciseFilter
}

func newStubExerciseService() *stubExerciseService {
	return &stubExerciseService{exercises: map[primitive.ObjectID]*domain.Exercise{}}
}

func (s *stubExerciseService) add(t *testing.T, line string) *domain.Exercise {
	t.Helper()
	ex, err := catalog.ParseLine(line)
	require.NoError(t, err)
	ex.ID = primitive.NewObjectID()
	ex.CreatedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ex.UpdatedAt = ex.CreatedAt
	s.exercises[ex.ID] = ex
	return ex
}

func (s *stubExerciseService) GetExerciseByID(_ context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	ex, ok := s.exercises[id]
	if !ok {
		return nil, service.ErrExerciseNotFound
	}
	return ex, nil
}

func (s *stubExerciseService) ListExercises(_ context.Context, filter repository.ExerciseFilter) ([]domain.Exercise, error) {
	s.lastFilter = filter
	out := make([]domain.Exercise, 0, len(s.exercises))
	for _, ex := range s.exercises {
		out = append(out, *ex)
	}
	return out, nil
}

func (s *stubExerciseService) ReplaceFromLine(_ context.Context, id primitive.ObjectID, line string) (*domain.Exercise, error) {
	existing, ok := s.exercises[id]
	if !ok {
		return nil, service.ErrExerciseNotFound
	}
	ex, err := catalog.ParseLine(line)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", service.ErrInvalidCatalogLine, err)
	}
	ex.ID = existing.ID
	s.exercises[id] = ex
	return ex, nil
}

func (s *stubExerciseService) DeleteExercise(_ context.Context, id primitive.ObjectID) error {
	if _, ok := s.exercises[id]; !ok {
		return service.ErrExerciseNotFound
	}
	delete(s.exercises, id)
	return nil
}

// stubCatalogService runs the real batch parser without persistence.
type stubCatalogService struct {
	service.CatalogService
	imports map[primitive.ObjectID]*domain.CatalogImport
}

func newStubCatalogService() *stubCatalogService {
	inner := service.NewCatalogService(nil, nil, nil, service.CatalogOptions{Workers: 2, MaxLines: 10}, zap.NewNop())
	return &stubCatalogService{CatalogService: inner, imports: map[primitive.ObjectID]*domain.CatalogImport{}}
}

func (s *stubCatalogService) Import(ctx context.Context, req service.ImportRequest) (*domain.CatalogImport, error) {
	batch, err := s.Preview(ctx, req.Text)
	if err != nil {
		return nil, err
	}
	imp := &domain.CatalogImport{
		ID:         primitive.NewObjectID(),
		ImportedBy: req.ImportedBy,
		Source:     req.Source,
		TotalLines: len(batch.Results),
		Accepted:   batch.Accepted,
		Rejected:   batch.RejectedLines(),
	}
	s.imports[imp.ID] = imp
	return imp, nil
}

func (s *stubCatalogService) GetImport(_ context.Context, id primitive.ObjectID) (*domain.CatalogImport, error) {
	imp, ok := s.imports[id]
	if !ok {
		return nil, service.ErrImportNotFound
	}
	return imp, nil
}

func (s *stubCatalogService) RequestUploadURL(_ context.Context, importerID primitive.ObjectID, contentType string) (*service.UploadURLResponse, error) {
	if contentType != "text/plain" {
		return nil, service.ErrInvalidContentType
	}
	key := "catalogs/" + importerID.Hex() + "/upload.txt"
	return &service.UploadURLResponse{UploadURL: "https://s3.test/" + key, ObjectKey: key}, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *stubExerciseService, *stubCatalogService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	exercises := newStubExerciseService()
	catalogs := newStubCatalogService()
	SetupRoutes(router, testSecret, exercises, catalogs)
	return router, exercises, catalogs
}

func signToken(t *testing.T, userID primitive.ObjectID, role domain.Role, expiresIn time.Duration) string {
	t.Helper()
	claims := jwtClaims{
		UserID: userID.Hex(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPing(t *testing.T) {
	router, _, _ := newTestRouter(t)
	w := doRequest(t, router, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestAuthMiddleware(t *testing.T) {
	router, _, _ := newTestRouter(t)
	userID := primitive.NewObjectID()

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing header", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not-a-jwt", want: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + signToken(t, userID, domain.RoleClient, -time.Minute), want: http.StatusUnauthorized},
		{name: "valid", header: "Bearer " + signToken(t, userID, domain.RoleClient, time.Hour), want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/exercises", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestAuthMiddleware_RejectsTokenWithoutExpiry(t *testing.T) {
	router, _, _ := newTestRouter(t)
	claims := jwtClaims{UserID: primitive.NewObjectID().Hex(), Role: domain.RoleAdmin}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	w := doRequest(t, router, http.MethodGet, "/api/v1/exercises", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListExercises(t *testing.T) {
	router, exercises, _ := newTestRouter(t)
	exercises.add(t, "Goblet Squat – strength | squat | quads/glutes | dumbbell | beginner | 3×12")
	token := signToken(t, primitive.NewObjectID(), domain.RoleClient, time.Hour)

	w := doRequest(t, router, http.MethodGet, "/api/v1/exercises?bodyRegion=lower&goal=strength&q=squat&limit=5", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp []ExerciseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "Goblet Squat", resp[0].Name)
	assert.Equal(t, []string{"quads", "glutes"}, resp[0].PrimaryMuscles)
	assert.Equal(t, []string{}, resp[0].SecondaryMuscles)
	require.NotNil(t, resp[0].CreatedAt)

	assert.Equal(t, domain.BodyRegionLower, exercises.lastFilter.BodyRegion)
	assert.Equal(t, domain.GoalStrength, exercises.lastFilter.GoalTag)
	assert.Equal(t, "squat", exercises.lastFilter.NameSearch)
	assert.Equal(t, int64(5), exercises.lastFilter.Limit)
}

func TestListExercises_InvalidFilter(t *testing.T) {
	router, _, _ := newTestRouter(t)
	token := signToken(t, primitive.NewObjectID(), domain.RoleClient, time.Hour)

	for _, query := range []string{"bodyRegion=legs", "environment=park", "impactLevel=extreme", "importId=xyz", "limit=0", "limit=abc"} {
		t.Run(query, func(t *testing.T) {
			w := doRequest(t, router, http.MethodGet, "/api/v1/exercises?"+query, token, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestGetExercise(t *testing.T) {
	router, exercises, _ := newTestRouter(t)
	ex := exercises.add(t, "Plank – core | core | abs | bodyweight | beginner | 3×30s")
	token := signToken(t, primitive.NewObjectID(), domain.RoleClient, time.Hour)

	w := doRequest(t, router, http.MethodGet, "/api/v1/exercises/"+ex.ID.Hex(), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp ExerciseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, ex.ID.Hex(), resp.ID)
	require.NotNil(t, resp.DurationSeconds)
	assert.Equal(t, 30, *resp.DurationSeconds)

	w = doRequest(t, router, http.MethodGet, "/api/v1/exercises/not-an-id", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/v1/exercises/"+primitive.NewObjectID().Hex(), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReplaceExercise_Roles(t *testing.T) {
	router, exercises, _ := newTestRouter(t)
	ex := exercises.add(t, "Leg Press – strength | squat | quads | machine | beginner | 3×10")
	path := "/api/v1/exercises/" + ex.ID.Hex()
	body := ReplaceExerciseRequest{Line: "Leg Press – strength | squat | quads | machine: Sled | intermediate | 4×8"}

	client := signToken(t, primitive.NewObjectID(), domain.RoleClient, time.Hour)
	w := doRequest(t, router, http.MethodPut, path, client, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	trainer := signToken(t, primitive.NewObjectID(), domain.RoleTrainer, time.Hour)
	w = doRequest(t, router, http.MethodPut, path, trainer, body)
	require.Equal(t, http.StatusOK, w.Code)
	var resp ExerciseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.Sets)
	require.NotNil(t, resp.EquipmentDetail)
	assert.Equal(t, "Sled", *resp.EquipmentDetail)

	w = doRequest(t, router, http.MethodPut, path, trainer, ReplaceExerciseRequest{Line: "Leg Press – strength | squat"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid catalog line")
}

func TestDeleteExercise_AdminOnly(t *testing.T) {
	router, exercises, _ := newTestRouter(t)
	ex := exercises.add(t, "Dead Bug – core | core | abs | bodyweight | beginner")
	path := "/api/v1/exercises/" + ex.ID.Hex()

	trainer := signToken(t, primitive.NewObjectID(), domain.RoleTrainer, time.Hour)
	assert.Equal(t, http.StatusForbidden, doRequest(t, router, http.MethodDelete, path, trainer, nil).Code)

	admin := signToken(t, primitive.NewObjectID(), domain.RoleAdmin, time.Hour)
	assert.Equal(t, http.StatusNoContent, doRequest(t, router, http.MethodDelete, path, admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(t, router, http.MethodDelete, path, admin, nil).Code)
}

func TestCatalogPreview(t *testing.T) {
	router, _, _ := newTestRouter(t)
	token := signToken(t, primitive.NewObjectID(), domain.RoleClient, time.Hour)

	text := "# warmups\n" +
		"Jumping Jacks – cardio | jump | full body | bodyweight | beginner | 3×30s\n" +
		"no delimiter | here | a | b | c\n"
	w := doRequest(t, router, http.MethodPost, "/api/v1/catalog/preview", token, CatalogTextRequest{Text: text})
	require.Equal(t, http.StatusOK, w.Code)

	var resp PreviewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Accepted)
	assert.Equal(t, 1, resp.Rejected)
	require.Len(t, resp.Exercises, 1)
	assert.Equal(t, "Jumping Jacks", resp.Exercises[0].Name)
	assert.Empty(t, resp.Exercises[0].ID)
	assert.Nil(t, resp.Exercises[0].CreatedAt)
	require.Len(t, resp.Rejections, 1)
	assert.Equal(t, 3, resp.Rejections[0].LineNumber)
}

func TestCatalogPreview_Errors(t *testing.T) {
	router, _, _ := newTestRouter(t)
	token := signToken(t, primitive.NewObjectID(), domain.RoleClient, time.Hour)

	w := doRequest(t, router, http.MethodPost, "/api/v1/catalog/preview", token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, router, http.MethodPost, "/api/v1/catalog/preview", token, CatalogTextRequest{Text: "# only comments\n\n"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var big bytes.Buffer
	for range 11 {
		big.WriteString("Row – strength | pull | lats | cable | beginner\n")
	}
	w = doRequest(t, router, http.MethodPost, "/api/v1/catalog/preview", token, CatalogTextRequest{Text: big.String()})
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestCatalogImport_CreateAndGet(t *testing.T) {
	router, _, _ := newTestRouter(t)
	trainerID := primitive.NewObjectID()
	trainer := signToken(t, trainerID, domain.RoleTrainer, time.Hour)
	client := signToken(t, primitive.NewObjectID(), domain.RoleClient, time.Hour)

	req := CatalogTextRequest{Text: "Push-up – strength | push | chest | bodyweight | beginner | 3×10\nbroken line"}
	assert.Equal(t, http.StatusForbidden, doRequest(t, router, http.MethodPost, "/api/v1/catalog/imports", client, req).Code)

	w := doRequest(t, router, http.MethodPost, "/api/v1/catalog/imports", trainer, req)
	require.Equal(t, http.StatusCreated, w.Code)
	var created CatalogImportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, trainerID.Hex(), created.ImportedBy)
	assert.Equal(t, domain.ImportSourceInline, created.Source)
	assert.Equal(t, 2, created.TotalLines)
	assert.Equal(t, 1, created.Accepted)
	require.Len(t, created.Rejections, 1)
	assert.Equal(t, "broken line", created.Rejections[0].Line)

	w = doRequest(t, router, http.MethodGet, "/api/v1/catalog/imports/"+created.ID, trainer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched CatalogImportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, created.ID, fetched.ID)

	w = doRequest(t, router, http.MethodGet, "/api/v1/catalog/imports/"+primitive.NewObjectID().Hex(), trainer, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCatalogUploads(t *testing.T) {
	router, _, _ := newTestRouter(t)
	adminID := primitive.NewObjectID()
	admin := signToken(t, adminID, domain.RoleAdmin, time.Hour)

	w := doRequest(t, router, http.MethodPost, "/api/v1/catalog/uploads", admin, UploadURLRequest{ContentType: "text/plain"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp UploadURLResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.ObjectKey, adminID.Hex())
	assert.Contains(t, resp.UploadURL, resp.ObjectKey)

	w = doRequest(t, router, http.MethodPost, "/api/v1/catalog/uploads", admin, UploadURLRequest{ContentType: "video/mp4"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListImports_InvalidLimit(t *testing.T) {
	router, _, _ := newTestRouter(t)
	admin := signToken(t, primitive.NewObjectID(), domain.RoleAdmin, time.Hour)
	w := doRequest(t, router, http.MethodGet, "/api/v1/catalog/imports?limit=-1", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
