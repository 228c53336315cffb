package service

import (
	"alcyxob/fitness-catalog/internal/catalog"
	"alcyxob/fitness-catalog/internal/domain"
	"alcyxob/fitness-catalog/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const sampleCatalog = `# Sample catalog
Barbell Back Squat – strength | squat | quads/glutes | barbell | intermediate | 3×8–10, rest 120s
Push-up – strength | horizontal push | chest, triceps | bodyweight | beginner

Broken Line - missing en dash | push | chest | bodyweight | beginner
Box Jump – plyometric | jump | quads | box | intermediate | 4×5
Plank – core | core | abs | bodyweight
`

func newTestCatalogService(workers int) (*catalogService, *fakeExerciseRepo, *fakeImportRepo, *fakeStorage) {
	exRepo := newFakeExerciseRepo()
	impRepo := &fakeImportRepo{}
	store := &fakeStorage{objects: map[string]string{}}
	svc := NewCatalogService(exRepo, impRepo, store, CatalogOptions{Workers: workers, MaxLines: 1000}, zap.NewNop())
	return svc.(*catalogService), exRepo, impRepo, store
}

func TestCatalogService_Preview(t *testing.T) {
	svc, exRepo, impRepo, _ := newTestCatalogService(3)

	batch, err := svc.Preview(context.Background(), sampleCatalog)
	require.NoError(t, err)

	require.Len(t, batch.Results, 5)
	assert.Equal(t, 3, batch.Accepted)
	assert.Equal(t, 2, batch.Rejected)

	lineNumbers := make([]int, len(batch.Results))
	for i, r := range batch.Results {
		lineNumbers[i] = r.LineNumber
	}
	assert.Equal(t, []int{2, 3, 5, 6, 7}, lineNumbers)

	names := []string{}
	for _, ex := range batch.Exercises() {
		names = append(names, ex.Name)
	}
	assert.Equal(t, []string{"Barbell Back Squat", "Push-up", "Box Jump"}, names)

	rejected := batch.RejectedLines()
	require.Len(t, rejected, 2)
	assert.Equal(t, 5, rejected[0].LineNumber)
	assert.Equal(t, catalog.ErrMissingNameDelimiter.Error(), rejected[0].Reason)
	assert.Equal(t, 7, rejected[1].LineNumber)
	assert.Equal(t, catalog.ErrTooFewSegments.Error(), rejected[1].Reason)

	// Preview never persists.
	assert.Empty(t, exRepo.exercises)
	assert.Empty(t, impRepo.imports)
}

func TestCatalogService_PreviewMatchesSequentialParse(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 250; i++ {
		if i%7 == 0 {
			fmt.Fprintf(&b, "Broken %d | strength\n", i)
			continue
		}
		fmt.Fprintf(&b, "Exercise %d – strength | squat | quads | barbell | beginner | %d×%d\n", i, i%5+1, i%12+1)
	}
	text := b.String()

	for _, workers := range []int{1, 4, 16, 300} {
		t.Run(fmt.Sprintf("%d workers", workers), func(t *testing.T) {
			svc, _, _, _ := newTestCatalogService(workers)
			batch, err := svc.Preview(context.Background(), text)
			require.NoError(t, err)
			assert.Equal(t, catalog.ParseAll(catalog.SplitCatalog(text)), batch.Results)
		})
	}
}

func TestCatalogService_PreviewErrors(t *testing.T) {
	svc, _, _, _ := newTestCatalogService(2)

	_, err := svc.Preview(context.Background(), "\n# only comments\n\n")
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	svc.opts.MaxLines = 2
	_, err = svc.Preview(context.Background(), sampleCatalog)
	assert.ErrorIs(t, err, ErrCatalogTooLarge)

	svc.opts.MaxLines = 0
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Preview(ctx, sampleCatalog)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCatalogService_Import(t *testing.T) {
	svc, exRepo, impRepo, _ := newTestCatalogService(4)
	importer := primitive.NewObjectID()

	imp, err := svc.Import(context.Background(), ImportRequest{ImportedBy: importer, Text: sampleCatalog})
	require.NoError(t, err)

	assert.False(t, imp.ID.IsZero())
	assert.Equal(t, importer, imp.ImportedBy)
	assert.Equal(t, domain.ImportSourceInline, imp.Source)
	assert.Equal(t, 5, imp.TotalLines)
	assert.Equal(t, 3, imp.Accepted)
	require.Len(t, imp.Rejected, 2)
	assert.False(t, imp.CompletedAt.Before(imp.StartedAt))

	stored, err := exRepo.List(context.Background(), repository.ExerciseFilter{ImportID: imp.ID})
	require.NoError(t, err)
	require.Len(t, stored, 3)
	for _, ex := range stored {
		assert.Equal(t, imp.ID, ex.ImportID)
		assert.False(t, ex.ID.IsZero())
	}

	saved, err := svc.GetImport(context.Background(), imp.ID)
	require.NoError(t, err)
	assert.Equal(t, imp.Rejected, saved.Rejected)
	require.Len(t, impRepo.imports, 1)
}

func TestCatalogService_ImportOnlyRejections(t *testing.T) {
	svc, exRepo, _, _ := newTestCatalogService(2)

	imp, err := svc.Import(context.Background(), ImportRequest{
		ImportedBy: primitive.NewObjectID(),
		Text:       "nothing to see here\nstill nothing",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, imp.Accepted)
	assert.Len(t, imp.Rejected, 2)
	assert.Empty(t, exRepo.exercises)
}

func TestCatalogService_ImportErrors(t *testing.T) {
	svc, exRepo, impRepo, _ := newTestCatalogService(2)

	_, err := svc.Import(context.Background(), ImportRequest{Text: sampleCatalog})
	assert.Error(t, err)

	exRepo.createErr = errors.New("connection reset")
	_, err = svc.Import(context.Background(), ImportRequest{ImportedBy: primitive.NewObjectID(), Text: sampleCatalog})
	assert.ErrorContains(t, err, "connection reset")
	assert.Empty(t, impRepo.imports)
}

func TestCatalogService_ImportPartialInsertFailure(t *testing.T) {
	svc, exRepo, impRepo, _ := newTestCatalogService(2)
	exRepo.createErr = fmt.Errorf("%w: duplicate key", repository.ErrInsertFailed)
	exRepo.storedBeforeErr = 2

	_, err := svc.Import(context.Background(), ImportRequest{ImportedBy: primitive.NewObjectID(), Text: sampleCatalog})
	assert.ErrorIs(t, err, repository.ErrInsertFailed)
	assert.Len(t, exRepo.order, 2, "first exercises reached the store")
	assert.Empty(t, exRepo.exercises, "stored exercises are discarded")
	assert.Empty(t, impRepo.imports)
}

func TestCatalogService_ImportRecordFailure(t *testing.T) {
	svc, exRepo, impRepo, _ := newTestCatalogService(2)
	impRepo.createErr = errors.New("write concern timeout")

	_, err := svc.Import(context.Background(), ImportRequest{ImportedBy: primitive.NewObjectID(), Text: sampleCatalog})
	assert.ErrorContains(t, err, "store import record")
	assert.Len(t, exRepo.order, 3)
	assert.Empty(t, exRepo.exercises, "exercises of an unrecorded import are discarded")
}

func TestCatalogService_ImportLineWithoutNameOrModality(t *testing.T) {
	svc, exRepo, impRepo, _ := newTestCatalogService(2)

	text := " – | squat | quads | barbell | intermediate\nGoblet Squat – strength | squat | quads | dumbbell | beginner\n"
	imp, err := svc.Import(context.Background(), ImportRequest{ImportedBy: primitive.NewObjectID(), Text: text})
	require.NoError(t, err)
	assert.Equal(t, 2, imp.Accepted)
	assert.Empty(t, imp.Rejected)
	require.Len(t, impRepo.imports, 1)

	stored, err := exRepo.List(context.Background(), repository.ExerciseFilter{ImportID: imp.ID})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Empty(t, stored[0].Name)
	assert.Empty(t, stored[0].Modality)
	assert.Equal(t, "squat", stored[0].MovementPattern)
	assert.Equal(t, "Goblet Squat", stored[1].Name)
}

func TestCatalogService_RequestUploadURL(t *testing.T) {
	svc, _, _, store := newTestCatalogService(1)
	importer := primitive.NewObjectID()

	resp, err := svc.RequestUploadURL(context.Background(), importer, "text/plain; charset=utf-8")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.ObjectKey, "catalogs/"+importer.Hex()+"/"))
	assert.True(t, strings.HasSuffix(resp.ObjectKey, ".txt"))
	assert.Contains(t, resp.UploadURL, resp.ObjectKey)

	_, err = svc.RequestUploadURL(context.Background(), importer, "video/mp4")
	assert.ErrorIs(t, err, ErrInvalidContentType)

	store.presignErr = errors.New("boom")
	_, err = svc.RequestUploadURL(context.Background(), importer, "text/csv")
	assert.ErrorIs(t, err, ErrUploadURLError)
}

func TestCatalogService_ImportFromStorage(t *testing.T) {
	svc, _, _, store := newTestCatalogService(2)
	importer := primitive.NewObjectID()
	key := "catalogs/" + importer.Hex() + "/seed.txt"
	store.objects[key] = sampleCatalog

	imp, err := svc.ImportFromStorage(context.Background(), importer, key)
	require.NoError(t, err)
	assert.Equal(t, domain.ImportSourceStorage, imp.Source)
	assert.Equal(t, key, imp.S3ObjectKey)
	assert.Equal(t, 3, imp.Accepted)
	assert.NotContains(t, store.objects, key, "imported file is removed")

	_, err = svc.ImportFromStorage(context.Background(), importer, key)
	assert.ErrorIs(t, err, ErrCatalogObjectNotFound)

	_, err = svc.ImportFromStorage(context.Background(), importer, "catalogs/"+importer.Hex()+"/missing.txt")
	assert.ErrorIs(t, err, ErrCatalogObjectNotFound)

	other := primitive.NewObjectID()
	_, err = svc.ImportFromStorage(context.Background(), other, key)
	assert.ErrorIs(t, err, ErrInvalidObjectKey)

	otherKey := "catalogs/" + other.Hex() + "/theirs.txt"
	store.objects[otherKey] = sampleCatalog
	_, err = svc.ImportFromStorage(context.Background(), importer, "catalogs/"+importer.Hex()+"/../"+other.Hex()+"/theirs.txt")
	assert.ErrorIs(t, err, ErrInvalidObjectKey)
	assert.Contains(t, store.objects, otherKey, "another importer's file is untouched")

	bigKey := "catalogs/" + importer.Hex() + "/big.txt"
	store.objects[bigKey] = strings.Repeat("x", MaxCatalogBytes+1)
	_, err = svc.ImportFromStorage(context.Background(), importer, bigKey)
	assert.ErrorIs(t, err, ErrCatalogTooLarge)
}

func TestCatalogService_GetAndListImports(t *testing.T) {
	svc, _, _, _ := newTestCatalogService(2)

	_, err := svc.GetImport(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrImportNotFound)

	importer := primitive.NewObjectID()
	first, err := svc.Import(context.Background(), ImportRequest{ImportedBy: importer, Text: sampleCatalog})
	require.NoError(t, err)
	second, err := svc.Import(context.Background(), ImportRequest{ImportedBy: importer, Text: sampleCatalog})
	require.NoError(t, err)

	imports, err := svc.ListImports(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, imports, 2)
	assert.Equal(t, second.ID, imports[0].ID)
	assert.Equal(t, first.ID, imports[1].ID)
}
