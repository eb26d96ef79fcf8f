package handler

import (
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vestfolio/backend/internal/application/notification"
	appprofit "github.com/vestfolio/backend/internal/application/profit"
	"github.com/vestfolio/backend/internal/domain/profit"
	"github.com/vestfolio/backend/internal/domain/shared"
)

type stubTxManager struct{}

func (stubTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, notification.Event) {}

type stubBatchRepo struct {
	batches []profit.Batch
}

func (r *stubBatchRepo) FindByID(_ context.Context, id uuid.UUID) (*profit.Batch, error) {
	for i := range r.batches {
		if r.batches[i].ID == id {
			return &r.batches[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *stubBatchRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*profit.Batch, error) {
	return r.FindByID(ctx, id)
}

func (r *stubBatchRepo) List(_ context.Context, filter profit.BatchFilter) ([]profit.Batch, int64, error) {
	if filter.Status == nil {
		return r.batches, int64(len(r.batches)), nil
	}
	var out []profit.Batch
	for _, b := range r.batches {
		if b.Status == *filter.Status {
			out = append(out, b)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubBatchRepo) Create(_ context.Context, batch *profit.Batch) error {
	r.batches = append(r.batches, *batch)
	return nil
}

func (r *stubBatchRepo) Save(context.Context, *profit.Batch) error { return nil }

type stubCommentRepo struct{}

func (stubCommentRepo) Create(context.Context, *profit.Comment) error { return nil }

func (stubCommentRepo) FindByBatchID(context.Context, uuid.UUID) ([]profit.Comment, error) {
	return nil, nil
}

var _ profit.BatchRepository = (*stubBatchRepo)(nil)
var _ profit.CommentRepository = (*stubCommentRepo)(nil)

func newProfitListRouter(t *testing.T, repo *stubBatchRepo) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	service := appprofit.NewBatchService(repo, stubCommentRepo{}, stubTxManager{}, noopNotifier{}, zap.NewNop())
	h := NewProfitHandler(service, nil)

	router := gin.New()
	router.GET("/profit/batches", h.ListBatches)
	return router
}

func seedBatch(t *testing.T, repo *stubBatchRepo, total string) *profit.Batch {
	t.Helper()
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	batch, err := profit.NewBatch(profit.PeriodWeekly, start, start.AddDate(0, 0, 7),
		decimal.RequireFromString(total), uuid.New())
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), batch))
	return batch
}

func TestProfitHandler_ListBatches_JSON(t *testing.T) {
	repo := &stubBatchRepo{}
	seedBatch(t, repo, "1000")
	router := newProfitListRouter(t, repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/profit/batches", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	assert.Contains(t, w.Body.String(), `"total_profit":"1000"`)
}

func TestProfitHandler_ListBatches_CSVFormat(t *testing.T) {
	repo := &stubBatchRepo{}
	batch := seedBatch(t, repo, "1000")
	seedBatch(t, repo, "250.50")
	router := newProfitListRouter(t, repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/profit/batches?format=csv", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "profit-batches.csv")

	records, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "batch_id", records[0][0])
	assert.Equal(t, batch.ID.String(), records[1][0])
	assert.Equal(t, "1000", records[1][4])
	assert.Equal(t, "250.5", records[2][4])
}

func TestProfitHandler_ListBatches_RejectsUnknownFormat(t *testing.T) {
	router := newProfitListRouter(t, &stubBatchRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/profit/batches?format=xml", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
