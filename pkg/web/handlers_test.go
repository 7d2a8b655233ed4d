package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/paddockhq/dealflow/pkg/engine"
	"github.com/paddockhq/dealflow/pkg/eventbus"
	"github.com/paddockhq/dealflow/pkg/locks"
	"github.com/paddockhq/dealflow/pkg/models"
	"github.com/paddockhq/dealflow/pkg/persistence/file"
	"github.com/paddockhq/dealflow/pkg/registry"
	"github.com/paddockhq/dealflow/pkg/services"
	"github.com/paddockhq/dealflow/pkg/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopPublisher struct{}

func (noopPublisher) Publish(_ context.Context, _ string, _ eventbus.Event) error {
	return nil
}

func setupTestApp(t *testing.T) (*fiber.App, *services.Deal) {
	t.Helper()

	store := file.NewPersistence(t.TempDir())
	reg := registry.NewRegistry()
	locker := locks.NewMemoryLocker()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	dealService := services.NewDeal(store, reg, locker)
	eng := engine.New(logger, reg, store, locker, noopPublisher{})

	handlers := web.NewAPIHandlers(dealService, eng, validator.New(validator.WithRequiredStructEnabled()))

	app := fiber.New()
	handlers.Register(app)
	app.Get("/health", handlers.HealthCheck)

	return app, dealService
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	require.NoError(t, resp.Body.Close())

	return resp, raw
}

func createTestDeal(t *testing.T, svc *services.Deal, dealType models.DealType) *models.Deal {
	t.Helper()

	deal, err := svc.Create(context.Background(), services.CreateDealRequest{
		Type:  dealType,
		Horse: "horse-1",
		Owner: "owner-1",
		Actor: "user-1",
	})
	require.NoError(t, err)

	return deal
}

func TestAPIHandlers_CreateDeal(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		expectedStatus int
		validateResult func(t *testing.T, body []byte)
	}{
		{
			name: "successful creation",
			requestBody: web.CreateDealRequest{
				Type:  models.DealTypeFullSale,
				Horse: "Thunderbolt",
				Owner: "owner-1",
				Terms: map[string]any{"price": 25000.0, "currency": "USD"},
				Actor: "user-1",
			},
			expectedStatus: http.StatusCreated,
			validateResult: func(t *testing.T, body []byte) {
				t.Helper()

				var deal models.Deal
				require.NoError(t, json.Unmarshal(body, &deal))
				assert.Equal(t, models.DealTypeFullSale, deal.Type)
				assert.Equal(t, models.StageInitiation, deal.Stage)
				assert.Equal(t, models.StatusActive, deal.Status)
				assert.NotEmpty(t, deal.ID)
				assert.Len(t, deal.Timeline, 1)
			},
		},
		{
			name: "missing horse",
			requestBody: web.CreateDealRequest{
				Type:  models.DealTypeFullSale,
				Owner: "owner-1",
				Actor: "user-1",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown deal type",
			requestBody: web.CreateDealRequest{
				Type:  "auction",
				Horse: "Thunderbolt",
				Owner: "owner-1",
				Actor: "user-1",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "terms violating schema",
			requestBody: web.CreateDealRequest{
				Type:  models.DealTypeFullSale,
				Horse: "Thunderbolt",
				Owner: "owner-1",
				Terms: map[string]any{"price": -100.0},
				Actor: "user-1",
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := setupTestApp(t)

			resp, body := doJSON(t, app, http.MethodPost, "/deals/", tt.requestBody)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.validateResult != nil {
				tt.validateResult(t, body)
			}
		})
	}
}

func TestAPIHandlers_GetDeal(t *testing.T) {
	app, svc := setupTestApp(t)

	deal := createTestDeal(t, svc, models.DealTypeLease)

	resp, body := doJSON(t, app, http.MethodGet, "/deals/"+deal.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var fetched models.Deal
	require.NoError(t, json.Unmarshal(body, &fetched))
	assert.Equal(t, deal.ID, fetched.ID)

	resp, _ = doJSON(t, app, http.MethodGet, "/deals/missing-id", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_ListDeals(t *testing.T) {
	app, svc := setupTestApp(t)

	createTestDeal(t, svc, models.DealTypeFullSale)
	createTestDeal(t, svc, models.DealTypeLease)

	resp, body := doJSON(t, app, http.MethodGet, "/deals/?type=lease", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Deals      []models.Deal `json:"deals"`
		TotalCount int64         `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, int64(1), result.TotalCount)

	resp, _ = doJSON(t, app, http.MethodGet, "/deals/?sort_by=horse", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPIHandlers_TransitionStage(t *testing.T) {
	app, svc := setupTestApp(t)

	deal := createTestDeal(t, svc, models.DealTypeFullSale)

	resp, body := doJSON(t, app, http.MethodPost, "/deals/"+deal.ID+"/transitions/stage", web.TransitionStageRequest{
		TargetStage: models.StageDiscussion,
		Actor:       "user-1",
		Reason:      "Buyer engaged",
		Progress:    100,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.Deal
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, models.StageDiscussion, updated.Stage)

	// Skipping a stage is rejected as an invalid transition.
	resp, _ = doJSON(t, app, http.MethodPost, "/deals/"+deal.ID+"/transitions/stage", web.TransitionStageRequest{
		TargetStage: models.StageClosing,
		Actor:       "user-1",
		Progress:    100,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPIHandlers_TransitionStage_ValidationFailure(t *testing.T) {
	app, svc := setupTestApp(t)

	deal := createTestDeal(t, svc, models.DealTypeFullSale)

	_, err := svc.UpdateTerms(context.Background(), deal.ID, map[string]any{"price": 100.0}, "user-1")
	require.NoError(t, err)

	// Walk to evaluation so documentation is the next stage.
	for _, stage := range []models.DealStage{models.StageDiscussion, models.StageEvaluation} {
		resp, _ := doJSON(t, app, http.MethodPost, "/deals/"+deal.ID+"/transitions/stage", web.TransitionStageRequest{
			TargetStage: stage,
			Actor:       "user-1",
			Progress:    100,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	_, err = svc.UpdateTerms(context.Background(), deal.ID, map[string]any{}, "user-1")
	require.NoError(t, err)

	resp, body := doJSON(t, app, http.MethodPost, "/deals/"+deal.ID+"/transitions/stage", web.TransitionStageRequest{
		TargetStage: models.StageDocumentation,
		Actor:       "user-1",
		Progress:    100,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var problem struct {
		Type             string   `json:"type"`
		ValidationErrors []string `json:"validation_errors"`
		Warnings         []string `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(body, &problem))
	assert.Equal(t, "validation_failed", problem.Type)
	assert.Contains(t, problem.ValidationErrors, "price requirement not met")
}

func TestAPIHandlers_ValidateTransition(t *testing.T) {
	app, svc := setupTestApp(t)

	deal := createTestDeal(t, svc, models.DealTypeLease)

	resp, body := doJSON(t, app, http.MethodPost, "/deals/"+deal.ID+"/transitions/validate", web.ValidateTransitionRequest{
		TargetStage: models.StageDiscussion,
		Progress:    100,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		CanProgress bool     `json:"can_progress"`
		Warnings    []string `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	assert.True(t, result.CanProgress)
	assert.Contains(t, result.Warnings, "missing participant: lessee")
}

func TestAPIHandlers_TransitionStatus(t *testing.T) {
	app, svc := setupTestApp(t)

	deal := createTestDeal(t, svc, models.DealTypeTraining)

	resp, body := doJSON(t, app, http.MethodPost, "/deals/"+deal.ID+"/transitions/status", web.TransitionStatusRequest{
		TargetStatus: models.StatusOnHold,
		Actor:        "user-1",
		Reason:       "Awaiting payment details",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.Deal
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, models.StatusOnHold, updated.Status)

	// Completed cannot be set directly.
	resp, _ = doJSON(t, app, http.MethodPost, "/deals/"+deal.ID+"/transitions/status", web.TransitionStatusRequest{
		TargetStatus: models.StatusCompleted,
		Actor:        "user-1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPIHandlers_RollbackStage(t *testing.T) {
	app, svc := setupTestApp(t)

	deal := createTestDeal(t, svc, models.DealTypeFullSale)

	resp, _ := doJSON(t, app, http.MethodPost, "/deals/"+deal.ID+"/transitions/stage", web.TransitionStageRequest{
		TargetStage: models.StageDiscussion,
		Actor:       "user-1",
		Progress:    100,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPost, "/deals/"+deal.ID+"/transitions/rollback", web.RollbackRequest{
		TargetStage: models.StageInitiation,
		Actor:       "user-1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.Deal
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, models.StageInitiation, updated.Stage)

	last := updated.Timeline[len(updated.Timeline)-1]
	assert.True(t, last.Metadata.IsRollback)

	// No stage precedes initiation.
	resp, _ = doJSON(t, app, http.MethodPost, "/deals/"+deal.ID+"/transitions/rollback", web.RollbackRequest{
		TargetStage: models.StageInitiation,
		Actor:       "user-1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPIHandlers_ParticipantsAndDocuments(t *testing.T) {
	app, svc := setupTestApp(t)

	deal := createTestDeal(t, svc, models.DealTypeFullSale)

	resp, body := doJSON(t, app, http.MethodPost, "/deals/"+deal.ID+"/participants", web.AddParticipantRequest{
		UserID: "user-2",
		Role:   models.RoleBuyer,
		Actor:  "user-1",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/deals/"+deal.ID+"/participants", web.AddParticipantRequest{
		UserID: "user-2",
		Role:   models.RoleBuyer,
		Actor:  "user-1",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "duplicate participant is a conflict")

	resp, body = doJSON(t, app, http.MethodPost, "/deals/"+deal.ID+"/documents", web.AddDocumentRequest{
		DocumentType: "Intent to purchase",
		Actor:        "user-1",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var withDoc models.Deal
	require.NoError(t, json.Unmarshal(body, &withDoc))
	require.Len(t, withDoc.Documents, 1)

	resp, body = doJSON(t, app, http.MethodPatch,
		"/deals/"+deal.ID+"/documents/"+withDoc.Documents[0].ID, web.SetDocumentStatusRequest{
			Status: models.DocumentApproved,
			Actor:  "user-1",
		})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var approved models.Deal
	require.NoError(t, json.Unmarshal(body, &approved))
	assert.Equal(t, models.DocumentApproved, approved.Documents[0].Status)

	resp, _ = doJSON(t, app, http.MethodPatch,
		"/deals/"+deal.ID+"/documents/missing-doc", web.SetDocumentStatusRequest{
			Status: models.DocumentApproved,
			Actor:  "user-1",
		})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_TimelineAndMetrics(t *testing.T) {
	app, svc := setupTestApp(t)

	deal := createTestDeal(t, svc, models.DealTypeLease)

	resp, _ := doJSON(t, app, http.MethodPost, "/deals/"+deal.ID+"/transitions/stage", web.TransitionStageRequest{
		TargetStage: models.StageDiscussion,
		Actor:       "user-1",
		Progress:    100,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodGet, "/deals/"+deal.ID+"/timeline", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var timelineResp struct {
		DealID   string                 `json:"deal_id"`
		Timeline []models.TimelineEntry `json:"timeline"`
	}
	require.NoError(t, json.Unmarshal(body, &timelineResp))
	assert.Equal(t, deal.ID, timelineResp.DealID)
	assert.Len(t, timelineResp.Timeline, 2)

	resp, body = doJSON(t, app, http.MethodGet, "/deals/"+deal.ID+"/metrics", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var metrics engine.StageMetrics
	require.NoError(t, json.Unmarshal(body, &metrics))
	assert.Equal(t, 1, metrics.ForwardTransitions)
	assert.InDelta(t, 25, metrics.CompletionRate, 0.01)
}

func TestAPIHandlers_HealthCheck(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "healthy", health.Status)
}
