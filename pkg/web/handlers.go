package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/paddockhq/dealflow/pkg/engine"
	"github.com/paddockhq/dealflow/pkg/models"
	"github.com/paddockhq/dealflow/pkg/persistence"
	"github.com/paddockhq/dealflow/pkg/services"
)

// APIHandlers exposes deal CRUD and workflow transitions over HTTP.
type APIHandlers struct {
	dealService *services.Deal
	engine      *engine.Engine
	validator   *validator.Validate
}

// NewAPIHandlers creates the handler set.
func NewAPIHandlers(dealService *services.Deal, eng *engine.Engine, validate *validator.Validate) *APIHandlers {
	return &APIHandlers{
		dealService: dealService,
		engine:      eng,
		validator:   validate,
	}
}

// Register mounts all routes on the app.
func (h *APIHandlers) Register(app *fiber.App) {
	deals := app.Group("/deals")
	deals.Get("/", h.GetDeals)
	deals.Post("/", h.CreateDeal)
	deals.Get("/:id", h.GetDeal)
	deals.Delete("/:id", h.DeleteDeal)
	deals.Put("/:id/terms", h.UpdateTerms)
	deals.Post("/:id/participants", h.AddParticipant)
	deals.Post("/:id/documents", h.AddDocument)
	deals.Patch("/:id/documents/:documentId", h.SetDocumentStatus)
	deals.Post("/:id/comments", h.AddComment)
	deals.Post("/:id/transitions/validate", h.ValidateTransition)
	deals.Post("/:id/transitions/stage", h.TransitionStage)
	deals.Post("/:id/transitions/status", h.TransitionStatus)
	deals.Post("/:id/transitions/rollback", h.RollbackStage)
	deals.Get("/:id/timeline", h.GetTimeline)
	deals.Get("/:id/metrics", h.GetStageMetrics)
}

func (h *APIHandlers) GetDeals(c fiber.Ctx) error {
	req, err := h.parseListDealsRequest(c)
	if err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	result, err := h.dealService.List(c.Context(), *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"deals":         result.Deals,
		"total_count":   result.TotalCount,
		"has_next_page": result.HasNextPage,
		"pagination": fiber.Map{
			"limit":  req.Limit,
			"offset": req.Offset,
		},
		"sorting": fiber.Map{
			"sort_by":    req.SortBy,
			"sort_order": req.SortOrder,
		},
	})
}

func (h *APIHandlers) parseListDealsRequest(c fiber.Ctx) (*services.ListDealsRequest, error) {
	req := &services.ListDealsRequest{}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, err
		}

		req.Limit = limit
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return nil, err
		}

		req.Offset = offset
	}

	req.OwnerID = c.Query("owner_id")

	if statusStr := c.Query("status"); statusStr != "" {
		status := models.DealStatus(statusStr)
		req.Status = &status
	}

	if typeStr := c.Query("type"); typeStr != "" {
		dealType := models.DealType(typeStr)
		req.Type = &dealType
	}

	req.SortBy = c.Query("sort_by")
	req.SortOrder = c.Query("sort_order")

	return req, nil
}

func (h *APIHandlers) CreateDeal(c fiber.Ctx) error {
	var req CreateDealRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.dealService.Create(c.Context(), services.CreateDealRequest{
		Type:  req.Type,
		Horse: req.Horse,
		Owner: req.Owner,
		Terms: req.Terms,
		Actor: req.Actor,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) GetDeal(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Deal ID is required")
	}

	deal, err := h.dealService.FetchByID(c.Context(), id)
	if err != nil {
		if persistence.IsDealNotFound(err) {
			return notFound(c, "Deal not found")
		}

		return internalError(c, err)
	}

	return c.JSON(deal)
}

func (h *APIHandlers) DeleteDeal(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Deal ID is required")
	}

	err := h.dealService.Delete(c.Context(), id)
	if err != nil {
		if persistence.IsDealNotFound(err) {
			return notFound(c, "Deal not found")
		}

		return internalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) UpdateTerms(c fiber.Ctx) error {
	id := c.Params("id")

	var req UpdateTermsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.dealService.UpdateTerms(c.Context(), id, req.Terms, req.Actor)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) AddParticipant(c fiber.Ctx) error {
	id := c.Params("id")

	var req AddParticipantRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.dealService.AddParticipant(c.Context(), id, req.UserID, req.Role, req.Actor)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(updated)
}

func (h *APIHandlers) AddDocument(c fiber.Ctx) error {
	id := c.Params("id")

	var req AddDocumentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.dealService.AddDocument(c.Context(), id, req.DocumentType, req.Actor)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(updated)
}

func (h *APIHandlers) SetDocumentStatus(c fiber.Ctx) error {
	id := c.Params("id")
	documentID := c.Params("documentId")

	var req SetDocumentStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.dealService.SetDocumentStatus(c.Context(), id, documentID, req.Status, req.Actor)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) AddComment(c fiber.Ctx) error {
	id := c.Params("id")

	var req AddCommentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.dealService.AddComment(c.Context(), id, req.Text, req.Actor)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(updated)
}

func (h *APIHandlers) ValidateTransition(c fiber.Ctx) error {
	id := c.Params("id")

	var req ValidateTransitionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.engine.ValidateTransition(c.Context(), id, req.TargetStage, req.Progress)
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) TransitionStage(c fiber.Ctx) error {
	id := c.Params("id")

	var req TransitionStageRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	deal, err := h.engine.TransitionStage(c.Context(), id, req.TargetStage, req.Actor, req.Reason, req.Progress)
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.JSON(deal)
}

func (h *APIHandlers) TransitionStatus(c fiber.Ctx) error {
	id := c.Params("id")

	var req TransitionStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	deal, err := h.engine.TransitionStatus(c.Context(), id, req.TargetStatus, req.Actor, req.Reason)
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.JSON(deal)
}

func (h *APIHandlers) RollbackStage(c fiber.Ctx) error {
	id := c.Params("id")

	var req RollbackRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	deal, err := h.engine.RollbackStage(c.Context(), id, req.TargetStage, req.Actor)
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.JSON(deal)
}

func (h *APIHandlers) GetTimeline(c fiber.Ctx) error {
	id := c.Params("id")

	entries, err := h.engine.GetTimeline(c.Context(), id)
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.JSON(fiber.Map{
		"deal_id":  id,
		"timeline": entries,
	})
}

func (h *APIHandlers) GetStageMetrics(c fiber.Ctx) error {
	id := c.Params("id")

	progress := 0.0

	if progressStr := c.Query("progress"); progressStr != "" {
		parsed, err := strconv.ParseFloat(progressStr, 64)
		if err != nil {
			return badRequest(c, "Invalid progress value")
		}

		progress = parsed
	}

	metrics, err := h.engine.GetStageMetrics(c.Context(), id, progress)
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.JSON(metrics)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.dealService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Dealflow API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "Dealflow API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}
