package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/ailedger"
	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AIHandler interface {
	// Policies
	CreatePolicy(w http.ResponseWriter, r *http.Request)
	ListPolicies(w http.ResponseWriter, r *http.Request)
	GetActivePolicy(w http.ResponseWriter, r *http.Request)
	ApprovePolicy(w http.ResponseWriter, r *http.Request)
	ActivatePolicy(w http.ResponseWriter, r *http.Request)
	RetirePolicy(w http.ResponseWriter, r *http.Request)

	// Runs
	StartRun(w http.ResponseWriter, r *http.Request)
	RecordDecisions(w http.ResponseWriter, r *http.Request)
	CompleteRun(w http.ResponseWriter, r *http.Request)
	FailRun(w http.ResponseWriter, r *http.Request)

	// Review
	ListReviewQueue(w http.ResponseWriter, r *http.Request)
	ReviewDecision(w http.ResponseWriter, r *http.Request)
	PromoteDecision(w http.ResponseWriter, r *http.Request)
}

type aiHandlerImpl struct {
	ledgerService ailedger.LedgerService
}

func NewAIHandler(ledgerService ailedger.LedgerService) AIHandler {
	return &aiHandlerImpl{ledgerService: ledgerService}
}

// ========== POLICIES ==========

func (h *aiHandlerImpl) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrAbort(w, r)
	if !ok {
		return
	}

	var req ailedger.CreatePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.OrganizationID = claims.OrganizationID
	req.CreatedBy = claims.UserID

	result, err := h.ledgerService.CreatePolicy(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "AI policy created", result)
}

func (h *aiHandlerImpl) ListPolicies(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrAbort(w, r)
	if !ok {
		return
	}

	result, err := h.ledgerService.ListPolicies(r.Context(), claims.OrganizationID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *aiHandlerImpl) GetActivePolicy(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrAbort(w, r)
	if !ok {
		return
	}

	result, err := h.ledgerService.GetActivePolicy(r.Context(), claims.OrganizationID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *aiHandlerImpl) ApprovePolicy(w http.ResponseWriter, r *http.Request) {
	h.policyTransition(w, r, h.ledgerService.ApprovePolicy, "AI policy approved")
}

func (h *aiHandlerImpl) ActivatePolicy(w http.ResponseWriter, r *http.Request) {
	h.policyTransition(w, r, h.ledgerService.ActivatePolicy, "AI policy activated")
}

func (h *aiHandlerImpl) RetirePolicy(w http.ResponseWriter, r *http.Request) {
	h.policyTransition(w, r, h.ledgerService.RetirePolicy, "AI policy retired")
}

type policyTransitionFunc func(ctx context.Context, organizationID, id, userID string) (ailedger.Policy, error)

func (h *aiHandlerImpl) policyTransition(w http.ResponseWriter, r *http.Request, fn policyTransitionFunc, message string) {
	claims, ok := claimsOrAbort(w, r)
	if !ok {
		return
	}

	result, err := fn(r.Context(), claims.OrganizationID, chi.URLParam(r, "id"), claims.UserID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, message, result)
}

// ========== RUNS ==========

func (h *aiHandlerImpl) StartRun(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrAbort(w, r)
	if !ok {
		return
	}

	var req ailedger.StartRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.OrganizationID = claims.OrganizationID

	result, err := h.ledgerService.StartRun(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "AI run started", result)
}

func (h *aiHandlerImpl) RecordDecisions(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrAbort(w, r)
	if !ok {
		return
	}

	var req ailedger.RecordDecisionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.OrganizationID = claims.OrganizationID
	req.RunID = chi.URLParam(r, "id")

	result, err := h.ledgerService.RecordDecisions(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "AI decisions recorded", result)
}

func (h *aiHandlerImpl) CompleteRun(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrAbort(w, r)
	if !ok {
		return
	}

	var req ailedger.CompleteRunRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.OrganizationID = claims.OrganizationID
	req.RunID = chi.URLParam(r, "id")

	result, err := h.ledgerService.CompleteRun(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "AI run completed", result)
}

func (h *aiHandlerImpl) FailRun(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrAbort(w, r)
	if !ok {
		return
	}

	var req ailedger.FailRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.OrganizationID = claims.OrganizationID
	req.RunID = chi.URLParam(r, "id")

	result, err := h.ledgerService.FailRun(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "AI run failed", result)
}

// ========== REVIEW ==========

func (h *aiHandlerImpl) ListReviewQueue(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrAbort(w, r)
	if !ok {
		return
	}

	result, err := h.ledgerService.ListReviewQueue(r.Context(), claims.OrganizationID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, &response.Meta{TotalItems: int64(len(result))})
}

func (h *aiHandlerImpl) ReviewDecision(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrAbort(w, r)
	if !ok {
		return
	}

	var req ailedger.ReviewDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.OrganizationID = claims.OrganizationID
	req.DecisionID = chi.URLParam(r, "id")
	req.ReviewerID = claims.UserID

	result, err := h.ledgerService.ReviewDecision(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "AI decision reviewed", result)
}

func (h *aiHandlerImpl) PromoteDecision(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrAbort(w, r)
	if !ok {
		return
	}

	result, err := h.ledgerService.PromoteDecision(r.Context(), claims.OrganizationID, chi.URLParam(r, "id"), claims.UserID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "AI decision promoted to monthly override", result)
}
