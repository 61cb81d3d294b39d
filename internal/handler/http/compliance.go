package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/compliance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type ComplianceHandler interface {
	CalculatePT(w http.ResponseWriter, r *http.Request)
	Apply(w http.ResponseWriter, r *http.Request)
}

type complianceHandlerImpl struct {
	complianceService compliance.ComplianceService
	employeeService   employee.EmployeeService
}

func NewComplianceHandler(complianceService compliance.ComplianceService, employeeService employee.EmployeeService) ComplianceHandler {
	return &complianceHandlerImpl{
		complianceService: complianceService,
		employeeService:   employeeService,
	}
}

type ptResponse struct {
	State string          `json:"state"`
	Gross decimal.Decimal `json:"gross"`
	PT    decimal.Decimal `json:"pt"`
}

func (h *complianceHandlerImpl) CalculatePT(w http.ResponseWriter, r *http.Request) {
	gross, ok := validator.ParseDecimal(r.URL.Query().Get("gross"))
	if !ok {
		response.HandleError(w, validator.ValidationErrors{{Field: "gross", Message: "gross must be a non-negative decimal"}})
		return
	}
	state := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("state")))

	response.Success(w, ptResponse{
		State: state,
		Gross: gross,
		PT:    h.complianceService.CalculatePT(gross, state),
	})
}

func (h *complianceHandlerImpl) Apply(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrAbort(w, r)
	if !ok {
		return
	}

	var req compliance.ApplyComplianceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	emp, err := h.employeeService.GetInOrganization(r.Context(), claims.OrganizationID, req.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if req.State == "" {
		req.State = emp.WorkState
	}

	result, err := h.complianceService.ApplyCompliance(r.Context(), emp.ID, req.Month, req.Year, req.Components, req.State)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
