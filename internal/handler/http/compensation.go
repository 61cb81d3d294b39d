package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/response"
)

type CompensationHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	GetActive(w http.ResponseWriter, r *http.Request)
	Evaluate(w http.ResponseWriter, r *http.Request)
}

type compensationHandlerImpl struct {
	compensationService compensation.CompensationService
	employeeService     employee.EmployeeService
}

func NewCompensationHandler(compensationService compensation.CompensationService, employeeService employee.EmployeeService) CompensationHandler {
	return &compensationHandlerImpl{
		compensationService: compensationService,
		employeeService:     employeeService,
	}
}

func (h *compensationHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrAbort(w, r)
	if !ok {
		return
	}

	var req compensation.CreateCompensationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.OrganizationID = claims.OrganizationID

	result, err := h.compensationService.CreateCompensation(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Compensation created", result)
}

func (h *compensationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrAbort(w, r)
	if !ok {
		return
	}

	result, err := h.compensationService.ListCompensations(r.Context(), claims.OrganizationID, r.URL.Query().Get("employee_id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *compensationHandlerImpl) GetActive(w http.ResponseWriter, r *http.Request) {
	employeeID, month, year, ok := h.scopedQuery(w, r)
	if !ok {
		return
	}

	result, err := h.compensationService.GetActiveCompensation(r.Context(), employeeID, month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *compensationHandlerImpl) Evaluate(w http.ResponseWriter, r *http.Request) {
	employeeID, month, year, ok := h.scopedQuery(w, r)
	if !ok {
		return
	}

	result, err := h.compensationService.EvalComponents(r.Context(), employeeID, month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// scopedQuery reads ?employee_id=&month=&year= and checks the employee
// belongs to the caller's organization.
func (h *compensationHandlerImpl) scopedQuery(w http.ResponseWriter, r *http.Request) (string, int, int, bool) {
	claims, ok := claimsOrAbort(w, r)
	if !ok {
		return "", 0, 0, false
	}

	month, year, err := monthYearQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return "", 0, 0, false
	}

	emp, err := h.employeeService.GetInOrganization(r.Context(), claims.OrganizationID, r.URL.Query().Get("employee_id"))
	if err != nil {
		response.HandleError(w, err)
		return "", 0, 0, false
	}

	return emp.ID, month, year, true
}
