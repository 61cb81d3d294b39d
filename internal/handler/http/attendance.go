package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	// Punches
	PunchIn(w http.ResponseWriter, r *http.Request)
	PunchOut(w http.ResponseWriter, r *http.Request)
	Regularize(w http.ResponseWriter, r *http.Request)

	// Basis
	GetBasis(w http.ResponseWriter, r *http.Request)

	// Overrides
	UpsertOverride(w http.ResponseWriter, r *http.Request)
	GetOverride(w http.ResponseWriter, r *http.Request)
	DeleteOverride(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.Service
	employeeService   employee.EmployeeService
}

func NewAttendanceHandler(attendanceService attendance.Service, employeeService employee.EmployeeService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		employeeService:   employeeService,
	}
}

// ========== PUNCHES ==========

func (h *attendanceHandlerImpl) PunchIn(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrAbort(w, r)
	if !ok {
		return
	}

	var req attendance.PunchInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.OrganizationID = claims.OrganizationID

	result, err := h.attendanceService.PunchIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Punched in", result)
}

func (h *attendanceHandlerImpl) PunchOut(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrAbort(w, r)
	if !ok {
		return
	}

	var req attendance.PunchOutRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.OrganizationID = claims.OrganizationID
	req.RecordID = chi.URLParam(r, "id")

	result, err := h.attendanceService.PunchOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Punched out", result)
}

func (h *attendanceHandlerImpl) Regularize(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrAbort(w, r)
	if !ok {
		return
	}

	var req attendance.RegularizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.OrganizationID = claims.OrganizationID
	if id := chi.URLParam(r, "id"); id != "" {
		req.RecordID = &id
	}

	result, err := h.attendanceService.Regularize(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance regularized", result)
}

// ========== BASIS ==========

func (h *attendanceHandlerImpl) GetBasis(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrAbort(w, r)
	if !ok {
		return
	}

	month, year, err := monthYearQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	emp, err := h.employeeService.GetInOrganization(r.Context(), claims.OrganizationID, r.URL.Query().Get("employee_id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.ResolveBasis(r.Context(), emp.ID, month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== OVERRIDES ==========

func (h *attendanceHandlerImpl) UpsertOverride(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrAbort(w, r)
	if !ok {
		return
	}

	var req attendance.UpsertOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.OrganizationID = claims.OrganizationID
	if req.Source == attendance.OverrideSourceManual {
		req.ApprovedBy = &claims.UserID
	}

	result, err := h.attendanceService.UpsertOverride(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Monthly override saved", result)
}

func (h *attendanceHandlerImpl) GetOverride(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrAbort(w, r)
	if !ok {
		return
	}

	month, year, err := monthYearFrom(chi.URLParam(r, "month"), chi.URLParam(r, "year"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.GetOverride(r.Context(), claims.OrganizationID, chi.URLParam(r, "employeeID"), month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *attendanceHandlerImpl) DeleteOverride(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrAbort(w, r)
	if !ok {
		return
	}

	month, year, err := monthYearFrom(chi.URLParam(r, "month"), chi.URLParam(r, "year"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if err := h.attendanceService.DeleteOverride(r.Context(), claims.OrganizationID, chi.URLParam(r, "employeeID"), month, year); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Monthly override deleted", nil)
}
