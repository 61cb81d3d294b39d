package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
)

// claimsOrAbort returns the caller's claims, writing 401 when AuthRequired
// did not run.
func claimsOrAbort(w http.ResponseWriter, r *http.Request) (auth.Claims, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.HandleError(w, auth.ErrInvalidToken)
		return auth.Claims{}, false
	}
	return claims, true
}

// decodeOptionalJSON decodes a request body that may be empty.
func decodeOptionalJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// monthYearFrom reads integer month and year values.
func monthYearFrom(monthStr, yearStr string) (int, int, error) {
	var errs validator.ValidationErrors

	month, err := strconv.Atoi(monthStr)
	if err != nil {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be an integer"})
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "year must be an integer"})
	}

	if len(errs) > 0 {
		return 0, 0, errs
	}
	return month, year, nil
}

// monthYearQuery reads ?month=&year= from the query string.
func monthYearQuery(r *http.Request) (int, int, error) {
	q := r.URL.Query()
	return monthYearFrom(q.Get("month"), q.Get("year"))
}
