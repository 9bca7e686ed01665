package report

import (
	"fmt"
	"strings"
	"time"

	"guard-monitor/backend/internal/utils"
)

// Request selects the report window. StartDate and EndDate are calendar
// dates in "2006-01-02" form; EmployeeID scopes the report to one employee
// when set.
type Request struct {
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	EmployeeID string `json:"employeeId,omitempty"`
}

func (r *Request) Trim() {
	r.StartDate = strings.TrimSpace(r.StartDate)
	r.EndDate = strings.TrimSpace(r.EndDate)
	r.EmployeeID = strings.TrimSpace(r.EmployeeID)
}

const dateLayout = "2006-01-02"

// Bounds expands the calendar dates to inclusive full-day bounds in local
// time: start at 00:00:00.000, end at 23:59:59.999.
func (r *Request) Bounds() (start, end time.Time, err error) {
	if r.StartDate == "" || r.EndDate == "" {
		return start, end, fmt.Errorf("%w: startDate and endDate are required", ErrBadRequest)
	}

	s, err := time.ParseInLocation(dateLayout, r.StartDate, time.Local)
	if err != nil {
		return start, end, fmt.Errorf("%w: invalid startDate %q", ErrBadRequest, r.StartDate)
	}
	e, err := time.ParseInLocation(dateLayout, r.EndDate, time.Local)
	if err != nil {
		return start, end, fmt.Errorf("%w: invalid endDate %q", ErrBadRequest, r.EndDate)
	}

	start = s
	end = time.Date(e.Year(), e.Month(), e.Day(), 23, 59, 59, int(999*time.Millisecond), e.Location())
	if end.Before(start) {
		return start, end, fmt.Errorf("%w: endDate precedes startDate", ErrBadRequest)
	}
	return start, end, nil
}

// DateLabel reformats a request date to the Brazilian dd/mm/yyyy form
// without going through a timezone conversion.
func DateLabel(date string) string {
	parts := strings.Split(date, "-")
	if len(parts) == 3 {
		return parts[2] + "/" + parts[1] + "/" + parts[0]
	}
	return date
}

// Filename derives the deterministic export filename from the request and
// the scoped employee's display name, if any.
func Filename(req Request, employeeName, ext string) string {
	who := "todos"
	if req.EmployeeID != "" {
		if slug := utils.Slugify(employeeName); slug != "" {
			who = slug
		} else {
			who = "funcionario"
		}
	}
	start := req.StartDate
	if start == "" {
		start = "inicio"
	}
	end := req.EndDate
	if end == "" {
		end = "fim"
	}
	return fmt.Sprintf("relatorio_%s_%s_a_%s.%s", who, start, end, ext)
}
