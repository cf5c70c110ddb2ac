package survey

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Row is one normalized survey response.
type Row struct {
	ID                string `json:"id"`
	CustomerName      string `json:"customerName"`
	AccountManager    string `json:"accountManager"`
	ServiceType       string `json:"serviceType"`
	CompletionDate    string `json:"completionDate"`
	NPSScore          *int   `json:"npsScore"`
	SatisfactionScore *int   `json:"satisfactionScore"`
}

// Field names as used by view state, filters and persisted state.
const (
	FieldCustomerName      = "customerName"
	FieldAccountManager    = "accountManager"
	FieldServiceType       = "serviceType"
	FieldCompletionDate    = "completionDate"
	FieldNPSScore          = "npsScore"
	FieldSatisfactionScore = "satisfactionScore"
)

// Value returns the raw string value of a field, or "" for unknown fields and
// absent scores.
func (r Row) Value(field string) string {
	switch field {
	case FieldCustomerName:
		return r.CustomerName
	case FieldAccountManager:
		return r.AccountManager
	case FieldServiceType:
		return r.ServiceType
	case FieldCompletionDate:
		return r.CompletionDate
	case FieldNPSScore:
		return scoreString(r.NPSScore)
	case FieldSatisfactionScore:
		return scoreString(r.SatisfactionScore)
	default:
		return ""
	}
}

// Empty reports whether the row has neither a customer nor an account manager.
func (r Row) Empty() bool {
	return r.CustomerName == "" && r.AccountManager == ""
}

// Quarter returns "Q<n> <year>" for the completion date, or "" when it cannot be parsed.
func (r Row) Quarter() string {
	year, q, ok := r.QuarterOf()
	if !ok {
		return ""
	}
	return fmt.Sprintf("Q%d %d", q, year)
}

// QuarterOf returns the year and quarter (1-4) of the completion date.
func (r Row) QuarterOf() (year, quarter int, ok bool) {
	t, ok := ParseDate(r.CompletionDate)
	if !ok {
		return 0, 0, false
	}
	return t.Year(), (int(t.Month())-1)/3 + 1, true
}

// Score returns a pointer to v, for building rows in code.
func Score(v int) *int {
	return &v
}

func scoreString(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"02 Jan 2006 15:04",
	"02 Jan 2006",
	"Jan 2, 2006",
}

// ParseDate parses the date formats seen in the survey sheet.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
