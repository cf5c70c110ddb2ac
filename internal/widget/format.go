package widget

import (
	"strconv"

	"github.com/godilite/survey-table/internal/survey"
	"github.com/godilite/survey-table/internal/textnorm"
)

const (
	displayDateLayout = "Jan 2, 2006"
	missingValue      = "—"
)

// formatDate renders a completion date for display. Dates that cannot be
// parsed are shown as-is.
func formatDate(raw string) string {
	if raw == "" {
		return missingValue
	}
	t, ok := survey.ParseDate(raw)
	if !ok {
		return textnorm.Normalize(raw)
	}
	return t.Format(displayDateLayout)
}

func npsClass(score int) string {
	switch {
	case score >= 9:
		return "promoter"
	case score >= 7:
		return "passive"
	default:
		return "detractor"
	}
}

func scoreText(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
