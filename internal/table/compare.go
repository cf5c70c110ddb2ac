package table

import (
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/godilite/survey-table/internal/survey"
)

// compareFunc orders two rows; negative means a sorts before b.
type compareFunc func(a, b survey.Row) int

// newTextCollator builds a case-insensitive collator with natural ordering of
// digit runs. Collators keep scratch buffers, so each sort gets its own.
func newTextCollator() *collate.Collator {
	return collate.New(language.English, collate.IgnoreCase, collate.Numeric)
}

func comparatorFor(col Column) compareFunc {
	switch col.Kind {
	case KindDate:
		return func(a, b survey.Row) int {
			return dateValue(a.Value(col.Key)).Compare(dateValue(b.Value(col.Key)))
		}
	case KindNumeric:
		return func(a, b survey.Row) int {
			x, y := numericValue(a, col.Key), numericValue(b, col.Key)
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			default:
				return 0
			}
		}
	default:
		c := newTextCollator()
		return func(a, b survey.Row) int {
			return c.CompareString(strings.ToLower(a.Value(col.Key)), strings.ToLower(b.Value(col.Key)))
		}
	}
}

// dateValue parses a completion date; unparsable dates sort as the zero instant.
func dateValue(s string) time.Time {
	t, _ := survey.ParseDate(s)
	return t
}

// numericValue treats missing scores as 0.
func numericValue(r survey.Row, key string) float64 {
	var v *int
	switch key {
	case survey.FieldNPSScore:
		v = r.NPSScore
	case survey.FieldSatisfactionScore:
		v = r.SatisfactionScore
	}
	if v == nil {
		return 0
	}
	return float64(*v)
}
