package survey

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/godilite/survey-table/internal/textnorm"
)

// Record is one flat record as delivered by the data source, keyed by column header.
type Record map[string]string

// Alternate source keys per logical field, tried in order. The sheet carries
// both the English and the Arabic form headers.
var (
	customerNameKeys = []string{
		"companyName",
		"Please provide your company name",
		"فضلًا، أدخل اسم الشركة",
	}
	accountManagerKeys = []string{
		"accountManager",
		"Name of designated account manager: ",
		"اسم مدير الحساب المعيّن",
	}
	serviceTypeKeys = []string{
		"serviceType",
		"Service Type",
		"نوع الخدمة",
	}
	completionDateKeys = []string{
		"submittedAt",
		"Submitted At",
		"completionDate",
	}
	npsScoreKeys = []string{
		"npsScore",
		"How likely are you to recommend Starlinks to other businesses",
		"ما مدى احتمالية أن تنصح الآخرين بخدمات ستارلينكس؟",
	}
	satisfactionScoreKeys = []string{
		"satisfactionScore",
		"How satisfied are you with the overall experience with Starlinks",
		"ما مدى رضاك عن تجربتك العامة مع ستارلينكس؟",
	}
)

// FromRecord maps a record onto a Row. index is used to synthesize an id when
// the record has none. The second result is false for rows that must be
// excluded because both customer name and account manager are empty.
func FromRecord(rec Record, index int) (Row, bool) {
	row := Row{
		ID:                firstNonEmpty(rec, []string{"id"}),
		CustomerName:      textnorm.Normalize(firstNonEmpty(rec, customerNameKeys)),
		AccountManager:    textnorm.Normalize(firstNonEmpty(rec, accountManagerKeys)),
		ServiceType:       textnorm.Normalize(firstNonEmpty(rec, serviceTypeKeys)),
		CompletionDate:    strings.TrimSpace(firstNonEmpty(rec, completionDateKeys)),
		NPSScore:          boundedScore(firstNonEmpty(rec, npsScoreKeys), 0, 10),
		SatisfactionScore: boundedScore(firstNonEmpty(rec, satisfactionScoreKeys), 1, 5),
	}
	if row.ID == "" {
		row.ID = fmt.Sprintf("row-%d", index)
	}
	return row, !row.Empty()
}

// FromRecords maps every record and drops the rows excluded at ingestion.
func FromRecords(recs []Record) []Row {
	rows := make([]Row, 0, len(recs))
	for i, rec := range recs {
		if row, ok := FromRecord(rec, i); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

// FromSheetValues converts a spreadsheet values grid into records. The first
// row holds the headers; short rows are padded with empty cells.
func FromSheetValues(values [][]any) []Record {
	if len(values) == 0 {
		return nil
	}

	headers := make([]string, len(values[0]))
	for i, h := range values[0] {
		headers[i] = cellString(h)
	}

	records := make([]Record, 0, len(values)-1)
	for _, cells := range values[1:] {
		rec := make(Record, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(cells) {
				rec[h] = cellString(cells[i])
			} else {
				rec[h] = ""
			}
		}
		records = append(records, rec)
	}
	return records
}

func firstNonEmpty(rec Record, keys []string) string {
	for _, k := range keys {
		if v, ok := rec[k]; ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// boundedScore parses the leading integer of s. Values outside [lo, hi] and
// unparsable input are treated as absent.
func boundedScore(s string, lo, hi int) *int {
	v, ok := leadingInt(s)
	if !ok || v < lo || v > hi {
		return nil
	}
	return &v
}

func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) {
		c := rune(s[end])
		if unicode.IsDigit(c) || (end == 0 && (c == '-' || c == '+')) {
			end++
			continue
		}
		break
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return v, true
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
