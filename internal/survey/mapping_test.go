package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRecord(t *testing.T) {
	t.Run("english sheet headers", func(t *testing.T) {
		rec := Record{
			"Please provide your company name":                                 "Amazon",
			"Name of designated account manager: ":                             "Ahmed Saleem",
			"Service Type":                                                     "Last Mile Only",
			"Submitted At":                                                     "2025-07-08T11:04:47",
			"How likely are you to recommend Starlinks to other businesses":    "10",
			"How satisfied are you with the overall experience with Starlinks": "5",
		}

		row, ok := FromRecord(rec, 3)

		require.True(t, ok)
		assert.Equal(t, "row-3", row.ID)
		assert.Equal(t, "Amazon", row.CustomerName)
		assert.Equal(t, "Ahmed Saleem", row.AccountManager)
		assert.Equal(t, "Last Mile Only", row.ServiceType)
		assert.Equal(t, "2025-07-08T11:04:47", row.CompletionDate)
		require.NotNil(t, row.NPSScore)
		assert.Equal(t, 10, *row.NPSScore)
		require.NotNil(t, row.SatisfactionScore)
		assert.Equal(t, 5, *row.SatisfactionScore)
	})

	t.Run("arabic headers and mojibake repair", func(t *testing.T) {
		rec := Record{
			"id":                      "abc",
			"فضلًا، أدخل اسم الشركة":  "Ø³Ø§ÙƒÙˆ",
			"اسم مدير الحساب المعيّن": "إبراهيم فضالي",
			"نوع الخدمة":              "شحن فقط",
			"ما مدى احتمالية أن تنصح الآخرين بخدمات ستارلينكس؟": "2",
		}

		row, ok := FromRecord(rec, 0)

		require.True(t, ok)
		assert.Equal(t, "abc", row.ID)
		assert.Equal(t, "ساكو", row.CustomerName)
		assert.Equal(t, "إبراهيم فضالي", row.AccountManager)
		assert.Equal(t, 2, *row.NPSScore)
		assert.Nil(t, row.SatisfactionScore)
	})

	t.Run("first non-empty key wins", func(t *testing.T) {
		rec := Record{
			"companyName":                      "  ",
			"Please provide your company name": "Noon",
			"accountManager":                   "Ibrahim Fadaly",
			"Name of designated account manager: ": "Someone Else",
		}

		row, ok := FromRecord(rec, 0)

		require.True(t, ok)
		assert.Equal(t, "Noon", row.CustomerName)
		assert.Equal(t, "Ibrahim Fadaly", row.AccountManager)
	})

	t.Run("scores out of range or unparsable are absent", func(t *testing.T) {
		rec := Record{
			"companyName":       "Aldo",
			"npsScore":          "11",
			"satisfactionScore": "n/a",
		}

		row, ok := FromRecord(rec, 0)

		require.True(t, ok)
		assert.Nil(t, row.NPSScore)
		assert.Nil(t, row.SatisfactionScore)
	})

	t.Run("leading integer is used", func(t *testing.T) {
		rec := Record{"companyName": "Aldo", "npsScore": "8 - likely", "satisfactionScore": "4.6"}

		row, _ := FromRecord(rec, 0)

		assert.Equal(t, 8, *row.NPSScore)
		assert.Equal(t, 4, *row.SatisfactionScore)
	})

	t.Run("empty customer and manager excluded", func(t *testing.T) {
		rec := Record{"Service Type": "Fulfilment Only", "npsScore": "9"}

		_, ok := FromRecord(rec, 0)

		assert.False(t, ok)
	})
}

func TestFromRecords_DropsEmptyRows(t *testing.T) {
	rows := FromRecords([]Record{
		{"companyName": "DHL"},
		{"serviceType": "Fulfilment Only"},
		{"accountManager": "Ahmed Saleem"},
	})

	require.Len(t, rows, 2)
	assert.Equal(t, "row-0", rows[0].ID)
	assert.Equal(t, "row-2", rows[1].ID)
}

func TestFromSheetValues(t *testing.T) {
	values := [][]any{
		{"Please provide your company name", "Service Type", "npsScore"},
		{"Amazon", "Last Mile Only", float64(9)},
		{"Noon"},
	}

	recs := FromSheetValues(values)

	require.Len(t, recs, 2)
	assert.Equal(t, "Amazon", recs[0]["Please provide your company name"])
	assert.Equal(t, "9", recs[0]["npsScore"])
	assert.Equal(t, "Noon", recs[1]["Please provide your company name"])
	assert.Equal(t, "", recs[1]["Service Type"])

	assert.Nil(t, FromSheetValues(nil))
}

func TestRowQuarter(t *testing.T) {
	cases := []struct {
		date     string
		expected string
	}{
		{"2025-06-30T12:34:28", "Q2 2025"},
		{"2025-07-10", "Q3 2025"},
		{"1/15/2024", "Q1 2024"},
		{"2024-12-01 09:00:00", "Q4 2024"},
		{"not a date", ""},
		{"", ""},
	}

	for _, tc := range cases {
		t.Run(tc.date, func(t *testing.T) {
			assert.Equal(t, tc.expected, Row{CompletionDate: tc.date}.Quarter())
		})
	}
}

func TestRowValue(t *testing.T) {
	row := Row{CustomerName: "Amazon", NPSScore: Score(7)}

	assert.Equal(t, "Amazon", row.Value(FieldCustomerName))
	assert.Equal(t, "7", row.Value(FieldNPSScore))
	assert.Equal(t, "", row.Value(FieldSatisfactionScore))
	assert.Equal(t, "", row.Value("unknown"))
}
