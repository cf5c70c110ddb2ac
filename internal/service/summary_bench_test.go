package service

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/godilite/survey-table/internal/survey"
)

func BenchmarkSummarize(b *testing.B) {
	rng := rand.New(rand.NewSource(42))
	rows := make([]survey.Row, 10000)
	for i := range rows {
		nps, sat := rng.Intn(11), 1+rng.Intn(5)
		rows[i] = survey.Row{
			ID:                fmt.Sprintf("row-%d", i),
			CustomerName:      fmt.Sprintf("Customer %d", i),
			AccountManager:    fmt.Sprintf("Manager %d", i%25),
			NPSScore:          &nps,
			SatisfactionScore: &sat,
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Summarize(rows)
	}
}
