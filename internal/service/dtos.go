package service

// Stats aggregates the scores of a group of responses. Averages cover only
// responses that carry the score.
type Stats struct {
	Responses             int     `json:"responses"`
	NPSResponses          int     `json:"npsResponses"`
	AverageNPS            float64 `json:"averageNps"`
	NPS                   float64 `json:"nps"`
	Promoters             int     `json:"promoters"`
	Detractors            int     `json:"detractors"`
	SatisfactionResponses int     `json:"satisfactionResponses"`
	AverageSatisfaction   float64 `json:"averageSatisfaction"`
	Satisfied             int     `json:"satisfied"`
}

type ManagerSummary struct {
	Manager string `json:"manager"`
	Stats
}

// QuarterSummary holds the responses completed in one calendar quarter.
type QuarterSummary struct {
	Quarter string `json:"quarter"`
	Stats
}

type Summary struct {
	Overall  Stats            `json:"overall"`
	Managers []ManagerSummary `json:"managers"`
	Quarters []QuarterSummary `json:"quarters"`
}
