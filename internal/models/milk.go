package models

import (
	"sort"
	"time"
)

type MilkRecord struct {
	ID                int64     `json:"id"`
	HerdID            int64     `json:"herd_id"`
	Date              time.Time `json:"date"`
	AmountLiters      float64   `json:"amount_liters"`
	FatPercentage     *float64  `json:"fat_percentage"`
	ProteinPercentage *float64  `json:"protein_percentage"`
	CreatedAt         time.Time `json:"created_at"`
}

// MilkRecordInput is the body of record create and update requests.
type MilkRecordInput struct {
	HerdID            int64     `json:"herd_id"`
	Date              time.Time `json:"date"`
	AmountLiters      float64   `json:"amount_liters"`
	FatPercentage     *float64  `json:"fat_percentage"`
	ProteinPercentage *float64  `json:"protein_percentage"`
}

func (r MilkRecord) Input() MilkRecordInput {
	return MilkRecordInput{
		HerdID:            r.HerdID,
		Date:              r.Date,
		AmountLiters:      r.AmountLiters,
		FatPercentage:     r.FatPercentage,
		ProteinPercentage: r.ProteinPercentage,
	}
}

type TimeSpan string

const (
	SpanAll   TimeSpan = ""
	SpanWeek  TimeSpan = "week"
	SpanMonth TimeSpan = "month"
	SpanYear  TimeSpan = "year"
)

// Since returns the start of the span counted back from today, and false
// for an empty or unknown span (no time filter).
func (s TimeSpan) Since(now time.Time) (time.Time, bool) {
	days := 0
	switch s {
	case SpanWeek:
		days = 7
	case SpanMonth:
		days = 30
	case SpanYear:
		days = 365
	default:
		return time.Time{}, false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return today.AddDate(0, 0, -days), true
}

type Stats struct {
	TotalLiters   float64 `json:"total_liters"`
	AveragePerDay float64 `json:"average_per_day"`
	DaysRecorded  int     `json:"days_recorded"`
	LitersPerCow  float64 `json:"liters_per_cow"`
}

// NewStats derives averages from a total and a day count. cowCount is 0
// when no single herd is selected.
func NewStats(total float64, days, cowCount int) Stats {
	if days <= 0 {
		return Stats{}
	}
	s := Stats{
		TotalLiters:   total,
		DaysRecorded:  days,
		AveragePerDay: total / float64(days),
	}
	if cowCount > 0 {
		s.LitersPerCow = s.AveragePerDay / float64(cowCount)
	}
	return s
}

// SortByDate orders records oldest first, in place.
func SortByDate(records []MilkRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})
}

// Export is returned by the export endpoint.
type Export struct {
	Key string `json:"key"`
	URL string `json:"url"`
}
