package feedback

import (
	"math"
	"time"

	"homeservice/models"
)

// DefaultTrendMonths is the width of the provider dashboard trend.
const DefaultTrendMonths = 7

const monthLayout = "2006-01"

// Summarize folds 1-5 ratings into a count, a one-decimal mean and a histogram.
// Out-of-range values are ignored.
func Summarize(ratings []int) models.RatingSummary {
	var s models.RatingSummary
	sum := 0
	for _, r := range ratings {
		if r < 1 || r > 5 {
			continue
		}
		s.Histogram[r-1]++
		s.Count++
		sum += r
	}
	if s.Count > 0 {
		s.Average = roundOne(float64(sum) / float64(s.Count))
	}
	return s
}

func ProviderRatings(records []models.Feedback) []int {
	out := make([]int, 0, len(records))
	for _, f := range records {
		out = append(out, f.ProviderRating)
	}
	return out
}

func ServiceRatings(records []models.Feedback) []int {
	out := make([]int, 0, len(records))
	for _, f := range records {
		out = append(out, f.ServiceRating)
	}
	return out
}

// MonthlyTrend buckets provider ratings by calendar month of creation over the
// trailing window ending with now's month, oldest first. Empty months are kept
// with a zero average.
func MonthlyTrend(records []models.Feedback, now time.Time, months int) []models.MonthlyRating {
	if months <= 0 {
		months = DefaultTrendMonths
	}
	loc := now.Location()
	first := time.Date(now.Year(), now.Month()-time.Month(months-1), 1, 0, 0, 0, 0, loc)

	trend := make([]models.MonthlyRating, months)
	index := make(map[string]int, months)
	for i := 0; i < months; i++ {
		key := first.AddDate(0, i, 0).Format(monthLayout)
		trend[i].Month = key
		index[key] = i
	}

	sums := make([]int, months)
	for _, f := range records {
		i, ok := index[f.CreatedAt.In(loc).Format(monthLayout)]
		if !ok || f.ProviderRating < 1 || f.ProviderRating > 5 {
			continue
		}
		trend[i].Count++
		sums[i] += f.ProviderRating
	}
	for i := range trend {
		if trend[i].Count > 0 {
			trend[i].Average = roundOne(float64(sums[i]) / float64(trend[i].Count))
		}
	}
	return trend
}

func roundOne(v float64) float64 {
	return math.Round(v*10) / 10
}
