package analytics

import "chatdash.app/api/internal/model"

// ChangePercent is the rounded percentage change from previous to current.
// A zero baseline reports 100 when current is positive and 0 otherwise; this
// is a display policy, not a limit.
func ChangePercent(current, previous int) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return round1(float64(current-previous) / float64(previous) * 100)
}

// CalculateGrowth compares the sizes of two conversation sets.
func CalculateGrowth(current, previous []model.Conversation) model.Growth {
	growth := ChangePercent(len(current), len(previous))
	return model.Growth{
		Current:    len(current),
		Previous:   len(previous),
		Growth:     growth,
		IsPositive: growth >= 0,
	}
}

// ComparePeriodsKPIs reports total, won and open change between two sets.
func ComparePeriodsKPIs(current, previous []model.Conversation) model.PeriodComparison {
	cur := countStatuses(current)
	prev := countStatuses(previous)
	return model.PeriodComparison{
		TotalChange: ChangePercent(len(current), len(previous)),
		WonChange:   ChangePercent(cur.Won, prev.Won),
		OpenChange:  ChangePercent(cur.Open, prev.Open),
	}
}

func countStatuses(convs []model.Conversation) model.StatusCounts {
	var counts model.StatusCounts
	for _, c := range convs {
		counts.Add(c.Status)
	}
	return counts
}
