package scoring

import (
	"github.com/okian/bonusboard/internal/domain/model"
	"github.com/okian/bonusboard/internal/domain/outcome"
	"github.com/okian/bonusboard/internal/domain/types"
)

var medals = map[int]string{
	1: "https://cdn-icons-png.flaticon.com/128/13461/13461118.png",
	2: "https://cdn-icons-png.flaticon.com/128/13461/13461115.png",
	3: "https://cdn-icons-png.flaticon.com/128/13461/13461099.png",
}

// Medal returns the medal icon for ranks 1-3.
func Medal(rank int) string { return medals[rank] }

// TotalAP sums AP over all rows.
func TotalAP(rows []model.SummaryRow) float64 {
	var total float64
	for _, r := range rows {
		total += r.APSum.Float()
	}
	return total
}

// DashboardRows ranks the first limit rows in backend order.
func DashboardRows(rows []model.SummaryRow, limit int, images *outcome.Images) []types.Entry {
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([]types.Entry, len(rows))
	for i, r := range rows {
		out[i] = types.Entry{
			Rank:      i + 1,
			Qualifier: r.Qualifier,
			Sales:     r.SalesCount.Float(),
			AP:        r.APSum.Float(),
			Medal:     Medal(i + 1),
			ImageURL:  images.For(r.Qualifier),
		}
	}
	return out
}

// QueueCounts tallies a queue snapshot by outcome.
type QueueCounts struct {
	Total      int `json:"total"`
	Sale       int `json:"sale"`
	Processing int `json:"processing"`
	Returned   int `json:"returned"`
	HomeOffice int `json:"homeOffice"`
}

// CountOutcomes tallies rows by classified outcome.
func CountOutcomes(rows []model.QueueRecord) QueueCounts {
	c := QueueCounts{Total: len(rows)}
	for _, r := range rows {
		switch outcome.Of(r) {
		case outcome.Sale:
			c.Sale++
		case outcome.Processing:
			c.Processing++
		case outcome.Returned:
			c.Returned++
		case outcome.HomeOffice:
			c.HomeOffice++
		}
	}
	return c
}
