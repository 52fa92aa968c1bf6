// Package scoring derives the leaderboard views from per-qualifier sales
// summaries: Gold Rush tiers, the Top Guns ranking and dashboard totals.
package scoring

import (
	"math"
	"slices"
	"strings"

	"github.com/okian/bonusboard/internal/domain/model"
	"github.com/okian/bonusboard/internal/domain/outcome"
	"github.com/okian/bonusboard/internal/domain/types"
)

// Tier is a Gold Rush competition bracket.
type Tier string

const (
	Gold   Tier = "GOLD"
	Silver Tier = "SILVER"
	Bronze Tier = "BRONZE"
	Rookie Tier = "ROOKIE"
)

// Tiers lists brackets in display order.
var Tiers = []Tier{Gold, Silver, Bronze, Rookie}

// Prize is the weekly winner payout per tier.
func Prize(t Tier) int {
	switch t {
	case Gold:
		return 300
	case Silver:
		return 200
	case Bronze:
		return 100
	case Rookie:
		return 50
	default:
		return 0
	}
}

// DefaultLimits is the number of cards shown per tier.
var DefaultLimits = map[Tier]int{Gold: 5, Silver: 5, Bronze: 6, Rookie: 5}

// ManualFix adds sales and AP to a qualifier on every refresh.
type ManualFix struct {
	Qualifier string  `koanf:"qualifier" json:"qualifier"`
	AddSales  float64 `koanf:"add_sales" json:"addSales"`
	AddAP     float64 `koanf:"add_ap" json:"addAp"`
}

// ApplyManualFixes returns a copy of rows with fixes added. A fix for a
// qualifier missing from rows appends a new row.
func ApplyManualFixes(rows []model.SummaryRow, fixes []ManualFix) []model.SummaryRow {
	out := slices.Clone(rows)
	idx := make(map[string]int, len(out))
	for i, r := range out {
		if k := outcome.QualifierKey(r.Qualifier); k != "" {
			idx[k] = i
		}
	}
	for _, f := range fixes {
		key := outcome.QualifierKey(f.Qualifier)
		if key == "" {
			continue
		}
		i, ok := idx[key]
		if !ok {
			out = append(out, model.SummaryRow{
				Qualifier:  f.Qualifier,
				SalesCount: types.Number(f.AddSales),
				APSum:      types.Number(f.AddAP),
			})
			idx[key] = len(out) - 1
			continue
		}
		r := out[i]
		if r.Qualifier == "" {
			r.Qualifier = f.Qualifier
		}
		r.SalesCount += types.Number(f.AddSales)
		r.APSum += types.Number(f.AddAP)
		out[i] = r
	}
	return out
}

// Roster assigns qualifiers (by QualifierKey) to tiers.
type Roster map[string]Tier

// NewRoster builds a Roster from a name->tier map, normalizing both sides.
// Unknown tier names are dropped.
func NewRoster(m map[string]string) Roster {
	r := make(Roster, len(m))
	for name, tier := range m {
		t := Tier(strings.ToUpper(strings.TrimSpace(tier)))
		if Prize(t) == 0 {
			continue
		}
		r[outcome.QualifierKey(name)] = t
	}
	return r
}

// Members returns the sorted keys assigned to t.
func (r Roster) Members(t Tier) []string {
	var out []string
	for k, v := range r {
		if v == t {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}

// Card is one Gold Rush tile.
type Card struct {
	Rank     int     `json:"rank"`
	Key      string  `json:"key"`
	Name     string  `json:"name"`
	AP       float64 `json:"ap"`
	Sales    float64 `json:"sales"`
	ImageURL string  `json:"imageUrl,omitempty"`
}

// BuildTier ranks every roster member of tier by AP, highest first. Members
// with no sales still get a zero card. A limit <= 0 keeps all cards.
func BuildTier(rows []model.SummaryRow, roster Roster, tier Tier, limit int, images *outcome.Images) []Card {
	stats := make(map[string]model.SummaryRow, len(rows))
	for _, r := range rows {
		if k := outcome.QualifierKey(r.Qualifier); k != "" {
			stats[k] = r
		}
	}

	members := roster.Members(tier)
	cards := make([]Card, 0, len(members))
	for _, key := range members {
		c := Card{Key: key, Name: key, ImageURL: images.For(key)}
		if s, ok := stats[key]; ok {
			if strings.TrimSpace(s.Qualifier) != "" {
				c.Name = s.Qualifier
			}
			c.AP = s.APSum.Float()
			c.Sales = s.SalesCount.Float()
		}
		cards = append(cards, c)
	}

	slices.SortStableFunc(cards, func(a, b Card) int {
		switch {
		case a.AP > b.AP:
			return -1
		case a.AP < b.AP:
			return 1
		}
		return 0
	})
	if limit > 0 && len(cards) > limit {
		cards = cards[:limit]
	}
	for i := range cards {
		cards[i].Rank = i + 1
	}
	return cards
}

// Player is one Top Guns card.
type Player struct {
	Rank      int     `json:"rank"`
	Qualifier string  `json:"qualifier"`
	Sales     float64 `json:"salesCount"`
	AP        float64 `json:"apSum"`
	OVR       int     `json:"ovr"`
	ImageURL  string  `json:"imageUrl,omitempty"`
}

// OVR is the card rating: sales*10 + AP/1000, rounded.
func OVR(sales, ap float64) int {
	return int(math.Round(sales*10 + ap/1000))
}

// TopGuns returns the top limit qualifiers by AP.
func TopGuns(rows []model.SummaryRow, limit int, images *outcome.Images) []Player {
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b model.SummaryRow) int {
		switch {
		case a.APSum > b.APSum:
			return -1
		case a.APSum < b.APSum:
			return 1
		}
		return 0
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	out := make([]Player, len(sorted))
	for i, r := range sorted {
		out[i] = Player{
			Rank:      i + 1,
			Qualifier: r.Qualifier,
			Sales:     r.SalesCount.Float(),
			AP:        r.APSum.Float(),
			OVR:       OVR(r.SalesCount.Float(), r.APSum.Float()),
			ImageURL:  images.For(r.Qualifier),
		}
	}
	return out
}
