// Package model contains domain models passed between layers.
package model

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/okian/bonusboard/internal/domain/types"
)

// QueueRecord is one unit of work in today's operational queue.
// It is owned by the backend; the service only reads snapshots.
type QueueRecord struct {
	CustomerID      types.Text `json:"customerId"`
	Time            types.Text `json:"time"` // HH:MM
	QualifierName   types.Text `json:"qualifierName"`
	Team            types.Text `json:"team"`
	Validator       types.Text `json:"validator"`
	State           types.Text `json:"state"`
	Carrier         types.Text `json:"carrier"`
	Product         types.Text `json:"product"`
	ProcessingStage types.Text `json:"processingStage"`
	CloserStatus    types.Text `json:"closerStatus"`
}

// SummaryRow aggregates one qualifier's sales for a period.
type SummaryRow struct {
	Qualifier  string       `json:"qualifier"`
	SalesCount types.Number `json:"salesCount"`
	APSum      types.Number `json:"apSum"`
}

// AgentCounts is the aggregate record count for a period.
type AgentCounts struct {
	TotalRecords  types.Number            `json:"totalRecords"`
	TeamBreakdown map[string]types.Number `json:"teamBreakdown"`
}

// BonusRecord is a manually entered bonus.
type BonusRecord struct {
	ID        types.Text   `json:"id"`
	BonusDate string       `json:"bonus_date"`
	Qualifier string       `json:"qualifier"`
	Team      string       `json:"team"`
	Amount    types.Number `json:"amount"`
	Note      string       `json:"note,omitempty"`
}

// BonusInput is the payload for creating or updating a bonus.
// A nil Amount is sent as JSON null so the backend can reject it.
type BonusInput struct {
	BonusDate string   `json:"bonus_date"`
	Qualifier string   `json:"qualifier"`
	Team      string   `json:"team"`
	Amount    *float64 `json:"amount"`
	Note      string   `json:"note"`
}

// ParseAmount converts the admin form's amount text. Blank is zero; text
// that does not parse to a finite number is nil.
func ParseAmount(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		var zero float64
		return &zero
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// NotificationKind distinguishes toast flavors.
type NotificationKind string

const (
	KindStatus NotificationKind = "status"
	KindSale   NotificationKind = "sale"
	// KindAlert is the modal shown when a record sits in Returned.
	KindAlert NotificationKind = "alert"
)

// Notification is an ephemeral event raised by the change-detection engine
// and shown once.
type Notification struct {
	ID         string           `json:"id"`
	Kind       NotificationKind `json:"type"`
	Title      string           `json:"title"`
	Name       string           `json:"name"`
	Team       string           `json:"team"`
	Time       string           `json:"time"`
	CustomerID string           `json:"customerId"`
	Outcome    string           `json:"outcome"`
	ImageURL   string           `json:"imageUrl"`
	Background string           `json:"bg"`
	RaisedAt   time.Time        `json:"raisedAt"`
}
