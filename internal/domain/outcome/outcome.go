// Package outcome turns raw backend queue fields into display-ready values:
// the outcome label, first names and the composite record key.
package outcome

import (
	"regexp"
	"strings"

	"github.com/okian/bonusboard/internal/domain/model"
)

// Outcome is the display label derived from processingStage and closerStatus.
// Values other than the constants below are the raw stage passed through.
type Outcome string

const (
	Sale       Outcome = "Sale"
	Returned   Outcome = "Returned"
	Processing Outcome = "Processing"
	HomeOffice Outcome = "Home Office"
	// None is used when the stage is empty.
	None Outcome = "-"
)

// Key placeholders for empty record fields.
const (
	noID        = "NOID"
	noTime      = "NOTIME"
	noQualifier = "NOQUAL"
	noTeam      = "NOTEAM"
)

var (
	stageProcessing = regexp.MustCompile(`(?i)^processing$`)
	stageLead       = regexp.MustCompile(`(?i)^lead$`)
	stageDeal       = regexp.MustCompile(`(?i)^deal$`)
	closerHome      = regexp.MustCompile(`(?i)^home\s*office$`)
	whitespace      = regexp.MustCompile(`\s+`)
)

// Classify maps a stage and closer status to an Outcome.
// The Home Office rule must run before the plain Processing rule.
func Classify(stage, closerStatus string) Outcome {
	s := strings.TrimSpace(stage)
	cs := strings.TrimSpace(closerStatus)
	switch {
	case stageProcessing.MatchString(s) && closerHome.MatchString(cs):
		return HomeOffice
	case stageLead.MatchString(s):
		return Returned
	case stageDeal.MatchString(s):
		return Sale
	case stageProcessing.MatchString(s):
		return Processing
	case s == "":
		return None
	default:
		return Outcome(s)
	}
}

// Of classifies a queue record.
func Of(r model.QueueRecord) Outcome {
	return Classify(string(r.ProcessingStage), string(r.CloserStatus))
}

// FirstName returns the first whitespace-separated token of full, or "-".
func FirstName(full string) string {
	fields := strings.Fields(full)
	if len(fields) == 0 {
		return "-"
	}
	return fields[0]
}

// QualifierKey normalizes a qualifier name for lookups and record keys.
func QualifierKey(name string) string {
	return strings.ToUpper(whitespace.ReplaceAllString(strings.TrimSpace(name), " "))
}

// RecordKey builds the composite identity customerId|time|QUALIFIER|TEAM used
// to correlate the same record across snapshots.
func RecordKey(r model.QueueRecord) string {
	return orDefault(r.CustomerID.String(), noID) + "|" +
		orDefault(r.Time.String(), noTime) + "|" +
		orDefault(QualifierKey(string(r.QualifierName)), noQualifier) + "|" +
		orDefault(strings.ToUpper(r.Team.String()), noTeam)
}

// StatusKey is the per-transition dedup key key::outcome.
func StatusKey(recordKey string, o Outcome) string {
	return recordKey + "::" + string(o)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
