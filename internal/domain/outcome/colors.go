package outcome

import "strings"

// Notification backgrounds.
const (
	SaleBackground       = "#BFF7C6"
	returnedBackground   = "#FFC9C9"
	processingBackground = "#FFF1A8"
	homeOfficeBackground = "#c6b1ee"
	defaultBackground    = "#E0F2FE"
)

// Background is the status notification color for an outcome.
func Background(o Outcome) string {
	switch o {
	case Returned:
		return returnedBackground
	case Processing:
		return processingBackground
	case HomeOffice:
		return homeOfficeBackground
	default:
		return defaultBackground
	}
}

// RowBackground is the queue table row tint for an outcome.
func RowBackground(o Outcome) string {
	switch o {
	case Sale:
		return "#E9FBEF"
	case Processing:
		return "#FFF8DE"
	case Returned:
		return "#FFC9C9"
	default:
		return "#FFFFFF"
	}
}

// PillBackground is the outcome pill color. Matching is by substring so
// passthrough stages such as "Sale Pending" still pick a color.
func PillBackground(o Outcome) string {
	s := strings.ToLower(string(o))
	switch {
	case strings.Contains(s, "sale"):
		return "#BFF7C6"
	case strings.Contains(s, "returned"):
		return "#E57373"
	case strings.Contains(s, "processing"):
		return "#FFF1A8"
	case strings.Contains(s, "home office"):
		return "#c6b1ee"
	default:
		return "#E5E7EB"
	}
}

// TeamBackground is the team pill color.
func TeamBackground(team string) string {
	t := strings.ToLower(team)
	switch {
	case strings.Contains(t, "legends"):
		return "#BFF7C6"
	case strings.Contains(t, "maserati"):
		return "#B7E6FF"
	case strings.Contains(t, "falcons"):
		return "#C7B7FF"
	case strings.Contains(t, "sharks"):
		return "#FFE7B7"
	default:
		return "#fff"
	}
}
