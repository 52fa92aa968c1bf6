package notify

import (
	"math/rand"
	"strings"

	"github.com/okian/bonusboard/internal/domain/outcome"
)

var (
	enteredQuotes = []string{
		"{name} has entered the chat 😎",
		"{name} just spawned in 🔥",
		"{name} joined the lobby 🎮",
		"{name} is online ✅",
		"{name} pulled up 🚗💨",
	}
	processingQuotes = []string{
		"{name} has been sent to processing ⚙️",
		"{name} is cooking in processing 🍳",
		"{name} moved to processing ✅",
		"{name} is in processing mode 🧠",
		"{name} is getting processed 🚀",
	}
	returnedQuotes = []string{
		"{name} got returned ↩️",
		"{name} bounced back 🟥",
		"{name} returned to queue 📥",
		"{name} reset the play 🔄",
	}
	homeOfficeQuotes = []string{
		"{name} went to Home Office 🏢",
		"Home Office got {name} 🏢",
		"{name} is with Home Office now ✅",
	}
)

// pool returns the message pool for an outcome, or nil when the outcome has
// no dedicated pool.
func pool(o outcome.Outcome) []string {
	switch o {
	case outcome.Processing:
		return processingQuotes
	case outcome.Returned:
		return returnedQuotes
	case outcome.HomeOffice:
		return homeOfficeQuotes
	default:
		return nil
	}
}

func render(rng *rand.Rand, templates []string, name string) string {
	tpl := templates[rng.Intn(len(templates))]
	return strings.ReplaceAll(tpl, "{name}", name)
}

// arrivalMessage is the first-seen message for a record's current outcome.
func arrivalMessage(rng *rand.Rand, o outcome.Outcome, name string) string {
	if p := pool(o); p != nil {
		return render(rng, p, name)
	}
	return render(rng, enteredQuotes, name)
}

// transitionMessage is the status-change message. It is empty for Sale,
// which gets its own notification.
func transitionMessage(rng *rand.Rand, o outcome.Outcome, name string) string {
	if o == outcome.Sale {
		return ""
	}
	if p := pool(o); p != nil {
		return render(rng, p, name)
	}
	return name + " status changed: " + string(o)
}

func saleMessage(name string) string {
	return name + " MADE A SALE! ✅"
}
