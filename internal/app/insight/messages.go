package insight

import (
	"fmt"

	"github.com/praxis-labs/praxis/internal/domain"
)

// Message returns the notification title and body for a reminder kind. The
// engine supplies the text; delivery (email, browser) belongs to the caller.
func Message(kind domain.ReminderKind, userName string) (title, body string) {
	if userName == "" {
		userName = "there"
	}
	switch kind {
	case domain.ReminderDaily:
		return "Daily practice reminder",
			fmt.Sprintf("Hi %s! Time for today's practice — log how it went while it's fresh.", userName)
	case domain.ReminderAfterAction:
		return "Nice work on that action",
			fmt.Sprintf("%s, you just completed an action item. Take a minute to reflect on what you learned.", userName)
	case domain.ReminderAfterNewAction:
		return "New action items added",
			fmt.Sprintf("%s, your new action items are ready. Pick one and schedule its first practice.", userName)
	case domain.ReminderInactive:
		return "We miss your practice logs",
			fmt.Sprintf("%s, it's been a few days since your last practice. Even a small step keeps the habit alive.", userName)
	}
	return "Practice reminder", "Time to practice!"
}
