package bot

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/bszet/vertretungsbot/model"
)

// agendaDayLayout renders a substitution's day in the agenda.
const agendaDayLayout = "Mon, 02.01"

// FormatAgenda renders a subscriber's substitutions as a MarkdownV2
// message, one line per substitution in the given (chronological) order.
// New substitutions are bolded. The second return value reports whether at
// least one substitution is new; callers should not send otherwise.
func FormatAgenda(subs []model.Substitution) (string, bool) {
	var sb strings.Builder
	sb.WriteString("Aktuelle Vertretungen:\n\n")
	hasNew := false
	for _, sub := range subs {
		line := fmt.Sprintf("%s, %d: %s %s %s",
			time.Unix(sub.Day, 0).Format(agendaDayLayout),
			sub.Lesson, sub.Teacher, sub.Subject, sub.Room)
		if sub.Notes != "" {
			line += fmt.Sprintf(" (%s)", sub.Notes)
		}
		line = tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, line)
		if sub.IsNew {
			line = "*" + line + "*"
			hasNew = true
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String(), hasNew
}
