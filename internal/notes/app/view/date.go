package view

import "time"

const (
	timeLayout = "15:04"
	dateLayout = "Jan 2, 2006"
	yesterday  = "Yesterday"
)

// FormatNoteDate форматирует время изменения относительно now по календарным дням
// часового пояса now: сегодня время, вчера "Yesterday", в пределах недели день
// недели, иначе дата.
func FormatNoteDate(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	t = t.In(now.Location())

	switch days := dayNumber(now) - dayNumber(t); {
	case days == 0:
		return t.Format(timeLayout)
	case days == 1:
		return yesterday
	case days > 1 && days < 7:
		return t.Weekday().String()
	default:
		return t.Format(dateLayout)
	}
}

// dayNumber номер календарного дня t без учета перехода на летнее время.
func dayNumber(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}
