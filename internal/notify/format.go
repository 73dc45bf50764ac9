package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/nhle/projecthub/internal/model"
)

// FormatAge renders how long ago an event happened, relative to now.
// It is recomputed on every render since "now" moves.
func FormatAge(createdAt, now time.Time) string {
	minutes := int(now.Sub(createdAt).Minutes())

	if minutes < 1 {
		return "Just now"
	}
	if minutes < 60 {
		return fmt.Sprintf("%dm ago", minutes)
	}

	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%dh ago", hours)
	}

	return fmt.Sprintf("%dd ago", hours/24)
}

// Icon returns the glyph shown next to an event of the given kind.
func Icon(kind model.Kind) string {
	switch kind {
	case model.KindSuccess:
		return "✅"
	case model.KindError:
		return "❌"
	case model.KindWarning:
		return "⚠️"
	case model.KindInfo:
		return "ℹ️"
	default:
		return "📢"
	}
}

// BadgeLabel composes the "CREATE task" style badge text for an event.
func BadgeLabel(op model.Operation, entity model.EntityType) string {
	return strings.ToUpper(string(op)) + " " + string(entity)
}
