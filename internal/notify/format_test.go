package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/projecthub/internal/model"
)

func TestFormatAge(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		createdAt time.Time
		want      string
	}{
		{"just created", now, "Just now"},
		{"under a minute", now.Add(-45 * time.Second), "Just now"},
		{"one minute", now.Add(-time.Minute), "1m ago"},
		{"fifty nine minutes", now.Add(-59 * time.Minute), "59m ago"},
		{"one hour", now.Add(-time.Hour), "1h ago"},
		{"twenty three hours", now.Add(-23 * time.Hour), "23h ago"},
		{"one day", now.Add(-24 * time.Hour), "1d ago"},
		{"a week", now.Add(-7 * 24 * time.Hour), "7d ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAge(tt.createdAt, now))
		})
	}
}

func TestIcon(t *testing.T) {
	assert.Equal(t, "✅", Icon(model.KindSuccess))
	assert.Equal(t, "❌", Icon(model.KindError))
	assert.Equal(t, "⚠️", Icon(model.KindWarning))
	assert.Equal(t, "ℹ️", Icon(model.KindInfo))
	assert.Equal(t, "📢", Icon(model.Kind("bogus")))
}

func TestBadgeLabel(t *testing.T) {
	assert.Equal(t, "CREATE task", BadgeLabel(model.OperationCreate, model.EntityTask))
	assert.Equal(t, "DELETE project", BadgeLabel(model.OperationDelete, model.EntityProject))
	assert.Equal(t, "UPDATE team", BadgeLabel(model.OperationUpdate, model.EntityTeam))
}
