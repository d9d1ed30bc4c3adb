package repository

import (
	"testing"
	"time"

	"campus-portal-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDocumentDropsPoster(t *testing.T) {
	ev := &models.Event{Base: models.Base{ID: "e1", Poster: &models.UserSummary{Name: "Ann"}}, Title: "Tech Fest"}
	ev.Normalize()

	doc, err := EncodeDocument(ev)
	require.NoError(t, err)

	assert.NotContains(t, doc, "poster")
	assert.Equal(t, "e1", doc["id"])
	assert.Equal(t, "Tech Fest", doc["title"])

	var back models.Event
	require.NoError(t, DecodeDocument(doc, &back))
	assert.Equal(t, "Tech Fest", back.Title)
	assert.Nil(t, back.Poster)
}

func TestEncodeDocumentDropsClaimant(t *testing.T) {
	item := &models.LostFoundItem{
		Base:      models.Base{ID: "l1"},
		Status:    models.LostFoundClaimed,
		ClaimedBy: "bob",
		Claimant:  &models.UserSummary{Name: "Bob"},
	}

	doc, err := EncodeDocument(item)
	require.NoError(t, err)
	assert.NotContains(t, doc, "claimant")
	assert.Equal(t, "bob", doc["claimedBy"])
}

func TestToggleTwiceRestoresSet(t *testing.T) {
	doc := Document{"interested": []any{"a"}}

	member, count := doc.Toggle("interested", "u")
	assert.True(t, member)
	assert.Equal(t, 2, count)
	assert.Equal(t, []string{"a", "u"}, doc.set("interested"))

	member, count = doc.Toggle("interested", "u")
	assert.False(t, member)
	assert.Equal(t, 1, count)
	assert.Equal(t, []string{"a"}, doc.set("interested"))
}

func TestAddRejectsDuplicate(t *testing.T) {
	doc := Document{}

	count, err := doc.Add("applicants", "u")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = doc.Add("applicants", "u")
	assert.ErrorIs(t, err, models.ErrAlreadyMember)
	assert.Equal(t, 1, count)
}

func TestTransitionGuardsCurrentStatus(t *testing.T) {
	doc := Document{"status": "active"}

	require.NoError(t, doc.Transition("active", "claimed", map[string]any{"claimedBy": "u"}))
	assert.Equal(t, "claimed", doc["status"])
	assert.Equal(t, "u", doc["claimedBy"])

	err := doc.Transition("active", "claimed", nil)
	assert.ErrorIs(t, err, models.ErrInvalidState)

	require.NoError(t, doc.Transition("", "resolved", nil))
	assert.Equal(t, "resolved", doc["status"])
}

func TestMatchesNormalizedFilter(t *testing.T) {
	doc := Document{"status": "active", "isActive": true, "type": "lost"}

	filter, err := NormalizeFilter(map[string]any{"status": "active", "isActive": true})
	require.NoError(t, err)
	assert.True(t, doc.Matches(filter))

	filter, err = NormalizeFilter(map[string]any{"type": "found"})
	require.NoError(t, err)
	assert.False(t, doc.Matches(filter))
}

func TestCompareTimes(t *testing.T) {
	early := Document{"date": time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC).Format(time.RFC3339Nano)}
	late := Document{"date": time.Date(2025, 5, 1, 10, 0, 0, 5, time.UTC).Format(time.RFC3339Nano)}

	assert.Equal(t, -1, Compare(early, late, "date"))
	assert.Equal(t, 1, Compare(late, early, "date"))
	assert.Equal(t, 0, Compare(early, early, "date"))
}
