package email

import (
	"testing"

	"explorewithme/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateRenderer_RequestDecision(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)

	subject, html, text, err := r.Render("request_decision", &domain.RequestDecisionEmailData{
		Name:       "Alice",
		EventTitle: "Jazz <night>",
		RequestID:  7,
		Status:     domain.RequestStatusConfirmed,
	})
	require.NoError(t, err)
	assert.Equal(t, `Your request for "Jazz <night>" was confirmed`, subject)
	assert.Contains(t, html, "Jazz &lt;night&gt;")
	assert.Contains(t, text, "request #7")
	assert.Contains(t, text, "See you there!")
}

func TestTemplateRenderer_EventModerated(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)

	subject, _, text, err := r.Render("event_moderated", &domain.EventModeratedEmailData{
		Name:       "Ini",
		EventTitle: "Jazz",
		EventID:    3,
		State:      domain.EventStateCanceled,
	})
	require.NoError(t, err)
	assert.Equal(t, `"Jazz" was rejected by a moderator`, subject)
	assert.Contains(t, text, "send it to review again")
}

func TestTemplateRenderer_UnknownTemplate(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)

	_, _, _, err = r.Render("welcome", nil)
	require.Error(t, err)
}
