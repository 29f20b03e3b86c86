package email

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateRender(t *testing.T) {
	tmpl, err := NewTemplate(uuid.New(), "Welcome", "Hi {{first_name}}",
		"<p>Welcome to {{org_name}}, {{first_name}}!</p>", "Welcome to {{org_name}}, {{first_name}}!")
	require.NoError(t, err)

	subject, html, text := tmpl.Render(map[string]string{
		"first_name": "Jane",
		"org_name":   "Bright Pixel",
	})
	assert.Equal(t, "Hi Jane", subject)
	assert.Equal(t, "<p>Welcome to Bright Pixel, Jane!</p>", html)
	assert.Equal(t, "Welcome to Bright Pixel, Jane!", text)

	t.Run("unknown placeholders stay visible", func(t *testing.T) {
		subject, _, _ := tmpl.Render(map[string]string{"org_name": "X"})
		assert.Equal(t, "Hi {{first_name}}", subject)
	})
}

func TestNewTemplateValidation(t *testing.T) {
	orgID := uuid.New()

	_, err := NewTemplate(orgID, "", "S", "<p>B</p>", "")
	assert.Error(t, err)

	_, err = NewTemplate(orgID, "N", "", "<p>B</p>", "")
	assert.Error(t, err)

	_, err = NewTemplate(orgID, "N", "S", "", "")
	assert.Error(t, err)
}

func TestListMembership(t *testing.T) {
	member, err := NewListMember(uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.True(t, member.Subscribed)

	require.NoError(t, member.Unsubscribe())
	assert.False(t, member.Subscribed)
	assert.NotNil(t, member.UnsubscribedAt)
	assert.Error(t, member.Unsubscribe())

	require.NoError(t, member.Resubscribe())
	assert.True(t, member.Subscribed)
	assert.Nil(t, member.UnsubscribedAt)
	assert.Error(t, member.Resubscribe())
}

func newDraftCampaign(t *testing.T) *Campaign {
	t.Helper()
	c, err := NewCampaign(uuid.New(), uuid.New(), uuid.New(), "August newsletter")
	require.NoError(t, err)
	return c
}

func TestCampaignLifecycle(t *testing.T) {
	t.Run("draft to sent", func(t *testing.T) {
		c := newDraftCampaign(t)
		require.NoError(t, c.Enqueue())
		require.NoError(t, c.Start())
		require.NoError(t, c.Finish(120, 3, "3 bounces"))

		assert.Equal(t, CampaignStatusSent, c.Status)
		assert.Equal(t, 120, c.SentCount)
		assert.Equal(t, 3, c.FailedCount)
		assert.NotNil(t, c.FinishedAt)
	})

	t.Run("total failure marks campaign failed", func(t *testing.T) {
		c := newDraftCampaign(t)
		require.NoError(t, c.Enqueue())
		require.NoError(t, c.Start())
		require.NoError(t, c.Finish(0, 50, "provider rejected sender"))
		assert.Equal(t, CampaignStatusFailed, c.Status)
	})

	t.Run("cannot start without queueing", func(t *testing.T) {
		c := newDraftCampaign(t)
		assert.Error(t, c.Start())
	})

	t.Run("schedule then enqueue", func(t *testing.T) {
		c := newDraftCampaign(t)
		require.NoError(t, c.Schedule(time.Now().Add(time.Hour)))
		assert.Equal(t, CampaignStatusScheduled, c.Status)
		require.NoError(t, c.Enqueue())
	})

	t.Run("rejects past schedule", func(t *testing.T) {
		c := newDraftCampaign(t)
		assert.Error(t, c.Schedule(time.Now().Add(-time.Hour)))
	})

	t.Run("cancel before sending only", func(t *testing.T) {
		c := newDraftCampaign(t)
		require.NoError(t, c.Enqueue())
		require.NoError(t, c.Cancel())

		c2 := newDraftCampaign(t)
		require.NoError(t, c2.Enqueue())
		require.NoError(t, c2.Start())
		assert.Error(t, c2.Cancel())
	})

	t.Run("sending campaign is not editable", func(t *testing.T) {
		c := newDraftCampaign(t)
		require.NoError(t, c.Enqueue())
		require.NoError(t, c.Start())
		assert.Error(t, c.SetSender("Ops", "ops@agency.io"))
	})
}
