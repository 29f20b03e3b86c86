package crm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrganization(t *testing.T) {
	t.Run("creates active free org", func(t *testing.T) {
		org, err := NewOrganization("Bright Pixel Agency", "Bright-Pixel")
		require.NoError(t, err)

		assert.Equal(t, "Bright Pixel Agency", org.Name)
		assert.Equal(t, "bright-pixel", org.Slug)
		assert.Equal(t, OrgPlanFree, org.Plan)
		assert.Equal(t, OrgStatusActive, org.Status)
		assert.True(t, org.IsActive())
		assert.Equal(t, 1, org.GetVersion())
	})

	t.Run("rejects bad slug", func(t *testing.T) {
		_, err := NewOrganization("X", "has spaces")
		assert.Error(t, err)

		_, err = NewOrganization("X", "-leading")
		assert.Error(t, err)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewOrganization("", "ok-slug")
		assert.Error(t, err)
	})
}

func TestOrganizationPlan(t *testing.T) {
	org, err := NewOrganization("Acme", "acme")
	require.NoError(t, err)

	require.NoError(t, org.SetPlan(OrgPlanAgency))
	assert.Equal(t, OrgPlanAgency, org.Plan)
	assert.Error(t, org.SetPlan(OrgPlan("platinum")))
}

func TestOrganizationLifecycle(t *testing.T) {
	org, err := NewOrganization("Acme", "acme")
	require.NoError(t, err)

	require.NoError(t, org.Suspend())
	assert.Equal(t, OrgStatusSuspended, org.Status)
	assert.Error(t, org.Suspend())

	require.NoError(t, org.Activate())
	assert.True(t, org.IsActive())

	require.NoError(t, org.Cancel())
	assert.Equal(t, OrgStatusCancelled, org.Status)
	assert.Error(t, org.Suspend())
	assert.Error(t, org.Cancel())
}

func TestOrganizationSettings(t *testing.T) {
	org, err := NewOrganization("Acme", "acme")
	require.NoError(t, err)

	require.NoError(t, org.SetSettings(`{"timezone":"America/Chicago"}`))
	assert.Error(t, org.SetSettings(`[1,2,3]`))

	require.NoError(t, org.SetSettings(""))
	assert.Equal(t, "{}", org.Settings)
}
