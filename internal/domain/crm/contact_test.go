package crm

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContact(t *testing.T) {
	orgID := uuid.New()

	t.Run("creates prospect with defaults", func(t *testing.T) {
		contact, err := NewContact(orgID, "Jane.Doe@Example.com", "Jane", "Doe", ContactKindProspect)
		require.NoError(t, err)

		assert.Equal(t, orgID, contact.OrgID)
		assert.Equal(t, "jane.doe@example.com", contact.Email)
		assert.Equal(t, ContactKindProspect, contact.Kind)
		assert.Equal(t, ContactRoleClient, contact.Role)
		assert.Equal(t, ContactStatusActive, contact.Status)
		assert.Empty(t, contact.PasswordHash)
		assert.False(t, contact.CanLogin())
	})

	t.Run("team contact defaults to member role", func(t *testing.T) {
		contact, err := NewContact(orgID, "dev@example.com", "Dev", "", ContactKindTeam)
		require.NoError(t, err)
		assert.Equal(t, ContactRoleMember, contact.Role)
	})

	t.Run("rejects empty org", func(t *testing.T) {
		_, err := NewContact(uuid.Nil, "a@b.co", "A", "", ContactKindProspect)
		assert.Error(t, err)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		_, err := NewContact(orgID, "not-an-email", "A", "", ContactKindProspect)
		assert.Error(t, err)
	})

	t.Run("rejects empty first name", func(t *testing.T) {
		_, err := NewContact(orgID, "a@b.co", "", "", ContactKindProspect)
		assert.Error(t, err)
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		_, err := NewContact(orgID, "a@b.co", "A", "", ContactKind("ghost"))
		assert.Error(t, err)
	})
}

func TestNewTeamMember(t *testing.T) {
	orgID := uuid.New()

	t.Run("creates member with credentials", func(t *testing.T) {
		member, err := NewTeamMember(orgID, "owner@agency.io", "Pat", "Lee", "s3cretpass", ContactRoleOwner)
		require.NoError(t, err)

		assert.Equal(t, ContactKindTeam, member.Kind)
		assert.Equal(t, ContactRoleOwner, member.Role)
		assert.NotEmpty(t, member.PasswordHash)
		assert.True(t, member.VerifyPassword("s3cretpass"))
		assert.False(t, member.VerifyPassword("wrong"))
		assert.True(t, member.CanLogin())
	})

	t.Run("rejects short password", func(t *testing.T) {
		_, err := NewTeamMember(orgID, "x@y.io", "X", "", "short", ContactRoleMember)
		assert.Error(t, err)
	})
}

func TestContactLockout(t *testing.T) {
	orgID := uuid.New()
	contact, err := NewTeamMember(orgID, "u@agency.io", "U", "", "password123", ContactRoleMember)
	require.NoError(t, err)

	for i := 0; i < MaxFailedLogins-1; i++ {
		locked := contact.RecordLoginFailure()
		assert.False(t, locked)
	}
	assert.False(t, contact.IsLocked())

	locked := contact.RecordLoginFailure()
	assert.True(t, locked)
	assert.True(t, contact.IsLocked())
	assert.False(t, contact.CanLogin())
	assert.Equal(t, 0, contact.FailedLogins)

	// Expired lock no longer blocks login
	past := time.Now().Add(-time.Minute)
	contact.LockedUntil = &past
	assert.False(t, contact.IsLocked())
	assert.True(t, contact.CanLogin())

	contact.RecordLoginSuccess()
	assert.Nil(t, contact.LockedUntil)
	assert.NotNil(t, contact.LastLoginAt)
	assert.Equal(t, 0, contact.FailedLogins)
}

func TestContactConvertToClient(t *testing.T) {
	orgID := uuid.New()

	t.Run("prospect converts", func(t *testing.T) {
		contact, _ := NewContact(orgID, "p@x.co", "P", "", ContactKindProspect)
		require.NoError(t, contact.ConvertToClient())
		assert.Equal(t, ContactKindClient, contact.Kind)
	})

	t.Run("client does not convert twice", func(t *testing.T) {
		contact, _ := NewContact(orgID, "c@x.co", "C", "", ContactKindClient)
		assert.Error(t, contact.ConvertToClient())
	})

	t.Run("team member never converts", func(t *testing.T) {
		contact, _ := NewContact(orgID, "t@x.co", "T", "", ContactKindTeam)
		assert.Error(t, contact.ConvertToClient())
	})
}

func TestContactChangeRole(t *testing.T) {
	orgID := uuid.New()

	t.Run("member may be promoted", func(t *testing.T) {
		contact, _ := NewContact(orgID, "m@x.co", "M", "", ContactKindTeam)
		require.NoError(t, contact.ChangeRole(ContactRoleAdmin))
		assert.Equal(t, ContactRoleAdmin, contact.Role)
	})

	t.Run("owner cannot be demoted", func(t *testing.T) {
		member, _ := NewTeamMember(orgID, "o@x.co", "O", "", "password123", ContactRoleOwner)
		assert.Error(t, member.ChangeRole(ContactRoleAdmin))
	})
}

func TestContactLifecycle(t *testing.T) {
	orgID := uuid.New()
	contact, err := NewContact(orgID, "life@x.co", "L", "", ContactKindClient)
	require.NoError(t, err)

	require.NoError(t, contact.Deactivate())
	assert.Equal(t, ContactStatusInactive, contact.Status)
	assert.Error(t, contact.Deactivate())

	require.NoError(t, contact.Activate())
	assert.Equal(t, ContactStatusActive, contact.Status)

	require.NoError(t, contact.Archive())
	assert.Equal(t, ContactStatusArchived, contact.Status)
	assert.Error(t, contact.Activate())

	require.NoError(t, contact.Restore())
	assert.Equal(t, ContactStatusInactive, contact.Status)
}

func TestContactTagsAndProfile(t *testing.T) {
	orgID := uuid.New()
	contact, err := NewContact(orgID, "tag@x.co", "T", "", ContactKindProspect)
	require.NoError(t, err)

	require.NoError(t, contact.SetTags(`["vip","retainer"]`))
	assert.Equal(t, `["vip","retainer"]`, contact.Tags)
	assert.Error(t, contact.SetTags(`{"not":"array"}`))

	require.NoError(t, contact.UpdateProfile("Taylor", "Nguyen", "+1 555 0100", "Acme Co"))
	assert.Equal(t, "Taylor Nguyen", contact.FullName())
}

func TestContactUpdate(t *testing.T) {
	orgID := uuid.New()
	contact, err := NewContact(orgID, "edit@x.co", "T", "", ContactKindClient)
	require.NoError(t, err)
	before := contact.Version

	require.NoError(t, contact.Update("Taylor", "Nguyen", "+1 555 0100", "Acme Co", `["vip"]`, "renewal due in March"))
	assert.Equal(t, "Taylor Nguyen", contact.FullName())
	assert.Equal(t, `["vip"]`, contact.Tags)
	assert.Equal(t, "renewal due in March", contact.Notes)
	assert.Equal(t, before+1, contact.Version, "one edit is one version bump")

	assert.Error(t, contact.Update("Taylor", "Nguyen", "", "", `{"not":"array"}`, ""))
	assert.Error(t, contact.Update("", "Nguyen", "", "", "[]", ""))
}
