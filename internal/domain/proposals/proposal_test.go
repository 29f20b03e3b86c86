package proposals

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draftProposal(t *testing.T) *Proposal {
	t.Helper()
	p, err := NewProposal(uuid.New(), uuid.New(), "Brand Refresh", "Scope and pricing below.")
	require.NoError(t, err)
	return p
}

func TestNewProposal(t *testing.T) {
	t.Run("creates draft", func(t *testing.T) {
		p := draftProposal(t)
		assert.Equal(t, ProposalStatusDraft, p.Status)
		assert.Empty(t, p.AcceptToken)
		assert.True(t, p.Total().IsZero())
	})

	t.Run("rejects missing contact", func(t *testing.T) {
		_, err := NewProposal(uuid.New(), uuid.Nil, "X", "")
		assert.Error(t, err)
	})
}

func TestProposalItems(t *testing.T) {
	p := draftProposal(t)

	require.NoError(t, p.AddItem("Design sprint", decimal.NewFromInt(2), decimal.NewFromInt(1500)))
	require.NoError(t, p.AddItem("Development", decimal.NewFromInt(40), decimal.NewFromFloat(125.50)))

	// 2*1500 + 40*125.50 = 8020
	assert.True(t, p.Total().Equal(decimal.NewFromInt(8020)), "got %s", p.Total())
	assert.Equal(t, 0, p.Items[0].Position)
	assert.Equal(t, 1, p.Items[1].Position)

	t.Run("remove renumbers", func(t *testing.T) {
		require.NoError(t, p.RemoveItem(p.Items[0].ID))
		require.Len(t, p.Items, 1)
		assert.Equal(t, 0, p.Items[0].Position)
		assert.Equal(t, "Development", p.Items[0].Description)
	})

	t.Run("remove unknown item", func(t *testing.T) {
		assert.Error(t, p.RemoveItem(uuid.New()))
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		assert.Error(t, p.AddItem("Free", decimal.Zero, decimal.NewFromInt(10)))
	})

	t.Run("rejects negative price", func(t *testing.T) {
		assert.Error(t, p.AddItem("Discount", decimal.NewFromInt(1), decimal.NewFromInt(-5)))
	})
}

func TestProposalSend(t *testing.T) {
	t.Run("sending mints a token", func(t *testing.T) {
		p := draftProposal(t)
		require.NoError(t, p.AddItem("Work", decimal.NewFromInt(1), decimal.NewFromInt(100)))
		require.NoError(t, p.Send(nil))

		assert.Equal(t, ProposalStatusSent, p.Status)
		assert.Len(t, p.AcceptToken, AcceptTokenBytes*2)
		assert.NotNil(t, p.SentAt)
	})

	t.Run("tokens are unique", func(t *testing.T) {
		a := draftProposal(t)
		require.NoError(t, a.AddItem("W", decimal.NewFromInt(1), decimal.NewFromInt(1)))
		require.NoError(t, a.Send(nil))

		b := draftProposal(t)
		require.NoError(t, b.AddItem("W", decimal.NewFromInt(1), decimal.NewFromInt(1)))
		require.NoError(t, b.Send(nil))

		assert.NotEqual(t, a.AcceptToken, b.AcceptToken)
	})

	t.Run("empty proposal cannot be sent", func(t *testing.T) {
		p := draftProposal(t)
		assert.Error(t, p.Send(nil))
	})

	t.Run("cannot send twice", func(t *testing.T) {
		p := draftProposal(t)
		require.NoError(t, p.AddItem("W", decimal.NewFromInt(1), decimal.NewFromInt(1)))
		require.NoError(t, p.Send(nil))
		assert.Error(t, p.Send(nil))
	})

	t.Run("rejects past expiry", func(t *testing.T) {
		p := draftProposal(t)
		require.NoError(t, p.AddItem("W", decimal.NewFromInt(1), decimal.NewFromInt(1)))
		past := time.Now().Add(-time.Hour)
		assert.Error(t, p.Send(&past))
	})

	t.Run("sent proposal is frozen", func(t *testing.T) {
		p := draftProposal(t)
		require.NoError(t, p.AddItem("W", decimal.NewFromInt(1), decimal.NewFromInt(1)))
		require.NoError(t, p.Send(nil))
		assert.Error(t, p.AddItem("More", decimal.NewFromInt(1), decimal.NewFromInt(1)))
		assert.Error(t, p.Update("New title", ""))
	})
}

func TestProposalDecision(t *testing.T) {
	sent := func(t *testing.T) *Proposal {
		p := draftProposal(t)
		require.NoError(t, p.AddItem("W", decimal.NewFromInt(1), decimal.NewFromInt(500)))
		require.NoError(t, p.Send(nil))
		return p
	}

	t.Run("accept after view", func(t *testing.T) {
		p := sent(t)
		p.MarkViewed()
		assert.Equal(t, ProposalStatusViewed, p.Status)
		assert.NotNil(t, p.ViewedAt)

		require.NoError(t, p.Accept())
		assert.Equal(t, ProposalStatusAccepted, p.Status)
		assert.NotNil(t, p.DecidedAt)
		assert.True(t, p.IsDecided())
	})

	t.Run("repeat views are no-ops", func(t *testing.T) {
		p := sent(t)
		p.MarkViewed()
		first := *p.ViewedAt
		p.MarkViewed()
		assert.Equal(t, first, *p.ViewedAt)
	})

	t.Run("decline with reason", func(t *testing.T) {
		p := sent(t)
		require.NoError(t, p.Decline("over budget"))
		assert.Equal(t, ProposalStatusDeclined, p.Status)
		assert.Equal(t, "over budget", p.DeclineMsg)
	})

	t.Run("decided proposals reject further decisions", func(t *testing.T) {
		p := sent(t)
		require.NoError(t, p.Accept())
		assert.Error(t, p.Accept())
		assert.Error(t, p.Decline(""))
	})

	t.Run("draft cannot be decided", func(t *testing.T) {
		p := draftProposal(t)
		assert.Error(t, p.Accept())
	})

	t.Run("expired proposal cannot be accepted", func(t *testing.T) {
		p := sent(t)
		past := time.Now().Add(-time.Minute)
		p.ExpiresAt = &past
		assert.Error(t, p.Accept())
		require.NoError(t, p.Expire())
		assert.Equal(t, ProposalStatusExpired, p.Status)
	})
}

func TestNewAttachment(t *testing.T) {
	orgID := uuid.New()
	proposalID := uuid.New()

	t.Run("builds namespaced storage key", func(t *testing.T) {
		a, err := NewAttachment(orgID, proposalID, "scope.pdf", "application/pdf", 1024)
		require.NoError(t, err)
		assert.Contains(t, a.StorageKey, orgID.String())
		assert.Contains(t, a.StorageKey, proposalID.String())
		assert.Contains(t, a.StorageKey, "scope.pdf")
	})

	t.Run("strips path components", func(t *testing.T) {
		a, err := NewAttachment(orgID, proposalID, "../../etc/passwd.pdf", "application/pdf", 10)
		require.NoError(t, err)
		assert.Equal(t, "passwd.pdf", a.FileName)
	})

	t.Run("rejects oversize file", func(t *testing.T) {
		_, err := NewAttachment(orgID, proposalID, "big.zip", "application/zip", MaxAttachmentSize+1)
		assert.Error(t, err)
	})

	t.Run("rejects executable type", func(t *testing.T) {
		_, err := NewAttachment(orgID, proposalID, "x.exe", "application/x-msdownload", 10)
		assert.Error(t, err)
	})
}
