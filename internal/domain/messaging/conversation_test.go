package messaging

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openConversation(t *testing.T) *Conversation {
	t.Helper()
	c, err := NewConversation(uuid.New(), uuid.New(), "Kickoff questions")
	require.NoError(t, err)
	return c
}

func TestNewConversation(t *testing.T) {
	c := openConversation(t)
	assert.Equal(t, ConversationStatusOpen, c.Status)
	assert.Nil(t, c.LastMessageAt)

	_, err := NewConversation(uuid.New(), uuid.Nil, "X")
	assert.Error(t, err)

	_, err = NewConversation(uuid.New(), uuid.New(), "")
	assert.Error(t, err)
}

func TestPostMessage(t *testing.T) {
	t.Run("updates last message time", func(t *testing.T) {
		c := openConversation(t)
		sender := uuid.New()

		msg, err := c.PostMessage(sender, "Hello, when do we start?")
		require.NoError(t, err)

		assert.Equal(t, c.ID, msg.ConversationID)
		assert.Equal(t, sender, msg.SenderID)
		assert.Nil(t, msg.ReadAt)
		assert.NotNil(t, c.LastMessageAt)
	})

	t.Run("posting reopens a closed thread", func(t *testing.T) {
		c := openConversation(t)
		require.NoError(t, c.Close())

		_, err := c.PostMessage(uuid.New(), "One more thing")
		require.NoError(t, err)
		assert.Equal(t, ConversationStatusOpen, c.Status)
		assert.Nil(t, c.ClosedAt)
	})

	t.Run("rejects empty body", func(t *testing.T) {
		c := openConversation(t)
		_, err := c.PostMessage(uuid.New(), "")
		assert.Error(t, err)
	})

	t.Run("rejects oversized body", func(t *testing.T) {
		c := openConversation(t)
		_, err := c.PostMessage(uuid.New(), strings.Repeat("a", MaxMessageLength+1))
		assert.Error(t, err)
	})
}

func TestConversationCloseReopen(t *testing.T) {
	c := openConversation(t)

	require.NoError(t, c.Close())
	assert.Equal(t, ConversationStatusClosed, c.Status)
	assert.NotNil(t, c.ClosedAt)
	assert.Error(t, c.Close())

	require.NoError(t, c.Reopen())
	assert.Equal(t, ConversationStatusOpen, c.Status)
	assert.Nil(t, c.ClosedAt)
	assert.Error(t, c.Reopen())
}

func TestMessageMarkRead(t *testing.T) {
	c := openConversation(t)
	msg, err := c.PostMessage(uuid.New(), "hello")
	require.NoError(t, err)

	msg.MarkRead()
	require.NotNil(t, msg.ReadAt)
	first := *msg.ReadAt

	msg.MarkRead()
	assert.Equal(t, first, *msg.ReadAt)
}
