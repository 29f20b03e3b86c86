package ai

import "context"

// DisabledClient refuses all completions. It stands in for the OpenAI
// client when the assistant is not configured.
type DisabledClient struct{}

// NewDisabledClient creates an assistant that is always off
func NewDisabledClient() *DisabledClient {
	return &DisabledClient{}
}

// Complete always fails with ErrAssistantDisabled
func (c *DisabledClient) Complete(_ context.Context, _, _ string) (string, error) {
	return "", ErrAssistantDisabled
}
