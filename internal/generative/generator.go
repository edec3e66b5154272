// Package generative talks to the text-generation service. The service is
// treated as a black box: given a prompt it returns text or fails.
package generative

import (
	"context"
	"errors"
)

// ErrDisabled is returned by Disabled.
var ErrDisabled = errors.New("generative service disabled")

// Usage is the token accounting of one generation.
type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// Response is the outcome of a generation. Data is set when the service
// returned an already-decoded object instead of text; like Content it is
// only read when Success is set.
type Response struct {
	RequestID string
	Success   bool
	Content   string
	Data      map[string]any
	Usage     *Usage
	Model     string
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*Response, error)
}

// Disabled is a Generator that always fails with ErrDisabled.
type Disabled struct{}

// Generate implements Generator.
func (Disabled) Generate(context.Context, string) (*Response, error) {
	return nil, ErrDisabled
}

// Static is a Generator that returns a fixed response. It is used by the
// CLI to replay saved output and by tests.
type Static struct {
	Response *Response
	Err      error
}

// Generate implements Generator.
func (s Static) Generate(ctx context.Context, _ string) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Response, nil
}
