// ABOUTME: Scripted LLM client for tests that never touch the network
// ABOUTME: Replies are chosen by a function of the prompt and every prompt is recorded
package llmtest

import (
	"context"
	"strings"
	"sync"
)

// Client answers prompts with a caller-supplied function
type Client struct {
	mu      sync.Mutex
	respond func(prompt string) (string, error)
	prompts []string
}

// New creates a Client driven by respond
func New(respond func(prompt string) (string, error)) *Client {
	return &Client{respond: respond}
}

// Fixed creates a Client that always returns resp
func Fixed(resp string) *Client {
	return New(func(string) (string, error) { return resp, nil })
}

// Failing creates a Client whose every call returns err
func Failing(err error) *Client {
	return New(func(string) (string, error) { return "", err })
}

// Complete records the prompt and returns the scripted reply
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.mu.Lock()
	c.prompts = append(c.prompts, prompt)
	c.mu.Unlock()
	return c.respond(prompt)
}

// Model implements llm.Named
func (c *Client) Model() string {
	return "scripted"
}

// Prompts returns a copy of every prompt received
func (c *Client) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.prompts...)
}

// CountContaining returns how many prompts contained substr
func (c *Client) CountContaining(substr string) int {
	n := 0
	for _, p := range c.Prompts() {
		if strings.Contains(p, substr) {
			n++
		}
	}
	return n
}
