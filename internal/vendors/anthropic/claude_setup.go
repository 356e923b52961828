package anthropic

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/baalimago/webagent/internal/text/generic"
)

func (c *Claude) Setup() error {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("environment variable 'ANTHROPIC_API_KEY' not set")
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: 120 * time.Second}
	}
	if c.Url == "" {
		c.Url = ClaudeURL
	}
	if c.AnthropicVersion == "" {
		c.AnthropicVersion = "2023-06-01"
	}
	c.apiKey = apiKey
	rl := generic.NewRateLimiter("anthropic-ratelimit-input-tokens-remaining", "anthropic-ratelimit-input-tokens-reset")
	c.limiter = &rl
	if misc.Truthy(os.Getenv("DEBUG")) || misc.Truthy(os.Getenv("ANTHROPIC_DEBUG")) {
		c.debug = true
	}
	return nil
}
