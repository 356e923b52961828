package generic

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/misc"
)

// Setup reads the api key from apiKeyEnv. url may be empty if the URL has
// already been set via SetURL.
func (c *Completer) Setup(apiKeyEnv, url, debugEnv string) error {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return fmt.Errorf("environment variable '%v' not set", apiKeyEnv)
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: 120 * time.Second}
	}
	if c.limiter == nil {
		rl := NewRateLimiter("x-ratelimit-remaining-tokens", "x-ratelimit-reset-tokens")
		c.limiter = &rl
	}
	c.apiKey = apiKey
	if c.url == "" {
		c.url = url
	}

	if misc.Truthy(os.Getenv("DEBUG")) || misc.Truthy(os.Getenv(debugEnv)) {
		c.debug = true
	}
	return nil
}

// SetURL overrides the endpoint, used for tests and compatible vendors.
func (c *Completer) SetURL(url string) {
	c.url = url
}
