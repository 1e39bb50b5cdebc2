// internal/generation/orchestrator/config.go
package orchestrator

import (
	"strings"
	"time"

	"article-pipeline/internal/common/config"
)

var DefaultAllowedRoles = []string{"ADMIN", "EDITOR"}

type Config struct {
	AllowedRoles []string
	// JobTimeout bounds a workflow job run. HTTP runs are bounded by the
	// request context instead.
	JobTimeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{
		AllowedRoles: cfg.Auth.AllowedRoles,
		JobTimeout:   config.GetDuration(cfg.Camunda.Timeout),
	}
	if len(c.AllowedRoles) == 0 {
		c.AllowedRoles = DefaultAllowedRoles
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = config.GetDuration(cfg.Completion.Timeout) + 10*time.Second
	}
	return c
}

// RoleAllowed compares roles case-insensitively.
func (c *Config) RoleAllowed(role string) bool {
	role = strings.TrimSpace(role)
	if role == "" {
		return false
	}
	for _, allowed := range c.AllowedRoles {
		if strings.EqualFold(allowed, role) {
			return true
		}
	}
	return false
}
