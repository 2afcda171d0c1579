// internal/workers/regulatory/infer-requirements/config.go
package inferrequirements

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 60 * time.Second,
	}
}
