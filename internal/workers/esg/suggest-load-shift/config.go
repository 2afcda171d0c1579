// internal/workers/esg/suggest-load-shift/config.go
package suggestloadshift

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 20 * time.Second,
	}
}
