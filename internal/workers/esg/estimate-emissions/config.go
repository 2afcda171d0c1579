// internal/workers/esg/estimate-emissions/config.go
package estimateemissions

import "time"

type Config struct {
	Timeout    time.Duration
	GridFactor float64
}

func LoadConfig() *Config {
	return &Config{
		Timeout:    15 * time.Second,
		GridFactor: 0.42,
	}
}
