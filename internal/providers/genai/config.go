// internal/providers/genai/config.go
package genai

import "time"

type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}
