// internal/providers/serpapi/config.go
package serpapi

import "time"

type Config struct {
	BaseURL    string
	APIKey     string
	Country    string
	Language   string
	MaxResults int
	Timeout    time.Duration
}
