package server

import "strings"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// Domain is the public domain used when building map and set urls
	// (e.g. "example.com" yields https://osu.example.com/b/123).
	Domain string `mapstructure:"domain" default:"localhost"`
}

// IsValidDomain checks if the configured domain is usable for url building.
func (c Config) IsValidDomain() bool {
	if c.Domain == "" {
		return false
	}
	return !strings.Contains(c.Domain, "/") && !strings.Contains(c.Domain, "://")
}
