package config

import "strings"

// WebConfig contains the configuration for the web server.
type WebConfig struct {
	// RequestLogging enables logging of all HTTP requests.
	RequestLogging bool `yaml:"request_logging"`
	// ExposeHostInfo sets whether the host information should be exposed in a response header.
	ExposeHostInfo bool `yaml:"expose_host_info"`
	// ExternalUrl is the URL where a client can access the portal.
	ExternalUrl string `yaml:"external_url"`
	// ListeningAddress is the address and port for the web server.
	ListeningAddress string `yaml:"listening_address"`
	// AllowedOrigins restricts the CORS origins of the API. Empty allows all origins.
	AllowedOrigins []string `yaml:"allowed_origins"`
	// CertFile is the path to the TLS certificate file.
	CertFile string `yaml:"cert_file"`
	// KeyFile is the path to the TLS certificate key file.
	KeyFile string `yaml:"key_file"`
}

func (c *WebConfig) Sanitize() {
	c.ExternalUrl = strings.TrimRight(c.ExternalUrl, "/")
}

// LocalUrl returns the external URL or, if unset, a loopback URL derived from the listening address.
func (c *WebConfig) LocalUrl() string {
	if c.ExternalUrl != "" {
		return c.ExternalUrl
	}

	scheme := "http"
	if c.CertFile != "" && c.KeyFile != "" {
		scheme = "https"
	}
	address := c.ListeningAddress
	if strings.HasPrefix(address, ":") {
		address = "127.0.0.1" + address
	}
	return scheme + "://" + address
}
