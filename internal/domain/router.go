package domain

import (
	"net"
	"net/netip"
	"net/url"
	"strings"
)

// RouterConfig holds the connection parameters of the RouterOS REST API.
// It is owned by the settings store and passed by value into the API layer.
type RouterConfig struct {
	Address  string `json:"address" validate:"required,hostname_rfc1123|ip"` // host only, the port has its own field
	Port     string `json:"port" validate:"omitempty,numeric"` // empty means the scheme default port
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	UseHttps bool   `json:"use_https"`
}

// Usable reports whether address, username and password are all set.
// A usable configuration does not imply that the router is reachable.
func (c RouterConfig) Usable() bool {
	return strings.TrimSpace(c.Address) != "" && c.Username != "" && c.Password != ""
}

// MissingFields returns the names of required fields that are empty.
func (c RouterConfig) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(c.Address) == "" {
		missing = append(missing, "address")
	}
	if c.Username == "" {
		missing = append(missing, "username")
	}
	if c.Password == "" {
		missing = append(missing, "password")
	}
	return missing
}

// Scheme returns the URL scheme used to reach the router.
func (c RouterConfig) Scheme() string {
	if c.UseHttps {
		return "https"
	}
	return "http"
}

// Host returns the host part of the router URL, including the port if one is configured.
func (c RouterConfig) Host() string {
	address := strings.TrimSpace(c.Address)
	if c.Port == "" {
		if addr, err := netip.ParseAddr(strings.Trim(address, "[]")); err == nil && addr.Is6() {
			return "[" + addr.String() + "]"
		}
		return address
	}
	return net.JoinHostPort(strings.Trim(address, "[]"), c.Port)
}

// BaseUrl returns the base URL of the REST API, basePath is appended verbatim (e.g. "/rest").
func (c RouterConfig) BaseUrl(basePath string) string {
	u := url.URL{
		Scheme: c.Scheme(),
		Host:   c.Host(),
		Path:   basePath,
	}
	return strings.TrimRight(u.String(), "/")
}

// RedactedPassword replaces a set password in API responses.
const RedactedPassword = "********"

// Redacted returns a copy without the password, suitable for API responses.
func (c RouterConfig) Redacted() RouterConfig {
	if c.Password != "" {
		c.Password = RedactedPassword
	}
	return c
}

// WireGuardDefaults are the values used to pre-fill new peers.
type WireGuardDefaults struct {
	Endpoint       string `json:"endpoint" validate:"omitempty,hostname_rfc1123|ip"`
	Port           string `json:"port" validate:"omitempty,numeric"`
	AllowedIpRange string `json:"allowed_ip_range" validate:"omitempty,cidr"`
	Dns            string `json:"dns" validate:"omitempty,iplist"`
}
