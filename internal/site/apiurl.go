// Package site holds the presentation settings the HomeSwift frontends
// read from the API: base URL selection, layout metadata, navigation,
// card classes and theme tokens.
package site

import (
	"net"
	"strings"
)

// Default API endpoints
const (
	DefaultDevelopmentAPIURL = "http://127.0.0.1:5001"
	DefaultProductionAPIURL  = "https://house-hero-backend.onrender.com"
)

// APIEndpoints selects the API base URL for a browser hostname
type APIEndpoints struct {
	Development string
	Production  string
}

// DefaultAPIEndpoints returns the built-in endpoints
func DefaultAPIEndpoints() APIEndpoints {
	return APIEndpoints{Development: DefaultDevelopmentAPIURL, Production: DefaultProductionAPIURL}
}

// IsLocalHost reports whether hostname is one of the development hosts
func IsLocalHost(hostname string) bool {
	return hostname == "localhost" || hostname == "127.0.0.1"
}

// Select returns the development URL for localhost and 127.0.0.1 and the
// production URL for every other hostname.
func (e APIEndpoints) Select(hostname string) string {
	if IsLocalHost(hostname) {
		return e.Development
	}
	return e.Production
}

// HostnameFromHost strips the port from a Host header value
func HostnameFromHost(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return strings.Trim(h, "[]")
	}
	return strings.Trim(host, "[]")
}
