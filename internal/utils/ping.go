package utils

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// ServiceAddress resolves a URL, or a bare host:port, to a dialable
// address. Missing ports default from the scheme.
func ServiceAddress(serviceURL string) (string, error) {
	if !strings.Contains(serviceURL, "://") {
		if _, _, err := net.SplitHostPort(serviceURL); err == nil {
			return serviceURL, nil
		}
		serviceURL = "http://" + serviceURL
	}

	parsedURL, err := url.Parse(serviceURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	host := parsedURL.Hostname()
	if host == "" {
		return "", fmt.Errorf("invalid URL: no host in %q", serviceURL)
	}

	port := parsedURL.Port()
	if port == "" {
		switch parsedURL.Scheme {
		case "https":
			port = "443"
		default:
			port = "80"
		}
	}

	return net.JoinHostPort(host, port), nil
}

// PingService opens a TCP connection to the service and reports how long
// the connect took.
func PingService(ctx context.Context, serviceURL string, timeout time.Duration) (time.Duration, error) {
	address, err := ServiceAddress(serviceURL)
	if err != nil {
		return 0, err
	}

	dialer := net.Dialer{Timeout: timeout}
	start := time.Now()
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return 0, fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	defer conn.Close()

	return time.Since(start), nil
}
