package utils

import (
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
)

// PingService checks if a service is reachable at the given URL
func PingService(serviceURL string, timeout time.Duration) error {
	parsedURL, err := url.Parse(serviceURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	host := parsedURL.Hostname()
	port := parsedURL.Port()

	// Default ports if not specified
	if port == "" {
		switch parsedURL.Scheme {
		case "https":
			port = "443"
		default:
			port = "80"
		}
	}

	address := net.JoinHostPort(host, port)

	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	defer conn.Close()

	return nil
}

// ProbeHTTP issues a GET to serviceURL and expects a 2xx response.
func ProbeHTTP(serviceURL string, timeout time.Duration) error {
	if err := PingService(serviceURL, timeout); err != nil {
		return err
	}

	agent := fiber.Get(serviceURL).Timeout(timeout)
	code, _, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("request to %s failed: %w", serviceURL, errs[0])
	}
	if code < 200 || code > 299 {
		return fmt.Errorf("%s responded with status %d", serviceURL, code)
	}
	return nil
}
