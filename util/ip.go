package util

import "fmt"

// GetHTTPHost is the base URL the host uses to reach this daemon.
func GetHTTPHost(port int) string {
	return fmt.Sprintf("http://localhost:%d", port)
}
