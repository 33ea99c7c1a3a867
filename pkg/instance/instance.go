// Package instance names the running process for logs and probes.
package instance

import "os"

const fallbackID = "local"

// ID returns STOREFRONT_INSTANCE_ID, then the platform's dyno name, then the
// host name. It never returns an empty string.
func ID() string {
	for _, key := range []string{"STOREFRONT_INSTANCE_ID", "DYNO"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return fallbackID
}
