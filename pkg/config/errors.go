package config

import "errors"

// ErrUpstreamNotConfigured aborts startup when the upstream API
// credentials are missing.
var ErrUpstreamNotConfigured = errors.New("config: UPSTREAM_BASE_URL and UPSTREAM_API_KEY are required")
