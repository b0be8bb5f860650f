package workdrive

import (
	"fmt"
	"os"
	"strings"
)

const (
	envAPIURL      = "WORKDRIVE_API_URL"
	envDownloadURL = "WORKDRIVE_DOWNLOAD_URL"
	envAccessToken = "WORKDRIVE_ACCESS_TOKEN"
)

// NewFromEnv initialises a Client from WORKDRIVE_* environment variables.
// WORKDRIVE_ACCESS_TOKEN is required and backs a StaticToken provider; the
// URL variables default to the production hosts when unset.
func NewFromEnv(opts ...Option) (*Client, error) {
	token := strings.TrimSpace(os.Getenv(envAccessToken))
	if token == "" {
		return nil, fmt.Errorf("workdrive: %s is required", envAccessToken)
	}

	var all []Option
	if u := strings.TrimSpace(os.Getenv(envAPIURL)); u != "" {
		all = append(all, WithBaseURL(u))
	}
	if u := strings.TrimSpace(os.Getenv(envDownloadURL)); u != "" {
		all = append(all, WithDownloadBaseURL(u))
	}
	all = append(all, opts...)

	return New(StaticToken(token), all...)
}
