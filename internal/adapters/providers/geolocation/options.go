package geolocation

import (
	"net/http"
	"time"
)

const defaultHTTPTimeout = 5 * time.Second

type options struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// Option customizes a geolocation provider
type Option func(*options)

// WithBaseURL points the provider at another endpoint, such as a self-hosted instance or a test server
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		if u := trimBaseURL(baseURL); u != "" {
			o.baseURL = u
		}
	}
}

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithTimeout bounds each outbound request
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request
func WithUserAgent(ua string) Option {
	return func(o *options) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

func applyOptions(defaultBaseURL string, opts []Option) options {
	o := options{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		userAgent:  "providermatch/1.0",
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
