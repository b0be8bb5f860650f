package workdrive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/driveport/workdrive_sdk_go/internal/httpx"
)

const (
	// DefaultBaseURL is the WorkDrive API host.
	DefaultBaseURL = "https://www.zohoapis.com/workdrive"
	// DefaultDownloadBaseURL is the host serving binary file content.
	DefaultDownloadBaseURL = "https://download.zoho.com"

	// MaxUploadBytes is the upper bound enforced client-side before any
	// upload call is issued.
	MaxUploadBytes = 250 << 20

	acceptContentType = "application/vnd.api+json"

	// roleIDViewer is the fixed WorkDrive role id granting view access.
	roleIDViewer = 34
	// statusTrashed is the status value that moves a resource to the trash.
	statusTrashed = "51"
)

type verb int

const (
	verbGet verb = iota
	verbPost
	verbPatch
	verbDelete
)

// verbMethods routes each verb to its transport method.
var verbMethods = map[verb]string{
	verbGet:    http.MethodGet,
	verbPost:   http.MethodPost,
	verbPatch:  http.MethodPatch,
	verbDelete: http.MethodDelete,
}

// Client implements filesystem-style storage operations on the WorkDrive
// REST API. It holds no mutable state; concurrent use is safe as long as
// the supplied TokenProvider is.
type Client struct {
	api      *httpx.Client
	download *httpx.Client
	tokens   TokenProvider
	detect   MimeDetector
	log      zerolog.Logger
}

type clientConfig struct {
	baseURL     string
	downloadURL string
	httpClient  *http.Client
	detect      MimeDetector
	log         zerolog.Logger
}

// Option configures a Client.
type Option func(*clientConfig)

// WithBaseURL overrides the API host.
func WithBaseURL(u string) Option {
	return func(c *clientConfig) { c.baseURL = u }
}

// WithDownloadBaseURL overrides the host used for binary downloads.
func WithDownloadBaseURL(u string) Option {
	return func(c *clientConfig) { c.downloadURL = u }
}

// WithHTTPClient overrides the underlying HTTP client; timeouts and proxy
// behaviour belong there, the adapter adds none of its own.
func WithHTTPClient(h *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = h }
}

// WithMimeDetector overrides the filename-based MIME detector.
func WithMimeDetector(d MimeDetector) Option {
	return func(c *clientConfig) {
		if d != nil {
			c.detect = d
		}
	}
}

// WithLogger attaches a logger; exchanges are reported at debug level.
func WithLogger(log zerolog.Logger) Option {
	return func(c *clientConfig) { c.log = log }
}

// New constructs a Client using the supplied token provider.
func New(tokens TokenProvider, opts ...Option) (*Client, error) {
	if tokens == nil {
		return nil, errors.New("workdrive: token provider is required")
	}

	cfg := clientConfig{
		baseURL:     DefaultBaseURL,
		downloadURL: DefaultDownloadBaseURL,
		detect:      ExtensionDetector{},
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	hopts := []httpx.Option{httpx.WithLogger(cfg.log)}
	if cfg.httpClient != nil {
		hopts = append(hopts, httpx.WithHTTPClient(cfg.httpClient))
	}

	api, err := httpx.NewClient(cfg.baseURL, hopts...)
	if err != nil {
		return nil, fmt.Errorf("workdrive: init API client: %w", err)
	}
	download, err := httpx.NewClient(cfg.downloadURL, hopts...)
	if err != nil {
		return nil, fmt.Errorf("workdrive: init download client: %w", err)
	}

	return &Client{
		api:      api,
		download: download,
		tokens:   tokens,
		detect:   cfg.detect,
		log:      cfg.log,
	}, nil
}

// do issues a single authenticated exchange through the given transport.
// A fresh token is requested for every call; the response comes back for
// any status code.
func (c *Client) do(ctx context.Context, transport *httpx.Client, v verb, path string, body io.Reader, contentType string) (*http.Response, error) {
	method, ok := verbMethods[v]
	if !ok {
		return nil, fmt.Errorf("workdrive: unsupported verb %d", v)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("workdrive: acquire token: %w", err)
	}

	hdr := make(http.Header)
	hdr.Set("Accept", acceptContentType)
	hdr.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		hdr.Set("Content-Type", contentType)
	}

	return transport.Do(ctx, &httpx.Request{
		Method: method,
		Path:   path,
		Header: hdr,
		Body:   body,
	})
}

// doJSON issues an API exchange carrying an optional JSON payload.
func (c *Client) doJSON(ctx context.Context, v verb, path string, payload any) (*http.Response, error) {
	if payload == nil {
		return c.do(ctx, c.api, v, path, nil, "")
	}
	body, contentType, err := httpx.WithJSONBody(payload)
	if err != nil {
		return nil, fmt.Errorf("workdrive: encode request body: %w", err)
	}
	return c.do(ctx, c.api, v, path, body, contentType)
}

func filePath(id string) string {
	return "/api/v1/files/" + url.PathEscape(id)
}
