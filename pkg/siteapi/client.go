package siteapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultServerURLString = "https://api.live.hosting.example.com/v1"
	userAgent              = "site-backup-client"

	// oneboxMarker is the substring in the configured dashboard host that
	// identifies an onebox (internal testing) deployment.
	oneboxMarker = "onebox"
)

// Client is the client for interacting with the hosting platform API server.
type Client struct {
	client    *http.Client
	ServerURL *url.URL

	SiteID      string
	Environment string
	Host        string

	sessionToken string
	userAgent    string

	logger *zap.Logger
}

// NewClient creates a Client with given options.
func NewClient(opts ...ClientOption) (*Client, error) {
	serverURL, _ := url.Parse(defaultServerURLString)
	c := &Client{
		client: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   30 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
			Timeout: 30 * time.Second,
		},
		ServerURL: serverURL,
		userAgent: userAgent,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.logger == nil {
		c.logger = NewLog()
	}

	return c, nil
}

// ClientOption provides mechanism to configure Client.
type ClientOption func(c *Client) error

// WithHTTPClient sets the underlying HTTP client for Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) error {
		if client == nil {
			return errors.New("nil HTTP client")
		}
		c.client = client
		return nil
	}
}

// WithServerURL sets the server url for Client.
func WithServerURL(serverURL string) ClientOption {
	return func(c *Client) error {
		su, err := url.Parse(serverURL)
		if err != nil {
			return err
		}
		c.ServerURL = su
		return nil
	}
}

// WithSiteID sets the site id requests are scoped to.
func WithSiteID(siteID string) ClientOption {
	return func(c *Client) error {
		c.SiteID = siteID
		return nil
	}
}

// WithEnvironment sets the environment id requests are scoped to.
func WithEnvironment(env string) ClientOption {
	return func(c *Client) error {
		c.Environment = env
		return nil
	}
}

// WithHost sets the configured dashboard host. The host value is only
// inspected for the onebox deployment marker, it is never dialed.
func WithHost(host string) ClientOption {
	return func(c *Client) error {
		c.Host = host
		return nil
	}
}

// WithSessionToken sets the session token for Client.
func WithSessionToken(token string) ClientOption {
	return func(c *Client) error {
		c.sessionToken = token
		return nil
	}
}

// WithLogger sets the logger for Client.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) error {
		if logger == nil {
			return errors.New("nil logger")
		}
		c.logger = logger
		return nil
	}
}

// IsOnebox reports whether the configured host points at an onebox
// deployment of the platform.
func (c *Client) IsOnebox() bool {
	return strings.Contains(c.Host, oneboxMarker)
}

func (c *Client) urlStringFromRelPath(relPath string) (string, error) {
	if c.ServerURL.Path != "" && c.ServerURL.Path != "/" {
		relPath = path.Join(c.ServerURL.Path, relPath)
	}
	relURL, err := url.Parse(relPath)
	if err != nil {
		return "", err
	}

	u := c.ServerURL.ResolveReference(relURL)
	return u.String(), nil
}

// NewRequest creates a new http request with a JSON encoded body.
func (c *Client) NewRequest(method, relPath string, body interface{}) (*http.Request, error) {
	buf := new(bytes.Buffer)
	if body != nil {
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return nil, err
		}
	}

	reqURL, err := c.urlStringFromRelPath(relPath)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(method, reqURL, buf)
	if err != nil {
		return nil, err
	}

	return req, nil
}

// NewFormRequest creates a new POST http request carrying form encoded values.
func (c *Client) NewFormRequest(relPath string, form url.Values) (*http.Request, error) {
	reqURL, err := c.urlStringFromRelPath(relPath)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, reqURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return req, nil
}

// Do makes an http request.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Date", time.Now().UTC().Format(http.TimeFormat))
	if c.sessionToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.sessionToken)
	}
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.client.Do(req)
}
