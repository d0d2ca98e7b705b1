package siteapi

import (
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	client *Client
	mux    *http.ServeMux
	server *httptest.Server
)

func setUp() {
	mux = http.NewServeMux()
	server = httptest.NewServer(mux)

	client, _ = NewClient(WithSiteID("site-id"), WithEnvironment("dev"))
	serverURL, _ := url.Parse(server.URL)
	client.ServerURL = serverURL
}

func tearDown() {
	server.Close()
}

func TestClientOptions(t *testing.T) {
	tests := []struct {
		name       string
		opt        ClientOption
		wantErr    bool
		assertFunc func(c *Client) bool
	}{
		{"valid http client", WithHTTPClient(http.DefaultClient), false, func(c *Client) bool { return c.client == http.DefaultClient }},
		{"nil http client", WithHTTPClient(nil), true, nil},
		{"valid server url", WithServerURL("https://foo.bar/api/v1"), false, func(c *Client) bool { return c.ServerURL.Host == "foo.bar" && c.ServerURL.Path == "/api/v1" }},
		{"invalid server url", WithServerURL("https://:foo.bar/api/v1"), true, nil},
		{"site id", WithSiteID("site-id"), false, func(c *Client) bool { return c.SiteID == "site-id" }},
		{"environment", WithEnvironment("live"), false, func(c *Client) bool { return c.Environment == "live" }},
		{"host", WithHost("dashboard.hosting.example.com"), false, func(c *Client) bool { return c.Host == "dashboard.hosting.example.com" }},
		{"session token", WithSessionToken("token"), false, func(c *Client) bool { return c.sessionToken == "token" }},
		{"nil logger", WithLogger(nil), true, nil},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c, err := NewClient(tc.opt)
			requireFunc := require.NoError
			if tc.wantErr {
				requireFunc = require.Error
			}
			requireFunc(t, err)
			if tc.assertFunc != nil {
				assert.True(t, tc.assertFunc(c))
			}
		})
	}
}

func TestDo(t *testing.T) {
	setUp()
	defer tearDown()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "site-backup-client", r.Header.Get("User-Agent"))
		assert.Equal(t, "Bearer session-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte("foo"))
	})

	client.sessionToken = "session-token"
	req, _ := client.NewRequest(http.MethodGet, "/", nil)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "foo", string(body))
}

func TestNewFormRequest(t *testing.T) {
	setUp()
	defer tearDown()

	form := url.Values{}
	form.Set("method", "get")
	req, err := client.NewFormRequest("/sign", form)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))
}

func TestIsOnebox(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"dashboard.hosting.example.com", false},
		{"onebox.hosting.example.com", true},
		{"dev-onebox.internal", true},
		{"", false},
	}
	for _, tc := range tests {
		c, err := NewClient(WithHost(tc.host))
		require.NoError(t, err)
		assert.Equal(t, tc.want, c.IsOnebox())
	}
}
