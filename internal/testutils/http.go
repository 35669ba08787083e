package testutils

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

var csrfPattern = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

// TestServer wraps httptest.Server with a cookie-carrying client so a
// test can walk a session through several pages the way a browser would.
type TestServer struct {
	*httptest.Server
	t      *testing.T
	client *http.Client
	bare   *http.Client
}

func NewTestServer(t *testing.T, handler http.Handler) *TestServer {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &TestServer{
		Server: server,
		t:      t,
		client: &http.Client{Jar: jar},
		bare: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// GET fetches a page, following redirects.
func (ts *TestServer) GET(path string) *http.Response {
	resp, err := ts.client.Get(ts.URL + path)
	require.NoError(ts.t, err)
	return resp
}

// GETNoRedirect fetches a page and stops at the first response.
func (ts *TestServer) GETNoRedirect(path string) *http.Response {
	resp, err := ts.bare.Get(ts.URL + path)
	require.NoError(ts.t, err)
	return resp
}

// PostForm submits a form, following redirects.
func (ts *TestServer) PostForm(path string, form url.Values) *http.Response {
	resp, err := ts.client.PostForm(ts.URL+path, form)
	require.NoError(ts.t, err)
	return resp
}

// PostFormNoRedirect submits a form and stops at the first response.
func (ts *TestServer) PostFormNoRedirect(path string, form url.Values) *http.Response {
	resp, err := ts.bare.PostForm(ts.URL+path, form)
	require.NoError(ts.t, err)
	return resp
}

// Body drains and closes the response body.
func (ts *TestServer) Body(resp *http.Response) string {
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(ts.t, err)
	return string(b)
}

// CSRFToken fetches a page and scrapes the hidden form token from it.
func (ts *TestServer) CSRFToken(path string) string {
	body := ts.Body(ts.GET(path))
	m := csrfPattern.FindStringSubmatch(body)
	require.Len(ts.t, m, 2, "no csrf token on %s", path)
	return m[1]
}
