package authsdk

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// SDKClient is a client for the MiniPro authentication service. The session
// cookie set by Login is kept in the HTTP client's cookie jar and sent on
// later requests.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a client with its own cookie jar. Redirects are not
// followed so that the redirects issued by /logout and /secrets surface as
// *APIError values.
func NewSDKClient(baseURL string) *SDKClient {
	jar, _ := cookiejar.New(nil) // only fails for a non-nil options argument

	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// SessionCookie returns the session cookie currently held for the service, if
// any.
func (c *SDKClient) SessionCookie(name string) (*http.Cookie, bool) {
	if c.HTTPClient.Jar == nil {
		return nil, false
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, false
	}
	for _, ck := range c.HTTPClient.Jar.Cookies(u) {
		if ck.Name == name {
			return ck, true
		}
	}
	return nil, false
}
