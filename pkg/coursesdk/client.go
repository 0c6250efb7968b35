package coursesdk

import (
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is where the Directory Store listens in a default setup.
const DefaultBaseURL = "http://localhost:3000/api/v1"

// SDKClient is a client for the Directory Store REST API. It holds no state
// besides its configuration and is safe for concurrent use.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new Directory Store client. An empty baseURL selects
// DefaultBaseURL.
func NewSDKClient(baseURL string) *SDKClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}
