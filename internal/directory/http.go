package directory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"sitedirectory/internal/domain"
)

const (
	acceptHeader = "application/json;odata=nometadata"
	// maxBodyBytes bounds how much of a response body is read
	maxBodyBytes = 16 << 20
)

// HTTPConfig configures the REST directory client
type HTTPConfig struct {
	// Token is sent as a bearer token on every request; empty disables the header
	Token string
	// RequestTimeout bounds each individual request; zero means no per-request cap
	RequestTimeout time.Duration
	// UserAgent identifies the client to the directory
	UserAgent string
}

// DefaultHTTPConfig returns sensible defaults
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		RequestTimeout: 15 * time.Second,
		UserAgent:      "sitedir/1.0",
	}
}

// HTTPClient implements Client against the directory's REST endpoints
type HTTPClient struct {
	config HTTPConfig
	http   *http.Client
	log    zerolog.Logger
}

// NewHTTPClient creates a REST directory client. A nil httpClient uses http.DefaultClient.
func NewHTTPClient(httpClient *http.Client, config HTTPConfig, logger zerolog.Logger) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{
		config: config,
		http:   httpClient,
		log:    logger.With().Str("component", "directory").Logger(),
	}
}

// ListHubs implements Client
func (c *HTTPClient) ListHubs(ctx context.Context, scope string) ([]HubEntry, error) {
	body, err := c.get(ctx, "list hubs", endpoint(scope, "/_api/HubSites", nil))
	if err != nil {
		return nil, err
	}
	return decodeHubList(body)
}

// GetWebIdentity implements Client
func (c *HTTPClient) GetWebIdentity(ctx context.Context, siteURL string) (domain.WebIdentity, error) {
	q := url.Values{}
	q.Set("$select", "Id,HubSiteId")
	body, err := c.get(ctx, "web identity", endpoint(siteURL, "/_api/web", q))
	if err != nil {
		return domain.WebIdentity{}, err
	}
	return decodeWebIdentity(body)
}

// GetDeclaredAssociations implements Client
func (c *HTTPClient) GetDeclaredAssociations(ctx context.Context, hubURL string) (EncodedHubData, error) {
	body, err := c.get(ctx, "hub site data", endpoint(hubURL, "/_api/web/HubSiteData", nil))
	if err != nil {
		return "", err
	}
	return decodeHubSiteData(body)
}

// SearchByAffiliation implements Client
func (c *HTTPClient) SearchByAffiliation(ctx context.Context, q SearchQuery) ([]domain.SearchRow, error) {
	body, err := c.get(ctx, "search", SearchURL(q))
	if err != nil {
		return nil, err
	}
	return decodeSearchRows(body)
}

// AffiliationQuery builds the KQL text selecting a hub's member sites
func AffiliationQuery(hubID, excludeURL string) string {
	return fmt.Sprintf(`DepartmentId:"%s" AND contentclass:STS_Site AND -Path:"%s"`, hubID, excludeURL)
}

// SearchURL builds the search endpoint URL for q
func SearchURL(q SearchQuery) string {
	params := url.Values{}
	params.Set("querytext", "'"+AffiliationQuery(q.HubID, q.ExcludeURL)+"'")
	params.Set("selectproperties", "'Title,Path,SiteId'")
	params.Set("rowlimit", strconv.Itoa(q.Limit()))
	return endpoint(q.Scope, "/_api/search/query", params)
}

func endpoint(base, path string, query url.Values) string {
	u := strings.TrimRight(strings.TrimSpace(base), "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *HTTPClient) get(ctx context.Context, op, target string) ([]byte, error) {
	if c.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.RequestTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &FetchFailed{Op: op, URL: target, Message: err.Error(), Err: err}
	}
	req.Header.Set("Accept", acceptHeader)
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "request timed out"
		}
		return nil, &FetchFailed{Op: op, URL: target, Message: msg, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &FetchFailed{Op: op, URL: target, Status: resp.StatusCode, Message: "read body: " + err.Error(), Err: err}
	}

	c.log.Debug().
		Str("op", op).
		Str("url", target).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("directory request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchFailed{Op: op, URL: target, Status: resp.StatusCode, Message: statusMessage(resp, body)}
	}
	return body, nil
}

const maxDetailBytes = 200

// truncateRunes cuts s to at most n bytes without splitting a UTF-8 sequence
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func statusMessage(resp *http.Response, body []byte) string {
	msg := http.StatusText(resp.StatusCode)
	detail := strings.TrimSpace(string(body))
	detail = truncateRunes(detail, maxDetailBytes)
	if detail != "" {
		msg += ": " + detail
	}
	return msg
}
