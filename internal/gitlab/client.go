package gitlab

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gitlab-tools/token-monitor/params"
)

// Client issues authenticated requests against the GitLab v4 admin API.
// It performs no retries and keeps no state between calls.
type Client struct {
	baseURL    string
	adminToken string
	httpClient *http.Client
}

func NewClient(baseURL string, adminToken string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		adminToken: adminToken,
		httpClient: &http.Client{Timeout: params.HTTPRequestTimeout},
	}
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + "/api/v4" + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("PRIVATE-TOKEN", c.adminToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Endpoint: path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthError{StatusCode: resp.StatusCode, Endpoint: path}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &TransportError{Endpoint: path, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Endpoint: path, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

// getPaged follows page-parameter pagination until the API returns an empty
// page. Zero records overall is a legitimate outcome, not an error.
func getPaged[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	var all []T
	for page := 1; ; page++ {
		q := url.Values{}
		for key, vals := range query {
			q[key] = vals
		}
		q.Set("per_page", strconv.Itoa(params.APIPerPage))
		q.Set("page", strconv.Itoa(page))

		var batch []T
		if err := c.getJSON(ctx, path, q, &batch); err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			return all, nil
		}
		all = append(all, batch...)
	}
}

func (c *Client) PersonalAccessTokens(ctx context.Context) ([]PersonalTokenRecord, error) {
	return getPaged[PersonalTokenRecord](ctx, c, "/personal_access_tokens", nil)
}

func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	return getPaged[Project](ctx, c, "/projects", url.Values{"simple": {"true"}})
}

func (c *Client) ProjectAccessTokens(ctx context.Context, projectID int64) ([]ResourceTokenRecord, error) {
	path := fmt.Sprintf("/projects/%d/access_tokens", projectID)
	return getPaged[ResourceTokenRecord](ctx, c, path, nil)
}

func (c *Client) Groups(ctx context.Context) ([]Group, error) {
	return getPaged[Group](ctx, c, "/groups", url.Values{"simple": {"true"}, "all_available": {"true"}})
}

func (c *Client) GroupAccessTokens(ctx context.Context, groupID int64) ([]ResourceTokenRecord, error) {
	path := fmt.Sprintf("/groups/%d/access_tokens", groupID)
	return getPaged[ResourceTokenRecord](ctx, c, path, nil)
}

func (c *Client) User(ctx context.Context, userID int64) (*User, error) {
	var user User
	if err := c.getJSON(ctx, fmt.Sprintf("/users/%d", userID), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Version fetches the instance version. Used by the check command to verify
// reachability and the admin credential.
func (c *Client) Version(ctx context.Context) (*VersionInfo, error) {
	var info VersionInfo
	if err := c.getJSON(ctx, "/version", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
