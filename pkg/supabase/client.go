package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Client represents a Supabase client
type Client struct {
	URL        string
	ServiceKey string
	HTTPClient *http.Client
}

// NewClient creates a new Supabase client
func NewClient(url, serviceKey string) *Client {
	return &Client{
		URL:        strings.TrimRight(url, "/"),
		ServiceKey: serviceKey,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Error is returned for any PostgREST/Auth response with status >= 400
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("supabase error (status %d): %s", e.StatusCode, e.Body)
}

// newRequest builds a request against the REST endpoint of table with the
// auth headers set. A non-empty userToken is used instead of the service key
// so that row level security applies.
func (c *Client) newRequest(ctx context.Context, method, table string, query map[string]interface{}, body interface{}, userToken string) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode body: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, fmt.Sprintf("%s/rest/v1/%s", c.URL, table), reader)
	if err != nil {
		return nil, err
	}

	if len(query) > 0 {
		q := req.URL.Query()
		for key, value := range query {
			q.Add(key, fmt.Sprintf("%v", value))
		}
		req.URL.RawQuery = q.Encode()
	}

	req.Header.Set("apikey", c.ServiceKey)
	if userToken != "" {
		req.Header.Set("Authorization", "Bearer "+userToken)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.ServiceKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// do executes req and returns the body, turning 4xx/5xx into *Error
func (c *Client) do(req *http.Request) ([]byte, *http.Response, error) {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp, err
	}

	if resp.StatusCode >= 400 {
		return nil, resp, &Error{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, resp, nil
}

// Query executes a query on a Supabase table
func (c *Client) Query(ctx context.Context, table string, query map[string]interface{}) ([]byte, error) {
	return c.QueryWithToken(ctx, table, query, "")
}

// QueryWithToken executes a query with an optional user JWT token for RLS
func (c *Client) QueryWithToken(ctx context.Context, table string, query map[string]interface{}, userToken string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, table, query, nil, userToken)
	if err != nil {
		return nil, err
	}
	body, _, err := c.do(req)
	return body, err
}

// Count returns the exact number of rows matching query.
// PostgREST reports it in the Content-Range header ("0-24/3573" or "*/0").
func (c *Client) Count(ctx context.Context, table string, query map[string]interface{}) (int, error) {
	q := map[string]interface{}{"select": "id"}
	for k, v := range query {
		q[k] = v
	}

	req, err := c.newRequest(ctx, http.MethodHead, table, q, nil, "")
	if err != nil {
		return 0, err
	}
	req.Header.Set("Prefer", "count=exact")

	_, resp, err := c.do(req)
	if err != nil {
		return 0, err
	}

	return parseContentRangeTotal(resp.Header.Get("Content-Range"))
}

func parseContentRangeTotal(header string) (int, error) {
	idx := strings.LastIndex(header, "/")
	if idx < 0 || idx == len(header)-1 {
		return 0, fmt.Errorf("unexpected Content-Range %q", header)
	}
	total := header[idx+1:]
	if total == "*" {
		return 0, fmt.Errorf("count not available in Content-Range %q", header)
	}
	n, err := strconv.Atoi(total)
	if err != nil {
		return 0, fmt.Errorf("invalid Content-Range total %q: %w", header, err)
	}
	return n, nil
}

// Insert inserts a record into a Supabase table
func (c *Client) Insert(ctx context.Context, table string, data interface{}) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodPost, table, nil, data, "")
	if err != nil {
		return nil, err
	}
	req.Header.Set("Prefer", "return=representation")

	body, _, err := c.do(req)
	return body, err
}

// Upsert inserts or updates a record in a Supabase table
// onConflict specifies the columns to detect conflicts (e.g., "habit_id,date")
func (c *Client) Upsert(ctx context.Context, table string, data interface{}, onConflict string) ([]byte, error) {
	return c.upsert(ctx, table, data, onConflict, "resolution=merge-duplicates")
}

// InsertIgnoreDuplicates inserts a record unless one already exists for onConflict
func (c *Client) InsertIgnoreDuplicates(ctx context.Context, table string, data interface{}, onConflict string) ([]byte, error) {
	return c.upsert(ctx, table, data, onConflict, "resolution=ignore-duplicates")
}

func (c *Client) upsert(ctx context.Context, table string, data interface{}, onConflict, resolution string) ([]byte, error) {
	query := map[string]interface{}{"on_conflict": onConflict}
	req, err := c.newRequest(ctx, http.MethodPost, table, query, data, "")
	if err != nil {
		return nil, err
	}
	req.Header.Set("Prefer", "return=representation,"+resolution)

	body, _, err := c.do(req)
	return body, err
}

// UpdateWhere updates records matching a query
func (c *Client) UpdateWhere(ctx context.Context, table string, query map[string]interface{}, data interface{}) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodPatch, table, query, data, "")
	if err != nil {
		return nil, err
	}
	req.Header.Set("Prefer", "return=representation")

	body, _, err := c.do(req)
	return body, err
}

// DeleteWhere deletes records matching a query
func (c *Client) DeleteWhere(ctx context.Context, table string, query map[string]interface{}) error {
	req, err := c.newRequest(ctx, http.MethodDelete, table, query, nil, "")
	if err != nil {
		return err
	}
	_, _, err = c.do(req)
	return err
}

// VerifyToken verifies a JWT token with Supabase
func (c *Client) VerifyToken(ctx context.Context, token string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("apikey", c.ServiceKey)
	req.Header.Set("Authorization", "Bearer "+token)

	body, _, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}

	return &user, nil
}

// User represents a Supabase user
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
