package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/milktracker/internal/models"
)

// Client issues typed calls against the REST API through one Doer.
type Client struct {
	base    *url.URL
	do      Doer
	timeout time.Duration
}

// New builds a client for baseURL. A zero timeout means no per-request
// deadline beyond the caller's context.
func New(baseURL string, do Doer, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("server url %q must be absolute", baseURL)
	}
	return &Client{base: u, do: do, timeout: timeout}, nil
}

// HTTPDoer adapts an *http.Client to a Doer and marks transport failures
// with ErrUnavailable.
func HTTPDoer(c *http.Client) Doer {
	return func(req *http.Request) (*http.Response, error) {
		resp, err := c.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return resp, nil
	}
}

type request struct {
	method string
	path   string
	query  url.Values
	json   any
	form   url.Values
}

func (c *Client) call(ctx context.Context, r request, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	u := *c.base
	u.Path = c.base.Path + r.path
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case r.form != nil:
		body = strings.NewReader(r.form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case r.json != nil:
		b, err := json.Marshal(r.json)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		ae := &APIError{Status: resp.StatusCode}
		var d models.Detail
		if json.Unmarshal(data, &d) == nil {
			ae.Detail = d.Detail
		}
		return ae
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func idPath(prefix string, id int64) string {
	return prefix + strconv.FormatInt(id, 10)
}

func herdQuery(herdID int64) url.Values {
	q := url.Values{}
	if herdID != 0 {
		q.Set("herd_id", strconv.FormatInt(herdID, 10))
	}
	return q
}

// --- auth & users ---

func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	var u models.User
	if err := c.call(ctx, request{method: http.MethodPost, path: "/api/auth/register", json: req}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Token exchanges credentials for an access token (OAuth2 password form).
func (c *Client) Token(ctx context.Context, email, password string) (*models.Token, error) {
	var t models.Token
	form := url.Values{"username": {email}, "password": {password}}
	if err := c.call(ctx, request{method: http.MethodPost, path: "/api/auth/token", form: form}, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.call(ctx, request{method: http.MethodGet, path: "/api/users/me"}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error) {
	var u models.User
	if err := c.call(ctx, request{method: http.MethodPut, path: "/api/users/profile", json: upd}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateMembership(ctx context.Context, m models.MembershipType) (*models.User, error) {
	var u models.User
	q := url.Values{"membership_type": {string(m)}}
	if err := c.call(ctx, request{method: http.MethodPut, path: "/api/users/membership", query: q}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.call(ctx, request{method: http.MethodDelete, path: "/api/users/"}, nil)
}

// --- herds ---

func (c *Client) Herds(ctx context.Context) ([]models.Herd, error) {
	var out []models.Herd
	if err := c.call(ctx, request{method: http.MethodGet, path: "/api/herds/"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Herd(ctx context.Context, id int64) (*models.Herd, error) {
	var h models.Herd
	if err := c.call(ctx, request{method: http.MethodGet, path: idPath("/api/herds/", id)}, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *Client) CreateHerd(ctx context.Context, in models.HerdInput) (*models.Herd, error) {
	var h models.Herd
	if err := c.call(ctx, request{method: http.MethodPost, path: "/api/herds/", json: in}, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *Client) UpdateHerd(ctx context.Context, id int64, in models.HerdInput) (*models.Herd, error) {
	var h models.Herd
	if err := c.call(ctx, request{method: http.MethodPut, path: idPath("/api/herds/", id), json: in}, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *Client) DeleteHerd(ctx context.Context, id int64) error {
	return c.call(ctx, request{method: http.MethodDelete, path: idPath("/api/herds/", id)}, nil)
}

// --- milk production ---

// MilkRecords lists records; herdID 0 means every herd.
func (c *Client) MilkRecords(ctx context.Context, herdID int64) ([]models.MilkRecord, error) {
	var out []models.MilkRecord
	if err := c.call(ctx, request{method: http.MethodGet, path: "/api/milk-production/", query: herdQuery(herdID)}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) MilkRecord(ctx context.Context, id int64) (*models.MilkRecord, error) {
	var r models.MilkRecord
	if err := c.call(ctx, request{method: http.MethodGet, path: idPath("/api/milk-production/", id)}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) CreateMilkRecord(ctx context.Context, in models.MilkRecordInput) (*models.MilkRecord, error) {
	var r models.MilkRecord
	if err := c.call(ctx, request{method: http.MethodPost, path: "/api/milk-production/", json: in}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) UpdateMilkRecord(ctx context.Context, id int64, in models.MilkRecordInput) (*models.MilkRecord, error) {
	var r models.MilkRecord
	if err := c.call(ctx, request{method: http.MethodPut, path: idPath("/api/milk-production/", id), json: in}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) DeleteMilkRecord(ctx context.Context, id int64) error {
	return c.call(ctx, request{method: http.MethodDelete, path: idPath("/api/milk-production/", id)}, nil)
}

// Stats fetches aggregates; herdID 0 and SpanAll mean no filter.
func (c *Client) Stats(ctx context.Context, herdID int64, span models.TimeSpan) (*models.Stats, error) {
	q := herdQuery(herdID)
	if span != models.SpanAll {
		q.Set("time_span", string(span))
	}
	var s models.Stats
	if err := c.call(ctx, request{method: http.MethodGet, path: "/api/milk-production/stats", query: q}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Export asks the server for a CSV export and returns its download link.
func (c *Client) Export(ctx context.Context, herdID int64) (*models.Export, error) {
	var e models.Export
	if err := c.call(ctx, request{method: http.MethodGet, path: "/api/milk-production/export", query: herdQuery(herdID)}, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
