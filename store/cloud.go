package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Cloud mirror tables. Each row is addressable by the same id used locally.
const (
	TableChildren  = "children"
	TableParents   = "parents"
	TableDailyLogs = "daily_logs"
	TableHolidays  = "holidays"
	TableSettings  = "app_settings"
	TableSendLogs  = "send_logs"
)

// SettingsRowId is the single well-known app_settings row holding the whole
// settings object as an opaque payload column.
const SettingsRowId = "global"

var (
	ErrCloudDisabled   = errors.New("cloud mirror is not configured")
	ErrInvalidCloudUrl = errors.New("cloud url must carry a scheme and a host")
)

const cloudRequestTimeout = 10 * time.Second

// CloudClient talks to the shared mirror over its REST surface. All callers
// treat it as best-effort: a failed call falls back to the local store.
type CloudClient struct {
	baseUrl    *url.URL
	anonKey    string
	httpClient *http.Client
}

// NewCloudClient validates the connection settings and builds a client. A
// blank or malformed url yields an error so the caller can run in local-only
// mode; no network call is made here.
func NewCloudClient(rawUrl, anonKey string) (*CloudClient, error) {
	if strings.TrimSpace(rawUrl) == "" || strings.TrimSpace(anonKey) == "" {
		return nil, ErrCloudDisabled
	}
	u, err := url.Parse(rawUrl)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidCloudUrl, err.Error())
	}
	if (u.Scheme != "http" && u.Scheme != "https") || !strings.Contains(u.Host, ".") {
		return nil, ErrInvalidCloudUrl
	}
	return &CloudClient{
		baseUrl: u,
		anonKey: anonKey,
		httpClient: &http.Client{
			Timeout: cloudRequestTimeout,
		},
	}, nil
}

func (c *CloudClient) restUrl(table string) string {
	return fmt.Sprintf("%s://%s/rest/v1/%s", c.baseUrl.Scheme, c.baseUrl.Host, table)
}

// RealtimeUrl returns the websocket endpoint of the mirror's change stream.
func (c *CloudClient) RealtimeUrl() string {
	scheme := "wss"
	if c.baseUrl.Scheme == "http" {
		scheme = "ws"
	}
	return fmt.Sprintf("%s://%s/realtime/v1/websocket?apikey=%s&vsn=1.0.0", scheme, c.baseUrl.Host, url.QueryEscape(c.anonKey))
}

func (c *CloudClient) newRequest(ctx context.Context, method, rawUrl string, body []byte) (*http.Request, error) {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, rawUrl, reader)
	if err != nil {
		return nil, err
	}
	req = req.WithContext(ctx)
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.anonKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *CloudClient) do(req *http.Request) ([]byte, *http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	b, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, resp, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return b, resp, errors.Errorf("cloud mirror returned %d: %s", resp.StatusCode, truncate(string(b), 200))
	}
	return b, resp, nil
}

// SelectAll reads every row of a table into out (a pointer to a slice).
func (c *CloudClient) SelectAll(ctx context.Context, table string, out interface{}) error {
	req, err := c.newRequest(ctx, http.MethodGet, c.restUrl(table)+"?select=*", nil)
	if err != nil {
		return err
	}
	b, _, err := c.do(req)
	if err != nil {
		return errors.Wrapf(err, "failed to select from %s", table)
	}
	return json.Unmarshal(b, out)
}

// SelectById reads a single row into out (a pointer to a slice; empty slice
// means not found).
func (c *CloudClient) SelectById(ctx context.Context, table, id string, out interface{}) error {
	req, err := c.newRequest(ctx, http.MethodGet, c.restUrl(table)+"?select=*&id=eq."+url.QueryEscape(id), nil)
	if err != nil {
		return err
	}
	b, _, err := c.do(req)
	if err != nil {
		return errors.Wrapf(err, "failed to select %s from %s", id, table)
	}
	return json.Unmarshal(b, out)
}

// Upsert writes one or more records, merging on id.
func (c *CloudClient) Upsert(ctx context.Context, table string, records interface{}) error {
	body, err := json.Marshal(records)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, c.restUrl(table), body)
	if err != nil {
		return err
	}
	req.Header.Set("Prefer", "resolution=merge-duplicates,return=minimal")
	if _, _, err := c.do(req); err != nil {
		return errors.Wrapf(err, "failed to upsert into %s", table)
	}
	return nil
}

// Insert writes records without merge semantics, used only for first-run
// seeding of an empty mirror.
func (c *CloudClient) Insert(ctx context.Context, table string, records interface{}) error {
	body, err := json.Marshal(records)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, c.restUrl(table), body)
	if err != nil {
		return err
	}
	req.Header.Set("Prefer", "return=minimal")
	if _, _, err := c.do(req); err != nil {
		return errors.Wrapf(err, "failed to insert into %s", table)
	}
	return nil
}

// DeleteById removes a single row.
func (c *CloudClient) DeleteById(ctx context.Context, table, id string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, c.restUrl(table)+"?id=eq."+url.QueryEscape(id), nil)
	if err != nil {
		return err
	}
	if _, _, err := c.do(req); err != nil {
		return errors.Wrapf(err, "failed to delete %s from %s", id, table)
	}
	return nil
}

// Count returns the number of rows in a table without fetching them.
func (c *CloudClient) Count(ctx context.Context, table string) (int, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.restUrl(table)+"?select=id", nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Prefer", "count=exact")
	req.Header.Set("Range", "0-0")
	req.Header.Set("Range-Unit", "items")
	_, resp, err := c.do(req)
	if err != nil && resp == nil {
		return 0, errors.Wrapf(err, "failed to count %s", table)
	}
	if resp == nil {
		return 0, errors.Errorf("failed to count %s", table)
	}
	contentRange := resp.Header.Get("Content-Range")
	idx := strings.LastIndex(contentRange, "/")
	if idx == -1 {
		return 0, errors.Errorf("unexpected content range %q counting %s", contentRange, table)
	}
	total, convErr := strconv.Atoi(contentRange[idx+1:])
	if convErr != nil {
		return 0, errors.Errorf("unexpected content range %q counting %s", contentRange, table)
	}
	return total, nil
}

// settingsRow is the shape of the single app_settings row: the whole settings
// object rides in an opaque data column.
type settingsRow struct {
	Id   string   `json:"id"`
	Data Settings `json:"data"`
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
