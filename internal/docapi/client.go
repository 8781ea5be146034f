// Package docapi is a thin client for the hosted document service API. A
// session is scoped to a single doc: list its tables, then fetch column
// metadata and rows per table.
package docapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Velocidex/ordereddict"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultBaseURL is the public endpoint of the document service.
const DefaultBaseURL = "https://coda.io/apis/v1"

// ValueFormat is the only cell value encoding the exporter requests.
// simpleWithArrays expands multi value cells into JSON arrays instead of
// joining them into one string.
const ValueFormat = "simpleWithArrays"

// Client calls the document API for one doc with one API token. Both are
// held in memory for the lifetime of the session and are never written to
// disk or logs.
type Client struct {
	BaseURL string
	DocID   string

	token  string
	client *http.Client
	log    *logrus.Logger
}

// NewClient returns a client for the given doc.
func NewClient(token, docID string, log *logrus.Logger) *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		DocID:   docID,
		token:   token,
		client:  &http.Client{},
		log:     log,
	}
}

// Doc fetches metadata for the session's doc. The UI uses it to confirm the
// credentials resolve and to title the session.
func (c *Client) Doc(ctx context.Context) (*Doc, error) {
	body, err := c.get(ctx, "", nil)
	if err != nil {
		return nil, err
	}

	doc := &Doc{}
	if err := json.Unmarshal(body, doc); err != nil {
		return nil, errors.WithStack(err)
	}
	if doc.ID == "" {
		doc.ID = c.DocID
	}
	return doc, nil
}

// Tables lists every table in the doc.
func (c *Client) Tables(ctx context.Context) ([]Table, error) {
	body, err := c.get(ctx, "/tables", nil)
	if err != nil {
		return nil, err
	}

	items, err := unwrapItems(body)
	if err != nil {
		return nil, err
	}

	var tables []Table
	if err := json.Unmarshal(items, &tables); err != nil {
		return nil, errors.WithStack(err)
	}
	return tables, nil
}

// Columns fetches the column metadata for one table, in display order.
func (c *Client) Columns(ctx context.Context, tableID string) ([]*ordereddict.Dict, error) {
	body, err := c.get(ctx, "/tables/"+url.PathEscape(tableID)+"/columns", nil)
	if err != nil {
		return nil, err
	}
	return parseItems(body)
}

// Rows fetches rows for one table. A limit of zero or less fetches every
// row.
func (c *Client) Rows(ctx context.Context, tableID string, limit int) ([]*ordereddict.Dict, error) {
	query := url.Values{}
	query.Set("valueFormat", ValueFormat)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.get(ctx, "/tables/"+url.PathEscape(tableID)+"/rows", query)
	if err != nil {
		return nil, err
	}
	return parseItems(body)
}

// get issues one authenticated request for a path under the session's doc.
// Failures are returned to the caller untouched: no retries here, the user
// decides whether to try again.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	endpoint := c.BaseURL + "/docs/" + url.PathEscape(c.DocID) + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	// Only the doc relative path goes to the log. The full URL contains the
	// doc id, which stays in memory.
	c.log.WithFields(logrus.Fields{"path": path}).Debug("document api request")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.log.WithFields(logrus.Fields{
			"path":   path,
			"status": resp.Status,
		}).Warn("document api request failed")
		return nil, &StatusError{Path: path, Code: resp.StatusCode, Status: resp.Status}
	}
	return body, nil
}
