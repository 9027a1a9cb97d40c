// Package client talks to the listing API and holds the browse and detail
// state used by the command line front end.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"goout/internal/model"
	"goout/internal/schema"
	"goout/internal/wizard"
)

// ErrNotFound matches any *APIError with status 404.
var ErrNotFound = errors.New("not found")

// APIError is a non-2xx answer decoded from the error envelope.
type APIError struct {
	Status    int
	Code      string
	Message   string
	Fields    map[string]string
	RequestID string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
	if len(e.Fields) > 0 {
		msg += " (" + schema.FieldErrors(e.Fields).Error() + ")"
	}
	return msg
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// Page is one page of a list answer.
type Page struct {
	Items      []model.Resource
	Pagination model.Pagination
}

// Created is the answer to a successful create.
type Created struct {
	Message string
	Summary map[string]any
}

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the traced default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sends the bearer token on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New builds a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL is also the base for resolving stored image paths.
func (c *Client) BaseURL() string { return c.baseURL }

// List runs a filtered list query for kind.
func (c *Client) List(ctx context.Context, kind *schema.Kind, q url.Values) (*Page, error) {
	return c.page(ctx, kind, "/api/"+kind.Path, q)
}

// ListByOwner lists ownerID's resources of kind.
func (c *Client) ListByOwner(ctx context.Context, kind *schema.Kind, ownerID string, page, limit int) (*Page, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return c.page(ctx, kind, "/api/"+kind.Path+"/user/"+url.PathEscape(ownerID), q)
}

func (c *Client) page(ctx context.Context, kind *schema.Kind, path string, q url.Values) (*Page, error) {
	var raw map[string]json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, q, nil, "", &raw); err != nil {
		return nil, err
	}

	out := &Page{Items: []model.Resource{}}
	if body, ok := raw[kind.Collection]; ok {
		if err := json.Unmarshal(body, &out.Items); err != nil {
			return nil, fmt.Errorf("decode %s: %w", kind.Collection, err)
		}
	}
	if body, ok := raw["pagination"]; ok {
		if err := json.Unmarshal(body, &out.Pagination); err != nil {
			return nil, fmt.Errorf("decode pagination: %w", err)
		}
	}
	for i := range out.Items {
		out.Items[i].Kind = kind.Name
	}
	return out, nil
}

// Get fetches one resource.
func (c *Client) Get(ctx context.Context, kind *schema.Kind, id string) (*model.Resource, error) {
	var res model.Resource
	if err := c.do(ctx, http.MethodGet, "/api/"+kind.Path+"/"+url.PathEscape(id), nil, nil, "", &res); err != nil {
		return nil, err
	}
	res.Kind = kind.Name
	return &res, nil
}

// Delete removes one resource and returns the server's message.
func (c *Client) Delete(ctx context.Context, kind *schema.Kind, id string) (string, error) {
	var body struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodDelete, "/api/"+kind.Path+"/"+url.PathEscape(id), nil, nil, "", &body); err != nil {
		return "", err
	}
	return body.Message, nil
}

// Create posts a submitted wizard draft as a multipart form. An empty
// ownerID leaves the owner to the server, which takes it from the token.
func (c *Client) Create(ctx context.Context, kind *schema.Kind, ownerID string, d *wizard.Draft) (*Created, error) {
	body, contentType, err := encodeDraft(ownerID, d)
	if err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/api/"+kind.Path, nil, body, contentType, &raw); err != nil {
		return nil, err
	}

	out := &Created{}
	if m, ok := raw["message"]; ok {
		_ = json.Unmarshal(m, &out.Message)
	}
	if s, ok := raw[kind.Singular]; ok {
		if err := json.Unmarshal(s, &out.Summary); err != nil {
			return nil, fmt.Errorf("decode %s: %w", kind.Singular, err)
		}
	}
	return out, nil
}

func encodeDraft(ownerID string, d *wizard.Draft) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	if ownerID != "" {
		if err := w.WriteField("userId", ownerID); err != nil {
			return nil, "", err
		}
	}
	for k, v := range d.Values() {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	for _, img := range d.Images() {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename=%q`, img.Filename))
		h.Set("Content-Type", img.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

// RemoteSchema is the decoded GET /api/schema answer.
type RemoteSchema struct {
	Enums map[string][]string `json:"enums"`
	Kinds []schema.Kind       `json:"kinds"`
}

// Schema fetches the server's kind descriptors.
func (c *Client) Schema(ctx context.Context) (*RemoteSchema, error) {
	var out RemoteSchema
	if err := c.do(ctx, http.MethodGet, "/api/schema", nil, nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body io.Reader, contentType string, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var env struct {
		RequestID string `json:"request_id"`
		Error     struct {
			Code    string            `json:"code"`
			Message string            `json:"message"`
			Fields  map[string]string `json:"fields"`
		} `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err := json.Unmarshal(data, &env); err == nil && env.Error.Code != "" {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
		apiErr.Fields = env.Error.Fields
		apiErr.RequestID = env.RequestID
		return apiErr
	}
	apiErr.Code = http.StatusText(resp.StatusCode)
	apiErr.Message = strings.TrimSpace(string(data))
	return apiErr
}
