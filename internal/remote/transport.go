package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Request is one outgoing call handed to a Transport.
type Request struct {
	URL     string
	Method  string
	Headers map[string]string
	Payload any
}

// Transport sends a request and returns the decoded response body. It must
// honour ctx cancellation where it can; the engine never relies on it.
type Transport interface {
	Send(ctx context.Context, req Request) (any, error)
}

// Ensure Client implements Transport at compile time.
var _ Transport = (*Client)(nil)

// Client is the HTTP JSON transport.
type Client struct {
	http      *http.Client
	userAgent string
}

const defaultUserAgent = "tablesync/0.1"

// NewClient builds a Client. A nil httpClient uses a fresh http.Client with
// no timeout of its own; the engine applies the per-attempt deadline.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{http: httpClient, userAgent: defaultUserAgent}
}

// Send encodes the payload as query parameters for GET and DELETE requests
// and as a JSON body otherwise. JSON numbers in the response are kept as
// json.Number.
func (c *Client) Send(ctx context.Context, r Request) (any, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	reqURL, err := url.Parse(r.URL)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", r.URL, err)
	}

	method := strings.ToUpper(r.Method)
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	switch method {
	case http.MethodGet, http.MethodDelete, http.MethodHead:
		values, err := queryValues(r.Payload)
		if err != nil {
			return nil, err
		}
		q := reqURL.Query()
		for k, vs := range values {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		reqURL.RawQuery = q.Encode()
	default:
		encoded, err := json.Marshal(r.Payload)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("api %s returned status %d", reqURL.Path, resp.StatusCode)
	}

	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	var payload any
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return payload, nil
}

// queryValues flattens the top level of payload into URL values. Nested
// objects and arrays are sent as their JSON text; nulls are omitted.
func queryValues(payload any) (url.Values, error) {
	values := url.Values{}
	if payload == nil {
		return values, nil
	}
	if v, ok := payload.(url.Values); ok {
		return v, nil
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	decoder := json.NewDecoder(bytes.NewReader(encoded))
	decoder.UseNumber()
	var fields map[string]any
	if err := decoder.Decode(&fields); err != nil {
		return nil, fmt.Errorf("payload must encode to a JSON object: %w", err)
	}
	for k, v := range fields {
		switch typed := v.(type) {
		case nil:
		case string:
			values.Set(k, typed)
		case json.Number:
			values.Set(k, typed.String())
		case bool:
			values.Set(k, fmt.Sprint(typed))
		default:
			nested, err := json.Marshal(typed)
			if err != nil {
				return nil, fmt.Errorf("encode payload field %q: %w", k, err)
			}
			values.Set(k, string(nested))
		}
	}
	return values, nil
}
