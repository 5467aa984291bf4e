package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/bascanada/proposalviewer/pkg/ty"
)

// ErrNotFound matches a StatusError with a 404 status.
var ErrNotFound = errors.New("not found")

type Auth interface {
	Login(req *http.Request) error
}

// HeaderAuth sets fixed headers (like Authorization) on each request.
type HeaderAuth struct {
	Headers ty.MS
}

func (h HeaderAuth) Login(req *http.Request) error {
	for k, v := range h.Headers {
		req.Header.Set(k, v)
	}
	return nil
}

// StatusError is returned for responses with a status code of 400 or more.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.StatusCode, strings.TrimSpace(body))
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

type HttpClient struct {
	client http.Client
	url    string
	auth   Auth
}

// Debug controls whether verbose HTTP-level debug logs are emitted. Tests and
// production code can toggle this to avoid leaking secrets into logs.
var Debug = false

// SetDebug sets the package debug flag.
func SetDebug(d bool) {
	Debug = d
}

func (c HttpClient) do(ctx context.Context, method, path string, body io.Reader, responseData interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, path, body)
	if err != nil {
		return err
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.auth != nil {
		if err = c.auth.Login(req); err != nil {
			return fmt.Errorf("authenticating request: %w", err)
		}
	}

	if Debug {
		log.Printf("[%s] %s headers: %s\n", method, path, maskHeaderMap(req.Header))
	}

	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	// Log a truncated response body for debugging (avoid huge output)
	if Debug && len(resBody) > 0 {
		s := string(resBody)
		if len(s) > 2000 {
			s = s[:2000] + "...TRUNCATED"
		}
		log.Printf("[%s-RAW] %d %s", method, res.StatusCode, s)
	}

	if res.StatusCode >= 400 {
		return &StatusError{Method: method, URL: path, StatusCode: res.StatusCode, Body: string(resBody)}
	}

	if responseData == nil || len(resBody) == 0 {
		return nil
	}

	if err := json.Unmarshal(resBody, responseData); err != nil {
		return fmt.Errorf("decoding response of %s %s: %w", method, path, err)
	}
	return nil
}

// Get sends a GET request to path with the given query parameters and decodes
// the JSON response into responseData.
func (c HttpClient) Get(ctx context.Context, path string, queryParams ty.MS, responseData interface{}) error {
	path = c.url + path

	q := url.Values{}
	for k, v := range queryParams {
		q.Add(k, v)
	}
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	return c.do(ctx, http.MethodGet, path, nil, responseData)
}

// PostJson sends body as JSON and decodes the JSON response into responseData.
func (c HttpClient) PostJson(ctx context.Context, path string, body interface{}, responseData interface{}) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return err
	}

	return c.do(ctx, http.MethodPost, c.url+path, &buf, responseData)
}

// GetClient returns a client rooted at baseURL. A missing scheme defaults to
// https and trailing slashes are removed.
func GetClient(baseURL string, auth Auth) HttpClient {
	if baseURL != "" {
		if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
			baseURL = "https://" + baseURL
		}
		baseURL = strings.TrimRight(baseURL, "/")
	}

	return HttpClient{
		client: transportClient(),
		url:    baseURL,
		auth:   auth,
	}
}

func transportClient() http.Client {
	if v, ok := http.DefaultTransport.(*http.Transport); ok {
		return http.Client{Transport: v.Clone()}
	}
	return http.Client{}
}

// maskHeaderMap returns a string representation of headers with sensitive
// values redacted (keeps first 4 chars for debugging).
func maskHeaderMap(h http.Header) string {
	redacted := []string{}
	for _, k := range sortedKeys(h) {
		v := h.Get(k)
		switch strings.ToLower(k) {
		case "authorization", "cookie", "x-api-key", "x-auth-token":
			if len(v) > 4 {
				v = v[:4] + "...REDACTED"
			} else {
				v = "REDACTED"
			}
		}
		redacted = append(redacted, fmt.Sprintf("%s: %s", k, v))
	}
	return strings.Join(redacted, "; ")
}

func sortedKeys(h http.Header) []string {
	ms := ty.MS{}
	for k := range h {
		ms[k] = ""
	}
	return ms.Keys()
}
