package goemitter

import (
	"bytes"
	"fmt"
	"text/template"
)

var clientTemplate = template.Must(template.New("client.go").Parse(`// Code generated by restgen. DO NOT EDIT.

package {{.Package}}

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// TokenSource supplies bearer tokens for the server at baseURL.
type TokenSource interface {
	Token(ctx context.Context, baseURL string) (string, error)
}

// Client calls the admin REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New returns a client for the server at baseURL.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		tokens:     tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Error is returned for non-2xx responses.
type Error struct {
	StatusCode int
	Body       []byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("{{.Package}}: unexpected status %d: %s", e.StatusCode, strings.TrimSpace(string(e.Body)))
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	// emptyBody sends an explicit zero Content-Length.
	emptyBody bool
}

func (c *Client) do(ctx context.Context, r request) (*http.Response, error) {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	body := r.body
	if r.emptyBody {
		body = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return nil, err
	}
	if r.emptyBody {
		req.ContentLength = 0
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx, c.baseURL)
		if err != nil {
			return nil, fmt.Errorf("token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if err := errorCheck(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func errorCheck(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	return &Error{StatusCode: resp.StatusCode, Body: body}
}

func drain(resp *http.Response) error {
	defer resp.Body.Close()
	_, err := io.Copy(io.Discard, resp.Body)
	return err
}

func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func decodeJSON(resp *http.Response, out any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func pathValue(v any) string {
	return url.PathEscape(fmt.Sprint(v))
}
`))

type clientData struct {
	Package string
}

// renderClient renders the runtime shared by every generated method.
func renderClient(pkg string) ([]byte, error) {
	var buf bytes.Buffer
	if err := clientTemplate.Execute(&buf, clientData{Package: pkg}); err != nil {
		return nil, fmt.Errorf("render client.go: %w", err)
	}
	return buf.Bytes(), nil
}
