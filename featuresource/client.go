package featuresource

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/valyala/fasthttp"

	"github.com/ELBIXishere/gridrouter/normalize"
)

// BeforeRequestFn lets a caller customize an outgoing request (e.g. add
// an auth header) before it is sent.
type BeforeRequestFn func(req *fasthttp.Request) error

// ClientConfig configures Client's transport. The endpoint's own
// protocol (WFS or otherwise) is out of scope per spec §1; Client only
// carries bytes to and from whatever Endpoint is configured.
type ClientConfig struct {
	Endpoint      string            `json:"endpoint" yaml:"endpoint"`
	CustomHeaders map[string]string `json:"custom_headers" yaml:"custom_headers"`
	TLSConfig     *tls.Config
}

// Client fetches raw feature payloads for one bbox from a configured
// endpoint. It is a thin fasthttp wrapper: FetchBBox returns the raw
// response body, and FetchRawFeatureSet JSON-decodes it into a
// normalize.RawFeatureSet.
type Client struct {
	config          *ClientConfig
	httpClient      *fasthttp.Client
	beforeRequestFn BeforeRequestFn
}

// NewClient returns a Client bound to cfg.
func NewClient(cfg *ClientConfig) *Client {
	return &Client{
		config: cfg,
		httpClient: &fasthttp.Client{
			Name:      "gridrouter-featuresource",
			TLSConfig: cfg.TLSConfig,
		},
	}
}

// GetFastHTTPClient exposes the underlying fasthttp.Client for callers
// that need to tune timeouts, dial functions, etc. directly.
func (c *Client) GetFastHTTPClient() *fasthttp.Client {
	return c.httpClient
}

// BeforeRequest installs fn to run on every outgoing request.
func (c *Client) BeforeRequest(fn BeforeRequestFn) {
	c.beforeRequestFn = fn
}

// FetchBBox GETs the feature payload for key as raw bytes, without
// decoding it; FetchRawFeatureSet is the decoding variant.
func (c *Client) FetchBBox(key BBoxKey) ([]byte, error) {
	req, err := c.buildBBoxRequest(key)
	if err != nil {
		return nil, err
	}
	defer fasthttp.ReleaseRequest(req)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if err := c.httpClient.Do(req, resp); err != nil {
		return nil, fmt.Errorf("featuresource: request failed: %w", err)
	}
	if resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("featuresource: unexpected status %d", resp.StatusCode())
	}

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, nil
}

func (c *Client) buildBBoxRequest(key BBoxKey) (*fasthttp.Request, error) {
	req := fasthttp.AcquireRequest()

	path := fmt.Sprintf("features?bbox=%f,%f,%f,%f", key.MinX, key.MinY, key.MaxX, key.MaxY)
	if err := req.URI().Parse(nil, []byte(c.config.Endpoint+"/"+path)); err != nil {
		fasthttp.ReleaseRequest(req)
		return nil, fmt.Errorf("featuresource: unable to build request uri: %w", err)
	}

	for k, v := range c.config.CustomHeaders {
		req.Header.Set(k, v)
	}

	if c.beforeRequestFn != nil {
		if err := c.beforeRequestFn(req); err != nil {
			fasthttp.ReleaseRequest(req)
			return nil, fmt.Errorf("featuresource: BeforeRequest hook failed: %w", err)
		}
	}

	req.Header.SetContentType("application/json")
	return req, nil
}

// decodeJSON unmarshals a raw payload with goccy/go-json; it is used by
// FetchRawFeatureSet.
func decodeJSON(body []byte, out interface{}) error {
	return json.Unmarshal(body, out)
}

// FetchRawFeatureSet fetches key's payload and decodes it into a
// normalize.RawFeatureSet, matching Cache's FetchFunc signature so a
// Client can be wired directly into NewCache as the fetch function.
func (c *Client) FetchRawFeatureSet(ctx context.Context, key BBoxKey) (normalize.RawFeatureSet, error) {
	body, err := c.FetchBBox(key)
	if err != nil {
		return normalize.RawFeatureSet{}, err
	}
	var raw normalize.RawFeatureSet
	if err := decodeJSON(body, &raw); err != nil {
		return normalize.RawFeatureSet{}, fmt.Errorf("featuresource: decode response body: %w", err)
	}
	return raw, nil
}
