// Package httpbridge implements bridge.Bridge against a sandbox host speaking the /v1 HTTP protocol.
package httpbridge

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/buger/jsonparser"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/net/context/ctxhttp"

	"github.com/prebid/prebid-mobileads/ads"
	"github.com/prebid/prebid-mobileads/banner"
	"github.com/prebid/prebid-mobileads/bridge"
	"github.com/prebid/prebid-mobileads/consent"
	"github.com/prebid/prebid-mobileads/errortypes"
	"github.com/prebid/prebid-mobileads/events"
	"github.com/prebid/prebid-mobileads/mobileads"
)

// maxEventLine bounds one line of the event stream.
const maxEventLine = 1 << 20

// Client is a bridge.Bridge backed by a remote sandbox host. Events read from the host's stream are
// emitted on the emitter given to NewClient once Start has been called.
type Client struct {
	httpClient *http.Client
	baseURL    string
	deviceID   string
	emitter    *events.Emitter

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

var _ bridge.Bridge = (*Client)(nil)

func NewClient(httpClient *http.Client, baseURL, deviceID string, emitter *events.Emitter) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     65 * time.Second,
			},
		}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		deviceID:   deviceID,
		emitter:    emitter,
	}
}

// Start opens the event stream and pumps it into the emitter until Close is called or the host ends
// the stream. It returns once the stream is established.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return nil
	}

	streamCtx, cancel := context.WithCancel(context.Background())
	httpReq, err := c.newRequest(streamCtx, http.MethodGet, "/v1/events", nil)
	if err != nil {
		cancel()
		return err
	}
	httpReq.Header.Set("Accept", "application/x-ndjson")

	resp, err := c.connect(ctx, httpReq)
	if err != nil {
		cancel()
		return err
	}

	c.cancel = cancel
	c.done = make(chan struct{})
	go c.pump(resp.Body, c.done)
	return nil
}

// connect waits for the stream response headers, giving up when ctx is done.
func (c *Client) connect(ctx context.Context, httpReq *http.Request) (*http.Response, error) {
	type result struct {
		resp *http.Response
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		resp, err := c.httpClient.Do(httpReq)
		ch <- result{resp, err}
	}()

	select {
	case <-ctx.Done():
		go func() {
			if r := <-ch; r.resp != nil {
				r.resp.Body.Close()
			}
		}()
		return nil, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return nil, errortypes.NewBridge("events", errors.Wrap(r.err, "opening event stream"))
		}
		if r.resp.StatusCode != http.StatusOK {
			defer r.resp.Body.Close()
			body, _ := io.ReadAll(r.resp.Body)
			return nil, bridgeError("events", r.resp.StatusCode, body)
		}
		return r.resp, nil
	}
}

func (c *Client) pump(body io.ReadCloser, done chan struct{}) {
	defer close(done)
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 4096), maxEventLine)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		event, err := bridge.DecodeEvent(line)
		if err != nil {
			glog.Warningf("Skipping malformed event stream line %q: %v", line, err)
			continue
		}
		c.emitter.Emit(event)
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, context.Canceled) {
		glog.V(1).Infof("Event stream from %s ended: %v", c.baseURL, err)
	}
}

// Close stops the event stream and waits for the pump to exit.
func (c *Client) Close() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (c *Client) newRequest(ctx context.Context, method, path string, in interface{}) (*http.Request, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, errors.Wrapf(err, "encoding %s %s", method, path)
		}
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s %s", method, path)
	}
	if in != nil {
		httpReq.Header.Set("Content-Type", "application/json;charset=utf-8")
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.deviceID != "" {
		httpReq.Header.Set(bridge.DeviceIDHeader, c.deviceID)
	}
	return httpReq, nil
}

// call performs one bridge operation. Non-2xx answers become *errortypes.Bridge carrying the host's
// message verbatim.
func (c *Client) call(ctx context.Context, operation, method, path string, in, out interface{}) error {
	httpReq, err := c.newRequest(ctx, method, path, in)
	if err != nil {
		return errortypes.NewBridge(operation, err)
	}

	resp, err := ctxhttp.Do(ctx, c.httpClient, httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return errortypes.NewBridge(operation, errors.Wrapf(err, "%s %s", method, path))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errortypes.NewBridge(operation, errors.Wrap(err, "reading response"))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return bridgeError(operation, resp.StatusCode, respBody)
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return errortypes.NewBridge(operation, errors.Wrapf(err, "decoding response of %s %s", method, path))
	}
	return nil
}

func bridgeError(operation string, statusCode int, body []byte) error {
	message, err := jsonparser.GetString(body, "message")
	if err != nil || message == "" {
		message = fmt.Sprintf("%s failed with HTTP status %d", operation, statusCode)
	}
	return &errortypes.Bridge{Operation: operation, Message: message}
}

func (c *Client) Initialize(ctx context.Context) ([]mobileads.AdapterStatus, error) {
	var statuses []mobileads.AdapterStatus
	if err := c.call(ctx, "initialize", http.MethodPost, "/v1/initialize", nil, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}

func (c *Client) SetRequestConfiguration(ctx context.Context, config mobileads.RequestConfiguration) error {
	return c.call(ctx, "setRequestConfiguration", http.MethodPost, "/v1/request-configuration", config, nil)
}

func (c *Client) RequestConsentInfoUpdate(ctx context.Context, publisherIDs []string) (consent.Info, error) {
	var info consent.Info
	err := c.call(ctx, "requestInfoUpdate", http.MethodPost, "/v1/consent/info", bridge.PublisherIDsBody{PublisherIDs: publisherIDs}, &info)
	return info, err
}

func (c *Client) ShowConsentForm(ctx context.Context, options consent.FormOptions) (consent.FormResult, error) {
	var result consent.FormResult
	err := c.call(ctx, "showForm", http.MethodPost, "/v1/consent/form", options, &result)
	return result, err
}

func (c *Client) GetAdProviders(ctx context.Context) ([]consent.AdProvider, error) {
	var providers []consent.AdProvider
	if err := c.call(ctx, "getAdProviders", http.MethodGet, "/v1/consent/providers", nil, &providers); err != nil {
		return nil, err
	}
	return providers, nil
}

func (c *Client) SetConsentStatus(ctx context.Context, status consent.Status) error {
	return c.call(ctx, "setStatus", http.MethodPut, "/v1/consent/status", bridge.StatusBody{Status: status}, nil)
}

func (c *Client) GetConsentStatus(ctx context.Context) (consent.Status, error) {
	var body bridge.StatusBody
	err := c.call(ctx, "getStatus", http.MethodGet, "/v1/consent/status", nil, &body)
	return body.Status, err
}

func (c *Client) SetDebugGeography(ctx context.Context, geography consent.DebugGeography) error {
	return c.call(ctx, "setDebugGeography", http.MethodPut, "/v1/consent/debug-geography", bridge.GeographyBody{Geography: geography}, nil)
}

func (c *Client) SetTagForUnderAgeOfConsent(ctx context.Context, tag bool) error {
	return c.call(ctx, "setTagForUnderAgeOfConsent", http.MethodPut, "/v1/consent/under-age", bridge.TagBody{Tag: tag}, nil)
}

func (c *Client) AddTestDevices(ctx context.Context, deviceIDs []string) error {
	return c.call(ctx, "addTestDevices", http.MethodPost, "/v1/consent/test-devices", bridge.DeviceIDsBody{DeviceIDs: deviceIDs}, nil)
}

func (c *Client) LoadAd(ctx context.Context, request ads.LoadRequest) error {
	return c.call(ctx, "loadAd", http.MethodPost, "/v1/ads/load", request, nil)
}

func (c *Client) ShowAd(ctx context.Context, request ads.ShowRequest) error {
	return c.call(ctx, "showAd", http.MethodPost, "/v1/ads/show", request, nil)
}

func (c *Client) LoadBanner(ctx context.Context, request banner.Request) error {
	return c.call(ctx, "loadBanner", http.MethodPost, "/v1/banners/load", request, nil)
}
