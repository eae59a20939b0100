package tuya

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/yanqian/meteo-tuya/internal/domain/meteo"
)

const (
	defaultBaseURL = "https://openapi.tuyaeu.com"
	defaultTimeout = 10 * time.Second
	// tokens are refreshed this long before Tuya expires them
	tokenEarlyExpiry = time.Minute
)

// Config holds the credentials of a Tuya cloud project.
type Config struct {
	BaseURL      string
	AccessID     string
	AccessSecret string
	Timeout      time.Duration
}

// Client talks to the Tuya OpenAPI.
type Client struct {
	baseURL      string
	accessID     string
	accessSecret string
	httpClient   *http.Client
	tokens       oauth2.TokenSource
	logger       *slog.Logger
	now          func() time.Time
	nonce        func() string
}

// NewClient builds an API client. store may be nil, in which case tokens live only in
// this process.
func NewClient(cfg Config, store TokenStore, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.AccessID) == "" {
		return nil, errors.New("tuya access id cannot be empty")
	}
	if strings.TrimSpace(cfg.AccessSecret) == "" {
		return nil, errors.New("tuya access secret cannot be empty")
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		baseURL:      strings.TrimRight(base, "/"),
		accessID:     cfg.AccessID,
		accessSecret: cfg.AccessSecret,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       logger.With("component", "tuya.client"),
		now:          time.Now,
		nonce:        func() string { return uuid.NewString() },
	}
	c.tokens = oauth2.ReuseTokenSourceWithExpiry(nil, &tokenSource{client: c, store: store, logger: c.logger}, tokenEarlyExpiry)
	return c, nil
}

// DeviceStatus retrieves the current status list of a device.
func (c *Client) DeviceStatus(ctx context.Context, deviceID string) (meteo.DeviceStatus, error) {
	tok, err := c.tokens.Token()
	if err != nil {
		return meteo.DeviceStatus{}, err
	}

	path := fmt.Sprintf("/v1.0/devices/%s/status", url.PathEscape(deviceID))
	body, err := c.do(ctx, http.MethodGet, path, nil, tok.AccessToken)
	if err != nil {
		return meteo.DeviceStatus{}, err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return meteo.DeviceStatus{}, fmt.Errorf("decode tuya status response: %w", err)
	}
	if env.rejected() {
		return meteo.DeviceStatus{}, &meteo.RejectedError{Code: env.Code, Message: env.Msg, Raw: body}
	}

	raw := env.Result
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("[]")
	}
	var items []meteo.StatusItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return meteo.DeviceStatus{}, fmt.Errorf("decode tuya status result: %w", err)
	}
	return meteo.DeviceStatus{Items: items, Raw: raw}, nil
}

type envelope struct {
	Success *bool           `json:"success"`
	Code    int             `json:"code"`
	Msg     string          `json:"msg"`
	Result  json.RawMessage `json:"result"`
	T       int64           `json:"t"`
	TID     string          `json:"tid"`
}

// rejected reports an explicit success:false; a body without the flag is accepted.
func (e envelope) rejected() bool {
	return e.Success != nil && !*e.Success
}

// do performs a signed bodiless request and returns the response body. Non-2xx statuses
// come back as *meteo.ResponseError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, accessToken string) ([]byte, error) {
	endpoint := c.baseURL + canonicalURL(path, query)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build tuya request: %w", err)
	}

	t := strconv.FormatInt(c.now().UnixMilli(), 10)
	nonce := c.nonce()
	payload := c.accessID + accessToken + t + nonce + stringToSign(method, path, query, nil)

	req.Header.Set("client_id", c.accessID)
	req.Header.Set("t", t)
	req.Header.Set("nonce", nonce)
	req.Header.Set("sign_method", signMethod)
	req.Header.Set("sign", sign(c.accessSecret, payload))
	if accessToken != "" {
		req.Header.Set("access_token", accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// *url.Error already names the method and URL
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, &meteo.ResponseError{StatusCode: resp.StatusCode, Body: asJSON(errBody)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tuya response: %w", err)
	}
	return body, nil
}

// asJSON keeps valid JSON untouched and quotes anything else.
func asJSON(payload []byte) json.RawMessage {
	if len(payload) == 0 {
		return nil
	}
	if json.Valid(payload) {
		return payload
	}
	quoted, _ := json.Marshal(string(payload))
	return quoted
}
