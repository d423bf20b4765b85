package exchange

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"momentum_bot/internal/modules/config"
)

// Client — REST-клиент Bybit v5 (unified account).
type Client struct {
	http       *http.Client
	baseURL    string
	category   string
	apiKey     string
	apiSecret  string
	recvWindow string
	now        func() time.Time
}

func NewClient(cfg *config.Config) *Client {
	timeout := cfg.Exchange.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		http:       &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL(),
		category:   cfg.Exchange.Category,
		recvWindow: strconv.Itoa(cfg.Exchange.RecvWindow),
		now:        time.Now,
	}
	c.SetCreds(cfg.Exchange.APIKey, cfg.Exchange.APISecret)
	return c
}

func (c *Client) SetCreds(key, secret string) { c.apiKey, c.apiSecret = key, secret }

// WithBaseURL — подмена эндпоинта (httptest, прокси).
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

// APIError — retCode != 0 от Bybit.
type APIError struct {
	Code int
	Msg  string
}

func (e *APIError) Error() string {
	return "bybit error: retCode=" + strconv.Itoa(e.Code) + " retMsg=" + e.Msg
}

type envelope struct {
	RetCode int             `json:"retCode"`
	RetMsg  string          `json:"retMsg"`
	Result  json.RawMessage `json:"result"`
	Time    int64           `json:"time"`
}

// sign: HMAC-SHA256(secret, ts + apiKey + recvWindow + payload), hex.
func (c *Client) sign(ts, payload string) string {
	h := hmac.New(sha256.New, []byte(c.apiSecret))
	h.Write([]byte(ts + c.apiKey + c.recvWindow + payload))
	return hex.EncodeToString(h.Sum(nil))
}

// get — GET с query; signed=true добавляет X-BAPI-* заголовки.
func (c *Client) get(ctx context.Context, path string, q url.Values, signed bool) ([]byte, error) {
	query := q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	if signed {
		if err := c.authorize(req, query); err != nil {
			return nil, err
		}
	}
	return c.do(req)
}

func (c *Client) post(ctx context.Context, path string, body any) ([]byte, error) {
	payload, err := sonic.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "marshal body")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if err := c.authorize(req, string(payload)); err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) authorize(req *http.Request, payload string) error {
	if c.apiKey == "" || c.apiSecret == "" {
		return errors.New("api creds empty")
	}
	ts := strconv.FormatInt(c.now().UTC().UnixMilli(), 10)
	req.Header.Set("X-BAPI-API-KEY", c.apiKey)
	req.Header.Set("X-BAPI-TIMESTAMP", ts)
	req.Header.Set("X-BAPI-RECV-WINDOW", c.recvWindow)
	req.Header.Set("X-BAPI-SIGN-TYPE", "2")
	req.Header.Set("X-BAPI-SIGN", c.sign(ts, payload))
	return nil
}

// do выполняет запрос и возвращает поле result при retCode == 0.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", req.Method, req.URL.Path)
	}
	defer resp.Body.Close()

	rb, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return nil, errors.Errorf("http %d: %s", resp.StatusCode, string(rb))
	}

	var env envelope
	if err := sonic.Unmarshal(rb, &env); err != nil {
		return nil, errors.Wrap(err, "decode envelope")
	}
	if env.RetCode != 0 {
		return nil, &APIError{Code: env.RetCode, Msg: env.RetMsg}
	}
	return env.Result, nil
}
