package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
)

// 1レスポンスで読む上限
const maxBodyBytes = 10 << 20

// Clientはバックエンドを呼ぶ唯一の入口。
// ベースURL・bearer token・JSONの扱いをまとめる。キャッシュとリトライはしない。
type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

// DI
func NewClient(baseURL string, timeout time.Duration, logger *log.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// RawResponseはバックエンドの応答をそのまま持つ
type RawResponse struct {
	Status int
	Header http.Header
	Body   []byte
}

// Sendは1回だけHTTP呼び出しを行う。
// headerにAuthorizationがなければcontextのtokenを付ける。
func (c *Client) Send(ctx context.Context, method string, path string, body io.Reader, header http.Header) (*RawResponse, error) {
	return c.sendSized(ctx, method, path, body, -1, header)
}

// sizeが0以上ならContent-Lengthとして使う（進捗付きreaderはLenを持たないため）
func (c *Client) sendSized(ctx context.Context, method string, path string, body io.Reader, size int64, header http.Header) (*RawResponse, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if req.Header.Get("Authorization") == "" {
		if tok := TokenFrom(ctx); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	if size >= 0 {
		req.ContentLength = size
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warnf("upstream %s %s failed after %s: %v", method, path, time.Since(start), err)
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	c.logger.Debugf("upstream %s %s -> %d in %s", method, path, resp.StatusCode, time.Since(start))

	return &RawResponse{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// Doは1つのRESTエンドポイントを呼び、結果をEnvelopeにする。
// 通信エラーも非2xxもSuccess=falseで返し、errorは返さない。
func Do[T any](ctx context.Context, c *Client, method string, path string, payload any) Envelope[T] {
	var body io.Reader
	header := http.Header{}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return Fail[T](0, "Invalid request payload")
		}
		body = bytes.NewReader(b)
		header.Set("Content-Type", "application/json")
	}

	raw, err := c.Send(ctx, method, path, body, header)
	if err != nil {
		return Fail[T](0, NetworkErrorMessage(err))
	}
	return FromRaw[T](raw)
}

// FromRawはバックエンドの生の応答をEnvelopeに変換する
func FromRaw[T any](raw *RawResponse) Envelope[T] {
	if raw.Status < 200 || raw.Status > 299 {
		return Fail[T](raw.Status, ExtractMessage(raw.Body, raw.Status))
	}
	return decodeSuccess[T](raw.Body, raw.Status)
}

func NetworkErrorMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "The server took too long to respond. Please try again."
	}
	var te interface{ Timeout() bool }
	if errors.As(err, &te) && te.Timeout() {
		return "The server took too long to respond. Please try again."
	}
	if errors.Is(err, context.Canceled) {
		return "Request was cancelled."
	}
	return "Unable to reach the server. Check your connection and try again."
}
