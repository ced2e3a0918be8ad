package proxy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"umuhinzilink/internal/upstream"

	"github.com/labstack/gommon/log"
)

// Spring系のバックエンドが存在しないルートに返す404本文
const routeAbsentMarker = "no static resource"

const exhaustedFallback = "No matching upstream route for farmer products"

// Outcomeは1候補を試した結果の分類
type Outcome int

const (
	// ルートがない。次の候補へ。
	OutcomeRouteAbsent Outcome = iota
	// 404だが本文に意味がある。メッセージは控えて次へ。
	OutcomeNotFound
	// 404以外。ここで確定。
	OutcomeAccepted
)

// Classifyは候補の応答をどう扱うか決める
func Classify(status int, body []byte) Outcome {
	if status != http.StatusNotFound {
		return OutcomeAccepted
	}
	if strings.Contains(strings.ToLower(string(body)), routeAbsentMarker) {
		return OutcomeRouteAbsent
	}
	return OutcomeNotFound
}

// Responseは確定した候補の応答
type Response struct {
	Path   string
	Status int
	Header http.Header
	Body   []byte
}

// ExhaustedErrorは全候補が404だったとき
type ExhaustedError struct {
	Tried   []string
	Message string
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all %d candidate routes returned 404: %s", len(e.Tried), e.Message)
}

// TransportErrorは候補への通信自体が失敗したとき（ここで打ち切る）
type TransportError struct {
	Path string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("candidate %s: %v", e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Resolverは候補パスを優先順に試し、最初に受理された応答を返す
type Resolver struct {
	client *upstream.Client
	logger *log.Logger
}

// DI
func NewResolver(client *upstream.Client, logger *log.Logger) *Resolver {
	return &Resolver{client: client, logger: logger}
}

// Resolveは候補を順に呼ぶ。
// 404以外（成功・失敗問わず）で止まる。全部404なら *ExhaustedError。
func (r *Resolver) Resolve(ctx context.Context, method string, candidates []string, body []byte, header http.Header) (Response, error) {
	var lastMessage string
	tried := make([]string, 0, len(candidates))

	for _, path := range candidates {
		tried = append(tried, path)

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		raw, err := r.client.Send(ctx, method, path, reader, header.Clone())
		if err != nil {
			return Response{}, &TransportError{Path: path, Err: err}
		}

		switch Classify(raw.Status, raw.Body) {
		case OutcomeAccepted:
			r.logger.Debugf("candidate %s %s accepted with %d", method, path, raw.Status)
			return Response{Path: path, Status: raw.Status, Header: raw.Header, Body: raw.Body}, nil
		case OutcomeNotFound:
			lastMessage = upstream.ExtractMessage(raw.Body, 0)
		case OutcomeRouteAbsent:
			r.logger.Debugf("candidate %s %s absent", method, path)
		}
	}

	if lastMessage == "" || lastMessage == upstream.GenericFailureMessage {
		lastMessage = exhaustedFallback
	}
	return Response{}, &ExhaustedError{Tried: tried, Message: lastMessage}
}
