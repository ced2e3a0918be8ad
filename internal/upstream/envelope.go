package upstream

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// GenericFailureMessageはバックエンドから使える文言が取れなかったときの文言
const GenericFailureMessage = "Something went wrong. Please try again."

// 生テキストをそのまま見せてよい上限
const maxRawMessageLen = 500

// Envelopeは全サービス呼び出しの共通の戻り値
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
	Status  int    `json:"status,omitempty"`
}

// Failは失敗のEnvelopeを作る
func Fail[T any](status int, message string) Envelope[T] {
	if strings.TrimSpace(message) == "" {
		message = GenericFailureMessage
	}
	return Envelope[T]{Success: false, Status: status, Message: message}
}

// Mapは成功時のDataを変換する。失敗はそのまま引き継ぐ。
func Map[T, U any](env Envelope[T], fn func(T) U) Envelope[U] {
	if !env.Success {
		return Envelope[U]{Success: false, Status: env.Status, Message: env.Message}
	}
	return Envelope[U]{Success: true, Status: env.Status, Message: env.Message, Data: fn(env.Data)}
}

type wireEnvelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

// ExtractMessageはエラーレスポンスのbodyから表示用の文言を取り出す。
// JSONのmessage → error → 500文字以内の生テキスト → 汎用文言 の順。
func ExtractMessage(body []byte, status int) string {
	var w wireEnvelope
	if err := json.Unmarshal(body, &w); err == nil {
		if m := strings.TrimSpace(w.Message); m != "" {
			return m
		}
		var s string
		if len(w.Error) > 0 && json.Unmarshal(w.Error, &s) == nil && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}

	text := strings.TrimSpace(string(body))
	if text != "" && !strings.HasPrefix(text, "<") && !strings.HasPrefix(text, "{") &&
		utf8.RuneCountInString(text) <= maxRawMessageLen {
		return text
	}

	if status > 0 {
		return fmt.Sprintf("%s (status %d)", GenericFailureMessage, status)
	}
	return GenericFailureMessage
}

// decodeSuccessは2xxのbodyをEnvelopeにする。
// {success,data,message}形式ならほどき、そうでなければbody全体をdataとみなす。
func decodeSuccess[T any](body []byte, status int) Envelope[T] {
	env := Envelope[T]{Success: true, Status: status}
	if len(strings.TrimSpace(string(body))) == 0 {
		return env
	}

	var w wireEnvelope
	if err := json.Unmarshal(body, &w); err == nil && w.Success != nil {
		if !*w.Success {
			return Fail[T](status, ExtractMessage(body, 0))
		}
		env.Message = w.Message
		if len(w.Data) > 0 && string(w.Data) != "null" {
			if err := json.Unmarshal(w.Data, &env.Data); err != nil {
				return Fail[T](status, "Unexpected response from server")
			}
		}
		return env
	}

	if err := json.Unmarshal(body, &env.Data); err != nil {
		return Fail[T](status, "Unexpected response from server")
	}
	return env
}
