package upstream

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
)

// FilePartはmultipartで送る1ファイル
type FilePart struct {
	Field       string
	Name        string
	ContentType string
	Data        []byte
}

// Uploadはファイルをmultipartで送る。
// 進捗は送信済みバイト数から計算し、完了時に必ず100を通知する。
func Upload[T any](ctx context.Context, c *Client, path string, part FilePart, fields map[string]string, progress ProgressFunc) Envelope[T] {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return Fail[T](0, "Invalid upload payload")
		}
	}

	field := part.Field
	if field == "" {
		field = "file"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, part.Name))
	h.Set("Content-Type", part.ContentType)
	w, err := mw.CreatePart(h)
	if err != nil {
		return Fail[T](0, "Invalid upload payload")
	}
	if _, err := w.Write(part.Data); err != nil {
		return Fail[T](0, "Invalid upload payload")
	}
	if err := mw.Close(); err != nil {
		return Fail[T](0, "Invalid upload payload")
	}

	total := int64(buf.Len())
	pr := newProgressReader(bytes.NewReader(buf.Bytes()), total, progress)
	pr.report(0)

	header := http.Header{}
	header.Set("Content-Type", mw.FormDataContentType())

	raw, err := c.sendSized(ctx, http.MethodPost, path, pr, total, header)
	if err != nil {
		return Fail[T](0, NetworkErrorMessage(err))
	}
	env := FromRaw[T](raw)
	if env.Success {
		pr.finish()
	}
	return env
}
