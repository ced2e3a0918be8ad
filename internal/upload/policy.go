package upload

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"
)

var (
	ErrEmptyFile            = errors.New("file is empty")
	ErrFileTooLarge         = errors.New("file is too large")
	ErrUnsupportedType      = errors.New("unsupported file type")
	ErrUnsupportedExtension = errors.New("unsupported file extension")
	ErrImageTooLarge        = errors.New("image dimensions are too large")
)

// Policyはアップロードできる画像の条件
type Policy struct {
	MaxBytes     int64
	MaxPixels    int64 // 幅×高さの上限。デコード前にヘッダで見る
	AllowedTypes []string
	AllowedExts  []string

	Resize    bool
	MaxWidth  int
	MaxHeight int
	Quality   float64 // 0〜1
}

func DefaultPolicy() Policy {
	return Policy{
		MaxBytes:     5 * 1024 * 1024,
		MaxPixels:    40_000_000,
		AllowedTypes: []string{"image/jpeg", "image/png", "image/webp", "image/gif"},
		AllowedExts:  []string{".jpg", ".jpeg", ".png", ".webp", ".gif"},
		Resize:       true,
		MaxWidth:     1920,
		MaxHeight:    1080,
		Quality:      0.8,
	}
}

// Fileは送られてきた1ファイル
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Validateはネットワークに出る前の検査。
// 中身から判定した型を返す（宣言された型と食い違えばエラー）。
func (p Policy) Validate(f File) (string, error) {
	if len(f.Data) == 0 {
		return "", ErrEmptyFile
	}
	if int64(len(f.Data)) > p.MaxBytes {
		return "", fmt.Errorf("%w: max %s", ErrFileTooLarge, humanSize(p.MaxBytes))
	}

	ext := strings.ToLower(filepath.Ext(f.Name))
	if !contains(p.AllowedExts, ext) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}

	sniffed := mimetype.Detect(f.Data).String()
	if i := strings.IndexByte(sniffed, ';'); i >= 0 {
		sniffed = sniffed[:i]
	}
	if !contains(p.AllowedTypes, sniffed) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, sniffed)
	}

	declared := strings.ToLower(strings.TrimSpace(f.ContentType))
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if declared != "" && declared != "application/octet-stream" && declared != sniffed {
		return "", fmt.Errorf("%w: declared %s but content is %s", ErrUnsupportedType, declared, sniffed)
	}
	if err := p.checkDimensions(f.Data); err != nil {
		return "", err
	}
	return sniffed, nil
}

// checkDimensionsはヘッダだけ読んで画素数を見る
func (p Policy) checkDimensions(data []byte) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedType, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: empty image", ErrUnsupportedType)
	}
	if p.MaxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > p.MaxPixels {
		return fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}
	return nil
}

// Messageは利用者に見せる文言
func Message(err error) string {
	switch {
	case errors.Is(err, ErrEmptyFile):
		return "The selected file is empty"
	case errors.Is(err, ErrFileTooLarge):
		return "File too large"
	case errors.Is(err, ErrImageTooLarge):
		return "Image dimensions too large"
	case errors.Is(err, ErrUnsupportedExtension), errors.Is(err, ErrUnsupportedType):
		return "Unsupported file type"
	}
	return "Invalid file"
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func humanSize(n int64) string {
	const mb = 1024 * 1024
	if n >= mb && n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}
