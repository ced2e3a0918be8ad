package upload

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

// Prepareは必要なら画像を縮小する。
// JPEGとPNGだけ対象で、収まっている画像やWEBP/GIFはそのまま返す。
func (p Policy) Prepare(f File, contentType string) (File, error) {
	if !p.Resize || (contentType != "image/jpeg" && contentType != "image/png") {
		return f, nil
	}

	if err := p.checkDimensions(f.Data); err != nil {
		return File{}, err
	}
	src, _, err := image.Decode(bytes.NewReader(f.Data))
	if err != nil {
		return File{}, fmt.Errorf("decode image: %w", err)
	}
	b := src.Bounds()
	w, h := fit(b.Dx(), b.Dy(), p.MaxWidth, p.MaxHeight)
	if w == b.Dx() && h == b.Dy() {
		return f, nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	switch contentType {
	case "image/jpeg":
		q := int(p.Quality * 100)
		if q < 1 {
			q = 1
		}
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: q})
	default:
		err = png.Encode(&buf, dst)
	}
	if err != nil {
		return File{}, fmt.Errorf("encode image: %w", err)
	}
	return File{Name: f.Name, ContentType: contentType, Data: buf.Bytes()}, nil
}

// fitは縦横比を保って上限に収まるサイズ
func fit(w, h, maxW, maxH int) (int, int) {
	if maxW <= 0 || maxH <= 0 || (w <= maxW && h <= maxH) {
		return w, h
	}
	rw := float64(maxW) / float64(w)
	rh := float64(maxH) / float64(h)
	r := rw
	if rh < r {
		r = rh
	}
	nw := int(float64(w) * r)
	nh := int(float64(h) * r)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return nw, nh
}
