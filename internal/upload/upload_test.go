package upload

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil))
	return buf.Bytes()
}

func TestValidate_TooLarge(t *testing.T) {
	p := DefaultPolicy()
	data := make([]byte, 6*1024*1024)
	copy(data, pngBytes(t, 2, 2))

	_, err := p.Validate(File{Name: "big.png", ContentType: "image/png", Data: data})
	assert.True(t, errors.Is(err, ErrFileTooLarge))
	assert.Contains(t, err.Error(), "5MB")
}

func TestValidate_Empty(t *testing.T) {
	_, err := DefaultPolicy().Validate(File{Name: "a.png"})
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestValidate_Extension(t *testing.T) {
	_, err := DefaultPolicy().Validate(File{Name: "a.exe", Data: pngBytes(t, 2, 2)})
	assert.ErrorIs(t, err, ErrUnsupportedExtension)
}

func TestValidate_SniffsContent(t *testing.T) {
	p := DefaultPolicy()

	_, err := p.Validate(File{Name: "fake.png", ContentType: "image/png", Data: []byte("plain text, not an image")})
	assert.ErrorIs(t, err, ErrUnsupportedType)

	// 宣言と中身が違う
	_, err = p.Validate(File{Name: "a.png", ContentType: "image/gif", Data: pngBytes(t, 2, 2)})
	assert.ErrorIs(t, err, ErrUnsupportedType)

	ct, err := p.Validate(File{Name: "a.PNG", ContentType: "image/png", Data: pngBytes(t, 2, 2)})
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)
}

// hugePNGはIHDRだけで大きな寸法を名乗る数十バイトのPNG
func hugePNG(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.Write([]byte("\x89PNG\r\n\x1a\n"))

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 2 // RGB

	chunk := append([]byte("IHDR"), ihdr...)
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestValidate_RejectsHugeDimensionsBeforeDecode(t *testing.T) {
	p := DefaultPolicy()
	data := hugePNG(40000, 40000)
	require.Less(t, len(data), 100)

	_, err := p.Validate(File{Name: "bomb.png", ContentType: "image/png", Data: data})
	assert.ErrorIs(t, err, ErrImageTooLarge)
	assert.Equal(t, "Image dimensions too large", Message(err))

	_, err = p.Prepare(File{Name: "bomb.png", ContentType: "image/png", Data: data}, "image/png")
	assert.ErrorIs(t, err, ErrImageTooLarge)

	//上限内なら通る
	p.MaxPixels = 4
	_, err = p.Validate(File{Name: "a.png", ContentType: "image/png", Data: pngBytes(t, 2, 2)})
	assert.NoError(t, err)
	_, err = p.Validate(File{Name: "a.png", ContentType: "image/png", Data: pngBytes(t, 3, 2)})
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestPrepare_ShrinksToBounds(t *testing.T) {
	p := DefaultPolicy()
	p.MaxWidth, p.MaxHeight = 100, 100

	out, err := p.Prepare(File{Name: "a.jpg", ContentType: "image/jpeg", Data: jpegBytes(t, 400, 200)}, "image/jpeg")
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestPrepare_KeepsSmallAndDisabled(t *testing.T) {
	p := DefaultPolicy()
	in := File{Name: "a.png", ContentType: "image/png", Data: pngBytes(t, 10, 10)}

	out, err := p.Prepare(in, "image/png")
	require.NoError(t, err)
	assert.Equal(t, in.Data, out.Data)

	p.Resize = false
	p.MaxWidth = 1
	out, err = p.Prepare(in, "image/png")
	require.NoError(t, err)
	assert.Equal(t, in.Data, out.Data)
}

func TestFit(t *testing.T) {
	w, h := fit(3840, 2160, 1920, 1080)
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)

	w, h = fit(1000, 4000, 1920, 1080)
	assert.Equal(t, 270, w)
	assert.Equal(t, 1080, h)
}

func TestPreviews_Lifecycle(t *testing.T) {
	pv := NewPreviews()
	id, err := pv.Create("u1", "image/png", []byte{1})
	require.NoError(t, err)

	got, err := pv.Get("u1", id)
	require.NoError(t, err)
	assert.Equal(t, "image/png", got.ContentType)

	_, err = pv.Get("u2", id)
	assert.ErrorIs(t, err, ErrPreviewNotFound)
	assert.False(t, pv.Revoke("u2", id))

	assert.True(t, pv.Revoke("u1", id))
	assert.Equal(t, 0, pv.Len())

	_, _ = pv.Create("u1", "image/png", []byte{1})
	_, _ = pv.Create("u1", "image/png", []byte{2})
	assert.Equal(t, 2, pv.RevokeOwner("u1"))

	_, _ = pv.Create("u1", "image/png", []byte{1})
	pv.Close()
	assert.Equal(t, 0, pv.Len())
	_, err = pv.Create("u1", "image/png", []byte{1})
	assert.Error(t, err)
}
