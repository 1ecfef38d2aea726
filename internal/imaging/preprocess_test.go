package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngOf(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 7 {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &buf
}

func TestPreprocessScalesProportionally(t *testing.T) {
	uri, err := Preprocess(pngOf(t, 1600, 1200))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/jpeg;base64,"))

	img, err := DecodeDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy())
}

func TestPreprocessKeepsSmallImages(t *testing.T) {
	uri, err := Preprocess(pngOf(t, 400, 300))
	require.NoError(t, err)

	img, err := DecodeDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())
}

func TestPreprocessRejectsGarbage(t *testing.T) {
	_, err := Preprocess(strings.NewReader("definitely not an image"))
	assert.ErrorIs(t, err, ErrDecode)
}

func TestDimensions(t *testing.T) {
	tests := []struct {
		w, h         int
		wantW, wantH int
	}{
		{1600, 1200, 800, 600},
		{800, 533, 800, 533},
		{1000, 3, 800, 2},
		{4000, 1, 800, 1},
		{120, 90, 120, 90},
	}
	for _, tt := range tests {
		w, h := Dimensions(tt.w, tt.h)
		assert.Equal(t, tt.wantW, w, "%dx%d", tt.w, tt.h)
		assert.Equal(t, tt.wantH, h, "%dx%d", tt.w, tt.h)
	}
}

func TestDecodeDataURIRejectsOtherSchemes(t *testing.T) {
	_, err := DecodeDataURI("https://example.com/a.jpg")
	assert.ErrorIs(t, err, ErrDecode)
}
