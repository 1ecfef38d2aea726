// Package imaging turns uploaded images into compact JPEG data URIs suitable
// for storing directly in a table column.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"github.com/nfnt/resize"
)

const (
	MaxWidth = 800
	Quality  = 70

	dataURIPrefix = "data:image/jpeg;base64,"
)

// ErrDecode is returned when the input is not a decodable image.
var ErrDecode = errors.New("imaging: cannot decode image")

// Preprocess decodes r, scales it down to at most MaxWidth pixels wide keeping
// the aspect ratio, and returns it as a JPEG data URI.
func Preprocess(r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}

	img = Fit(img)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: Quality}); err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Fit returns img unchanged when it is already narrow enough, otherwise a
// Lanczos-resampled copy MaxWidth pixels wide.
func Fit(img image.Image) image.Image {
	w, h := Dimensions(img.Bounds().Dx(), img.Bounds().Dy())
	if w == img.Bounds().Dx() {
		return img
	}
	return resize.Resize(uint(w), uint(h), img, resize.Lanczos3)
}

// Dimensions reports the output size for a w×h input.
func Dimensions(w, h int) (int, int) {
	if w <= MaxWidth || w == 0 {
		return w, h
	}
	scaled := (h*MaxWidth + w/2) / w
	if scaled < 1 {
		scaled = 1
	}
	return MaxWidth, scaled
}

// DecodeDataURI reverses Preprocess. Used to inspect stored images.
func DecodeDataURI(uri string) (image.Image, error) {
	if len(uri) < len(dataURIPrefix) || uri[:len(dataURIPrefix)] != dataURIPrefix {
		return nil, fmt.Errorf("%w: not a jpeg data uri", ErrDecode)
	}
	raw, err := base64.StdEncoding.DecodeString(uri[len(dataURIPrefix):])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	img, err := jpeg.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, nil
}
