package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/nfnt/resize"
)

const (
	// CompressThreshold is the upload size above which images are downscaled.
	CompressThreshold = 1 << 20
	maxImageWidth     = 800
)

// Downscale shrinks a jpeg or png image to maxImageWidth keeping the aspect
// ratio and re-encodes it in the same format. Narrower images and other
// content types are returned unchanged.
func Downscale(data []byte, contentType string) ([]byte, error) {
	var (
		img image.Image
		err error
	)
	switch contentType {
	case "image/png":
		img, err = png.Decode(bytes.NewReader(data))
	case "image/jpeg", "image/jpg":
		img, err = jpeg.Decode(bytes.NewReader(data))
	default:
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if img.Bounds().Dx() <= maxImageWidth {
		return data, nil
	}

	small := resize.Resize(maxImageWidth, 0, img, resize.Lanczos3)

	var buf bytes.Buffer
	if contentType == "image/png" {
		err = png.Encode(&buf, small)
	} else {
		err = jpeg.Encode(&buf, small, &jpeg.Options{Quality: 80})
	}
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
