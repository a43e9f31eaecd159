package gallery

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"strings"
	"unicode"

	"facegreeter/internal/model"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"golang.org/x/text/unicode/norm"
)

// MaxUploadDimension bounds the longer side of a stored gallery image.
const MaxUploadDimension = 1600

const uploadJPEGQuality = 95

// NormalizeName turns a user supplied name into a gallery key: trimmed, NFC normalized
// and safe to use as a file name.
func NormalizeName(name string) (string, error) {
	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" {
		return "", fmt.Errorf("%w: name is required", model.ErrValidation)
	}
	if strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: invalid name %q", model.ErrValidation, name)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("%w: invalid name %q", model.ErrValidation, name)
		}
	}
	if strings.EqualFold(name, model.UnknownIdentity) {
		return "", fmt.Errorf("%w: %q is reserved", model.ErrValidation, name)
	}
	return name, nil
}

// NormalizeUpload converts any supported upload (JPEG, PNG, BMP, WEBP) into a JPEG
// whose longer side is at most MaxUploadDimension.
func NormalizeUpload(data []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrDecode, err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if width <= MaxUploadDimension && height <= MaxUploadDimension {
		if format == "jpeg" {
			return data, nil
		}
		return encodeJPEG(img)
	}

	var newWidth, newHeight int
	if width > height {
		newWidth = MaxUploadDimension
		newHeight = int(float64(height) * float64(MaxUploadDimension) / float64(width))
	} else {
		newHeight = MaxUploadDimension
		newWidth = int(float64(width) * float64(MaxUploadDimension) / float64(height))
	}

	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
	return encodeJPEG(resized)
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: uploadJPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
