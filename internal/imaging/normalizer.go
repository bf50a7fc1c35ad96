package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // register PNG decoding for NormalizeBytes

	"golang.org/x/image/draw"

	"scanscore/internal/domain"
)

const (
	// DefaultSizeBudget is the payload ceiling accepted by the OCR collaborator.
	DefaultSizeBudget = 4_000_000

	encodeQuality = 85
	scaleNum      = 4 // scale factor 0.8 as a ratio
	scaleDen      = 5

	// maxIterations bounds the shrink loop; 0.8^40 reduces any practical
	// image to a handful of pixels long before this trips.
	maxIterations = 40
)

// Normalize encodes img as JPEG and shrinks it by 0.8 per iteration until the
// payload fits within budget bytes. When even the smallest achievable payload
// exceeds the budget, the payload is returned together with
// domain.ErrBudgetUnreachable so callers can reject the document.
func Normalize(img image.Image, budget int) ([]byte, error) {
	if budget <= 0 {
		return nil, domain.ErrInvalidBudget
	}
	if img == nil {
		return nil, domain.ErrEmptyImage
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, domain.ErrEmptyImage
	}

	data, err := encodeJPEG(img)
	if err != nil {
		return nil, err
	}

	for i := 0; i < maxIterations && len(data) > budget; i++ {
		next, shrunk, ok, err := shrinkOnce(img)
		if err != nil {
			return nil, err
		}
		if !ok {
			return data, domain.ErrBudgetUnreachable
		}
		img, data = next, shrunk
	}

	if len(data) > budget {
		return data, domain.ErrBudgetUnreachable
	}
	return data, nil
}

// NormalizeBytes decodes raw image bytes (JPEG or PNG) and normalizes them,
// returning the payload ready for the OCR collaborator.
func NormalizeBytes(raw []byte, budget int) (domain.ImagePayload, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return domain.ImagePayload{}, fmt.Errorf("decoding image: %w", err)
	}
	data, err := Normalize(img, budget)
	if err != nil {
		return domain.ImagePayload{Data: data, ContentType: "image/jpeg"}, err
	}
	return domain.ImagePayload{Data: data, ContentType: "image/jpeg"}, nil
}

// shrinkOnce runs one loop iteration: scale both dimensions by 0.8 and
// re-encode. Reports ok=false when a dimension would collapse below one pixel.
func shrinkOnce(img image.Image) (image.Image, []byte, bool, error) {
	w := img.Bounds().Dx() * scaleNum / scaleDen
	h := img.Bounds().Dy() * scaleNum / scaleDen
	if w < 1 || h < 1 {
		return img, nil, false, nil
	}
	img = resize(img, w, h)
	data, err := encodeJPEG(img)
	return img, data, true, err
}

func resize(src image.Image, w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: encodeQuality}); err != nil {
		return nil, fmt.Errorf("encoding jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
