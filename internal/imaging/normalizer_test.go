package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scanscore/internal/domain"
)

// noisyImage builds an image that compresses poorly, so the shrink loop
// actually has to iterate.
func noisyImage(w, h int) *image.RGBA {
	rng := rand.New(rand.NewSource(42))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}
	return img
}

func TestNormalize(t *testing.T) {
	t.Run("small image fits without shrinking", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 64, 64))
		data, err := Normalize(img, DefaultSizeBudget)
		require.NoError(t, err)
		assert.NotEmpty(t, data)
		assert.LessOrEqual(t, len(data), DefaultSizeBudget)
	})

	t.Run("large image shrinks under the budget", func(t *testing.T) {
		img := noisyImage(400, 400)
		budget := 20_000
		data, err := Normalize(img, budget)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(data), budget)
	})

	t.Run("output is jpeg", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 32, 32))
		data, err := Normalize(img, DefaultSizeBudget)
		require.NoError(t, err)
		// JPEG SOI marker.
		require.GreaterOrEqual(t, len(data), 2)
		assert.Equal(t, []byte{0xFF, 0xD8}, data[:2])
	})

	t.Run("non-positive budget is rejected", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 32, 32))
		_, err := Normalize(img, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidBudget)
		_, err = Normalize(img, -1)
		assert.ErrorIs(t, err, domain.ErrInvalidBudget)
	})

	t.Run("nil image is rejected", func(t *testing.T) {
		_, err := Normalize(nil, DefaultSizeBudget)
		assert.ErrorIs(t, err, domain.ErrEmptyImage)
	})

	t.Run("zero-dimension image is rejected", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 0, 0))
		_, err := Normalize(img, DefaultSizeBudget)
		assert.ErrorIs(t, err, domain.ErrEmptyImage)
	})

	t.Run("payload size never grows across iterations", func(t *testing.T) {
		img := image.Image(noisyImage(400, 400))
		prev, err := encodeJPEG(img)
		require.NoError(t, err)

		for i := 0; i < 8; i++ {
			next, data, ok, err := shrinkOnce(img)
			require.NoError(t, err)
			require.True(t, ok)
			assert.LessOrEqual(t, len(data), len(prev), "iteration %d", i)
			img, prev = next, data
		}
	})

	t.Run("unreachable budget returns payload and error", func(t *testing.T) {
		img := noisyImage(64, 64)
		data, err := Normalize(img, 10)
		assert.ErrorIs(t, err, domain.ErrBudgetUnreachable)
		assert.NotEmpty(t, data)
	})
}

func TestNormalizeBytes(t *testing.T) {
	t.Run("decodes png and returns jpeg payload", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, noisyImage(64, 64)))

		payload, err := NormalizeBytes(buf.Bytes(), DefaultSizeBudget)
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", payload.ContentType)
		assert.NotEmpty(t, payload.Data)
	})

	t.Run("rejects undecodable bytes", func(t *testing.T) {
		_, err := NormalizeBytes([]byte("not an image"), DefaultSizeBudget)
		assert.Error(t, err)
	})
}
