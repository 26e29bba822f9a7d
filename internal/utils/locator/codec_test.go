package locator

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"HerbPass/domain"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestEncodeIsDeterministic(t *testing.T) {
	codec := NewCodec(DefaultOptions())

	first, err := codec.Encode("http://localhost:5000/batch/1")
	require.NoError(t, err)
	second, err := codec.Encode("http://localhost:5000/batch/1")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := codec.Encode("http://localhost:5000/batch/2")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestEncodeProducesPNG(t *testing.T) {
	codec := NewCodec(DefaultOptions())

	data, err := codec.Encode("http://localhost:5000/batch/42")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	bounds := img.Bounds()
	assert.Equal(t, bounds.Dx(), bounds.Dy())
	assert.Zero(t, bounds.Dx()%10, "each module is 10 pixels wide")

	// The quiet zone is background coloured.
	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b})
}

func TestEncodeHonoursOptions(t *testing.T) {
	url := "http://localhost:5000/batch/7"
	base, err := NewCodec(DefaultOptions()).Encode(url)
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Recovery = qrcode.Highest
	opts.Foreground = color.RGBA{R: 0x1b, G: 0x5e, B: 0x20, A: 0xff}
	high, err := NewCodec(opts).Encode(url)
	require.NoError(t, err)
	assert.NotEqual(t, base, high)
}

func TestEncodeRejectsEmptyURL(t *testing.T) {
	codec := NewCodec(DefaultOptions())

	for _, url := range []string{"", "   "} {
		_, err := codec.Encode(url)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
}
