package ddv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAudioBits_Next(t *testing.T) {
	var bits audioBits

	// Bits come from the low end of each little endian word.
	bits.reset([]byte{0x34, 0x12, 0x78, 0x56, 0xbc, 0x9a})
	assert.Equal(t, uint32(0x4), bits.next(4))
	assert.Equal(t, uint32(0x3), bits.next(4))
	assert.Equal(t, uint32(0x12), bits.next(8))
	assert.Equal(t, uint32(0x5678), bits.next(16))
	assert.Equal(t, uint32(0x9abc), bits.next(16))

	// Reads past the end return zero bits.
	assert.Equal(t, uint32(0), bits.next(16))
}

func TestAudioBits_Align(t *testing.T) {
	var bits audioBits

	bits.reset([]byte{0xff, 0x00, 0xaa, 0x55})
	assert.Equal(t, uint32(0xf), bits.next(4))

	// Alignment drops up to the next byte boundary.
	bits.align()
	assert.Equal(t, uint32(0x00), bits.next(8))
	assert.Equal(t, uint32(0xaa), bits.next(8))

	// On a byte boundary it is a no-op.
	bits.align()
	assert.Equal(t, uint32(0x55), bits.next(8))
}

func TestAudioBits_Residual(t *testing.T) {
	var bits audioBits

	// At width 4 the raw value 0b0001 is +1, 0b1001 is -1 and the bare
	// sign bit 0b1000 escapes to the next width.
	bits.reset([]byte{0x01, 0x00})
	value, ok := bits.residual(4)
	assert.True(t, ok)
	assert.Equal(t, int32(1), value)

	bits.reset([]byte{0x09, 0x00})
	value, ok = bits.residual(4)
	assert.True(t, ok)
	assert.Equal(t, int32(-1), value)

	bits.reset([]byte{0x08, 0x00})
	_, ok = bits.residual(4)
	assert.False(t, ok)

	// Width 16 has no reachable escape: the bare sign bit collapses to
	// zero and the extremes stay in range.
	bits.reset([]byte{0x00, 0x80})
	value, ok = bits.residual(16)
	assert.True(t, ok)
	assert.Equal(t, int32(0), value)

	bits.reset([]byte{0xff, 0xff})
	value, ok = bits.residual(16)
	assert.True(t, ok)
	assert.Equal(t, int32(-32767), value)

	bits.reset([]byte{0xff, 0x7f})
	value, ok = bits.residual(16)
	assert.True(t, ok)
	assert.Equal(t, int32(32767), value)
}

func TestAudioWidth(t *testing.T) {
	assert.Equal(t, 4, audioWidth(4))
	assert.Equal(t, 16, audioWidth(16))

	// Out of range widths clamp to the reader limits, negative values
	// included.
	assert.Equal(t, 1, audioWidth(0))
	assert.Equal(t, 16, audioWidth(100))
	assert.Equal(t, 1, audioWidth(0xffff))
}

func TestAudioSignLog(t *testing.T) {
	assert.Equal(t, int32(0), audioSignLog(0))
	assert.Equal(t, int32(1), audioSignLog(1))
	assert.Equal(t, int32(127), audioSignLog(127))

	// 128 is the first value with a shifted mantissa: 1<<7 | 128>>1.
	assert.Equal(t, int32(192), audioSignLog(128))

	// 1000 packs as length 3 and mantissa 125.
	assert.Equal(t, int32(509), audioSignLog(1000))
	assert.Equal(t, int32(-509), audioSignLog(-1000))
	assert.Equal(t, int32(-32768), audioSignLog(-32768))
}

func TestAudioExpand(t *testing.T) {
	assert.Equal(t, int16(0), audioExpand(0))
	assert.Equal(t, int16(1), audioExpand(1))
	assert.Equal(t, int16(127), audioExpand(127))
	assert.Equal(t, int16(128), audioExpand(192))

	// The half step below the truncated bits is restored.
	assert.Equal(t, int16(1002), audioExpand(509))
	assert.Equal(t, int16(-1002), audioExpand(-509))

	// A round trip lands within the truncated low bits.
	for _, x := range []int16{5, 77, 300, 2500, 12345, -12345} {
		y := audioExpand(int16(audioSignLog(x)))

		diff := int(y) - int(x)
		if diff < 0 {
			diff = -diff
		}

		assert.LessOrEqual(t, diff, 256, "sample %d", x)
	}
}

func TestAudio_DecodeFrame(t *testing.T) {
	audio := NewAudio(nil, AudioInfo{Samplerate: 22050, SamplesPerFrame: 4, Channels: 2})

	// Sign log coding with seeds 0, 0, 1000 and one zero residual at
	// width 6. The prediction 2500 compresses to 718 and expands to 2504.
	channel := []byte{
		0x01, 0x00, // sign log table
		0x06, 0x00, 0x06, 0x00, 0x06, 0x00, // residual widths
		0x00, 0x00, 0x00, 0x00, 0xe8, 0x03, // seeds
		0x00, // residual and alignment
	}

	audio.frameData = append(append([]byte{}, channel...), channel...)
	audio.decodeFrame()

	want := []int16{0, 0, 0, 0, 1000, 1000, 2504, 2504}
	assert.Equal(t, want, audio.samples.Interleaved)
}

func TestAudio_ShortFrame(t *testing.T) {
	// One sample per channel: the first seed lands, the other two are
	// consumed and dropped.
	audio := NewAudio(nil, AudioInfo{Samplerate: 22050, SamplesPerFrame: 1, Channels: 2})

	audio.frameData = []byte{
		0x00, 0x00,
		0x01, 0x00, 0x01, 0x00, 0x01, 0x00,
		0x07, 0x00, 0x08, 0x00, 0x09, 0x00,
		0x00, 0x00,
		0x01, 0x00, 0x01, 0x00, 0x01, 0x00,
		0x0a, 0x00, 0x0b, 0x00, 0x0c, 0x00,
	}
	audio.decodeFrame()

	assert.Equal(t, []int16{7, 10}, audio.samples.Interleaved)
}

func TestSamplesReader(t *testing.T) {
	audio := NewAudio(nil, AudioInfo{Samplerate: 22050, SamplesPerFrame: 2, Channels: 2})
	copy(audio.samples.Interleaved, []int16{1, 2, 3, 4})

	reader := audio.Reader()

	// The reader exposes the sample memory and starts over at the end.
	buf := make([]byte, 8)
	for i := 0; i < 3; i++ {
		n, err := reader.Read(buf)
		require.NoError(t, err)
		assert.Equal(t, 8, n)
		assert.Equal(t, []byte{1, 0, 2, 0, 3, 0, 4, 0}, buf)
	}
}

func TestAudio_DecodeShort(t *testing.T) {
	buf, err := NewBuffer(nil)
	require.NoError(t, err)

	audio := NewAudio(buf, AudioInfo{Samplerate: 22050, SamplesPerFrame: 4})

	// A length prefix without its payload is not decoded.
	buf.Write([]byte{100, 0, 0, 0, 1, 2, 3})
	assert.Nil(t, audio.Decode())
}
