package ddv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVideoBits_Consume(t *testing.T) {
	b := &videoBits{raw: []byte{0x34, 0x12, 0x78, 0x56, 0xbc, 0x9a, 0xf0, 0xde, 0x22, 0x11}}

	// Words are little endian, bits inside them arrive high first.
	assert.Equal(t, uint32(0x1234), b.nextWord())

	w1 := b.nextWord()
	w2 := b.nextWord()
	b.w = w1<<16 | w2

	assert.Equal(t, uint32(0x5), b.peek(4))

	b.consume(4)
	assert.Equal(t, uint32(0x6), b.peek(4))

	// Crossing a word boundary refills from the stream.
	b.consume(12)
	assert.Equal(t, uint32(0x9abc), b.peek(16))
	assert.False(t, b.overrun)

	b.consume(16)
	assert.Equal(t, uint32(0xdef0), b.peek(16))

	// Reading past the end raises the overrun flag and drains zeros.
	b.consume(16)
	assert.True(t, b.overrun)
}

func TestVideoCodes(t *testing.T) {
	// An end-of-block stops an entry after two bits.
	entry := videoShortCodes[0b1000000000000]
	assert.Equal(t, uint8(2), entry.skip)
	assert.Equal(t, uint16(videoEndOfBlock), entry.words[0])
	assert.Equal(t, uint16(0), entry.words[1])

	// Three whole codes packed into one window: +1, -1, end-of-block.
	entry = videoShortCodes[0b1101111000000]
	assert.Equal(t, uint8(8), entry.skip)
	assert.Equal(t, uint16(0x0001), entry.words[0])
	assert.Equal(t, uint16(0x03ff), entry.words[1])
	assert.Equal(t, uint16(videoEndOfBlock), entry.words[2])

	// The six bit escape code stops an entry, the literal follows in the
	// raw stream.
	entry = videoShortCodes[0b0000010000000]
	assert.Equal(t, uint8(6), entry.skip)
	assert.Equal(t, uint16(videoEscape), entry.words[0])

	// Run 0 level 31 is a fifteen bit code resolved over the long window,
	// whose skip count excludes the eight zero bits already known.
	long := videoLongCodes[0b000000000100000<<2]
	assert.Equal(t, uint8(7), long.skip)
	assert.Equal(t, uint16(31), long.word)

	// Its sign bit variant carries the negated level.
	long = videoLongCodes[0b000000000100001<<2]
	assert.Equal(t, uint8(7), long.skip)
	assert.Equal(t, uint16(0x3e1), long.word)
}

func TestVideoZigZag(t *testing.T) {
	var seen [64]bool
	for _, z := range videoZigZag {
		seen[z] = true
	}

	for i, ok := range seen {
		assert.True(t, ok, "position %d missing", i)
	}
}

func TestVideo_ApplyQuantScale(t *testing.T) {
	video := NewVideo(nil, VideoInfo{Width: 16, Height: 16})

	// Scale 0 keeps every factor at the DC value.
	video.applyQuantScale(0)
	for i := 0; i < 64; i++ {
		require.Equal(t, uint32(16), video.quantLuma[i])
		require.Equal(t, uint32(16), video.quantChroma[i])
	}

	video.applyQuantScale(3)
	assert.Equal(t, uint32(16), video.quantLuma[0])
	assert.Equal(t, uint32(16), video.quantChroma[0])
	assert.Equal(t, uint32(3*12), video.quantLuma[1])
	assert.Equal(t, uint32(3*99), video.quantLuma[63])

	// Chroma weights are read one ahead of the luma weights.
	assert.Equal(t, uint32(3*18), video.quantChroma[1])
	assert.Equal(t, uint32(3*99), video.quantChroma[63])
}

func TestVideo_DecodeBlock(t *testing.T) {
	video := NewVideo(nil, VideoInfo{Width: 16, Height: 16})
	video.applyQuantScale(2)

	slots := make([]int32, 64)
	for i := range slots {
		slots[i] = -1
	}

	// DC level 256, then level +2 at position 1 and level -3 after a run
	// of one.
	video.decoded = []uint16{0x200, 0x0002, 0x07fd, videoEndOfBlock}
	pos := video.decodeBlock(0, slots, true)

	assert.Equal(t, 4, pos)
	assert.Equal(t, uint32(0x600), uint32(slots[0]))

	// The high half keeps the accumulated level, the low half the
	// dequantised value: (24*2+4)>>3 and (20*-3+4)>>3.
	assert.Equal(t, uint32(0x00800006), uint32(slots[1]))
	assert.Equal(t, uint32(0xff40fff9), uint32(slots[16]))

	// The run and the tail clear everything else.
	for i, s := range slots {
		if i == 0 || i == 1 || i == 16 {
			continue
		}
		require.Equal(t, int32(0), s, "slot %d", i)
	}

	// Delta coding accumulates on the previous levels and leaves
	// untouched slots alone.
	video.decoded = []uint16{0x201, 0x0001, videoEndOfBlock}
	pos = video.decodeBlock(0, slots, true)

	assert.Equal(t, 3, pos)
	assert.Equal(t, uint32(0x600), uint32(slots[0]))
	assert.Equal(t, uint32(0x00c00009), uint32(slots[1]))
	assert.Equal(t, uint32(0xff40fff9), uint32(slots[16]))

	// A stray end marker left by a full previous block is skipped.
	video.decoded = []uint16{videoEndOfBlock, 0x200, videoEndOfBlock}
	pos = video.decodeBlock(0, slots, true)

	assert.Equal(t, 3, pos)
	assert.Equal(t, uint32(0x600), uint32(slots[0]))
	assert.Equal(t, int32(0), slots[1])

	// Chroma blocks carry no DC bias.
	video.decoded = []uint16{0x200, videoEndOfBlock}
	video.decodeBlock(0, slots, false)
	assert.Equal(t, int32(512), slots[0])
}

func TestVideo_IDCT(t *testing.T) {
	video := NewVideo(nil, VideoInfo{Width: 16, Height: 16})

	// A lone DC of 1024 is a flat 128. Only the low half of a slot feeds
	// the transform.
	slots := make([]int32, 64)
	slots[0] = 0x00400400

	var dst [64]int32
	video.idctBlock(slots, &dst)

	for i, value := range dst {
		require.Equal(t, int32(128), value, "index %d", i)
	}

	// A single horizontal frequency renders the same ramp on every row.
	slots[0] = 0
	slots[1] = 64
	video.idctBlock(slots, &dst)

	want := []int32{11, 9, 6, 2, -3, -7, -10, -12}
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			require.Equal(t, want[col], dst[row*8+col], "row %d col %d", row, col)
		}
	}
}

func TestVideo_Blit(t *testing.T) {
	video := NewVideo(nil, VideoInfo{Width: 16, Height: 16})

	for b := blockY1; b <= blockY4; b++ {
		for i := range video.blocks[b] {
			video.blocks[b][i] = 128
		}
	}

	video.blocks[blockCb][0] = 32
	video.blitMacroblock(0, 0)

	// The first chroma plane drives blue: 128+1.772*32 and 128-0.3437*32.
	px := video.frame.Data[0]
	assert.Equal(t, uint32(184), px>>16&0xff)
	assert.Equal(t, uint32(117), px>>8&0xff)
	assert.Equal(t, uint32(128), px&0xff)

	// Chroma samples are doubled, pixel (1,1) shares sample 0.
	assert.Equal(t, px, video.frame.Data[1*16+1])

	// Pixel (2,2) reads chroma sample (1,1), still neutral.
	assert.Equal(t, uint32(0x808080), video.frame.Data[2*16+2])

	video.blocks[blockCb][0] = 0
	video.blocks[blockCr][0] = 32
	video.blitMacroblock(0, 0)

	// The second plane drives red: 128+1.402*32 and 128-0.7143*32.
	px = video.frame.Data[0]
	assert.Equal(t, uint32(128), px>>16&0xff)
	assert.Equal(t, uint32(105), px>>8&0xff)
	assert.Equal(t, uint32(172), px&0xff)

	// Overhanging pixels of a non multiple of 16 size are dropped.
	small := NewVideo(nil, VideoInfo{Width: 12, Height: 12})
	for b := blockY1; b <= blockY4; b++ {
		for i := range small.blocks[b] {
			small.blocks[b][i] = 128
		}
	}

	small.blitMacroblock(0, 0)
	assert.Equal(t, 12*12, len(small.frame.Data))
	assert.Equal(t, uint32(0x808080), small.frame.Data[12*12-1])
}

func TestVideo_DecodeBitstream(t *testing.T) {
	video := NewVideo(nil, VideoInfo{Width: 16, Height: 16})

	// Quantiser scale 7, an empty block header, an escaped literal and
	// the end of the frame. Decode pads the payload, the reader may run
	// past the end marker.
	video.frameData = []byte{0x07, 0x00, 0x00, 0x00, 0x1a, 0x89, 0xfc, 0x4f}
	video.frameData = append(video.frameData, make([]byte, videoSlack)...)

	qscale, ok := video.decodeBitstream()
	require.True(t, ok)
	assert.Equal(t, 7, qscale)
	assert.Equal(t, []uint16{0, 0x1234, videoEndOfBlock}, video.decoded)

	// A payload that ends before the end marker fails instead of looping.
	video.frameData = []byte{0x07, 0x00, 0x00, 0x00}
	video.frameData = append(video.frameData, make([]byte, videoSlack)...)

	_, ok = video.decodeBitstream()
	assert.False(t, ok)
}

func TestVideo_DecodeShort(t *testing.T) {
	buf, err := NewBuffer(nil)
	require.NoError(t, err)

	video := NewVideo(buf, VideoInfo{Width: 16, Height: 16, Framerate: 15})

	// A length prefix without its payload is not decoded.
	buf.Write([]byte{100, 0, 0, 0, 1, 2, 3})
	assert.Nil(t, video.Decode())
}
