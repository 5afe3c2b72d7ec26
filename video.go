package ddv

import (
	"encoding/binary"
	"image"
	"image/color"
	"unsafe"
)

// Frame represents decoded video frame. Data holds one packed pixel per
// uint32 with red in the lowest byte, green and blue above it and an unused
// high byte.
type Frame struct {
	Time float64

	Width  int
	Height int

	Data []uint32

	imRGBA image.RGBA
}

// RGBA returns frame as image.RGBA with an opaque alpha channel.
func (f *Frame) RGBA() *image.RGBA {
	for i, px := range f.Data {
		j := i * 4
		f.imRGBA.Pix[j+0] = byte(px)
		f.imRGBA.Pix[j+1] = byte(px >> 8)
		f.imRGBA.Pix[j+2] = byte(px >> 16)
		f.imRGBA.Pix[j+3] = 0xff
	}

	return &f.imRGBA
}

// Pixels returns frame as slice of color.RGBA.
func (f *Frame) Pixels() []color.RGBA {
	img := f.RGBA()
	return unsafe.Slice((*color.RGBA)(unsafe.Pointer(&img.Pix[0])), len(img.Pix)/4)
}

// Stream markers in the run/level word stream produced by the entropy stage.
const (
	videoEndOfBlock = 0xfe00 // terminates the codes of one block
	videoEscape     = 0x7c1f // the next word is a raw run/level pair
	videoEndMarker  = 0x3ff  // 11-bit end-of-frame marker
)

// Block order within a macroblock. The chroma blocks come first.
const (
	blockCb = iota
	blockCr
	blockY1
	blockY2
	blockY3
	blockY4
)

// The bit reader prefetches up to two words past the last code of a frame,
// the payload is padded so that stays in bounds.
const videoSlack = 8

// Video decodes DDV video data into raw RGB frames.
type Video struct {
	frameRate     float64
	time          float64
	framesDecoded int
	width         int
	height        int
	mbWidth       int
	mbHeight      int

	maxFrameSize int
	keyFrameRate int

	buf *Buffer

	bits videoBits

	frameData []byte
	decoded   []uint16

	// Quantised coefficients of every block, kept across frames so delta
	// frames can accumulate on top of them. Each slot carries the running
	// level in its high half and the dequantised value in its low half.
	coeffs []int32

	quantLuma   [64]uint32
	quantChroma [64]uint32

	idctSource [64]int32
	idctTemp   [64]int32
	blocks     [6][64]int32

	frame Frame
}

// NewVideo creates a video decoder with buffer as a source.
func NewVideo(buf *Buffer, info VideoInfo) *Video {
	video := &Video{}
	video.buf = buf

	video.width = info.Width
	video.height = info.Height
	video.frameRate = info.Framerate
	video.maxFrameSize = info.MaxVideoFrameSize
	video.keyFrameRate = info.KeyFrameRate

	video.mbWidth = (video.width + 15) >> 4
	video.mbHeight = (video.height + 15) >> 4

	video.coeffs = make([]int32, video.mbWidth*video.mbHeight*6*64)

	video.initFrame(&video.frame)

	return video
}

// Buffer returns video buffer.
func (v *Video) Buffer() *Buffer {
	return v.buf
}

// Framerate returns the framerate in frames per second.
func (v *Video) Framerate() float64 {
	return v.frameRate
}

// Width returns the display width.
func (v *Video) Width() int {
	return v.width
}

// Height returns the display height.
func (v *Video) Height() int {
	return v.height
}

// KeyFrameRate returns the distance between self-contained frames.
func (v *Video) KeyFrameRate() int {
	return v.keyFrameRate
}

// Time returns the current internal time in seconds.
func (v *Video) Time() float64 {
	return v.time
}

// SetTime sets the current internal time in seconds. This is only useful when you
// manipulate the underlying video buffer and want to enforce a correct timestamps.
func (v *Video) SetTime(time float64) {
	v.framesDecoded = int(v.frameRate * time)
	v.time = time
}

// Rewind rewinds the internal buffer and resets the decoder state.
func (v *Video) Rewind() {
	v.buf.Rewind()
	v.time = 0
	v.framesDecoded = 0

	for i := range v.coeffs {
		v.coeffs[i] = 0
	}
}

// HasEnded checks whether the file has ended. This will be cleared on rewind.
func (v *Video) HasEnded() bool {
	return v.buf.HasEnded()
}

// Decode decodes and returns one frame of video and advance the internal time by
// 1/framerate seconds. The frames arrive as length prefixed payloads in the
// video buffer.
func (v *Video) Decode() *Frame {
	if !v.buf.has(4) {
		return nil
	}

	data := v.buf.Bytes()
	size := int(binary.LittleEndian.Uint32(data[v.buf.Index():]))

	if !v.buf.has(4 + size) {
		return nil
	}
	v.buf.discardReadBytes()

	v.buf.skip(4)

	if cap(v.frameData) < size+videoSlack {
		v.frameData = make([]byte, size+videoSlack)
	}
	v.frameData = v.frameData[:size+videoSlack]
	v.buf.readBytes(v.frameData[:size], size)

	for i := size; i < len(v.frameData); i++ {
		v.frameData[i] = 0
	}

	if !v.decodeFrame() {
		return nil
	}

	v.frame.Time = v.time
	v.framesDecoded++
	v.time = float64(v.framesDecoded) / v.frameRate

	return &v.frame
}

func (v *Video) initFrame(frame *Frame) {
	frame.Width = v.width
	frame.Height = v.height
	frame.Data = make([]uint32, v.width*v.height)
	frame.imRGBA = *image.NewRGBA(image.Rect(0, 0, v.width, v.height))
}

func (v *Video) decodeFrame() bool {
	qscale, ok := v.decodeBitstream()
	if !ok {
		return false
	}

	v.applyQuantScale(qscale)

	pos := 0

	xoff := 0
	for x := 0; x < v.mbWidth; x++ {
		yoff := 0
		for y := 0; y < v.mbHeight; y++ {
			base := (x*v.mbHeight + y) * 6 * 64

			for b := 0; b < 6; b++ {
				slots := v.coeffs[base+b*64 : base+(b+1)*64]
				pos = v.decodeBlock(pos, slots, b >= blockY1)
				v.idctBlock(slots, &v.blocks[b])
			}

			v.blitMacroblock(xoff, yoff)
			yoff += 16
		}
		xoff += 16
	}

	return true
}

// decodeBlock reads one block worth of run/level words starting at pos and
// returns the position after them. The first word is the block header: bits
// 10-1 are the DC level, bit 0 selects delta coding.
func (v *Video) decodeBlock(pos int, slots []int32, luma bool) int {
	quant := &v.quantChroma
	dc := int32(0)
	if luma {
		quant = &v.quantLuma
		dc = 1 << 10
	}

	// A block that filled all 63 positions ends without its end marker
	// consumed, skip it here.
	for pos < len(v.decoded) && v.decoded[pos] == videoEndOfBlock {
		pos++
	}

	var header uint16
	if pos < len(v.decoded) {
		header = v.decoded[pos]
		pos++
	}

	slots[0] = dc + 2*(int32(header)<<21>>22)

	counter := 0

	if header&1 != 0 {
		// Delta coding. Each code adds its level to the slot accumulator
		// and requantises, untouched slots keep their previous values.
		for {
			if pos >= len(v.decoded) {
				break
			}
			word := v.decoded[pos]
			pos++
			if word == videoEndOfBlock {
				break
			}

			counter += int(word >> 10)
			if counter > 62 {
				counter = 62
			}
			idx := videoZigZag[1+counter]

			acc := slots[idx] + int32(word)<<22
			lo := uint16((int32(quant[1+counter])*(acc>>22) + 4) >> 3)
			slots[idx] = acc&^0xffff | int32(lo)

			counter++
			if counter >= 63 {
				break
			}
		}

		return pos
	}

	for {
		if pos >= len(v.decoded) {
			break
		}
		word := v.decoded[pos]
		pos++
		if word == videoEndOfBlock {
			break
		}

		run := int(word >> 10)
		for k := 0; k < run && counter < 62; k++ {
			slots[videoZigZag[1+counter]] = 0
			counter++
		}
		idx := videoZigZag[1+counter]

		fresh := int32(word) << 22
		lo := uint16((int32(quant[1+counter])*(fresh>>22) + 4) >> 3)
		slots[idx] = fresh&^0xffff | int32(lo)

		counter++
		if counter >= 63 {
			return pos
		}
	}

	// Clear every position the codes above did not reach.
	if counter != 0 {
		for i := counter + 1; i < 64; i++ {
			slots[videoZigZag[i]] = 0
		}
	} else {
		for i := 1; i < 64; i++ {
			slots[i] = 0
		}
	}

	return pos
}

// applyQuantScale rebuilds the dequantisation tables for one frame. The
// first entry always stays 16 and the chroma weights are indexed one ahead
// of the luma weights, matching the encoder layout.
func (v *Video) applyQuantScale(qscale int) {
	v.quantLuma[0] = 16
	v.quantChroma[0] = 16

	if qscale > 0 {
		for i := 0; i < 63; i++ {
			v.quantLuma[i+1] = uint32(qscale) * videoQuantLuma[i]
			v.quantChroma[i+1] = uint32(qscale) * videoQuantChroma[i+1]
		}
	} else {
		for i := 0; i < 64; i++ {
			v.quantLuma[i] = 16
			v.quantChroma[i] = 16
		}
	}
}

// idctBlock runs the inverse transform over the low halves of the slots.
func (v *Video) idctBlock(slots []int32, dst *[64]int32) {
	for i := 0; i < 64; i++ {
		v.idctSource[i] = int32(int16(slots[i]))
	}

	videoHalfIDCT(&v.idctSource, &v.idctTemp, 8, 1, 11)
	videoHalfIDCT(&v.idctTemp, dst, 1, 8, 18)
}

func videoHalfIDCT(src, dst *[64]int32, pitch, inc, shift int) {
	si, di := 0, 0

	for i := 0; i < 8; i++ {
		s0 := src[0*pitch+si]
		s1 := src[1*pitch+si]
		s2 := src[2*pitch+si]
		s3 := src[3*pitch+si]
		s4 := src[4*pitch+si]
		s5 := src[5*pitch+si]
		s6 := src[6*pitch+si]
		s7 := src[7*pitch+si]

		e0 := s0*8192 + s2*10703 + s4*8192 + s6*4433
		e1 := s0*8192 + s2*4433 - s4*8192 - s6*10704
		e2 := s0*8192 - s2*4433 - s4*8192 + s6*10704
		e3 := s0*8192 - s2*10703 + s4*8192 - s6*4433

		o0 := s1*11363 + s3*9633 + s5*6437 + s7*2260
		o1 := s1*9633 - s3*2259 - s5*11362 - s7*6436
		o2 := s1*6437 - s3*11362 + s5*2261 + s7*9633
		o3 := s1*2260 - s3*6436 + s5*9633 - s7*11363

		dst[0*pitch+di] = (e0 + o0) >> shift
		dst[1*pitch+di] = (e1 + o1) >> shift
		dst[2*pitch+di] = (e2 + o2) >> shift
		dst[3*pitch+di] = (e3 + o3) >> shift
		dst[4*pitch+di] = (e3 - o3) >> shift
		dst[5*pitch+di] = (e2 - o2) >> shift
		dst[6*pitch+di] = (e1 - o1) >> shift
		dst[7*pitch+di] = (e0 - o0) >> shift

		si += inc
		di += inc
	}
}

// blitMacroblock converts the six transformed blocks to RGB and writes them
// at the given position. Chroma is upsampled by pixel doubling. Macroblocks
// overhang the frame on non multiple of 16 sizes, overhanging pixels are
// dropped.
func (v *Video) blitMacroblock(xoff, yoff int) {
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			b := blockY1 + x>>3 + y>>3*2

			lum := float32(v.blocks[b][(y&7)*8+(x&7)])
			cb := float32(v.blocks[blockCb][(y>>1)*8+(x>>1)])
			cr := float32(v.blocks[blockCr][(y>>1)*8+(x>>1)])

			r := lum + 1.402*cr
			g := lum - 0.3437*cb - 0.7143*cr
			bl := lum + 1.772*cb

			if xoff+x < v.width && yoff+y < v.height {
				px := videoClamp(bl)<<16 | videoClamp(g)<<8 | videoClamp(r)
				v.frame.Data[(yoff+y)*v.width+xoff+x] = px
			}
		}
	}
}

func videoClamp(v float32) uint32 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}

	return uint32(v)
}

// decodeBitstream entropy decodes the current frame payload into a stream of
// block headers and run/level words. The first payload word is the quantiser
// scale for the frame, returned to the caller. Returns false when the
// payload ends before the end-of-frame marker.
func (v *Video) decodeBitstream() (int, bool) {
	b := &v.bits
	b.raw = v.frameData
	b.pos = 0
	b.used = 0
	b.overrun = false

	qscale := int(b.nextWord())
	w1 := b.nextWord()
	w2 := b.nextWord()
	b.w = w1<<16 | w2

	if n := len(v.frameData)*4 + 64; cap(v.decoded) < n {
		v.decoded = make([]uint16, 0, n)
	}
	v.decoded = v.decoded[:0]

	hdr := b.peek(11)
	b.consume(11)
	v.decoded = append(v.decoded, uint16(hdr))

	for {
		if b.overrun {
			return 0, false
		}

		window := b.peek(13)
		if window < 32 {
			// 8 leading zero bits, resolve over the longer window.
			long := videoLongCodes[b.peek(17)]
			b.consume(8)
			b.consume(int(long.skip))
			v.decoded = append(v.decoded, long.word)

			continue
		}

		packed := &videoShortCodes[window]
		b.consume(int(packed.skip))

		for s := 0; s < 3; s++ {
			word := packed.words[s]
			if s > 0 && word == 0 {
				break
			}

			if word == videoEscape {
				v.decoded = append(v.decoded, uint16(b.w>>16))
				b.consume(16)

				break
			}

			v.decoded = append(v.decoded, word)

			if word == videoEndOfBlock {
				next := b.peek(11)
				b.consume(11)

				if next == videoEndMarker {
					return qscale, true
				}

				// The header of the next block follows the marker in
				// the raw stream, not in the packed words.
				v.decoded = append(v.decoded, uint16(next))
			}
		}
	}
}

// videoBits reads the frame payload 16 bits at a time into a 32-bit window,
// most significant bit first. Reads past the padded payload flag overrun
// and drain zeros, the decode loop stops on the flag.
type videoBits struct {
	raw     []byte
	pos     int
	w       uint32
	used    int
	overrun bool
}

func (b *videoBits) nextWord() uint32 {
	if b.pos+2 > len(b.raw) {
		b.overrun = true
		return 0
	}

	w := uint32(binary.LittleEndian.Uint16(b.raw[b.pos:]))
	b.pos += 2

	return w
}

func (b *videoBits) peek(count int) uint32 {
	return b.w >> (32 - count)
}

func (b *videoBits) consume(count int) {
	b.w <<= count
	b.used += count

	if b.used&16 != 0 {
		b.used &= 15
		b.w |= b.nextWord() << b.used
	}
}

type videoShortCode struct {
	skip  uint8
	words [3]uint16
}

type videoLongCode struct {
	skip uint8
	word uint16
}

// Window lookup tables for the entropy decoder, built once from the code
// tree. The 13-bit window covers codes that have a set bit among their
// first 8 bits and packs up to three whole codes per entry, stopping after
// an end-of-block or escape code. Windows starting with 8 zero bits resolve
// through the 17-bit table instead, whose skip count excludes those 8 bits.
var (
	videoShortCodes [8192]videoShortCode
	videoLongCodes  [512]videoLongCode
)

func init() {
	type code struct {
		pattern uint32
		length  int
		word    uint16
		stop    bool
	}

	var codes []code

	var walk func(base int16, pattern uint32, depth int)
	walk = func(base int16, pattern uint32, depth int) {
		for bit := int16(0); bit < 2; bit++ {
			entry := videoDctCoeff[base+bit]
			p := pattern<<1 | uint32(bit)

			if entry.Index > 0 {
				walk(entry.Index, p, depth+1)
				continue
			}
			if entry.Index < 0 {
				continue
			}

			switch {
			case depth == 0:
				// The depth one leaf covers the end-of-block marker and
				// the two level one codes.
				codes = append(codes,
					code{0b10, 2, videoEndOfBlock, true},
					code{0b110, 3, 0x0001, false},
					code{0b111, 3, 0x03ff, false})
			case entry.Value == 0xffff:
				codes = append(codes, code{p, depth + 1, videoEscape, true})
			default:
				run := uint16(entry.Value >> 8)
				level := entry.Value & 0xff
				codes = append(codes,
					code{p << 1, depth + 2, run<<10 | level, false},
					code{p<<1 | 1, depth + 2, run<<10 | (-level)&0x3ff, false})
			}
		}
	}
	walk(0, 0, 0)

	for _, c := range codes {
		if c.length > 8 && c.pattern>>(c.length-8) == 0 {
			lo := c.pattern << (17 - c.length)
			for i := lo; i < lo+1<<(17-c.length); i++ {
				videoLongCodes[i] = videoLongCode{uint8(c.length - 8), c.word}
			}
		}
	}

	for w := 32; w < 8192; w++ {
		entry := &videoShortCodes[w]
		pos := 0

	pack:
		for s := 0; s < 3; s++ {
			for i := range codes {
				c := &codes[i]
				if pos+c.length > 13 {
					continue
				}

				if uint32(w)>>(13-pos-c.length)&(1<<c.length-1) == c.pattern {
					entry.words[s] = c.word
					pos += c.length

					if c.stop {
						break pack
					}
					continue pack
				}
			}

			break
		}

		entry.skip = uint8(pos)
	}
}

var videoZigZag = []byte{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

var videoQuantLuma = []uint32{
	12, 11, 10, 12, 14, 14, 13, 14,
	16, 24, 19, 16, 17, 18, 24, 22,
	22, 24, 26, 40, 51, 58, 40, 29,
	37, 35, 49, 72, 64, 55, 56, 51,
	57, 60, 61, 55, 69, 87, 68, 64,
	78, 92, 95, 87, 81, 109, 80, 56,
	62, 103, 104, 103, 98, 112, 121, 113,
	77, 92, 120, 100, 103, 101, 99, 16,
}

var videoQuantChroma = []uint32{
	16, 18, 18, 24, 21, 24, 47, 26,
	26, 47, 99, 66, 56, 66, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
}

type vlcUint struct {
	Index int16
	Value uint16
}

// dct_coeff bitmap:
//
//	0xff00  run
//	0x00ff  level
//
// Decoded values are unsigned. Sign bit follows in the stream.
var videoDctCoeff = []vlcUint{
	{1 << 1, 0}, {0, 0x0001}, //   0: x
	{2 << 1, 0}, {3 << 1, 0}, //   1: 0x
	{4 << 1, 0}, {5 << 1, 0}, //   2: 00x
	{6 << 1, 0}, {0, 0x0101}, //   3: 01x
	{7 << 1, 0}, {8 << 1, 0}, //   4: 000x
	{9 << 1, 0}, {10 << 1, 0}, //   5: 001x
	{0, 0x0002}, {0, 0x0201}, //   6: 010x
	{11 << 1, 0}, {12 << 1, 0}, //   7: 0000x
	{13 << 1, 0}, {14 << 1, 0}, //   8: 0001x
	{15 << 1, 0}, {0, 0x0003}, //   9: 0010x
	{0, 0x0401}, {0, 0x0301}, //  10: 0011x
	{16 << 1, 0}, {0, 0xffff}, //  11: 0000 0x
	{17 << 1, 0}, {18 << 1, 0}, //  12: 0000 1x
	{0, 0x0701}, {0, 0x0601}, //  13: 0001 0x
	{0, 0x0102}, {0, 0x0501}, //  14: 0001 1x
	{19 << 1, 0}, {20 << 1, 0}, //  15: 0010 0x
	{21 << 1, 0}, {22 << 1, 0}, //  16: 0000 00x
	{0, 0x0202}, {0, 0x0901}, //  17: 0000 10x
	{0, 0x0004}, {0, 0x0801}, //  18: 0000 11x
	{23 << 1, 0}, {24 << 1, 0}, //  19: 0010 00x
	{25 << 1, 0}, {26 << 1, 0}, //  20: 0010 01x
	{27 << 1, 0}, {28 << 1, 0}, //  21: 0000 000x
	{29 << 1, 0}, {30 << 1, 0}, //  22: 0000 001x
	{0, 0x0d01}, {0, 0x0006}, //  23: 0010 000x
	{0, 0x0c01}, {0, 0x0b01}, //  24: 0010 001x
	{0, 0x0302}, {0, 0x0103}, //  25: 0010 010x
	{0, 0x0005}, {0, 0x0a01}, //  26: 0010 011x
	{31 << 1, 0}, {32 << 1, 0}, //  27: 0000 0000x
	{33 << 1, 0}, {34 << 1, 0}, //  28: 0000 0001x
	{35 << 1, 0}, {36 << 1, 0}, //  29: 0000 0010x
	{37 << 1, 0}, {38 << 1, 0}, //  30: 0000 0011x
	{39 << 1, 0}, {40 << 1, 0}, //  31: 0000 0000 0x
	{41 << 1, 0}, {42 << 1, 0}, //  32: 0000 0000 1x
	{43 << 1, 0}, {44 << 1, 0}, //  33: 0000 0001 0x
	{45 << 1, 0}, {46 << 1, 0}, //  34: 0000 0001 1x
	{0, 0x1001}, {0, 0x0502}, //  35: 0000 0010 0x
	{0, 0x0007}, {0, 0x0203}, //  36: 0000 0010 1x
	{0, 0x0104}, {0, 0x0f01}, //  37: 0000 0011 0x
	{0, 0x0e01}, {0, 0x0402}, //  38: 0000 0011 1x
	{47 << 1, 0}, {48 << 1, 0}, //  39: 0000 0000 00x
	{49 << 1, 0}, {50 << 1, 0}, //  40: 0000 0000 01x
	{51 << 1, 0}, {52 << 1, 0}, //  41: 0000 0000 10x
	{53 << 1, 0}, {54 << 1, 0}, //  42: 0000 0000 11x
	{55 << 1, 0}, {56 << 1, 0}, //  43: 0000 0001 00x
	{57 << 1, 0}, {58 << 1, 0}, //  44: 0000 0001 01x
	{59 << 1, 0}, {60 << 1, 0}, //  45: 0000 0001 10x
	{61 << 1, 0}, {62 << 1, 0}, //  46: 0000 0001 11x
	{-1, 0}, {63 << 1, 0}, //  47: 0000 0000 000x
	{64 << 1, 0}, {65 << 1, 0}, //  48: 0000 0000 001x
	{66 << 1, 0}, {67 << 1, 0}, //  49: 0000 0000 010x
	{68 << 1, 0}, {69 << 1, 0}, //  50: 0000 0000 011x
	{70 << 1, 0}, {71 << 1, 0}, //  51: 0000 0000 100x
	{72 << 1, 0}, {73 << 1, 0}, //  52: 0000 0000 101x
	{74 << 1, 0}, {75 << 1, 0}, //  53: 0000 0000 110x
	{76 << 1, 0}, {77 << 1, 0}, //  54: 0000 0000 111x
	{0, 0x000b}, {0, 0x0802}, //  55: 0000 0001 000x
	{0, 0x0403}, {0, 0x000a}, //  56: 0000 0001 001x
	{0, 0x0204}, {0, 0x0702}, //  57: 0000 0001 010x
	{0, 0x1501}, {0, 0x1401}, //  58: 0000 0001 011x
	{0, 0x0009}, {0, 0x1301}, //  59: 0000 0001 100x
	{0, 0x1201}, {0, 0x0105}, //  60: 0000 0001 101x
	{0, 0x0303}, {0, 0x0008}, //  61: 0000 0001 110x
	{0, 0x0602}, {0, 0x1101}, //  62: 0000 0001 111x
	{78 << 1, 0}, {79 << 1, 0}, //  63: 0000 0000 0001x
	{80 << 1, 0}, {81 << 1, 0}, //  64: 0000 0000 0010x
	{82 << 1, 0}, {83 << 1, 0}, //  65: 0000 0000 0011x
	{84 << 1, 0}, {85 << 1, 0}, //  66: 0000 0000 0100x
	{86 << 1, 0}, {87 << 1, 0}, //  67: 0000 0000 0101x
	{88 << 1, 0}, {89 << 1, 0}, //  68: 0000 0000 0110x
	{90 << 1, 0}, {91 << 1, 0}, //  69: 0000 0000 0111x
	{0, 0x0a02}, {0, 0x0902}, //  70: 0000 0000 1000x
	{0, 0x0503}, {0, 0x0304}, //  71: 0000 0000 1001x
	{0, 0x0205}, {0, 0x0107}, //  72: 0000 0000 1010x
	{0, 0x0106}, {0, 0x000f}, //  73: 0000 0000 1011x
	{0, 0x000e}, {0, 0x000d}, //  74: 0000 0000 1100x
	{0, 0x000c}, {0, 0x1a01}, //  75: 0000 0000 1101x
	{0, 0x1901}, {0, 0x1801}, //  76: 0000 0000 1110x
	{0, 0x1701}, {0, 0x1601}, //  77: 0000 0000 1111x
	{92 << 1, 0}, {93 << 1, 0}, //  78: 0000 0000 0001 0x
	{94 << 1, 0}, {95 << 1, 0}, //  79: 0000 0000 0001 1x
	{96 << 1, 0}, {97 << 1, 0}, //  80: 0000 0000 0010 0x
	{98 << 1, 0}, {99 << 1, 0}, //  81: 0000 0000 0010 1x
	{100 << 1, 0}, {101 << 1, 0}, //  82: 0000 0000 0011 0x
	{102 << 1, 0}, {103 << 1, 0}, //  83: 0000 0000 0011 1x
	{0, 0x001f}, {0, 0x001e}, //  84: 0000 0000 0100 0x
	{0, 0x001d}, {0, 0x001c}, //  85: 0000 0000 0100 1x
	{0, 0x001b}, {0, 0x001a}, //  86: 0000 0000 0101 0x
	{0, 0x0019}, {0, 0x0018}, //  87: 0000 0000 0101 1x
	{0, 0x0017}, {0, 0x0016}, //  88: 0000 0000 0110 0x
	{0, 0x0015}, {0, 0x0014}, //  89: 0000 0000 0110 1x
	{0, 0x0013}, {0, 0x0012}, //  90: 0000 0000 0111 0x
	{0, 0x0011}, {0, 0x0010}, //  91: 0000 0000 0111 1x
	{104 << 1, 0}, {105 << 1, 0}, //  92: 0000 0000 0001 00x
	{106 << 1, 0}, {107 << 1, 0}, //  93: 0000 0000 0001 01x
	{108 << 1, 0}, {109 << 1, 0}, //  94: 0000 0000 0001 10x
	{110 << 1, 0}, {111 << 1, 0}, //  95: 0000 0000 0001 11x
	{0, 0x0028}, {0, 0x0027}, //  96: 0000 0000 0010 00x
	{0, 0x0026}, {0, 0x0025}, //  97: 0000 0000 0010 01x
	{0, 0x0024}, {0, 0x0023}, //  98: 0000 0000 0010 10x
	{0, 0x0022}, {0, 0x0021}, //  99: 0000 0000 0010 11x
	{0, 0x0020}, {0, 0x010e}, // 100: 0000 0000 0011 00x
	{0, 0x010d}, {0, 0x010c}, // 101: 0000 0000 0011 01x
	{0, 0x010b}, {0, 0x010a}, // 102: 0000 0000 0011 10x
	{0, 0x0109}, {0, 0x0108}, // 103: 0000 0000 0011 11x
	{0, 0x0112}, {0, 0x0111}, // 104: 0000 0000 0001 000x
	{0, 0x0110}, {0, 0x010f}, // 105: 0000 0000 0001 001x
	{0, 0x0603}, {0, 0x1002}, // 106: 0000 0000 0001 010x
	{0, 0x0f02}, {0, 0x0e02}, // 107: 0000 0000 0001 011x
	{0, 0x0d02}, {0, 0x0c02}, // 108: 0000 0000 0001 100x
	{0, 0x0b02}, {0, 0x1f01}, // 109: 0000 0000 0001 101x
	{0, 0x1e01}, {0, 0x1d01}, // 110: 0000 0000 0001 110x
	{0, 0x1c01}, {0, 0x1b01}, // 111: 0000 0000 0001 111x
}
