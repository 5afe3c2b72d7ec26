package ddv

import (
	"bytes"
	"encoding/binary"
	"io"
	"unsafe"
)

// Samples represents one decoded frame of audio, stored as signed 16-bit
// samples with the two channels interleaved.
type Samples struct {
	Time        float64
	Interleaved []int16
}

// Bytes returns interleaved samples as slice of bytes.
func (s *Samples) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&s.Interleaved[0])), len(s.Interleaved)*2)
}

type SamplesReader struct {
	reader *bytes.Reader
}

// Read implements the io.Reader interface.
func (s *SamplesReader) Read(b []byte) (int, error) {
	if s.reader.Len() == 0 {
		_, err := s.reader.Seek(0, io.SeekStart)
		if err != nil {
			return 0, err
		}
	}

	return s.reader.Read(b)
}

// Seek implements the io.Seeker interface.
func (s *SamplesReader) Seek(offset int64, whence int) (int64, error) {
	return 0, nil
}

// Audio decodes DDV audio data into raw samples.
//
// A frame carries the two channels one after the other, the left channel
// first and the right channel after a byte alignment gap. Each channel
// opens with three verbatim samples and codes every later sample as a
// residual against a prediction from the previous three.
type Audio struct {
	time           float64
	samplesDecoded int

	samplerate      int
	samplesPerFrame int
	maxFrameSize    int
	format          int
	channels        int

	buf  *Buffer
	bits audioBits

	frameData []byte
	samples   Samples
}

// NewAudio creates an audio decoder with buffer as a source. The stream is
// always decoded as two channels, regardless of what info carries.
func NewAudio(buf *Buffer, info AudioInfo) *Audio {
	audio := &Audio{}

	audio.buf = buf
	audio.samplerate = info.Samplerate
	audio.samplesPerFrame = info.SamplesPerFrame
	audio.maxFrameSize = info.MaxFrameSize
	audio.format = info.Format
	audio.channels = 2

	audio.frameData = make([]byte, 0, info.MaxFrameSize)
	audio.samples.Interleaved = make([]int16, info.SamplesPerFrame*2)

	return audio
}

// Reader returns samples reader.
func (a *Audio) Reader() io.Reader {
	b := unsafe.Slice((*byte)(unsafe.Pointer(&a.samples.Interleaved[0])), len(a.samples.Interleaved)*2)

	return &SamplesReader{bytes.NewReader(b)}
}

// Buffer returns audio buffer.
func (a *Audio) Buffer() *Buffer {
	return a.buf
}

// Samplerate returns the sample rate in samples per second.
func (a *Audio) Samplerate() int {
	return a.samplerate
}

// Channels returns the number of channels.
func (a *Audio) Channels() int {
	return a.channels
}

// SamplesPerFrame returns the number of samples per channel in one frame.
func (a *Audio) SamplesPerFrame() int {
	return a.samplesPerFrame
}

// Time returns the current internal time in seconds.
func (a *Audio) Time() float64 {
	return a.time
}

// SetTime sets the current internal time in seconds. This is only useful when you
// manipulate the underlying buffer and want to enforce correct timestamps.
func (a *Audio) SetTime(time float64) {
	a.samplesDecoded = int(time * float64(a.samplerate))
	a.time = time
}

// Rewind rewinds the internal buffer.
func (a *Audio) Rewind() {
	a.buf.Rewind()
	a.time = 0
	a.samplesDecoded = 0
}

// HasEnded checks whether the file has ended. This will be cleared on rewind.
func (a *Audio) HasEnded() bool {
	return a.buf.HasEnded()
}

// Decode decodes and returns one frame of audio and advance the internal time by
// (samplesPerFrame/samplerate) seconds. The frames arrive as length prefixed
// payloads in the audio buffer.
func (a *Audio) Decode() *Samples {
	if !a.buf.has(4) {
		return nil
	}

	data := a.buf.Bytes()
	size := int(binary.LittleEndian.Uint32(data[a.buf.Index():]))

	if !a.buf.has(4 + size) {
		return nil
	}
	a.buf.discardReadBytes()

	a.buf.skip(4)

	if cap(a.frameData) < size {
		a.frameData = make([]byte, size)
	}
	a.frameData = a.frameData[:size]
	a.buf.readBytes(a.frameData, size)

	a.decodeFrame()

	a.samples.Time = a.time

	a.samplesDecoded += a.samplesPerFrame
	a.time = float64(a.samplesDecoded) / float64(a.samplerate)

	return &a.samples
}

func (a *Audio) decodeFrame() {
	out := a.samples.Interleaved
	for i := range out {
		out[i] = 0
	}

	if len(out) == 0 {
		return
	}

	a.bits.reset(a.frameData)

	a.decodeChannel(out, false)
	a.decodeChannel(out[1:], true)
}

// decodeChannel decodes one channel into every other slot of out. The channel
// leads with a table flag, three residual widths and three verbatim samples,
// followed by one residual per remaining sample. Unless this is the last
// channel of the frame the bit reader is byte aligned afterwards.
func (a *Audio) decodeChannel(out []int16, last bool) {
	useTable := a.bits.next(16) != 0

	width1 := audioWidth(a.bits.next(16))
	width2 := audioWidth(a.bits.next(16))
	width3 := audioWidth(a.bits.next(16))

	var v1, v2, v3 int32

	for i := 0; i < 3; i++ {
		seed := int16(a.bits.next(16))

		switch i {
		case 0:
			v1 = int32(seed)
		case 1:
			v2 = int32(seed)
		case 2:
			v3 = int32(seed)
		}

		if 2*i < len(out) {
			out[2*i] = seed
		}
	}

	for i := 3; i < a.samplesPerFrame; i++ {
		part, ok := a.bits.residual(width1)
		if !ok {
			part, ok = a.bits.residual(width2)
		}
		if !ok {
			part, _ = a.bits.residual(width3)
		}

		predicted := (v1 + 5*v3 - 4*v2) >> 1

		v1 = v2
		v2 = v3

		if useTable {
			v3 = int32(audioExpand(int16(part + audioSignLog(int16(predicted)))))
		} else {
			v3 = int32(int16(predicted + part))
		}

		out[2*i] = int16(v3)
	}

	if !last {
		a.bits.align()
	}
}

// audioWidth clamps a residual width read from the stream to the 1 to 16 bit
// range of the reader.
func audioWidth(value uint32) int {
	width := int(int16(value))
	if width < 1 {
		width = 1
	} else if width > 16 {
		width = 16
	}

	return width
}

// audioBits reads the audio bitstream. Bits are consumed from the low end of
// the work register and refilled a 16-bit little endian word at a time, so
// at least 17 valid bits remain ahead of every read. Reads past the end of
// the payload return zero bits.
type audioBits struct {
	raw  []byte
	pos  int
	work uint32
	have int
}

func (b *audioBits) reset(raw []byte) {
	b.raw = raw
	b.pos = 0

	lo := b.word()
	hi := b.word()
	b.work = hi<<16 | lo
	b.have = 32
}

func (b *audioBits) word() uint32 {
	if b.pos+2 > len(b.raw) {
		return 0
	}

	w := uint32(binary.LittleEndian.Uint16(b.raw[b.pos:]))
	b.pos += 2

	return w
}

func (b *audioBits) refill() {
	if b.have <= 16 {
		b.work |= b.word() << uint(b.have)
		b.have += 16
	}
}

func (b *audioBits) next(count int) uint32 {
	b.have -= count
	value := b.work & (1<<uint(count) - 1)
	b.work >>= uint(count)
	b.refill()

	return value
}

// align discards bits up to the next byte boundary of the stream.
func (b *audioBits) align() {
	count := b.have & 7
	b.have -= count
	b.work >>= uint(count)
	b.refill()
}

// residual reads one width wide residual. A residual equal to 1<<(width-1),
// the sign bit alone, escapes to the next wider width; this is reported by
// returning false along with the raw bits. Otherwise a set sign bit negates
// the low bits.
func (b *audioBits) residual(width int) (int32, bool) {
	value := int32(int16(b.next(width)))

	mask := int32(1) << uint(width-1)
	if value == mask {
		return value, false
	}

	if value&mask != 0 {
		value = -(value &^ mask)
	}

	return int32(int16(value)), true
}

// audioSignLog compresses a sample onto the signed log like scale residuals
// are coded on. The high bits hold how far the sample reaches past seven
// bits, the low seven bits hold its most significant bits.
func audioSignLog(x int16) int32 {
	a := int32(x)
	if a < 0 {
		a = -a
	}

	length := audioBitLen[(a>>7)&0xff]

	r := int32(uint16(length)<<7 | uint16(a>>length))
	if x < 0 {
		r = -r
	}

	return r
}

// audioExpand maps a sign log coded value back to a linear sample, with one
// bit set below the restored bits when the scale dropped more than one.
func audioExpand(y int16) int16 {
	a := int32(y)
	if a < 0 {
		a = -a
	}

	shift := uint(a >> 7)

	r := uint16(int32(a&0x7f) << shift)
	if shift >= 2 {
		r |= uint16(1 << (shift - 2))
	}

	out := int16(r)
	if y < 0 {
		out = -out
	}

	return out
}

// audioBitLen holds the bit length of every byte value.
var audioBitLen [256]byte

func init() {
	for i := range audioBitLen {
		length := byte(0)
		for v := i; v > 0; v >>= 1 {
			length++
		}
		audioBitLen[i] = length
	}
}
