package ddv

import (
	"errors"
)

// Packet is one demuxed frame payload, either the video or the audio part of
// a container frame. Pts is the presentation time stamp of the packet in seconds.
type Packet struct {
	Type int
	Pts  float64
	Data []byte

	length int
}

// Packet types. The values match the header bitfield flags.
const (
	PacketVideo = 0x01
	PacketAudio = 0x02
)

var (
	// ErrInvalidDDV is the error returned when the magic tag is not found.
	ErrInvalidDDV = errors.New("invalid DDV stream")

	// ErrUnsupportedVersion is the error returned for any header version other than 1.
	// Version 1 is the only version seen in known data.
	ErrUnsupportedVersion = errors.New("unsupported DDV version")

	// ErrTooShort is the error returned when the stream ends before the
	// headers and the frame size table are complete.
	ErrTooShort = errors.New("DDV stream too short")
)

// VideoInfo holds the video stream parameters from the container header.
type VideoInfo struct {
	Width             int
	Height            int
	MaxVideoFrameSize int
	MaxAudioFrameSize int
	KeyFrameRate      int
	Framerate         float64
}

// AudioInfo holds the audio stream parameters from the container header.
type AudioInfo struct {
	Format          int
	Samplerate      int
	SamplesPerFrame int
	MaxFrameSize    int
	Channels        int
}

// Demux splits a DDV container into per-frame video and audio packets.
//
// A container frame carries its video part first; when both streams are
// present the frame payload starts with a 32-bit size of the video part and
// the audio part is the remainder. Decode returns the parts as separate
// packets in stream order.
type Demux struct {
	buf *Buffer

	version   int
	hasVideo  bool
	hasAudio  bool
	framerate float64
	numFrames int

	video VideoInfo
	audio AudioInfo

	interleaveSizes []int
	frameSizes      []int
	frameOffsets    []int
	dataOffset      int

	hasFileHeader   bool
	hasStreamHeader bool
	hasSizeTable    bool
	hasHeaders      bool
	err             error

	frameIndex    int
	currentPacket Packet
	nextPacket    Packet
}

// NewDemux creates a demuxer with buffer as a source.
func NewDemux(buf *Buffer) (*Demux, error) {
	dmux := &Demux{}
	dmux.buf = buf

	if !dmux.HasHeaders() {
		if dmux.err != nil {
			return nil, dmux.err
		}

		if buf.HasEnded() {
			return nil, ErrTooShort
		}

		return nil, ErrInvalidDDV
	}

	return dmux, nil
}

// Buffer returns demuxer buffer.
func (d *Demux) Buffer() *Buffer {
	return d.buf
}

// HasHeaders checks whether the container headers and the frame size table
// have been read. This will attempt to read them if they are not present yet.
func (d *Demux) HasHeaders() bool {
	if d.hasHeaders {
		return true
	}

	if d.err != nil {
		return false
	}

	if !d.hasFileHeader {
		if !d.buf.has(20) {
			return false
		}

		magic := d.buf.Bytes()[d.buf.Index() : d.buf.Index()+4]
		if magic[0] != 'D' || magic[1] != 'D' || magic[2] != 'V' || magic[3] != 0 {
			d.err = ErrInvalidDDV

			return false
		}
		d.buf.skip(4)

		d.version = d.buf.read32()
		if d.version != 1 {
			d.err = ErrUnsupportedVersion

			return false
		}

		contains := d.buf.read32()
		d.hasVideo = contains&PacketVideo != 0
		d.hasAudio = contains&PacketAudio != 0

		d.framerate = float64(d.buf.read32())
		d.numFrames = d.buf.read32()

		d.hasFileHeader = true
	}

	if !d.hasStreamHeader {
		size := 0
		if d.hasVideo {
			size += 20
		}
		if d.hasAudio {
			size += 20
		}
		if !d.buf.has(size) {
			return false
		}

		if d.hasAudio {
			// The audio header ends with the interleave count. Peek it so
			// that nothing is consumed before the whole header is buffered.
			bytes := d.buf.Bytes()
			pos := d.buf.Index() + size - 4
			count := int(uint32(bytes[pos]) | uint32(bytes[pos+1])<<8 |
				uint32(bytes[pos+2])<<16 | uint32(bytes[pos+3])<<24)
			if !d.buf.has(size + 4*count) {
				return false
			}
		}

		if d.hasVideo {
			d.buf.skip(4) // unknown
			d.video.Width = d.buf.read16()
			d.video.Height = d.buf.read16()
			d.video.MaxAudioFrameSize = d.buf.read32()
			d.video.MaxVideoFrameSize = d.buf.read32()
			d.video.KeyFrameRate = d.buf.read32()
			d.video.Framerate = d.framerate
		}

		if d.hasAudio {
			d.audio.Format = d.buf.read32()
			d.audio.Samplerate = d.buf.read32()
			d.audio.MaxFrameSize = d.buf.read32()
			d.audio.SamplesPerFrame = d.buf.read32()
			d.audio.Channels = 2

			count := d.buf.read32()
			d.interleaveSizes = make([]int, count)
			for i := range d.interleaveSizes {
				d.interleaveSizes[i] = d.buf.read32()
			}
		}

		d.hasStreamHeader = true
	}

	if !d.hasSizeTable {
		if !d.buf.has(4 * d.numFrames) {
			return false
		}

		// A frame that carries both streams is prefixed with the 32-bit
		// video part size, which the table entries do not include.
		extra := 0
		if d.hasVideo && d.hasAudio {
			extra = 4
		}

		d.frameSizes = make([]int, d.numFrames)
		d.frameOffsets = make([]int, d.numFrames+1)
		for i := range d.frameSizes {
			d.frameSizes[i] = d.buf.read32()
			d.frameOffsets[i+1] = d.frameOffsets[i] + d.frameSizes[i] + extra
		}

		d.hasSizeTable = true
	}

	// The audio interleave payloads sit between the size table and the
	// first frame. They duplicate the leading frames' audio and are never
	// decoded.
	skip := 0
	for _, size := range d.interleaveSizes {
		skip += size
	}
	if !d.buf.has(skip) {
		return false
	}
	d.buf.skip(skip)

	d.dataOffset = d.buf.tell()
	d.hasHeaders = true

	return true
}

// HasVideo checks whether the container carries a video stream.
func (d *Demux) HasVideo() bool {
	if d.HasHeaders() {
		return d.hasVideo
	}

	return false
}

// HasAudio checks whether the container carries an audio stream.
func (d *Demux) HasAudio() bool {
	if d.HasHeaders() {
		return d.hasAudio
	}

	return false
}

// VideoInfo returns the video stream parameters.
func (d *Demux) VideoInfo() VideoInfo {
	if d.HasHeaders() {
		return d.video
	}

	return VideoInfo{}
}

// AudioInfo returns the audio stream parameters.
func (d *Demux) AudioInfo() AudioInfo {
	if d.HasHeaders() {
		return d.audio
	}

	return AudioInfo{}
}

// Framerate returns the framerate in frames per second.
func (d *Demux) Framerate() float64 {
	if d.HasHeaders() {
		return d.framerate
	}

	return 0
}

// NumFrames returns the number of frames in the container.
func (d *Demux) NumFrames() int {
	if d.HasHeaders() {
		return d.numFrames
	}

	return 0
}

// FrameIndex returns the index of the next frame Decode will return.
func (d *Demux) FrameIndex() int {
	return d.frameIndex
}

// Duration returns the duration of the container in seconds.
func (d *Demux) Duration() float64 {
	if !d.HasHeaders() || d.framerate == 0 {
		return 0
	}

	return float64(d.numFrames) / d.framerate
}

// Rewind rewinds the demuxer to the first frame.
func (d *Demux) Rewind() {
	d.SeekToFrame(0)
}

// HasEnded checks whether all frames have been returned.
func (d *Demux) HasEnded() bool {
	if !d.hasHeaders {
		return d.buf.HasEnded()
	}

	return d.frameIndex >= d.numFrames && d.nextPacket.length == 0
}

// SeekToFrame seeks to the start of the given frame using the size table.
// This can only be used when the underlying Buffer is seekable.
func (d *Demux) SeekToFrame(frame int) bool {
	if !d.HasHeaders() {
		return false
	}

	if !d.buf.Seekable() {
		return false
	}

	if frame < 0 {
		frame = 0
	} else if frame > d.numFrames {
		frame = d.numFrames
	}

	d.buf.seek(d.dataOffset + d.frameOffsets[frame])
	d.frameIndex = frame
	d.nextPacket.length = 0

	return true
}

// Decode decodes and returns the next packet. A frame with both streams
// yields two packets, the video part first.
func (d *Demux) Decode() *Packet {
	if !d.HasHeaders() {
		return nil
	}

	// pending audio part of the current frame?
	if d.nextPacket.length != 0 {
		return d.packet()
	}

	if d.frameIndex >= d.numFrames {
		return nil
	}

	pts := float64(d.frameIndex) / d.framerate
	size := d.frameSizes[d.frameIndex]

	switch {
	case d.hasVideo && d.hasAudio:
		if !d.buf.has(4 + size) {
			return nil
		}

		videoSize := d.buf.read32()
		if videoSize > size {
			videoSize = size
		}

		d.currentPacket.Type = PacketVideo
		d.currentPacket.Pts = pts
		d.currentPacket.length = videoSize
		index := d.buf.Index()
		d.currentPacket.Data = d.buf.Bytes()[index : index+videoSize : index+videoSize]
		d.buf.skip(videoSize)

		d.nextPacket.Type = PacketAudio
		d.nextPacket.Pts = pts
		d.nextPacket.length = size - videoSize

		d.frameIndex++

		return &d.currentPacket
	case d.hasAudio:
		d.nextPacket.Type = PacketAudio
		d.nextPacket.Pts = pts
		d.nextPacket.length = size

		d.frameIndex++

		return d.packet()
	default:
		d.nextPacket.Type = PacketVideo
		d.nextPacket.Pts = pts
		d.nextPacket.length = size

		d.frameIndex++

		return d.packet()
	}
}

func (d *Demux) packet() *Packet {
	if !d.buf.has(d.nextPacket.length) {
		return nil
	}

	index := d.buf.Index()
	d.currentPacket.Data = d.buf.Bytes()[index : index+d.nextPacket.length : index+d.nextPacket.length]
	d.currentPacket.Type = d.nextPacket.Type
	d.currentPacket.Pts = d.nextPacket.Pts
	d.buf.skip(d.nextPacket.length)

	d.currentPacket.length = d.nextPacket.length
	d.nextPacket.length = 0

	return &d.currentPacket
}
