package ddv

import (
	"encoding/binary"
	"errors"
	"io"
)

var (
	// BufferSize is the default size for buffer.
	BufferSize = 128 * 1024
)

// LoadFunc callback function.
type LoadFunc func(buffer *Buffer)

// Buffer provides the data source for all other interfaces.
type Buffer struct {
	reader io.Reader
	bytes  []byte

	index     int
	totalSize int

	hasEnded    bool
	discardRead bool

	available    []byte
	loadCallback LoadFunc
}

// NewBuffer creates a buffer instance.
func NewBuffer(r io.Reader) (*Buffer, error) {
	buf := &Buffer{}

	if r != nil {
		seeker, ok := r.(io.Seeker)
		if ok {
			cur, err := seeker.Seek(0, io.SeekCurrent)
			if err != nil {
				return nil, err
			}
			off, err := seeker.Seek(0, io.SeekEnd)
			if err != nil {
				return nil, err
			}
			buf.totalSize = int(off)
			_, err = seeker.Seek(cur, io.SeekStart)
			if err != nil {
				return nil, err
			}
		}
	}

	buf.reader = r
	buf.bytes = make([]byte, 0, BufferSize)
	buf.available = make([]byte, BufferSize)

	buf.discardRead = true

	return buf, nil
}

// Bytes returns a slice holding the unread portion of the buffer.
func (b *Buffer) Bytes() []byte {
	return b.bytes
}

// Index returns byte index.
func (b *Buffer) Index() int {
	return b.index
}

// Seekable returns true if reader is seekable.
func (b *Buffer) Seekable() bool {
	return b.reader != nil && b.totalSize > 0
}

// Write appends the contents of p to the buffer.
func (b *Buffer) Write(p []byte) int {
	if b.discardRead {
		b.discardReadBytes()
	}

	b.bytes = append(b.bytes, p...)

	b.hasEnded = false

	return len(p)
}

// SignalEnd marks the current byte length as the end of this buffer and signal that no
// more data is expected to be written to it. This function should be called
// just after the last Write().
func (b *Buffer) SignalEnd() {
	b.totalSize = len(b.bytes)
}

// SetLoadCallback sets a callback that is called whenever the buffer needs more data.
func (b *Buffer) SetLoadCallback(callback LoadFunc) {
	b.loadCallback = callback
}

// Rewind the buffer back to the beginning. When loading from io.ReadSeeker,
// this also seeks to the beginning.
func (b *Buffer) Rewind() {
	b.seek(0)
}

// Size returns the total size. For io.ReadSeeker, this returns the total size. For all other
// types it returns the number of bytes currently in the buffer.
func (b *Buffer) Size() int {
	if b.totalSize > 0 {
		return b.totalSize
	}

	return len(b.bytes)
}

// Remaining returns the number of remaining (yet unread) bytes in the buffer.
// This can be useful to throttle writing.
func (b *Buffer) Remaining() int {
	return len(b.bytes) - b.index
}

// HasEnded checks whether the read position of the buffer is at the end and no more data is expected.
func (b *Buffer) HasEnded() bool {
	return b.hasEnded
}

// LoadReaderCallback is a callback that is called whenever the buffer needs more data.
func (b *Buffer) LoadReaderCallback(buffer *Buffer) {
	if b.hasEnded {
		return
	}

	p := b.available

	n, err := io.ReadFull(b.reader, p)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			p = p[:n]
		} else if err == io.EOF {
			b.hasEnded = true

			return
		}
	}

	if n == 0 {
		b.hasEnded = true

		return
	}

	b.Write(p)
}

func (b *Buffer) seek(pos int) {
	b.hasEnded = false

	if b.reader != nil && b.totalSize > 0 {
		seeker := b.reader.(io.Seeker)
		_, _ = seeker.Seek(int64(pos), io.SeekStart)
		b.bytes = b.bytes[:0]

		b.index = 0
	} else if b.reader == nil {
		if pos != 0 {
			return
		}

		b.bytes = b.bytes[:0]

		b.index = 0

		// The end mark belongs to the flushed data, the next SignalEnd
		// sets it again.
		b.totalSize = 0
	}
}

func (b *Buffer) tell() int {
	if b.reader != nil && b.totalSize > 0 {
		seeker := b.reader.(io.Seeker)
		off, _ := seeker.Seek(0, io.SeekCurrent)

		return int(off) + b.index - len(b.bytes)
	}

	return b.index
}

func (b *Buffer) discardReadBytes() {
	if b.index == len(b.bytes) {
		b.bytes = b.bytes[:0]

		b.index = 0
	} else if b.index > 0 {
		copy(b.bytes, b.bytes[b.index:])
		b.bytes = b.bytes[:len(b.bytes)-b.index]

		b.index = 0
	}
}

func (b *Buffer) has(count int) bool {
	if len(b.bytes)-b.index >= count {
		return true
	}

	if b.loadCallback != nil {
		b.loadCallback(b)

		if len(b.bytes)-b.index >= count {
			return true
		}
	}

	if b.totalSize != 0 && len(b.bytes) == b.totalSize {
		b.hasEnded = true
	}

	return false
}

func (b *Buffer) read8() int {
	if !b.has(1) {
		return 0
	}

	value := int(b.bytes[b.index])
	b.index++

	return value
}

func (b *Buffer) read16() int {
	if !b.has(2) {
		return 0
	}

	value := int(binary.LittleEndian.Uint16(b.bytes[b.index:]))
	b.index += 2

	return value
}

func (b *Buffer) read32() int {
	if !b.has(4) {
		return 0
	}

	value := int(binary.LittleEndian.Uint32(b.bytes[b.index:]))
	b.index += 4

	return value
}

// readBytes copies count bytes into dst, which must be at least count long.
func (b *Buffer) readBytes(dst []byte, count int) bool {
	if !b.has(count) {
		return false
	}

	copy(dst, b.bytes[b.index:b.index+count])
	b.index += count

	return true
}

func (b *Buffer) skip(count int) {
	if b.has(count) {
		b.index += count
	}
}
