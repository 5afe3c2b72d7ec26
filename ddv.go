// Package ddv implements a decoder for DDV files, the interleaved audio and
// video container used by late 1990s game full motion video.
//
// This library provides several interfaces to demux and decode DDV data.
// A high-level DDV API combines the demuxer, video and audio decoders in an
// easy-to-use wrapper.
//
// With the high-level interface you have two options to decode video and audio:
//
// 1. Decode() and just hand over the delta time since the last call.
// It will decode everything needed and call your callbacks (specified through
// Set{Video|Audio}Callback()) any number of times.
//
// 2. Use DecodeVideo() and DecodeAudio() to decode exactly one frame of video or audio data at a time.
// How you handle the synchronization of both streams is up to you.
//
// If you only want to decode video *or* audio through these functions, you should
// disable the other stream (Set{Video|Audio}Enabled(false))
//
// Video data is decoded into a Frame with one packed 32-bit pixel per sample,
// red in the lowest byte. You can convert a frame to image.RGBA on the CPU via
// the RGBA() function, or take the pixels as a []color.RGBA view without
// copying via the Pixels() function.
//
// Audio data is decoded into a struct with the signed 16-bit samples of the
// left and right channel interleaved. You can convert interleaved samples to
// a byte slice via the Bytes() function, or hand the decoder to an audio API
// as an io.Reader via Reader().
//
// There should be no need to use the lower level Demux, Video and Audio, if all you want to do is
// read/decode a DDV file. However, if you get raw video or audio frame data from a different source,
// these functions can be used to decode the data directly. Similarly, if you only want to analyze a DDV file
// or extract raw video or audio frames from it, you can use the Demux.
package ddv

import (
	"encoding/binary"
	"io"
	"time"
)

// VideoFunc callback function.
type VideoFunc func(ddv *DDV, frame *Frame)

// AudioFunc callback function.
type AudioFunc func(ddv *DDV, samples *Samples)

// DDV is high-level interface implementation.
type DDV struct {
	demux *Demux
	time  float64

	loop        bool
	hasEnded    bool
	hasDecoders bool

	videoEnabled    bool
	videoPacketType int
	videoBuffer     *Buffer
	videoDecoder    *Video

	audioEnabled    bool
	audioPacketType int
	audioLeadTime   float64
	audioBuffer     *Buffer
	audioDecoder    *Audio

	done chan bool

	videoCallback VideoFunc
	audioCallback AudioFunc
}

// New creates a new DDV instance.
func New(r io.Reader) (*DDV, error) {
	d := &DDV{}

	buf, err := NewBuffer(r)
	if err != nil {
		return nil, err
	}

	buf.SetLoadCallback(buf.LoadReaderCallback)

	d.demux, err = NewDemux(buf)
	if err != nil {
		return nil, err
	}

	d.done = make(chan bool, 1)

	d.videoEnabled = true
	d.audioEnabled = true
	d.initDecoders()

	return d, nil
}

// HasHeaders checks whether the container headers have been read, and if we can
// report the video dimensions, framerate and audio samplerate.
func (d *DDV) HasHeaders() bool {
	if !d.demux.HasHeaders() {
		return false
	}

	if !d.initDecoders() {
		return false
	}

	return true
}

// Done returns done channel.
func (d *DDV) Done() chan bool {
	return d.done
}

// Video returns video decoder.
func (d *DDV) Video() *Video {
	return d.videoDecoder
}

// SetVideoCallback sets a video callback.
func (d *DDV) SetVideoCallback(callback VideoFunc) {
	d.videoCallback = callback
}

// VideoEnabled checks whether video decoding is enabled.
func (d *DDV) VideoEnabled() bool {
	return d.videoEnabled
}

// SetVideoEnabled sets whether video decoding is enabled.
func (d *DDV) SetVideoEnabled(enabled bool) {
	d.videoEnabled = enabled

	if !enabled {
		d.videoPacketType = 0

		return
	}

	if d.initDecoders() && d.videoDecoder != nil {
		d.videoPacketType = PacketVideo
	} else {
		d.videoPacketType = 0
	}
}

// HasVideo checks whether the container carries a video stream.
func (d *DDV) HasVideo() bool {
	return d.demux.HasVideo()
}

// Width returns the display width of the video stream.
func (d *DDV) Width() int {
	if d.initDecoders() && d.videoDecoder != nil {
		return d.videoDecoder.Width()
	}

	return 0
}

// Height returns the display height of the video stream.
func (d *DDV) Height() int {
	if d.initDecoders() && d.videoDecoder != nil {
		return d.videoDecoder.Height()
	}

	return 0
}

// Framerate returns the framerate of the video stream in frames per second.
func (d *DDV) Framerate() float64 {
	if d.initDecoders() && d.videoDecoder != nil {
		return d.videoDecoder.Framerate()
	}

	return 0
}

// KeyFrameRate returns the interval between intra coded frames.
func (d *DDV) KeyFrameRate() int {
	if d.initDecoders() && d.videoDecoder != nil {
		return d.videoDecoder.KeyFrameRate()
	}

	return 0
}

// NumFrames returns the number of frames in the container.
func (d *DDV) NumFrames() int {
	return d.demux.NumFrames()
}

// Audio returns audio decoder.
func (d *DDV) Audio() *Audio {
	return d.audioDecoder
}

// SetAudioCallback sets an audio callback.
func (d *DDV) SetAudioCallback(callback AudioFunc) {
	d.audioCallback = callback
}

// AudioEnabled checks whether audio decoding is enabled.
func (d *DDV) AudioEnabled() bool {
	return d.audioEnabled
}

// SetAudioEnabled sets whether audio decoding is enabled.
func (d *DDV) SetAudioEnabled(enabled bool) {
	d.audioEnabled = enabled
	if !enabled {
		d.audioPacketType = 0

		return
	}

	if d.initDecoders() && d.audioDecoder != nil {
		d.audioPacketType = PacketAudio
	} else {
		d.audioPacketType = 0
	}
}

// HasAudio checks whether the container carries an audio stream.
func (d *DDV) HasAudio() bool {
	return d.demux.HasAudio()
}

// Samplerate returns the samplerate of the audio stream in samples per second.
func (d *DDV) Samplerate() int {
	if d.initDecoders() && d.audioDecoder != nil {
		return d.audioDecoder.Samplerate()
	}

	return 0
}

// Channels returns the number of channels.
func (d *DDV) Channels() int {
	if d.initDecoders() && d.audioDecoder != nil {
		return d.audioDecoder.Channels()
	}

	return 0
}

// SamplesPerFrame returns the number of samples per channel in one audio frame.
func (d *DDV) SamplesPerFrame() int {
	if d.initDecoders() && d.audioDecoder != nil {
		return d.audioDecoder.SamplesPerFrame()
	}

	return 0
}

// AudioLeadTime returns the audio lead time in seconds - the time in which audio samples
// are decoded in advance (or behind) the video decode time.
func (d *DDV) AudioLeadTime() time.Duration {
	return time.Duration(d.audioLeadTime * float64(time.Second))
}

// SetAudioLeadTime sets the audio lead time in seconds. Typically, this
// should be set to the duration of the buffer of the audio API that you use
// for output. E.g. for SDL2: (SDL_AudioSpec.samples / samplerate).
func (d *DDV) SetAudioLeadTime(leadTime time.Duration) {
	d.audioLeadTime = leadTime.Seconds()
}

// Time returns the current internal time in seconds.
func (d *DDV) Time() time.Duration {
	return time.Duration(d.time * float64(time.Second))
}

// Duration returns the duration of the underlying source.
func (d *DDV) Duration() time.Duration {
	return time.Duration(d.demux.Duration() * float64(time.Second))
}

// Rewind rewinds all buffers back to the beginning.
func (d *DDV) Rewind() {
	if d.videoDecoder != nil {
		d.videoDecoder.Rewind()
	}

	if d.audioDecoder != nil {
		d.audioDecoder.Rewind()
	}

	d.demux.Rewind()
	d.time = 0
}

// Loop returns looping.
func (d *DDV) Loop() bool {
	return d.loop
}

// SetLoop sets looping.
func (d *DDV) SetLoop(loop bool) {
	d.loop = loop
}

// HasEnded checks whether the file has ended.
// If looping is enabled, this will always return false.
func (d *DDV) HasEnded() bool {
	return d.hasEnded
}

// Decode advances the internal timer by seconds and decode video/audio up to this time.
// This will call the video callback and audio callback any number of times.
// A frame-skip is not implemented, i.e. everything up to current time will be decoded.
func (d *DDV) Decode(tick time.Duration) {
	if !d.initDecoders() {
		return
	}

	decodeVideo := d.videoCallback != nil && d.videoPacketType != 0
	decodeAudio := d.audioCallback != nil && d.audioPacketType != 0

	if !decodeVideo && !decodeAudio {
		// Nothing to do here
		return
	}

	didDecode := false
	decodeVideoFailed := false
	decodeAudioFailed := false

	videoTargetTime := d.time + tick.Seconds()
	audioTargetTime := d.time + tick.Seconds() + d.audioLeadTime

	for {
		didDecode = false

		if decodeVideo && d.videoDecoder.Time() < videoTargetTime {
			frame := d.videoDecoder.Decode()
			if frame != nil {
				d.videoCallback(d, frame)
				didDecode = true
			} else {
				decodeVideoFailed = true
			}
		}

		if decodeAudio && d.audioDecoder.Time() < audioTargetTime {
			samples := d.audioDecoder.Decode()
			if samples != nil {
				d.audioCallback(d, samples)
				didDecode = true
			} else {
				decodeAudioFailed = true
			}
		}

		if !didDecode {
			break
		}
	}

	if (!decodeVideo || decodeVideoFailed) && (!decodeAudio || decodeAudioFailed) && d.demux.HasEnded() {
		d.handleEnd()

		return
	}

	d.time += tick.Seconds()
}

// DecodeVideo decodes and returns one video frame. Returns nil if no frame could be decoded
// (either because the source ended or data is corrupt). If you only want to decode video, you should
// disable audio via SetAudioEnabled(). The returned Frame is valid until the next call to DecodeVideo().
func (d *DDV) DecodeVideo() *Frame {
	if !d.initDecoders() {
		return nil
	}

	if d.videoPacketType == 0 {
		return nil
	}

	frame := d.videoDecoder.Decode()
	if frame != nil {
		d.time = frame.Time
	} else if d.demux.HasEnded() {
		d.handleEnd()
	}

	return frame
}

// DecodeAudio decodes and returns one audio frame. Returns nil if no frame could be decoded
// (either because the source ended or data is corrupt). If you only want to decode audio, you should
// disable video via SetVideoEnabled(). The returned Samples is valid until the next call to DecodeAudio().
func (d *DDV) DecodeAudio() *Samples {
	if !d.initDecoders() {
		return nil
	}

	if d.audioPacketType == 0 {
		return nil
	}

	samples := d.audioDecoder.Decode()
	if samples != nil {
		d.time = samples.Time
	} else if d.demux.HasEnded() {
		d.handleEnd()
	}

	return samples
}

// SeekFrame seeks, similar to Seek(), but will not call the VideoFunc callback,
// AudioFunc callback or make any attempts to sync audio.
// Returns the found frame or nil if no frame could be found.
func (d *DDV) SeekFrame(tm time.Duration, seekExact bool) *Frame {
	if !d.initDecoders() {
		return nil
	}

	if d.videoPacketType == 0 {
		return nil
	}

	framerate := d.demux.Framerate()
	duration := d.demux.Duration()

	if tm.Seconds() < 0 {
		tm = time.Duration(0)
	} else if tm.Seconds() > duration {
		tm = time.Duration(duration * float64(time.Second))
	}

	// Delta frames accumulate on the previous ones, so decoding has to
	// restart at the intra coded frame at or before the target.
	frame := int(tm.Seconds() * framerate)
	if frame >= d.demux.NumFrames() {
		frame = d.demux.NumFrames() - 1
	}
	if frame < 0 {
		frame = 0
	}
	if rate := d.videoDecoder.KeyFrameRate(); rate > 0 {
		frame -= frame % rate
	}

	if !d.demux.SeekToFrame(frame) {
		return nil
	}

	// Disable writing to the audio buffer while decoding video
	prevAudioPacketType := d.audioPacketType
	d.audioPacketType = 0

	// Clear video buffer and decode from the intra frame
	d.videoDecoder.Rewind()
	d.videoDecoder.SetTime(float64(frame) / framerate)
	found := d.videoDecoder.Decode()

	// If we want to seek to an exact frame, we have to decode all frames
	// on top of the intra frame we just jumped to.
	if seekExact {
		for found != nil && found.Time < tm.Seconds() {
			found = d.videoDecoder.Decode()
		}
	}

	// Enable writing to the audio buffer again
	d.audioPacketType = prevAudioPacketType

	if found != nil {
		d.time = found.Time
	}

	d.hasEnded = false

	return found
}

// Seek seeks to the specified time, clamped between 0 -- duration. This can only be
// used when the underlying Buffer is seekable.
// If seekExact is true this will seek to the exact time, otherwise it will
// seek to the last intra frame just before the desired time. Exact seeking can
// be slow, because all frames up to the seeked one have to be decoded on top of
// the previous intra frame.
// If seeking succeeds, this function will call the VideoFunc callback
// exactly once with the target frame. If audio is enabled, it will also call
// the AudioFunc callback any number of times, until the audioLeadTime is satisfied.
// Returns true if seeking succeeded or false if no frame could be found.
func (d *DDV) Seek(tm time.Duration, seekExact bool) bool {
	frame := d.SeekFrame(tm, seekExact)

	if frame == nil {
		return false
	}

	if d.videoCallback != nil {
		d.videoCallback(d, frame)
	}

	// If audio is not enabled we are done here.
	if d.audioPacketType == 0 {
		return true
	}

	// Sync up audio. This demuxes more packets until the first audio packet
	// with a PTS greater than the current time is found. Decode() is then
	// called to decode enough audio data to satisfy the audioLeadTime.

	d.audioDecoder.Rewind()

	for {
		packet := d.demux.Decode()
		if packet == nil {
			break
		}

		if packet.Type == d.videoPacketType {
			d.writePacket(d.videoBuffer, packet)
		} else if packet.Type == d.audioPacketType && packet.Pts > d.time {
			d.audioDecoder.SetTime(packet.Pts)
			d.writePacket(d.audioBuffer, packet)

			// Disable writing to the audio buffer while decoding video
			prevAudioPacketType := d.audioPacketType
			d.audioPacketType = 0

			d.Decode(0)

			// Enable writing to the audio buffer again
			d.audioPacketType = prevAudioPacketType

			// Decode audio
			d.Decode(0)

			break
		}
	}

	return true
}

func (d *DDV) initDecoders() bool {
	if d.hasDecoders {
		return true
	}

	if !d.demux.HasHeaders() {
		return false
	}

	var err error
	if d.demux.HasVideo() {
		if d.videoEnabled {
			d.videoPacketType = PacketVideo
		}

		if d.videoDecoder == nil {
			d.videoBuffer, err = NewBuffer(nil)
			if err != nil {
				return false
			}

			d.videoBuffer.SetLoadCallback(d.readVideoPacket)
			d.videoDecoder = NewVideo(d.videoBuffer, d.demux.VideoInfo())
		}
	}

	if d.demux.HasAudio() {
		if d.audioEnabled {
			d.audioPacketType = PacketAudio
		}

		if d.audioDecoder == nil {
			d.audioBuffer, err = NewBuffer(nil)
			if err != nil {
				return false
			}

			d.audioBuffer.SetLoadCallback(d.readAudioPacket)
			d.audioDecoder = NewAudio(d.audioBuffer, d.demux.AudioInfo())
		}
	}

	d.hasDecoders = true

	return true
}

func (d *DDV) handleEnd() {
	if d.loop {
		d.Rewind()

		return
	}

	if !d.hasEnded {
		d.hasEnded = true

		select {
		case d.done <- true:
		default:
		}
	}
}

func (d *DDV) readVideoPacket(buffer *Buffer) {
	d.readPackets(d.videoPacketType)
}

func (d *DDV) readAudioPacket(buffer *Buffer) {
	d.readPackets(d.audioPacketType)
}

// writePacket hands a demuxed payload to a decoder buffer, length prefixed so
// the decoder can tell the frames apart.
func (d *DDV) writePacket(buf *Buffer, packet *Packet) {
	var prefix [4]byte
	binary.LittleEndian.PutUint32(prefix[:], uint32(len(packet.Data)))

	buf.Write(prefix[:])
	buf.Write(packet.Data)
}

func (d *DDV) readPackets(requestedType int) {
	for {
		packet := d.demux.Decode()
		if packet == nil {
			break
		}

		if packet.Type == d.videoPacketType {
			d.writePacket(d.videoBuffer, packet)
		} else if packet.Type == d.audioPacketType {
			d.writePacket(d.audioBuffer, packet)
		}

		if packet.Type == requestedType {
			return
		}
	}

	if d.demux.HasEnded() {
		if d.videoBuffer != nil {
			d.videoBuffer.SignalEnd()
		}

		if d.audioBuffer != nil {
			d.audioBuffer.SignalEnd()
		}
	}
}
