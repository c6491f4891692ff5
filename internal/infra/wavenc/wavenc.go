// Package wavenc wraps raw PCM samples in a WAV container for upload to
// the transcription service.
package wavenc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Encode packages little-endian 16-bit mono PCM into a WAV file.
func Encode(pcm []byte, sampleRate int) ([]byte, error) {
	if len(pcm)%2 != 0 {
		return nil, errors.New("pcm16 payload has odd length")
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}

	data := make([]int, len(pcm)/2)
	for i := range data {
		data[i] = int(int16(binary.LittleEndian.Uint16(pcm[2*i:])))
	}

	ws := &writeSeeker{}
	enc := wav.NewEncoder(ws, sampleRate, 16, 1, 1)

	buf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}

	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("writing wav data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("finalizing wav header: %w", err)
	}

	return ws.buf, nil
}

// writeSeeker is an in-memory io.WriteSeeker; the wav encoder seeks back to
// patch the RIFF sizes on Close.
type writeSeeker struct {
	buf []byte
	pos int
}

func (ws *writeSeeker) Write(p []byte) (int, error) {
	if need := ws.pos + len(p); need > len(ws.buf) {
		grown := make([]byte, need)
		copy(grown, ws.buf)
		ws.buf = grown
	}
	copy(ws.buf[ws.pos:], p)
	ws.pos += len(p)
	return len(p), nil
}

func (ws *writeSeeker) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(ws.pos) + offset
	case io.SeekEnd:
		abs = int64(len(ws.buf)) + offset
	default:
		return 0, errors.New("invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("negative position")
	}
	ws.pos = int(abs)
	return abs, nil
}
