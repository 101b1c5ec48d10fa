// Package convert encodes captured PCM into the containers the
// recognition engines accept: WAV for the whisper CLI, FLAC for the
// Google speech endpoint.
package convert

import (
	"bytes"
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
	"github.com/orcaman/writerseeker"
)

// ErrFLACUnavailable means neither the in-memory encoder nor the flac
// command line tool could produce FLAC output.
var ErrFLACUnavailable = errors.New("flac command line tool is not installed")

const flacBlockSize = 4096

// EncodeWAV renders the buffer as a 16-bit PCM WAV file in memory.
func EncodeWAV(buf *audio.IntBuffer) ([]byte, error) {
	if buf == nil || len(buf.Data) == 0 {
		return nil, errors.New("empty audio buffer")
	}

	// Emulate a file in RAM so no real file is needed.
	file := &writerseeker.WriterSeeker{}
	encoder := wav.NewEncoder(file, buf.Format.SampleRate, 16, buf.Format.NumChannels, 1)
	if err := encoder.Write(buf); err != nil {
		return nil, fmt.Errorf("encoder write buffer: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("encoder close: %w", err)
	}

	wavData, err := io.ReadAll(file.Reader())
	if err != nil {
		return nil, fmt.Errorf("reading WAV data into memory: %w", err)
	}
	return wavData, nil
}

// EncodeFLAC encodes a mono 16-bit buffer as FLAC without leaving memory.
// Frames carry verbatim subframes; the recognition endpoint cares about
// the container, not the compression ratio.
func EncodeFLAC(buf *audio.IntBuffer) ([]byte, error) {
	if buf == nil || len(buf.Data) == 0 {
		return nil, errors.New("empty audio buffer")
	}
	if buf.Format.NumChannels != 1 {
		return nil, fmt.Errorf("flac encoder handles mono only, got %d channels", buf.Format.NumChannels)
	}

	samples := make([]int32, len(buf.Data))
	digest := md5.New()
	for i, s := range buf.Data {
		samples[i] = int32(int16(s))
		digest.Write([]byte{byte(uint16(s)), byte(uint16(s) >> 8)})
	}

	info := &meta.StreamInfo{
		BlockSizeMin:  16,
		BlockSizeMax:  flacBlockSize,
		SampleRate:    uint32(buf.Format.SampleRate),
		NChannels:     1,
		BitsPerSample: 16,
		NSamples:      uint64(len(samples)),
	}
	copy(info.MD5sum[:], digest.Sum(nil))

	out := new(bytes.Buffer)
	enc, err := flac.NewEncoder(out, info)
	if err != nil {
		return nil, fmt.Errorf("creating FLAC encoder: %w", err)
	}

	for i := 0; i < len(samples); i += flacBlockSize {
		end := i + flacBlockSize
		if end > len(samples) {
			end = len(samples)
		}
		f := &frame.Frame{
			Header: frame.Header{
				HasFixedBlockSize: false,
				BlockSize:         uint16(end - i),
				SampleRate:        uint32(buf.Format.SampleRate),
				Channels:          frame.ChannelsMono,
				BitsPerSample:     16,
				Num:               uint64(i),
			},
			Subframes: []*frame.Subframe{
				{
					SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
					NSamples:  end - i,
					Samples:   samples[i:end],
				},
			},
		}
		if err := enc.WriteFrame(f); err != nil {
			return nil, fmt.Errorf("writing FLAC frame: %w", err)
		}
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("closing FLAC encoder: %w", err)
	}
	return out.Bytes(), nil
}

// EncodeFLACExecutable pipes WAV data through the flac tool. Fallback for
// when the in-memory encoder cannot handle the input.
func EncodeFLACExecutable(wavData []byte) ([]byte, error) {
	bin, err := exec.LookPath("flac")
	if err != nil {
		return nil, fmt.Errorf("%w (brew install flac)", ErrFLACUnavailable)
	}

	cmd := exec.Command(bin, "--stdout", "--totally-silent", "--best", "-")
	cmd.Stdin = bytes.NewReader(wavData)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("running flac converter: %w", err)
	}
	return out.Bytes(), nil
}
