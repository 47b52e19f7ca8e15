package source

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/wav"
)

// LoadWAV decodes a WAV file into a looped source. Multi-channel files are
// mixed down to mono. The loop gets a read-ahead tail of half a period
// copied from its start.
func LoadWAV(path string) (*Synthetic, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	depth := buf.SourceBitDepth
	if depth == 0 {
		depth = int(dec.BitDepth)
	}
	if depth == 0 {
		return nil, fmt.Errorf("unknown bit depth for WAV file: %s", path)
	}
	factor := math.Exp2(float64(depth - 1))

	frames := len(buf.Data) / channels
	if frames == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmpty)
	}
	samples := make([]float64, frames+frames/2)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c])
		}
		samples[i] = sum / float64(channels) / factor
	}
	copy(samples[frames:], samples[:frames/2])
	return NewLooped(samples, frames, float64(buf.Format.SampleRate)), nil
}
