package synth

import (
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAV encodes samples as 16-bit mono PCM. Values are clipped to [-1,1].
func WriteWAV(w io.WriteSeeker, samples []float64, sampleRate int) error {
	enc := wav.NewEncoder(w, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, v := range samples {
		v = math.Max(-1, math.Min(1, v))
		buf.Data[i] = int(math.Round(v * math.MaxInt16))
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close wav: %w", err)
	}
	return nil
}
