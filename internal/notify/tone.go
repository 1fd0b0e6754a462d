package notify

import (
	"bytes"
	"encoding/binary"
	"math"
	"time"
)

// Tone describes a sine tone.
type Tone struct {
	// Frequency in Hz.
	Frequency float64

	// Gain is the amplitude in the range [0, 1].
	Gain float64

	// Duration of the tone.
	Duration time.Duration

	// SampleRate in samples per second.
	SampleRate int
}

// DefaultTone returns the notification tone.
func DefaultTone() Tone {
	return Tone{
		Frequency:  880,
		Gain:       0.2,
		Duration:   300 * time.Millisecond,
		SampleRate: 44100,
	}
}

// Samples renders the tone as signed 16-bit PCM.
func (t Tone) Samples() []int16 {
	if t.SampleRate <= 0 || t.Duration <= 0 {
		return nil
	}
	gain := math.Max(0, math.Min(1, t.Gain))
	n := int(math.Round(t.Duration.Seconds() * float64(t.SampleRate)))
	samples := make([]int16, n)
	for i := range samples {
		v := gain * math.Sin(2*math.Pi*t.Frequency*float64(i)/float64(t.SampleRate))
		samples[i] = int16(v * math.MaxInt16)
	}
	return samples
}

// WAV encodes the tone as a RIFF/WAVE file, mono, 16 bits per sample.
func (t Tone) WAV() []byte {
	samples := t.Samples()
	dataSize := uint32(len(samples) * 2)

	var buf bytes.Buffer
	buf.Grow(44 + int(dataSize))

	// Writes to a bytes.Buffer cannot fail.
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")

	// fmt chunk: size, PCM format, channels, sample rate, byte rate,
	// block align, bits per sample.
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(t.SampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(t.SampleRate*2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, dataSize)
	_ = binary.Write(&buf, binary.LittleEndian, samples)

	return buf.Bytes()
}
