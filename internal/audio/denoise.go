package audio

import "math"

// Profile selects the suppression tuning for a connection type.
type Profile int

const (
	// ProfileStandard suits wideband browser/microphone audio.
	ProfileStandard Profile = iota
	// ProfileTelephony suits narrowband phone audio, which carries more
	// low-frequency line noise.
	ProfileTelephony
)

const (
	standardCutoffHz  = 80.0
	telephonyCutoffHz = 280.0

	// Frames with RMS below floorMargin times the tracked noise floor are
	// treated as background and attenuated.
	floorMargin     = 1.5
	gateAttenuation = 0.25
	floorAdaptUp    = 0.001
	floorAdaptDown  = 0.1
	initialFloorRMS = 0.005

	// The gate RMS skips this many filter time constants at the head of
	// each frame, where the decay from the previous frame's level still
	// rings through the high-pass.
	settleTimeConstants = 8.0
)

// Suppressor removes low-frequency rumble with a one-pole high-pass filter
// and attenuates frames that sit at the tracked noise floor. State is
// per-stream; do not share across sessions.
type Suppressor struct {
	alpha   float64
	prevIn  float64
	prevOut float64
	floor   float64
	settle  int
}

// NewSuppressor creates a suppressor for the given profile and sample rate.
func NewSuppressor(profile Profile, sampleRate int) *Suppressor {
	cutoff := standardCutoffHz
	if profile == ProfileTelephony {
		cutoff = telephonyCutoffHz
	}

	rc := 1.0 / (2.0 * math.Pi * cutoff)
	dt := 1.0 / float64(sampleRate)

	return &Suppressor{
		alpha:  rc / (rc + dt),
		floor:  initialFloorRMS,
		settle: int(settleTimeConstants * rc * float64(sampleRate)),
	}
}

// Process filters one frame in place and returns it.
func (s *Suppressor) Process(frame []int16) []int16 {
	if len(frame) == 0 {
		return frame
	}

	skip := s.settle
	if skip > len(frame)/2 {
		skip = len(frame) / 2
	}

	var sumSquares float64
	for i, sample := range frame {
		in := float64(sample) / 32768.0
		out := s.alpha * (s.prevOut + in - s.prevIn)
		s.prevIn = in
		s.prevOut = out
		if i >= skip {
			sumSquares += out * out
		}
		frame[i] = clampSample(out)
	}

	rms := math.Sqrt(sumSquares / float64(len(frame)-skip))
	s.adaptFloor(rms)

	if rms < s.floor*floorMargin {
		for i, sample := range frame {
			frame[i] = int16(float64(sample) * gateAttenuation)
		}
	}

	return frame
}

// adaptFloor tracks the noise floor: it follows quiet frames quickly and
// loud frames very slowly, so speech does not drag the floor upward.
func (s *Suppressor) adaptFloor(rms float64) {
	if rms < s.floor {
		s.floor += (rms - s.floor) * floorAdaptDown
	} else {
		s.floor += (rms - s.floor) * floorAdaptUp
	}
	if s.floor < 1e-5 {
		s.floor = 1e-5
	}
}

func clampSample(v float64) int16 {
	scaled := v * 32767.0
	if scaled > 32767.0 {
		return 32767
	}
	if scaled < -32768.0 {
		return -32768
	}
	return int16(scaled)
}
