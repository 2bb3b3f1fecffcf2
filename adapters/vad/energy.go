// Package vad provides an energy-based voice activity detector with
// hysteresis, used to endpoint utterances in a session's audio stream.
package vad

import (
	"math"

	"github.com/MAdityaRao/Resume-agent/domain/repositories"
)

const (
	defaultSpeechThreshold  = 0.015
	defaultSilenceThreshold = 0.008
	defaultStartFrames      = 3  // ~60ms of 20ms frames to enter speech
	defaultHangoverFrames   = 30 // ~600ms of silence to leave speech
)

// EnergyDetector builds RMS-energy VAD streams. Hysteresis between the two
// thresholds avoids flickering at the speech boundary.
type EnergyDetector struct {
	SpeechThreshold  float64
	SilenceThreshold float64
	StartFrames      int
	HangoverFrames   int
}

// NewEnergyDetector returns a detector tuned for 20ms PCM frames.
func NewEnergyDetector() *EnergyDetector {
	return &EnergyDetector{
		SpeechThreshold:  defaultSpeechThreshold,
		SilenceThreshold: defaultSilenceThreshold,
		StartFrames:      defaultStartFrames,
		HangoverFrames:   defaultHangoverFrames,
	}
}

// NewStream implements repositories.VoiceActivityDetector.
func (d *EnergyDetector) NewStream(sampleRate int) repositories.VADStream {
	return &energyStream{detector: d}
}

type energyStream struct {
	detector     *EnergyDetector
	inSpeech     bool
	speechCount  int
	silenceCount int
}

// Process classifies one frame and reports speech boundary transitions.
func (s *energyStream) Process(frame []int16) repositories.VADEvent {
	level := rms(frame)

	if s.inSpeech {
		if level < s.detector.SilenceThreshold {
			s.silenceCount++
			if s.silenceCount >= s.detector.HangoverFrames {
				s.inSpeech = false
				s.silenceCount = 0
				s.speechCount = 0
				return repositories.VADSpeechEnd
			}
		} else {
			s.silenceCount = 0
		}
		return repositories.VADNone
	}

	if level >= s.detector.SpeechThreshold {
		s.speechCount++
		if s.speechCount >= s.detector.StartFrames {
			s.inSpeech = true
			s.speechCount = 0
			s.silenceCount = 0
			return repositories.VADSpeechStart
		}
	} else {
		s.speechCount = 0
	}
	return repositories.VADNone
}

func (s *energyStream) Speaking() bool {
	return s.inSpeech
}

func (s *energyStream) Reset() {
	s.inSpeech = false
	s.speechCount = 0
	s.silenceCount = 0
}

func rms(frame []int16) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, sample := range frame {
		v := float64(sample) / 32768.0
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(frame)))
}
