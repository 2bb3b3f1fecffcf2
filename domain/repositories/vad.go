package repositories

// VADEvent reports a state transition from the voice activity detector.
type VADEvent int

const (
	VADNone VADEvent = iota
	VADSpeechStart
	VADSpeechEnd
)

// VoiceActivityDetector produces per-session detector streams.
type VoiceActivityDetector interface {
	NewStream(sampleRate int) VADStream
}

// VADStream classifies consecutive PCM frames. Process returns a transition
// event, or VADNone when the speech/silence state is unchanged.
type VADStream interface {
	Process(frame []int16) VADEvent
	Speaking() bool
	Reset()
}
