package voice

// SpeechRequest carries the text to play and the voice settings applied to
// the backend for this playback.
type SpeechRequest struct {
	Text     string  `json:"text"`
	Rate     float64 `json:"rate"`
	Pitch    float64 `json:"pitch"`
	Volume   float64 `json:"volume"`
	Language string  `json:"language"`
}

// Synthesizer is the speech backend. Speak must not block; the outcome of a
// playback is reported through the callbacks registered with OnEnd/OnError.
// Stop halts the current playback immediately, after which no end/error
// callback fires for it.
type Synthesizer interface {
	Speak(req SpeechRequest)
	Stop()
	OnEnd(fn func())
	OnError(fn func(err error))
}
