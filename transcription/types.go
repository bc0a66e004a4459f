package transcription

// Request holds parameters for a transcription call. Audio arrives as
// raw bytes captured from the page session, never as a file path.
type Request struct {
	// Audio is the raw audio payload.
	Audio []byte `json:"-"`
	// MIME is the audio content type (e.g. "audio/ogg; codecs=opus").
	MIME string `json:"mime"`
	// Language is the expected language hint. "auto" or empty means
	// provider-side detection.
	Language string `json:"language,omitempty"`
	// Model overrides the provider's default transcription model.
	Model string `json:"model,omitempty"`
}

// Response holds the result of a transcription call.
type Response struct {
	// Text is the full transcription text.
	Text string `json:"text"`
	// Language is the detected or specified language, when reported.
	Language string `json:"language,omitempty"`
}
