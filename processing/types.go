package processing

// Request holds parameters for a processing call.
type Request struct {
	// Transcript is the raw transcription text.
	Transcript string `json:"transcript"`
	// Language is the language hint from settings ("auto" for detection).
	Language string `json:"language,omitempty"`
	// PromptTemplate overrides the provider's default prompt. Supports
	// {{transcription}} and {{language}} placeholders.
	PromptTemplate string `json:"prompt_template,omitempty"`
	// Model overrides the provider's default model.
	Model string `json:"model,omitempty"`
}

// Result is the four-part processing output displayed to the user.
type Result struct {
	// Transcript is the original transcription, always populated.
	Transcript string `json:"transcript"`
	// Cleaned is the polished, translated transcript.
	Cleaned string `json:"cleaned"`
	// Summary is a 1-2 sentence English summary.
	Summary string `json:"summary"`
	// Reply is a suggested conversational reply.
	Reply string `json:"reply"`
}
