package template

// processingPrompt asks for a strict JSON object so the response parser
// can split the four sections without guessing.
const processingPrompt = `You are an AI assistant that processes voice message transcriptions from a chat application. Process the following transcript and provide your response in the following JSON format:

{
  "original_transcript": "Copy the original transcript exactly as provided.",
  "cleaned_transcript": "If the transcript is not in English, translate it to English. Then, create a grammatically correct, polished version in English. Remove filler words, false starts, and repetitions. Maintain the original meaning.",
  "summary": "Write a concise 1-2 sentence summary in English that captures the core message and key information from the transcript.",
  "reply": "Suggest a natural, conversational reply in English that directly addresses the main points or questions from the message."
}

Ensure that the response contains only the JSON object with no additional text.

TRANSCRIPT:
{{transcription}}`

var defaultProcessingPrompts = map[string]string{
	"openai": processingPrompt,
	"claude": processingPrompt,
	"ollama": processingPrompt,
}

// DefaultProcessingPrompt returns the stock prompt for the given
// processing provider type. Unknown providers get the generic prompt.
func DefaultProcessingPrompt(providerType string) string {
	if p, ok := defaultProcessingPrompts[providerType]; ok {
		return p
	}
	return processingPrompt
}
