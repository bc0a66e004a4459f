package processing

import (
	"encoding/json"
	"strings"
)

// Marker text filled into sections the model failed to produce. A short
// or malformed model response degrades to these, never to a hard error.
const (
	markerBadFormat       = "Error: AI response was not in the expected format"
	markerMissingSections = "Error: Some sections were missing from the AI response"
	markerRetry           = "Please try transcribing again"
)

type jsonResult struct {
	OriginalTranscript string `json:"original_transcript"`
	CleanedTranscript  string `json:"cleaned_transcript"`
	Summary            string `json:"summary"`
	Reply              string `json:"reply"`
}

// ParseResponse interprets a model response into the four-part result.
// The default prompts ask for a JSON object, so that is tried first;
// responses from custom prompts or older models fall back to the
// "----" four-section convention. The transcript field always carries
// the original transcription regardless of what the model returned.
func ParseResponse(response, transcript string) *Result {
	result := &Result{Transcript: transcript}
	response = strings.TrimSpace(response)

	if parsed, ok := parseJSON(response); ok {
		result.Cleaned = parsed.CleanedTranscript
		result.Summary = parsed.Summary
		result.Reply = parsed.Reply
		fillMissing(result)
		return result
	}

	sections := strings.Split(response, "----")
	for i := range sections {
		sections[i] = strings.TrimSpace(sections[i])
	}

	if len(sections) < 4 {
		result.Cleaned = response
		result.Summary = markerBadFormat
		result.Reply = markerRetry
		return result
	}

	result.Cleaned = sections[1]
	result.Summary = sections[2]
	result.Reply = sections[3]
	fillMissing(result)
	return result
}

// parseJSON tries the JSON object convention, tolerating markdown code
// fences around the object.
func parseJSON(response string) (*jsonResult, bool) {
	trimmed := response
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}
	if !strings.HasPrefix(trimmed, "{") {
		return nil, false
	}
	var parsed jsonResult
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return nil, false
	}
	if parsed.CleanedTranscript == "" && parsed.Summary == "" && parsed.Reply == "" {
		return nil, false
	}
	return &parsed, true
}

func fillMissing(result *Result) {
	if result.Cleaned != "" && result.Summary != "" && result.Reply != "" {
		return
	}
	if result.Summary == "" {
		result.Summary = markerMissingSections
	}
	if result.Reply == "" {
		result.Reply = markerRetry
	}
}
