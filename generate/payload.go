package generate

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Request is the body of a generateContent call.
type Request struct {
	Contents          []Content         `json:"contents"`
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
}

// Content is an ordered list of parts, optionally attributed to a role.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part is a single text fragment of a Content.
type Part struct {
	Text string `json:"text"`
}

// GenerationConfig carries optional sampling parameters. Omitted entirely
// when no field is set.
type GenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

// Response is the body returned by generateContent.
type Response struct {
	Candidates []Candidate `json:"candidates"`
	Error      *apiError   `json:"error,omitempty"`
}

// Candidate is one generated alternative.
type Candidate struct {
	Content      *Content `json:"content,omitempty"`
	FinishReason string   `json:"finishReason,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// APIError is a non-OK status or a provider-reported error payload.
type APIError struct {
	// Status is the HTTP status code of the response.
	Status int
	// Message is the provider's message, or a generic one naming the status.
	Message string
}

func (e *APIError) Error() string { return e.Message }

// ErrEmptyResponse is returned when the provider produced no continuation text.
var ErrEmptyResponse = fmt.Errorf("AI returned an empty response.")

// BuildRequest formats the user's text and the system instruction into a
// generateContent payload. The user text is the sole content part.
func BuildRequest(userText, instruction string) *Request {
	req := &Request{
		Contents: []Content{{Parts: []Part{{Text: userText}}}},
	}
	if instruction != "" {
		req.SystemInstruction = &Content{Parts: []Part{{Text: instruction}}}
	}
	return req
}

// ParseResponse extracts the trimmed continuation text from a response body.
func ParseResponse(status int, body []byte) (string, error) {
	ok := status >= 200 && status < 300

	var result Response
	if err := json.Unmarshal(body, &result); err != nil {
		if !ok {
			return "", &APIError{Status: status, Message: fmt.Sprintf("API failed with status %d", status)}
		}
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if !ok || result.Error != nil {
		msg := ""
		if result.Error != nil {
			msg = result.Error.Message
		}
		if msg == "" {
			msg = fmt.Sprintf("API failed with status %d", status)
		}
		return "", &APIError{Status: status, Message: msg}
	}

	text := strings.TrimSpace(firstText(result))
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// firstText returns candidates[0].content.parts[0].text, or "" if any link is missing.
func firstText(r Response) string {
	if len(r.Candidates) == 0 {
		return ""
	}
	c := r.Candidates[0].Content
	if c == nil || len(c.Parts) == 0 {
		return ""
	}
	return c.Parts[0].Text
}
