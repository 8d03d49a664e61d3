package genai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/strucbot/strucbot/internal/model"
)

// ParseReply strips surrounding code-fence markers from a raw model
// reply and parses the remainder as a schema object. A fenced reply
// yields the same result as an unfenced one with identical content.
func ParseReply(raw string) (*model.GeneratedSchema, error) {
	cleaned := StripCodeFences(raw)

	var schema model.GeneratedSchema
	if err := json.Unmarshal([]byte(cleaned), &schema); err != nil {
		return nil, fmt.Errorf("%w: parse reply: %v", ErrGenerationFailed, err)
	}
	return &schema, nil
}

// StripCodeFences removes markdown code-fence markers (``` and
// ```json) anywhere in the text and trims whitespace.
func StripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
