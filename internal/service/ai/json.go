package ai

import (
	"encoding/json"
	"strings"
)

// DecodeJSONResponse parses a model text payload into dest. It tries a strict
// parse first; on failure it applies a best-effort cleanup (models often wrap
// JSON in markdown fences or surround it with prose despite instructions) and
// parses once more. The second parse error is returned as-is.
func DecodeJSONResponse(raw string, dest any) error {
	trimmed := strings.TrimSpace(raw)
	if err := json.Unmarshal([]byte(trimmed), dest); err == nil {
		return nil
	}

	return json.Unmarshal([]byte(salvageJSON(trimmed)), dest)
}

// salvageJSON strips code-fence markers and slices the payload to the
// substring between the first '{' and the last '}' when both are present,
// discarding any leading or trailing commentary.
func salvageJSON(raw string) string {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start != -1 && end != -1 && end > start {
		cleaned = cleaned[start : end+1]
	}

	return cleaned
}
