package llm

import (
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/kaptinlin/jsonrepair"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ExtractJSON strips markdown fencing and surrounding prose from a model
// reply, returning the first top-level JSON object or array. Models routinely
// wrap structured output in ```json fences or lead with a sentence; both are
// tolerated. Returns the trimmed input when no object is found so the caller
// still gets a parse error with the real payload in it.
func ExtractJSON(reply string) string {
	s := strings.TrimSpace(reply)

	if i := strings.Index(s, "```"); i >= 0 {
		rest := s[i+3:]
		rest = strings.TrimPrefix(rest, "json")
		rest = strings.TrimPrefix(rest, "JSON")
		if j := strings.Index(rest, "```"); j >= 0 {
			s = strings.TrimSpace(rest[:j])
		} else {
			s = strings.TrimSpace(rest)
		}
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	open := s[start]
	var close byte = '}'
	if open == '[' {
		close = ']'
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && c == open:
			depth++
		case !inString && c == close:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	// Unterminated object: hand back the tail and let repair deal with it.
	return s[start:]
}

// DecodeLoose parses a potentially malformed model reply into v. It tries a
// straight parse of the extracted JSON first, then a repaired parse. The
// original parse error is returned when repair cannot help.
func DecodeLoose(reply string, v interface{}) error {
	payload := ExtractJSON(reply)

	err := json.UnmarshalFromString(payload, v)
	if err == nil {
		return nil
	}
	originalErr := err

	repaired, rerr := jsonrepair.JSONRepair(payload)
	if rerr != nil {
		return originalErr
	}
	if err := json.UnmarshalFromString(repaired, v); err == nil {
		return nil
	}
	return originalErr
}
