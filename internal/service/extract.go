package service

import (
	"encoding/json"
	"strings"

	"github.com/fridgechef/backend/internal/types"
)

const (
	// MalformedOutputTag is the error value reported for unparseable model text
	MalformedOutputTag = "JSON 파싱 실패"

	rawExcerptRunes = 200
	fence           = "```"
	jsonFence       = "```json"
)

// Extraction is the outcome of pulling a JSON document out of model text:
// exactly one of Data and Malformed is set.
type Extraction struct {
	Data      json.RawMessage
	Malformed *types.MalformedOutput
}

// ExtractJSON strips a markdown code fence from content when present and
// parses what is left. It never fails; unparseable text yields Malformed
// with the first 200 characters of the original content.
func ExtractJSON(content string) Extraction {
	body := strings.TrimSpace(unfence(content))
	if body == "" || !json.Valid([]byte(body)) {
		return Extraction{Malformed: &types.MalformedOutput{
			Error:      MalformedOutputTag,
			RawContent: excerpt(content, rawExcerptRunes),
		}}
	}
	return Extraction{Data: json.RawMessage(body)}
}

// unfence returns the body of a ```json block, else of the first ``` block,
// else the text unchanged. An unterminated fence runs to the end of the text.
func unfence(content string) string {
	if i := strings.Index(content, jsonFence); i >= 0 {
		return untilFence(content[i+len(jsonFence):])
	}
	if i := strings.Index(content, fence); i >= 0 {
		return untilFence(content[i+len(fence):])
	}
	return content
}

func untilFence(s string) string {
	if j := strings.Index(s, fence); j >= 0 {
		return s[:j]
	}
	return s
}

// excerpt cuts s to at most n runes without splitting a character
func excerpt(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
