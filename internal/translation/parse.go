package translation

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/DalintonC/lomigg-news/internal/model"
)

var (
	jsonFence = regexp.MustCompile("```json\\n?")
	anyFence  = regexp.MustCompile("```\\n?")
	boldLead  = regexp.MustCompile(`(?m)^\*\*.*\*\*`)
)

type payload struct {
	Title       *string `json:"title_es"`
	Description *string `json:"description_es"`
	Summary     *string `json:"summary_es"`
}

// ParseResponse extracts the translation object from free-form backend output.
// It strips code fences and bold heading lines, then decodes the text between
// the first '{' and the last '}'. It returns nil when decoding fails, a key is missing,
// or the title or description is blank.
func ParseResponse(text string) *model.Translation {
	text = jsonFence.ReplaceAllString(text, "")
	text = anyFence.ReplaceAllString(text, "")
	text = strings.TrimSpace(boldLead.ReplaceAllString(text, ""))

	first, last := strings.Index(text, "{"), strings.LastIndex(text, "}")
	if first != -1 && last > first {
		text = text[first : last+1]
	}

	var p payload
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return nil
	}
	if p.Title == nil || p.Description == nil || p.Summary == nil {
		return nil
	}
	if strings.TrimSpace(*p.Title) == "" || strings.TrimSpace(*p.Description) == "" {
		return nil
	}

	return &model.Translation{
		Title:       *p.Title,
		Description: *p.Description,
		Summary:     *p.Summary,
	}
}
