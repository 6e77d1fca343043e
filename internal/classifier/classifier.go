package classifier

import (
	"regexp"
	"strings"
)

// ContentType is the semantic category assigned to clipboard content.
type ContentType string

const (
	TypeText ContentType = "text"
	TypeURL  ContentType = "url"
	TypeCode ContentType = "code"

	// Reserved by the data model, not produced by the current classifier.
	TypeJSON     ContentType = "json"
	TypeHTML     ContentType = "html"
	TypeMarkdown ContentType = "markdown"
	TypeImage    ContentType = "image"
)

// Result holds the detected type and an optional subcategory refinement.
type Result struct {
	Type        ContentType
	Subcategory string
}

var urlPattern = regexp.MustCompile(`^https?://\S+$`)

var codeIndicators = []string{
	"{", "}",
	"function", "const ", "let ", "var ",
	"import ", "export ",
	"<div", "<span", "<p", "<a",
	"class ", "def ", "if ", "for ",
	"#!/",
}

// Classify determines the content type of raw clipboard text. It is a
// heuristic, not a parser: false positives and negatives are acceptable and
// callers must tolerate them. Pure and deterministic, never fails.
func Classify(content string) Result {
	if content == "" {
		return Result{Type: TypeText}
	}

	if urlPattern.MatchString(content) {
		return Result{Type: TypeURL}
	}

	if looksLikeCode(content) {
		return Result{Type: TypeCode}
	}

	return Result{Type: TypeText}
}

// looksLikeCode reports whether the content carries at least one code
// indicator together with statement punctuation.
func looksLikeCode(content string) bool {
	hasPunctuation := strings.ContainsAny(content, ";{}")
	if !hasPunctuation {
		return false
	}
	for _, indicator := range codeIndicators {
		if strings.Contains(content, indicator) {
			return true
		}
	}
	return false
}
