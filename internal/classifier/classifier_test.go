package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    ContentType
	}{
		{"empty", "", TypeText},
		{"plain text", "hello world", TypeText},
		{"http url", "http://example.com", TypeURL},
		{"https url", "https://example.com/path?q=1", TypeURL},
		{"url with trailing text", "https://example.com and more", TypeText},
		{"url embedded in text", "see https://example.com", TypeText},
		{"javascript function", "function f() { return 1; }", TypeCode},
		{"const declaration", "const x = 1;", TypeCode},
		{"go-ish braces", "if err != nil { return }", TypeCode},
		{"python def without punctuation", "def greet(name)", TypeText},
		{"python def with braces", "def f(): return {}", TypeCode},
		{"html snippet", "<div>hi</div>;", TypeCode},
		{"shebang", "#!/bin/sh\necho hi;", TypeCode},
		{"indicator without punctuation", "import antigravity", TypeText},
		{"braces without indicator still match brace indicator", "{}", TypeCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.content)
			assert.Equal(t, tt.want, got.Type)
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	inputs := []string{"", "hello", "https://example.com", "function f() { return 1; }"}
	for _, in := range inputs {
		first := Classify(in)
		second := Classify(in)
		assert.Equal(t, first, second, "classification of %q must be stable", in)
	}
}
