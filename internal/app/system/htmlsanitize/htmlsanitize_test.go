package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/standhub/internal/app/system/htmlsanitize"
)

func TestSanitize_Empty(t *testing.T) {
	if got := htmlsanitize.Sanitize(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestSanitize_PlainText(t *testing.T) {
	if got := htmlsanitize.Sanitize("Hello, World!"); got != "Hello, World!" {
		t.Errorf("expected plain text unchanged, got %q", got)
	}
}

func TestSanitize_SafeHTML(t *testing.T) {
	input := "<p><strong>Bold</strong> and <em>italic</em></p>"
	if got := htmlsanitize.Sanitize(input); got != input {
		t.Errorf("expected safe HTML preserved, got %q", got)
	}
}

func TestSanitize_RemovesScript(t *testing.T) {
	input := "<p>Hello</p><script>alert('xss')</script>"
	if got := htmlsanitize.Sanitize(input); got != "<p>Hello</p>" {
		t.Errorf("expected script removed, got %q", got)
	}
}

func TestSanitize_RemovesOnclick(t *testing.T) {
	input := `<button onclick="alert('xss')">Click</button>`
	if got := htmlsanitize.Sanitize(input); got == input {
		t.Error("expected onclick attribute to be removed")
	}
}

func TestSanitize_RemovesJavascriptHref(t *testing.T) {
	input := `<a href="javascript:alert('xss')">Click</a>`
	if got := htmlsanitize.Sanitize(input); got == input {
		t.Error("expected javascript: href to be removed")
	}
}

func TestPlainText_StripsAllMarkup(t *testing.T) {
	input := `<b>desk</b><script>alert(1)</script>warrior`
	if got := htmlsanitize.PlainText(input); got != "deskwarrior" {
		t.Errorf("expected all markup stripped, got %q", got)
	}
}

func TestPlainText_UsernameWithAngleBrackets(t *testing.T) {
	got := htmlsanitize.PlainText(`<img src=x onerror=alert(1)>standfan`)
	if strings.Contains(got, "<") {
		t.Errorf("expected no tags to survive, got %q", got)
	}
}
