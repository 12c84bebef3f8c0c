package mailer

import (
	"strings"
	"testing"

	"github.com/pasuper/supercron/pkg/config"
)

func TestHTMLBody(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		contains []string
	}{
		{
			name:     "single line wrapped in paragraph",
			body:     "hello",
			contains: []string{"<p>hello</p>"},
		},
		{
			name:     "newlines become breaks",
			body:     "line one\nline two",
			contains: []string{"line one<br>line two"},
		},
		{
			name:     "blank line splits paragraphs",
			body:     "first\n\nsecond",
			contains: []string{"<p>first</p><p>second</p>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := HTMLBody(tt.body)
			for _, want := range tt.contains {
				if !strings.Contains(html, want) {
					t.Errorf("HTMLBody(%q) missing %q", tt.body, want)
				}
			}
			if !strings.Contains(html, "Distribution Auto Parts Canada") {
				t.Error("template header missing")
			}
		})
	}
}

func TestSend_NoRecipient(t *testing.T) {
	m := New(config.SMTPConfig{Server: "smtp.example.com", Port: 587, Sender: "ops@example.com"})
	err := m.Send(Message{Subject: "test", Body: "body"})
	if err == nil {
		t.Fatal("Send() with no recipient expected error")
	}
}
