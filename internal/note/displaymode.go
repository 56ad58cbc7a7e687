package note

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	htmltomd "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/yuin/goldmark"
)

// Display modes control how raw definition markup is converted before
// it goes onto a note. Each dictionary slot has its own mode.
const (
	ModeRaw          = "Raw"
	ModePlaintext    = "Plaintext"
	ModeMarkdown     = "Markdown"
	ModeMarkdownHTML = "Markdown-HTML"
	ModeHTML         = "HTML"
)

var markdownEscapes = regexp.MustCompile("\\\\([\\\\`*_{}\\[\\]()#+.!>-])")

// ConvertDefinition renders definition text according to a display mode.
//
//	Raw, Plaintext  - verbatim text
//	Markdown        - escaping stripped, then rendered as Markdown
//	Markdown-HTML   - markup re-serialized to Markdown, then rendered
//	HTML            - the original markup preserved verbatim
func ConvertDefinition(text, mode string) (string, error) {
	switch mode {
	case ModeRaw, ModePlaintext:
		return text, nil
	case ModeMarkdown:
		return renderMarkdown(markdownEscapes.ReplaceAllString(text, "$1"))
	case ModeMarkdownHTML:
		converter := htmltomd.NewConverter("", true, nil)
		md, err := converter.ConvertString(text)
		if err != nil {
			return "", fmt.Errorf("definition to markdown: %w", err)
		}
		return renderMarkdown(md)
	case ModeHTML:
		return text, nil
	default:
		return "", fmt.Errorf("unknown display mode: %s", mode)
	}
}

func renderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.New().Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
