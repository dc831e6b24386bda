package main

import "strings"

// bulletPrefixes start lines that keep their own line even inside a
// paragraph, so copied lists survive unwrapping.
var bulletPrefixes = []string{"- ", "* ", "+ ", "> "}

// Unwrap joins hard-wrapped lines back into paragraphs. Text copied out
// of PDFs and terminals arrives with a newline at the end of every
// display line; this removes those while keeping real structure: blank
// lines still separate paragraphs, and indented or bulleted lines keep
// their line breaks.
func Unwrap(text string) string {
	lines := strings.Split(text, "\n")

	var out []string
	var paragraph []string

	flush := func() {
		if len(paragraph) > 0 {
			out = append(out, strings.Join(paragraph, " "))
			paragraph = nil
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t")

		switch {
		case strings.TrimSpace(trimmed) == "":
			flush()
			out = append(out, "")
		case keepsOwnLine(trimmed):
			flush()
			out = append(out, trimmed)
		default:
			paragraph = append(paragraph, strings.TrimSpace(trimmed))
		}
	}
	flush()

	// Collapse the trailing blank line a final newline split produces.
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}

	return strings.Join(out, "\n") + "\n"
}

// keepsOwnLine reports whether a line's break is meaningful: indented
// lines (code, quotes) and list items are not joined into paragraphs.
func keepsOwnLine(line string) bool {
	if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
		return true
	}
	for _, p := range bulletPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}
