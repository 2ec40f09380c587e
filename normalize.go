package godeck

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	fenceOpenRe    = regexp.MustCompile("(?i)^\\s*```(?:json)?\\s*")
	fenceCloseRe   = regexp.MustCompile("\\s*```\\s*$")
	lineCommentRe  = regexp.MustCompile(`(?m)^\s*//.*$`)
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	trailingComma  = regexp.MustCompile(`,\s*([\]}])`)
	lineEndingRe   = regexp.MustCompile(`\r\n?`)
	mdEscapeRe     = regexp.MustCompile(`\\+([_\[\]\(\)\{\}&%#@!\+\-=:;,\.\?<>^~|/])`)
	varPattern     = regexp.MustCompile(`\{\{([a-zA-Z0-9_\-]+)\}\}`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// CleanLenient makes common near-JSON inputs parseable: it strips code
// fences and a byte-order mark, removes JS/C-style comments, drops
// trailing commas before } or ], removes backslashes that are not valid
// JSON escapes, and normalizes line endings. The output is still subject
// to standard JSON parsing.
func CleanLenient(raw string) string {
	s := raw

	s = strings.TrimLeft(s, "\ufeff")
	s = strings.TrimSpace(s)

	s = fenceOpenRe.ReplaceAllString(s, "")
	s = fenceCloseRe.ReplaceAllString(s, "")

	s = lineCommentRe.ReplaceAllString(s, "")
	s = blockCommentRe.ReplaceAllString(s, "")

	s = trailingComma.ReplaceAllString(s, "$1")

	s = removeInvalidEscapes(s)

	s = lineEndingRe.ReplaceAllString(s, "\n")

	return s
}

// removeInvalidEscapes drops backslashes not followed by one of the
// JSON-legal escape characters " \ / b f n r t u. A kept backslash does
// not shield the following character from being examined itself, so a
// run like \\x loses only its second backslash.
func removeInvalidEscapes(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		if i+1 < len(s) && isJSONEscapeChar(s[i+1]) {
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func isJSONEscapeChar(c byte) bool {
	switch c {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
		return true
	}
	return false
}

// stripMarkdownEscapes removes Markdown-style backslashes before
// punctuation inside an already-parsed string, so "V\&V" becomes "V&V"
// and "AI\_SE" becomes "AI_SE". Letters and digits are never affected,
// which keeps Windows paths like C:\temp\file intact.
func stripMarkdownEscapes(s string) string {
	if s == "" || !strings.ContainsRune(s, '\\') {
		return s
	}
	return mdEscapeRe.ReplaceAllString(s, "$1")
}

// normalizeSpecText strips markdown escapes from the human-facing text
// fields of a spec in place: slide titles, notes, and bullet text.
func normalizeSpecText(spec *DeckSpec) {
	if spec == nil {
		return
	}
	for _, sl := range spec.Slides {
		if sl == nil {
			continue
		}
		sl.Title = stripMarkdownEscapes(sl.Title)
		sl.Notes = stripMarkdownEscapes(sl.Notes)
		for _, region := range sl.Regions {
			if region == nil {
				continue
			}
			normalizeBulletText(region.Bullets)
		}
	}
}

func normalizeBulletText(nodes []*BulletNode) {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		n.Text = stripMarkdownEscapes(n.Text)
		normalizeBulletText(n.Children)
	}
}

// expandVars substitutes {{name}} tokens from the variable table.
// Unresolved tokens are left verbatim rather than failing.
func expandVars(s string, variables VarMap) string {
	if s == "" || !strings.Contains(s, "{{") {
		return s
	}
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		key := match[2 : len(match)-2]
		if val, ok := variables[key]; ok {
			return val
		}
		return match
	})
}

// NormalizeText folds punctuation and whitespace for tolerant text
// comparison: Unicode NFC, em and en dashes to hyphens, runs of
// whitespace to a single space, surrounding whitespace trimmed. Used
// anywhere extracted text is compared against expected text, so
// template and font substitution quirks do not cause false mismatches.
func NormalizeText(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\u2014", "-")
	s = strings.ReplaceAll(s, "\u2013", "-")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
