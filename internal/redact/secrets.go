// Package redact scrubs provider credentials out of text that leaves the
// process, such as upstream error bodies echoed back to callers and logs.
package redact

import (
	"regexp"
	"sort"
	"strings"
)

// SecretType represents the kind of credential detected
type SecretType string

const (
	SecretTypeKnown         SecretType = "known_credential"
	SecretTypeOpenRouterKey SecretType = "openrouter_key"
	SecretTypeOpenAIKey     SecretType = "openai_style_key"
	SecretTypeGroqKey       SecretType = "groq_key"
	SecretTypeGoogleKey     SecretType = "google_key"
	SecretTypeTavilyKey     SecretType = "tavily_key"
	SecretTypeBearer        SecretType = "bearer_token"
	SecretTypeJWT           SecretType = "jwt"
)

// Detection is one credential found in a text
type Detection struct {
	Type     SecretType
	StartPos int
	EndPos   int
}

// Placeholder replaces every detected credential
const Placeholder = "[REDACTED]"

// minKnownLen is the shortest literal value scrubbed; shorter ones would match ordinary text
const minKnownLen = 4

var patterns = []struct {
	typ SecretType
	re  *regexp.Regexp
}{
	{SecretTypeOpenRouterKey, regexp.MustCompile(`\bsk-or-[A-Za-z0-9\-]{16,}`)},
	{SecretTypeOpenAIKey, regexp.MustCompile(`\bsk-[A-Za-z0-9_\-]{20,}`)},
	{SecretTypeGroqKey, regexp.MustCompile(`\bgsk_[A-Za-z0-9]{20,}\b`)},
	{SecretTypeGoogleKey, regexp.MustCompile(`\bAIza[0-9A-Za-z\-_]{35}\b`)},
	{SecretTypeTavilyKey, regexp.MustCompile(`\btvly-[A-Za-z0-9\-]{16,}`)},
	{SecretTypeBearer, regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9_\-\.]{20,}`)},
	{SecretTypeJWT, regexp.MustCompile(`\beyJ[A-Za-z0-9_\-]+\.eyJ[A-Za-z0-9_\-]+\.[A-Za-z0-9_\-]+\b`)},
}

// Redactor replaces known credential values and well-known key formats
type Redactor struct {
	known []string
}

// New creates a redactor that also scrubs the given literal values.
// Blank and very short values are ignored.
func New(known ...string) *Redactor {
	r := &Redactor{}
	for _, k := range known {
		if k = strings.TrimSpace(k); len(k) >= minKnownLen {
			r.known = append(r.known, k)
		}
	}
	return r
}

// Detect returns the credential spans in text, merged and sorted by position
func (r *Redactor) Detect(text string) []Detection {
	var found []Detection

	for _, k := range r.known {
		for from := 0; ; {
			i := strings.Index(text[from:], k)
			if i < 0 {
				break
			}
			start := from + i
			found = append(found, Detection{Type: SecretTypeKnown, StartPos: start, EndPos: start + len(k)})
			from = start + len(k)
		}
	}

	for _, p := range patterns {
		for _, m := range p.re.FindAllStringIndex(text, -1) {
			found = append(found, Detection{Type: p.typ, StartPos: m[0], EndPos: m[1]})
		}
	}

	return merge(found)
}

// Redact returns text with every detected credential replaced by Placeholder
func (r *Redactor) Redact(text string) string {
	if text == "" {
		return text
	}
	detections := r.Detect(text)
	if len(detections) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	for _, d := range detections {
		b.WriteString(text[last:d.StartPos])
		b.WriteString(Placeholder)
		last = d.EndPos
	}
	b.WriteString(text[last:])
	return b.String()
}

// Secrets scrubs well-known key formats only
func Secrets(text string) string {
	return New().Redact(text)
}

// merge collapses overlapping spans; the earliest detection keeps its type
func merge(found []Detection) []Detection {
	if len(found) < 2 {
		return found
	}
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].StartPos != found[j].StartPos {
			return found[i].StartPos < found[j].StartPos
		}
		return found[i].EndPos > found[j].EndPos
	})

	out := []Detection{found[0]}
	for _, d := range found[1:] {
		cur := &out[len(out)-1]
		if d.StartPos < cur.EndPos {
			if d.EndPos > cur.EndPos {
				cur.EndPos = d.EndPos
			}
			continue
		}
		out = append(out, d)
	}
	return out
}
