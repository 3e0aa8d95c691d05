// Package sanitize validates and cleans user-generated message content.
// Sanitization is a hard gate on the write path, not a cosmetic pass.
package sanitize

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bogdang40/DouaInimi/internal/apperr"
)

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
	spacesTabsRe = regexp.MustCompile(`[ \t]+`)
	newlinesRe   = regexp.MustCompile(`\n{3,}`)
	invisibleRe  = regexp.MustCompile("[\u200b-\u200f\u2028-\u202f\u2060\ufeff]")
)

// spam heuristics carried over from the moderation rules
var spamPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(https?://\S+.*){3,}`),                       // too many URLs
	regexp.MustCompile(`(whatsapp|telegram|signal)\s*[:\s]*[\d\+]`),  // phone solicitation
	regexp.MustCompile(`(cash\s*app|venmo|paypal|zelle)\s*[@:]`),     // payment solicitation
	regexp.MustCompile(`(bitcoin|crypto|btc|eth)\s*(wallet|address)`),
	regexp.MustCompile(`make\s*\$?\d+\s*per\s*(day|hour|week)`),
	regexp.MustCompile(`(hot|sexy)\s*(singles|women|girls|men)\s*(near|in)`),
}

// Message normalizes message content: strips HTML tags, escapes what is
// left, collapses runs of spaces/tabs, caps consecutive newlines at two and
// removes zero-width characters.
func Message(content string) string {
	if content == "" {
		return ""
	}

	content = strings.TrimSpace(content)
	content = htmlTagRe.ReplaceAllString(content, "")
	content = html.EscapeString(content)
	content = spacesTabsRe.ReplaceAllString(content, " ")
	content = newlinesRe.ReplaceAllString(content, "\n\n")
	content = invisibleRe.ReplaceAllString(content, "")

	return strings.TrimSpace(content)
}

// ValidateMessage sanitizes content and checks length and spam constraints.
// Returns the sanitized content on success.
func ValidateMessage(content string, maxLength int) (string, error) {
	if content == "" {
		return "", apperr.Validation("message cannot be empty")
	}

	content = Message(content)

	if len(content) == 0 {
		return "", apperr.Validation("message cannot be empty")
	}
	// length is in characters, not bytes; diacritics must not eat the cap
	if utf8.RuneCountInString(content) > maxLength {
		return "", apperr.Validation("message is too long")
	}
	if IsSpam(content) {
		return "", apperr.Validation("message flagged as spam")
	}

	return content, nil
}

// IsSpam reports whether content trips the spam heuristics: known
// solicitation patterns or excessive word repetition.
func IsSpam(content string) bool {
	if content == "" {
		return false
	}

	lower := strings.ToLower(content)
	for _, re := range spamPatterns {
		if re.MatchString(lower) {
			return true
		}
	}

	// excessive repetition: under 30% unique words
	words := strings.Fields(lower)
	if len(words) > 5 {
		unique := make(map[string]struct{}, len(words))
		for _, w := range words {
			unique[w] = struct{}{}
		}
		if float64(len(unique))/float64(len(words)) < 0.3 {
			return true
		}
	}

	return false
}
