package domain

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	nonWordRe    = regexp.MustCompile(`[^\w\-]+`)
	multiDashRe  = regexp.MustCompile(`\-\-+`)
)

// Slugify turns free text into a lowercase, hyphen-separated,
// filesystem-safe string. Multi-line input yields the slug of the first line
// that produces a non-empty result.
func Slugify(text string) string {
	for _, line := range strings.Split(text, "\n") {
		slug := strings.ToLower(line)
		slug = whitespaceRe.ReplaceAllString(slug, "-")
		slug = nonWordRe.ReplaceAllString(slug, "")
		slug = multiDashRe.ReplaceAllString(slug, "-")
		slug = strings.Trim(slug, "-")

		if slug != "" {
			return slug
		}
	}

	return ""
}

// ParseTagList splits comma-separated tag input into slugs, dropping empty
// entries.
func ParseTagList(text string) []string {
	var tags []string
	for _, token := range strings.Split(text, ",") {
		if token == "" {
			continue
		}
		if slug := Slugify(token); slug != "" {
			tags = append(tags, slug)
		}
	}
	return tags
}
