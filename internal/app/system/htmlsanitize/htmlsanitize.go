// internal/app/system/htmlsanitize/htmlsanitize.go
//
// Package htmlsanitize strips dangerous markup from user-supplied rich
// text (booking purposes, resource descriptions) while keeping a small
// formatting subset.
package htmlsanitize

import (
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// policy allows basic formatting (bold, italics, lists, links) and
// nothing that can execute or load scripts. Built once; bluemonday
// policies are safe for concurrent use.
var policy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	return p
}()

// strict strips all markup, leaving plain text.
var strict = bluemonday.StrictPolicy()

// Sanitize returns the input with unsafe HTML removed. Safe formatting
// tags are preserved.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return policy.Sanitize(s)
}

// SanitizeHTML is Sanitize for values rendered via html/template without
// re-escaping.
func SanitizeHTML(s string) template.HTML {
	return template.HTML(Sanitize(s))
}

// PlainText strips every tag and trims the result. Used for fields that
// must never carry markup at all (names, locations).
func PlainText(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}
