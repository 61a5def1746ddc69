package model

import (
	"strings"
	"unicode/utf8"
)

// FeedEntry is one activity line in the project feed.
type FeedEntry struct {
	ID         string `json:"_id" yaml:"_id"`
	Name       string `json:"name" yaml:"name"`
	Experiment string `json:"experiment" yaml:"experiment"`
	Message    string `json:"message" yaml:"message"`
	Timestamp  string `json:"timestamp" yaml:"timestamp"`
}

// Badge returns the first character of the feed name, upper-cased for display.
func (f FeedEntry) Badge() string {
	r, size := utf8.DecodeRuneInString(f.Name)
	if size == 0 {
		return ""
	}
	if r == utf8.RuneError {
		return f.Name[:size]
	}
	return strings.ToUpper(string(r))
}
