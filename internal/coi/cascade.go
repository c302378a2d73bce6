package coi

import (
	"regexp"
	"strings"
)

// Matcher is one named entry of a Cascade.
type Matcher struct {
	Name    string
	Pattern *regexp.Regexp
}

// Match is the value a Matcher produced: capture group 1 when the pattern has
// one, otherwise the whole match.
type Match struct {
	Strategy string
	Value    string
}

// Rejection records a match the caller refused (e.g. it did not parse).
type Rejection struct {
	Strategy string
	Value    string
	Err      error
}

// Cascade is an ordered list of matchers, most specific first.
// Entries are tried one at a time; matches are never merged across entries.
type Cascade []Matcher

// Find returns the first non-empty match in text.
func (c Cascade) Find(text string) (Match, bool) {
	m, _, ok := c.Search(text, nil)
	return m, ok
}

// Search is Find with a validation hook. When accept returns an error the
// match is recorded as a Rejection and the next entry is tried.
func (c Cascade) Search(text string, accept func(Match) error) (Match, []Rejection, bool) {
	var rejected []Rejection
	for _, m := range c {
		v, ok := m.match(text)
		if !ok {
			continue
		}
		candidate := Match{Strategy: m.Name, Value: v}
		if accept != nil {
			if err := accept(candidate); err != nil {
				rejected = append(rejected, Rejection{Strategy: m.Name, Value: v, Err: err})
				continue
			}
		}
		return candidate, rejected, true
	}
	return Match{}, rejected, false
}

// Names lists the strategies in precedence order.
func (c Cascade) Names() []string {
	out := make([]string, len(c))
	for i, m := range c {
		out[i] = m.Name
	}
	return out
}

func (m Matcher) match(text string) (string, bool) {
	if m.Pattern == nil {
		return "", false
	}
	sub := m.Pattern.FindStringSubmatch(text)
	if sub == nil {
		return "", false
	}
	v := sub[0]
	if len(sub) > 1 {
		v = sub[1]
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}
