// File: pkg/archive/grammar.go
package archive

import "regexp"

// parseResult is the outcome of matching header text against a grammar. When
// matched is false the captures are meaningless.
type parseResult struct {
	matched bool
	grammar string
	first   string
	second  string
}

type grammar struct {
	name string
	re   *regexp.Regexp
}

func (g grammar) parse(text string) parseResult {
	m := g.re.FindStringSubmatch(text)
	if m == nil {
		return parseResult{}
	}
	return parseResult{
		matched: true,
		grammar: g.name,
		first:   m[1],
		second:  m[2],
	}
}

// grammarSet is an ordered list of grammars; the first one that matches wins
type grammarSet []grammar

func (gs grammarSet) match(text string) parseResult {
	if text == "" {
		return parseResult{}
	}
	for _, g := range gs {
		if res := g.parse(text); res.matched {
			return res
		}
	}
	return parseResult{}
}

// The service emits two historical conventions for both headers, e.g.
//
//	transition="ARCHIVE", date="Mon, 01 Jan 2024 00:00:00 GMT"
//	transition: ARCHIVE date: Mon, 01 Jan 2024 00:00:00 GMT
//	ongoing-request="false", expiry-date="Sat, 01 Jun 2024 00:00:00 GMT"
//	ongoing-request = false, expiry-date = Sat, 01 Jun 2024 00:00:00 GMT
var (
	transitionGrammars = grammarSet{
		{name: "quoted", re: regexp.MustCompile(`transition="([A-Z]*)"(?:, date="(.*)")?`)},
		{name: "colon", re: regexp.MustCompile(`transition: ([A-Z]*)(?: date: (.*))?`)},
	}

	restoreGrammars = grammarSet{
		{name: "quoted", re: regexp.MustCompile(`ongoing-request="([a-z]*)"(?:, expiry-date="(.*)")?`)},
		{name: "colon", re: regexp.MustCompile(`ongoing-request = ([a-z]*)(?:, expiry-date = (.*))?`)},
	}
)
