package writer

import (
	"regexp"

	"logpipe/pkg/record"
)

// PatternFilter accepts records whose message matches a precompiled regular
// expression.
type PatternFilter struct {
	re *regexp.Regexp
}

// NewPatternFilter compiles pattern once at construction; construction
// failure is the caller's responsibility to surface (mirrors the pipeline's
// "filters are pure and non-blocking" contract: no compilation on the hot
// path).
func NewPatternFilter(pattern string) (*PatternFilter, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &PatternFilter{re: re}, nil
}

func (p *PatternFilter) Accept(r record.Record) bool {
	return p.re.MatchString(r.Message)
}
