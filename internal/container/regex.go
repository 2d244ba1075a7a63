package container

import "regexp"

// Regex is the REGEX metatype's representation (spec §3.4): a thin
// wrapper that compiles its pattern with Go's regexp package and
// matches through it directly (MatchString, FindString). No builtin
// family registers regex methods on top of it.
type Regex struct {
	Pattern string
	re      *regexp.Regexp
}

func CompileRegex(pattern string) (*Regex, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &Regex{Pattern: pattern, re: re}, nil
}

func (r *Regex) MatchString(s string) bool { return r.re.MatchString(s) }

func (r *Regex) FindString(s string) (string, bool) {
	m := r.re.FindString(s)
	return m, m != ""
}
