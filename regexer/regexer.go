// Package regexer runs the scraping expressions channels register. Patterns
// use the .NET (Expresso) dialect, so named groups are written (?<name>...).
package regexer

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("regexer")

// Match holds one match keyed by group name and by group number; "0" is the
// whole match.
type Match map[string]string

const matchTimeout = 10 * time.Second

var (
	cacheMu sync.Mutex
	cache   = map[string]*regexp2.Regexp{}
)

// FromExpresso normalises a pattern written in Expresso. Python style named
// groups (?P<name>...) are rewritten to the .NET form.
func FromExpresso(pattern string) string {
	return strings.Replace(pattern, "(?P<", "(?<", -1)
}

func compile(pattern string) (*regexp2.Regexp, error) {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if re, ok := cache[pattern]; ok {
		return re, nil
	}
	re, err := regexp2.Compile(FromExpresso(pattern), regexp2.Singleline|regexp2.IgnoreCase)
	if err != nil {
		return nil, fmt.Errorf("regexer: compiling %q: %w", pattern, err)
	}
	re.MatchTimeout = matchTimeout
	cache[pattern] = re
	return re, nil
}

// DoRegex returns every match of pattern in data.
func DoRegex(pattern string, data string) ([]Match, error) {
	re, err := compile(pattern)
	if err != nil {
		return nil, err
	}

	var matches []Match
	m, err := re.FindStringMatch(data)
	for m != nil && err == nil {
		result := Match{}
		for i, g := range m.Groups() {
			result[strconv.Itoa(i)] = g.String()
			if g.Name != "" && g.Name != strconv.Itoa(i) {
				result[g.Name] = g.String()
			}
		}
		matches = append(matches, result)
		m, err = re.FindNextMatch(m)
	}
	if err != nil {
		log.Warningf("Regex %q stopped after %d matches: %s", pattern, len(matches), err)
		return matches, err
	}
	log.Debugf("Found %d matches for %q", len(matches), pattern)
	return matches, nil
}

// First returns the first group of the first match, or "".
func First(pattern string, data string) string {
	matches, _ := DoRegex(pattern, data)
	if len(matches) == 0 {
		return ""
	}
	if v, ok := matches[0]["1"]; ok {
		return v
	}
	return matches[0]["0"]
}

// Matches reports whether pattern matches at the start of data.
func Matches(pattern string, data string) bool {
	re, err := compile("^(?:" + pattern + ")")
	if err != nil {
		log.Errorf("Invalid pattern %q: %s", pattern, err)
		return false
	}
	ok, err := re.MatchString(data)
	return ok && err == nil
}
