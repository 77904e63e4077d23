package channel

import (
	"context"
	"fmt"
	"strings"

	"github.com/Sopor/plugin.video.retrospect/jsonhelper"
	"github.com/Sopor/plugin.video.retrospect/mediaitem"
	"github.com/Sopor/plugin.video.retrospect/regexer"
)

type MatchType int

const (
	MatchStartsWith MatchType = iota
	MatchRegex
	MatchExact
)

func (m MatchType) String() string {
	switch m {
	case MatchExact:
		return "exact"
	case MatchRegex:
		return "regex"
	default:
		return "startswith"
	}
}

// Result is one extracted record: the named groups of a regex match or a
// JSON object.
type Result = jsonhelper.Object

// Preprocessor may rewrite the fetched data and contribute items of its own.
type Preprocessor func(ctx context.Context, data string) (string, []*mediaitem.MediaItem)

// Creator turns a result into an item; nil skips the result.
type Creator func(result Result) *mediaitem.MediaItem

// Updater completes an item, typically by resolving its streams.
type Updater func(ctx context.Context, item *mediaitem.MediaItem) (*mediaitem.MediaItem, error)

// ParserData binds a URL pattern to the code handling pages at that URL.
type ParserData struct {
	Name      string
	URL       string
	MatchType MatchType

	Preprocessor Preprocessor

	// Parser is a regular expression for HTML data; JSONPath selects the
	// results when JSON is set. An empty JSONPath selects the root.
	Parser   string
	JSON     bool
	JSONPath []interface{}

	Creator Creator
	Updater Updater
}

func (p *ParserData) String() string {
	name := p.Name
	if name == "" {
		name = "unnamed"
	}
	return fmt.Sprintf("ParserData[%s, %s=%s]", name, p.MatchType, p.URL)
}

func (p *ParserData) key() string {
	return p.MatchType.String() + "|" + p.URL
}

func (p *ParserData) lists() bool {
	return p.Creator != nil || p.Preprocessor != nil
}

func (p *ParserData) updates() bool {
	return p.Updater != nil
}

// score ranks how specific a match is: exact beats regex beats the longest
// starts-with pattern. Zero means no match.
func (p *ParserData) score(url string) int {
	switch p.MatchType {
	case MatchExact:
		if url == p.URL {
			return 3 << 16
		}
	case MatchRegex:
		if regexer.Matches(p.URL, url) {
			return 2<<16 + len(p.URL)
		}
	default:
		if strings.HasPrefix(url, p.URL) {
			return 1<<16 + len(p.URL)
		}
	}
	return 0
}

func (p *ParserData) extract(data string) ([]Result, error) {
	if p.JSON {
		helper, err := jsonhelper.New(data)
		if err != nil {
			return nil, err
		}
		return p.extractValue(helper.Data)
	}

	if p.Parser == "" {
		return nil, nil
	}
	matches, err := regexer.DoRegex(p.Parser, data)
	results := make([]Result, 0, len(matches))
	for _, m := range matches {
		r := Result{}
		for k, v := range m {
			r[k] = v
		}
		results = append(results, r)
	}
	return results, err
}

func (p *ParserData) extractValue(document interface{}) ([]Result, error) {
	v, err := jsonhelper.FromValue(document).GetValue(p.JSONPath...)
	if err != nil {
		return nil, err
	}
	var results []Result
	for _, e := range jsonhelper.AsList(v) {
		if obj := jsonhelper.ToObject(e); obj != nil {
			results = append(results, obj)
		} else {
			results = append(results, Result{"value": e})
		}
	}
	return results, nil
}
