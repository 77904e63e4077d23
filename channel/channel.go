// Package channel is the scraping framework every broadcaster channel builds
// on. A channel registers ParserData for URL patterns; listing a folder fetches
// its URL once and runs the parsers registered for the best matching pattern.
package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/op/go-logging"

	"github.com/Sopor/plugin.video.retrospect/jsonhelper"
	"github.com/Sopor/plugin.video.retrospect/mediaitem"
	"github.com/Sopor/plugin.video.retrospect/urihandler"
)

var log = logging.MustGetLogger("channel")

var (
	ErrNoParser       = errors.New("channel: no parser for url")
	ErrUnknownChannel = errors.New("channel: unknown channel")

	// ErrPartial comes with the items that could be listed when the page
	// could not be fetched or parsed.
	ErrPartial = errors.New("channel: partial listing")
)

type ChannelInfo struct {
	GUID        string
	Code        string
	Name        string
	Description string
	Icon        string
	Language    string
	Enabled     bool
}

func (ci *ChannelInfo) String() string {
	if ci.Code == "" {
		return fmt.Sprintf("%s [%s]", ci.Name, ci.GUID)
	}
	return fmt.Sprintf("%s (%s) [%s]", ci.Name, ci.Code, ci.GUID)
}

// Fetcher is the part of urihandler.Handler channels depend on.
type Fetcher interface {
	Open(ctx context.Context, url string, headers map[string]string) (string, error)
}

// JSONFetcher is implemented by fetchers with a dedicated JSON API client.
// Pages handled only by JSON parsers without a preprocessor are fetched
// through it.
type JSONFetcher interface {
	GetJSON(ctx context.Context, rawURL string, params url.Values, result interface{}) error
}

func jsonOnly(parsers []*ParserData) bool {
	for _, p := range parsers {
		if !p.JSON || p.Preprocessor != nil {
			return false
		}
	}
	return true
}

// Scraper is what the rest of the add-on needs from a channel.
type Scraper interface {
	Info() *ChannelInfo
	MainList(ctx context.Context) ([]*mediaitem.MediaItem, error)
	ProcessFolderList(ctx context.Context, item *mediaitem.MediaItem) ([]*mediaitem.MediaItem, error)
	ProcessVideoItem(ctx context.Context, item *mediaitem.MediaItem) (*mediaitem.MediaItem, error)
}

type Channel struct {
	ChannelInfo

	MainListURI string
	BaseURL     string
	NoImage     string

	Fetcher Fetcher

	parsers []*ParserData
}

func New(info ChannelInfo, fetcher Fetcher) *Channel {
	return &Channel{ChannelInfo: info, Fetcher: fetcher}
}

func (c *Channel) Info() *ChannelInfo {
	return &c.ChannelInfo
}

// AddDataParser registers p for url. Parsers sharing a url run in
// registration order.
func (c *Channel) AddDataParser(url string, p ParserData) {
	p.URL = url
	c.parsers = append(c.parsers, &p)
	log.Debugf("%s: registered %s", c.Name, &p)
}

func (c *Channel) dataParsers(url string, updaters bool) []*ParserData {
	bestScore := 0
	bestKey := ""
	for _, p := range c.parsers {
		if updaters && !p.updates() || !updaters && !p.lists() {
			continue
		}
		if s := p.score(url); s > bestScore {
			bestScore, bestKey = s, p.key()
		}
	}
	if bestScore == 0 {
		return nil
	}

	var result []*ParserData
	for _, p := range c.parsers {
		if p.key() != bestKey {
			continue
		}
		if updaters && p.updates() || !updaters && p.lists() {
			result = append(result, p)
		}
	}
	return result
}

func (c *Channel) MainList(ctx context.Context) ([]*mediaitem.MediaItem, error) {
	item := mediaitem.New("mainlist", c.MainListURI)
	return c.ProcessFolderList(ctx, item)
}

// ProcessFolderList lists the content of item. Fetch and extraction failures
// are logged and skipped; the items found so far are then returned together
// with an error wrapping ErrPartial.
func (c *Channel) ProcessFolderList(ctx context.Context, item *mediaitem.MediaItem) ([]*mediaitem.MediaItem, error) {
	parsers := c.dataParsers(item.URL, false)
	if len(parsers) == 0 {
		log.Errorf("%s: no parsers found for %s", c.Name, item.URL)
		return nil, fmt.Errorf("%w: %s", ErrNoParser, item.URL)
	}
	log.Infof("%s: processing folder %s with %d parser(s)", c.Name, item.URL, len(parsers))

	var data string
	var document interface{}
	var err error
	partial := false
	if jf, ok := c.Fetcher.(JSONFetcher); ok && jsonOnly(parsers) {
		var raw json.RawMessage
		if err = jf.GetJSON(ctx, item.URL, nil, &raw); err == nil {
			// same decoding as pages fetched with Open
			var helper *jsonhelper.JsonHelper
			if helper, err = jsonhelper.New(string(raw)); err == nil {
				document = helper.Data
			}
		}
	} else {
		data, err = c.Fetcher.Open(ctx, item.URL, item.HTTPHeaders)
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Errorf("%s: cannot open %s: %s", c.Name, item.URL, err)
		data, document = "", nil
		partial = true
	}

	items := make([]*mediaitem.MediaItem, 0)
	for _, p := range parsers {
		pageData := data
		if p.Preprocessor != nil {
			var preItems []*mediaitem.MediaItem
			pageData, preItems = p.Preprocessor(ctx, pageData)
			items = append(items, preItems...)
		}
		if p.Creator == nil {
			continue
		}

		var results []Result
		if document != nil {
			results, err = p.extractValue(document)
		} else {
			results, err = p.extract(pageData)
		}
		if err != nil {
			log.Warningf("%s: %s failed on %s: %s", c.Name, p, item.URL, err)
			partial = true
		}
		log.Debugf("%s: %s found %d results", c.Name, p, len(results))
		for _, r := range results {
			created := p.Creator(r)
			if created == nil {
				continue
			}
			created.URL = urihandler.MakeAbsolute(item.URL, created.URL)
			if created.GUID == "" {
				created.GUID = mediaitem.Guid(created.Name, created.URL)
			}
			items = append(items, created)
		}
	}
	if partial {
		return items, fmt.Errorf("%w: %s", ErrPartial, item.URL)
	}
	return items, nil
}

// ProcessVideoItem runs the updater for item. Without an updater the item
// is returned unchanged.
func (c *Channel) ProcessVideoItem(ctx context.Context, item *mediaitem.MediaItem) (*mediaitem.MediaItem, error) {
	parsers := c.dataParsers(item.URL, true)
	if len(parsers) == 0 {
		log.Warningf("%s: no updater found for %s", c.Name, item.URL)
		return item, nil
	}
	p := parsers[0]
	log.Infof("%s: updating %s with %s", c.Name, item, p)
	updated, err := p.Updater(ctx, item)
	if err != nil {
		return item, fmt.Errorf("%s: updating %s: %w", c.Name, item.URL, err)
	}
	if updated == nil {
		return item, nil
	}
	return updated, nil
}

// CreateEpisodeItem is the default creator for folders with a title and url.
func (c *Channel) CreateEpisodeItem(r Result) *mediaitem.MediaItem {
	title := CleanText(r.String("title"))
	url := r.String("url")
	if title == "" || url == "" {
		return nil
	}
	item := mediaitem.New(title, c.makeAbsolute(url))
	item.Thumb = c.NoImage
	item.Complete = true
	return item
}

// CreateVideoItem is the default creator for videos with a title, url and
// optionally thumburl and description.
func (c *Channel) CreateVideoItem(r Result) *mediaitem.MediaItem {
	title := CleanText(r.String("title"))
	url := r.String("url")
	if title == "" || url == "" {
		return nil
	}
	item := mediaitem.New(title, c.makeAbsolute(url))
	item.Type = mediaitem.TypeVideo
	item.Description = CleanText(r.String("description"))
	item.Thumb = c.NoImage
	if thumb := r.String("thumburl"); thumb != "" {
		item.Thumb = c.makeAbsolute(thumb)
	}
	item.Complete = false
	return item
}

func (c *Channel) makeAbsolute(url string) string {
	if c.BaseURL == "" {
		return url
	}
	return urihandler.MakeAbsolute(c.BaseURL, url)
}

// CleanText decodes HTML entities and trims whitespace.
func CleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(s))
}
