// Package rpoapp scrapes the regional broadcasters that publish through the
// RPO apps: Omroep Zeeland and RTV Utrecht.
package rpoapp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dop251/goja"
	"github.com/op/go-logging"
	"golang.org/x/text/cases"
	xlanguage "golang.org/x/text/language"

	"github.com/Sopor/plugin.video.retrospect/channel"
	"github.com/Sopor/plugin.video.retrospect/config"
	"github.com/Sopor/plugin.video.retrospect/datehelper"
	"github.com/Sopor/plugin.video.retrospect/jsonhelper"
	"github.com/Sopor/plugin.video.retrospect/language"
	"github.com/Sopor/plugin.video.retrospect/mediaitem"
	"github.com/Sopor/plugin.video.retrospect/regexer"
	"github.com/Sopor/plugin.video.retrospect/streams/m3u8"
)

var log = logging.MustGetLogger("rpoapp")

const (
	GUID = "6E8A1C2B-4F0D-4B8E-9C51-2D7E3A9F0B64"

	CodeOmroepZeeland = "omroepzeeland"
	CodeRTVUtrecht    = "rtvutrecht"

	htmlEpisodeRegex = `<option\s+value="(?<url>/gemist/uitzending/[^"]+)">(?<title>[^<]*)`
	videoItemRegex   = `<img src="(?<thumburl>[^"]+)"[^>]+alt="(?<title>[^"]+)"[^>]*/>\W*</a>\W*<figcaption(?:[^>]+>\W*){2}<time[^>]+datetime="(?<date>[^"]+)[^>]*>(?:[^>]+>\W*){3}<a[^>]+href="(?<url>[^"]+)"[^>]*>\W*(?:[^>]+>\W*){3}<a[^>]+>(?<description>.+?)</a>`
	archiveRegex     = `setupBroadcastArchive\('Tv',\s*([^;]+)\);`
	jwPlayerRegex    = `label:\s*"([^"]+)",\W*file:\s*"([^"]+)"`
	playerOptsRegex  = `var opts\s*=\s*({.+});\W*//window`

	bbvmsURL = "https://omroepzeeland.bbvms.com/p/regiogrid/q/sourceid_string:%s*.js"
)

var (
	// playerOptionsTimeout bounds the evaluation of a loose player options
	// object.
	playerOptionsTimeout = 2 * time.Second

	errPlayerOptionsTimeout = errors.New("player options evaluation timed out")
)

var jwPlayerBitrates = map[string]int{
	"720p SD": 1200,
}

// Channels lists the channel codes this package serves.
var Channels = []channel.ChannelInfo{
	{
		GUID:        GUID,
		Code:        CodeOmroepZeeland,
		Name:        "Omroep Zeeland",
		Description: "Uitzending gemist en live tv en radio van Omroep Zeeland.",
		Icon:        "omroepzeelandimage.png",
		Language:    "nl",
		Enabled:     true,
	},
	{
		GUID:        GUID,
		Code:        CodeRTVUtrecht,
		Name:        "RTV Utrecht",
		Description: "Uitzending gemist en live tv en radio van RTV Utrecht.",
		Icon:        "rtvutrechtimage.png",
		Language:    "nl",
		Enabled:     true,
	},
}

type Channel struct {
	*channel.Channel

	liveURL string
}

func New(info channel.ChannelInfo, fetcher channel.Fetcher) (*Channel, error) {
	c := &Channel{Channel: channel.New(info, fetcher)}

	switch info.Code {
	case CodeOmroepZeeland:
		c.NoImage = "omroepzeelandimage.png"
		c.MainListURI = "https://www.omroepzeeland.nl/tvgemist"
		c.BaseURL = "https://www.omroepzeeland.nl"
		c.liveURL = "https://zeeland.rpoapp.nl/v01/livestreams/AndroidTablet.json"
	case CodeRTVUtrecht:
		c.NoImage = "rtvutrechtimage.png"
		c.MainListURI = "https://www.rtvutrecht.nl/gemist/rtvutrecht/"
		c.BaseURL = "https://www.rtvutrecht.nl"
		// Uses NPO stream with smshield cookie
		c.liveURL = "https://utrecht.rpoapp.nl/v02/livestreams/AndroidTablet.json"
	default:
		return nil, fmt.Errorf("%w: channel code %q not implemented", channel.ErrUnknownChannel, info.Code)
	}

	// JSON based main lists
	c.AddDataParser("https://www.omroepzeeland.nl/tvgemist", channel.ParserData{
		MatchType:    channel.MatchExact,
		Preprocessor: c.AddLiveChannelAndExtractData,
		JSON:         true,
		Creator:      c.CreateJsonEpisodeItem,
	})

	// HTML based main lists
	c.AddDataParser("https://www.rtvutrecht.nl/gemist/rtvutrecht/", channel.ParserData{
		MatchType:    channel.MatchExact,
		Preprocessor: c.AddLiveChannelAndExtractData,
		Parser:       regexer.FromExpresso(htmlEpisodeRegex),
		Creator:      c.CreateEpisodeItem,
	})

	c.AddDataParser("https://www.rtvutrecht.nl/", channel.ParserData{
		Name:    "HTML Video parsers and updater for JWPlayer embedded JSON",
		Parser:  regexer.FromExpresso(videoItemRegex),
		Creator: c.CreateVideoItem,
		Updater: c.UpdateVideoItemJsonPlayer,
	})

	c.AddDataParser("https://www.omroepzeeland.nl/RadioTv/Results?", channel.ParserData{
		Name:     "Video item parser",
		JSON:     true,
		JSONPath: []interface{}{"searchResults"},
		Creator:  c.CreateJsonVideoItem,
	})

	c.AddDataParser("https://www.omroepzeeland.nl/", channel.ParserData{
		Name:    "Updater for Javascript file based stream data",
		Updater: c.UpdateVideoItemJavascript,
	})

	// live streams
	c.AddDataParser(c.liveURL, channel.ParserData{
		Name:    "Live Stream Creator",
		JSON:    true,
		Creator: c.CreateLiveItem,
	})

	c.AddDataParser(".+/live/.+", channel.ParserData{
		MatchType: channel.MatchRegex,
		Updater:   c.UpdateLiveItem,
	})

	return c, nil
}

// AddLiveChannelAndExtractData adds the live folder and, for pages embedding
// the broadcast archive, replaces the page with the archive JSON.
func (c *Channel) AddLiveChannelAndExtractData(ctx context.Context, data string) (string, []*mediaitem.MediaItem) {
	log.Info("Performing Pre-Processing")

	title := language.GetLocalizedString(language.LiveStreamTitleId)
	live := mediaitem.New(fmt.Sprintf("%s.: %s :.", mediaitem.SortFirst, title), c.liveURL)
	live.Type = mediaitem.TypeFolder
	live.Complete = true
	items := []*mediaitem.MediaItem{live}

	if data == "" {
		return "[]", items
	}

	if archive := regexer.First(archiveRegex, data); archive != "" {
		log.Debug("Pre-Processing finished")
		return archive, items
	}

	log.Info("Cannot extract JSON data from HTML.")
	return data, items
}

func (c *Channel) CreateLiveItem(result channel.Result) *mediaitem.MediaItem {
	url := result.Object("stream").String("highQualityUrl")
	if url == "" {
		log.Warningf("Live stream without url: %v", map[string]interface{}(result))
		return nil
	}
	title := result.String("title")
	if title == "" {
		title = cases.Title(xlanguage.Dutch).String(result.String("id"))
	}

	item := mediaitem.New(title, url)
	item.Type = mediaitem.TypeVideo
	item.IsLive = true

	if strings.HasSuffix(item.URL, ".mp3") {
		item.AppendSingleStream(item.URL, 0)
		item.Complete = true
	}
	return item
}

func (c *Channel) CreateJsonEpisodeItem(result channel.Result) *mediaitem.MediaItem {
	seriesID := result.String("seriesId")
	title := channel.CleanText(result.String("title"))
	if seriesID == "" || title == "" {
		return nil
	}
	url := fmt.Sprintf("%s/RadioTv/Results?medium=Tv&query=&category=%s&from=&to=&page=1", c.BaseURL, seriesID)
	item := mediaitem.New(title, url)
	item.Type = mediaitem.TypeFolder
	item.Thumb = c.NoImage
	item.Complete = false
	return item
}

func (c *Channel) CreateVideoItem(result channel.Result) *mediaitem.MediaItem {
	item := c.Channel.CreateVideoItem(result)
	if item == nil {
		return nil
	}

	// 2018-02-24 07:15:00
	t, err := datehelper.GetDateFromString(result.String("date"), "%Y-%m-%d %H:%M:%S")
	if err != nil {
		log.Warningf("Error parsing date %q: %s", result.String("date"), err)
		return item
	}
	item.SetDate(t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
	return item
}

func (c *Channel) CreateJsonVideoItem(result channel.Result) *mediaitem.MediaItem {
	url := result.String("url")
	title := channel.CleanText(result.String("title"))
	if url == "" || title == "" {
		return nil
	}
	if !strings.HasPrefix(url, "http") {
		url = c.BaseURL + url
	}

	item := mediaitem.New(title, url)
	item.Description = channel.CleanText(result.String("synopsis"))
	item.Thumb = result.String("photo")
	if item.Thumb == "" {
		item.Thumb = c.NoImage
	}
	item.Type = mediaitem.TypeVideo

	if result.Has("publicationTimeString") {
		// publicationTimeString=7 jun 2018 17:20 uur
		if err := setDutchDate(item, result.String("publicationTimeString")); err != nil {
			log.Warningf("Error parsing date %s: %s", result.String("publicationTimeString"), err)
		}
	}

	item.Complete = false
	return item
}

func setDutchDate(item *mediaitem.MediaItem, value string) error {
	parts := strings.Fields(value)
	if len(parts) < 4 {
		return fmt.Errorf("expected 'day month year hh:mm', got %q", value)
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return err
	}
	month, err := datehelper.GetMonthFromName(parts[1], "nl", true)
	if err != nil {
		return err
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return err
	}
	clock := strings.SplitN(parts[3], ":", 2)
	if len(clock) != 2 {
		return fmt.Errorf("invalid time %q", parts[3])
	}
	hours, err := strconv.Atoi(clock[0])
	if err != nil {
		return err
	}
	minutes, err := strconv.Atoi(clock[1])
	if err != nil {
		return err
	}
	item.SetDate(year, month, day, hours, minutes, 0)
	return nil
}

func (c *Channel) UpdateLiveItem(ctx context.Context, item *mediaitem.MediaItem) (*mediaitem.MediaItem, error) {
	part := item.CreateNewEmptyMediaPart()
	if config.Get().UseAdaptiveStream {
		stream := part.AppendMediaStream(item.URL, 0)
		m3u8.SetInputStreamAddonInput(stream, item.HTTPHeaders)
		item.Complete = true
		return item, nil
	}

	streams, err := m3u8.GetStreamsFromM3u8(ctx, c.Fetcher, item.URL)
	if err != nil {
		return item, err
	}
	for _, s := range streams {
		part.AppendMediaStream(s.URL, s.Bitrate)
		item.Complete = true
	}
	return item, nil
}

func (c *Channel) UpdateVideoItemJsonPlayer(ctx context.Context, item *mediaitem.MediaItem) (*mediaitem.MediaItem, error) {
	data, err := c.Fetcher.Open(ctx, item.URL, item.HTTPHeaders)
	if err != nil {
		return item, err
	}
	streams, err := regexer.DoRegex(jwPlayerRegex, data)
	if err != nil {
		return item, err
	}

	part := item.CreateNewEmptyMediaPart()
	for _, s := range streams {
		part.AppendMediaStream(s["2"], jwPlayerBitrates[s["1"]])
		item.Complete = true
	}
	return item, nil
}

// VideoID extracts the id from urls like .../aflevering/<id>/<slug> or
// .../<id>.
func VideoID(url string) string {
	parts := strings.Split(strings.TrimRight(url, "/"), "/")
	if len(parts) >= 3 && parts[len(parts)-3] == "aflevering" {
		return parts[len(parts)-2]
	}
	return parts[len(parts)-1]
}

func (c *Channel) UpdateVideoItemJavascript(ctx context.Context, item *mediaitem.MediaItem) (*mediaitem.MediaItem, error) {
	videoID := VideoID(item.URL)
	log.Debugf("Found videoId '%s' for '%s'", videoID, item.URL)

	data, err := c.Fetcher.Open(ctx, fmt.Sprintf(bbvmsURL, videoID), nil)
	if err != nil {
		return item, err
	}

	opts := regexer.First(playerOptsRegex, data)
	if opts == "" {
		return item, fmt.Errorf("no player options in script for %s", videoID)
	}
	log.Debugf("Found jsondata with size: %d", len(opts))

	helper, err := parsePlayerOptions(ctx, opts)
	if err != nil {
		return item, err
	}
	clips, err := helper.GetValue("clipData", "assets")
	if err != nil {
		return item, err
	}
	server, _ := helper.GetValue("publicationData", "defaultMediaAssetPath")
	serverPath, _ := server.(string)

	part := item.CreateNewEmptyMediaPart()
	for _, clip := range jsonhelper.AsList(clips) {
		asset := jsonhelper.ToObject(clip)
		if asset == nil || asset.String("src") == "" {
			continue
		}
		part.AppendMediaStream(serverPath+asset.String("src"), asset.Int("bandwidth"))
		item.Complete = true
	}
	return item, nil
}

// parsePlayerOptions reads the player options object. The script is not
// always strict JSON, in which case it is evaluated until ctx is done or
// playerOptionsTimeout passes.
func parsePlayerOptions(ctx context.Context, opts string) (*jsonhelper.JsonHelper, error) {
	if helper, err := jsonhelper.New(opts); err == nil {
		return helper, nil
	}

	vm := goja.New()
	timer := time.AfterFunc(playerOptionsTimeout, func() {
		vm.Interrupt(errPlayerOptionsTimeout)
	})
	defer timer.Stop()
	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt(ctx.Err())
	})
	defer stop()

	v, err := vm.RunString("JSON.stringify(" + opts + ")")
	if err != nil {
		return nil, fmt.Errorf("evaluating player options: %w", err)
	}
	return jsonhelper.New(v.String())
}
