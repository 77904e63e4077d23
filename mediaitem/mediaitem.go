// Package mediaitem holds the intermediate records a channel produces while
// scraping: navigable folders and playable videos with their resolved streams.
package mediaitem

import (
	"fmt"
	"strings"
	"time"

	"github.com/nu7hatch/gouuid"
)

const (
	TypeFolder = "folder"
	TypeVideo  = "video"
	TypeAudio  = "audio"
	TypePage   = "page"
)

// SortFirst prefixed to a title makes the host list the item first.
const SortFirst = "\a"

type MediaStream struct {
	URL        string
	Bitrate    int
	Properties map[string]string
}

type MediaItemPart struct {
	Name       string
	Streams    []*MediaStream
	Properties map[string]string
}

type MediaItem struct {
	Name        string
	URL         string
	Type        string
	Description string
	Thumb       string
	Icon        string
	Fanart      string

	// Date is the display text, Time the parsed value when known.
	Date string
	Time time.Time

	Complete  bool
	IsLive    bool
	IsCloaked bool
	IsPaid    bool

	GUID        string
	Parts       []*MediaItemPart
	HTTPHeaders map[string]string
}

// New creates a folder item for url.
func New(title string, url string) *MediaItem {
	item := &MediaItem{
		Name: title,
		URL:  url,
		Type: TypeFolder,
	}
	item.GUID = Guid(title, url)
	return item
}

// Guid is stable for the same title and url.
func Guid(title string, url string) string {
	u, err := uuid.NewV5(uuid.NamespaceURL, []byte(title+"|"+url))
	if err != nil {
		return strings.ToUpper(fmt.Sprintf("%x", title+url))
	}
	return strings.ToUpper(strings.Replace(u.String(), "-", "", -1))
}

func (m *MediaItem) IsPlayable() bool {
	return m.Type == TypeVideo || m.Type == TypeAudio
}

func (m *MediaItem) HasMediaItemParts() bool {
	for _, part := range m.Parts {
		if len(part.Streams) > 0 {
			return true
		}
	}
	return false
}

func (m *MediaItem) CreateNewEmptyMediaPart() *MediaItemPart {
	part := &MediaItemPart{Name: m.Name}
	m.Parts = append(m.Parts, part)
	return part
}

// AppendSingleStream adds url in a fresh part and returns that stream.
func (m *MediaItem) AppendSingleStream(url string, bitrate int) *MediaStream {
	part := m.CreateNewEmptyMediaPart()
	return part.AppendMediaStream(url, bitrate)
}

func (m *MediaItem) SetDate(year, month, day, hour, minute, second int) {
	m.Time = time.Date(year, time.Month(month), day, hour, minute, second, 0, time.Local)
	if hour == 0 && minute == 0 && second == 0 {
		m.Date = m.Time.Format("2006-01-02")
	} else {
		m.Date = m.Time.Format("2006-01-02 15:04")
	}
}

func (m *MediaItem) ClearDate() {
	m.Date = ""
	m.Time = time.Time{}
}

// DisplayName is the title without the sort marker.
func (m *MediaItem) DisplayName() string {
	return strings.TrimPrefix(m.Name, SortFirst)
}

func (m *MediaItem) String() string {
	return fmt.Sprintf("MediaItem: %s [Type=%s, Complete=%t, IsLive=%t, Url=%s]",
		m.DisplayName(), m.Type, m.Complete, m.IsLive, m.URL)
}

func (p *MediaItemPart) AppendMediaStream(url string, bitrate int) *MediaStream {
	stream := &MediaStream{URL: url, Bitrate: bitrate}
	p.Streams = append(p.Streams, stream)
	return stream
}

// GetMediaStreamForBitrate picks the best stream not above maxBitrate, or
// the lowest one when every stream is above it. A maxBitrate of 0 or less
// picks the highest bitrate.
func (p *MediaItemPart) GetMediaStreamForBitrate(maxBitrate int) *MediaStream {
	var best, lowest, highest *MediaStream
	for _, s := range p.Streams {
		if lowest == nil || s.Bitrate < lowest.Bitrate {
			lowest = s
		}
		if highest == nil || s.Bitrate > highest.Bitrate {
			highest = s
		}
		if maxBitrate > 0 && s.Bitrate <= maxBitrate && (best == nil || s.Bitrate > best.Bitrate) {
			best = s
		}
	}
	if maxBitrate <= 0 {
		return highest
	}
	if best == nil {
		return lowest
	}
	return best
}

func (s *MediaStream) SetProperty(key string, value string) {
	if s.Properties == nil {
		s.Properties = map[string]string{}
	}
	s.Properties[key] = value
}
