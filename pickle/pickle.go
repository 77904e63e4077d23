// Package pickle turns media items into URL-safe tokens so they can travel
// through plugin:// paths and context-menu actions.
package pickle

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/zeebo/bencode"

	"github.com/Sopor/plugin.video.retrospect/mediaitem"
)

var ErrCorrupt = errors.New("pickle: corrupt media item")

// bencode has no booleans or floats, so flags travel as integers and the
// time as unix seconds.
type wireStream struct {
	URL        string            `bencode:"u"`
	Bitrate    int               `bencode:"b"`
	Properties map[string]string `bencode:"p"`
}

type wirePart struct {
	Name       string            `bencode:"n"`
	Streams    []wireStream      `bencode:"s"`
	Properties map[string]string `bencode:"p"`
}

type wireItem struct {
	Name        string            `bencode:"n"`
	URL         string            `bencode:"u"`
	Type        string            `bencode:"t"`
	Description string            `bencode:"d"`
	Thumb       string            `bencode:"th"`
	Icon        string            `bencode:"ic"`
	Fanart      string            `bencode:"fa"`
	Date        string            `bencode:"dt"`
	Time        int64             `bencode:"ts"`
	Flags       int               `bencode:"f"`
	GUID        string            `bencode:"g"`
	Parts       []wirePart        `bencode:"pa"`
	HTTPHeaders map[string]string `bencode:"h"`
}

const (
	flagComplete = 1 << iota
	flagLive
	flagCloaked
	flagPaid
)

func Pickle(item *mediaitem.MediaItem) (string, error) {
	w := wireItem{
		Name:        item.Name,
		URL:         item.URL,
		Type:        item.Type,
		Description: item.Description,
		Thumb:       item.Thumb,
		Icon:        item.Icon,
		Fanart:      item.Fanart,
		Date:        item.Date,
		GUID:        item.GUID,
		HTTPHeaders: nonNil(item.HTTPHeaders),
		Parts:       []wirePart{},
	}
	if !item.Time.IsZero() {
		w.Time = item.Time.Unix()
	}
	for flag, set := range map[int]bool{
		flagComplete: item.Complete,
		flagLive:     item.IsLive,
		flagCloaked:  item.IsCloaked,
		flagPaid:     item.IsPaid,
	} {
		if set {
			w.Flags |= flag
		}
	}
	for _, part := range item.Parts {
		wp := wirePart{Name: part.Name, Properties: nonNil(part.Properties), Streams: []wireStream{}}
		for _, s := range part.Streams {
			wp.Streams = append(wp.Streams, wireStream{URL: s.URL, Bitrate: s.Bitrate, Properties: nonNil(s.Properties)})
		}
		w.Parts = append(w.Parts, wp)
	}

	var buf bytes.Buffer
	if err := bencode.NewEncoder(&buf).Encode(w); err != nil {
		return "", fmt.Errorf("pickle: encoding %s: %w", item.DisplayName(), err)
	}
	return base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}

func Unpickle(token string) (*mediaitem.MediaItem, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	var w wireItem
	if err := bencode.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if w.URL == "" && w.Name == "" {
		return nil, ErrCorrupt
	}

	item := &mediaitem.MediaItem{
		Name:        w.Name,
		URL:         w.URL,
		Type:        w.Type,
		Description: w.Description,
		Thumb:       w.Thumb,
		Icon:        w.Icon,
		Fanart:      w.Fanart,
		Date:        w.Date,
		GUID:        w.GUID,
		Complete:    w.Flags&flagComplete != 0,
		IsLive:      w.Flags&flagLive != 0,
		IsCloaked:   w.Flags&flagCloaked != 0,
		IsPaid:      w.Flags&flagPaid != 0,
		HTTPHeaders: emptyToNil(w.HTTPHeaders),
	}
	if w.Time != 0 {
		item.Time = time.Unix(w.Time, 0)
	}
	if item.GUID == "" {
		item.GUID = mediaitem.Guid(item.Name, item.URL)
	}
	for _, wp := range w.Parts {
		part := &mediaitem.MediaItemPart{Name: wp.Name, Properties: emptyToNil(wp.Properties)}
		for _, ws := range wp.Streams {
			part.Streams = append(part.Streams, &mediaitem.MediaStream{
				URL:        ws.URL,
				Bitrate:    ws.Bitrate,
				Properties: emptyToNil(ws.Properties),
			})
		}
		item.Parts = append(item.Parts, part)
	}
	return item, nil
}

func nonNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func emptyToNil(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	return m
}
