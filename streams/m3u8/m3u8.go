// Package m3u8 extracts playable variants from HLS playlists.
package m3u8

import (
	"context"
	"fmt"
	"sort"
	"strings"

	hls "github.com/grafov/m3u8"
	"github.com/op/go-logging"

	"github.com/Sopor/plugin.video.retrospect/mediaitem"
	"github.com/Sopor/plugin.video.retrospect/urihandler"
)

var log = logging.MustGetLogger("m3u8")

// Opener fetches a playlist body.
type Opener interface {
	Open(ctx context.Context, url string, headers map[string]string) (string, error)
}

// Stream is one variant with its bitrate in kbps.
type Stream struct {
	URL     string
	Bitrate int
}

// GetStreamsFromM3u8 returns every variant of the master playlist at url.
// A media playlist yields url itself with bitrate 0.
func GetStreamsFromM3u8(ctx context.Context, opener Opener, url string) ([]Stream, error) {
	data, err := opener.Open(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return ParseStreams(url, data)
}

func ParseStreams(url string, data string) ([]Stream, error) {
	playlist, listType, err := hls.DecodeFrom(strings.NewReader(data), false)
	if err != nil {
		return nil, fmt.Errorf("m3u8: decoding %s: %w", url, err)
	}

	switch listType {
	case hls.MASTER:
		master := playlist.(*hls.MasterPlaylist)
		var streams []Stream
		for _, v := range master.Variants {
			if v == nil || v.URI == "" || v.Iframe {
				continue
			}
			streams = append(streams, Stream{
				URL:     urihandler.MakeAbsolute(url, v.URI),
				Bitrate: int(v.Bandwidth / 1000),
			})
		}
		log.Debugf("Found %d variants in %s", len(streams), url)
		return streams, nil
	default:
		return []Stream{{URL: url}}, nil
	}
}

// SetInputStreamAddonInput marks stream for playback by inputstream.adaptive.
func SetInputStreamAddonInput(stream *mediaitem.MediaStream, headers map[string]string) *mediaitem.MediaStream {
	stream.SetProperty("inputstreamaddon", "inputstream.adaptive")
	stream.SetProperty("inputstream.adaptive.manifest_type", "hls")
	if len(headers) > 0 {
		var parts []string
		for k, v := range headers {
			parts = append(parts, k+"="+v)
		}
		sort.Strings(parts)
		stream.SetProperty("inputstream.adaptive.stream_headers", strings.Join(parts, "&"))
	}
	return stream
}
