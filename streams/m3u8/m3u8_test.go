package m3u8

import (
	"context"
	"errors"
	"testing"

	"github.com/Sopor/plugin.video.retrospect/mediaitem"
)

const master = `#EXTM3U
#EXT-X-STREAM-INF:BANDWIDTH=1200000,RESOLUTION=1280x720
720/index.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=400000,RESOLUTION=640x360
https://cdn.example.com/360/index.m3u8
`

const media = `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-TARGETDURATION:10
#EXT-X-MEDIA-SEQUENCE:0
#EXTINF:10.0,
segment0.ts
#EXT-X-ENDLIST
`

type opener map[string]string

func (o opener) Open(ctx context.Context, url string, headers map[string]string) (string, error) {
	if data, ok := o[url]; ok {
		return data, nil
	}
	return "", errors.New("not found")
}

func TestMasterPlaylist(t *testing.T) {
	streams, err := GetStreamsFromM3u8(context.Background(), opener{"https://live.example.com/tv/index.m3u8": master}, "https://live.example.com/tv/index.m3u8")
	if err != nil {
		t.Fatal(err)
	}
	if len(streams) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(streams))
	}
	if streams[0].URL != "https://live.example.com/tv/720/index.m3u8" || streams[0].Bitrate != 1200 {
		t.Errorf("unexpected first variant %+v", streams[0])
	}
	if streams[1].URL != "https://cdn.example.com/360/index.m3u8" || streams[1].Bitrate != 400 {
		t.Errorf("unexpected second variant %+v", streams[1])
	}
}

func TestMediaPlaylist(t *testing.T) {
	streams, err := ParseStreams("https://x/a.m3u8", media)
	if err != nil {
		t.Fatal(err)
	}
	if len(streams) != 1 || streams[0].URL != "https://x/a.m3u8" || streams[0].Bitrate != 0 {
		t.Errorf("expected the playlist itself, got %+v", streams)
	}
}

func TestFetchError(t *testing.T) {
	if _, err := GetStreamsFromM3u8(context.Background(), opener{}, "https://x/missing.m3u8"); err == nil {
		t.Error("expected fetch error")
	}
}

func TestSetInputStreamAddonInput(t *testing.T) {
	stream := &mediaitem.MediaStream{URL: "https://x/a.m3u8"}
	SetInputStreamAddonInput(stream, map[string]string{"User-Agent": "Kodi", "Cookie": "a=b"})
	if stream.Properties["inputstreamaddon"] != "inputstream.adaptive" || stream.Properties["inputstream.adaptive.manifest_type"] != "hls" {
		t.Errorf("unexpected properties %v", stream.Properties)
	}
	if got := stream.Properties["inputstream.adaptive.stream_headers"]; got != "Cookie=a=b&User-Agent=Kodi" {
		t.Errorf("unexpected headers %q", got)
	}

	plain := SetInputStreamAddonInput(&mediaitem.MediaStream{}, nil)
	if _, ok := plain.Properties["inputstream.adaptive.stream_headers"]; ok {
		t.Error("no headers expected")
	}
}
