package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"

	"github.com/Sopor/plugin.video.retrospect/config"
	"github.com/Sopor/plugin.video.retrospect/mediaitem"
)

var errNoStreams = errors.New("no playable streams found")

// PlayVideo resolves the streams of the item and hands the one matching the
// bitrate setting to the host: plain streams by redirect, streams needing
// properties or headers as a playable list item.
func PlayVideo(ctx *gin.Context) {
	ch, item, err := resolve(requestParams(ctx))
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	if item == nil {
		ctx.AbortWithError(http.StatusBadRequest, errors.New("no item given"))
		return
	}

	if !item.Complete || !item.HasMediaItemParts() {
		item, err = ch.ProcessVideoItem(ctx.Request.Context(), item)
		if err != nil {
			abortWithError(ctx, err)
			return
		}
	}
	if !item.HasMediaItemParts() {
		abortWithError(ctx, fmt.Errorf("%s: %w", item, errNoStreams))
		return
	}

	var part *mediaitem.MediaItemPart
	for _, p := range item.Parts {
		if len(p.Streams) > 0 {
			part = p
			break
		}
	}
	stream := part.GetMediaStreamForBitrate(config.Get().MaxStreamBitrate)
	log.Infof("Playing %s at %s", item.DisplayName(), bitrateLabel(stream.Bitrate))

	if len(stream.Properties) == 0 && len(item.HTTPHeaders) == 0 {
		ctx.Redirect(http.StatusFound, stream.URL)
		return
	}

	li := item.ToListItem()
	li.Path = withHeaders(stream.URL, item.HTTPHeaders)
	li.Label2 = bitrateLabel(stream.Bitrate)
	li.IsPlayable = true
	if li.Properties == nil {
		li.Properties = map[string]string{}
	}
	for k, v := range stream.Properties {
		li.Properties[k] = v
	}
	ctx.JSON(http.StatusOK, li)
}

func bitrateLabel(kbps int) string {
	if kbps <= 0 {
		return "unknown bitrate"
	}
	return humanize.SI(float64(kbps)*1000, "bps")
}

// withHeaders appends headers the way the host expects them: url|k=v&k=v
func withHeaders(streamURL string, headers map[string]string) string {
	if len(headers) == 0 {
		return streamURL
	}
	parts := make([]string, 0, len(headers))
	for k, v := range headers {
		parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(v))
	}
	sort.Strings(parts)
	return streamURL + "|" + strings.Join(parts, "&")
}
