package channelindex

import (
	"github.com/Sopor/plugin.video.retrospect/channel"
	"github.com/Sopor/plugin.video.retrospect/channels/rpoapp"
)

func init() {
	Register(func(info channel.ChannelInfo, f channel.Fetcher) (channel.Scraper, error) {
		c, err := rpoapp.New(info, f)
		if err != nil {
			return nil, err
		}
		return c, nil
	}, rpoapp.Channels...)
}
