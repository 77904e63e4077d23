// Package channelindex is the register of every channel the add-on ships.
package channelindex

import (
	"fmt"
	"sync"

	"github.com/op/go-logging"

	"github.com/Sopor/plugin.video.retrospect/channel"
	"github.com/Sopor/plugin.video.retrospect/config"
	"github.com/Sopor/plugin.video.retrospect/urihandler"
)

var log = logging.MustGetLogger("channelindex")

// Factory builds the scraper for one channel.
type Factory func(info channel.ChannelInfo, fetcher channel.Fetcher) (channel.Scraper, error)

type entry struct {
	info    channel.ChannelInfo
	factory Factory
}

var (
	mu       sync.RWMutex
	channels []entry
	fetcher  channel.Fetcher
)

// Register adds channels served by factory. Channels keep registration order.
func Register(factory Factory, infos ...channel.ChannelInfo) {
	mu.Lock()
	defer mu.Unlock()
	for _, info := range infos {
		log.Debugf("Registering %s", &info)
		channels = append(channels, entry{info: info, factory: factory})
	}
}

// SetFetcher installs the fetcher handed to channels built from now on and
// returns the previous one.
func SetFetcher(f channel.Fetcher) channel.Fetcher {
	mu.Lock()
	defer mu.Unlock()
	previous := fetcher
	fetcher = f
	return previous
}

func currentFetcher() (channel.Fetcher, error) {
	mu.RLock()
	f := fetcher
	mu.RUnlock()
	if f != nil {
		return f, nil
	}

	h, err := urihandler.FromConfig(config.Get())
	if err != nil {
		return nil, err
	}
	mu.Lock()
	defer mu.Unlock()
	if fetcher == nil {
		fetcher = h
	} else {
		h.Close()
	}
	return fetcher, nil
}

// GetChannels returns the registered channels. Unless includeDisabled is set,
// channels hidden by the user are left out. Enabled reflects visibility.
func GetChannels(includeDisabled bool) []channel.ChannelInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]channel.ChannelInfo, 0, len(channels))
	for _, e := range channels {
		info := e.info
		info.Enabled = info.Enabled && config.IsChannelVisible(info.GUID, info.Code)
		if !info.Enabled && !includeDisabled {
			continue
		}
		result = append(result, info)
	}
	log.Debugf("Found %d channels (includeDisabled=%t)", len(result), includeDisabled)
	return result
}

// GetChannelInfo returns the registered info for guid and code.
func GetChannelInfo(guid string, code string) (channel.ChannelInfo, error) {
	e, err := find(guid, code)
	if err != nil {
		return channel.ChannelInfo{}, err
	}
	return e.info, nil
}

// GetChannel builds the channel registered for guid and code.
func GetChannel(guid string, code string) (channel.Scraper, error) {
	e, err := find(guid, code)
	if err != nil {
		return nil, err
	}
	f, err := currentFetcher()
	if err != nil {
		return nil, err
	}
	return e.factory(e.info, f)
}

func find(guid string, code string) (entry, error) {
	mu.RLock()
	defer mu.RUnlock()
	for _, e := range channels {
		if e.info.GUID == guid && e.info.Code == code {
			return e, nil
		}
	}
	return entry{}, fmt.Errorf("%w: %s (%s)", channel.ErrUnknownChannel, guid, code)
}

func SetChannelVisibility(info channel.ChannelInfo, visible bool) error {
	log.Infof("Setting visibility of %s to %t", &info, visible)
	return config.SetChannelVisibility(info.GUID, info.Code, visible)
}
