// Package menu handles the context-menu actions of the add-on. Every action
// persists its change and tells the host how to update the current view.
package menu

import (
	"fmt"

	"github.com/op/go-logging"

	"github.com/Sopor/plugin.video.retrospect/channel"
	"github.com/Sopor/plugin.video.retrospect/channelindex"
	"github.com/Sopor/plugin.video.retrospect/cloaker"
	"github.com/Sopor/plugin.video.retrospect/config"
	"github.com/Sopor/plugin.video.retrospect/favourites"
	"github.com/Sopor/plugin.video.retrospect/language"
	"github.com/Sopor/plugin.video.retrospect/locker"
	"github.com/Sopor/plugin.video.retrospect/mediaitem"
	"github.com/Sopor/plugin.video.retrospect/params"
	"github.com/Sopor/plugin.video.retrospect/xbmc"
)

var log = logging.MustGetLogger("menu")

type Menu struct {
	params  *params.Params
	channel *channel.ChannelInfo
	item    *mediaitem.MediaItem
}

// New resolves the channel and item the action applies to.
func New(p *params.Params) (*Menu, error) {
	m := &Menu{params: p}
	log.Debugf("Plugin Params: %s", p)

	if guid, code := p.Channel(); guid != "" {
		log.Debugf("Fetching channel %s - %s", guid, code)
		info, err := channelindex.GetChannelInfo(guid, code)
		if err != nil {
			return nil, err
		}
		m.channel = &info
	}

	item, err := p.Item()
	if err != nil {
		return nil, err
	}
	m.item = item
	return m, nil
}

// Handle runs action and logs any failure.
func (m *Menu) Handle(action string) error {
	err := m.dispatch(action)
	if err != nil {
		log.Criticalf("Error in menu handling: %s", err)
	}
	return err
}

func (m *Menu) dispatch(action string) error {
	switch action {
	case params.ActionHideChannel:
		return m.HideChannel()
	case params.ActionSelectChannels:
		return m.SelectChannels()
	case params.ActionShowSettings:
		return m.ShowSettings()
	case params.ActionChannelSettings:
		return m.ChannelSettings()
	case params.ActionShowFavourites:
		return m.Favorites(false)
	case params.ActionShowAll:
		return m.Favorites(true)
	case params.ActionAddFavourite:
		return m.AddFavorite()
	case params.ActionRemoveFavourite:
		return m.RemoveFavorite()
	case params.ActionRefresh:
		return m.Refresh()
	case params.ActionToggleCloak:
		return m.ToggleCloak()
	}
	return fmt.Errorf("menu: unknown action %q", action)
}

func (m *Menu) needChannel() error {
	if m.channel == nil {
		return fmt.Errorf("menu: no channel given")
	}
	return nil
}

func (m *Menu) needItem() error {
	if m.item == nil {
		return fmt.Errorf("menu: no item given")
	}
	return nil
}

func (m *Menu) HideChannel() error {
	if err := m.needChannel(); err != nil {
		return err
	}
	log.Infof("Hiding channel: %s", m.channel)
	if err := channelindex.SetChannelVisibility(*m.channel, false); err != nil {
		return err
	}
	return m.Refresh()
}

func (m *Menu) SelectChannels() error {
	valid := channelindex.GetChannels(true)

	var names []string
	var selected []int
	for i, c := range valid {
		names = append(names, channel.CleanText(c.Name))
		if c.Enabled {
			selected = append(selected, i)
		}
	}
	log.Debugf("Currently selected channels: %v", selected)

	chosen := xbmc.MultiSelect(language.GetLocalizedString(language.SelectChannels), names, selected)
	if chosen == nil {
		log.Debug("Channel selection cancelled")
		return nil
	}
	log.Debugf("New selected channels:       %v", chosen)

	wasSelected := map[int]bool{}
	for _, i := range selected {
		wasSelected[i] = true
	}
	isSelected := map[int]bool{}
	for _, i := range chosen {
		isSelected[i] = true
	}

	for _, i := range selected {
		if !isSelected[i] {
			log.Infof("Hiding channel: %s", &valid[i])
			if err := channelindex.SetChannelVisibility(valid[i], false); err != nil {
				return err
			}
		}
	}
	for _, i := range chosen {
		if i < 0 || i >= len(valid) || wasSelected[i] {
			continue
		}
		log.Infof("Showing channel: %s", &valid[i])
		if err := channelindex.SetChannelVisibility(valid[i], true); err != nil {
			return err
		}
	}
	return m.Refresh()
}

func (m *Menu) ShowSettings() error {
	return xbmc.ExecuteBuiltin(fmt.Sprintf("Addon.OpenSettings(%s)", config.Get().Info.Id))
}

func (m *Menu) ChannelSettings() error {
	if err := m.needChannel(); err != nil {
		return err
	}
	log.Infof("Showing settings for %s", m.channel)
	return m.ShowSettings()
}

// Favorites opens the favourites of the channel, or of all channels.
func (m *Menu) Favorites(all bool) error {
	var ch *channel.ChannelInfo
	action := params.ActionAllFavourites
	if !all {
		if err := m.needChannel(); err != nil {
			return err
		}
		ch, action = m.channel, params.ActionFavourites
	}

	u, err := params.ActionURL(config.Get().Info.Id, ch, action, nil)
	if err != nil {
		return err
	}
	return xbmc.ContainerUpdate(u)
}

func (m *Menu) AddFavorite() error {
	if err := m.needChannel(); err != nil {
		return err
	}
	if err := m.needItem(); err != nil {
		return err
	}

	c := config.Get()
	return locker.WithDialog(c.ProfilePath, func() error {
		log.Debugf("Adding favourite: %s", m.item)
		action := params.ActionListFolder
		if m.item.IsPlayable() {
			action = params.ActionPlayVideo
		}
		u, err := params.ActionURL(c.Info.Id, m.channel, action, m.item)
		if err != nil {
			return err
		}
		if err := favourites.New(c.FavouritePath).Add(m.channel, m.item, u); err != nil {
			return err
		}
		return m.Favorites(false)
	})
}

func (m *Menu) RemoveFavorite() error {
	if err := m.needItem(); err != nil {
		return err
	}

	c := config.Get()
	return locker.WithDialog(c.ProfilePath, func() error {
		log.Debugf("Removing favourite: %s", m.item)
		if err := favourites.New(c.FavouritePath).Remove(m.item); err != nil {
			return err
		}
		return m.Refresh()
	})
}

func (m *Menu) Refresh() error {
	return xbmc.ContainerRefresh()
}

func (m *Menu) ToggleCloak() error {
	if err := m.needChannel(); err != nil {
		return err
	}
	if err := m.needItem(); err != nil {
		return err
	}

	c := config.Get()
	log.Infof("Cloaking current item: %s", m.item)
	ck := cloaker.New(c.ProfilePath, m.channel.GUID)
	if ck.IsCloaked(m.item.URL) {
		if err := ck.UnCloak(m.item.URL); err != nil {
			return err
		}
		return m.Refresh()
	}

	firstTime, err := ck.Cloak(m.item.URL)
	if err != nil {
		return err
	}
	if firstTime && !c.HideFirstTimeMessages {
		xbmc.Dialog(language.GetLocalizedString(language.CloakFirstTime),
			language.GetLocalizedString(language.CloakMessage))
	}
	return m.Refresh()
}
