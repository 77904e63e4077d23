package mediaitem

import (
	"github.com/Sopor/plugin.video.retrospect/xbmc"
)

// ToListItem converts the item to its host representation. The caller sets
// Path and ContextMenu.
func (m *MediaItem) ToListItem() *xbmc.ListItem {
	label := m.DisplayName()
	if m.IsCloaked {
		label = "[COLOR gray]" + label + "[/COLOR]"
	}

	item := &xbmc.ListItem{
		Label:      label,
		Label2:     m.Date,
		Icon:       m.Icon,
		Thumbnail:  m.Thumb,
		IsPlayable: m.IsPlayable(),
		Info: &xbmc.ListItemInfo{
			Title:     label,
			Plot:      m.Description,
			SortTitle: m.Name,
		},
		Art: &xbmc.ListItemArt{
			Thumbnail: m.Thumb,
			FanArt:    m.Fanart,
			Icon:      m.Icon,
		},
	}
	if !m.Time.IsZero() {
		item.Info.Date = m.Time.Format("02.01.2006")
		item.Info.Aired = m.Time.Format("2006-01-02")
		item.Info.Year = m.Time.Year()
	}
	if m.IsLive {
		item.Properties = map[string]string{"IsLive": "true"}
	}
	return item
}
