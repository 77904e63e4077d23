package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sopor/plugin.video.retrospect/channel"
	"github.com/Sopor/plugin.video.retrospect/channelindex"
	"github.com/Sopor/plugin.video.retrospect/config"
	"github.com/Sopor/plugin.video.retrospect/language"
	"github.com/Sopor/plugin.video.retrospect/params"
	"github.com/Sopor/plugin.video.retrospect/xbmc"
)

// ChannelList shows every visible channel.
func ChannelList(ctx *gin.Context) {
	addonID := config.Get().Info.Id
	channels := channelindex.GetChannels(false)

	items := make(xbmc.ListItems, 0, len(channels)+1)
	for i := range channels {
		info := &channels[i]
		path, err := params.ActionURL(addonID, info, params.ActionListFolder, nil)
		if err != nil {
			abortWithError(ctx, err)
			return
		}
		icon := artPath(info.Icon)
		items = append(items, &xbmc.ListItem{
			Label:       channel.CleanText(info.Name),
			Label2:      info.Description,
			Icon:        icon,
			Thumbnail:   icon,
			Path:        path,
			Info:        &xbmc.ListItemInfo{Title: info.Name, Plot: info.Description},
			ContextMenu: channelContextMenu(addonID, info),
		})
	}

	allFavourites, _ := params.ActionURL(addonID, nil, params.ActionAllFavourites, nil)
	items = append(items, &xbmc.ListItem{
		Label: language.GetLocalizedString(language.AllFavouritesId),
		Icon:  config.AddonIcon(),
		Path:  allFavourites,
	})

	ctx.JSON(http.StatusOK, xbmc.NewView("", items))
}

func channelContextMenu(addonID string, info *channel.ChannelInfo) [][]string {
	entries := []struct {
		label  int
		action string
		ch     *channel.ChannelInfo
	}{
		{language.HideChannel, params.ActionHideChannel, info},
		{language.SelectChannels, params.ActionSelectChannels, nil},
		{language.ChannelSettings, params.ActionChannelSettings, info},
		{language.FavouritesId, params.ActionShowFavourites, info},
		{language.AllFavouritesId, params.ActionShowAll, nil},
	}

	menu := make([][]string, 0, len(entries))
	for _, e := range entries {
		u, err := params.ActionURL(addonID, e.ch, e.action, nil)
		if err != nil {
			continue
		}
		menu = append(menu, xbmc.ContextMenuEntry(language.GetLocalizedString(e.label), xbmc.RunPlugin(u)))
	}
	return menu
}
