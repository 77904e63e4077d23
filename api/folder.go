package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Sopor/plugin.video.retrospect/cache"
	"github.com/Sopor/plugin.video.retrospect/channel"
	"github.com/Sopor/plugin.video.retrospect/channelindex"
	"github.com/Sopor/plugin.video.retrospect/cloaker"
	"github.com/Sopor/plugin.video.retrospect/config"
	"github.com/Sopor/plugin.video.retrospect/language"
	"github.com/Sopor/plugin.video.retrospect/mediaitem"
	"github.com/Sopor/plugin.video.retrospect/params"
	"github.com/Sopor/plugin.video.retrospect/xbmc"
)

// resolve returns the channel and the item of the request. The item is nil
// when no pickle was passed.
func resolve(p *params.Params) (channel.Scraper, *mediaitem.MediaItem, error) {
	guid, code := p.Channel()
	if guid == "" {
		return nil, nil, fmt.Errorf("%w: no channel given", channel.ErrUnknownChannel)
	}
	ch, err := channelindex.GetChannel(guid, code)
	if err != nil {
		return nil, nil, err
	}
	item, err := p.Item()
	if err != nil {
		return nil, nil, err
	}
	return ch, item, nil
}

// ListFolder lists the folder item, or the main list of the channel when no
// item is given.
func ListFolder(ctx *gin.Context) {
	p := requestParams(ctx)
	ch, item, err := resolve(p)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	var items []*mediaitem.MediaItem
	if item == nil {
		log.Infof("Listing main list of %s", ch.Info())
		items, err = ch.MainList(ctx.Request.Context())
	} else {
		log.Infof("Listing %s of %s", item, ch.Info())
		items, err = ch.ProcessFolderList(ctx.Request.Context(), item)
	}
	if errors.Is(err, channel.ErrPartial) {
		// show what was found, but fetch again next time
		log.Warningf("Incomplete listing: %s", err)
		cache.Skip(ctx)
	} else if err != nil {
		abortWithError(ctx, err)
		return
	}

	listItems, err := renderItems(ch.Info(), items, false)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, xbmc.NewView("episodes", listItems))
}

// renderItems converts items to list items with their plugin paths and
// context menus. Cloaked items are dropped unless the user wants to see them.
func renderItems(info *channel.ChannelInfo, items []*mediaitem.MediaItem, inFavourites bool) (xbmc.ListItems, error) {
	c := config.Get()
	cloaked := cloaker.New(c.ProfilePath, info.GUID).Cloaked()

	listItems := make(xbmc.ListItems, 0, len(items))
	for _, item := range items {
		if cloaked[item.URL] {
			if !c.ShowCloakedItems {
				log.Debugf("Hiding cloaked item %s", item)
				continue
			}
			item.IsCloaked = true
		}

		li, err := renderItem(c.Info.Id, info, item, inFavourites)
		if err != nil {
			return nil, err
		}
		listItems = append(listItems, li)
	}
	return listItems, nil
}

func renderItem(addonID string, info *channel.ChannelInfo, item *mediaitem.MediaItem, inFavourites bool) (*xbmc.ListItem, error) {
	action := params.ActionListFolder
	if item.IsPlayable() {
		action = params.ActionPlayVideo
	}
	path, err := params.ActionURL(addonID, info, action, item)
	if err != nil {
		return nil, err
	}

	li := item.ToListItem()
	li.Path = path
	li.Thumbnail = artPath(li.Thumbnail)
	li.Icon = artPath(li.Icon)
	if li.Art != nil {
		li.Art.Thumbnail = li.Thumbnail
		li.Art.Icon = li.Icon
	}
	li.ContextMenu = itemContextMenu(addonID, info, item, inFavourites)
	return li, nil
}

func itemContextMenu(addonID string, info *channel.ChannelInfo, item *mediaitem.MediaItem, inFavourites bool) [][]string {
	favourite := struct {
		label  int
		action string
	}{language.AddToFavourites, params.ActionAddFavourite}
	if inFavourites {
		favourite.label, favourite.action = language.RemoveFromFavourites, params.ActionRemoveFavourite
	}
	cloak := language.CloakItem
	if item.IsCloaked {
		cloak = language.UnCloakItem
	}

	entries := []struct {
		label  int
		action string
		item   *mediaitem.MediaItem
	}{
		{favourite.label, favourite.action, item},
		{cloak, params.ActionToggleCloak, item},
		{language.RefreshListId, params.ActionRefresh, nil},
	}

	menu := make([][]string, 0, len(entries))
	for _, e := range entries {
		u, err := params.ActionURL(addonID, info, e.action, e.item)
		if err != nil {
			log.Warningf("Cannot build %s menu for %s: %s", e.action, item, err)
			continue
		}
		menu = append(menu, xbmc.ContextMenuEntry(language.GetLocalizedString(e.label), xbmc.RunPlugin(u)))
	}
	return menu
}

// artPath resolves artwork shipped with the add-on. Urls are left alone.
func artPath(name string) string {
	if name == "" || strings.Contains(name, "://") {
		return name
	}
	return config.AddonResource("media", name)
}
