package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sopor/plugin.video.retrospect/channel"
	"github.com/Sopor/plugin.video.retrospect/channelindex"
	"github.com/Sopor/plugin.video.retrospect/config"
	"github.com/Sopor/plugin.video.retrospect/favourites"
	"github.com/Sopor/plugin.video.retrospect/xbmc"
)

// Favourites lists the favourites of the channel in the request.
func Favourites(ctx *gin.Context) {
	guid, code := requestParams(ctx).Channel()
	info, err := channelindex.GetChannelInfo(guid, code)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	listFavourites(ctx, &info)
}

func AllFavourites(ctx *gin.Context) {
	listFavourites(ctx, nil)
}

func listFavourites(ctx *gin.Context, info *channel.ChannelInfo) {
	c := config.Get()
	favs, err := favourites.New(c.FavouritePath).List(info)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	items := make(xbmc.ListItems, 0, len(favs))
	for _, fav := range favs {
		favInfo, err := channelindex.GetChannelInfo(fav.ChannelGUID, fav.ChannelCode)
		if err != nil {
			log.Warningf("Skipping favourite %s of unknown channel: %s", fav.Name, err)
			continue
		}
		li, err := renderItem(c.Info.Id, &favInfo, fav.Item, true)
		if err != nil {
			abortWithError(ctx, err)
			return
		}
		li.Path = fav.ActionURL
		li.Label2 = fav.AddedAgo()
		if info == nil {
			li.Label = li.Label + " [" + favInfo.Name + "]"
		}
		items = append(items, li)
	}
	ctx.JSON(http.StatusOK, xbmc.NewView("episodes", items))
}
