package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/op/go-logging"

	"github.com/Sopor/plugin.video.retrospect/cache"
	"github.com/Sopor/plugin.video.retrospect/channel"
	"github.com/Sopor/plugin.video.retrospect/config"
	"github.com/Sopor/plugin.video.retrospect/params"
	"github.com/Sopor/plugin.video.retrospect/pickle"
)

var log = logging.MustGetLogger("api")

const DefaultListCacheTime = 15 * time.Minute

// listCacheTime caches channel listings only. Playback, favourites and menu
// actions always run.
func listCacheTime(ctx *gin.Context) time.Duration {
	switch ctx.FullPath() {
	case "/listfolder", "/channel/:guid", "/channel/:guid/:code":
	case "/":
		if ctx.Query(params.KeywordAction) != params.ActionListFolder {
			return 0
		}
	default:
		return 0
	}

	minutes := config.Get().ListCacheMinutes
	if minutes < 0 {
		return 0
	} else if minutes == 0 {
		return DefaultListCacheTime
	}
	return time.Duration(minutes) * time.Minute
}

func Routes(store cache.CacheStore) *gin.Engine {
	r := gin.Default()

	r.Use(cache.Cache(store, listCacheTime))

	r.GET("/", Index(store))
	r.GET("/channel/:guid", ListFolder)
	r.GET("/channel/:guid/:code", ListFolder)
	r.GET("/listfolder", ListFolder)
	r.GET("/playvideo", PlayVideo)
	r.GET("/favourites", Favourites)
	r.GET("/allfavourites", AllFavourites)
	r.GET("/menu/:action", Menu(store))

	cmd := r.Group("/cmd")
	{
		cmd.GET("/clear_cache", ClearCache(store))
		cmd.GET("/reload", Reload)
	}

	return r
}

// Index lists the channels, or dispatches on the action parameter of the
// plugin url.
func Index(store cache.CacheStore) gin.HandlerFunc {
	menu := Menu(store)
	return func(ctx *gin.Context) {
		action := ctx.Query(params.KeywordAction)
		switch {
		case action == "":
			ChannelList(ctx)
		case action == params.ActionListFolder:
			ListFolder(ctx)
		case action == params.ActionPlayVideo:
			PlayVideo(ctx)
		case action == params.ActionFavourites:
			Favourites(ctx)
		case action == params.ActionAllFavourites:
			AllFavourites(ctx)
		case params.IsMenuAction(action):
			menu(ctx)
		default:
			ctx.AbortWithError(http.StatusNotFound, errors.New("unknown action "+action))
		}
	}
}

func requestParams(ctx *gin.Context) *params.Params {
	p := params.FromQuery(ctx.Request.URL.Path, ctx.Request.URL.Query())
	if guid := ctx.Param("guid"); guid != "" {
		p.Values[params.KeywordChannel] = guid
		p.Values[params.KeywordChannelCode] = ctx.Param("code")
	}
	if action := ctx.Param("action"); action != "" {
		p.Values[params.KeywordAction] = action
	}
	return p
}

func abortWithError(ctx *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, channel.ErrUnknownChannel):
		status = http.StatusNotFound
	case errors.Is(err, pickle.ErrCorrupt):
		status = http.StatusBadRequest
	}
	log.Errorf("%s: %s", ctx.Request.URL.Path, err)
	ctx.AbortWithError(status, err)
}
