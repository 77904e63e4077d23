package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sopor/plugin.video.retrospect/cache"
	"github.com/Sopor/plugin.video.retrospect/config"
	"github.com/Sopor/plugin.video.retrospect/language"
	"github.com/Sopor/plugin.video.retrospect/menu"
	"github.com/Sopor/plugin.video.retrospect/params"
	"github.com/Sopor/plugin.video.retrospect/xbmc"
)

// Menu runs a context-menu action. Listings may change afterwards, so the
// page cache is flushed.
func Menu(store cache.CacheStore) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		p := requestParams(ctx)
		action := p.Action()
		log.Infof("Running menu action %s", action)

		m, err := menu.New(p)
		if err != nil {
			abortWithError(ctx, err)
			return
		}
		if err := m.Handle(action); err != nil {
			abortWithError(ctx, err)
			return
		}
		if action != params.ActionShowSettings {
			if err := store.Flush(); err != nil {
				log.Warningf("Cannot flush cache: %s", err)
			}
		}
		ctx.String(http.StatusOK, "")
	}
}

func ClearCache(store cache.CacheStore) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if err := store.Flush(); err != nil {
			abortWithError(ctx, err)
			return
		}
		xbmc.Notify(config.AppName, language.GetLocalizedString(language.CacheCleared), config.AddonIcon())
		ctx.String(http.StatusOK, "")
	}
}

// Reload rereads the add-on settings, for instance after the settings dialog
// was closed.
func Reload(ctx *gin.Context) {
	config.Reload()
	ctx.String(http.StatusOK, "")
}
