// Package language resolves localized strings through the host with English
// fallbacks for ids the host does not know.
package language

import (
	"github.com/Sopor/plugin.video.retrospect/xbmc"
)

const (
	LiveStreamTitleId      = 30901
	CloakFirstTime         = 30902
	CloakMessage           = 30903
	AddToFavourites        = 30904
	RemoveFromFavourites   = 30905
	CloakItem              = 30906
	UnCloakItem            = 30907
	RefreshListId          = 30908
	HideChannel            = 30909
	SelectChannels         = 30910
	ChannelSettings        = 30911
	FavouritesId           = 30912
	AllFavouritesId        = 30913
	OperationInProgress    = 30914
	OperationInProgressMsg = 30915
	CacheCleared           = 30916
)

var fallback = map[int]string{
	LiveStreamTitleId:      "Live streams",
	CloakFirstTime:         "Cloaking items",
	CloakMessage:           "Cloaked items are hidden from the lists. You can show them again in the add-on settings.",
	AddToFavourites:        "Add to Retrospect favourites",
	RemoveFromFavourites:   "Remove from Retrospect favourites",
	CloakItem:              "Cloak item",
	UnCloakItem:            "Uncloak item",
	RefreshListId:          "Refresh list",
	HideChannel:            "Hide channel",
	SelectChannels:         "Select enabled channels",
	ChannelSettings:        "Channel settings",
	FavouritesId:           "Favourites",
	AllFavouritesId:        "All favourites",
	OperationInProgress:    "Busy",
	OperationInProgressMsg: "Another operation is still in progress. Please try again later.",
	CacheCleared:           "Cache cleared",
}

func GetLocalizedString(id int) string {
	if s := xbmc.GetLocalizedString(id); s != "" {
		return s
	}
	return fallback[id]
}
