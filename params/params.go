// Package params parses and builds the plugin:// urls the host hands to the
// add-on.
package params

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Sopor/plugin.video.retrospect/channel"
	"github.com/Sopor/plugin.video.retrospect/mediaitem"
	"github.com/Sopor/plugin.video.retrospect/pickle"
)

const (
	KeywordAction      = "action"
	KeywordChannel     = "channel"
	KeywordChannelCode = "channelcode"
	KeywordPickle      = "pickle"

	ActionListFolder    = "listfolder"
	ActionPlayVideo     = "playvideo"
	ActionFavourites    = "favourites"
	ActionAllFavourites = "allfavourites"

	ActionHideChannel     = "hidechannel"
	ActionSelectChannels  = "selectchannels"
	ActionShowSettings    = "showsettings"
	ActionChannelSettings = "channelsettings"
	ActionShowFavourites  = "showfavourites"
	ActionShowAll         = "showallfavourites"
	ActionAddFavourite    = "addfavourite"
	ActionRemoveFavourite = "removefavourite"
	ActionRefresh         = "refresh"
	ActionToggleCloak     = "togglecloak"
)

// MenuActions are handled by the menu package.
var MenuActions = []string{
	ActionHideChannel,
	ActionSelectChannels,
	ActionShowSettings,
	ActionChannelSettings,
	ActionShowFavourites,
	ActionShowAll,
	ActionAddFavourite,
	ActionRemoveFavourite,
	ActionRefresh,
	ActionToggleCloak,
}

func IsMenuAction(action string) bool {
	for _, a := range MenuActions {
		if a == action {
			return true
		}
	}
	return false
}

type Params struct {
	// Name is the part before the query, usually plugin://<addon id>/
	Name   string
	Values map[string]string
}

// Parse splits path into its name and query parameters. Only the first
// value of a repeated parameter is kept.
func Parse(path string) (*Params, error) {
	name, query := path, ""
	if i := strings.Index(path, "?"); i >= 0 {
		name, query = path[:i], path[i+1:]
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return nil, fmt.Errorf("params: %s: %w", path, err)
	}

	p := &Params{Name: name, Values: make(map[string]string, len(values))}
	for k, v := range values {
		if len(v) > 0 {
			p.Values[k] = v[0]
		}
	}
	return p, nil
}

// FromQuery wraps already decoded query values.
func FromQuery(name string, values url.Values) *Params {
	p := &Params{Name: name, Values: make(map[string]string, len(values))}
	for k := range values {
		p.Values[k] = values.Get(k)
	}
	return p
}

func (p *Params) Get(key string) string {
	return p.Values[key]
}

func (p *Params) Has(key string) bool {
	_, ok := p.Values[key]
	return ok
}

func (p *Params) Action() string {
	return p.Values[KeywordAction]
}

func (p *Params) Channel() (guid string, code string) {
	return p.Values[KeywordChannel], p.Values[KeywordChannelCode]
}

// Item unpickles the item parameter. It returns nil without error when the
// parameter is absent.
func (p *Params) Item() (*mediaitem.MediaItem, error) {
	token, ok := p.Values[KeywordPickle]
	if !ok {
		return nil, nil
	}
	return pickle.Unpickle(token)
}

func (p *Params) String() string {
	return fmt.Sprintf("%s %v", p.Name, p.Values)
}

// ActionURL builds the plugin url for action on ch and item. Both ch and
// item may be nil.
func ActionURL(addonID string, ch *channel.ChannelInfo, action string, item *mediaitem.MediaItem) (string, error) {
	values := url.Values{}
	values.Set(KeywordAction, action)
	if ch != nil {
		values.Set(KeywordChannel, ch.GUID)
		if ch.Code != "" {
			values.Set(KeywordChannelCode, ch.Code)
		}
	}
	if item != nil {
		token, err := pickle.Pickle(item)
		if err != nil {
			return "", err
		}
		values.Set(KeywordPickle, token)
	}
	return fmt.Sprintf("plugin://%s/?%s", addonID, values.Encode()), nil
}
