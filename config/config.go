package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/op/go-logging"

	"github.com/Sopor/plugin.video.retrospect/broadcast"
	"github.com/Sopor/plugin.video.retrospect/xbmc"
)

var log = logging.MustGetLogger("config")

type Configuration struct {
	Info        *xbmc.AddonInfo
	Language    string
	ProfilePath string

	FavouritePath string
	CachePath     string
	LogFile       string
	LogLevel      int

	UseAdaptiveStream     bool
	ShowCloakedItems      bool
	HideFirstTimeMessages bool
	MaxStreamBitrate      int
	ListCacheMinutes      int

	ProxyEnabled  bool
	ProxyType     string
	ProxyHost     string
	ProxyPort     int
	ProxyLogin    string
	ProxyPassword string
}

const (
	ListenPort  = 65251
	AppName     = "Retrospect"
	logFileName = "retrospect.log"
)

var (
	config = &Configuration{Info: &xbmc.AddonInfo{}}
	lock   = sync.RWMutex{}

	// Changes receives every configuration installed by Reload or Set.
	Changes = broadcast.NewBroadcaster()
)

func Get() *Configuration {
	lock.RLock()
	defer lock.RUnlock()
	return config
}

// Set installs c as the current configuration, filling in derived paths.
func Set(c *Configuration) *Configuration {
	if c.Info == nil {
		c.Info = &xbmc.AddonInfo{}
	}
	if c.ProfilePath == "" {
		c.ProfilePath = c.Info.Profile
	}
	if c.FavouritePath == "" {
		c.FavouritePath = filepath.Join(c.ProfilePath, "favourites")
	}
	if c.CachePath == "" {
		c.CachePath = filepath.Join(c.ProfilePath, "cache")
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.ProfilePath, logFileName)
	}

	lock.Lock()
	config = c
	lock.Unlock()

	Changes.Broadcast(c)
	return c
}

func Reload() *Configuration {
	log.Info("Reloading configuration...")

	info := xbmc.GetAddonInfo()
	info.Path = xbmc.TranslatePath(info.Path)
	info.Profile = xbmc.TranslatePath(info.Profile)

	proxyType := strings.ToLower(xbmc.GetSettingString("proxy_type"))
	if proxyType == "" {
		proxyType = "http"
	}

	newConfig := Configuration{
		Info:        info,
		Language:    xbmc.GetLanguageISO_639_1(),
		ProfilePath: info.Profile,
		LogLevel:    xbmc.GetSettingInt("log_level"),

		UseAdaptiveStream:     xbmc.GetSettingBool("use_adaptive_addon"),
		ShowCloakedItems:      xbmc.GetSettingBool("show_cloaked_items"),
		HideFirstTimeMessages: xbmc.GetSettingBool("hide_first_time_message"),
		MaxStreamBitrate:      xbmc.GetSettingInt("stream_bitrate"),
		ListCacheMinutes:      xbmc.GetSettingInt("list_cache_minutes"),

		ProxyEnabled:  xbmc.GetSettingBool("proxy_enabled"),
		ProxyType:     proxyType,
		ProxyHost:     xbmc.GetSettingString("proxy_host"),
		ProxyPort:     xbmc.GetSettingInt("proxy_port"),
		ProxyLogin:    xbmc.GetSettingString("proxy_login"),
		ProxyPassword: xbmc.GetSettingString("proxy_password"),
	}

	return Set(&newConfig)
}

// ChannelVisibleSetting is the add-on setting holding the visibility of a channel.
func ChannelVisibleSetting(guid string, code string) string {
	if code == "" {
		return "channel_" + guid + "_visible"
	}
	return "channel_" + guid + "_" + code + "_visible"
}

// IsChannelVisible treats a missing setting as visible.
func IsChannelVisible(guid string, code string) bool {
	return xbmc.GetSettingString(ChannelVisibleSetting(guid, code)) != "false"
}

func SetChannelVisibility(guid string, code string, visible bool) error {
	value := "false"
	if visible {
		value = "true"
	}
	return xbmc.SetSetting(ChannelVisibleSetting(guid, code), value)
}

// EnsureDirs creates the profile directories used by the add-on.
func EnsureDirs() error {
	c := Get()
	for _, dir := range []string{c.ProfilePath, c.FavouritePath, c.CachePath} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

func AddonIcon() string {
	return filepath.Join(Get().Info.Path, "icon.png")
}

func AddonResource(args ...string) string {
	return filepath.Join(Get().Info.Path, "resources", filepath.Join(args...))
}
