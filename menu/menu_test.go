package menu

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Sopor/plugin.video.retrospect/channels/rpoapp"
	"github.com/Sopor/plugin.video.retrospect/cloaker"
	"github.com/Sopor/plugin.video.retrospect/config"
	"github.com/Sopor/plugin.video.retrospect/favourites"
	"github.com/Sopor/plugin.video.retrospect/mediaitem"
	"github.com/Sopor/plugin.video.retrospect/params"
	"github.com/Sopor/plugin.video.retrospect/xbmc"
	"github.com/Sopor/plugin.video.retrospect/xbmc/xbmctest"
)

const addonID = "plugin.video.retrospect"

func setup(t *testing.T) *xbmctest.Host {
	t.Helper()
	dir, err := ioutil.TempDir("", "menu")
	if err != nil {
		t.Fatal(err)
	}
	host := xbmctest.NewHost()
	restore := host.Install()
	config.Set(&config.Configuration{
		Info:        &xbmc.AddonInfo{Id: addonID},
		ProfilePath: dir,
	})
	t.Cleanup(func() {
		restore()
		config.Set(&config.Configuration{})
		os.RemoveAll(dir)
	})
	return host
}

func newMenu(t *testing.T, action string, code string, item *mediaitem.MediaItem) *Menu {
	t.Helper()
	info := rpoapp.Channels[0]
	for _, c := range rpoapp.Channels {
		if c.Code == code {
			info = c
		}
	}
	var u string
	var err error
	if code == "" {
		u, err = params.ActionURL(addonID, nil, action, item)
	} else {
		u, err = params.ActionURL(addonID, &info, action, item)
	}
	if err != nil {
		t.Fatal(err)
	}
	p, err := params.Parse(u)
	if err != nil {
		t.Fatal(err)
	}
	m, err := New(p)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestHideChannel(t *testing.T) {
	host := setup(t)
	m := newMenu(t, params.ActionHideChannel, rpoapp.CodeRTVUtrecht, nil)

	if err := m.Handle(params.ActionHideChannel); err != nil {
		t.Fatal(err)
	}
	if host.Settings["channel_"+rpoapp.GUID+"_rtvutrecht_visible"] != "false" {
		t.Errorf("channel not hidden: %v", host.Settings)
	}
	if b := host.Builtins(); len(b) != 1 || b[0] != "XBMC.Container.Refresh()" {
		t.Errorf("expected refresh, got %v", b)
	}
}

func TestSelectChannels(t *testing.T) {
	host := setup(t)
	host.Settings["channel_"+rpoapp.GUID+"_rtvutrecht_visible"] = "false"
	// keep omroepzeeland unchecked, check rtvutrecht
	host.Replies["Dialog_MultiSelect"] = []int{1}

	m := newMenu(t, params.ActionSelectChannels, "", nil)
	if err := m.Handle(params.ActionSelectChannels); err != nil {
		t.Fatal(err)
	}

	if host.Settings["channel_"+rpoapp.GUID+"_omroepzeeland_visible"] != "false" {
		t.Errorf("omroepzeeland should be hidden: %v", host.Settings)
	}
	if host.Settings["channel_"+rpoapp.GUID+"_rtvutrecht_visible"] != "true" {
		t.Errorf("rtvutrecht should be shown: %v", host.Settings)
	}

	var preselect interface{}
	for _, c := range host.Calls {
		if c.Method == "Dialog_MultiSelect" {
			preselect = c.Args[2]
		}
	}
	if p, ok := preselect.([]int); !ok || len(p) != 1 || p[0] != 0 {
		t.Errorf("expected omroepzeeland preselected, got %v", preselect)
	}
}

func TestSelectChannelsCancelled(t *testing.T) {
	host := setup(t)
	m := newMenu(t, params.ActionSelectChannels, "", nil)
	if err := m.Handle(params.ActionSelectChannels); err != nil {
		t.Fatal(err)
	}
	for k := range host.Settings {
		if strings.HasPrefix(k, "channel_") {
			t.Errorf("no visibility should change, got %s", k)
		}
	}
	if len(host.Builtins()) != 0 {
		t.Errorf("cancelled selection should not refresh: %v", host.Builtins())
	}
}

func TestAddAndRemoveFavourite(t *testing.T) {
	host := setup(t)
	item := mediaitem.New("Zeeuwse Ankers", "https://www.omroepzeeland.nl/RadioTv/Results?category=1")

	m := newMenu(t, params.ActionAddFavourite, rpoapp.CodeOmroepZeeland, item)
	if err := m.Handle(params.ActionAddFavourite); err != nil {
		t.Fatal(err)
	}

	favs, err := favourites.New(config.Get().FavouritePath).List(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(favs) != 1 || !strings.Contains(favs[0].ActionURL, "action=listfolder") {
		t.Fatalf("unexpected favourites %v", favs)
	}

	b := host.Builtins()
	if len(b) != 1 || !strings.HasPrefix(b[0], "XBMC.Container.Update(plugin://"+addonID+"/?action=favourites") {
		t.Errorf("expected favourites to open, got %v", b)
	}

	m = newMenu(t, params.ActionRemoveFavourite, rpoapp.CodeOmroepZeeland, item)
	if err := m.Handle(params.ActionRemoveFavourite); err != nil {
		t.Fatal(err)
	}
	favs, _ = favourites.New(config.Get().FavouritePath).List(nil)
	if len(favs) != 0 {
		t.Errorf("favourite not removed: %v", favs)
	}
	if _, err := os.Stat(filepath.Join(config.Get().ProfilePath, "retrospect.lock")); !os.IsNotExist(err) {
		t.Error("lock left behind")
	}
}

func TestAddPlayableFavourite(t *testing.T) {
	setup(t)
	item := mediaitem.New("Nieuws", "https://www.rtvutrecht.nl/gemist/uitzending/3")
	item.Type = mediaitem.TypeVideo

	m := newMenu(t, params.ActionAddFavourite, rpoapp.CodeRTVUtrecht, item)
	if err := m.AddFavorite(); err != nil {
		t.Fatal(err)
	}
	favs, _ := favourites.New(config.Get().FavouritePath).List(nil)
	if len(favs) != 1 || !strings.Contains(favs[0].ActionURL, "action=playvideo") {
		t.Fatalf("unexpected favourites %v", favs)
	}
}

func TestToggleCloak(t *testing.T) {
	host := setup(t)
	item := mediaitem.New("Zeeuwse Ankers", "https://www.omroepzeeland.nl/tvgemist/1")
	m := newMenu(t, params.ActionToggleCloak, rpoapp.CodeOmroepZeeland, item)

	if err := m.Handle(params.ActionToggleCloak); err != nil {
		t.Fatal(err)
	}
	ck := cloaker.New(config.Get().ProfilePath, rpoapp.GUID)
	if !ck.IsCloaked(item.URL) {
		t.Fatal("item not cloaked")
	}
	dialogs := 0
	for _, method := range host.Methods() {
		if method == "Dialog" {
			dialogs++
		}
	}
	if dialogs != 1 {
		t.Errorf("expected first time dialog, got %v", host.Methods())
	}

	if err := m.Handle(params.ActionToggleCloak); err != nil {
		t.Fatal(err)
	}
	if ck.IsCloaked(item.URL) {
		t.Error("item not uncloaked")
	}
	if len(host.Builtins()) != 2 {
		t.Errorf("expected two refreshes, got %v", host.Builtins())
	}
}

func TestToggleCloakWithoutFirstTimeMessage(t *testing.T) {
	host := setup(t)
	c := *config.Get()
	c.HideFirstTimeMessages = true
	config.Set(&c)

	item := mediaitem.New("Zeeuwse Ankers", "https://www.omroepzeeland.nl/tvgemist/1")
	m := newMenu(t, params.ActionToggleCloak, rpoapp.CodeOmroepZeeland, item)
	if err := m.ToggleCloak(); err != nil {
		t.Fatal(err)
	}
	for _, method := range host.Methods() {
		if method == "Dialog" {
			t.Fatal("first time dialog should be suppressed")
		}
	}
}

func TestFavouritesAndSettings(t *testing.T) {
	host := setup(t)
	m := newMenu(t, params.ActionShowAll, "", nil)
	if err := m.Handle(params.ActionShowAll); err != nil {
		t.Fatal(err)
	}
	if err := m.Handle(params.ActionShowSettings); err != nil {
		t.Fatal(err)
	}
	if err := m.Handle(params.ActionShowFavourites); err == nil {
		t.Error("channel favourites need a channel")
	}
	if err := m.Handle("bogus"); err == nil {
		t.Error("expected error for unknown action")
	}

	want := []string{
		"XBMC.Container.Update(plugin://" + addonID + "/?action=allfavourites)",
		"Addon.OpenSettings(" + addonID + ")",
	}
	b := host.Builtins()
	if len(b) != len(want) {
		t.Fatalf("expected %v, got %v", want, b)
	}
	for i := range want {
		if b[i] != want[i] {
			t.Errorf("builtin %d: expected %s, got %s", i, want[i], b[i])
		}
	}
}

func TestChannelSettings(t *testing.T) {
	host := setup(t)
	m := newMenu(t, params.ActionChannelSettings, rpoapp.CodeOmroepZeeland, nil)
	if err := m.Handle(params.ActionChannelSettings); err != nil {
		t.Fatal(err)
	}
	if b := host.Builtins(); len(b) != 1 || b[0] != "Addon.OpenSettings("+addonID+")" {
		t.Errorf("expected the add-on settings, got %v", b)
	}

	m = newMenu(t, params.ActionChannelSettings, "", nil)
	if err := m.ChannelSettings(); err == nil {
		t.Error("channel settings need a channel")
	}
	if len(host.Builtins()) != 1 {
		t.Errorf("nothing should open without a channel, got %v", host.Builtins())
	}
}
