package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Sopor/plugin.video.retrospect/cache"
	"github.com/Sopor/plugin.video.retrospect/channel"
	"github.com/Sopor/plugin.video.retrospect/channelindex"
	"github.com/Sopor/plugin.video.retrospect/channels/rpoapp"
	"github.com/Sopor/plugin.video.retrospect/cloaker"
	"github.com/Sopor/plugin.video.retrospect/config"
	"github.com/Sopor/plugin.video.retrospect/mediaitem"
	"github.com/Sopor/plugin.video.retrospect/params"
	"github.com/Sopor/plugin.video.retrospect/xbmc"
	"github.com/Sopor/plugin.video.retrospect/xbmc/xbmctest"
)

const addonID = "plugin.video.retrospect"

const utrechtMainList = `<select>
<option value="/gemist/uitzending/123/rtv-utrecht-nieuws">RTV Utrecht Nieuws</option>
<option value="/gemist/uitzending/456/bureau-sport">Bureau Sport</option>
</select>`

type pageFetcher struct {
	pages  map[string]string
	opened int
}

func (f *pageFetcher) Open(ctx context.Context, u string, headers map[string]string) (string, error) {
	f.opened++
	if data, ok := f.pages[u]; ok {
		return data, nil
	}
	return "", fmt.Errorf("404: %s", u)
}

type testEnv struct {
	host    *xbmctest.Host
	fetcher *pageFetcher
	router  *gin.Engine
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir, err := ioutil.TempDir("", "api")
	if err != nil {
		t.Fatal(err)
	}
	host := xbmctest.NewHost()
	restore := host.Install()
	config.Set(&config.Configuration{
		Info:        &xbmc.AddonInfo{Id: addonID, Path: "/addon"},
		ProfilePath: dir,
	})

	fetcher := &pageFetcher{pages: map[string]string{
		"https://www.rtvutrecht.nl/gemist/rtvutrecht/": utrechtMainList,
	}}
	previous := channelindex.SetFetcher(fetcher)

	t.Cleanup(func() {
		channelindex.SetFetcher(previous)
		restore()
		config.Set(&config.Configuration{})
		os.RemoveAll(dir)
	})

	return &testEnv{
		host:    host,
		fetcher: fetcher,
		router:  Routes(cache.NewFileStore(config.Get().CachePath)),
	}
}

func (e *testEnv) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
	return w
}

// query turns a plugin url into a request on the index route.
func query(t *testing.T, pluginURL string) string {
	t.Helper()
	u, err := url.Parse(pluginURL)
	if err != nil {
		t.Fatal(err)
	}
	return "/?" + u.RawQuery
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) *xbmc.View {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	view := &xbmc.View{}
	if err := json.Unmarshal(w.Body.Bytes(), view); err != nil {
		t.Fatal(err)
	}
	return view
}

func TestChannelList(t *testing.T) {
	e := setup(t)

	view := decodeView(t, e.get("/"))
	if len(view.Items) != 3 {
		t.Fatalf("expected 2 channels and all favourites, got %d", len(view.Items))
	}
	first := view.Items[0]
	if first.Label != "Omroep Zeeland" || !strings.Contains(first.Path, "action=listfolder") {
		t.Errorf("unexpected channel item %+v", first)
	}
	if len(first.ContextMenu) != 5 || !strings.HasPrefix(first.ContextMenu[0][1], "XBMC.RunPlugin(plugin://"+addonID) {
		t.Errorf("unexpected context menu %v", first.ContextMenu)
	}
	if first.Icon != "/addon/resources/media/omroepzeelandimage.png" {
		t.Errorf("unexpected icon %s", first.Icon)
	}

	e.host.Settings[config.ChannelVisibleSetting(rpoapp.GUID, rpoapp.CodeOmroepZeeland)] = "false"
	view = decodeView(t, e.get("/"))
	if len(view.Items) != 2 || view.Items[0].Label != "RTV Utrecht" {
		t.Errorf("hidden channel still listed: %v", view.Items)
	}
}

func TestListFolderIsCached(t *testing.T) {
	e := setup(t)
	path := "/?action=listfolder&channel=" + rpoapp.GUID + "&channelcode=" + rpoapp.CodeRTVUtrecht

	view := decodeView(t, e.get(path))
	if len(view.Items) != 3 {
		t.Fatalf("expected live folder and 2 episodes, got %d", len(view.Items))
	}
	episode := view.Items[1]
	if episode.Label != "RTV Utrecht Nieuws" || episode.IsPlayable {
		t.Errorf("unexpected episode %+v", episode)
	}
	if len(episode.ContextMenu) != 3 {
		t.Errorf("expected favourite, cloak and refresh entries, got %v", episode.ContextMenu)
	}

	// follow the episode path
	p, err := params.Parse(episode.Path)
	if err != nil {
		t.Fatal(err)
	}
	item, err := p.Item()
	if err != nil || item.URL != "https://www.rtvutrecht.nl/gemist/uitzending/123/rtv-utrecht-nieuws" {
		t.Fatalf("unexpected pickled item %v, %v", item, err)
	}

	decodeView(t, e.get(path))
	if e.fetcher.opened != 1 {
		t.Errorf("second listing should come from the cache, fetched %d times", e.fetcher.opened)
	}
	decodeView(t, e.get("/channel/"+rpoapp.GUID+"/"+rpoapp.CodeRTVUtrecht))
	if e.fetcher.opened != 2 {
		t.Errorf("channel route should list the main list, fetched %d times", e.fetcher.opened)
	}
}

func TestPartialListingIsNotCached(t *testing.T) {
	e := setup(t)
	mainPage := "https://www.rtvutrecht.nl/gemist/rtvutrecht/"
	delete(e.fetcher.pages, mainPage)
	path := "/listfolder?channel=" + rpoapp.GUID + "&channelcode=" + rpoapp.CodeRTVUtrecht

	view := decodeView(t, e.get(path))
	if len(view.Items) != 1 {
		t.Fatalf("expected only the live folder, got %d items", len(view.Items))
	}

	e.fetcher.pages[mainPage] = utrechtMainList
	view = decodeView(t, e.get(path))
	if len(view.Items) != 3 {
		t.Fatalf("expected the page to be fetched again, got %d items", len(view.Items))
	}
	if e.fetcher.opened != 2 {
		t.Errorf("expected two fetches, got %d", e.fetcher.opened)
	}

	decodeView(t, e.get(path))
	if e.fetcher.opened != 2 {
		t.Errorf("complete listing should come from the cache, fetched %d times", e.fetcher.opened)
	}
}

func TestCloakedItems(t *testing.T) {
	e := setup(t)
	cloaker.New(config.Get().ProfilePath, rpoapp.GUID).Cloak("https://www.rtvutrecht.nl/gemist/uitzending/456/bureau-sport")
	// disable caching to see both renderings
	c := *config.Get()
	c.ListCacheMinutes = -1
	config.Set(&c)

	path := "/listfolder?channel=" + rpoapp.GUID + "&channelcode=" + rpoapp.CodeRTVUtrecht
	view := decodeView(t, e.get(path))
	if len(view.Items) != 2 {
		t.Fatalf("cloaked item should be hidden, got %d items", len(view.Items))
	}

	c.ShowCloakedItems = true
	config.Set(&c)
	view = decodeView(t, e.get(path))
	if len(view.Items) != 3 || !strings.Contains(view.Items[2].Label, "[COLOR gray]") {
		t.Fatalf("cloaked item should be greyed, got %+v", view.Items)
	}
	if view.Items[2].ContextMenu[1][0] != "Uncloak item" {
		t.Errorf("expected uncloak entry, got %v", view.Items[2].ContextMenu)
	}
}

func TestErrors(t *testing.T) {
	e := setup(t)

	if w := e.get("/listfolder?channel=nope"); w.Code != http.StatusNotFound {
		t.Errorf("unknown channel: expected 404, got %d", w.Code)
	}
	if w := e.get("/listfolder?channel=" + rpoapp.GUID + "&channelcode=" + rpoapp.CodeRTVUtrecht + "&pickle=broken!"); w.Code != http.StatusBadRequest {
		t.Errorf("bad pickle: expected 400, got %d", w.Code)
	}
	if w := e.get("/?action=bogus"); w.Code != http.StatusNotFound {
		t.Errorf("unknown action: expected 404, got %d", w.Code)
	}
	if w := e.get("/playvideo?channel=" + rpoapp.GUID + "&channelcode=" + rpoapp.CodeRTVUtrecht); w.Code != http.StatusBadRequest {
		t.Errorf("play without item: expected 400, got %d", w.Code)
	}
}

func TestPlayVideoRedirect(t *testing.T) {
	e := setup(t)
	pageURL := "https://www.rtvutrecht.nl/gemist/uitzending/123/rtv-utrecht-nieuws"
	e.fetcher.pages[pageURL] = `sources: [{ label: "360p", file: "https://cdn/360.mp4" }, { label: "720p SD", file: "https://cdn/720.mp4" }]`
	c := *config.Get()
	c.MaxStreamBitrate = 1500
	config.Set(&c)

	item := mediaitem.New("Nieuws", pageURL)
	item.Type = mediaitem.TypeVideo
	u, err := params.ActionURL(addonID, channelInfo(t), params.ActionPlayVideo, item)
	if err != nil {
		t.Fatal(err)
	}

	w := e.get(query(t, u))
	if w.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d: %s", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "https://cdn/720.mp4" {
		t.Errorf("expected the 1200 kbps stream, got %s", loc)
	}
}

func TestPlayVideoWithProperties(t *testing.T) {
	e := setup(t)
	c := *config.Get()
	c.UseAdaptiveStream = true
	config.Set(&c)

	item := mediaitem.New("Live", "https://live.utrecht/live/tv/index.m3u8")
	item.Type = mediaitem.TypeVideo
	item.IsLive = true
	u, err := params.ActionURL(addonID, channelInfo(t), params.ActionPlayVideo, item)
	if err != nil {
		t.Fatal(err)
	}

	w := e.get(query(t, u))
	if w.Code != http.StatusOK {
		t.Fatalf("expected list item, got %d: %s", w.Code, w.Body.String())
	}
	li := xbmc.ListItem{}
	if err := json.Unmarshal(w.Body.Bytes(), &li); err != nil {
		t.Fatal(err)
	}
	if li.Path != item.URL || !li.IsPlayable {
		t.Errorf("unexpected list item %+v", li)
	}
	if li.Properties["inputstreamaddon"] != "inputstream.adaptive" || li.Properties["IsLive"] != "true" {
		t.Errorf("missing properties %v", li.Properties)
	}
}

func TestPlayVideoWithoutStreams(t *testing.T) {
	e := setup(t)
	pageURL := "https://www.rtvutrecht.nl/gemist/uitzending/9/empty"
	e.fetcher.pages[pageURL] = "<html>no player</html>"

	item := mediaitem.New("Leeg", pageURL)
	item.Type = mediaitem.TypeVideo
	u, _ := params.ActionURL(addonID, channelInfo(t), params.ActionPlayVideo, item)
	if w := e.get(query(t, u)); w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestFavouritesThroughMenu(t *testing.T) {
	e := setup(t)
	item := mediaitem.New("Bureau Sport", "https://www.rtvutrecht.nl/gemist/uitzending/456/bureau-sport")
	u, err := params.ActionURL(addonID, channelInfo(t), params.ActionAddFavourite, item)
	if err != nil {
		t.Fatal(err)
	}

	if w := e.get(query(t, u)); w.Code != http.StatusOK {
		t.Fatalf("add favourite failed with %d: %s", w.Code, w.Body.String())
	}

	view := decodeView(t, e.get("/favourites?channel="+rpoapp.GUID+"&channelcode="+rpoapp.CodeRTVUtrecht))
	if len(view.Items) != 1 {
		t.Fatalf("expected one favourite, got %d", len(view.Items))
	}
	fav := view.Items[0]
	if fav.Label != "Bureau Sport" || !strings.Contains(fav.Path, "action=listfolder") || fav.Label2 == "" {
		t.Errorf("unexpected favourite %+v", fav)
	}
	if fav.ContextMenu[0][0] != "Remove from Retrospect favourites" {
		t.Errorf("expected remove entry, got %v", fav.ContextMenu)
	}

	view = decodeView(t, e.get("/allfavourites"))
	if len(view.Items) != 1 || view.Items[0].Label != "Bureau Sport [RTV Utrecht]" {
		t.Errorf("unexpected all favourites %+v", view.Items)
	}

	remove := strings.Replace(u, "action="+params.ActionAddFavourite, "action="+params.ActionRemoveFavourite, 1)
	if w := e.get("/menu/" + params.ActionRemoveFavourite + strings.TrimPrefix(query(t, remove), "/")); w.Code != http.StatusOK {
		t.Fatalf("remove favourite failed with %d", w.Code)
	}
	view = decodeView(t, e.get("/allfavourites"))
	if len(view.Items) != 0 {
		t.Errorf("favourite not removed: %+v", view.Items)
	}
}

func TestClearCache(t *testing.T) {
	e := setup(t)
	path := "/listfolder?channel=" + rpoapp.GUID + "&channelcode=" + rpoapp.CodeRTVUtrecht
	e.get(path)
	if w := e.get("/cmd/clear_cache"); w.Code != http.StatusOK {
		t.Fatalf("clear cache failed with %d", w.Code)
	}
	e.get(path)
	if e.fetcher.opened != 2 {
		t.Errorf("listing should be fetched again after clearing, fetched %d times", e.fetcher.opened)
	}

	notified := false
	for _, m := range e.host.Methods() {
		notified = notified || m == "Notify"
	}
	if !notified {
		t.Error("expected a notification")
	}
}

func TestWithHeaders(t *testing.T) {
	got := withHeaders("https://cdn/a.m3u8", map[string]string{"User-Agent": "Kodi 18", "Referer": "https://x"})
	want := "https://cdn/a.m3u8|Referer=https%3A%2F%2Fx&User-Agent=Kodi+18"
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
	if withHeaders("https://cdn/a", nil) != "https://cdn/a" {
		t.Error("url without headers should be unchanged")
	}
}

func channelInfo(t *testing.T) *channel.ChannelInfo {
	t.Helper()
	info, err := channelindex.GetChannelInfo(rpoapp.GUID, rpoapp.CodeRTVUtrecht)
	if err != nil {
		t.Fatal(err)
	}
	return &info
}
