package language

import (
	"testing"

	"github.com/Sopor/plugin.video.retrospect/xbmc/xbmctest"
)

func TestGetLocalizedString(t *testing.T) {
	host := xbmctest.NewHost()
	defer host.Install()()

	if got := GetLocalizedString(CacheCleared); got != "Cache cleared" {
		t.Errorf("expected the English fallback, got %q", got)
	}

	host.Replies["GetLocalizedString"] = "Cache gewist"
	if got := GetLocalizedString(CacheCleared); got != "Cache gewist" {
		t.Errorf("expected the host translation, got %q", got)
	}
}

func TestEveryIdHasFallback(t *testing.T) {
	for id := LiveStreamTitleId; id <= CacheCleared; id++ {
		if fallback[id] == "" {
			t.Errorf("no fallback for %d", id)
		}
	}
}
