package main

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/op/go-logging"

	"github.com/Sopor/plugin.video.retrospect/config"
)

func TestLogLevel(t *testing.T) {
	cases := map[int]logging.Level{
		0: logging.DEBUG,
		1: logging.INFO,
		2: logging.WARNING,
		3: logging.ERROR,
		4: logging.CRITICAL,
		9: logging.CRITICAL,
	}
	for setting, want := range cases {
		if got := logLevel(setting); got != want {
			t.Errorf("logLevel(%d) = %s, want %s", setting, got, want)
		}
	}
}

func TestMigrate(t *testing.T) {
	dir, err := ioutil.TempDir("", "migrate")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	c := config.Set(&config.Configuration{ProfilePath: dir})
	defer config.Set(&config.Configuration{})

	stale := filepath.Join(c.CachePath, "stale")
	os.MkdirAll(c.CachePath, 0755)
	ioutil.WriteFile(stale, []byte("x"), 0644)

	if !Migrate() {
		t.Fatal("expected first run")
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("cache should be wiped on first run")
	}
	if _, err := os.Stat(c.FavouritePath); err != nil {
		t.Errorf("favourites directory not created: %s", err)
	}

	if Migrate() {
		t.Error("second run should not migrate again")
	}
}
