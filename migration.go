package main

import (
	"os"
	"path/filepath"

	"github.com/Sopor/plugin.video.retrospect/config"
	"github.com/Sopor/plugin.video.retrospect/util"
)

const firstRunFile = ".firstrun"

// Migrate prepares the profile the first time a version of the add-on runs.
func Migrate() bool {
	c := config.Get()
	firstRun := filepath.Join(c.ProfilePath, firstRunFile)
	if data, err := os.ReadFile(firstRun); err == nil && string(data) == util.Version {
		return false
	}

	log.Info("Preparing for first run")

	if err := config.EnsureDirs(); err != nil {
		log.Errorf("Unable to create profile directories: %s", err)
	}

	// Remove the cache
	log.Info("Clearing cache")
	os.RemoveAll(c.CachePath)
	if err := os.MkdirAll(c.CachePath, 0755); err != nil {
		log.Errorf("Unable to create cache directory: %s", err)
	}

	if err := os.WriteFile(firstRun, []byte(util.Version), 0644); err != nil {
		log.Errorf("Unable to mark first run: %s", err)
	}
	return true
}
