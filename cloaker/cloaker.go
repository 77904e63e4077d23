// Package cloaker remembers which items the user hid from the listings.
package cloaker

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"

	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("cloaker")

const fileName = "cloaked.json"

var mu sync.Mutex

// Cloaker reads and writes the cloaked urls of one channel. The file holds
// the urls of every channel keyed by channel GUID.
type Cloaker struct {
	path string
	guid string
}

func New(profileDir string, channelGUID string) *Cloaker {
	return &Cloaker{path: filepath.Join(profileDir, fileName), guid: channelGUID}
}

type store map[string]map[string]bool

func (c *Cloaker) load() (store, error) {
	data, err := ioutil.ReadFile(c.path)
	if os.IsNotExist(err) {
		return store{}, nil
	} else if err != nil {
		return nil, err
	}
	s := store{}
	if err := json.Unmarshal(data, &s); err != nil {
		log.Warningf("Resetting corrupt cloak file %s: %s", c.path, err)
		return store{}, nil
	}
	return s, nil
}

func (c *Cloaker) save(s store) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return err
	}
	return ioutil.WriteFile(c.path, data, 0644)
}

func (c *Cloaker) IsCloaked(url string) bool {
	return c.Cloaked()[url]
}

// Cloaked returns the cloaked urls of the channel in one read of the file.
func (c *Cloaker) Cloaked() map[string]bool {
	mu.Lock()
	defer mu.Unlock()
	cloaked := map[string]bool{}
	s, err := c.load()
	if err != nil {
		log.Errorf("Cannot read %s: %s", c.path, err)
		return cloaked
	}
	for url := range s[c.guid] {
		cloaked[url] = true
	}
	return cloaked
}

// Cloak hides url. firstTime is set when nothing was cloaked before, for any
// channel.
func (c *Cloaker) Cloak(url string) (firstTime bool, err error) {
	mu.Lock()
	defer mu.Unlock()
	s, err := c.load()
	if err != nil {
		return false, err
	}

	firstTime = true
	for _, urls := range s {
		if len(urls) > 0 {
			firstTime = false
			break
		}
	}

	log.Infof("Cloaking %s for channel %s", url, c.guid)
	if s[c.guid] == nil {
		s[c.guid] = map[string]bool{}
	}
	s[c.guid][url] = true
	return firstTime, c.save(s)
}

func (c *Cloaker) UnCloak(url string) error {
	mu.Lock()
	defer mu.Unlock()
	s, err := c.load()
	if err != nil {
		return err
	}
	if !s[c.guid][url] {
		return nil
	}

	log.Infof("Uncloaking %s for channel %s", url, c.guid)
	delete(s[c.guid], url)
	if len(s[c.guid]) == 0 {
		delete(s, c.guid)
	}
	return c.save(s)
}
