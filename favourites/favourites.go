// Package favourites keeps the user's favourite items as one JSON file per
// favourite in the favourites directory.
package favourites

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/dustin/go-humanize"
	"github.com/op/go-logging"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/Sopor/plugin.video.retrospect/channel"
	"github.com/Sopor/plugin.video.retrospect/mediaitem"
	"github.com/Sopor/plugin.video.retrospect/pickle"
)

var log = logging.MustGetLogger("favourites")

const fileExt = ".json"

type Favourite struct {
	ChannelGUID string    `json:"channel_guid"`
	ChannelCode string    `json:"channel_code,omitempty"`
	Name        string    `json:"name"`
	Pickle      string    `json:"pickle"`
	ActionURL   string    `json:"action_url"`
	Added       time.Time `json:"added"`

	Item *mediaitem.MediaItem `json:"-"`
}

// AddedAgo is a human readable age, like "3 days ago".
func (f *Favourite) AddedAgo() string {
	if f.Added.IsZero() {
		return ""
	}
	return humanize.Time(f.Added)
}

type Store struct {
	dir string
	now func() time.Time
}

func New(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// Add stores item as a favourite of ch, replacing an earlier copy.
func (s *Store) Add(ch *channel.ChannelInfo, item *mediaitem.MediaItem, actionURL string) error {
	log.Debugf("Adding '%s' to favourites of %s", item.Name, ch)
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}
	if err := s.Remove(item); err != nil {
		return err
	}

	p, err := pickle.Pickle(item)
	if err != nil {
		return err
	}
	fav := Favourite{
		ChannelGUID: ch.GUID,
		ChannelCode: ch.Code,
		Name:        item.DisplayName(),
		Pickle:      p,
		ActionURL:   actionURL,
		Added:       s.now(),
	}
	data, err := json.MarshalIndent(&fav, "", "  ")
	if err != nil {
		return err
	}

	path := filepath.Join(s.dir, fileName(ch, item))
	if err := ioutil.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("favourites: writing %s: %w", path, err)
	}
	return nil
}

// Remove deletes every favourite of item, whatever channel it was added for.
func (s *Store) Remove(item *mediaitem.MediaItem) error {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*-"+item.GUID+"-*"+fileExt))
	if err != nil {
		return err
	}
	for _, path := range matches {
		log.Debugf("Removing favourite %s", filepath.Base(path))
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// List returns the favourites of ch sorted by name, or of every channel when
// ch is nil. Unreadable files are skipped.
func (s *Store) List(ch *channel.ChannelInfo) ([]*Favourite, error) {
	pattern := "*" + fileExt
	if ch != nil {
		pattern = ch.GUID + "-*" + fileExt
	}
	matches, err := filepath.Glob(filepath.Join(s.dir, pattern))
	if err != nil {
		return nil, err
	}

	favs := make([]*Favourite, 0, len(matches))
	for _, path := range matches {
		fav, err := read(path)
		if err != nil {
			log.Warningf("Skipping favourite %s: %s", filepath.Base(path), err)
			continue
		}
		if ch != nil && fav.ChannelCode != ch.Code {
			continue
		}
		favs = append(favs, fav)
	}
	sort.SliceStable(favs, func(i, j int) bool {
		return strings.ToLower(favs[i].Name) < strings.ToLower(favs[j].Name)
	})
	return favs, nil
}

func read(path string) (*Favourite, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fav := &Favourite{}
	if err := json.Unmarshal(data, fav); err != nil {
		return nil, err
	}
	if fav.Item, err = pickle.Unpickle(fav.Pickle); err != nil {
		return nil, err
	}
	return fav, nil
}

func fileName(ch *channel.ChannelInfo, item *mediaitem.MediaItem) string {
	return fmt.Sprintf("%s-%s-%s%s", ch.GUID, item.GUID, slug(item.DisplayName()), fileExt)
}

// slug folds name to lower case ASCII letters, digits and underscores.
func slug(name string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, name)
	if err != nil {
		folded = name
	}
	s := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return unicode.ToLower(r)
		}
		return '_'
	}, folded)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
