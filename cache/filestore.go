package cache

import (
	"compress/gzip"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Sopor/plugin.video.retrospect/diskusage"
)

// minFreeSpace keeps the cache from filling the disk of small devices.
const minFreeSpace = 50 << 20

// FileStore keeps one gzipped JSON file per key.
type FileStore struct {
	path string
	mu   sync.RWMutex
}

type fileStoreItem struct {
	Key     string      `json:"key"`
	Value   interface{} `json:"value"`
	Expires time.Time   `json:"expires"`
}

func NewFileStore(path string) *FileStore {
	if err := os.MkdirAll(path, 0755); err != nil {
		log.Errorf("Cannot create cache directory %s: %s", path, err)
	}
	return &FileStore{path: path}
}

func (c *FileStore) file(key string) string {
	return filepath.Join(c.path, key)
}

func (c *FileStore) Set(key string, value interface{}, expires time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.set(key, value, expires)
}

func (c *FileStore) set(key string, value interface{}, expires time.Duration) error {
	if err := os.MkdirAll(c.path, 0755); err != nil {
		return err
	}
	if !diskusage.HasFreeSpace(c.path, minFreeSpace) {
		return ErrNotStored
	}
	file, err := os.Create(c.file(key))
	if err != nil {
		return err
	}
	defer file.Close()

	gzWriter := gzip.NewWriter(file)
	item := fileStoreItem{
		Key:     key,
		Value:   value,
		Expires: time.Now().UTC().Add(expires),
	}
	if err := json.NewEncoder(gzWriter).Encode(item); err != nil {
		gzWriter.Close()
		return err
	}
	return gzWriter.Close()
}

func (c *FileStore) exists(key string) bool {
	_, err := os.Stat(c.file(key))
	return err == nil
}

func (c *FileStore) Add(key string, value interface{}, expires time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.exists(key) {
		return ErrNotStored
	}
	return c.set(key, value, expires)
}

func (c *FileStore) Replace(key string, value interface{}, expires time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.exists(key) {
		return ErrNotStored
	}
	return c.set(key, value, expires)
}

// Get decodes the value of key into value. Missing and expired keys return
// ErrCacheMiss.
func (c *FileStore) Get(key string, value interface{}) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	file, err := os.Open(c.file(key))
	if os.IsNotExist(err) {
		return ErrCacheMiss
	} else if err != nil {
		return err
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return err
	}
	defer gzReader.Close()

	item := fileStoreItem{
		Value: value,
	}
	if err = json.NewDecoder(gzReader).Decode(&item); err != nil {
		return err
	}
	if item.Expires.Before(time.Now().UTC()) {
		return ErrCacheMiss
	}
	return nil
}

func (c *FileStore) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.Remove(c.file(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Flush removes every cached file.
func (c *FileStore) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	files, err := ioutil.ReadDir(c.path)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return err
	}
	for _, fi := range files {
		if fi.IsDir() {
			continue
		}
		if err := os.Remove(c.file(fi.Name())); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	log.Infof("Flushed %d cached entries", len(files))
	return nil
}
