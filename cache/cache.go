package cache

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/op/go-logging"

	"github.com/Sopor/plugin.video.retrospect/broadcast"
)

const skipKey = "cache.skip"

var (
	PageCachePrefix = "retrospect.page.cache"
	ErrCacheMiss    = errors.New("cache: key not found")
	ErrNotStored    = errors.New("cache: not stored")
	log             = logging.MustGetLogger("cache")
)

type CacheStore interface {
	Get(key string, value interface{}) error
	Set(key string, value interface{}, expire time.Duration) error
	Add(key string, value interface{}, expire time.Duration) error
	Replace(key string, data interface{}, expire time.Duration) error
	Delete(key string) error
	Flush() error
}

type responseCache struct {
	Status int
	Header http.Header
	Data   []byte
}

type cachedWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func cacheKey(prefix string, u string) string {
	h := sha1.New()
	io.WriteString(h, u)
	return prefix + "-" + hex.EncodeToString(h.Sum(nil))
}

func (w *cachedWriter) Write(data []byte) (int, error) {
	w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

func (w *cachedWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Skip keeps the response of the current request out of the cache.
func Skip(ctx *gin.Context) {
	ctx.Set(skipKey, true)
}

// Cache serves successful responses from store, keyed by request uri. expire
// is asked per request; zero or less bypasses the cache.
func Cache(store CacheStore, expire func(ctx *gin.Context) time.Duration) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ttl := expire(ctx)
		if ttl <= 0 {
			ctx.Next()
			return
		}

		var cache responseCache
		key := cacheKey(PageCachePrefix, ctx.Request.URL.RequestURI())
		if err := store.Get(key, &cache); err == nil {
			log.Debugf("Serving %s from cache", ctx.Request.URL.Path)
			for k, vals := range cache.Header {
				for _, v := range vals {
					ctx.Writer.Header().Add(k, v)
				}
			}
			ctx.Writer.WriteHeader(cache.Status)
			ctx.Writer.Write(cache.Data)
			ctx.Abort()
			return
		}

		// replace writer
		writer := &cachedWriter{ResponseWriter: ctx.Writer}
		ctx.Writer = writer
		ctx.Next()
		ctx.Writer = writer.ResponseWriter

		if ctx.IsAborted() || writer.Status() != http.StatusOK || ctx.GetBool(skipKey) {
			return
		}
		val := responseCache{
			Status: writer.Status(),
			Header: writer.Header().Clone(),
			Data:   writer.body.Bytes(),
		}
		if err := store.Set(key, val, ttl); err != nil {
			log.Warningf("Cannot cache %s: %s", ctx.Request.URL.Path, err)
		}
	}
}

// FlushOn empties store every time changes broadcasts. The returned func
// stops listening.
func FlushOn(store CacheStore, changes *broadcast.Broadcaster) func() {
	values, cancel := changes.Listen()
	go func() {
		for range values {
			log.Info("Configuration changed, flushing cache")
			if err := store.Flush(); err != nil {
				log.Errorf("Cannot flush cache: %s", err)
			}
		}
	}()
	return cancel
}
