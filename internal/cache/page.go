package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// KeyFunc names the cache variant of a request, e.g. the viewer's identity.
type KeyFunc func(c *gin.Context) string

type cachedPage struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// bodyRecorder tees the response body so it can be stored after the handler runs.
type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// PageKey builds the key for one request under prefix.
func PageKey(prefix, variant, requestURI string) string {
	sum := sha256.Sum256([]byte(requestURI))
	return prefix + ":" + variant + ":" + hex.EncodeToString(sum[:16])
}

// CachePage serves successful GET responses from store for ttl. Entries are
// not invalidated when data changes; they simply expire.
func CachePage(store Store, ttl time.Duration, prefix string, variant KeyFunc, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ttl <= 0 || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := PageKey(prefix, variant(c), c.Request.URL.RequestURI())

		if page, ok := load(ctx, store, key, logger); ok {
			cacheHits.WithLabelValues(prefix).Inc()
			c.Header("X-Cache", "HIT")
			c.Data(page.Status, page.ContentType, page.Body)
			c.Abort()
			return
		}
		cacheMisses.WithLabelValues(prefix).Inc()

		recorder := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder
		c.Header("X-Cache", "MISS")

		c.Next()

		if recorder.Status() != http.StatusOK {
			return
		}

		data, err := json.Marshal(cachedPage{
			Status:      recorder.Status(),
			ContentType: recorder.Header().Get("Content-Type"),
			Body:        recorder.body.Bytes(),
		})
		if err != nil {
			logger.Error("Cache marshal error", zap.String("key", key), zap.Error(err))
			return
		}
		if err := store.Set(ctx, key, data, ttl); err != nil {
			logger.Warn("Page not cached", zap.String("key", key), zap.Error(err))
		}
	}
}

func load(ctx context.Context, store Store, key string, logger *zap.Logger) (*cachedPage, bool) {
	data, err := store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			logger.Warn("Cache read failed, rendering page", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var page cachedPage
	if err := json.Unmarshal(data, &page); err != nil {
		logger.Warn("Dropping unreadable cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &page, true
}

// Clear drops every cached page under prefix.
func Clear(ctx context.Context, store Store, prefix string) (int, error) {
	return store.DeletePrefix(ctx, prefix+":")
}
