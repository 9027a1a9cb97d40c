package storage

import (
	"math/rand/v2"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// PublicPrefix is the first segment of every stored image path and the
// route the API serves media under.
const PublicPrefix = "uploads"

var (
	nowFunc  = time.Now
	randFunc = func() int { return rand.IntN(1_000_000_000) }
)

// NewKey names an upload as <dir>/<unix millis>-<random>.<ext>. Collisions
// are improbable, not impossible.
func NewKey(dir, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return dir + "/" + strconv.FormatInt(nowFunc().UnixMilli(), 10) + "-" + strconv.Itoa(randFunc()) + ext
}

// PathFromKey is the path recorded on the resource for a stored key.
func PathFromKey(key string) string {
	return PublicPrefix + "/" + strings.TrimPrefix(key, "/")
}

// KeyFromPath reverses PathFromKey. Backslash separators are accepted.
func KeyFromPath(p string) (string, bool) {
	p = strings.TrimPrefix(strings.ReplaceAll(p, `\`, "/"), "/")
	key, ok := strings.CutPrefix(p, PublicPrefix+"/")
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

// PublicURL resolves a stored image path against the API base URL.
// Absolute URLs pass through unchanged.
func PublicURL(base, p string) string {
	if p == "" {
		return ""
	}
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}
	p = strings.TrimPrefix(strings.ReplaceAll(p, `\`, "/"), "/")
	return strings.TrimRight(base, "/") + "/" + p
}
