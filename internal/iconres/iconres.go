// Package iconres resolves display icons for executables.
package iconres

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bluele/gcache"
	"github.com/tc-hib/winres"

	"github.com/user/traffic-silencer/internal/logger"
)

// DefaultCacheSize is used when a non-positive cache size is requested.
const DefaultCacheSize = 512

var errNoIcon = errors.New("no icon in resources")

// Resolver returns ICO bytes for executable paths. Results, including the
// fallback icon for executables without one, are cached per path.
type Resolver struct {
	cache gcache.Cache
}

// NewResolver creates a resolver that caches up to size icons.
func NewResolver(size int) *Resolver {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Resolver{
		cache: gcache.New(size).LRU().Build(),
	}
}

// Resolve returns the first group icon of the executable at path as ICO
// bytes, or the generic executable icon when there is none.
func (r *Resolver) Resolve(path string) []byte {
	if path == "" {
		return DefaultIcon()
	}

	key := strings.ToLower(path)
	if v, err := r.cache.Get(key); err == nil {
		return v.([]byte)
	}

	ico, err := extract(path)
	if err != nil {
		logger.Debug("Using default icon for %s: %v", path, err)
		ico = DefaultIcon()
	}
	if err := r.cache.Set(key, ico); err != nil {
		logger.Debug("Failed to cache icon for %s: %v", path, err)
	}
	return ico
}

// Len returns the number of cached icons.
func (r *Resolver) Len() int {
	return r.cache.Len(false)
}

func extract(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open executable: %w", err)
	}
	defer f.Close()

	rss, err := winres.LoadFromEXE(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load resources: %w", err)
	}

	var (
		icon    *winres.Icon
		iconErr error
	)
	rss.WalkType(winres.RT_GROUP_ICON, func(resID winres.Identifier, langID uint16, _ []byte) bool {
		icon, iconErr = rss.GetIconTranslation(resID, langID)
		return iconErr != nil
	})
	if iconErr != nil {
		return nil, fmt.Errorf("failed to read icon: %w", iconErr)
	}
	if icon == nil {
		return nil, errNoIcon
	}

	var buf bytes.Buffer
	if err := icon.SaveICO(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode icon: %w", err)
	}
	return buf.Bytes(), nil
}
