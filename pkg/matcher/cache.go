package matcher

import (
	"log/slog"
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCacheSize = 128

// patternCache keeps recently compiled expressions. The lru cache is safe
// for concurrent use, so multi-file runs share one instance.
type patternCache struct {
	entries *lru.Cache[string, *regexp.Regexp]
}

var defaultCache = newPatternCache(defaultCacheSize)

func newPatternCache(size int) *patternCache {
	entries, err := lru.New[string, *regexp.Regexp](size)
	if err != nil {
		// only returned for a non-positive size
		panic(err)
	}
	return &patternCache{entries: entries}
}

func (pc *patternCache) compile(expr string) (*regexp.Regexp, error) {
	if re, ok := pc.entries.Get(expr); ok {
		return re, nil
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}

	if evicted := pc.entries.Add(expr, re); evicted {
		slog.Debug("Pattern cache eviction", "size", pc.entries.Len())
	}
	return re, nil
}

func (pc *patternCache) len() int {
	return pc.entries.Len()
}
