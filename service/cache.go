package service

import (
	"strings"

	"github.com/Scalingo/sclng-language-stats/config"
	"github.com/Scalingo/sclng-language-stats/model"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// statisticsCache keeps complete statistics per credential for a short time
// a nil cache (disabled) never hits
type statisticsCache struct {
	lru *expirable.LRU[string, model.LanguageStatistics]
}

func newStatisticsCache(cfg config.CacheConfig) *statisticsCache {
	if !cfg.Enabled || cfg.TTL <= 0 {
		return nil
	}

	size := cfg.Size
	if size <= 0 {
		size = 256
	}

	return &statisticsCache{
		lru: expirable.NewLRU[string, model.LanguageStatistics](size, nil, cfg.TTL),
	}
}

// key never contains the token itself
func (c *statisticsCache) key(credential model.Credential) string {
	return credential.Fingerprint() + ":" + strings.ToLower(credential.UserID)
}

func (c *statisticsCache) get(key string) (model.LanguageStatistics, bool) {
	if c == nil {
		return model.LanguageStatistics{}, false
	}

	return c.lru.Get(key)
}

func (c *statisticsCache) add(key string, statistics model.LanguageStatistics) {
	if c == nil {
		return
	}

	c.lru.Add(key, statistics)
}
