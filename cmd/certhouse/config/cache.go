package config

import (
	"github.com/certhouse/certhouse/internal/cache"
)

type cachingConf struct {
	RedisAddr string `yaml:"redis_addr"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	RedisDB   int    `yaml:"redis_db"`
	Prefix    string `yaml:"prefix"`
	Disabled  bool   `yaml:"disabled"`
}

// CacheConfig returns the cache.Config; it is empty when caching is disabled
func (c cachingConf) CacheConfig() cache.Config {
	if c.Disabled {
		return cache.Config{}
	}
	return cache.Config{
		Addr:     c.RedisAddr,
		Username: c.Username,
		Password: c.Password,
		DB:       c.RedisDB,
		Prefix:   c.Prefix,
	}
}
