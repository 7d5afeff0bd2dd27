package optimize

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Configuration keys and their declared value types. Values are validated
// synchronously on set; an unknown key or wrong type is rejected with no
// partial application.
const (
	// KeyMaxConnsPerHost: positive int, per-endpoint pool capacity.
	KeyMaxConnsPerHost = "max_connections_per_host"
	// KeyThreadPoolSize: positive int, worker ceiling; zero means auto.
	KeyThreadPoolSize = "thread_pool_size"
	// KeyQueryCacheSize: positive int, query cache capacity.
	KeyQueryCacheSize = "query_cache_size"
	// KeyEnableHTTP2: bool.
	KeyEnableHTTP2 = "enable_http2"
	// KeyEnableCompression: bool.
	KeyEnableCompression = "enable_compression"
	// KeyEnableDNSCache: bool.
	KeyEnableDNSCache = "enable_dns_cache"
)

func defaultConfig() map[string]any {
	return map[string]any{
		KeyMaxConnsPerHost:   10,
		KeyThreadPoolSize:    0, // auto
		KeyQueryCacheSize:    100,
		KeyEnableHTTP2:       true,
		KeyEnableCompression: true,
		KeyEnableDNSCache:    true,
	}
}

// validConfig reports whether value has the declared type for key, returning
// the normalized value to store.
func validConfig(key string, value any) (any, bool) {
	switch key {
	case KeyMaxConnsPerHost, KeyQueryCacheSize:
		n, ok := value.(int)
		return n, ok && n > 0
	case KeyThreadPoolSize:
		if value == nil {
			return 0, true // unset = auto
		}
		n, ok := value.(int)
		return n, ok && n >= 0
	case KeyEnableHTTP2, KeyEnableCompression, KeyEnableDNSCache:
		b, ok := value.(bool)
		return b, ok
	default:
		return nil, false
	}
}

// fileConfig mirrors the configuration keys for YAML loading. Pointer fields
// distinguish "unset" from zero values.
type fileConfig struct {
	MaxConnectionsPerHost *int  `yaml:"max_connections_per_host"`
	ThreadPoolSize        *int  `yaml:"thread_pool_size"`
	QueryCacheSize        *int  `yaml:"query_cache_size"`
	EnableHTTP2           *bool `yaml:"enable_http2"`
	EnableCompression     *bool `yaml:"enable_compression"`
	EnableDNSCache        *bool `yaml:"enable_dns_cache"`
}

// LoadConfig reads configuration from a YAML file and applies each present
// key through the same validation as SetConfig. It fails on the first
// invalid value without applying it.
func (c *Coordinator) LoadConfig(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	apply := func(key string, value any) error {
		if !c.SetConfig(key, value) {
			return fmt.Errorf("invalid value for %s: %v", key, value)
		}
		return nil
	}

	for _, kv := range []struct {
		key string
		val any
	}{
		{KeyMaxConnsPerHost, deref(fc.MaxConnectionsPerHost)},
		{KeyThreadPoolSize, deref(fc.ThreadPoolSize)},
		{KeyQueryCacheSize, deref(fc.QueryCacheSize)},
		{KeyEnableHTTP2, deref(fc.EnableHTTP2)},
		{KeyEnableCompression, deref(fc.EnableCompression)},
		{KeyEnableDNSCache, deref(fc.EnableDNSCache)},
	} {
		if kv.val == nil {
			continue
		}
		if err := apply(kv.key, kv.val); err != nil {
			return err
		}
	}
	return nil
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
