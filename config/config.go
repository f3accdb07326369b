// Package config assembles the engine's ambient configuration: disk store
// root, in-memory store eviction policy and capacity, and log level/format.
// Loading is layered (defaults, then an optional file, then environment
// variables, then programmatic overrides) and produces a single immutable
// Config value; nothing here reads or writes global mutable state.
package config

// StorePolicy mirrors store.Policy as a string so it can round-trip through
// a config file/environment variable without this package importing store
// (which would otherwise create an import cycle once store grows a
// config-driven constructor helper).
type StorePolicy string

const (
	StorePolicyUnbounded StorePolicy = "unbounded"
	StorePolicyLRU       StorePolicy = "lru"
	StorePolicyLFU       StorePolicy = "lfu"
)

// Config is the fully-resolved, immutable configuration consumed by the
// store, executor, and CLI constructors.
type Config struct {
	Store StoreConfig `koanf:"store"`
	Log   LogConfig   `koanf:"log"`
}

// StoreConfig configures the artifact store backends.
type StoreConfig struct {
	// DiskRoot is the root directory for the content-addressed disk
	// backend.
	DiskRoot string `koanf:"disk_root"`
	// MemoryPolicy selects the in-memory backend's eviction behavior.
	MemoryPolicy StorePolicy `koanf:"memory_policy"`
	// MemoryCapacity bounds the lru/lfu policies; ignored for unbounded.
	MemoryCapacity int `koanf:"memory_capacity"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `koanf:"level"`
	// Format is one of "text", "json".
	Format string `koanf:"format"`
}

// Default returns the compiled-in defaults, the base layer every Loader
// starts from.
func Default() Config {
	return Config{
		Store: StoreConfig{
			DiskRoot:       ".invariant/cache",
			MemoryPolicy:   StorePolicyLRU,
			MemoryCapacity: 1000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
