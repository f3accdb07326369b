package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/aledsdavies/invariant/errs"
)

// EnvPrefix is the environment variable prefix for the final override
// layer, e.g. INVARIANT_STORE__DISK_ROOT.
const EnvPrefix = "INVARIANT_"

// Loader assembles a Config from the defaults -> file -> env -> programmatic
// override layers, each overriding the previous. A Loader holds no mutable
// state once constructed; Load may be called any number of times and
// always starts from Default().
type Loader struct {
	filePath  string
	overrides map[string]any
}

// New constructs a Loader. filePath may be empty, meaning no config file
// layer is applied. overrides is a flat or nested map applied as the final
// layer, keyed the same way as the config file (e.g.
// {"store": {"disk_root": "/tmp/cache"}}); it may be nil.
func New(filePath string, overrides map[string]any) *Loader {
	return &Loader{filePath: filePath, overrides: overrides}
}

// Load runs the full layering pipeline and returns the resolved Config.
func (l *Loader) Load() (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(structToMap(Default()), "."), nil); err != nil {
		return Config{}, errs.New(errs.ConfigInvalid, "load defaults: %v", err)
	}

	if l.filePath != "" {
		if _, err := os.Stat(l.filePath); err != nil {
			if os.IsNotExist(err) {
				return Config{}, errs.New(errs.ConfigInvalid, "config file %q not found", l.filePath)
			}
			return Config{}, errs.New(errs.ConfigInvalid, "stat config file %q: %v", l.filePath, err)
		}

		fileKoanf := koanf.New(".")
		if err := fileKoanf.Load(file.Provider(l.filePath), json.Parser()); err != nil {
			return Config{}, errs.New(errs.ConfigInvalid, "parse config file %q: %v", l.filePath, err)
		}
		if err := validateFile(fileKoanf.Raw()); err != nil {
			return Config{}, err
		}
		if err := k.Load(file.Provider(l.filePath), json.Parser()); err != nil {
			return Config{}, errs.New(errs.ConfigInvalid, "load config file %q: %v", l.filePath, err)
		}
	}

	// A double underscore separates nesting levels (INVARIANT_STORE__DISK_ROOT
	// -> store.disk_root); the single underscores within a leaf key are part
	// of that key's own name, matching the koanf struct tags above verbatim.
	transform := func(key, value string) (string, any) {
		key = strings.TrimPrefix(key, EnvPrefix)
		key = strings.ToLower(strings.ReplaceAll(key, "__", "."))
		return key, value
	}
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", transform), nil); err != nil {
		return Config{}, errs.New(errs.ConfigInvalid, "load environment: %v", err)
	}

	if l.overrides != nil {
		if err := k.Load(confmap.Provider(l.overrides, "."), nil); err != nil {
			return Config{}, errs.New(errs.ConfigInvalid, "load overrides: %v", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, errs.New(errs.ConfigInvalid, "unmarshal config: %v", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Store.MemoryPolicy {
	case StorePolicyUnbounded, StorePolicyLRU, StorePolicyLFU:
	default:
		return errs.New(errs.ConfigInvalid, "store.memory_policy must be one of unbounded/lru/lfu, got %q", c.Store.MemoryPolicy)
	}
	if c.Store.DiskRoot == "" {
		return errs.New(errs.ConfigInvalid, "store.disk_root must not be empty")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errs.New(errs.ConfigInvalid, "log.level must be one of debug/info/warn/error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errs.New(errs.ConfigInvalid, "log.format must be one of text/json, got %q", c.Log.Format)
	}
	return nil
}

func structToMap(cfg Config) map[string]any {
	return map[string]any{
		"store": map[string]any{
			"disk_root":       cfg.Store.DiskRoot,
			"memory_policy":   string(cfg.Store.MemoryPolicy),
			"memory_capacity": cfg.Store.MemoryCapacity,
		},
		"log": map[string]any{
			"level":  cfg.Log.Level,
			"format": cfg.Log.Format,
		},
	}
}
