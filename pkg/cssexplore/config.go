package cssexplore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/honeybbq/cssexplore/pkg/cxerrors"
)

// ConfigFileName is the project configuration file looked up by FindConfig.
const ConfigFileName = ".cssexplore.toml"

// Config is the decoded project configuration. Unset booleans are nil so
// they do not override options chosen elsewhere.
type Config struct {
	Path             string       `toml:"-"`
	IgnoreCharset    *bool        `toml:"ignore_charset"`
	IgnoreEmptyRules *bool        `toml:"ignore_empty_rules"`
	Parser           ParserConfig `toml:"parser"`
}

// ParserConfig configures the external CSS parser process.
type ParserConfig struct {
	Command []string `toml:"command"`
	Env     []string `toml:"env"`
	Timeout string   `toml:"timeout"`
}

// FindConfig walks from startDir up to the filesystem root looking for
// ConfigFileName.
func FindConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadConfig decodes the TOML file at path. Unknown keys and malformed
// durations are rejected.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, cxerrors.New(cxerrors.KindConfig, fmt.Errorf("decode %s: %w", path, err))
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		sort.Strings(keys)
		return nil, cxerrors.New(cxerrors.KindConfig, fmt.Errorf("%s: unknown keys %s", path, strings.Join(keys, ", ")))
	}
	if _, err := cfg.Parser.timeout(); err != nil {
		return nil, cxerrors.New(cxerrors.KindConfig, fmt.Errorf("%s: %w", path, err))
	}
	cfg.Path = path
	return &cfg, nil
}

// Apply copies every value set in the file onto opts.
func (c *Config) Apply(opts *FormatOptions) error {
	if c == nil || opts == nil {
		return nil
	}
	if c.IgnoreCharset != nil {
		opts.IgnoreCharset = *c.IgnoreCharset
	}
	if c.IgnoreEmptyRules != nil {
		opts.IgnoreEmptyRules = *c.IgnoreEmptyRules
	}
	timeout, err := c.Parser.timeout()
	if err != nil {
		return cxerrors.New(cxerrors.KindConfig, err)
	}
	if timeout > 0 {
		opts.Parse.Timeout = timeout
	}
	return nil
}

func (p ParserConfig) timeout() (time.Duration, error) {
	if p.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(p.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid parser timeout %q: %w", p.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid parser timeout %q: negative", p.Timeout)
	}
	return d, nil
}
