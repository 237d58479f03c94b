package cli

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// fileConfig is the on-disk CLI configuration.
//
//	format = "json"
//	verbose = true
//	specs_dir = "./specs"
//	expression_validation = true
type fileConfig struct {
	Format               string `toml:"format"`
	Verbose              bool   `toml:"verbose"`
	SpecsDir             string `toml:"specs_dir"`
	ExpressionValidation bool   `toml:"expression_validation"`

	defined map[string]bool
}

func loadConfig(path string) (*fileConfig, error) {
	var cfg fileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}

	cfg.defined = make(map[string]bool)
	for _, key := range []string{"format", "verbose", "specs_dir", "expression_validation"} {
		if meta.IsDefined(key) {
			cfg.defined[key] = true
		}
	}
	return &cfg, nil
}

// apply overlays keys present in the file onto opts. Flags the user set
// explicitly are left alone.
func (c *fileConfig) apply(opts *RootOptions, flagChanged func(string) bool) {
	if c.defined["format"] && !flagChanged("format") {
		opts.Format = c.Format
	}
	if c.defined["verbose"] && !flagChanged("verbose") {
		opts.Verbose = c.Verbose
	}
	if c.defined["specs_dir"] {
		opts.SpecsDir = c.SpecsDir
	}
	if c.defined["expression_validation"] {
		opts.ExpressionValidation = c.ExpressionValidation
	}
}
