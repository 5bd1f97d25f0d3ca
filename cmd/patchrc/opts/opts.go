package opts

import (
	"context"

	"github.com/walteh/patchrc/pkg/config"
	"github.com/walteh/patchrc/pkg/log"
	"github.com/walteh/patchrc/pkg/rule"
	"gitlab.com/tozd/go/errors"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	ConfigFile string
	Debug      bool
	Logger     *log.Logger

	// Set by Load
	Config *config.RuleSet
	Rules  []rule.Rule
}

// Load reads, validates and compiles the rule set named by ConfigFile
func (o *RootOpts) Load(ctx context.Context) error {
	cfg, err := config.LoadConfig(ctx, o.ConfigFile)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}

	rules, err := cfg.Compile()
	if err != nil {
		return errors.Errorf("compiling rules: %w", err)
	}

	o.Config = cfg
	o.Rules = rules
	return nil
}
