// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/rule"
	"gitlab.com/tozd/go/errors"
)

// 📚 RuleSet is a complete rule file: which files to edit and the ordered
// rules to run over each of them
type RuleSet struct {
	Files []string     `json:"files" yaml:"files"`
	Rules []RuleConfig `json:"rules" yaml:"rules"`

	location string
}

// 📋 RuleConfig describes one rule; exactly one of Collapse, Literal or Scan
// is set
type RuleConfig struct {
	Name     string          `json:"name" yaml:"name"`
	Collapse *CollapseConfig `json:"collapse,omitempty" yaml:"collapse,omitempty"`
	Literal  *LiteralConfig  `json:"literal,omitempty" yaml:"literal,omitempty"`
	Scan     *ScanConfig     `json:"scan,omitempty" yaml:"scan,omitempty"`
}

// 🧹 CollapseConfig dedupes runs of a fragment. Fragment is literal text,
// FragmentRegex a regular expression; set one.
type CollapseConfig struct {
	Fragment      string `json:"fragment,omitempty" yaml:"fragment,omitempty"`
	FragmentRegex string `json:"fragment_regex,omitempty" yaml:"fragment_regex,omitempty"`
	Replacement   string `json:"replacement" yaml:"replacement"`
}

// 🔄 LiteralConfig is an exact substring replacement
type LiteralConfig struct {
	Old string `json:"old" yaml:"old"`
	New string `json:"new" yaml:"new"`
}

// 🔍 MatchConfig selects lines; every field that is set must match
type MatchConfig struct {
	Contains string `json:"contains,omitempty" yaml:"contains,omitempty"`
	Equals   string `json:"equals,omitempty" yaml:"equals,omitempty"`
	Regex    string `json:"regex,omitempty" yaml:"regex,omitempty"`
}

// 📏 ScanConfig configures a line scanner
type ScanConfig struct {
	Header *HeaderConfig `json:"header,omitempty" yaml:"header,omitempty"`
	Block  *BlockConfig  `json:"block,omitempty" yaml:"block,omitempty"`
	Field  *InjectConfig `json:"field,omitempty" yaml:"field,omitempty"`
	Join   *InjectConfig `json:"join,omitempty" yaml:"join,omitempty"`
}

type HeaderConfig struct {
	Match MatchConfig `json:"match" yaml:"match"`
	Old   string      `json:"old" yaml:"old"`
	New   string      `json:"new" yaml:"new"`
}

type BlockConfig struct {
	Anchor      MatchConfig `json:"anchor" yaml:"anchor"`
	Confirm     MatchConfig `json:"confirm" yaml:"confirm"`
	Terminator  MatchConfig `json:"terminator" yaml:"terminator"`
	Lines       []string    `json:"lines" yaml:"lines"`
	NoSeparator bool        `json:"no_separator,omitempty" yaml:"no_separator,omitempty"`
}

type InjectConfig struct {
	Match MatchConfig `json:"match" yaml:"match"`
	Line  string      `json:"line" yaml:"line"`
}

// Location is the path the rule set was loaded from
func (cfg *RuleSet) Location() string {
	return cfg.location
}

// Root is the directory file globs are resolved against
func (cfg *RuleSet) Root() string {
	if cfg.location == "" {
		return "."
	}
	return filepath.Dir(cfg.location)
}

// 🔍 Validate checks the rule set without compiling it
func Validate(ctx context.Context, cfg *RuleSet) error {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Int("rules", len(cfg.Rules)).Int("files", len(cfg.Files)).Msg("validating rule set")

	if len(cfg.Rules) == 0 {
		return errors.Errorf("at least one rule is required")
	}

	seen := make(map[string]bool, len(cfg.Rules))
	for i, r := range cfg.Rules {
		if r.Name == "" {
			return errors.Errorf("rule %d: name is required", i)
		}
		if seen[r.Name] {
			return errors.Errorf("rule %d: duplicate name %q", i, r.Name)
		}
		seen[r.Name] = true

		kinds := 0
		for _, set := range []bool{r.Collapse != nil, r.Literal != nil, r.Scan != nil} {
			if set {
				kinds++
			}
		}
		if kinds != 1 {
			return errors.Errorf("rule %q: exactly one of collapse, literal or scan is required", r.Name)
		}

		if c := r.Collapse; c != nil && (c.Fragment == "") == (c.FragmentRegex == "") {
			return errors.Errorf("rule %q: collapse needs exactly one of fragment or fragment_regex", r.Name)
		}
	}

	for i, f := range cfg.Files {
		if f == "" {
			return errors.Errorf("files[%d]: empty pattern", i)
		}
	}

	return nil
}

// 🏭 Compile turns the rule set into runnable rules, in order
func (cfg *RuleSet) Compile() ([]rule.Rule, error) {
	rules := make([]rule.Rule, 0, len(cfg.Rules))
	for _, rc := range cfg.Rules {
		r, err := rc.compile()
		if err != nil {
			return nil, errors.Errorf("compiling rule %q: %w", rc.Name, err)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func (rc RuleConfig) compile() (rule.Rule, error) {
	switch {
	case rc.Collapse != nil:
		if rc.Collapse.FragmentRegex != "" {
			return rule.NewCollapseRegexp(rc.Name, rc.Collapse.FragmentRegex, rc.Collapse.Replacement)
		}
		return rule.NewCollapse(rc.Name, rc.Collapse.Fragment, rc.Collapse.Replacement)
	case rc.Literal != nil:
		return rule.NewLiteral(rc.Name, rc.Literal.Old, rc.Literal.New)
	case rc.Scan != nil:
		return rc.Scan.compile(rc.Name)
	default:
		return nil, errors.Errorf("no rule kind set")
	}
}

func (sc *ScanConfig) compile(name string) (rule.Rule, error) {
	var cfg rule.ScannerConfig

	if h := sc.Header; h != nil {
		m, err := h.Match.Matcher()
		if err != nil {
			return nil, errors.Errorf("header: %w", err)
		}
		cfg.Header = &rule.HeaderRewrite{Match: m, Old: h.Old, New: h.New}
	}

	if b := sc.Block; b != nil {
		anchor, err := b.Anchor.Matcher()
		if err != nil {
			return nil, errors.Errorf("block anchor: %w", err)
		}
		confirm, err := b.Confirm.Matcher()
		if err != nil {
			return nil, errors.Errorf("block confirm: %w", err)
		}
		terminator, err := b.Terminator.Matcher()
		if err != nil {
			return nil, errors.Errorf("block terminator: %w", err)
		}
		cfg.Block = &rule.BlockInsertion{
			Anchor:      anchor,
			Confirm:     confirm,
			Terminator:  terminator,
			Lines:       b.Lines,
			NoSeparator: b.NoSeparator,
		}
	}

	var err error
	if cfg.Field, err = sc.Field.injection(); err != nil {
		return nil, errors.Errorf("field: %w", err)
	}
	if cfg.Join, err = sc.Join.injection(); err != nil {
		return nil, errors.Errorf("join: %w", err)
	}

	return rule.NewScanner(name, cfg)
}

func (ic *InjectConfig) injection() (*rule.Injection, error) {
	if ic == nil {
		return nil, nil
	}
	m, err := ic.Match.Matcher()
	if err != nil {
		return nil, err
	}
	return &rule.Injection{Match: m, Line: ic.Line}, nil
}

// Matcher combines every set field with rule.All
func (mc MatchConfig) Matcher() (rule.Matcher, error) {
	var ms []rule.Matcher
	if mc.Contains != "" {
		ms = append(ms, rule.Contains(mc.Contains))
	}
	if mc.Equals != "" {
		ms = append(ms, rule.Equals(mc.Equals))
	}
	if mc.Regex != "" {
		m, err := rule.CompileRegexp(mc.Regex)
		if err != nil {
			return nil, err
		}
		ms = append(ms, m)
	}
	if len(ms) == 0 {
		return nil, errors.Errorf("match needs contains, equals or regex")
	}
	return rule.All(ms...), nil
}
