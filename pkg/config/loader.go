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
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for rule set parsers
type Parser interface {
	// 📝 Parse parses the rule set from bytes
	Parse(ctx context.Context, data []byte, filename string) (*RuleSet, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// LoadConfig loads a rule set from the given path.
// The format is determined by the file extension:
// - .json for JSON
// - .yaml or .yml for YAML
// - .hcl for HCL
// - .patchrc will try both YAML and HCL formats
func LoadConfig(ctx context.Context, path string) (*RuleSet, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading rule set")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	var cfg *RuleSet
	if filepath.Ext(path) == ".patchrc" || filepath.Base(path) == ".patchrc" {
		cfg, err = parseEither(ctx, data, path)
	} else {
		p := GetParser(path)
		if p == nil {
			return nil, errors.Errorf("unsupported file extension %q", strings.ToLower(filepath.Ext(path)))
		}
		cfg, err = p.Parse(ctx, data, path)
	}
	if err != nil {
		return nil, err
	}

	cfg.location = path
	if err := Validate(ctx, cfg); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// parseEither tries YAML first, then HCL
func parseEither(ctx context.Context, data []byte, path string) (*RuleSet, error) {
	cfg, yamlErr := (&YAMLParser{}).Parse(ctx, data, path)
	if yamlErr == nil {
		return cfg, nil
	}

	cfg, hclErr := (&HCLParser{}).Parse(ctx, data, path)
	if hclErr == nil {
		return cfg, nil
	}

	return nil, errors.Errorf("failed to parse %s as YAML (%v) or HCL: %w", filepath.Base(path), yamlErr, hclErr)
}
