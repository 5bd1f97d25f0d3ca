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
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

type hclMatch struct {
	Contains string `hcl:"contains,optional"`
	Equals   string `hcl:"equals,optional"`
	Regex    string `hcl:"regex,optional"`
}

func (m hclMatch) model() MatchConfig {
	return MatchConfig{Contains: m.Contains, Equals: m.Equals, Regex: m.Regex}
}

type hclInject struct {
	Match hclMatch `hcl:"match,block"`
	Line  string   `hcl:"line"`
}

func (i *hclInject) model() *InjectConfig {
	if i == nil {
		return nil
	}
	return &InjectConfig{Match: i.Match.model(), Line: i.Line}
}

type hclRule struct {
	Name     string `hcl:"name,label"`
	Collapse *struct {
		Fragment      string `hcl:"fragment,optional"`
		FragmentRegex string `hcl:"fragment_regex,optional"`
		Replacement   string `hcl:"replacement"`
	} `hcl:"collapse,block"`
	Literal *struct {
		Old string `hcl:"old"`
		New string `hcl:"new"`
	} `hcl:"literal,block"`
	Scan *struct {
		Header *struct {
			Match hclMatch `hcl:"match,block"`
			Old   string   `hcl:"old"`
			New   string   `hcl:"new"`
		} `hcl:"header,block"`
		Block *struct {
			Anchor      hclMatch `hcl:"anchor,block"`
			Confirm     hclMatch `hcl:"confirm,block"`
			Terminator  hclMatch `hcl:"terminator,block"`
			Lines       []string `hcl:"lines"`
			NoSeparator bool     `hcl:"no_separator,optional"`
		} `hcl:"block,block"`
		Field *hclInject `hcl:"field,block"`
		Join  *hclInject `hcl:"join,block"`
	} `hcl:"scan,block"`
}

type hclRuleSet struct {
	Files []string  `hcl:"files,optional"`
	Rules []hclRule `hcl:"rule,block"`
}

// 📝 Parse parses the rule set from HCL. Rules are labelled blocks:
//
//	rule "dedupe-owner" {
//	  collapse {
//	    fragment    = "ownerName: users.username,"
//	    replacement = "ownerName: users.username,\n        "
//	  }
//	}
func (p *HCLParser) Parse(ctx context.Context, data []byte, filename string) (*RuleSet, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, filepath.Base(filename))
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var hclCfg hclRuleSet
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	cfg := &RuleSet{Files: hclCfg.Files}
	for _, r := range hclCfg.Rules {
		rc := RuleConfig{Name: r.Name}
		if c := r.Collapse; c != nil {
			rc.Collapse = &CollapseConfig{Fragment: c.Fragment, FragmentRegex: c.FragmentRegex, Replacement: c.Replacement}
		}
		if l := r.Literal; l != nil {
			rc.Literal = &LiteralConfig{Old: l.Old, New: l.New}
		}
		if s := r.Scan; s != nil {
			rc.Scan = &ScanConfig{
				Field: s.Field.model(),
				Join:  s.Join.model(),
			}
			if h := s.Header; h != nil {
				rc.Scan.Header = &HeaderConfig{Match: h.Match.model(), Old: h.Old, New: h.New}
			}
			if b := s.Block; b != nil {
				rc.Scan.Block = &BlockConfig{
					Anchor:      b.Anchor.model(),
					Confirm:     b.Confirm.model(),
					Terminator:  b.Terminator.model(),
					Lines:       b.Lines,
					NoSeparator: b.NoSeparator,
				}
			}
		}
		cfg.Rules = append(cfg.Rules, rc)
	}

	return cfg, nil
}
