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

package rule

import (
	"gitlab.com/tozd/go/errors"
)

// ErrUnterminatedSkip is returned when a scanner enters a skip region and
// the input ends before the terminator line is seen
var ErrUnterminatedSkip = errors.Base("unterminated skip region")

// 📋 Rule is a single named transformation step
type Rule interface {
	// Name identifies the rule in results and logs
	Name() string
}

// 📝 TextRule rewrites the whole text at once
type TextRule interface {
	Rule
	// ApplyText returns the rewritten text and how many edits were made
	ApplyText(text string) (string, int)
}

// 📏 LineRule rewrites the text as a sequence of lines
type LineRule interface {
	Rule
	// ApplyLines returns the rewritten lines and how many edits were made
	ApplyLines(lines []string) ([]string, int, error)
}
