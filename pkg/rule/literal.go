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
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🔄 Literal replaces every occurrence of an exact substring
type Literal struct {
	name string
	old  string
	new  string
}

var _ TextRule = (*Literal)(nil)

// NewLiteral creates a literal rewrite of old to new
func NewLiteral(name, old, new string) (*Literal, error) {
	if old == "" {
		return nil, errors.Errorf("literal %q: old text is required", name)
	}
	return &Literal{name: name, old: old, new: new}, nil
}

func (r *Literal) Name() string { return r.name }

// ApplyText replaces non-overlapping occurrences left to right. Text without
// the literal is returned unchanged.
func (r *Literal) ApplyText(text string) (string, int) {
	n := strings.Count(text, r.old)
	if n == 0 {
		return text, 0
	}
	return strings.ReplaceAll(text, r.old, r.new), n
}
