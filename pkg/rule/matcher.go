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
	"fmt"
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🔍 Matcher decides whether a single line belongs to a pattern
type Matcher interface {
	// Match reports whether the line matches
	Match(line string) bool
	// String describes the pattern for logs and errors
	String() string
}

type containsMatcher string

// Contains matches lines containing substr anywhere
func Contains(substr string) Matcher {
	return containsMatcher(substr)
}

func (m containsMatcher) Match(line string) bool { return strings.Contains(line, string(m)) }
func (m containsMatcher) String() string         { return fmt.Sprintf("contains(%q)", string(m)) }

type equalsMatcher string

// Equals matches lines equal to s once surrounding whitespace is trimmed
func Equals(s string) Matcher {
	return equalsMatcher(strings.TrimSpace(s))
}

func (m equalsMatcher) Match(line string) bool { return strings.TrimSpace(line) == string(m) }
func (m equalsMatcher) String() string         { return fmt.Sprintf("equals(%q)", string(m)) }

type regexpMatcher struct {
	re *regexp.Regexp
}

// Regexp matches lines the compiled expression finds a match in
func Regexp(re *regexp.Regexp) Matcher {
	return regexpMatcher{re: re}
}

// CompileRegexp compiles expr and wraps it as a Matcher
func CompileRegexp(expr string) (Matcher, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.Errorf("compiling %q: %w", expr, err)
	}
	return Regexp(re), nil
}

func (m regexpMatcher) Match(line string) bool { return m.re.MatchString(line) }
func (m regexpMatcher) String() string         { return fmt.Sprintf("regexp(%q)", m.re.String()) }

type allMatcher []Matcher

// All matches when every matcher matches; an empty All matches nothing
func All(ms ...Matcher) Matcher {
	if len(ms) == 1 {
		return ms[0]
	}
	return allMatcher(ms)
}

func (m allMatcher) Match(line string) bool {
	if len(m) == 0 {
		return false
	}
	for _, mm := range m {
		if !mm.Match(line) {
			return false
		}
	}
	return true
}

func (m allMatcher) String() string { return join("all", m) }

type anyMatcher []Matcher

// Any matches when at least one matcher matches
func Any(ms ...Matcher) Matcher {
	if len(ms) == 1 {
		return ms[0]
	}
	return anyMatcher(ms)
}

func (m anyMatcher) Match(line string) bool {
	for _, mm := range m {
		if mm.Match(line) {
			return true
		}
	}
	return false
}

func (m anyMatcher) String() string { return join("any", m) }

func join(name string, ms []Matcher) string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = m.String()
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}
