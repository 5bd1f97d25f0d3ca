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

// blockCarry is how many input lines a block insertion copies before its
// synthesized lines: the anchor, the confirming line and the closing line
const blockCarry = 3

// ✏️ HeaderRewrite substitutes text inside a single matching line
type HeaderRewrite struct {
	Match Matcher
	Old   string
	New   string
}

// 🧱 BlockInsertion adds a new block after an existing anchor/confirm pair
// and suppresses everything up to the terminator line
type BlockInsertion struct {
	Anchor     Matcher
	Confirm    Matcher
	Terminator Matcher
	Lines      []string

	// NoSeparator drops the blank line emitted before Lines
	NoSeparator bool
}

// 💉 Injection emits one extra line after every matching line
type Injection struct {
	Match Matcher
	Line  string
}

// ScannerConfig holds the prioritized actions of a Scanner; nil actions are
// disabled
type ScannerConfig struct {
	Header *HeaderRewrite
	Block  *BlockInsertion
	Field  *Injection
	Join   *Injection
}

// 📏 Scanner is a single-pass line rewriter. Per line the first matching
// action wins, in order: header rewrite, block insertion, field injection,
// join injection. While a skip region is open a new anchor/confirm pair
// still starts a block; every other line up to the terminator is dropped,
// header lines included.
type Scanner struct {
	name     string
	cfg      ScannerConfig
	handlers []lineHandler
}

var _ LineRule = (*Scanner)(nil)

// lineHandler tries one action on the line at sc.pos and reports whether it
// consumed it
type lineHandler func(sc *scan, line string) bool

// NewScanner validates cfg and builds the scanner
func NewScanner(name string, cfg ScannerConfig) (*Scanner, error) {
	s := &Scanner{name: name, cfg: cfg}

	if h := cfg.Header; h != nil {
		if h.Match == nil || h.Old == "" {
			return nil, errors.Errorf("scanner %q: header needs a match and old text", name)
		}
		s.handlers = append(s.handlers, (*scan).header)
	}
	if b := cfg.Block; b != nil {
		if b.Anchor == nil || b.Confirm == nil || b.Terminator == nil {
			return nil, errors.Errorf("scanner %q: block needs anchor, confirm and terminator", name)
		}
		if len(b.Lines) == 0 {
			return nil, errors.Errorf("scanner %q: block has no lines to insert", name)
		}
		s.handlers = append(s.handlers, (*scan).block)
	}
	for _, inj := range []struct {
		what string
		i    *Injection
	}{{"field", cfg.Field}, {"join", cfg.Join}} {
		if inj.i == nil {
			continue
		}
		if inj.i.Match == nil {
			return nil, errors.Errorf("scanner %q: %s injection needs a match", name, inj.what)
		}
		i := inj.i
		s.handlers = append(s.handlers, func(sc *scan, line string) bool { return sc.inject(i, line) })
	}

	if len(s.handlers) == 0 {
		return nil, errors.Errorf("scanner %q: no actions configured", name)
	}
	return s, nil
}

func (s *Scanner) Name() string { return s.name }

// ApplyLines runs the scan. A skip region still open at the end of input
// returns ErrUnterminatedSkip instead of dropping the trailing lines.
func (s *Scanner) ApplyLines(lines []string) ([]string, int, error) {
	sc := &scan{
		Scanner: s,
		lines:   lines,
		out:     make([]string, 0, len(lines)),
	}
	for sc.pos < len(sc.lines) {
		sc.step()
	}
	if sc.state == stateSkipping {
		return nil, 0, errors.Errorf("%w: scanner %q: block inserted at line %d, %d trailing lines would be dropped",
			ErrUnterminatedSkip, s.name, sc.skipFrom, sc.dropped)
	}
	return sc.out, sc.edits, nil
}

// scanState is the state of the scanner machine
type scanState int

const (
	stateScanning scanState = iota
	stateSkipping
)

func (s scanState) String() string {
	switch s {
	case stateScanning:
		return "scanning"
	case stateSkipping:
		return "skipping"
	default:
		return "unknown"
	}
}

// scan is the state of one ApplyLines call
type scan struct {
	*Scanner
	lines []string
	pos   int
	state scanState
	out   []string
	edits int

	// skipFrom is the 1-based input line of the block that opened the
	// current skip region
	skipFrom int
	dropped  int
}

// step consumes at least one input line.
//
//	scanning + action match -> scanning, emit action output
//	scanning + no match     -> scanning, emit line
//	scanning + block        -> skipping, emit carried + inserted lines
//	skipping + block        -> skipping, emit carried + inserted lines
//	skipping + terminator   -> scanning, line handled as scanning
//	skipping + other        -> skipping, emit nothing
func (sc *scan) step() {
	line := sc.lines[sc.pos]

	switch sc.state {
	case stateSkipping:
		if sc.block(line) {
			return
		}
		if !sc.cfg.Block.Terminator.Match(line) {
			sc.dropped++
			sc.pos++
			return
		}
		sc.state = stateScanning
		fallthrough
	case stateScanning:
		for _, h := range sc.handlers {
			if h(sc, line) {
				return
			}
		}
		sc.emit(line)
		sc.pos++
	}
}

func (sc *scan) emit(lines ...string) {
	sc.out = append(sc.out, lines...)
}

func (sc *scan) header(line string) bool {
	h := sc.cfg.Header
	if !h.Match.Match(line) {
		return false
	}
	rewritten := strings.ReplaceAll(line, h.Old, h.New)
	if rewritten != line {
		sc.edits++
	}
	sc.emit(rewritten)
	sc.pos++
	return true
}

func (sc *scan) block(line string) bool {
	b := sc.cfg.Block
	if !b.Anchor.Match(line) || sc.pos+1 >= len(sc.lines) || !b.Confirm.Match(sc.lines[sc.pos+1]) {
		return false
	}

	end := min(sc.pos+blockCarry, len(sc.lines))
	sc.emit(sc.lines[sc.pos:end]...)
	if !b.NoSeparator {
		sc.emit("")
	}
	sc.emit(b.Lines...)
	sc.edits++

	sc.skipFrom = sc.pos + 1
	sc.dropped = 0
	sc.state = stateSkipping
	sc.pos = end
	return true
}

func (sc *scan) inject(i *Injection, line string) bool {
	if !i.Match.Match(line) {
		return false
	}
	sc.emit(line, i.Line)
	sc.edits++
	sc.pos++
	return true
}
