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

package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	fileIndent   = 4  // spaces to indent file entries
	ruleIndent   = 8  // spaces to indent rule entries
	nameWidth    = 35 // Base width for filename
	statusWidth  = 15 // Width for status text
	changesWidth = 4  // Width for the change count
)

// 🎯 FileOperation represents the outcome of running a rule set over a file
type FileOperation struct {
	Path       string // File path
	Status     string // Operation status
	Changes    int    // Number of edits made by all rules
	IsModified bool   // Whether the rules changed the text
	IsDryRun   bool   // Whether the change was only previewed
	Err        error  // Failure, if any
}

// 📋 RuleOperation is one rule's share of a FileOperation
type RuleOperation struct {
	Name    string
	Changes int
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
	files   int
	changed int
	failed  int
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 📝 formatFileOperation formats a file operation for display
func (l *Logger) formatFileOperation(op FileOperation) string {
	var symbol rune
	var symbolColor color.Attribute
	switch {
	case op.Err != nil:
		symbol = '✗'
		symbolColor = color.FgRed
	case op.IsModified && op.IsDryRun:
		symbol = '~'
		symbolColor = color.FgYellow
	case op.IsModified:
		symbol = '⟳'
		symbolColor = color.FgBlue
	default:
		symbol = '•'
		symbolColor = color.FgCyan
	}

	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, op.Path),
		fmt.Sprintf("%-*s", statusWidth, op.Status),
		color.New(color.Faint).Sprint(fmt.Sprintf("%*d", changesWidth, op.Changes)))
}

// 📝 LogFileOperation logs a file operation
func (l *Logger) LogFileOperation(ctx context.Context, op FileOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.files++
	switch {
	case op.Err != nil:
		l.failed++
	case op.IsModified:
		l.changed++
	}

	fmt.Fprintln(l.console, l.formatFileOperation(op))

	ev := l.zlog.Info()
	if op.Err != nil {
		ev = l.zlog.Error().Err(op.Err)
	}
	ev.Str("file", op.Path).
		Str("status", op.Status).
		Int("changes", op.Changes).
		Bool("is_modified", op.IsModified).
		Bool("is_dry_run", op.IsDryRun).
		Msg("file operation")
}

// 📝 LogRuleOperations logs the per-rule breakdown of a file; rules that
// changed nothing are only sent to zerolog
func (l *Logger) LogRuleOperations(ctx context.Context, path string, ops []RuleOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, op := range ops {
		l.zlog.Debug().Str("file", path).Str("rule", op.Name).Int("changes", op.Changes).Msg("rule operation")
		if op.Changes == 0 {
			continue
		}
		fmt.Fprintf(l.console, "%*s%s %s\n", ruleIndent, "",
			color.New(color.Faint).Sprint(op.Name),
			color.New(color.FgBlue).Sprintf("×%d", op.Changes))
	}
}

// 📝 Diff prints a unified diff
func (l *Logger) Diff(diff string) {
	if diff == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.console, diff)
}

// 📝 Summary logs the totals of every file operation so far
func (l *Logger) Summary() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "\n%s %d files, %d changed, %d failed\n",
		color.New(color.Bold).Sprint("patchrc"), l.files, l.changed, l.failed)
	l.zlog.Info().Int("files", l.files).Int("changed", l.changed).Int("failed", l.failed).Msg("summary")
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	patchrcText := color.New(color.Bold, color.FgCyan).Sprint("patchrc")
	fmt.Fprintf(l.console, "\n%s %s\n\n", patchrcText, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 🔍 Validation reports the outcome of a check, mirroring it to zerolog
func (l *Logger) Validation(valid bool, description string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case valid:
		pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}).WithWriter(l.console).Println(description)
		l.zlog.Info().Msg(description)
	case err != nil:
		pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).WithWriter(l.console).Println(description)
		pterm.Error.WithWriter(l.console).Println(err)
		l.zlog.Error().Err(err).Msg(description)
	default:
		pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"}).WithWriter(l.console).Println(description)
		l.zlog.Warn().Msg(description)
	}
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}
