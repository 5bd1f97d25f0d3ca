package rule

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func zipBlock() *BlockInsertion {
	return &BlockInsertion{
		Anchor:     Contains("if (status) {"),
		Confirm:    Contains("conditions.push(A);"),
		Terminator: Contains("if (excludeDnc === 'true') {"),
		Lines:      []string{"if (zip) {", "conditions.push(B);", "}"},
	}
}

func TestScanner_BlockInsertion(t *testing.T) {
	s, err := NewScanner("zip", ScannerConfig{Block: zipBlock()})
	require.NoError(t, err)

	in := []string{"if (status) {", "conditions.push(A);", "}", "if (excludeDnc === 'true') {"}
	want := []string{
		"if (status) {", "conditions.push(A);", "}",
		"",
		"if (zip) {", "conditions.push(B);", "}",
		"if (excludeDnc === 'true') {",
	}

	got, n, err := s.ApplyLines(in)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ApplyLines() mismatch (-want +got):\n%s", diff)
	}

	// a second pass replaces the previously inserted block instead of
	// stacking another one
	again, _, err := s.ApplyLines(got)
	require.NoError(t, err)
	if diff := cmp.Diff(want, again); diff != "" {
		t.Errorf("second ApplyLines() mismatch (-want +got):\n%s", diff)
	}
}

func TestScanner_SkipRegionDropsStaleLines(t *testing.T) {
	s, err := NewScanner("zip", ScannerConfig{Block: zipBlock()})
	require.NoError(t, err)

	in := []string{
		"before",
		"if (status) {", "conditions.push(A);", "}",
		"if (old) {", "conditions.push(OLD);", "}",
		"if (excludeDnc === 'true') {",
		"after",
	}
	want := []string{
		"before",
		"if (status) {", "conditions.push(A);", "}",
		"",
		"if (zip) {", "conditions.push(B);", "}",
		"if (excludeDnc === 'true') {",
		"after",
	}

	got, _, err := s.ApplyLines(in)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ApplyLines() mismatch (-want +got):\n%s", diff)
	}
}

func TestScanner_BlockNeedsConfirm(t *testing.T) {
	s, err := NewScanner("zip", ScannerConfig{Block: zipBlock()})
	require.NoError(t, err)

	in := []string{"if (status) {", "somethingElse();", "}", "tail"}
	got, n, err := s.ApplyLines(in)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, in, got)

	// anchor on the last line has no next line to confirm
	in = []string{"x", "if (status) {"}
	got, _, err = s.ApplyLines(in)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestScanner_NoSeparator(t *testing.T) {
	b := zipBlock()
	b.NoSeparator = true
	s, err := NewScanner("zip", ScannerConfig{Block: b})
	require.NoError(t, err)

	got, _, err := s.ApplyLines([]string{"if (status) {", "conditions.push(A);", "}", "if (excludeDnc === 'true') {"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"if (status) {", "conditions.push(A);", "}",
		"if (zip) {", "conditions.push(B);", "}",
		"if (excludeDnc === 'true') {",
	}, got)
}

func TestScanner_UnterminatedSkip(t *testing.T) {
	s, err := NewScanner("zip", ScannerConfig{Block: zipBlock()})
	require.NoError(t, err)

	in := []string{"if (status) {", "conditions.push(A);", "}", "trailing one", "trailing two"}
	got, n, err := s.ApplyLines(in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnterminatedSkip))
	assert.Contains(t, err.Error(), "block inserted at line 1, 2 trailing lines would be dropped")
	assert.Nil(t, got)
	assert.Zero(t, n)
}

func TestScanner_TerminatorFallsThrough(t *testing.T) {
	s, err := NewScanner("zip", ScannerConfig{
		Block: zipBlock(),
		Field: &Injection{Match: Contains("excludeDnc"), Line: "// injected"},
	})
	require.NoError(t, err)

	got, n, err := s.ApplyLines([]string{"if (status) {", "conditions.push(A);", "}", "dropped", "if (excludeDnc === 'true') {"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{
		"if (status) {", "conditions.push(A);", "}",
		"",
		"if (zip) {", "conditions.push(B);", "}",
		"if (excludeDnc === 'true') {",
		"// injected",
	}, got)
}

func TestScanner_WhileSkipping(t *testing.T) {
	anchor := []string{"if (status) {", "conditions.push(A);", "}"}
	inserted := []string{"", "if (zip) {", "conditions.push(B);", "}"}
	term := "if (excludeDnc === 'true') {"

	join := func(parts ...[]string) []string {
		var out []string
		for _, p := range parts {
			out = append(out, p...)
		}
		return out
	}

	tests := []struct {
		name      string
		cfg       ScannerConfig
		in        []string
		want      []string
		wantEdits int
	}{
		{
			name:      "anchor_starts_a_new_block",
			cfg:       ScannerConfig{Block: zipBlock()},
			in:        join(anchor, []string{"x"}, anchor, []string{"y", term}),
			want:      join(anchor, inserted, anchor, inserted, []string{term}),
			wantEdits: 2,
		},
		{
			name: "header_line_is_dropped",
			cfg: ScannerConfig{
				Header: &HeaderRewrite{Match: Contains("= req.query;"), Old: "state", New: "state, zip"},
				Block:  zipBlock(),
			},
			in:        join(anchor, []string{"const { state } = req.query;", term}),
			want:      join(anchor, inserted, []string{term}),
			wantEdits: 1,
		},
		{
			name:      "anchor_without_confirm_is_dropped",
			cfg:       ScannerConfig{Block: zipBlock()},
			in:        join(anchor, []string{"if (status) {", "other();", term}),
			want:      join(anchor, inserted, []string{term}),
			wantEdits: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewScanner(tt.name, tt.cfg)
			require.NoError(t, err)

			got, n, err := s.ApplyLines(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.wantEdits, n)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ApplyLines() mismatch (-want +got):\n%s", diff)
			}

			again, _, err := s.ApplyLines(got)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, again); diff != "" {
				t.Errorf("second ApplyLines() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScanner_UnterminatedSkipAfterNestedBlock(t *testing.T) {
	s, err := NewScanner("zip", ScannerConfig{Block: zipBlock()})
	require.NoError(t, err)

	in := []string{
		"if (status) {", "conditions.push(A);", "}",
		"x",
		"if (status) {", "conditions.push(A);", "}",
		"tail",
	}
	_, _, err = s.ApplyLines(in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnterminatedSkip))
	assert.Contains(t, err.Error(), "block inserted at line 5, 1 trailing lines would be dropped")
}

func TestScanner_Injections(t *testing.T) {
	s, err := NewScanner("owner", ScannerConfig{
		Field: &Injection{
			Match: Contains("ownerUserId: leadOperational.ownerUserId,"),
			Line:  "        ownerName: users.username,",
		},
		Join: &Injection{
			Match: Contains(".innerJoin(canonicalPersons"),
			Line:  "      .leftJoin(users, eq(leadOperational.ownerUserId, users.id))",
		},
	})
	require.NoError(t, err)

	in := []string{
		"      .select({",
		"        ownerUserId: leadOperational.ownerUserId,",
		"      })",
		"      .from(leadOperational)",
		"      .innerJoin(canonicalPersons, eq(a, b))",
		"      .where(and(...conditions));",
	}
	want := []string{
		"      .select({",
		"        ownerUserId: leadOperational.ownerUserId,",
		"        ownerName: users.username,",
		"      })",
		"      .from(leadOperational)",
		"      .innerJoin(canonicalPersons, eq(a, b))",
		"      .leftJoin(users, eq(leadOperational.ownerUserId, users.id))",
		"      .where(and(...conditions));",
	}

	got, n, err := s.ApplyLines(in)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ApplyLines() mismatch (-want +got):\n%s", diff)
	}
}

func TestScanner_Header(t *testing.T) {
	s, err := NewScanner("params", ScannerConfig{
		Header: &HeaderRewrite{
			Match: Contains("= req.query;"),
			Old:   "state, onlyContactable",
			New:   "state, zip, onlyContactable",
		},
	})
	require.NoError(t, err)

	got, n, err := s.ApplyLines([]string{
		"const { batchId, status, state, onlyContactable } = req.query;",
		"const { state, onlyContactable } = other;",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{
		"const { batchId, status, state, zip, onlyContactable } = req.query;",
		"const { state, onlyContactable } = other;",
	}, got)
}

func TestScanner_NoMatchesConservesLines(t *testing.T) {
	s, err := NewScanner("all", ScannerConfig{
		Header: &HeaderRewrite{Match: Contains("HEADER"), Old: "a", New: "b"},
		Block:  zipBlock(),
		Field:  &Injection{Match: Contains("FIELD"), Line: "f"},
		Join:   &Injection{Match: Contains("JOIN"), Line: "j"},
	})
	require.NoError(t, err)

	for _, in := range [][]string{
		{},
		{""},
		{"one", "two", "", "  three  "},
		{"if (status) {", "not the confirm line", "}"},
	} {
		got, n, err := s.ApplyLines(in)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Equal(t, in, got)
	}
}

func TestScanner_PriorityExclusivity(t *testing.T) {
	all := ScannerConfig{
		Header: &HeaderRewrite{Match: Contains("MARK"), Old: "MARK", New: "HEADER"},
		Block: &BlockInsertion{
			Anchor:     Contains("MARK"),
			Confirm:    Contains("confirm"),
			Terminator: Contains("end"),
			Lines:      []string{"block"},
		},
		Field: &Injection{Match: Contains("MARK"), Line: "field"},
		Join:  &Injection{Match: Contains("MARK"), Line: "join"},
	}
	in := []string{"MARK", "confirm", "close", "end"}

	tests := []struct {
		name string
		cfg  func(c ScannerConfig) ScannerConfig
		want []string
	}{
		{
			name: "header_wins",
			cfg:  func(c ScannerConfig) ScannerConfig { return c },
			want: []string{"HEADER", "confirm", "close", "end"},
		},
		{
			name: "block_beats_injections",
			cfg:  func(c ScannerConfig) ScannerConfig { c.Header = nil; return c },
			want: []string{"MARK", "confirm", "close", "", "block", "end"},
		},
		{
			name: "field_beats_join",
			cfg:  func(c ScannerConfig) ScannerConfig { c.Header, c.Block = nil, nil; return c },
			want: []string{"MARK", "field", "confirm", "close", "end"},
		},
		{
			name: "join_alone",
			cfg:  func(c ScannerConfig) ScannerConfig { c.Header, c.Block, c.Field = nil, nil, nil; return c },
			want: []string{"MARK", "join", "confirm", "close", "end"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewScanner(tt.name, tt.cfg(all))
			require.NoError(t, err)

			got, n, err := s.ApplyLines(in)
			require.NoError(t, err)
			assert.Equal(t, 1, n)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewScanner_Validation(t *testing.T) {
	tests := []struct {
		name      string
		cfg       ScannerConfig
		wantError string
	}{
		{
			name:      "no_actions",
			cfg:       ScannerConfig{},
			wantError: "no actions configured",
		},
		{
			name:      "header_without_old",
			cfg:       ScannerConfig{Header: &HeaderRewrite{Match: Contains("x")}},
			wantError: "header needs a match and old text",
		},
		{
			name:      "block_without_terminator",
			cfg:       ScannerConfig{Block: &BlockInsertion{Anchor: Contains("a"), Confirm: Contains("b"), Lines: []string{"x"}}},
			wantError: "block needs anchor, confirm and terminator",
		},
		{
			name:      "block_without_lines",
			cfg:       ScannerConfig{Block: &BlockInsertion{Anchor: Contains("a"), Confirm: Contains("b"), Terminator: Contains("c")}},
			wantError: "block has no lines to insert",
		},
		{
			name:      "join_without_match",
			cfg:       ScannerConfig{Join: &Injection{Line: "x"}},
			wantError: "join injection needs a match",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScanner(tt.name, tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantError)
		})
	}
}

func TestScanState_String(t *testing.T) {
	assert.Equal(t, "scanning", stateScanning.String())
	assert.Equal(t, "skipping", stateSkipping.String())
	assert.Equal(t, "unknown", scanState(7).String())
}
