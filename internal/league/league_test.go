package league

import "testing"

func TestCycleClosure(t *testing.T) {
	start := Initial()
	s := start
	n := CycleLength()
	for i := 0; i < n; i++ {
		tr := Advance(s)
		if tr.To.Season < s.Season {
			t.Fatalf("season went backwards at step %d: %v -> %v", i, s, tr.To)
		}
		if !s.Before(tr.To) {
			t.Fatalf("step %d did not move forward: %v -> %v", i, s, tr.To)
		}
		if err := tr.To.Validate(); err != nil {
			t.Fatalf("step %d produced invalid state: %v", i, err)
		}
		s = tr.To
	}

	if s.Phase != Preseason || s.Sub != 0 {
		t.Errorf("after %d advances expected preseason/0, got %s/%d", n, s.Phase, s.Sub)
	}
	if s.Season != start.Season+1 {
		t.Errorf("expected season %d, got %d", start.Season+1, s.Season)
	}
}

func TestCycleLength(t *testing.T) {
	// 1 + 17 + 1 + 4 + 1 + 4 + 1 + 1 + 1
	if got := CycleLength(); got != 31 {
		t.Errorf("expected cycle length 31, got %d", got)
	}
}

func TestAdvance(t *testing.T) {
	tests := map[string]struct {
		from     State
		to       State
		rollover bool
		week15   bool
	}{
		"preseason to week 1": {
			from: State{Season: 1, Phase: Preseason, Sub: 0},
			to:   State{Season: 1, Phase: Regular, Sub: 0},
		},
		"within regular": {
			from: State{Season: 1, Phase: Regular, Sub: 3},
			to:   State{Season: 1, Phase: Regular, Sub: 4},
		},
		"entering sub-phase 15 prompts": {
			from:   State{Season: 1, Phase: Regular, Sub: 14},
			to:     State{Season: 1, Phase: Regular, Sub: 15},
			week15: true,
		},
		"last regular slot to conference championships": {
			from: State{Season: 2, Phase: Regular, Sub: 16},
			to:   State{Season: 2, Phase: ConfChamp, Sub: 0},
		},
		"bowl to players leaving": {
			from: State{Season: 2, Phase: Bowl, Sub: 3},
			to:   State{Season: 2, Phase: PlayersLeaving, Sub: 0},
		},
		"transfer portal starts at 1": {
			from: State{Season: 2, Phase: PlayersLeaving, Sub: 0},
			to:   State{Season: 2, Phase: TransferPortal, Sub: 1},
		},
		"transfer portal continues to week 4": {
			from: State{Season: 2, Phase: TransferPortal, Sub: 3},
			to:   State{Season: 2, Phase: TransferPortal, Sub: 4},
		},
		"transfer portal ends after week 4": {
			from: State{Season: 2, Phase: TransferPortal, Sub: 4},
			to:   State{Season: 2, Phase: PositionChanges, Sub: 0},
		},
		"encourage transfers rolls the season": {
			from:     State{Season: 2, Phase: EncourageTransfers, Sub: 0},
			to:       State{Season: 3, Phase: Preseason, Sub: 0},
			rollover: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			tr := Advance(tc.from)
			if tr.To != tc.to {
				t.Errorf("expected %+v, got %+v", tc.to, tr.To)
			}
			if tr.Rollover != tc.rollover {
				t.Errorf("expected rollover %v, got %v", tc.rollover, tr.Rollover)
			}
			if tr.NeedsWeek15Choice() != tc.week15 {
				t.Errorf("expected week 15 choice %v, got %v", tc.week15, tr.NeedsWeek15Choice())
			}
		})
	}
}

func TestSkipToConfChamp(t *testing.T) {
	tr := Advance(State{Season: 4, Phase: Regular, Sub: 14})
	if !tr.NeedsWeek15Choice() {
		t.Fatal("expected week 15 choice")
	}
	skipped := tr.SkipToConfChamp()
	want := State{Season: 4, Phase: ConfChamp, Sub: 0}
	if skipped.To != want {
		t.Errorf("expected %+v, got %+v", want, skipped.To)
	}
	if !skipped.Skipped || skipped.Rollover {
		t.Errorf("unexpected flags: %+v", skipped)
	}
	if !tr.From.Before(skipped.To) {
		t.Error("skip must move forward")
	}
}

// Week is derived from (phase, sub) the same way in every phase: the
// 1-based position within the phase.
func TestWeekDerivation(t *testing.T) {
	tests := map[string]struct {
		phase Phase
		sub   int
		week  int
		label string
	}{
		"preseason":       {Preseason, 0, 1, "Preseason"},
		"regular week 1":  {Regular, 0, 1, "Week 1"},
		"regular week 17": {Regular, 16, 17, "Week 17"},
		"conf champ":      {ConfChamp, 0, 1, "Conference Championships"},
		"semifinals":      {Bowl, 2, 3, "Semifinals"},
		"title game":      {Bowl, 3, 4, "National Championship"},
		"transfer week 1": {TransferPortal, 1, 1, "Transfer Week 1"},
		"transfer week 4": {TransferPortal, 4, 4, "Transfer Week 4"},
		"training":        {TrainingResults, 0, 1, "Training Results"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := Week(tc.phase, tc.sub); got != tc.week {
				t.Errorf("expected week %d, got %d", tc.week, got)
			}
			if got := Label(tc.phase, tc.sub); got != tc.label {
				t.Errorf("expected label %q, got %q", tc.label, got)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := map[string]struct {
		s     State
		valid bool
	}{
		"initial":             {Initial(), true},
		"zero season":         {State{Season: 0, Phase: Regular, Sub: 0}, false},
		"unknown phase":       {State{Season: 1, Phase: "offseason", Sub: 0}, false},
		"regular overflow":    {State{Season: 1, Phase: Regular, Sub: 17}, false},
		"transfer portal sub": {State{Season: 1, Phase: TransferPortal, Sub: 0}, false},
		"transfer portal end": {State{Season: 1, Phase: TransferPortal, Sub: 4}, true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			err := tc.s.Validate()
			if tc.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tc.valid && err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParsePhase(t *testing.T) {
	for _, p := range Phases() {
		got, err := ParsePhase(" " + string(p) + " ")
		if err != nil || got != p {
			t.Errorf("ParsePhase(%q) = %q, %v", p, got, err)
		}
	}
	if _, err := ParsePhase("playoffs"); err == nil {
		t.Error("expected error for unknown phase")
	}
}
