package league

import "fmt"

type State struct {
	Season int
	Phase  Phase
	Sub    int
}

func Initial() State {
	return State{Season: 1, Phase: Preseason, Sub: StartSub(Preseason)}
}

func (s State) Week() int {
	return Week(s.Phase, s.Sub)
}

func (s State) Label() string {
	return Label(s.Phase, s.Sub)
}

func (s State) String() string {
	return fmt.Sprintf("season %d %s", s.Season, s.Label())
}

func (s State) Validate() error {
	if s.Season < 1 {
		return fmt.Errorf("season must be positive, got %d", s.Season)
	}
	if !s.Phase.Valid() {
		return fmt.Errorf("unknown phase %q", s.Phase)
	}
	if s.Sub < StartSub(s.Phase) || s.Sub >= EndSub(s.Phase) {
		return fmt.Errorf("sub-phase %d out of range for %s", s.Sub, s.Phase)
	}
	return nil
}

// Before reports whether s precedes o in league time.
func (s State) Before(o State) bool {
	if s.Season != o.Season {
		return s.Season < o.Season
	}
	si, oi := index(s.Phase), index(o.Phase)
	if si != oi {
		return si < oi
	}
	return s.Sub < o.Sub
}

type Transition struct {
	From     State
	To       State
	Rollover bool
	Skipped  bool
}

func Advance(s State) Transition {
	t := Transition{From: s}
	sub := s.Sub + 1
	if sub < EndSub(s.Phase) {
		t.To = State{Season: s.Season, Phase: s.Phase, Sub: sub}
		return t
	}

	next := Next(s.Phase)
	t.To = State{Season: s.Season, Phase: next, Sub: StartSub(next)}
	if next == Preseason {
		t.To.Season++
		t.Rollover = true
	}
	return t
}

// NeedsWeek15Choice reports whether the transition lands on regular-season Week 15.
func (t Transition) NeedsWeek15Choice() bool {
	return t.To.Phase == Regular && t.To.Sub == Week15Sub
}

func (t Transition) SkipToConfChamp() Transition {
	return Transition{
		From:    t.From,
		To:      State{Season: t.From.Season, Phase: ConfChamp, Sub: StartSub(ConfChamp)},
		Skipped: true,
	}
}
