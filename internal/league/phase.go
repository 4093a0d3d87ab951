package league

import (
	"fmt"
	"strings"
)

type Phase string

const (
	Preseason          Phase = "preseason"
	Regular            Phase = "regular"
	ConfChamp          Phase = "conf_champ"
	Bowl               Phase = "bowl"
	PlayersLeaving     Phase = "players_leaving"
	TransferPortal     Phase = "transfer_portal"
	PositionChanges    Phase = "position_changes"
	TrainingResults    Phase = "training_results"
	EncourageTransfers Phase = "encourage_transfers"
)

// Week15Sub is the regular-season sub-phase whose entry pauses for the
// continue-or-skip choice.
const Week15Sub = 15

type phaseDef struct {
	phase    Phase
	slots    int
	startSub int
	label    func(sub int) string
}

func fixed(name string) func(int) string {
	return func(int) string { return name }
}

var bowlLabels = [...]string{"Bowl Week 1", "Bowl Week 2", "Semifinals", "National Championship"}

var cycle = [...]phaseDef{
	{Preseason, 1, 0, fixed("Preseason")},
	{Regular, 17, 0, func(sub int) string { return fmt.Sprintf("Week %d", sub+1) }},
	{ConfChamp, 1, 0, fixed("Conference Championships")},
	{Bowl, 4, 0, func(sub int) string {
		if sub >= 0 && sub < len(bowlLabels) {
			return bowlLabels[sub]
		}
		return fmt.Sprintf("Bowl Week %d", sub+1)
	}},
	{PlayersLeaving, 1, 0, fixed("Players Leaving")},
	{TransferPortal, 4, 1, func(sub int) string { return fmt.Sprintf("Transfer Week %d", sub) }},
	{PositionChanges, 1, 0, fixed("Position Changes")},
	{TrainingResults, 1, 0, fixed("Training Results")},
	{EncourageTransfers, 1, 0, fixed("Encourage Transfers")},
}

func index(p Phase) int {
	for i, def := range cycle {
		if def.phase == p {
			return i
		}
	}
	return -1
}

func Phases() []Phase {
	out := make([]Phase, len(cycle))
	for i, def := range cycle {
		out[i] = def.phase
	}
	return out
}

func (p Phase) Valid() bool {
	return index(p) >= 0
}

func (p Phase) String() string {
	return string(p)
}

// Slots is the number of sub-phases p occupies, counted from StartSub.
func Slots(p Phase) int {
	if i := index(p); i >= 0 {
		return cycle[i].slots
	}
	return 0
}

func StartSub(p Phase) int {
	if i := index(p); i >= 0 {
		return cycle[i].startSub
	}
	return 0
}

// EndSub is the exclusive upper bound of sub-phase values for p.
func EndSub(p Phase) int {
	return StartSub(p) + Slots(p)
}

func Next(p Phase) Phase {
	i := index(p)
	if i < 0 {
		return Preseason
	}
	return cycle[(i+1)%len(cycle)].phase
}

func Label(p Phase, sub int) string {
	if i := index(p); i >= 0 {
		return cycle[i].label(sub)
	}
	return string(p)
}

// Week is the 1-based position of sub within its phase.
func Week(p Phase, sub int) int {
	return sub - StartSub(p) + 1
}

// CycleLength is the number of advances that returns a league to the same state in the next season.
func CycleLength() int {
	n := 0
	for _, def := range cycle {
		n += def.slots
	}
	return n
}

func ParsePhase(s string) (Phase, error) {
	p := Phase(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown phase %q", s)
	}
	return p, nil
}
