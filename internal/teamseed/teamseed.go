package teamseed

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"math"
	"os"
	"strings"

	"dynasty-bot/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed teams.yaml
var defaultTeams []byte

type file struct {
	Teams []entry `yaml:"teams"`
}

type entry struct {
	Name       string  `yaml:"name"`
	Stars      float64 `yaml:"stars"`
	Conference string  `yaml:"conference"`
}

// Writer is the store the seed is written to.
type Writer interface {
	UpsertTeams(ctx context.Context, teams []domain.Team) error
}

// Parse decodes and validates a team seed document. Names must be unique
// ignoring case and ratings must be half-star steps between 0 and 5.
func Parse(data []byte) ([]domain.Team, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("teamseed: document is empty")
	}

	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("teamseed: decode: %w", err)
	}
	if len(f.Teams) == 0 {
		return nil, fmt.Errorf("teamseed: no teams listed")
	}

	seen := make(map[string]int, len(f.Teams))
	teams := make([]domain.Team, 0, len(f.Teams))
	for i, e := range f.Teams {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("teamseed: team %d has no name", i+1)
		}
		key := strings.ToLower(name)
		if prev, ok := seen[key]; ok {
			return nil, fmt.Errorf("teamseed: %q listed twice (entries %d and %d)", name, prev, i+1)
		}
		seen[key] = i + 1

		if e.Stars < 0 || e.Stars > 5 || math.Mod(e.Stars*2, 1) != 0 {
			return nil, fmt.Errorf("teamseed: %q has invalid rating %v", name, e.Stars)
		}
		teams = append(teams, domain.Team{
			Name:       name,
			StarRating: e.Stars,
			Conference: strings.TrimSpace(e.Conference),
		})
	}
	return teams, nil
}

// Default returns the bundled team list.
func Default() []domain.Team {
	teams, err := Parse(defaultTeams)
	if err != nil {
		panic(err)
	}
	return teams
}

func LoadFile(path string) ([]domain.Team, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("teamseed: read %s: %w", path, err)
	}
	teams, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return teams, nil
}

func Seed(ctx context.Context, w Writer, teams []domain.Team) error {
	if err := w.UpsertTeams(ctx, teams); err != nil {
		return fmt.Errorf("teamseed: write: %w", err)
	}
	return nil
}
