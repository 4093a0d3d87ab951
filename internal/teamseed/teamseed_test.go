package teamseed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"dynasty-bot/internal/domain"
)

func TestParse(t *testing.T) {
	tests := map[string]struct {
		doc     string
		want    int
		wantErr bool
	}{
		"valid": {
			doc: `
teams:
  - {name: Alabama, stars: 5, conference: SEC}
  - {name: " Rice ", stars: 2.5, conference: AAC}
`,
			want: 2,
		},
		"empty":       {doc: "   ", wantErr: true},
		"no teams":    {doc: "teams: []", wantErr: true},
		"no name":     {doc: "teams:\n  - {stars: 3}", wantErr: true},
		"duplicate":   {doc: "teams:\n  - {name: Iowa, stars: 3}\n  - {name: IOWA, stars: 3}", wantErr: true},
		"bad rating":  {doc: "teams:\n  - {name: Iowa, stars: 3.3}", wantErr: true},
		"too high":    {doc: "teams:\n  - {name: Iowa, stars: 5.5}", wantErr: true},
		"unknown key": {doc: "teams:\n  - {name: Iowa, stars: 3, mascot: Herky}", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			teams, err := Parse([]byte(tt.doc))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && len(teams) != tt.want {
				t.Errorf("got %d teams, want %d", len(teams), tt.want)
			}
		})
	}
}

func TestParseTrims(t *testing.T) {
	teams, err := Parse([]byte("teams:\n  - {name: \"  Rice \", stars: 2.5, conference: \" AAC \"}"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if teams[0].Name != "Rice" || teams[0].Conference != "AAC" {
		t.Errorf("team = %+v", teams[0])
	}
}

func TestDefault(t *testing.T) {
	teams := Default()
	if len(teams) < 40 {
		t.Errorf("bundled list has %d teams", len(teams))
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "teams.yaml")
	if err := os.WriteFile(path, []byte("teams:\n  - {name: Navy, stars: 2.5}"), 0o600); err != nil {
		t.Fatal(err)
	}
	teams, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if len(teams) != 1 || teams[0].Name != "Navy" {
		t.Errorf("teams = %+v", teams)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

type recordingWriter struct {
	got []domain.Team
	err error
}

func (w *recordingWriter) UpsertTeams(ctx context.Context, teams []domain.Team) error {
	w.got = teams
	return w.err
}

func TestSeed(t *testing.T) {
	w := &recordingWriter{}
	if err := Seed(context.Background(), w, Default()); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if len(w.got) != len(Default()) {
		t.Errorf("wrote %d teams, want %d", len(w.got), len(Default()))
	}
}
