package roster

import "testing"

func TestRosterStateTransitions(t *testing.T) {
	var r Roster
	if got := r.State(); got != StateNoRoster {
		t.Fatalf("empty roster state = %s, want %s", got, StateNoRoster)
	}

	r.Squad = []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	if got := r.State(); got != StateSquadBuilt {
		t.Fatalf("squad-only state = %s, want %s", got, StateSquadBuilt)
	}

	r.Starting = []string{"A", "C", "D", "E", "F"}
	if got := r.State(); got != StateLineupSet {
		t.Fatalf("lineup state = %s, want %s", got, StateLineupSet)
	}
}

func TestRosterBench(t *testing.T) {
	r := Roster{
		Squad:    []string{"A", "B", "C", "D", "E", "F", "G", "H"},
		Starting: []string{"A", "C", "D", "E", "F"},
	}

	bench := r.Bench()
	want := []string{"B", "G", "H"}
	if len(bench) != len(want) {
		t.Fatalf("bench size = %d, want %d", len(bench), len(want))
	}
	for i, name := range want {
		if bench[i] != name {
			t.Fatalf("bench[%d] = %s, want %s", i, bench[i], name)
		}
	}
}

func TestFantasyUserCheckInvariants(t *testing.T) {
	user := NewFantasyUser("user-1", "alex")
	user.Roster = Roster{
		Squad:    []string{"A", "B", "C", "D", "E", "F", "G", "H"},
		Starting: []string{"A", "C", "D", "E", "F"},
		Captain:  "A",
	}
	if err := user.CheckInvariants(); err != nil {
		t.Fatalf("valid user rejected: %v", err)
	}

	broken := user
	broken.Roster.Starting = []string{"A", "C", "D", "E", "Z"}
	if err := broken.CheckInvariants(); err == nil {
		t.Fatal("expected starting-not-in-squad violation")
	}

	broken = user
	broken.Roster.Captain = "B"
	if err := broken.CheckInvariants(); err == nil {
		t.Fatal("expected captain-not-starting violation")
	}

	broken = user
	broken.Balance = -0.5
	if err := broken.CheckInvariants(); err == nil {
		t.Fatal("expected negative-balance violation")
	}

	broken = user
	broken.Roster.Squad = append(broken.Roster.Squad[:7:7], "A")
	if err := broken.CheckInvariants(); err == nil {
		t.Fatal("expected duplicate-squad-player violation")
	}
}
