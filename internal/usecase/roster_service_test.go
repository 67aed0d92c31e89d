package usecase

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dlawede/fantasy-roster/internal/domain/roster"
	"github.com/dlawede/fantasy-roster/internal/infrastructure/repository/memory"
	"github.com/dlawede/fantasy-roster/internal/platform/cache"
	"github.com/dlawede/fantasy-roster/internal/platform/logging"
)

var validSquad = []string{
	"Marco Deluca",
	"Tomas Vrba",
	"Andrei Balan",
	"Kofi Asante",
	"Yusuf Demir",
	"Viktor Lindqvist",
	"Emre Yilmaz",
	"Callum Reid",
}

// validSquadCost is the summed cost of validSquad in the seed catalog.
const validSquadCost = 48.0

var validLineup = []string{
	"Marco Deluca",
	"Andrei Balan",
	"Kofi Asante",
	"Yusuf Demir",
	"Emre Yilmaz",
}

func newRosterTestHarness(t *testing.T) (*RosterService, *memory.UserRepository, *memory.AuditRecorder) {
	t.Helper()

	userRepo := memory.NewUserRepository()
	audit := memory.NewAuditRecorder()
	catalog := NewCatalogService(
		memory.NewPlayerSource(memory.SeedPlayers()),
		cache.NewStore(time.Minute),
		logging.NewNop(),
	)
	service := NewRosterService(userRepo, catalog, roster.DefaultRules(), audit, logging.NewNop())

	return service, userRepo, audit
}

func buildLineupSetUser(t *testing.T, service *RosterService) {
	t.Helper()

	if _, err := service.CreateTeam(t.Context(), CreateTeamInput{
		UserID:      "user-1",
		Username:    "alice",
		PlayerNames: validSquad,
	}); err != nil {
		t.Fatalf("create team: %v", err)
	}
	if _, err := service.SelectLineup(t.Context(), SelectLineupInput{
		UserID:      "user-1",
		PlayerNames: validLineup,
	}); err != nil {
		t.Fatalf("select lineup: %v", err)
	}
}

func TestRosterService_CreateTeam_DebitsBudget(t *testing.T) {
	service, _, audit := newRosterTestHarness(t)

	view, err := service.CreateTeam(t.Context(), CreateTeamInput{
		UserID:      "user-1",
		Username:    "alice",
		PlayerNames: validSquad,
	})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}

	if view.State != string(roster.StateSquadBuilt) {
		t.Fatalf("expected state %s, got %s", roster.StateSquadBuilt, view.State)
	}
	if len(view.Squad) != 8 {
		t.Fatalf("expected 8 squad players, got %d", len(view.Squad))
	}
	wantBalance := roster.InitialBalance - validSquadCost
	if view.Balance != wantBalance {
		t.Fatalf("expected balance %.1f, got %.1f", wantBalance, view.Balance)
	}
	if view.FreeTransfers != roster.InitialFreeTransfer {
		t.Fatalf("expected %d free transfers, got %d", roster.InitialFreeTransfer, view.FreeTransfers)
	}

	entries := audit.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(entries))
	}
	if entries[0].Action != "create_team" || entries[0].UserID != "user-1" {
		t.Fatalf("unexpected audit entry: %+v", entries[0])
	}
}

func TestRosterService_CreateTeam_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		players []string
		wantErr error
	}{
		{
			name:    "wrong size",
			players: validSquad[:7],
			wantErr: roster.ErrSquadSize,
		},
		{
			name: "duplicate player",
			players: []string{
				"Marco Deluca", "Marco Deluca", "Andrei Balan", "Kofi Asante",
				"Yusuf Demir", "Viktor Lindqvist", "Emre Yilmaz", "Callum Reid",
			},
			wantErr: roster.ErrDuplicatePlayer,
		},
		{
			name: "unknown player",
			players: []string{
				"Marco Deluca", "Tomas Vrba", "Andrei Balan", "Kofi Asante",
				"Yusuf Demir", "Viktor Lindqvist", "Emre Yilmaz", "Nobody Atall",
			},
			wantErr: roster.ErrUnknownPlayer,
		},
		{
			name: "too expensive",
			players: []string{
				"Marco Deluca", "Tomas Vrba", "Sergio Mateus", "Jonas Keller",
				"Luca Moretti", "Dani Costa", "Viktor Lindqvist", "Mamadou Cisse",
			},
			// 6.5+5.5+6.0+5.5+8.0+7.0+9.0+8.5 = 56.0 against a reduced balance.
			wantErr: roster.ErrInsufficientFunds,
		},
		{
			name: "missing second goalkeeper",
			players: []string{
				"Marco Deluca", "Pavel Horak", "Andrei Balan", "Kofi Asante",
				"Yusuf Demir", "Viktor Lindqvist", "Emre Yilmaz", "Callum Reid",
			},
			wantErr: roster.ErrPositionQuota,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			service, userRepo, audit := newRosterTestHarness(t)

			if tc.wantErr == roster.ErrInsufficientFunds {
				user := roster.NewFantasyUser("user-1", "alice")
				user.Balance = 50.0
				if err := userRepo.Save(t.Context(), user, 0); err != nil {
					t.Fatalf("seed user: %v", err)
				}
			}

			_, err := service.CreateTeam(t.Context(), CreateTeamInput{
				UserID:      "user-1",
				Username:    "alice",
				PlayerNames: tc.players,
			})
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if len(audit.Entries()) != 0 {
				t.Fatalf("rejected operation must not be audited")
			}
		})
	}
}

func TestRosterService_CreateTeam_AlreadyExists(t *testing.T) {
	service, _, _ := newRosterTestHarness(t)
	buildLineupSetUser(t, service)

	_, err := service.CreateTeam(t.Context(), CreateTeamInput{
		UserID:      "user-1",
		PlayerNames: validSquad,
	})
	if !errors.Is(err, roster.ErrRosterExists) {
		t.Fatalf("expected ErrRosterExists, got %v", err)
	}
}

func TestRosterService_SelectLineup_SplitsBench(t *testing.T) {
	service, _, _ := newRosterTestHarness(t)

	if _, err := service.CreateTeam(t.Context(), CreateTeamInput{
		UserID:      "user-1",
		Username:    "alice",
		PlayerNames: validSquad,
	}); err != nil {
		t.Fatalf("create team: %v", err)
	}

	view, err := service.SelectLineup(t.Context(), SelectLineupInput{
		UserID:      "user-1",
		PlayerNames: validLineup,
	})
	if err != nil {
		t.Fatalf("select lineup: %v", err)
	}

	if view.State != string(roster.StateLineupSet) {
		t.Fatalf("expected state %s, got %s", roster.StateLineupSet, view.State)
	}
	if len(view.Starting) != 5 || len(view.Bench) != 3 {
		t.Fatalf("expected 5 starting and 3 bench, got %d and %d", len(view.Starting), len(view.Bench))
	}
	wantBench := []string{"Tomas Vrba", "Viktor Lindqvist", "Callum Reid"}
	for i, name := range wantBench {
		if view.Bench[i] != name {
			t.Fatalf("expected bench[%d]=%s, got %s", i, name, view.Bench[i])
		}
	}
}

func TestRosterService_SelectLineup_TeamDiversity(t *testing.T) {
	service, _, _ := newRosterTestHarness(t)

	if _, err := service.CreateTeam(t.Context(), CreateTeamInput{
		UserID:      "user-1",
		Username:    "alice",
		PlayerNames: validSquad,
	}); err != nil {
		t.Fatalf("create team: %v", err)
	}

	// Deluca and Lindqvist are both Harbour City, leaving only 4 teams.
	_, err := service.SelectLineup(t.Context(), SelectLineupInput{
		UserID:      "user-1",
		PlayerNames: []string{"Marco Deluca", "Viktor Lindqvist", "Andrei Balan", "Kofi Asante", "Yusuf Demir"},
	})
	if !errors.Is(err, roster.ErrTeamDiversity) {
		t.Fatalf("expected ErrTeamDiversity, got %v", err)
	}
}

func TestRosterService_SelectLineup_RequiresSquad(t *testing.T) {
	service, _, _ := newRosterTestHarness(t)

	_, err := service.SelectLineup(t.Context(), SelectLineupInput{
		UserID:      "user-1",
		PlayerNames: validLineup,
	})
	if !errors.Is(err, roster.ErrNoRoster) {
		t.Fatalf("expected ErrNoRoster, got %v", err)
	}
}

func TestRosterService_SelectLineup_ClearsOrphanedCaptain(t *testing.T) {
	service, _, _ := newRosterTestHarness(t)
	buildLineupSetUser(t, service)

	if _, err := service.SetCaptain(t.Context(), SetCaptainInput{
		UserID:     "user-1",
		PlayerName: "Emre Yilmaz",
	}); err != nil {
		t.Fatalf("set captain: %v", err)
	}

	// Reselect with Callum Reid in Yilmaz's place. The captain left the
	// starting five and must be cleared.
	view, err := service.SelectLineup(t.Context(), SelectLineupInput{
		UserID:      "user-1",
		PlayerNames: []string{"Marco Deluca", "Andrei Balan", "Kofi Asante", "Yusuf Demir", "Callum Reid"},
	})
	if err != nil {
		t.Fatalf("reselect lineup: %v", err)
	}
	if view.Captain != "" {
		t.Fatalf("expected captain cleared, got %s", view.Captain)
	}
}

func TestRosterService_SetCaptain(t *testing.T) {
	service, _, _ := newRosterTestHarness(t)
	buildLineupSetUser(t, service)

	view, err := service.SetCaptain(t.Context(), SetCaptainInput{
		UserID:     "user-1",
		PlayerName: "Yusuf Demir",
	})
	if err != nil {
		t.Fatalf("set captain: %v", err)
	}
	if view.Captain != "Yusuf Demir" {
		t.Fatalf("expected captain Yusuf Demir, got %s", view.Captain)
	}

	// Lindqvist is on the bench this week.
	_, err = service.SetCaptain(t.Context(), SetCaptainInput{
		UserID:     "user-1",
		PlayerName: "Viktor Lindqvist",
	})
	if !errors.Is(err, roster.ErrCaptainNotStarting) {
		t.Fatalf("expected ErrCaptainNotStarting, got %v", err)
	}
}

func TestRosterService_SetCaptain_RequiresLineup(t *testing.T) {
	service, _, _ := newRosterTestHarness(t)

	if _, err := service.CreateTeam(t.Context(), CreateTeamInput{
		UserID:      "user-1",
		Username:    "alice",
		PlayerNames: validSquad,
	}); err != nil {
		t.Fatalf("create team: %v", err)
	}

	_, err := service.SetCaptain(t.Context(), SetCaptainInput{
		UserID:     "user-1",
		PlayerName: "Marco Deluca",
	})
	if !errors.Is(err, roster.ErrNoLineup) {
		t.Fatalf("expected ErrNoLineup, got %v", err)
	}
}

func TestRosterService_Substitute_SwapsBenchPlayer(t *testing.T) {
	service, _, _ := newRosterTestHarness(t)
	buildLineupSetUser(t, service)

	view, err := service.Substitute(t.Context(), SubstituteInput{
		UserID:     "user-1",
		PlayersOut: []string{"Emre Yilmaz"},
		PlayersIn:  []string{"Callum Reid"},
	})
	if err != nil {
		t.Fatalf("substitute: %v", err)
	}

	if view.Starting[4] != "Callum Reid" {
		t.Fatalf("expected Callum Reid in slot 4, got %s", view.Starting[4])
	}
	for _, bench := range view.Bench {
		if bench == "Callum Reid" {
			t.Fatalf("Callum Reid still on bench after substitution")
		}
	}
}

func TestRosterService_Substitute_AllOrNothing(t *testing.T) {
	service, _, _ := newRosterTestHarness(t)
	buildLineupSetUser(t, service)

	// The second pair is invalid, so the first valid pair must not apply.
	_, err := service.Substitute(t.Context(), SubstituteInput{
		UserID:     "user-1",
		PlayersOut: []string{"Emre Yilmaz", "Viktor Lindqvist"},
		PlayersIn:  []string{"Callum Reid", "Tomas Vrba"},
	})
	if !errors.Is(err, roster.ErrNotInLineup) {
		t.Fatalf("expected ErrNotInLineup, got %v", err)
	}

	view, err := service.GetRoster(t.Context(), "user-1")
	if err != nil {
		t.Fatalf("get roster: %v", err)
	}
	for i, name := range validLineup {
		if view.Starting[i] != name {
			t.Fatalf("lineup changed after rejected batch: slot %d is %s", i, view.Starting[i])
		}
	}
}

func TestRosterService_Substitute_RejectsSecondGoalkeeper(t *testing.T) {
	service, _, _ := newRosterTestHarness(t)
	buildLineupSetUser(t, service)

	_, err := service.Substitute(t.Context(), SubstituteInput{
		UserID:     "user-1",
		PlayersOut: []string{"Emre Yilmaz"},
		PlayersIn:  []string{"Tomas Vrba"},
	})
	if !errors.Is(err, roster.ErrPositionQuota) {
		t.Fatalf("expected ErrPositionQuota, got %v", err)
	}
}

func TestRosterService_Transfer_FreeTransferAccounting(t *testing.T) {
	service, _, audit := newRosterTestHarness(t)
	buildLineupSetUser(t, service)

	// Arnarson (4.5) in for benched Vrba (5.5) refunds the difference.
	view, err := service.Transfer(t.Context(), TransferInput{
		UserID:    "user-1",
		PlayerIn:  "Felix Arnarson",
		PlayerOut: "Tomas Vrba",
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}

	wantBalance := roster.InitialBalance - validSquadCost + 1.0
	if view.Balance != wantBalance {
		t.Fatalf("expected balance %.1f, got %.1f", wantBalance, view.Balance)
	}
	if view.FreeTransfers != roster.InitialFreeTransfer-1 {
		t.Fatalf("expected %d free transfers, got %d", roster.InitialFreeTransfer-1, view.FreeTransfers)
	}
	if view.TotalPoints != 0 {
		t.Fatalf("free transfer must not cost points, got %d", view.TotalPoints)
	}
	if !view.startingEquals(validLineup) {
		t.Fatalf("bench transfer must not touch the starting lineup: %v", view.Starting)
	}

	entries := audit.Entries()
	last := entries[len(entries)-1]
	if last.Action != "transfer" {
		t.Fatalf("expected transfer audit entry, got %s", last.Action)
	}
}

func TestRosterService_Transfer_PenaltyWhenExhausted(t *testing.T) {
	service, userRepo, _ := newRosterTestHarness(t)
	buildLineupSetUser(t, service)

	user, version, _, err := userRepo.Get(t.Context(), "user-1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	user.FreeTransfers = 0
	if err := userRepo.Save(t.Context(), user, version); err != nil {
		t.Fatalf("seed exhausted transfers: %v", err)
	}

	view, err := service.Transfer(t.Context(), TransferInput{
		UserID:    "user-1",
		PlayerIn:  "Felix Arnarson",
		PlayerOut: "Tomas Vrba",
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}

	if view.FreeTransfers != 0 {
		t.Fatalf("expected 0 free transfers, got %d", view.FreeTransfers)
	}
	if view.TotalPoints != -roster.TransferPenaltyPts {
		t.Fatalf("expected total points %d, got %d", -roster.TransferPenaltyPts, view.TotalPoints)
	}
}

func TestRosterService_Transfer_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		playerIn  string
		playerOut string
		wantErr   error
	}{
		{"already owned", "Viktor Lindqvist", "Tomas Vrba", roster.ErrAlreadyInSquad},
		{"not owned", "Felix Arnarson", "Luca Moretti", roster.ErrNotInSquad},
		{"unknown incoming", "Nobody Atall", "Tomas Vrba", roster.ErrUnknownPlayer},
		// Selling the backup keeper drops the squad below two goalkeepers.
		{"breaks squad quota", "Pavel Horak", "Tomas Vrba", roster.ErrPositionQuota},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			service, _, _ := newRosterTestHarness(t)
			buildLineupSetUser(t, service)

			_, err := service.Transfer(t.Context(), TransferInput{
				UserID:    "user-1",
				PlayerIn:  tc.playerIn,
				PlayerOut: tc.playerOut,
			})
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestRosterService_Transfer_InsufficientFunds(t *testing.T) {
	service, userRepo, _ := newRosterTestHarness(t)
	buildLineupSetUser(t, service)

	user, version, _, err := userRepo.Get(t.Context(), "user-1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	user.Balance = 1.0
	if err := userRepo.Save(t.Context(), user, version); err != nil {
		t.Fatalf("seed low balance: %v", err)
	}

	// Moretti (8.0) in for Demir (6.5) needs 1.5 against a 1.0 balance.
	_, err = service.Transfer(t.Context(), TransferInput{
		UserID:    "user-1",
		PlayerIn:  "Luca Moretti",
		PlayerOut: "Yusuf Demir",
	})
	if !errors.Is(err, roster.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestRosterService_Transfer_ReplacesStarterAndClearsCaptain(t *testing.T) {
	service, _, _ := newRosterTestHarness(t)
	buildLineupSetUser(t, service)

	if _, err := service.SetCaptain(t.Context(), SetCaptainInput{
		UserID:     "user-1",
		PlayerName: "Yusuf Demir",
	}); err != nil {
		t.Fatalf("set captain: %v", err)
	}

	view, err := service.Transfer(t.Context(), TransferInput{
		UserID:    "user-1",
		PlayerIn:  "Brice Okemba",
		PlayerOut: "Yusuf Demir",
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}

	if !view.hasStarting("Brice Okemba") {
		t.Fatalf("expected incoming player to inherit the starting slot: %v", view.Starting)
	}
	if view.Captain != "" {
		t.Fatalf("expected captain cleared after transferring him out, got %s", view.Captain)
	}
}

func TestRosterService_ConcurrentTransfersSerialize(t *testing.T) {
	service, userRepo, _ := newRosterTestHarness(t)
	buildLineupSetUser(t, service)

	transfers := []TransferInput{
		{UserID: "user-1", PlayerIn: "Felix Arnarson", PlayerOut: "Tomas Vrba"},
		{UserID: "user-1", PlayerIn: "Brice Okemba", PlayerOut: "Callum Reid"},
	}

	var wg sync.WaitGroup
	errs := make([]error, len(transfers))
	for i, input := range transfers {
		wg.Add(1)
		go func(i int, input TransferInput) {
			defer wg.Done()
			_, errs[i] = service.Transfer(t.Context(), input)
		}(i, input)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("transfer %d failed: %v", i, err)
		}
	}

	user, _, _, err := userRepo.Get(t.Context(), "user-1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.FreeTransfers != 0 {
		t.Fatalf("expected both transfers to consume an allowance, got %d left", user.FreeTransfers)
	}
	if user.TotalPoints != 0 {
		t.Fatalf("two free transfers must not cost points, got %d", user.TotalPoints)
	}
}

func TestRosterService_GetRoster_NotFound(t *testing.T) {
	service, _, _ := newRosterTestHarness(t)

	_, err := service.GetRoster(t.Context(), "missing-user")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func (v RosterView) hasStarting(name string) bool {
	for _, starting := range v.Starting {
		if starting == name {
			return true
		}
	}
	return false
}

func (v RosterView) startingEquals(names []string) bool {
	if len(v.Starting) != len(names) {
		return false
	}
	for i := range names {
		if v.Starting[i] != names[i] {
			return false
		}
	}
	return true
}
