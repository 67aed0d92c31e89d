package statsfeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dlawede/fantasy-roster/internal/domain/player"
	"github.com/dlawede/fantasy-roster/internal/platform/logging"
)

func TestLoadAllPlayers_MergesSeasonStatsByName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("season") != "2026" {
			t.Errorf("expected season=2026 query, got %q", r.URL.RawQuery)
		}
		switch r.URL.Path {
		case "/v1/players":
			_, _ = w.Write([]byte(`{"players":[
				{"name":"Marco Deluca","team":"Harbour City","position":"gk","cost":6.5},
				{"name":"Viktor Lindqvist","team":"Harbour City","position":"FWD","cost":9.0},
				{"name":"Pavel Horak","team":"Southbank Athletic","position":"DEF","cost":3.5}
			]}`))
		case "/v1/season-stats":
			_, _ = w.Write([]byte(`{"stats":[
				{"player":"Marco Deluca","saves":41},
				{"player":"Viktor Lindqvist","goals":18,"assists":4},
				{"player":"Unknown Player","goals":99}
			]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL: server.URL,
		Season:  2026,
		Logger:  logging.NewNop(),
	})

	players, err := client.LoadAllPlayers(context.Background())
	if err != nil {
		t.Fatalf("load players: %v", err)
	}
	if len(players) != 3 {
		t.Fatalf("expected 3 players, got=%d", len(players))
	}

	byName := make(map[string]player.Player, len(players))
	for _, p := range players {
		byName[p.Name] = p
	}

	keeper := byName["Marco Deluca"]
	if keeper.Position != player.PositionGoalkeeper {
		t.Fatalf("expected position normalized to GK, got=%s", keeper.Position)
	}
	if keeper.Stats.Saves != 41 {
		t.Fatalf("expected saves=41, got=%d", keeper.Stats.Saves)
	}
	if keeper.Season != 2026 {
		t.Fatalf("expected season=2026, got=%d", keeper.Season)
	}

	striker := byName["Viktor Lindqvist"]
	if striker.Stats.Goals != 18 || striker.Stats.Assists != 4 {
		t.Fatalf("unexpected striker stats: %+v", striker.Stats)
	}

	unmatched := byName["Pavel Horak"]
	if unmatched.Stats != (player.SeasonStats{}) {
		t.Fatalf("expected zero stats for player without a stat row, got=%+v", unmatched.Stats)
	}
}

func TestLoadAllPlayers_FailsOnNonRetryableStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad token"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL: server.URL,
		Season:  2026,
		Logger:  logging.NewNop(),
	})

	if _, err := client.LoadAllPlayers(context.Background()); err == nil {
		t.Fatalf("expected error on 401 response")
	}
}

func TestIsRetryableStatus(t *testing.T) {
	cases := []struct {
		status int
		want   bool
	}{
		{status: http.StatusOK, want: false},
		{status: http.StatusUnauthorized, want: false},
		{status: http.StatusTooManyRequests, want: true},
		{status: http.StatusBadGateway, want: true},
	}
	for _, tc := range cases {
		if got := isRetryableStatus(tc.status); got != tc.want {
			t.Fatalf("isRetryableStatus(%d)=%v, want %v", tc.status, got, tc.want)
		}
	}
}
