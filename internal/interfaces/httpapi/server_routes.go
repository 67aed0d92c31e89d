package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicCatalogRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/players", handler.ListPlayers)
	mux.HandleFunc("GET /v1/players/{playerName}", handler.GetPlayer)
	mux.HandleFunc("GET /v1/teams", handler.ListTeams)
}

func registerAuthorizedRosterRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/roster", RequireAuth(verifier, http.HandlerFunc(handler.GetRoster)))
	mux.Handle("POST /v1/roster/team", RequireAuth(verifier, http.HandlerFunc(handler.CreateTeam)))
	mux.Handle("PUT /v1/roster/lineup", RequireAuth(verifier, http.HandlerFunc(handler.SelectLineup)))
	mux.Handle("PUT /v1/roster/captain", RequireAuth(verifier, http.HandlerFunc(handler.SetCaptain)))
	mux.Handle("POST /v1/roster/substitutions", RequireAuth(verifier, http.HandlerFunc(handler.Substitute)))
	mux.Handle("POST /v1/roster/transfers", RequireAuth(verifier, http.HandlerFunc(handler.Transfer)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/gameweek-rollover", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunGameweekRollover)))
}
