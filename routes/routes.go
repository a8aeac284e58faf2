package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pitchside/matchday/handlers"
)

func SetupRoutes(
	router *chi.Mux,
	teamHandler *handlers.TeamHandler,
	playerHandler *handlers.PlayerHandler,
	tournamentHandler *handlers.TournamentHandler,
	matchHandler *handlers.MatchHandler,
	eventHandler *handlers.EventHandler,
	liveHandler *handlers.LiveHandler,
) {
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	router.Route("/teams", func(r chi.Router) {
		r.Post("/", teamHandler.CreateHandler)
		r.Get("/", teamHandler.ListHandler)
		r.Get("/{teamID}", teamHandler.GetByIDHandler)
		r.Put("/{teamID}", teamHandler.UpdateHandler)
		r.Put("/{teamID}/crest", teamHandler.UploadCrestHandler)
		r.Post("/{teamID}/players", teamHandler.CreatePlayerHandler)
		r.Get("/{teamID}/players", teamHandler.ListPlayersHandler)
	})

	router.Route("/players", func(r chi.Router) {
		r.Put("/{playerID}", playerHandler.UpdateHandler)
		r.Delete("/{playerID}", playerHandler.DeleteHandler)
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Post("/", tournamentHandler.CreateHandler)
		r.Get("/", tournamentHandler.ListHandler)
		r.Get("/{tournamentID}", tournamentHandler.GetByIDHandler)
		r.Patch("/{tournamentID}/status", tournamentHandler.UpdateStatusHandler)
		r.Post("/{tournamentID}/teams", tournamentHandler.RegisterTeamHandler)
		r.Get("/{tournamentID}/matches", tournamentHandler.ListMatchesHandler)
		r.Get("/{tournamentID}/standings", tournamentHandler.GetStandingsHandler)
		r.Post("/{tournamentID}/standings/recalculate", tournamentHandler.RecalculateStandingsHandler)
	})

	router.Route("/matches", func(r chi.Router) {
		r.Post("/", matchHandler.CreateHandler)
		r.Get("/{matchID}", matchHandler.GetByIDHandler)
		r.Put("/{matchID}/lineup/{teamID}", matchHandler.SetLineupHandler)
		r.Get("/{matchID}/lineup", matchHandler.GetLineupHandler)
		r.Post("/{matchID}/finalize", matchHandler.FinalizeHandler)
		r.Post("/{matchID}/standings/repair", matchHandler.RepairStandingsHandler)
		r.Get("/{matchID}/live", liveHandler.ServeMatchFeed)

		r.Post("/{matchID}/events", eventHandler.RecordHandler)
		r.Get("/{matchID}/events", eventHandler.ListHandler)
		r.Get("/{matchID}/events/synced", eventHandler.ListSyncedHandler)
		r.Get("/{matchID}/events/state", eventHandler.SyncStateHandler)
		r.Post("/{matchID}/events/sync", eventHandler.SyncHandler)
	})
}
