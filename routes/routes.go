package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/mvallesteros/ligastar/docs"
	"github.com/mvallesteros/ligastar/handlers"
	"github.com/mvallesteros/ligastar/middleware"
	"github.com/mvallesteros/ligastar/models"
)

// SetupRoutes wires every handler into the router. Reads are public;
// mutations require an authenticated organizer or admin.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	teamHandler *handlers.TeamHandler,
	playerHandler *handlers.PlayerHandler,
	matchHandler *handlers.MatchHandler,
	disciplineHandler *handlers.DisciplineHandler,
	bracketHandler *handlers.BracketHandler,
	financeHandler *handlers.FinanceHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticated := middleware.Authenticate(jwtSecret)
	organizerOnly := middleware.Authorize(models.RoleOrganizer, models.RoleAdmin)

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.ListActive)
		r.Get("/{tournamentID}", tournamentHandler.GetByID)
		r.Get("/{tournamentID}/overview", tournamentHandler.Overview)
		r.Get("/{tournamentID}/table", tournamentHandler.Table)
		r.Get("/{tournamentID}/scorers", tournamentHandler.TopScorers)
		r.Get("/{tournamentID}/cards", tournamentHandler.MostCarded)
		r.Get("/{tournamentID}/teams", teamHandler.ListByTournament)
		r.Get("/{tournamentID}/matches", matchHandler.ListByTournament)
		r.Get("/{tournamentID}/qualifiers", bracketHandler.Qualifiers)
		r.Get("/{tournamentID}/bracket", bracketHandler.Overview)
		r.Get("/{tournamentID}/live", webSocketHandler.Subscribe)

		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Use(organizerOnly)

			r.Post("/", tournamentHandler.Create)
			r.Patch("/{tournamentID}/phase", tournamentHandler.SetPhase)
			r.Post("/{tournamentID}/bracket", bracketHandler.Seed)
		})
	})

	router.Route("/teams", func(r chi.Router) {
		r.Get("/{teamID}", teamHandler.GetByID)
		r.Get("/{teamID}/matches/upcoming", matchHandler.ListUpcomingByTeam)
		r.Get("/{teamID}/finance", financeHandler.TeamSummary)
		r.Get("/{teamID}/transactions", financeHandler.ListTeamTransactions)

		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Use(organizerOnly)

			r.Post("/", teamHandler.Create)
			r.Patch("/{teamID}", teamHandler.Update)
			r.Post("/{teamID}/logo", teamHandler.UploadLogo)
			r.Delete("/{teamID}", teamHandler.Delete)
			r.Post("/{teamID}/payments/inscription", financeHandler.RecordInscriptionPayment)
		})
	})

	router.Route("/players", func(r chi.Router) {
		r.Get("/{playerID}", playerHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Use(organizerOnly)

			r.Post("/", playerHandler.Create)
			r.Patch("/{playerID}", playerHandler.Update)
			r.Post("/{playerID}/photo", playerHandler.UploadPhoto)
			r.Delete("/{playerID}", playerHandler.Delete)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", matchHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Use(organizerOnly)

			r.Post("/", matchHandler.Schedule)
			r.Post("/{matchID}/complete", matchHandler.Complete)
			r.Post("/{matchID}/reopen", matchHandler.Reopen)
			r.Delete("/{matchID}", matchHandler.Delete)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(authenticated)
		r.Use(organizerOnly)

		r.Post("/cards", disciplineHandler.RecordCard)
		r.Post("/cards/{cardID}/pay", financeHandler.PayCardFine)
	})

	router.Route("/brackets/slots", func(r chi.Router) {
		r.Use(authenticated)
		r.Use(organizerOnly)

		r.Post("/{slotID}/match", bracketHandler.GenerateSlotMatch)
		r.Post("/{slotID}/advance", bracketHandler.AdvanceWinner)
	})

	router.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(docs.OpenAPISpec)
	})
	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
}
