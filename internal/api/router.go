// Package api assembles the HTTP surface: routes, handlers and the
// middleware chain.
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/finman-app/backend/internal/api/handlers"
	"github.com/finman-app/backend/internal/api/middleware"
	"github.com/finman-app/backend/internal/auth"
	"github.com/finman-app/backend/internal/categories"
	"github.com/finman-app/backend/internal/jobs"
	"github.com/finman-app/backend/internal/scheduler"
	"github.com/finman-app/backend/internal/store"
)

// Deps carries everything the router needs.
type Deps struct {
	Store      store.Store
	Tokens     auth.Provider
	Categories *categories.Service
	Scheduler  *scheduler.Scheduler
	JobStore   jobs.JobStore
	Log        zerolog.Logger
}

// NewRouter builds the full route table with the middleware chain applied.
// Auth and health endpoints are public; everything else requires a bearer
// token.
func NewRouter(deps Deps) http.Handler {
	authHandler := handlers.NewAuthHandler(deps.Store, deps.Tokens, deps.Log)
	usersHandler := handlers.NewUsersHandler(deps.Store, deps.Log)
	transactionsHandler := handlers.NewTransactionsHandler(deps.Store, deps.Log)
	categoriesHandler := handlers.NewCategoriesHandler(deps.Categories, deps.Log)
	remindersHandler := handlers.NewRemindersHandler(deps.Store, deps.Log)
	statsHandler := handlers.NewStatsHandler(deps.Store, deps.Log)
	goalsHandler := handlers.NewGoalsHandler(deps.Store, deps.Log)
	schedulerHandler := handlers.NewSchedulerHandler(deps.Scheduler, deps.Log)
	jobsHandler := handlers.NewJobsHandler(deps.JobStore, deps.Log)

	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	}).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	v1.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)

	restricted := v1.NewRoute().Subrouter()
	restricted.Use(middleware.Auth(deps.Tokens))

	restricted.HandleFunc("/auth/validate", authHandler.Validate).Methods(http.MethodGet)

	restricted.HandleFunc("/users/profile", usersHandler.GetProfile).Methods(http.MethodGet)
	restricted.HandleFunc("/users/profile", usersHandler.UpdateProfile).Methods(http.MethodPut)
	restricted.HandleFunc("/users/balance", usersHandler.GetBalance).Methods(http.MethodGet)
	restricted.HandleFunc("/users/balance", usersHandler.SetBalance).Methods(http.MethodPut)
	restricted.HandleFunc("/users", usersHandler.Delete).Methods(http.MethodDelete)

	restricted.HandleFunc("/transactions", transactionsHandler.Create).Methods(http.MethodPost)
	restricted.HandleFunc("/transactions", transactionsHandler.List).Methods(http.MethodGet)
	restricted.HandleFunc("/transactions/search", transactionsHandler.Search).Methods(http.MethodPost)
	restricted.HandleFunc("/transactions/balance", transactionsHandler.Balance).Methods(http.MethodGet)
	restricted.HandleFunc("/transactions/{id}", transactionsHandler.Get).Methods(http.MethodGet)
	restricted.HandleFunc("/transactions/{id}", transactionsHandler.Update).Methods(http.MethodPatch)
	restricted.HandleFunc("/transactions/{id}", transactionsHandler.Delete).Methods(http.MethodDelete)

	restricted.HandleFunc("/categories", categoriesHandler.Get).Methods(http.MethodGet)
	restricted.HandleFunc("/categories", categoriesHandler.Save).Methods(http.MethodPut)
	restricted.HandleFunc("/categories/subcategory", categoriesHandler.UpdateSubcategory).Methods(http.MethodPatch)
	restricted.HandleFunc("/categories/salary", categoriesHandler.CheckSalary).Methods(http.MethodGet)
	restricted.HandleFunc("/categories/salary/confirm", categoriesHandler.ConfirmSalary).Methods(http.MethodPost)

	restricted.HandleFunc("/reminders", remindersHandler.Create).Methods(http.MethodPost)
	restricted.HandleFunc("/reminders", remindersHandler.List).Methods(http.MethodGet)
	restricted.HandleFunc("/reminders/{id}", remindersHandler.Get).Methods(http.MethodGet)
	restricted.HandleFunc("/reminders/{id}", remindersHandler.Update).Methods(http.MethodPatch)
	restricted.HandleFunc("/reminders/{id}", remindersHandler.Delete).Methods(http.MethodDelete)

	restricted.HandleFunc("/stats/summary", statsHandler.Summary).Methods(http.MethodGet)
	restricted.HandleFunc("/stats/monthly", statsHandler.Monthly).Methods(http.MethodGet)

	restricted.HandleFunc("/goals", goalsHandler.Create).Methods(http.MethodPost)
	restricted.HandleFunc("/goals", goalsHandler.List).Methods(http.MethodGet)
	restricted.HandleFunc("/goals/{id}/deposit", goalsHandler.Deposit).Methods(http.MethodPost)

	restricted.HandleFunc("/fixed-expenses/process", schedulerHandler.Process).Methods(http.MethodPost)

	restricted.HandleFunc("/jobs", jobsHandler.List).Methods(http.MethodGet)
	restricted.HandleFunc("/jobs/{id}", jobsHandler.Get).Methods(http.MethodGet)

	return middleware.Recovery(deps.Log)(
		middleware.Logger(deps.Log)(
			middleware.RequestID(
				middleware.CORS(r),
			),
		),
	)
}
