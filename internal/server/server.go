package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/gymbuddy/internal/session"
	"github.com/claude/gymbuddy/internal/storage"
	"github.com/go-chi/chi/v5"
	"tailscale.com/client/local"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       *storage.DB
	sessions *session.Service
	log      *slog.Logger
	router   chi.Router
	lc       *local.Client
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, sessions *session.Service, log *slog.Logger) *Server {
	s := &Server{
		db:       db,
		sessions: sessions,
		log:      log,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetTailscale enables Tailscale identity resolution via the given
// local client. Without it, DevIdentity supplies a fixed local user.
func (s *Server) SetTailscale(lc *local.Client) {
	s.lc = lc
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	s.router.Get("/api/health", s.handleHealth)
	s.router.Get("/api/me", s.handleMe)

	s.router.Get("/api/users", s.handleListUsers)
	s.router.Delete("/api/user/{username}", s.handleDeleteUser)

	s.router.Get("/api/workouts", s.handleListWorkouts)
	s.router.Post("/api/workout", s.handleCreateWorkout)
	s.router.Get("/api/workout/{name}", s.handleWorkoutData)
	s.router.Delete("/api/workout/{name}", s.handleDeleteWorkout)

	s.router.Post("/api/exercise", s.handleAddExercise)
	s.router.Put("/api/exercise/notes", s.handleUpdateExerciseNotes)
	s.router.Delete("/api/exercise", s.handleDeleteExercise)

	s.router.Post("/api/log", s.handleLogSet)
	s.router.Put("/api/set/update", s.handleUpdateSet)
	s.router.Delete("/api/set/delete", s.handleDeleteSet)
	s.router.Post("/api/parse", s.handleParse)

	s.router.Post("/api/session/start", s.handleStartSession)
	s.router.Post("/api/session/end", s.handleEndSession)
	s.router.Get("/api/dashboard/stats", s.handleDashboardStats)
}

// identity picks the middleware matching the deployment mode: Tailscale
// whois when a local client is configured, a fixed dev user otherwise.
func (s *Server) identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.lc != nil {
			TailscaleIdentity(s.lc)(next).ServeHTTP(w, r)
			return
		}
		DevIdentity(next).ServeHTTP(w, r)
	})
}
