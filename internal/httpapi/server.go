package httpapi

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/example/skillbuilder/internal/auth"
	"github.com/example/skillbuilder/internal/catalog"
	"github.com/example/skillbuilder/internal/chatbot"
	"github.com/example/skillbuilder/internal/excel"
	"github.com/example/skillbuilder/internal/forum"
	"github.com/example/skillbuilder/internal/logger"
	"github.com/example/skillbuilder/internal/progress"
	"github.com/example/skillbuilder/internal/quiz"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Services are the application services exposed over HTTP
type Services struct {
	Catalog   *catalog.Service
	Progress  *progress.Service
	Forum     *forum.Service
	Quiz      *quiz.Service
	Auth      *auth.Service
	Tokens    *auth.TokenIssuer
	Responder *chatbot.Responder
	Reporter  *excel.Reporter
}

// Config holds the HTTP server settings
type Config struct {
	Addr           string
	AllowedOrigins []string
	// Bounds of the simulated typing delay before a chat reply
	ChatMinDelay time.Duration
	ChatMaxDelay time.Duration
}

// Server serves the JSON API
type Server struct {
	svc    Services
	config Config
	log    *logger.Logger

	mu            sync.Mutex
	conversations map[string]*chatbot.Conversation

	pause func(ctx context.Context, d time.Duration) error
}

// New creates the API server
func New(svc Services, config Config, log *logger.Logger) *Server {
	return &Server{
		svc:           svc,
		config:        config,
		log:           log.With("component", "http"),
		conversations: make(map[string]*chatbot.Conversation),
		pause:         chatbot.Pause,
	}
}

// Router builds the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", healthCheck)
	api := router.Group("/api")
	api.POST("/auth/signin", s.signIn)
	api.POST("/auth/signup", s.signUp)

	// Protected
	protected := api.Group("/")
	protected.Use(s.requireAuth())

	protected.GET("/me", s.me)

	protected.GET("/domains", s.listDomains)
	protected.GET("/domains/:id", s.getDomain)
	protected.GET("/levels", s.listLevels)
	protected.GET("/domains/:id/levels/:level/modules", s.listModules)

	protected.GET("/progress", s.getProgress)
	protected.PUT("/progress/:moduleId", s.updateProgress)
	protected.GET("/report", s.downloadReport)

	protected.GET("/chat", s.chatHistory)
	protected.POST("/chat", s.chat)

	protected.GET("/forum/posts", s.listPosts)
	protected.POST("/forum/posts", s.createPost)
	protected.GET("/forum/posts/:id", s.getThread)
	protected.POST("/forum/posts/:id/comments", s.addComment)

	protected.GET("/modules/:id/quizzes", s.moduleQuizzes)
	protected.POST("/quizzes/:id/submit", s.submitQuiz)
	protected.GET("/quizzes/results", s.quizResults)

	return router
}

// Run serves until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", "addr", s.config.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) conversation(userID string) *chatbot.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[userID]
	if !ok {
		c = chatbot.NewConversation(s.svc.Responder)
		s.conversations[userID] = c
	}
	return c
}

func healthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
