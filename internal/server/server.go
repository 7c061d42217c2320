package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"cardrooms/internal/deck"
	"cardrooms/internal/filter"
	"cardrooms/internal/game"
	"cardrooms/internal/room"
)

const (
	defaultPort     = 3000
	messagesPerSec  = 20
	keepAliveEvery  = 5 * time.Minute
	inactiveTimeout = 10 * time.Minute
)

type Server struct {
	port      int
	adminPass string

	cm         *ConnectionManager
	gateway    *Gateway
	registry   *room.Registry
	lobby      *room.Lobby
	reconnects *room.Reconnects
	limiter    *RateLimiter
	health     *ConnectionHealth
	chatFilter *filter.Filter
}

func NewServer() (*Server, *http.Server) {
	port, _ := strconv.Atoi(os.Getenv("PORT"))
	if port == 0 {
		port = defaultPort
	}

	clock := clockwork.NewRealClock()

	cm := NewConnectionManager()
	gateway := NewGateway(cm)
	registry := room.NewRegistry(clock)
	lobby := room.NewLobby(registry, gateway)
	reconnects := room.NewReconnects(registry, gateway, lobby)

	chatFilter := filter.New()
	chatFilter.RemoveWords("hell", "damn", "god")

	texts := deck.LoadTexts(os.Getenv("PROMPT_CARDS_FILE"), os.Getenv("FILL_CARDS_FILE"))
	lobby.RegisterEngine(room.KindTrick, game.NewTrick(clock, gateway, lobby, texts, chatFilter.Clean))
	lobby.RegisterEngine(room.KindShedding, game.NewShedding(clock, gateway, lobby))

	s := &Server{
		port:       port,
		adminPass:  os.Getenv("ADMIN_PASS"),
		cm:         cm,
		gateway:    gateway,
		registry:   registry,
		lobby:      lobby,
		reconnects: reconnects,
		limiter:    NewRateLimiter(messagesPerSec, time.Second),
		health:     NewConnectionHealth(),
		chatFilter: chatFilter,
	}

	if s.adminPass == "" {
		log.Warn().Msg("ADMIN_PASS not set, admin channel disabled")
	}

	go s.keepAliveTask()

	return s, &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Shutdown closes every client send queue so write pumps drain and exit.
// Rooms are ephemeral, so there is no state to flush.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Int("rooms", s.registry.Count()).Msg("shutting down")
	s.cm.CloseAll()
	return nil
}

// keepAliveTask periodically logs a liveness line and reclaims tracking
// state left behind by departed connections.
func (s *Server) keepAliveTask() {
	ticker := time.NewTicker(keepAliveEvery)
	defer ticker.Stop()

	for range ticker.C {
		log.Info().Int("rooms", s.registry.Count()).Msg("server alive")
		s.limiter.Cleanup()
		for _, connID := range s.health.GetInactiveConnections(inactiveTimeout) {
			s.health.RemoveConnection(connID)
		}
	}
}
