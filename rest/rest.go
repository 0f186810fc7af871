package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"holdem.io/server/game"
	"holdem.io/server/logging"
)

var restLogger = log.With().Str("logger_name", "game::rest").Logger()

//
// APP error definition
//
type appError struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

type RoomManager interface {
	Join(ctx context.Context, roomID string, playerID string, nickname string) error
	GetPlayers(ctx context.Context, roomID string) ([]game.PlayerState, error)
	GetState(ctx context.Context, roomID string) (game.GameState, error)
	StartGame(ctx context.Context, roomID string) error
	Bet(ctx context.Context, roomID string, playerID string, amount int) error
	Fold(ctx context.Context, roomID string, playerID string) error
	Rooms() []string
}

type joinPayload struct {
	PlayerID string `json:"playerId" binding:"required"`
	Nickname string `json:"nickname"`
}

type betPayload struct {
	PlayerID string `json:"playerId" binding:"required"`
	Amount   *int   `json:"amount" binding:"required"`
}

type foldPayload struct {
	PlayerID string `json:"playerId" binding:"required"`
}

type server struct {
	manager RoomManager
	history game.HandHistory
	hub     *EventHub
}

// NewRouter builds the HTTP API. limiter may be nil to disable rate limiting.
func NewRouter(manager RoomManager, history game.HandHistory, hub *EventHub, limiter *rate.Limiter) *gin.Engine {
	s := &server{
		manager: manager,
		history: history,
		hub:     hub,
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(rateLimit(limiter))
	api.GET("/rooms", s.listRooms)

	rooms := api.Group("/rooms/:roomId")
	rooms.POST("/join", s.join)
	rooms.GET("/players", s.players)
	rooms.GET("/state", s.state)
	rooms.POST("/start", s.start)
	rooms.POST("/bet", s.bet)
	rooms.POST("/fold", s.fold)
	rooms.GET("/history", s.handHistory)
	rooms.GET("/events", s.events)
	return r
}

// RunRestServer serves router on addr until ctx is cancelled.
func RunRestServer(ctx context.Context, addr string, router http.Handler) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}
	errCh := make(chan error, 1)
	go func() {
		restLogger.Info().Msgf("REST server listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "REST server stopped")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *server) listRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": s.manager.Rooms()})
}

func (s *server) join(c *gin.Context) {
	roomID := c.Param("roomId")
	var payload joinPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, err)
		return
	}
	err := s.manager.Join(c.Request.Context(), roomID, payload.PlayerID, payload.Nickname)
	if err != nil {
		respondError(c, roomID, err)
		return
	}
	s.players(c)
}

func (s *server) players(c *gin.Context) {
	roomID := c.Param("roomId")
	players, err := s.manager.GetPlayers(c.Request.Context(), roomID)
	if err != nil {
		respondError(c, roomID, err)
		return
	}
	c.JSON(http.StatusOK, players)
}

func (s *server) state(c *gin.Context) {
	roomID := c.Param("roomId")
	state, err := s.manager.GetState(c.Request.Context(), roomID)
	if err != nil {
		respondError(c, roomID, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (s *server) start(c *gin.Context) {
	roomID := c.Param("roomId")
	err := s.manager.StartGame(c.Request.Context(), roomID)
	if err != nil {
		respondError(c, roomID, err)
		return
	}
	s.state(c)
}

func (s *server) bet(c *gin.Context) {
	roomID := c.Param("roomId")
	var payload betPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, err)
		return
	}
	err := s.manager.Bet(c.Request.Context(), roomID, payload.PlayerID, *payload.Amount)
	if err != nil {
		respondError(c, roomID, err)
		return
	}
	s.state(c)
}

func (s *server) fold(c *gin.Context) {
	roomID := c.Param("roomId")
	var payload foldPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, err)
		return
	}
	err := s.manager.Fold(c.Request.Context(), roomID, payload.PlayerID)
	if err != nil {
		respondError(c, roomID, err)
		return
	}
	s.state(c)
}

func (s *server) handHistory(c *gin.Context) {
	roomID := c.Param("roomId")
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(c, errors.Errorf("invalid limit [%s]", v))
			return
		}
		limit = n
	}
	records, err := s.history.Load(roomID, limit)
	if err != nil {
		respondError(c, roomID, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// events streams the room's events to a websocket client as JSON messages.
func (s *server) events(c *gin.Context) {
	roomID := c.Param("roomId")
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		restLogger.Error().Str(logging.RoomIDKey, roomID).Msgf("Unable to accept websocket: %v", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "event stream ended")

	events, unsubscribe := s.hub.Subscribe(roomID)
	defer unsubscribe()

	// Clients only listen. CloseRead handles control frames and cancels ctx
	// once the client goes away.
	ctx := conn.CloseRead(c.Request.Context())
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case event := <-events:
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := wsjson.Write(writeCtx, conn, event)
			cancel()
			if err != nil {
				restLogger.Debug().Str(logging.RoomIDKey, roomID).Msgf("Websocket write failed: %v", err)
				return
			}
		}
	}
}

func statusOf(err error) (int, string) {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, "Timeout"
	}
	kind, ok := game.KindOf(err)
	if !ok {
		return http.StatusInternalServerError, "Internal"
	}
	switch kind {
	case game.InvalidAmount, game.InsufficientChips:
		return http.StatusBadRequest, string(kind)
	case game.NotSeated:
		return http.StatusForbidden, string(kind)
	case game.InsufficientPlayers, game.InvalidPhase, game.AlreadyFolded, game.NotYourTurn, game.NoActivePlayers:
		return http.StatusConflict, string(kind)
	}
	return http.StatusInternalServerError, string(kind)
}

func respondError(c *gin.Context, roomID string, err error) {
	code, kind := statusOf(err)
	event := restLogger.Debug()
	if code >= http.StatusInternalServerError {
		event = restLogger.Error()
	}
	event.Str(logging.RoomIDKey, roomID).
		Str(logging.ErrorKindKey, kind).
		Msgf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	c.IndentedJSON(code, appError{
		Code:    code,
		Kind:    kind,
		Message: err.Error(),
	})
}

func badRequest(c *gin.Context, err error) {
	c.IndentedJSON(http.StatusBadRequest, appError{
		Code:    http.StatusBadRequest,
		Kind:    "InvalidRequest",
		Message: err.Error(),
	})
}

func rateLimit(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter != nil && !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, appError{
				Code:    http.StatusTooManyRequests,
				Kind:    "RateLimited",
				Message: "Too many requests",
			})
			return
		}
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		restLogger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("Request served")
	}
}
