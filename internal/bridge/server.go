package bridge

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	nchess "github.com/corentings/chess/v2"
	"github.com/google/uuid"
	"github.com/park285/offline-puzzles/internal/render"
	"github.com/park285/offline-puzzles/internal/settings"
	"github.com/park285/offline-puzzles/internal/theme"
	"github.com/park285/offline-puzzles/pkg/shellproto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	pingInterval    = 30 * time.Second
	writeTimeout    = 5 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Server exposes a Loop to a local shell over websocket and serves board
// images for the current position.
type Server struct {
	loop     *Loop
	renderer *render.Renderer
	logger   *zap.Logger
}

func NewServer(loop *Loop, renderer *render.Renderer) *Server {
	if renderer == nil {
		renderer = render.New()
	}
	return &Server{loop: loop, renderer: renderer, logger: loop.logger}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/board.png", s.handleBoard)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("bridge listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		s.logger.Warn("ws accept failed", zap.Error(err))
		return
	}
	connID := uuid.NewString()
	logger := s.logger.With(zap.String("conn_id", connID))
	logger.Debug("ws connected")

	states, cancel := s.loop.Subscribe()
	defer cancel()

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		for {
			var ev shellproto.Event
			if err := wsjson.Read(ctx, conn, &ev); err != nil {
				return err
			}
			if !s.loop.Post(EventMsg{Event: ev}) {
				return errLoopStopped
			}
		}
	})
	g.Go(func() error {
		t := time.NewTicker(pingInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case st, ok := <-states:
				if !ok {
					return errLoopStopped
				}
				st.ConnID = connID
				wctx, wcancel := context.WithTimeout(ctx, writeTimeout)
				err := wsjson.Write(wctx, conn, st)
				wcancel()
				if err != nil {
					return err
				}
			case <-t.C:
				pctx, pcancel := context.WithTimeout(ctx, writeTimeout)
				err := conn.Ping(pctx)
				pcancel()
				if err != nil {
					return err
				}
			}
		}
	})
	err = g.Wait()

	status := websocket.CloseStatus(err)
	switch {
	case status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway:
		logger.Debug("ws closed by peer")
	case errors.Is(err, errLoopStopped):
		_ = conn.Close(websocket.StatusGoingAway, "shutting down")
		return
	default:
		logger.Debug("ws closed", zap.Error(err))
	}
	_ = conn.Close(websocket.StatusNormalClosure, "")
}

var errLoopStopped = errors.New("event loop stopped")

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	st := s.loop.Snapshot()
	board, err := boardFromState(st)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	// themes come from the snapshot; the editor belongs to the loop goroutine
	bt, _ := theme.ParseBoardTheme(st.Settings.BoardTheme)
	pt, _ := theme.ParsePieceTheme(st.Settings.PieceTheme)
	opts := render.Options{
		BoardTheme:  bt,
		PieceTheme:  pt,
		Flip:        (settings.OpeningSide(st.Puzzle.Side) == settings.SideBlack) != st.Settings.FlipBoard,
		Highlight:   highlightFromUCI(st.Puzzle.LastMove),
		Hint:        highlightFromUCI(st.Puzzle.Hint),
		Coordinates: true,
	}
	png, err := s.renderer.RenderPNG(r.Context(), board, opts)
	if err != nil {
		s.logger.Warn("board render failed", zap.String("puzzle_id", st.Puzzle.ID), zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

// highlightFromUCI turns "e2e4" into a square pair. Anything else yields nil.
func highlightFromUCI(uci string) *render.Highlight {
	if len(uci) < 4 {
		return nil
	}
	from, ok1 := squareFromName(uci[0:2])
	to, ok2 := squareFromName(uci[2:4])
	if !ok1 || !ok2 {
		return nil
	}
	return &render.Highlight{From: from, To: to}
}

func squareFromName(s string) (nchess.Square, bool) {
	f, r := s[0], s[1]
	if f < 'a' || f > 'h' || r < '1' || r > '8' {
		return nchess.NoSquare, false
	}
	return nchess.NewSquare(nchess.File(f-'a'), nchess.Rank(r-'1')), true
}
