package api

import (
	"context"
	"encoding/json/v2"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/listenupapp/continue-watching/internal/carousel"
	domainerrors "github.com/listenupapp/continue-watching/internal/errors"
	"github.com/listenupapp/continue-watching/internal/http/response"
	"github.com/listenupapp/continue-watching/internal/id"
)

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = 30 * time.Second
	wsMaxMessageSize = 512
	wsSendBuffer     = 16
)

// Message types on the carousel channel.
const (
	msgResize  = "resize"
	msgRefresh = "refresh"
	msgFrame   = "frame"
	msgError   = "error"
)

var errSlowClient = errors.New("websocket send buffer full")

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// clientMessage is what the browser sends.
type clientMessage struct {
	Type  string   `json:"type" validate:"required,oneof=resize refresh"`
	Width *float64 `json:"width,omitempty" validate:"required_if=Type resize,omitempty,gte=0,lte=100000"`
}

// serverMessage is what the server pushes.
type serverMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// wsCarousel is the carousel capability backed by one WebSocket connection.
type wsCarousel struct {
	send chan []byte
}

// Render queues the frame for the write pump. A client that cannot keep up
// loses frames rather than blocking the presenter.
func (c *wsCarousel) Render(_ context.Context, frame carousel.Frame) error {
	return c.push(serverMessage{Type: msgFrame, Data: frame})
}

func (c *wsCarousel) push(msg serverMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	select {
	case c.send <- payload:
		return nil
	default:
		return errSlowClient
	}
}

func (s *Server) registerWebSocketRoutes() {
	s.router.Get(apiPrefix+"/continue-watching/ws", s.handleCarouselSocket)
}

// handleCarouselSocket drives one carousel over a WebSocket.
//
// An optional ?width= starts the carousel immediately; otherwise the first
// resize message starts it. Later resizes are debounced by the presenter.
func (s *Server) handleCarouselSocket(w http.ResponseWriter, r *http.Request) {
	var initialWidth *float64
	if raw := r.URL.Query().Get("width"); raw != "" {
		width, err := strconv.ParseFloat(raw, 64)
		if err != nil || width < 0 {
			response.HandleError(w, domainerrors.Validationf("invalid width %q", raw), s.logger)
			return
		}
		initialWidth = &width
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	presenterID, err := id.Generate(id.PrefixPresenter)
	if err != nil {
		s.logger.Error("Failed to generate presenter id", "error", err)
		_ = conn.Close()
		return
	}
	logger := s.logger.With("presenter_id", presenterID)

	sink := &wsCarousel{send: make(chan []byte, wsSendBuffer)}
	presenter := carousel.NewPresenter(s.services.ContinueWatching, sink, s.opts.Navigator, s.opts.Carousel, logger)

	s.registry.Add(presenterID, presenter)
	logger.Debug("carousel connected", "open", s.registry.Len())

	done := make(chan struct{})
	go func() {
		defer close(done)
		writePump(conn, sink.send)
	}()

	ctx := r.Context()
	if initialWidth != nil {
		s.startPresenter(ctx, presenter, sink, *initialWidth, logger)
	}

	s.readPump(ctx, conn, presenter, sink, initialWidth != nil, logger)

	// Order matters: no render may reach sink.send once it is closed.
	s.registry.Remove(presenterID)
	presenter.Close()
	close(sink.send)
	<-done

	logger.Debug("carousel disconnected", "open", s.registry.Len())
}

func (s *Server) startPresenter(ctx context.Context, p *carousel.Presenter, sink *wsCarousel, width float64, logger *slog.Logger) {
	if err := p.Start(ctx, width); err != nil {
		logger.Warn("Failed to start carousel", "error", err)
		_ = sink.push(serverMessage{Type: msgError, Data: toAPIError(domainerrors.Internal("failed to render carousel"))})
	}
}

func (s *Server) readPump(ctx context.Context, conn *websocket.Conn, p *carousel.Presenter, sink *wsCarousel, started bool, logger *slog.Logger) {
	conn.SetReadLimit(wsMaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("websocket read failed", "error", err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = sink.push(serverMessage{Type: msgError, Data: toAPIError(domainerrors.Validation("message is not valid JSON"))})
			continue
		}
		if err := s.validator.Validate(msg); err != nil {
			_ = sink.push(serverMessage{Type: msgError, Data: toAPIError(err)})
			continue
		}

		switch msg.Type {
		case msgResize:
			if !started {
				s.startPresenter(ctx, p, sink, *msg.Width, logger)
				started = true
				continue
			}
			p.Resize(*msg.Width)
		case msgRefresh:
			if err := p.Refresh(ctx); err != nil {
				logger.Warn("Failed to refresh carousel", "error", err)
			}
		}
	}
}

// writePump sends queued messages and keeps the connection alive with pings.
// It returns when send is closed or a write fails, closing the connection.
func writePump(conn *websocket.Conn, send <-chan []byte) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case msg, ok := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
