package proxy

import (
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"overview-sync/internal/interaction"
	"overview-sync/internal/logging"
)

// Server exposes a local interaction.SystemUIProxy to remote Clients.
type Server struct {
	target   interaction.SystemUIProxy
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewServer returns an http.Handler that applies received flags to target.
func NewServer(target interaction.SystemUIProxy, log zerolog.Logger) *Server {
	return &Server{
		target: target,
		log:    logging.Component(log, "proxy-server"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request and answers frames until the peer leaves.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	log := s.log.With().Str("remote", r.RemoteAddr).Logger()
	log.Debug().Msg("client connected")

	for {
		mt, raw, err := conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) {
				log.Debug().Err(err).Msg("read failed")
			}
			return
		}
		if mt != websocket.BinaryMessage {
			continue
		}

		req, err := decodeFrame(raw)
		if err != nil {
			log.Warn().Err(err).Msg("dropping undecodable frame")
			continue
		}

		ack := Frame{Seq: req.Seq, Method: MethodAck}
		switch req.Method {
		case MethodSetInteractionState:
			flags := interaction.Flags(req.Flags)
			if err := s.target.SetInteractionState(r.Context(), flags); err != nil {
				ack.Error = err.Error()
			}
			log.Info().Stringer("flags", flags).Uint64("seq", req.Seq).Msg("interaction state received")
		default:
			ack.Error = "unknown method " + req.Method
		}

		data, err := encodeFrame(ack)
		if err != nil {
			log.Error().Err(err).Msg("encoding ack")
			return
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
			log.Debug().Err(err).Msg("write failed")
			return
		}
	}
}
