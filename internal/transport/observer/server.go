package observer

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"museumbot/internal/observerproto"
	"museumbot/internal/sim/world"
)

type Server struct {
	world     *world.World
	hub       *Hub
	log       *log.Logger
	sessionID string

	// AllowRemote serves non-loopback clients too. Off by default.
	AllowRemote bool

	upgrader websocket.Upgrader
}

func NewServer(w *world.World, hub *Hub, sessionID string, logger *log.Logger) *Server {
	return &Server{
		world:     w,
		hub:       hub,
		log:       logger,
		sessionID: sessionID,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) allowed(r *http.Request) bool {
	return s.AllowRemote || isLoopbackRemote(r.RemoteAddr)
}

func (s *Server) BootstrapHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !s.allowed(r) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		tun := s.world.Tuning()
		b := s.world.Bounds()
		resp := observerproto.BootstrapResponse{
			ProtocolVersion: observerproto.Version,
			WorldID:         s.world.ID(),
			SessionID:       s.sessionID,
			Tick:            s.world.Snapshot().Tick,
			RoomParams: observerproto.RoomParams{
				TickRateHz:         s.world.TickRateHz(),
				Seed:               s.world.Seed(),
				BoundsMin:          b.Min.Array(),
				BoundsMax:          b.Max.Array(),
				ProximityThreshold: tun.ProximityThreshold,
				ScanDurationSec:    tun.ScanDurationSec,
				ScanRate:           tun.ScanRate,
				InfoDisplaySec:     tun.InfoDisplaySec,
			},
		}
		for _, e := range s.world.Exhibits().All() {
			resp.Exhibits = append(resp.Exhibits, exhibitInfo(e))
		}

		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(resp)
	}
}

func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !s.allowed(r) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Handshake: must send SUBSCRIBE first.
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		sub, ok := parseSubscribe(msg)
		if !ok {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected SUBSCRIBE"), time.Now().Add(time.Second))
			return
		}

		id, frames := s.hub.Subscribe(8)
		defer s.hub.Unsubscribe(id)
		if s.log != nil {
			s.log.Printf("observer %d connected from %s", id, r.RemoteAddr)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		rate := make(chan int, 1)
		rate <- sub.MaxHz

		// Writer goroutine.
		writeErr := make(chan error, 1)
		go func() {
			var minGap time.Duration
			var last time.Time
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case hz := <-rate:
					minGap = 0
					if hz > 0 {
						minGap = time.Second / time.Duration(hz)
					}
				case b, ok := <-frames:
					if !ok {
						writeErr <- nil
						return
					}
					if minGap > 0 && time.Since(last) < minGap {
						continue
					}
					last = time.Now()
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						writeErr <- err
						return
					}
				}
			}
		}()

		// Reader loop: allow SUBSCRIBE updates; everything else is ignored.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			if sub, ok := parseSubscribe(msg); ok {
				select {
				case rate <- sub.MaxHz:
				default:
					// Drop updates under load; the client may resend.
				}
			}
		}

		cancel()
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

		// Best-effort wait for the writer to stop so it doesn't outlive conn.
		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func parseSubscribe(msg []byte) (observerproto.SubscribeMsg, bool) {
	var sub observerproto.SubscribeMsg
	if err := json.Unmarshal(msg, &sub); err != nil {
		return sub, false
	}
	if sub.Type != observerproto.TypeSubscribe || sub.ProtocolVersion != observerproto.Version {
		return sub, false
	}
	if sub.MaxHz < 0 {
		sub.MaxHz = 0
	}
	if sub.MaxHz > 240 {
		sub.MaxHz = 240
	}
	return sub, true
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
