package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/codefromthecrypt/routeguide/internal/core/domain"
	"github.com/codefromthecrypt/routeguide/internal/pkg/metrics"
)

// wsFrame is the JSON envelope for route-guide calls over WebSocket.
// The first client frame names the method; streaming payloads travel in Data
// frames, and End marks end-of-stream in either direction. A call is one
// connection.
type wsFrame struct {
	Method string          `json:"method,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
	End    bool            `json:"end,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// wsCall wraps one connection with a write mutex and a call context that is
// cancelled as soon as the connection breaks.
type wsCall struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	cancel context.CancelFunc
}

func (c *wsCall) readFrame() (*wsFrame, error) {
	_, msg, err := c.conn.ReadMessage()
	if err != nil {
		c.cancel()
		return nil, err
	}
	var f wsFrame
	if err := json.Unmarshal(msg, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *wsCall) writeFrame(f *wsFrame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.cancel()
		return err
	}
	return nil
}

func (c *wsCall) writeData(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.writeFrame(&wsFrame{Data: data})
}

// recvData reads the next payload frame into v, returning io.EOF once the
// client has signalled end-of-stream.
func (c *wsCall) recvData(v any) error {
	f, err := c.readFrame()
	if err != nil {
		return err
	}
	if f.End {
		return io.EOF
	}
	return json.Unmarshal(f.Data, v)
}

// featureStream adapts wsCall to ports.FeatureStream.
type featureStream struct{ call *wsCall }

func (s *featureStream) Send(ctx context.Context, f *domain.Feature) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.call.writeData(f)
}

// pointStream adapts wsCall to ports.PointStream.
type pointStream struct{ call *wsCall }

func (s *pointStream) Recv(ctx context.Context) (*domain.Point, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var p domain.Point
	if err := s.call.recvData(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// noteStream adapts wsCall to ports.NoteStream.
type noteStream struct{ call *wsCall }

func (s *noteStream) Recv(ctx context.Context) (*domain.RouteNote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var n domain.RouteNote
	if err := s.call.recvData(&n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *noteStream) Send(ctx context.Context, note *domain.RouteNote) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.call.writeData(note)
}

// RPCHandler serves route-guide calls over WebSocket: one connection carries
// exactly one call, opened by a frame naming the method.
func RPCHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		defer conn.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remoteAddr := conn.RemoteAddr().String()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		call := &wsCall{conn: conn, cancel: cancel}

		// Keep-alive ping
		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					call.mu.Lock()
					err := conn.WriteMessage(websocket.PingMessage, nil)
					call.mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		open, err := call.readFrame()
		if err != nil {
			return
		}
		if open.Method == "" {
			_ = call.writeFrame(&wsFrame{Error: "missing method"})
			return
		}

		slog.Debug("call opened", "method", open.Method, "remote", remoteAddr)

		start := time.Now()
		err = dispatch(ctx, deps, call, open)

		status := "ok"
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled), ctx.Err() != nil:
			// Client went away mid-stream: clean up quietly, emit nothing.
			status = "cancelled"
		default:
			status = "error"
			slog.Error("call failed", "method", open.Method, "remote", remoteAddr, "error", err)
			_ = call.writeFrame(&wsFrame{Error: "internal error"})
		}
		metrics.ObserveCall(open.Method, status, time.Since(start))
	}
}

func dispatch(ctx context.Context, deps *Dependencies, call *wsCall, open *wsFrame) error {
	switch open.Method {
	case "GetFeature":
		var p domain.Point
		if err := json.Unmarshal(open.Data, &p); err != nil {
			return call.writeFrame(&wsFrame{Error: "malformed point"})
		}
		f, err := deps.RouteGuide.GetFeature(ctx, &p)
		if err != nil {
			return err
		}
		data, err := json.Marshal(f)
		if err != nil {
			return err
		}
		return call.writeFrame(&wsFrame{Data: data, End: true})

	case "ListFeatures":
		var r domain.Rectangle
		if err := json.Unmarshal(open.Data, &r); err != nil {
			return call.writeFrame(&wsFrame{Error: "malformed rectangle"})
		}
		metrics.RPCActiveStreams.Inc()
		defer metrics.RPCActiveStreams.Dec()
		if err := deps.RouteGuide.ListFeatures(ctx, &r, &featureStream{call}); err != nil {
			return err
		}
		return call.writeFrame(&wsFrame{End: true})

	case "RecordRoute":
		metrics.RPCActiveStreams.Inc()
		defer metrics.RPCActiveStreams.Dec()
		summary, err := deps.RouteGuide.RecordRoute(ctx, &pointStream{call})
		if err != nil {
			return err
		}
		data, err := json.Marshal(summary)
		if err != nil {
			return err
		}
		return call.writeFrame(&wsFrame{Data: data, End: true})

	case "RouteChat":
		metrics.RPCActiveStreams.Inc()
		defer metrics.RPCActiveStreams.Dec()
		if err := deps.RouteGuide.RouteChat(ctx, &noteStream{call}); err != nil {
			return err
		}
		return call.writeFrame(&wsFrame{End: true})

	default:
		return call.writeFrame(&wsFrame{Error: "unknown method: " + open.Method})
	}
}
