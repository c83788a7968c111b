package relay

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/vk/formcalc/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DefaultEvent is the socket.io event name used for updates.
const DefaultEvent = "formcalc:update"

// connectTimeout bounds the initial connection handshake.
const connectTimeout = 15 * time.Second

// SocketIO emits every update as a socket.io event.
type SocketIO struct {
	mu     sync.Mutex
	client *socket.Socket
	event  string
	closed bool
}

// SocketIOOption customises NewSocketIO.
type SocketIOOption func(*socket.Options)

// WithInsecureSkipVerify disables TLS certificate verification.
func WithInsecureSkipVerify() SocketIOOption {
	return func(o *socket.Options) {
		o.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
}

// NewSocketIO connects to rawURL over the websocket transport and waits for
// the connection to be acknowledged. Empty namespace and event fall back to
// "/" and DefaultEvent.
func NewSocketIO(ctx context.Context, rawURL, namespace, event string, options ...SocketIOOption) (*SocketIO, error) {
	logger := ctxlog.FromContext(ctx).With("relay", "socketio", "url", rawURL)

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse relay URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, errors.New("relay URL must be absolute")
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))
	for _, o := range options {
		o(opts)
	}

	if namespace == "" {
		namespace = "/"
	}
	if event == "" {
		event = DefaultEvent
	}

	connectChan := make(chan error, 1)
	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Relay connected", "sid", io.Id())
		report(connectChan, nil)
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		var err error = errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		report(connectChan, err)
	})

	logger.Debug("Connecting relay...")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &SocketIO{client: io, event: event}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(connectTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", connectTimeout)
	}
}

// Publish implements Publisher.
func (s *SocketIO) Publish(ctx context.Context, u Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("relay is closed")
	}
	payload := map[string]any{
		"form":  u.Form,
		"field": u.Field,
		"value": u.Value,
	}
	if u.Error != "" {
		payload["error"] = u.Error
	}
	ctxlog.FromContext(ctx).Debug("Emitting relay update", "event", s.event, "field", u.Field)
	return s.client.Emit(s.event, payload)
}

// Close implements Publisher.
func (s *SocketIO) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.client.Disconnect()
	return nil
}

// report delivers the first handshake outcome; later ones are dropped.
func report(ch chan<- error, err error) {
	select {
	case ch <- err:
	default:
	}
}
