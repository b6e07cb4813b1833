// Package sock upgrades HTTP requests to WebSocket connections that exchange
// JSON packets, exposed to the rest of the module as a Transport. Session
// code is written against the interface, so tests can substitute an
// in-memory pipe.
package sock

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Transport is a bidirectional JSON packet connection.
type Transport interface {
	// Context is done when the underlying connection has closed.
	Context() context.Context

	// ReadJSON reads the next packet into the given pointer.
	ReadJSON(v any) error

	// WriteJSON sends the given value as one packet.
	WriteJSON(v any) error
}

const (
	// DefaultMaxPacketSize is the maximum size of a JSON packet we accept.
	DefaultMaxPacketSize = 32768

	// DefaultInMessageBuffer allows this many packets to be pending before we
	// close the connection.
	DefaultInMessageBuffer = 128

	// DefaultRateLimit is the number of messages per second we allow.
	DefaultRateLimit = 100

	// DefaultRateBurst is the maximum burst of messages we allow.
	DefaultRateBurst = 100
)

// Opts configures the WebSocket handler. Zero fields take the defaults.
type Opts struct {
	MaxPacketSize   int
	InMessageBuffer int
	RateLimit       int
	RateBurst       int

	// SkipOriginVerify allows any hostname to connect here, not just our own.
	SkipOriginVerify bool
}

func (o *Opts) setDefaults() {
	if o.MaxPacketSize == 0 {
		o.MaxPacketSize = DefaultMaxPacketSize
	}
	if o.InMessageBuffer == 0 {
		o.InMessageBuffer = DefaultInMessageBuffer
	}
	if o.RateLimit == 0 {
		o.RateLimit = DefaultRateLimit
	}
	if o.RateBurst == 0 {
		o.RateBurst = DefaultRateBurst
	}
}

// Handler returns an http.HandlerFunc that wraps each WebSocket connection
// in a Transport and runs fn over it. When fn returns, the connection is
// closed; return a websocket.CloseError to emit a specific code.
func Handler(opts Opts, fn func(t Transport) error) http.HandlerFunc {
	opts.setDefaults()

	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: opts.SkipOriginVerify})
		if err != nil {
			log.Printf("got err setting up websocket %s: %v", r.URL.Path, err)
			return
		}
		c.SetReadLimit(int64(opts.MaxPacketSize))

		// The read pump holds its own context so a pending Read doesn't tear
		// the connection down before we Close with a proper code.
		readCtx, readCancel := context.WithCancel(context.Background())
		ctx, cancel := context.WithCancelCause(readCtx)

		t := &wsTransport{
			ctx:     ctx,
			cancel:  cancel,
			conn:    c,
			inCh:    make(chan []byte, opts.InMessageBuffer),
			limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateBurst),
		}

		context.AfterFunc(ctx, func() {
			err := context.Cause(ctx)

			closeErr := websocket.CloseError{Code: websocket.StatusNormalClosure}
			if errors.As(err, &closeErr) {
				// use as-is
			} else if err != nil && !errors.Is(err, context.Canceled) {
				// don't leak internal errors to the peer
				closeErr = websocket.CloseError{Code: websocket.StatusInternalError}
			}

			c.Close(closeErr.Code, closeErr.Reason)
			readCancel() // only cancel readCtx after ctx
		})

		var eg errgroup.Group
		eg.Go(func() error {
			err := t.runRead(readCtx)
			cancel(err)
			return err
		})
		eg.Go(func() error {
			err := fn(t)
			cancel(err)
			return err
		})
		eg.Wait()
	}
}

type wsTransport struct {
	ctx     context.Context
	cancel  context.CancelCauseFunc
	conn    *websocket.Conn
	inCh    chan []byte
	limiter *rate.Limiter
}

func (t *wsTransport) runRead(ctx context.Context) error {
	for {
		typ, b, err := t.conn.Read(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if typ != websocket.MessageText {
			return websocket.CloseError{Code: websocket.StatusUnsupportedData, Reason: "unexpected message type"}
		}
		if !t.limiter.Allow() {
			return websocket.CloseError{Code: websocket.StatusPolicyViolation, Reason: "rate limit exceeded"}
		}

		select {
		case t.inCh <- b:
		default:
			// channel full, slow consumer
			return websocket.CloseError{Code: websocket.StatusPolicyViolation, Reason: "input channel full"}
		}
	}
}

func (t *wsTransport) Context() context.Context {
	return t.ctx
}

func (t *wsTransport) ReadJSON(v any) error {
	select {
	case b := <-t.inCh:
		err := json.Unmarshal(b, v)
		if err != nil {
			t.cancel(err) // kill ctx if the peer sends broken JSON
		}
		return err
	case <-t.ctx.Done():
		return context.Cause(t.ctx)
	}
}

func (t *wsTransport) WriteJSON(v any) error {
	err := wsjson.Write(t.ctx, t.conn, v)
	if err != nil {
		t.cancel(err)
	}
	return err
}
