// Package resultstream listens to the websocket endpoint on which the ledger publishes the results
// of asynchronously processed commands.
package resultstream

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/ledgerload/ledgerload/internal/common/ledgererrors"
	"github.com/ledgerload/ledgerload/internal/common/logging"
	"github.com/ledgerload/ledgerload/internal/common/util"
)

// RecvTask is the task name receive latencies are recorded under.
const RecvTask = "WebSocket Recv"

const handshakeTimeout = 10 * time.Second

type Recorder interface {
	Record(task string, latency time.Duration, err error)
	StreamMessage()
}

// Handler is called with every message received, in order.
type Handler func(msg []byte)

type authMessage struct {
	TenantID string `json:"tenantId"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// timing is the part of a result message used for latency. StartAt is unix seconds.
type timing struct {
	StartAt *float64 `json:"start_at"`
}

type Listener struct {
	URL      string
	TenantID string
	Username string
	Password string
	// Origin header sent with the handshake. Optional.
	Origin             string
	InsecureSkipVerify bool
	Clock              util.Clock
}

// Listen connects, authenticates and reads messages until ctx ends, which is not an error.
// rec and handler may be nil.
func (l *Listener) Listen(ctx context.Context, handler Handler, rec Recorder) error {
	if l.URL == "" {
		return errors.WithStack(&ledgererrors.ErrInvalidArgument{Name: "URL", Value: l.URL, Message: "result stream URL is required"})
	}
	clock := l.Clock
	if clock == nil {
		clock = &util.DefaultClock{}
	}
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: handshakeTimeout,
		TLSClientConfig:  &tls.Config{InsecureSkipVerify: l.InsecureSkipVerify},
	}
	header := http.Header{}
	if l.Origin != "" {
		header.Set("Origin", l.Origin)
	}
	conn, _, err := dialer.DialContext(ctx, l.URL, header)
	if err != nil {
		return errors.Wrapf(err, "connecting to result stream %s", l.URL)
	}
	log := logging.WithField("url", l.URL)
	log.Info("Connected to result stream")

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		case <-done:
		}
		util.CloseResource("result stream", conn)
	}()

	if err := conn.WriteJSON(authMessage{TenantID: l.TenantID, Username: l.Username, Password: l.Password}); err != nil {
		return errors.Wrap(err, "sending result stream credentials")
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Info("Result stream closed")
				return nil
			}
			return errors.Wrap(err, "reading from result stream")
		}
		if rec != nil {
			rec.StreamMessage()
			if latency, ok := receiveLatency(msg, clock.Now()); ok {
				rec.Record(RecvTask, latency, nil)
			}
		}
		if handler != nil {
			handler(msg)
		}
	}
}

// receiveLatency is the time since the message's start_at, if it has one.
func receiveLatency(msg []byte, now time.Time) (time.Duration, bool) {
	var t timing
	if err := json.Unmarshal(msg, &t); err != nil || t.StartAt == nil {
		return 0, false
	}
	sec, frac := math.Modf(*t.StartAt)
	start := time.Unix(int64(sec), int64(frac*float64(time.Second)))
	return now.Sub(start), true
}
