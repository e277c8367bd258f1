// Package firehose consumes the com.atproto.sync.subscribeRepos event
// stream: the websocket read loop, the two-frame message split, and the
// envelope classification that gates which payloads get decoded.
package firehose

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

// Message is one raw binary stream message. It is owned by whichever
// worker the scheduler hands it to and is discarded after processing.
type Message struct {
	Data []byte
}

// Scheduler hands stream messages to workers. AddWork may block the
// read loop when the pool is saturated; that blocking is the only
// back-pressure the consumer applies.
type Scheduler interface {
	AddWork(ctx context.Context, msg *Message) error
	Shutdown()
}

// HandleStream reads binary messages from the subscription socket and
// feeds them to the scheduler until the context is canceled or the
// connection fails. The connection is owned exclusively by this loop.
//
// A read error is returned to the caller: with this websocket client a
// failed read poisons the connection, so redial policy has to live a
// level up.
func HandleStream(ctx context.Context, con *websocket.Conn, sched Scheduler) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log := slog.Default().With("system", "firehose")

	go func() {
		t := time.NewTicker(time.Second * 30)
		defer t.Stop()

		for {
			select {
			case <-t.C:
				if err := con.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second*10)); err != nil {
					log.Warn("failed to ping", "err", err)
				}
			case <-ctx.Done():
				con.Close()
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		mt, data, err := con.ReadMessage()
		if err != nil {
			return fmt.Errorf("reading message from stream: %w", err)
		}

		messagesFromStreamCounter.Inc()
		bytesFromStreamCounter.Add(float64(len(data)))

		if mt != websocket.BinaryMessage {
			log.Info("skipping non-binary stream message", "messageType", mt)
			nonBinaryMessagesCounter.Inc()
			continue
		}

		if err := sched.AddWork(ctx, &Message{Data: data}); err != nil {
			return err
		}
	}
}
