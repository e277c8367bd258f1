// Package basho turns raw firehose messages into classified content
// events: it gates envelopes, decodes commits, resolves each create
// operation against the commit's block archive, and runs post text
// through the haiku detector.
package basho

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/basho-social/basho/firehose"
	"github.com/basho-social/basho/haiku"
	"github.com/basho-social/basho/records"
	"github.com/basho-social/basho/repo"
)

type Consumer struct {
	SocketURL string
	Detector  *haiku.Detector
	// Store receives accepted haiku; nil disables persistence.
	Store *haiku.Store

	logger *slog.Logger

	progMu  sync.Mutex
	lastSeq int64
}

func NewConsumer(logger *slog.Logger, socketURL string, store *haiku.Store) *Consumer {
	return &Consumer{
		SocketURL: socketURL,
		Detector:  haiku.NewDetector(),
		Store:     store,
		logger:    logger,
		lastSeq:   -1,
	}
}

// HandleMessage processes one raw stream message end to end. It always
// returns nil for malformed input: a bad message is logged and dropped,
// never allowed to poison the worker or its siblings.
func (c *Consumer) HandleMessage(ctx context.Context, msg *firehose.Message) error {
	hdr, payload, err := firehose.ParseFrame(msg.Data)
	if err != nil {
		c.logger.Error("dropping malformed stream message", "err", err, "size", len(msg.Data))
		eventsProcessedCounter.WithLabelValues("malformed", c.SocketURL).Inc()
		return nil
	}

	switch hdr.Op {
	case firehose.FrameError:
		// server-signaled error; payload is dropped undecoded
		c.logger.Error("stream error frame received", "payloadSize", len(payload))
		eventsProcessedCounter.WithLabelValues("error", c.SocketURL).Inc()
		return nil
	case firehose.FrameMessage:
		// ok
	default:
		c.logger.Error("unrecognized stream frame op", "op", hdr.Op)
		eventsProcessedCounter.WithLabelValues("unknown_op", c.SocketURL).Inc()
		return nil
	}

	if hdr.MsgType != firehose.TypeCommit {
		eventsProcessedCounter.WithLabelValues("skipped", c.SocketURL).Inc()
		return nil
	}

	commit, err := repo.DecodeCommit(payload)
	if err != nil {
		c.logger.Error("dropping malformed commit payload", "err", err)
		eventsProcessedCounter.WithLabelValues("malformed", c.SocketURL).Inc()
		return nil
	}

	eventsProcessedCounter.WithLabelValues("commit", c.SocketURL).Inc()
	c.handleCommit(ctx, commit)
	return nil
}

func (c *Consumer) handleCommit(ctx context.Context, evt *repo.Commit) {
	start := time.Now()

	c.progMu.Lock()
	if c.lastSeq >= 0 && evt.Seq < c.lastSeq {
		c.logger.Warn("got events out of order from stream", "seq", evt.Seq, "prev", c.lastSeq)
	}
	c.lastSeq = evt.Seq
	c.progMu.Unlock()

	lastSeqGauge.WithLabelValues(c.SocketURL).Set(float64(evt.Seq))
	lastSeqProcessedAtGauge.WithLabelValues(c.SocketURL).Set(float64(start.UnixNano()))

	logger := c.logger.With("repo", evt.Repo, "seq", evt.Seq, "rev", evt.Rev)

	if evt.TooBig {
		// tooBig commits ship without their blocks; every op would fail
		// block resolution
		logger.Warn("skipping tooBig commit")
		return
	}

	bm, err := repo.ReadBlockMap(bytes.NewReader(evt.Blocks))
	if err != nil {
		logger.Error("failed to read blocks archive", "err", err)
		return
	}

	for _, op := range evt.Ops {
		collection := op.Collection()
		opsProcessedCounter.WithLabelValues(op.Action, collection, c.SocketURL).Inc()

		if op.Action != repo.ActionCreate {
			continue
		}

		if !records.Known(collection) {
			logger.Info("unknown event type", "collection", collection, "path", op.Path)
			continue
		}

		opLogger := logger.With("collection", collection, "rkey", op.Rkey())

		if op.Cid == nil {
			opLogger.Error("create op missing content-id")
			continue
		}
		cidStr := op.Cid.String()

		blockBytes, ok := bm.Get(cidStr)
		if !ok {
			opLogger.Error("block not found for content-id", "cid", cidStr)
			continue
		}

		rec, err := records.Decode(collection, blockBytes)
		if err != nil {
			opLogger.Error("failed to decode record", "cid", cidStr, "err", err)
			continue
		}

		recordsProcessedCounter.WithLabelValues(collection, c.SocketURL).Inc()
		opLogger.Info(strings.ToUpper(op.Action), "cid", cidStr, "summary", rec.Summary())

		if post, ok := rec.(*records.Post); ok {
			c.classifyPost(opLogger, cidStr, post)
		}
	}

	eventProcessingDurationHistogram.WithLabelValues(c.SocketURL).Observe(time.Since(start).Seconds())
}

func (c *Consumer) classifyPost(logger *slog.Logger, cidStr string, post *records.Post) {
	if _, ok := c.Detector.Detect(post.Text); !ok {
		return
	}

	haikusDetectedCounter.WithLabelValues(c.SocketURL).Inc()
	logger.Info("haiku detected", "cid", cidStr, "text", post.Text)

	if c.Store == nil {
		return
	}
	if err := c.Store.Append(cidStr, post.Text); err != nil {
		// persistence failure must not fail the message
		logger.Error("failed to persist haiku", "cid", cidStr, "err", err)
	}
}
