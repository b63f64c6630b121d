package table

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/kalitiri-backend/internal/metrics"
	"github.com/DoyleJ11/kalitiri-backend/internal/store"
)

const (
	checkpointAttempts = 3
	checkpointBackoff  = 200 * time.Millisecond
)

// checkpointer writes published snapshots on its own goroutine so storage
// latency never holds up the table loop. Kicks coalesce: a burst of them
// produces one write of the newest state.
type checkpointer struct {
	t       *Table
	kicks   chan struct{}
	flushes chan chan error
	quit    chan bool
	done    chan struct{}
	written int
}

func newCheckpointer(t *Table) *checkpointer {
	return &checkpointer{
		t:       t,
		kicks:   make(chan struct{}, 1),
		flushes: make(chan chan error),
		quit:    make(chan bool, 1),
		done:    make(chan struct{}),
		written: -1,
	}
}

func (c *checkpointer) kick() {
	select {
	case c.kicks <- struct{}{}:
	default:
	}
}

func (c *checkpointer) stop(persist bool) { c.quit <- persist }

func (c *checkpointer) flush(ctx context.Context) error {
	reply := make(chan error, 1)
	select {
	case c.flushes <- reply:
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *checkpointer) run() {
	defer close(c.done)
	for {
		select {
		case <-c.kicks:
			_ = c.write(false)
		case reply := <-c.flushes:
			reply <- c.write(true)
		case persist := <-c.quit:
			if persist {
				_ = c.write(false)
			}
			return
		}
	}
}

func (c *checkpointer) write(force bool) error {
	st := c.t.opts.Store
	if st == nil {
		return nil
	}
	p := c.t.current.Load()
	if !force && p.version == c.written {
		return nil
	}

	snap := store.Snapshot{
		SessionID: c.t.id,
		Phase:     p.state.Phase,
		Version:   p.version,
		State:     p.state,
		SavedAt:   time.Now().UTC(),
	}
	var err error
	for attempt := 0; attempt < checkpointAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(checkpointBackoff << (attempt - 1))
		}
		ctx, cancel := context.WithTimeout(context.WithoutCancel(c.t.ctx), c.t.opts.CheckpointTimeout)
		err = st.Put(ctx, snap)
		cancel()
		if err == nil {
			c.written = p.version
			metrics.Checkpoints.WithLabelValues("ok").Inc()
			c.t.log.Debug("checkpoint written", zap.Int("version", p.version), zap.String("phase", string(p.state.Phase)))
			return nil
		}
	}
	metrics.Checkpoints.WithLabelValues("error").Inc()
	c.t.log.Warn("checkpoint failed", zap.Int("version", p.version), zap.Int("attempts", checkpointAttempts), zap.Error(err))
	return err
}
