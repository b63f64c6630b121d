package hub

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/DoyleJ11/kalitiri-backend/internal/engine"
	"github.com/DoyleJ11/kalitiri-backend/internal/metrics"
	"github.com/DoyleJ11/kalitiri-backend/internal/store"
	"github.com/DoyleJ11/kalitiri-backend/internal/table"
)

var ErrSessionExists = errors.New("session already exists")
var ErrSessionNotFound = errors.New("session not found")
var ErrHubClosed = errors.New("hub closed")

type HubMsg interface{ isHubMsg() }

type CreateSession struct {
	State engine.Session
	Reply chan *table.Table // nil when the id is live or being removed
}

type GetSession struct {
	ID    string
	Reply chan *table.Table
}

// BeginLoad starts a rehydrate. The ticket carries the live table if there
// is one, and the removal epoch the load must still match when it registers.
type BeginLoad struct {
	ID    string
	Reply chan loadTicket
}

type loadTicket struct {
	table   *table.Table
	epoch   uint64
	removed bool
}

// EnsureSession registers a table for a loaded snapshot unless one is
// already live, in which case the live table wins. A removal since the
// matching BeginLoad makes the reply nil.
type EnsureSession struct {
	Snapshot store.Snapshot
	Epoch    uint64
	Reply    chan *table.Table
}

// RemoveSession drops the live table and blocks the id until RemoveDone.
type RemoveSession struct {
	ID    string
	Reply chan *table.Table
}

// RemoveDone lifts the block once the snapshot is gone.
type RemoveDone struct{ ID string }

type CountSessions struct {
	Reply chan int
}

type ShutdownHub struct {
	Reply chan []*table.Table
}

func (CreateSession) isHubMsg() {}
func (GetSession) isHubMsg()    {}
func (BeginLoad) isHubMsg()     {}
func (EnsureSession) isHubMsg() {}
func (RemoveSession) isHubMsg() {}
func (RemoveDone) isHubMsg()    {}
func (CountSessions) isHubMsg() {}
func (ShutdownHub) isHubMsg()   {}

// Hub is the session registry. Its loop is the only writer of the map, which
// keeps at most one live table per session id.
type Hub struct {
	inbox    chan HubMsg
	sessions map[string]*table.Table
	removing map[string]bool
	epochs   map[string]uint64 // bumped on every removal of an id
	store    store.Store
	opts     table.Options
	loads    singleflight.Group
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewHub(parent context.Context, st store.Store, opts table.Options) *Hub {
	ctx, cancel := context.WithCancel(parent)
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.CheckpointTimeout <= 0 {
		opts.CheckpointTimeout = 5 * time.Second
	}
	opts.Store = st
	h := &Hub{
		inbox:    make(chan HubMsg, 64),
		sessions: make(map[string]*table.Table),
		removing: make(map[string]bool),
		epochs:   make(map[string]uint64),
		store:    st,
		opts:     opts,
		log:      opts.Log.Named("hub"),
		ctx:      ctx,
		cancel:   cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateSession:
				if h.sessions[msg.State.ID] != nil || h.removing[msg.State.ID] {
					msg.Reply <- nil
					break
				}
				msg.Reply <- h.start(msg.State, 0)

			case GetSession:
				msg.Reply <- h.sessions[msg.ID] // May be nil

			case BeginLoad:
				msg.Reply <- loadTicket{
					table:   h.sessions[msg.ID],
					epoch:   h.epochs[msg.ID],
					removed: h.removing[msg.ID],
				}

			case EnsureSession:
				id := msg.Snapshot.SessionID
				if tb := h.sessions[id]; tb != nil {
					msg.Reply <- tb
					break
				}
				if h.removing[id] || h.epochs[id] != msg.Epoch {
					msg.Reply <- nil
					break
				}
				msg.Reply <- h.start(msg.Snapshot.State, msg.Snapshot.Version)

			case RemoveSession:
				tb := h.sessions[msg.ID]
				delete(h.sessions, msg.ID)
				h.removing[msg.ID] = true
				h.epochs[msg.ID]++
				metrics.ActiveSessions.Set(float64(len(h.sessions)))
				msg.Reply <- tb

			case RemoveDone:
				delete(h.removing, msg.ID)

			case CountSessions:
				msg.Reply <- len(h.sessions)

			case ShutdownHub:
				tables := make([]*table.Table, 0, len(h.sessions))
				for _, tb := range h.sessions {
					tables = append(tables, tb)
				}
				clear(h.sessions)
				metrics.ActiveSessions.Set(0)
				msg.Reply <- tables
				h.cancel()
				return
			}
		}
	}
}

func (h *Hub) start(s engine.Session, version int) *table.Table {
	opts := h.opts
	opts.Version = version
	tb := table.New(h.ctx, s, opts)
	h.sessions[s.ID] = tb
	metrics.ActiveSessions.Set(float64(len(h.sessions)))
	h.log.Info("session live", zap.String("session", s.ID), zap.String("variant", s.Config.Key), zap.Int("version", version))
	return tb
}

func (h *Hub) send(ctx context.Context, m HubMsg) error {
	select {
	case h.inbox <- m:
		return nil
	case <-h.ctx.Done():
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func recv[T any](ctx context.Context, h *Hub, reply chan T) (T, error) {
	var zero T
	select {
	case v := <-reply:
		return v, nil
	case <-h.ctx.Done():
		return zero, ErrHubClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Create registers a freshly dealt session and writes its first snapshot.
//
// A saved snapshot under the same id counts as existing: the game can still
// be resumed through Ensure and must not be overwritten.
func (h *Hub) Create(ctx context.Context, s engine.Session) (*table.Table, error) {
	if h.store != nil {
		_, err := h.store.Get(ctx, s.ID)
		switch {
		case err == nil:
			return nil, fmt.Errorf("%w: %s has a saved snapshot", ErrSessionExists, s.ID)
		case !errors.Is(err, store.ErrNotFound):
			return nil, fmt.Errorf("check snapshot %s: %w", s.ID, err)
		}
	}

	reply := make(chan *table.Table, 1)
	if err := h.send(ctx, CreateSession{State: s, Reply: reply}); err != nil {
		return nil, err
	}
	tb, err := recv(ctx, h, reply)
	if err != nil {
		return nil, err
	}
	if tb == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionExists, s.ID)
	}
	if err := tb.Checkpoint(ctx); err != nil {
		h.log.Warn("initial checkpoint failed", zap.String("session", s.ID), zap.Error(err))
	}
	return tb, nil
}

// Get returns the live table or nil. It never touches the store.
func (h *Hub) Get(ctx context.Context, id string) (*table.Table, error) {
	reply := make(chan *table.Table, 1)
	if err := h.send(ctx, GetSession{ID: id, Reply: reply}); err != nil {
		return nil, err
	}
	return recv(ctx, h, reply)
}

// Ensure returns the live table for id, rehydrating it from the latest
// snapshot when it is not resident. Concurrent callers share one load.
func (h *Hub) Ensure(ctx context.Context, id string) (*table.Table, error) {
	tb, err := h.Get(ctx, id)
	if err != nil || tb != nil {
		return tb, err
	}

	v, err, _ := h.loads.Do(id, func() (any, error) {
		ticketReply := make(chan loadTicket, 1)
		if err := h.send(ctx, BeginLoad{ID: id, Reply: ticketReply}); err != nil {
			return nil, err
		}
		ticket, err := recv(ctx, h, ticketReply)
		switch {
		case err != nil:
			return nil, err
		case ticket.table != nil:
			return ticket.table, nil
		case ticket.removed:
			return nil, ErrSessionNotFound
		}
		if h.store == nil {
			metrics.Rehydrations.WithLabelValues("missing").Inc()
			return nil, ErrSessionNotFound
		}
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.opts.CheckpointTimeout)
		defer cancel()
		snap, err := h.store.Get(loadCtx, id)
		switch {
		case errors.Is(err, store.ErrNotFound):
			metrics.Rehydrations.WithLabelValues("missing").Inc()
			return nil, ErrSessionNotFound
		case err != nil:
			metrics.Rehydrations.WithLabelValues("error").Inc()
			h.log.Error("rehydrate failed", zap.String("session", id), zap.Error(err))
			return nil, fmt.Errorf("rehydrate %s: %w", id, err)
		}

		reply := make(chan *table.Table, 1)
		if err := h.send(loadCtx, EnsureSession{Snapshot: snap, Epoch: ticket.epoch, Reply: reply}); err != nil {
			return nil, err
		}
		tb, err := recv(loadCtx, h, reply)
		if err != nil {
			return nil, err
		}
		if tb == nil {
			// Removed while the snapshot was loading.
			metrics.Rehydrations.WithLabelValues("missing").Inc()
			return nil, ErrSessionNotFound
		}
		metrics.Rehydrations.WithLabelValues("loaded").Inc()
		return tb, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*table.Table), nil
}

// Checkpoint persists the live state of id now.
func (h *Hub) Checkpoint(ctx context.Context, id string) error {
	tb, err := h.Get(ctx, id)
	if err != nil {
		return err
	}
	if tb == nil {
		return ErrSessionNotFound
	}
	return tb.Checkpoint(ctx)
}

// Remove terminates a session: the live table is stopped without a final
// write and its snapshot is deleted. Until the delete finishes the id can be
// neither created nor rehydrated, and a load that started earlier is
// discarded.
func (h *Hub) Remove(ctx context.Context, id string) error {
	reply := make(chan *table.Table, 1)
	if err := h.send(ctx, RemoveSession{ID: id, Reply: reply}); err != nil {
		return err
	}
	tb, err := recv(ctx, h, reply)
	if err != nil {
		return err
	}
	if tb != nil {
		if err := tb.Close(ctx, false); err != nil {
			return err
		}
	}
	if h.store != nil {
		if err := h.store.Delete(ctx, id); err != nil {
			// The id stays blocked so the snapshot cannot be loaded again.
			return fmt.Errorf("delete snapshot %s: %w", id, err)
		}
	}
	if err := h.send(ctx, RemoveDone{ID: id}); err != nil && !errors.Is(err, ErrHubClosed) {
		return err
	}
	h.log.Info("session removed", zap.String("session", id))
	return nil
}

func (h *Hub) Count(ctx context.Context) (int, error) {
	reply := make(chan int, 1)
	if err := h.send(ctx, CountSessions{Reply: reply}); err != nil {
		return 0, err
	}
	return recv(ctx, h, reply)
}

// Shutdown stops every table, letting each write a final snapshot.
func (h *Hub) Shutdown(ctx context.Context) error {
	reply := make(chan []*table.Table, 1)
	if err := h.send(ctx, ShutdownHub{Reply: reply}); err != nil {
		if errors.Is(err, ErrHubClosed) {
			return nil
		}
		return err
	}
	var tables []*table.Table
	select {
	case tables = <-reply:
	case <-ctx.Done():
		return ctx.Err()
	}
	var errs []error
	for _, tb := range tables {
		if err := tb.Close(ctx, true); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", tb.ID(), err))
		}
	}
	return errors.Join(errs...)
}
