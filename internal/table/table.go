package table

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/kalitiri-backend/internal/engine"
	"github.com/DoyleJ11/kalitiri-backend/internal/metrics"
	"github.com/DoyleJ11/kalitiri-backend/internal/store"
)

var ErrClosed = errors.New("table closed")

type Msg interface{ isTableMsg() }

// FromClient carries one player command. ClientID, when set, receives the
// rejection on its outbox. Reply, when set, receives the outcome.
type FromClient struct {
	ClientID string
	Cmd      engine.Command
	Reply    chan error
}

func (FromClient) isTableMsg() {}

type Join struct {
	ClientID string
	Player   engine.PlayerID
	Outbox   chan Outbound // where this client wants to receive updates
}

func (Join) isTableMsg() {}

type Leave struct{ ClientID string }

func (Leave) isTableMsg() {}

// Shutdown stops the table. Persist writes a final snapshot first.
type Shutdown struct{ Persist bool }

func (Shutdown) isTableMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isTableMsg() {}

// Outbound is what one connection receives: its own view after an accepted
// command, or the rejection of a command it sent.
type Outbound struct {
	Version int
	View    engine.PlayerView
	Events  []engine.Event
	Err     error
}

type View struct {
	Version    int
	NumClients int
	State      engine.Session
}

type published struct {
	version int
	state   engine.Session
}

type client struct {
	player engine.PlayerID
	outbox chan Outbound
}

type Options struct {
	Store                 store.Store
	Log                   *zap.Logger
	CheckpointEveryTricks int
	CheckpointTimeout     time.Duration
	// Version seeds the counter when a table is rebuilt from a snapshot.
	Version int
}

// Table owns one live session. Every mutation goes through its inbox and is
// applied by a single goroutine; reads use the last published state.
type Table struct {
	id      string
	inbox   chan Msg
	state   engine.Session
	version int
	current atomic.Pointer[published]
	clients map[string]client
	opts    Options
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	cp      *checkpointer
}

func New(parent context.Context, initial engine.Session, opts Options) *Table {
	ctx, cancel := context.WithCancel(parent)
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.CheckpointEveryTricks < 1 {
		opts.CheckpointEveryTricks = 3
	}
	if opts.CheckpointTimeout <= 0 {
		opts.CheckpointTimeout = 5 * time.Second
	}

	t := &Table{
		id:      initial.ID,
		inbox:   make(chan Msg, 64),
		state:   initial,
		version: opts.Version,
		clients: make(map[string]client),
		opts:    opts,
		log:     opts.Log.With(zap.String("session", initial.ID)),
		ctx:     ctx,
		cancel:  cancel,
	}
	t.current.Store(&published{version: t.version, state: initial})
	t.cp = newCheckpointer(t)

	go t.cp.run()
	go t.loop()
	return t
}

func (t *Table) ID() string { return t.id }

// Inbox is exposed so the transport layer and tests can send messages.
func (t *Table) Inbox() chan<- Msg { return t.inbox }

// Done is closed once the table has stopped and its last write finished.
func (t *Table) Done() <-chan struct{} { return t.cp.done }

// Current returns the last published state without waiting on the inbox.
func (t *Table) Current() (int, engine.Session) {
	p := t.current.Load()
	return p.version, p.state
}

func (t *Table) ViewFor(player engine.PlayerID) (int, engine.PlayerView) {
	p := t.current.Load()
	return p.version, engine.ViewFor(p.state, player)
}

func (t *Table) send(ctx context.Context, m Msg) error {
	select {
	case t.inbox <- m:
		return nil
	case <-t.ctx.Done():
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit applies cmd and waits for the outcome.
func (t *Table) Submit(ctx context.Context, cmd engine.Command) error {
	reply := make(chan error, 1)
	if err := t.send(ctx, FromClient{Cmd: cmd, Reply: reply}); err != nil {
		return err
	}
	select {
	case err := <-reply:
		return err
	case <-t.ctx.Done():
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dispatch enqueues cmd for a connected client without waiting. The outcome
// arrives on that client's outbox.
func (t *Table) Dispatch(ctx context.Context, clientID string, cmd engine.Command) error {
	return t.send(ctx, FromClient{ClientID: clientID, Cmd: cmd})
}

func (t *Table) Join(ctx context.Context, clientID string, player engine.PlayerID, outbox chan Outbound) error {
	return t.send(ctx, Join{ClientID: clientID, Player: player, Outbox: outbox})
}

func (t *Table) Leave(ctx context.Context, clientID string) error {
	return t.send(ctx, Leave{ClientID: clientID})
}

// Checkpoint writes the latest published state and waits for the write.
func (t *Table) Checkpoint(ctx context.Context) error { return t.cp.flush(ctx) }

// Close stops the table and waits until it has fully exited.
func (t *Table) Close(ctx context.Context, persist bool) error {
	if err := t.send(ctx, Shutdown{Persist: persist}); err != nil && !errors.Is(err, ErrClosed) {
		return err
	}
	select {
	case <-t.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Table) loop() {
	for {
		select {
		case <-t.ctx.Done():
			t.shutdown(true)
			return

		case m := <-t.inbox:
			switch msg := m.(type) {
			case Join:
				t.clients[msg.ClientID] = client{player: msg.Player, outbox: msg.Outbox}
				t.deliver(msg.ClientID, Outbound{Version: t.version, View: engine.ViewFor(t.state, msg.Player)})

			case Leave:
				delete(t.clients, msg.ClientID)
				if len(t.clients) == 0 {
					t.cp.kick()
				}

			case FromClient:
				t.handle(msg)

			case GetState:
				// test-only: reflect internal state without data races
				msg.Reply <- View{Version: t.version, NumClients: len(t.clients), State: t.state}

			case Shutdown:
				t.shutdown(msg.Persist)
				return
			}
		}
	}
}

func (t *Table) handle(msg FromClient) {
	events, next, err := engine.Apply(t.state, msg.Cmd)
	if err != nil {
		metrics.Commands.WithLabelValues(string(msg.Cmd.Type), string(engine.Classify(err))).Inc()
		t.log.Debug("command rejected",
			zap.String("command", string(msg.Cmd.Type)),
			zap.String("player", string(msg.Cmd.Player)),
			zap.Error(err))
		if msg.ClientID != "" {
			t.deliver(msg.ClientID, Outbound{Version: t.version, Err: err})
		}
		if msg.Reply != nil {
			msg.Reply <- err
		}
		return
	}
	metrics.Commands.WithLabelValues(string(msg.Cmd.Type), "applied").Inc()

	// Publish first, then persist.
	t.state = next
	t.version++
	t.current.Store(&published{version: t.version, state: next})
	if msg.Reply != nil {
		msg.Reply <- nil
	}
	t.broadcast(events)

	if t.shouldCheckpoint(events) {
		t.cp.kick()
	}
}

func (t *Table) shouldCheckpoint(events []engine.Event) bool {
	if engine.PhaseChanged(events) {
		return true
	}
	return engine.ContainsEvent(events, engine.EvtTrickCompleted) &&
		len(t.state.Tricks)%t.opts.CheckpointEveryTricks == 0
}

func (t *Table) shutdown(persist bool) {
	for id, c := range t.clients {
		close(c.outbox) // Tell client no more updates
		delete(t.clients, id)
	}
	t.cp.stop(persist)
	t.cancel()
}

func (t *Table) deliver(clientID string, ob Outbound) {
	c, ok := t.clients[clientID]
	if !ok {
		return
	}
	select {
	case c.outbox <- ob:
	default:
		t.drop(clientID, c)
	}
}

func (t *Table) broadcast(events []engine.Event) {
	for id, c := range t.clients {
		ob := Outbound{Version: t.version, View: engine.ViewFor(t.state, c.player), Events: events}
		select {
		case c.outbox <- ob:
			//ok
		default:
			// Client is slow/full - drop them.
			t.drop(id, c)
		}
	}
}

func (t *Table) drop(id string, c client) {
	close(c.outbox)
	delete(t.clients, id)
	t.log.Info("dropped slow client", zap.String("client", id), zap.String("player", string(c.player)))
}
