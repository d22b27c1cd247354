package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrStopped is returned by Do once the engine has stopped.
var ErrStopped = errors.New("engine stopped")

// Engine is the single writer for a Game. Input commands and cascade ticks
// run one at a time on the goroutine that called Run.
type Engine struct {
	Tick          uint64        // Ticks driven so far
	Interval      time.Duration // Time between cascade batches
	AutosaveEvery uint64        // Ticks between autosaves, 0 disables

	// OnAutosave runs on the engine goroutine every AutosaveEvery ticks and
	// once when Run returns.
	OnAutosave func(g *Game, tick uint64)

	game *Game
	cmds chan command
	done chan struct{}
}

type command struct {
	fn   func(g *Game)
	done chan struct{}
}

// NewEngine creates an engine driving g with default settings.
func NewEngine(g *Game) *Engine {
	return &Engine{
		Interval: 16 * time.Millisecond,
		game:     g,
		cmds:     make(chan command),
		done:     make(chan struct{}),
	}
}

// Run drives the game until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	defer close(e.done)
	slog.Info("engine started", "tick", e.Tick, "interval", e.Interval)

	ticker := time.NewTicker(e.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.autosave()
			slog.Info("engine stopped", "tick", e.Tick)
			return
		case cmd := <-e.cmds:
			cmd.fn(e.game)
			close(cmd.done)
		case <-ticker.C:
			e.step()
		}
	}
}

// step advances the cascade by one batch.
func (e *Engine) step() {
	e.Tick++
	e.game.Tick()
	if e.AutosaveEvery > 0 && e.Tick%e.AutosaveEvery == 0 {
		e.autosave()
	}
}

func (e *Engine) autosave() {
	if e.OnAutosave != nil {
		e.OnAutosave(e.game, e.Tick)
	}
}

// Do runs fn on the engine goroutine and waits for it to finish.
func (e *Engine) Do(ctx context.Context, fn func(g *Game)) error {
	cmd := command{fn: fn, done: make(chan struct{})}
	select {
	case e.cmds <- cmd:
	case <-e.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-cmd.done:
		return nil
	case <-e.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Swap replaces the driven game, e.g. after loading a save.
func (e *Engine) Swap(ctx context.Context, g *Game) error {
	return e.Do(ctx, func(*Game) { e.game = g })
}
