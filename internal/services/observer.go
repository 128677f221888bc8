package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// ConsoleObserver prints every message on its own line.
type ConsoleObserver struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsoleObserver(out io.Writer) *ConsoleObserver {
	return &ConsoleObserver{out: out}
}

func (o *ConsoleObserver) Log(message string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintln(o.out, message)
}

// JournalObserver forwards messages to next and records them as actions of a
// run. A message that cannot be recorded is still forwarded.
type JournalObserver struct {
	ctx     context.Context
	next    Observer
	journal Journal
	runID   uuid.UUID
}

func NewJournalObserver(ctx context.Context, next Observer, journal Journal, runID uuid.UUID) *JournalObserver {
	return &JournalObserver{
		ctx:     ctx,
		next:    next,
		journal: journal,
		runID:   runID,
	}
}

func (o *JournalObserver) Log(message string) {
	o.next.Log(message)
	if err := o.journal.RecordAction(o.ctx, o.runID, message); err != nil {
		slog.Warn("failed to record action", "run_id", o.runID, "error", err)
	}
}
