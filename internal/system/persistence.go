package system

import (
	"context"
	"time"

	"github.com/blastgrid/server/internal/core/event"
	coresys "github.com/blastgrid/server/internal/core/system"
	"github.com/blastgrid/server/internal/persist"
	"go.uber.org/zap"
)

// JournalWriter stores a batch of detonation records.
type JournalWriter interface {
	WriteBatch(ctx context.Context, records []persist.DetonationRecord) error
}

// JournalSystem buffers Detonated events and writes them to the journal
// every interval ticks, or sooner once batchSize records are waiting.
// Write failures are logged and the batch is dropped; the simulation never
// waits on the database. Phase 6 (Persist).
type JournalSystem struct {
	writer    JournalWriter
	stage     string
	log       *zap.Logger
	interval  int
	batchSize int

	tickCount int
	pending   []persist.DetonationRecord
	written   int
	failed    int
}

func NewJournalSystem(bus *event.Bus, writer JournalWriter, stage string, log *zap.Logger, intervalTicks, batchSize int) *JournalSystem {
	if intervalTicks < 1 {
		intervalTicks = 1
	}
	s := &JournalSystem{
		writer:    writer,
		stage:     stage,
		log:       log,
		interval:  intervalTicks,
		batchSize: batchSize,
	}
	event.Subscribe(bus, func(ev event.Detonated) {
		s.pending = append(s.pending, persist.RecordFromEvent(s.stage, ev))
	})
	return s
}

func (s *JournalSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *JournalSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval && (s.batchSize <= 0 || len(s.pending) < s.batchSize) {
		return
	}
	s.tickCount = 0
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Flush(ctx)
}

// Flush writes everything buffered so far. Called on shutdown as well.
func (s *JournalSystem) Flush(ctx context.Context) {
	if len(s.pending) == 0 {
		return
	}
	batch := s.pending
	s.pending = nil
	if err := s.writer.WriteBatch(ctx, batch); err != nil {
		s.failed += len(batch)
		s.log.Error("journal write failed", zap.Int("records", len(batch)), zap.Error(err))
		return
	}
	s.written += len(batch)
	s.log.Debug("journal flushed", zap.Int("records", len(batch)))
}

// Pending returns the number of buffered records.
func (s *JournalSystem) Pending() int { return len(s.pending) }

// Written returns how many records were stored and how many were dropped.
func (s *JournalSystem) Written() (stored, dropped int) { return s.written, s.failed }
