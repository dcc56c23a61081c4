package persist

import (
	"context"
	"fmt"

	"github.com/blastgrid/server/internal/core/event"
	"github.com/google/uuid"
)

// DetonationRecord is one journal row.
type DetonationRecord struct {
	BlastID  uuid.UUID
	Depth    int
	BombID   uint64
	Owner    uint64
	X, Y     int
	Radius   int
	Pierce   bool
	Cause    string
	Segments int
	SimMs    int64
	Stage    string
}

// RecordFromEvent converts a Detonated event into a journal row.
func RecordFromEvent(stage string, ev event.Detonated) DetonationRecord {
	return DetonationRecord{
		BlastID:  ev.BlastID,
		Depth:    ev.Depth,
		BombID:   uint64(ev.BombID),
		Owner:    uint64(ev.Owner),
		X:        ev.Cell.X,
		Y:        ev.Cell.Y,
		Radius:   ev.Radius,
		Pierce:   ev.Pierce,
		Cause:    string(ev.Cause),
		Segments: ev.Segments,
		SimMs:    ev.At.Milliseconds(),
		Stage:    stage,
	}
}

type JournalRepo struct {
	db *DB
}

func NewJournalRepo(db *DB) *JournalRepo {
	return &JournalRepo{db: db}
}

// WriteBatch inserts all records in a single transaction.
func (r *JournalRepo) WriteBatch(ctx context.Context, records []DetonationRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("journal begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, rec := range records {
		if _, err := tx.Exec(ctx,
			`INSERT INTO detonations (blast_id, depth, bomb_id, owner_id, cell_x, cell_y, radius, pierce, cause, segments, sim_time_ms, stage)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			rec.BlastID, rec.Depth, int64(rec.BombID), int64(rec.Owner), rec.X, rec.Y,
			rec.Radius, rec.Pierce, rec.Cause, rec.Segments, rec.SimMs, rec.Stage,
		); err != nil {
			return fmt.Errorf("journal insert: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("journal commit: %w", err)
	}
	return nil
}
