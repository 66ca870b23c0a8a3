package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shipscraper/internal/domain"
)

// PostgresSink mirrors the exported datasets into PostgreSQL. Expected
// schema: a ships table and a ship_images table, both keyed by name.
type PostgresSink struct {
	db *pgxpool.Pool
}

func NewPostgresSink(connStr string) (*PostgresSink, error) {
	db, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return &PostgresSink{db: db}, nil
}

func (s *PostgresSink) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresSink) Close() {
	s.db.Close()
}

// SaveDatasets upserts both datasets within a single transaction so a
// failed run never leaves the two tables disagreeing on a ship.
func (s *PostgresSink) SaveDatasets(ctx context.Context, ships *domain.ShipDataset, images *domain.ImageDataset) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	shipBatch := &pgx.Batch{}
	for _, rec := range ships.Records() {
		shipBatch.Queue(
			`INSERT INTO ships (name, wiki, manufacturer, size, length_m, width_m, height_m, max_speed, scm_speed, zero_to_scm_time)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			 ON CONFLICT (name) DO UPDATE SET
			   wiki = EXCLUDED.wiki, manufacturer = EXCLUDED.manufacturer, size = EXCLUDED.size,
			   length_m = EXCLUDED.length_m, width_m = EXCLUDED.width_m, height_m = EXCLUDED.height_m,
			   max_speed = EXCLUDED.max_speed, scm_speed = EXCLUDED.scm_speed,
			   zero_to_scm_time = EXCLUDED.zero_to_scm_time, updated_at = NOW()`,
			rec.Name, rec.Wiki, rec.Manufacturer, rec.Size,
			rec.Length, rec.Width, rec.Height,
			rec.MaxSpeed, rec.ScmSpeed, rec.ZeroToScmTime,
		)
	}
	if err := tx.SendBatch(ctx, shipBatch).Close(); err != nil {
		return fmt.Errorf("upsert ships: %w", err)
	}

	imageBatch := &pgx.Batch{}
	for _, rec := range images.Records() {
		imageBatch.Queue(
			`INSERT INTO ship_images (name, isometric, above, port, front, rear, below)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (name) DO UPDATE SET
			   isometric = EXCLUDED.isometric, above = EXCLUDED.above, port = EXCLUDED.port,
			   front = EXCLUDED.front, rear = EXCLUDED.rear, below = EXCLUDED.below, updated_at = NOW()`,
			rec.Name, rec.Isometric, rec.Above, rec.Port, rec.Front, rec.Rear, rec.Below,
		)
	}
	if err := tx.SendBatch(ctx, imageBatch).Close(); err != nil {
		return fmt.Errorf("upsert ship images: %w", err)
	}

	return tx.Commit(ctx)
}
