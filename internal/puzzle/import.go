package puzzle

import (
	"context"
	"io"
)

const DefaultImportBatch = 5000

// Importer bulk-loads puzzles. *PostgresRepository satisfies it.
type Importer interface {
	Import(ctx context.Context, puzzles []Puzzle) (int, error)
}

// ImportCSV streams a lichess CSV into dst, one Import call per batch.
// Malformed rows are skipped and counted.
func ImportCSV(ctx context.Context, dst Importer, src io.Reader, batchSize int) (imported, skipped int, err error) {
	if batchSize <= 0 {
		batchSize = DefaultImportBatch
	}
	batch := make([]Puzzle, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := dst.Import(ctx, batch)
		imported += n
		batch = batch[:0]
		return err
	}

	var importErr error
	skipped, err = ReadCSV(ctx, src, func(p Puzzle) bool {
		batch = append(batch, p)
		if len(batch) < batchSize {
			return true
		}
		importErr = flush()
		return importErr == nil
	})
	if importErr != nil {
		return imported, skipped, importErr
	}
	if err != nil {
		return imported, skipped, err
	}
	return imported, skipped, flush()
}
