package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fidelbot/internal/kvstore"
	"fidelbot/internal/logger"
	"fidelbot/internal/quiz"
	"log/slog"
)

// SeedContent loads question-set JSON files from dir into the store. Each
// file is named after its catalog key, e.g. grade_9_phys_3.json, and holds
// an array of questions. Invalid files are skipped with a warning so one
// bad file cannot block startup.
func SeedContent(ctx context.Context, store kvstore.Store, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read content dir %s: %w", dir, err)
	}

	seeded, skipped := 0, 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		key := strings.TrimSuffix(entry.Name(), ".json")
		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			logger.SEED.Warn("content file unreadable",
				slog.String("event", "seed.skip"),
				slog.String("file", entry.Name()),
				slog.String("err", err.Error()),
			)
			skipped++
			continue
		}

		var questions []quiz.Question
		if err := json.Unmarshal(raw, &questions); err != nil || len(questions) == 0 {
			logger.SEED.Warn("content file invalid",
				slog.String("event", "seed.skip"),
				slog.String("file", entry.Name()),
			)
			skipped++
			continue
		}

		if err := store.Put(ctx, kvstore.QuizKey(key), string(raw)); err != nil {
			return fmt.Errorf("seed %s: %w", key, err)
		}
		seeded++
	}

	logger.SEED.Info("content seeded",
		slog.String("event", "seed.done"),
		slog.String("dir", dir),
		slog.Int("seeded", seeded),
		slog.Int("skipped", skipped),
	)
	return nil
}
