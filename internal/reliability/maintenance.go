package reliability

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/okushigue/rzqr/internal/database"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"
)

// RunPruner deletes ledger rows older than a cutoff
type RunPruner interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// LedgerMaintenanceJob keeps the run ledger healthy: ping, WAL checkpoint,
// retention and a disk space check
type LedgerMaintenanceJob struct {
	db        *database.DB
	pruner    RunPruner
	retention time.Duration
	log       zerolog.Logger
}

// NewLedgerMaintenanceJob creates the job. A zero retention keeps every run.
func NewLedgerMaintenanceJob(db *database.DB, pruner RunPruner, retention time.Duration, log zerolog.Logger) *LedgerMaintenanceJob {
	return &LedgerMaintenanceJob{
		db:        db,
		pruner:    pruner,
		retention: retention,
		log:       log.With().Str("job", "ledger_maintenance").Logger(),
	}
}

// Name returns the job name for the scheduler
func (j *LedgerMaintenanceJob) Name() string {
	return "ledger_maintenance"
}

// Run executes the maintenance steps
func (j *LedgerMaintenanceJob) Run() error {
	j.log.Info().Msg("Starting ledger maintenance")
	startTime := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := j.db.QuickCheck(ctx); err != nil {
		return fmt.Errorf("ledger %s unreachable: %w", j.db.Name(), err)
	}

	if err := j.db.WALCheckpoint("TRUNCATE"); err != nil {
		// not critical, the next run tries again
		j.log.Warn().Err(err).Msg("WAL checkpoint failed")
	}

	if j.retention > 0 && j.pruner != nil {
		deleted, err := j.pruner.DeleteBefore(ctx, time.Now().Add(-j.retention))
		if err != nil {
			return err
		}
		j.log.Info().Int64("deleted", deleted).Dur("retention", j.retention).Msg("Pruned old runs")
	}

	j.checkDiskSpace()

	j.log.Info().
		Dur("duration_ms", time.Since(startTime)).
		Msg("Ledger maintenance completed")
	return nil
}

func (j *LedgerMaintenanceJob) checkDiskSpace() {
	p := j.db.Path()
	if p == "" || strings.Contains(p, "memory") {
		return
	}
	usage, err := disk.Usage(filepath.Dir(p))
	if err != nil {
		j.log.Warn().Err(err).Msg("Failed to read disk usage")
		return
	}

	availableGB := float64(usage.Free) / 1e9
	j.log.Debug().Float64("available_gb", availableGB).Msg("Disk space check")
	if availableGB < 1.0 {
		j.log.Warn().Float64("available_gb", availableGB).Msg("Disk space running low")
	}
}
