package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/charge-reminder/internal/lib/sl"
)

// Sweeper владеет жизненным циклом периодического прохода: запускает его
// сразу и затем по тикеру, пока не отменен контекст. Тик, пришедший во
// время работающего прохода, пропускается.
type Sweeper struct {
	service  *Service
	interval time.Duration
	log      *slog.Logger
}

// NewSweeper создает новый экземпляр Sweeper.
func NewSweeper(service *Service, interval time.Duration, log *slog.Logger) *Sweeper {
	return &Sweeper{
		service:  service,
		interval: interval,
		log:      log,
	}
}

// Run блокируется до отмены контекста, выполняя проходы по расписанию.
func (s *Sweeper) Run(ctx context.Context) {
	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx)
		case <-ctx.Done():
			s.log.Info("sweeper stopped")
			return
		}
	}
}

func (s *Sweeper) runOnce(ctx context.Context) {
	s.log.Info("starting reminder sweep")
	summary, err := s.service.RunSweep(ctx)
	if err != nil {
		if errors.Is(err, ErrSweepBusy) {
			s.log.Warn("previous sweep still running, tick skipped")
			return
		}
		s.log.Error("sweep failed", sl.Err(err))
		return
	}
	s.log.Info("sweep completed",
		slog.Int("processed", summary.Processed),
		slog.Int("sent", summary.Sent),
		slog.Int("failed", summary.Failed))
}
