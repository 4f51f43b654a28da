package blockchain

import (
	"context"
	"time"

	"tcw1/internal/logger"
	"tcw1/internal/models"
	"tcw1/internal/services/chain"
)

func (s *service) scheduleConfirmation(hash, currency string, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-s.ctx.Done():
			return
		case <-timer.C:
		}

		s.confirm(hash, currency)
	}()
}

func (s *service) confirm(hash, currency string) {
	block, err := chain.SimulateBlockNumber()
	if err != nil {
		logger.Log.Errorw("❌ Failed to simulate block number", "tx", hash, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancel()

	changed, err := s.repo.ConfirmPending(ctx, hash, block, models.RequiredTxConfirmations, s.now().UTC())
	if err != nil {
		logger.Log.Errorw("❌ Error simulating confirmation", "tx", hash, "error", err)
		return
	}
	if changed {
		s.metrics.RecordConfirmation(currency)
		logger.Log.Debugw("transaction confirmed", "tx", hash, "block", block)
	}
}

func (s *service) ResumePending(ctx context.Context) (int, error) {
	pending, err := s.repo.ListPending(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	for _, tx := range pending {
		delay := tx.CreatedAt.Add(s.cfg.ConfirmationDelay).Sub(now)
		if delay < 0 {
			delay = 0
		}
		s.scheduleConfirmation(tx.TransactionHash, tx.Currency, delay)
	}
	if len(pending) > 0 {
		logger.Log.Infow("🔁 Rescheduled pending transactions", "count", len(pending))
	}
	return len(pending), nil
}

func (s *service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
