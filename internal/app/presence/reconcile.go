package presence

import (
	"context"
	"fmt"
	"time"
)

// Reconcile corrects persisted online flags that have no live handle.
// Every such user is marked offline with the current time and one userOffline
// is broadcast for it. Users present in the registry are left untouched, so
// running Reconcile twice in a row changes nothing the second time. Each pass
// also refreshes the mirror, whose entries expire unless rewritten.
// It returns the user IDs it corrected.
func (r *Registry) Reconcile(ctx context.Context) ([]string, error) {
	defer r.syncMirror(ctx)

	persisted, err := r.store.ListOnlineIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list persisted online users: %w", err)
	}

	corrected := []string{}
	for _, userID := range persisted {
		if r.IsOnline(userID) {
			continue
		}

		if err := r.store.SetPresence(ctx, userID, false, r.now()); err != nil {
			r.logger.Error().Err(err).Str("user_id", userID).Msg("Reconcile failed to mark user offline.")
			continue
		}

		// an Announce may have landed between the check and the write.
		if r.IsOnline(userID) {
			r.persist(ctx, userID, true)
			r.logger.Debug().Str("user_id", userID).Msg("User came online during reconcile; flag restored.")
			continue
		}

		r.broadcaster.Broadcast(EventUserOffline, userID)
		corrected = append(corrected, userID)
	}

	if len(corrected) > 0 {
		r.logger.Info().Strs("user_ids", corrected).Msg("Reconcile marked stale users offline.")
	}

	return corrected, nil
}

// RunReconciler starts the periodic sweep in a background goroutine. It runs
// Reconcile every interval until ctx is cancelled; Wait blocks until it exits.
func (r *Registry) RunReconciler(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultReconcileInterval
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		r.logger.Info().Dur("interval", interval).Msg("Presence reconciler started.")

		for {
			select {
			case <-ctx.Done():
				r.logger.Info().Msg("Presence reconciler stopped.")
				return
			case <-ticker.C:
				sweepCtx, cancel := context.WithTimeout(ctx, interval)
				if _, err := r.Reconcile(sweepCtx); err != nil {
					r.logger.Error().Err(err).Msg("Presence reconcile sweep failed.")
				}
				cancel()
			}
		}
	}()
}

// Wait blocks until the reconciler goroutine has exited.
func (r *Registry) Wait() {
	r.wg.Wait()
}
