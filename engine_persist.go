package authcore

import (
	"context"
	"errors"
	"time"

	"github.com/rodaquino-OMNI/authcore/broadcast"
	"github.com/rodaquino-OMNI/authcore/session"
)

const persistOpTimeout = 5 * time.Second

// restoreSnapshot seeds the session from the snapshot store. Restore is best
// effort: a missing, corrupt, or unreachable snapshot leaves the engine
// anonymous. A restored identity keeps lastCheck at zero so the first
// CheckAuth always revalidates against the backend.
func (e *Engine) restoreSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), persistOpTimeout)
	defer cancel()

	snap, err := e.store.Load(ctx, e.storeKey)
	if err != nil {
		if errors.Is(err, session.ErrSnapshotCorrupt) {
			// An unreadable blob will never become readable.
			_ = e.store.Delete(ctx, e.storeKey)
		}
		return
	}
	if snap.UserID == "" {
		return
	}

	e.mu.Lock()
	e.session = Session{
		Phase: PhaseAuthenticated,
		User: &UserSnapshot{
			ID:    snap.UserID,
			Name:  snap.Name,
			Email: snap.Email,
			Roles: append([]string(nil), snap.Roles...),
		},
		CheckedAt: time.Unix(snap.CheckedAt, 0),
	}
	e.mu.Unlock()
}

// startPersist subscribes a writer goroutine to the engine's own transition
// stream. Keeping persistence on the observer path means session mutations
// never wait on Redis.
func (e *Engine) startPersist() {
	ctx, cancel := context.WithCancel(context.Background())
	e.persistStop = cancel

	sub := e.observers.Subscribe(ctx, "")

	e.persistWg.Add(1)
	go e.runPersist(ctx, sub)
}

func (e *Engine) runPersist(ctx context.Context, sub broadcast.Subscriber[Session]) {
	defer e.persistWg.Done()
	defer func() { _ = sub.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Receive():
			if !ok {
				return
			}
			e.persistTransition(msg.Payload)
		}
	}
}

// persistTransition mirrors one observed snapshot into the store. Transient
// phases are skipped: only a settled authenticated identity is worth
// restoring, and anonymous means the stored snapshot must go.
func (e *Engine) persistTransition(s Session) {
	ctx, cancel := context.WithTimeout(context.Background(), persistOpTimeout)
	defer cancel()

	switch s.Phase {
	case PhaseAuthenticated:
		if s.User == nil {
			return
		}
		now := time.Now().Unix()
		_ = e.store.Save(ctx, e.storeKey, &session.Snapshot{
			UserID:    s.User.ID,
			Name:      s.User.Name,
			Email:     s.User.Email,
			Roles:     append([]string(nil), s.User.Roles...),
			CheckedAt: s.CheckedAt.Unix(),
			SavedAt:   now,
		})
	case PhaseAnonymous:
		_ = e.store.Delete(ctx, e.storeKey)
	}
}
