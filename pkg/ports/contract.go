package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/automaton/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore implementation
// adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	newSession := func(id string) *domain.Session {
		return &domain.Session{
			ID:           id,
			AutomatonID:  "contract",
			CurrentState: "q1",
			Consumed:     "ab",
			Trace: domain.Trace{
				{Index: 0, From: "q0", Symbol: "a", To: "q1"},
				{Index: 1, From: "q1", Symbol: "b", To: "q1"},
			},
			Status:    domain.SessionActive,
			Accepting: true,
			UpdatedAt: time.Now().UTC().Truncate(time.Second),
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		session := newSession(sessionID)

		err := store.Save(ctx, sessionID, session)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, session.AutomatonID, loaded.AutomatonID)
		assert.Equal(t, session.CurrentState, loaded.CurrentState)
		assert.Equal(t, session.Consumed, loaded.Consumed)
		assert.Equal(t, session.Trace, loaded.Trace)
		assert.Equal(t, session.Status, loaded.Status)
		assert.True(t, loaded.Accepting)
		assert.True(t, session.UpdatedAt.Equal(loaded.UpdatedAt))
	})

	t.Run("Save keeps Rejection", func(t *testing.T) {
		session := newSession(sessionID)
		session.Status = domain.SessionHalted
		session.Accepting = false
		session.Rejected = &domain.Rejection{Index: 2, Symbol: "z"}
		require.NoError(t, store.Save(ctx, sessionID, session))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.True(t, loaded.Halted())
		assert.Equal(t, session.Rejected, loaded.Rejected)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, newSession(sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, newSession(id1))
		_ = store.Save(ctx, id2, newSession(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
