package events

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testutil "github.com/opencity/insight/test/util"
)

func TestAuditStore_RecordAndReplayPreservesOrder(t *testing.T) {
	client := testutil.SetupTestDatabase(t)
	store := NewAuditStore(client.DB())
	ctx := context.Background()

	sessionID := uuid.New()
	require.NoError(t, store.Record(ctx, sessionID, 0, User("how many open tickets")))
	require.NoError(t, store.Record(ctx, sessionID, 1, Thought("Planning")))
	require.NoError(t, store.Record(ctx, sessionID, 2, Complete()))

	replayed, err := store.Replay(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, replayed, 3)
	assert.Equal(t, TypeUser, replayed[0].Event.Type)
	assert.Equal(t, TypeThought, replayed[1].Event.Type)
	assert.Equal(t, TypeComplete, replayed[2].Event.Type)
	assert.Equal(t, 0, replayed[0].Sequence)
	assert.Equal(t, 2, replayed[2].Sequence)
}

func TestAuditStore_RecordAsyncNeverBlocks(t *testing.T) {
	client := testutil.SetupTestDatabase(t)
	store := NewAuditStore(client.DB())
	ctx := context.Background()
	sessionID := uuid.New()

	done := make(chan struct{})
	go func() {
		store.RecordAsync(ctx, sessionID, 0, Complete())
		close(done)
	}()
	select {
	case <-done:
	default:
	}
	<-done
}
