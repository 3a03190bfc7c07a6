package board

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/existflow/activityboard/internal/api"
	"github.com/existflow/activityboard/internal/apitest"
	"github.com/existflow/activityboard/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func againstFake(t *testing.T, opts ...Option) (*apitest.Server, *Board) {
	t.Helper()
	srv, url := apitest.Start(t, "employee", "employee_password")
	client := api.NewClient(api.Config{BaseURL: url, Username: "employee", Password: "employee_password"})
	return srv, New(client, opts...)
}

func occurrences(s State, id int64) int {
	n := 0
	for _, a := range append(s.Unfinished, s.Finished...) {
		if a.ID == id {
			n++
		}
	}
	return n
}

func TestFinishScenarioAgainstServer(t *testing.T) {
	srv, b := againstFake(t)
	completed := time.Date(2024, 7, 1, 10, 30, 0, 0, time.UTC)
	srv.SetClock(func() time.Time { return completed })
	a := srv.Seed("ship it", false)

	b.Load(context.Background())
	require.Len(t, b.Unfinished(), 1)

	b.Finish(context.Background(), a.ID)

	s := b.Snapshot()
	require.Empty(t, s.Error)
	assert.Empty(t, s.Unfinished)
	require.Len(t, s.Finished, 1)
	assert.Equal(t, a.ID, s.Finished[0].ID)
	assert.True(t, s.Finished[0].IsDone)
	require.NotNil(t, s.Finished[0].CompletedAt)
	assert.True(t, completed.Equal(*s.Finished[0].CompletedAt))
	assert.Equal(t, 1, occurrences(s, a.ID))
}

func TestRevertScenarioAgainstServer(t *testing.T) {
	srv, b := againstFake(t)
	a := srv.Seed("reopen me", true)

	b.Load(context.Background())
	b.Revert(context.Background(), a.ID)

	s := b.Snapshot()
	assert.Empty(t, s.Finished)
	require.Len(t, s.Unfinished, 1)
	assert.Nil(t, s.Unfinished[0].CompletedAt)
	assert.Equal(t, 1, occurrences(s, a.ID))
}

func TestEditThenLookupRoundTrip(t *testing.T) {
	srv, b := againstFake(t)
	a := srv.Seed("first wording", false)
	b.Load(context.Background())

	b.PrepareEdit(a)
	b.SetEditDescription("second wording")
	b.Edit(context.Background())
	b.LookupByID(context.Background(), a.ID)

	s := b.Snapshot()
	require.NotNil(t, s.Lookup)
	assert.Equal(t, "second wording", s.Lookup.Description)
	assert.Equal(t, "second wording", s.Unfinished[0].Description)
}

func TestLookupMissingIsNilWithMessage(t *testing.T) {
	_, b := againstFake(t)

	b.LookupByID(context.Background(), 404)

	s := b.Snapshot()
	assert.Nil(t, s.Lookup)
	assert.Equal(t, MsgLookup, s.Error)
}

func TestRefreshRepairsDrift(t *testing.T) {
	srv, b := againstFake(t)
	a := srv.Seed("known", false)
	b.Load(context.Background())

	// changes the client never saw
	other := srv.Seed("added elsewhere", false)
	srv.Remove(a.ID)
	hidden := srv.Seed("finish me", false)

	b.Finish(context.Background(), hidden.ID)

	s := b.Snapshot()
	assert.Equal(t, []int64{other.ID}, ids(s.Unfinished))
	assert.Equal(t, []int64{hidden.ID}, ids(s.Finished))
}

func TestCreateAgainstServer(t *testing.T) {
	srv, b := againstFake(t)
	b.Load(context.Background())

	b.OpenCreate()
	b.SetDraft("call the plumber")
	b.Create(context.Background())

	s := b.Snapshot()
	require.Empty(t, s.Error)
	require.Len(t, s.Unfinished, 1)
	assert.Equal(t, "call the plumber", s.Unfinished[0].Description)

	stored, ok := srv.Get(s.Unfinished[0].ID)
	require.True(t, ok)
	assert.False(t, stored.IsDone)
}

func TestServerFailureSurfacesMessage(t *testing.T) {
	srv, b := againstFake(t, WithErrorTTL(50*time.Millisecond))
	a := srv.Seed("flaky", false)
	b.Load(context.Background())

	srv.FailNext(http.MethodPut, "/finish/1", http.StatusBadGateway)
	b.Finish(context.Background(), a.ID)

	assert.Equal(t, MsgFinish, b.ErrorMessage())
	assert.Equal(t, []int64{a.ID}, ids(b.Unfinished()))
	assert.Eventually(t, func() bool { return b.ErrorMessage() == "" }, time.Second, 5*time.Millisecond)
}

func TestConcurrentFinishAndDeleteKeepAtMostOneCopy(t *testing.T) {
	srv, b := againstFake(t, WithReconcile(ReconcileOnDrift))
	var seeded []model.Activity
	for i := 0; i < 5; i++ {
		seeded = append(seeded, srv.Seed("racy", false))
	}
	b.Load(context.Background())

	var wg sync.WaitGroup
	for _, a := range seeded {
		wg.Add(2)
		go func(id int64) {
			defer wg.Done()
			b.Finish(context.Background(), id)
		}(a.ID)
		go func(id int64) {
			defer wg.Done()
			b.Delete(context.Background(), id)
		}(a.ID)
	}
	wg.Wait()

	s := b.Snapshot()
	for _, a := range seeded {
		assert.LessOrEqual(t, occurrences(s, a.ID), 1)
	}
}
