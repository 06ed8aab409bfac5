package sync

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phuchgg/neon-rpg/internal/engine"
	"github.com/phuchgg/neon-rpg/internal/mirror"
	"github.com/phuchgg/neon-rpg/internal/storage"
)

var testNow = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func newEngine(t *testing.T) *engine.Service {
	t.Helper()
	ctx := context.Background()
	db, err := storage.OpenMemory(ctx, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc, err := engine.Open(ctx, storage.NewKVRepo(db),
		engine.WithClock(func() time.Time { return testNow }),
		engine.WithRand(rand.New(rand.NewPCG(1, 2))),
	)
	require.NoError(t, err)
	return svc
}

func newMirror(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := storage.OpenMemory(context.Background(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ts := httptest.NewServer(mirror.NewServer(storage.NewDocumentRepo(db), zerolog.Nop()).Router())
	t.Cleanup(ts.Close)
	return ts
}

func completeOne(t *testing.T, svc *engine.Service, title string) {
	t.Helper()
	ctx := context.Background()
	task, err := svc.CreateTask(ctx, engine.CreateTaskInput{Title: title})
	require.NoError(t, err)
	_, err = svc.CompleteTask(ctx, task.ID)
	require.NoError(t, err)
}

type failingRemote struct{ err error }

func (f failingRemote) Fetch(context.Context, string) (*storage.Document, error) { return nil, f.err }
func (f failingRemote) Merge(context.Context, string, map[string]json.RawMessage) error {
	return f.err
}

func TestPushThenPullAcrossDevices(t *testing.T) {
	ctx := context.Background()
	remote := NewHTTPRemote(newMirror(t).URL, 5*time.Second)

	laptop := newEngine(t)
	completeOne(t, laptop, "ship it")
	push, err := New(laptop, remote, "max", zerolog.Nop()).PushAll(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, engine.AllKeys(), push.Keys)

	phone := newEngine(t)
	pull, err := New(phone, remote, "max", zerolog.Nop()).PullAll(ctx)
	require.NoError(t, err)
	assert.False(t, pull.Empty)
	assert.Empty(t, pull.Skipped)
	assert.Len(t, pull.Imported, len(engine.AllKeys()))

	assert.Equal(t, laptop.Progress(), phone.Progress())
	require.Len(t, phone.Tasks(), 1)
	assert.Equal(t, "ship it", phone.Tasks()[0].Title)
}

func TestPullFromEmptyRemoteLeavesLocalAlone(t *testing.T) {
	ctx := context.Background()
	remote := NewHTTPRemote(newMirror(t).URL, 5*time.Second)

	svc := newEngine(t)
	completeOne(t, svc, "keep me")
	before := svc.Progress()

	res, err := New(svc, remote, "fresh", zerolog.Nop()).PullAll(ctx)
	require.NoError(t, err)
	assert.True(t, res.Empty)
	assert.Equal(t, before, svc.Progress())
	assert.Len(t, svc.Tasks(), 1)
}

func TestLastWriterWinsPerKey(t *testing.T) {
	ctx := context.Background()
	remote := NewHTTPRemote(newMirror(t).URL, 5*time.Second)

	a := newEngine(t)
	b := newEngine(t)
	completeOne(t, a, "from a")
	completeOne(t, b, "from b")
	completeOne(t, b, "from b again")

	_, err := New(a, remote, "max", zerolog.Nop()).PushAll(ctx)
	require.NoError(t, err)
	_, err = New(b, remote, "max", zerolog.Nop()).PushAll(ctx)
	require.NoError(t, err)

	c := newEngine(t)
	_, err = New(c, remote, "max", zerolog.Nop()).PullAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, b.Progress(), c.Progress())
	assert.Len(t, c.Tasks(), 2)
}

func TestRemoteFailureIsSyncError(t *testing.T) {
	ctx := context.Background()
	svc := newEngine(t)
	completeOne(t, svc, "offline work")
	before := svc.Progress()

	boom := errors.New("connection refused")
	s := New(svc, failingRemote{err: boom}, "max", zerolog.Nop())

	_, err := s.PushAll(ctx)
	var se *SyncError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, OpPush, se.Op)
	assert.ErrorIs(t, err, boom)

	_, err = s.PullAll(ctx)
	require.ErrorAs(t, err, &se)
	assert.Equal(t, OpPull, se.Op)

	_, err = s.Diff(ctx)
	require.ErrorAs(t, err, &se)
	assert.Equal(t, OpDiff, se.Op)

	assert.Equal(t, before, svc.Progress(), "local state is untouched")
}

func TestHTTPRemoteStatusError(t *testing.T) {
	remote := NewHTTPRemote(newMirror(t).URL, 5*time.Second)
	err := remote.Merge(context.Background(), "max", map[string]json.RawMessage{})

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 400, se.Code)
}

func TestDiff(t *testing.T) {
	ctx := context.Background()
	remote := NewHTTPRemote(newMirror(t).URL, 5*time.Second)
	svc := newEngine(t)
	s := New(svc, remote, "max", zerolog.Nop())

	diffs, err := s.Diff(ctx)
	require.NoError(t, err)
	assert.Len(t, diffs, len(engine.AllKeys()))
	for _, d := range diffs {
		assert.Equal(t, DiffLocalOnly, d.Status)
	}

	_, err = s.PushAll(ctx)
	require.NoError(t, err)
	diffs, err = s.Diff(ctx)
	require.NoError(t, err)
	assert.Empty(t, diffs)

	completeOne(t, svc, "drift")
	diffs, err = s.Diff(ctx)
	require.NoError(t, err)
	var changed []string
	for _, d := range diffs {
		assert.Equal(t, DiffChanged, d.Status)
		changed = append(changed, d.Key)
	}
	assert.Contains(t, changed, engine.KeyProgress)
	assert.Contains(t, changed, engine.KeyTasks)
}

func TestDiffValues(t *testing.T) {
	local := map[string]json.RawMessage{
		"same":    json.RawMessage(`{"a": 1}`),
		"changed": json.RawMessage(`1`),
		"mine":    json.RawMessage(`true`),
	}
	remote := map[string]json.RawMessage{
		"same":    json.RawMessage(`{"a":1}`),
		"changed": json.RawMessage(`2`),
		"theirs":  json.RawMessage(`null`),
	}
	assert.Equal(t, []KeyDiff{
		{Key: "changed", Status: DiffChanged},
		{Key: "mine", Status: DiffLocalOnly},
		{Key: "theirs", Status: DiffRemoteOnly},
	}, diffValues(local, remote))
}
