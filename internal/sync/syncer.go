// Package sync copies a player's engine state to and from a remote
// document. The remote holds one whole-value blob per key; the last writer
// wins per key and nothing is merged inside a value.
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"slices"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/phuchgg/neon-rpg/internal/storage"
)

// Remote stores one document per player. Fetch returns nil, nil when the
// player has never pushed.
type Remote interface {
	Fetch(ctx context.Context, playerID string) (*storage.Document, error)
	Merge(ctx context.Context, playerID string, values map[string]json.RawMessage) error
}

// Local is the engine side of a sync.
type Local interface {
	ExportAll(ctx context.Context) (map[string]json.RawMessage, error)
	ImportAll(ctx context.Context, values map[string]json.RawMessage) ([]string, error)
}

type Syncer struct {
	local    Local
	remote   Remote
	playerID string
	log      zerolog.Logger
}

func New(local Local, remote Remote, playerID string, log zerolog.Logger) *Syncer {
	return &Syncer{local: local, remote: remote, playerID: playerID, log: log}
}

type PushResult struct {
	Keys []string
}

// PushAll writes every local key to the remote document.
func (s *Syncer) PushAll(ctx context.Context) (*PushResult, error) {
	values, err := s.local.ExportAll(ctx)
	if err != nil {
		return nil, &SyncError{Op: OpPush, PlayerID: s.playerID, Err: err}
	}
	if err := s.remote.Merge(ctx, s.playerID, values); err != nil {
		s.log.Warn().Err(err).Str("player", s.playerID).Msg("push failed")
		return nil, &SyncError{Op: OpPush, PlayerID: s.playerID, Err: err}
	}
	keys := sortedKeys(values)
	s.log.Info().Str("player", s.playerID).Int("keys", len(keys)).Msg("pushed state")
	return &PushResult{Keys: keys}, nil
}

type PullResult struct {
	// Empty is set when the remote has no document for the player. Local
	// state is left untouched in that case.
	Empty    bool
	Imported []string
	Skipped  []string
}

// PullAll overwrites every local key present in the remote document and
// reloads the engine.
func (s *Syncer) PullAll(ctx context.Context) (*PullResult, error) {
	doc, err := s.remote.Fetch(ctx, s.playerID)
	if err != nil {
		s.log.Warn().Err(err).Str("player", s.playerID).Msg("pull failed")
		return nil, &SyncError{Op: OpPull, PlayerID: s.playerID, Err: err}
	}
	if doc == nil || len(doc.Values) == 0 {
		return &PullResult{Empty: true}, nil
	}

	skipped, err := s.local.ImportAll(ctx, doc.Values)
	if err != nil {
		return nil, &SyncError{Op: OpPull, PlayerID: s.playerID, Err: err}
	}
	res := &PullResult{Skipped: skipped}
	for _, k := range sortedKeys(doc.Values) {
		if !slices.Contains(skipped, k) {
			res.Imported = append(res.Imported, k)
		}
	}
	s.log.Info().Str("player", s.playerID).Int("keys", len(res.Imported)).Msg("pulled state")
	return res, nil
}

type DiffStatus string

const (
	DiffLocalOnly  DiffStatus = "localOnly"
	DiffRemoteOnly DiffStatus = "remoteOnly"
	DiffChanged    DiffStatus = "changed"
)

type KeyDiff struct {
	Key    string
	Status DiffStatus
}

// Diff compares the local export with the remote document key by key.
// Identical keys are omitted.
func (s *Syncer) Diff(ctx context.Context) ([]KeyDiff, error) {
	var (
		local map[string]json.RawMessage
		doc   *storage.Document
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		local, err = s.local.ExportAll(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		doc, err = s.remote.Fetch(gCtx, s.playerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, &SyncError{Op: OpDiff, PlayerID: s.playerID, Err: err}
	}

	remote := map[string]json.RawMessage{}
	if doc != nil {
		remote = doc.Values
	}
	return diffValues(local, remote), nil
}

func diffValues(local, remote map[string]json.RawMessage) []KeyDiff {
	var out []KeyDiff
	for _, k := range sortedKeys(local) {
		r, ok := remote[k]
		switch {
		case !ok:
			out = append(out, KeyDiff{Key: k, Status: DiffLocalOnly})
		case !sameJSON(local[k], r):
			out = append(out, KeyDiff{Key: k, Status: DiffChanged})
		}
	}
	for _, k := range sortedKeys(remote) {
		if _, ok := local[k]; !ok {
			out = append(out, KeyDiff{Key: k, Status: DiffRemoteOnly})
		}
	}
	return out
}

// sameJSON compares two values ignoring insignificant whitespace.
func sameJSON(a, b json.RawMessage) bool {
	var ca, cb bytes.Buffer
	if json.Compact(&ca, a) != nil || json.Compact(&cb, b) != nil {
		return bytes.Equal(a, b)
	}
	return bytes.Equal(ca.Bytes(), cb.Bytes())
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
