package session

import (
	"context"

	"griddle/internal/batch"
	"griddle/internal/logging"
	"griddle/internal/registry"
)

// RunRequest parameterizes one batch pass.
type RunRequest struct {
	IDs   []string
	Start int
	End   int

	SkipReady          bool
	MuteExpressions    bool
	RestoreExpressions bool
	// ApplyWindow sets the host playback window to [Start, End] before the
	// pass; failures are logged, never fatal.
	ApplyWindow bool

	Progress batch.ProgressFunc
	Yield    func()
}

// RunBatch drives one sequential pass over the requested ids: apply the
// playback window, mute broken references, process, restore. Only one pass
// may run per session at a time; overlapping calls return ErrRunInProgress.
// An empty id list is a soft no-op returning an empty map with no host calls.
func (s *Session) RunBatch(ctx context.Context, req RunRequest) (map[string]registry.Status, error) {
	if len(req.IDs) == 0 {
		return map[string]registry.Status{}, nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrRunInProgress
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	if req.ApplyWindow && s.collab.WindowSetter != nil {
		if err := s.collab.WindowSetter.Set(ctx, req.Start, req.End); err != nil {
			s.logger.Warn("could not apply playback window",
				logging.Int("start", req.Start),
				logging.Int("end", req.End),
				logging.Error(err),
			)
		}
	}

	muted := 0
	if req.MuteExpressions {
		count, err := s.MuteBrokenReferences(ctx)
		if err != nil {
			s.logger.Warn("broken-reference scan failed; continuing unmuted", logging.Error(err))
		} else {
			muted = count
		}
	}

	results := s.runner.Run(ctx, req.IDs, req.Start, req.End, batch.Options{
		SkipReady: req.SkipReady,
		Progress:  req.Progress,
		Yield:     req.Yield,
	})

	if req.RestoreExpressions && muted > 0 {
		s.RestoreMutedReferences(ctx)
	}

	return results, nil
}
