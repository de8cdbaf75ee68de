// Package pipeline orchestrates a full ingestion run: fetch, gather,
// filter, research, merge, sync. Phases run in order and the run halts on
// the first failure; every transition is persisted so partial runs remain
// inspectable. Concurrent runs against the same candidates dir are not
// supported and must be prevented by the scheduler.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/ai"
	"github.com/jobsift/jobsift/internal/candidate"
	"github.com/jobsift/jobsift/internal/config"
	"github.com/jobsift/jobsift/internal/dedupe"
	"github.com/jobsift/jobsift/internal/fetch"
	"github.com/jobsift/jobsift/internal/notify"
	"github.com/jobsift/jobsift/internal/research"
	jobsync "github.com/jobsift/jobsift/internal/sync"
)

const defaultPhaseTimeout = 35 * time.Minute

// IdentitySource supplies the existing-rows snapshot for the new-candidate
// diff.
type IdentitySource interface {
	IdentityRows(ctx context.Context) ([]candidate.Candidate, error)
}

// Deps are the collaborators of a run. Gatherer and Researcher may be nil;
// their phases are then skipped, which degrades the run to board-API intake
// only.
type Deps struct {
	Sources    []fetch.Source
	Processor  *fetch.Processor
	Files      *candidate.FileStore
	Gatherer   ai.Gatherer
	Researcher ai.Researcher
	Research   *research.Service
	Syncer     *jobsync.Syncer
	Identities IdentitySource
	Notifier   notify.Notifier
	Logger     *zap.Logger
}

// Runner executes pipeline runs.
type Runner struct {
	deps         Deps
	params       config.Params
	phaseTimeout time.Duration
	now          func() time.Time
}

func NewRunner(deps Deps, params config.Params) *Runner {
	return &Runner{
		deps:         deps,
		params:       params,
		phaseTimeout: defaultPhaseTimeout,
		now:          time.Now,
	}
}

// SetPhaseTimeout overrides the per-phase deadline.
func (r *Runner) SetPhaseTimeout(d time.Duration) {
	if d > 0 {
		r.phaseTimeout = d
	}
}

type phase struct {
	name string
	skip bool
	run  func(ctx context.Context, summary *Summary) error
}

// Run executes one full pipeline run. The returned state is always usable,
// also when err is non-nil.
func (r *Runner) Run(ctx context.Context) (*RunState, error) {
	state := newRunState(r.params.RunsDir, r.now(), r.params.ScoreCutoff)
	if err := state.save(); err != nil {
		return state, err
	}

	r.notify(ctx, notify.Event{
		Title:     "Job pipeline started",
		Body:      fmt.Sprintf("Run %s started. Collecting and researching jobs now.", state.RunID),
		Severity:  notify.SeverityInfo,
		EventType: "pipeline_started",
		Metadata:  map[string]string{"run_id": state.RunID},
	})

	summary := &Summary{}
	phases := []phase{
		{name: "fetch", run: r.fetchPhase},
		{name: "gather", skip: r.deps.Gatherer == nil, run: r.gatherPhase},
		{name: "filter", run: r.filterPhase},
		{name: "research", skip: r.deps.Researcher == nil, run: r.researchPhase},
		{name: "merge", skip: r.deps.Researcher == nil, run: r.mergePhase},
		{name: "sync", run: r.syncPhase},
	}

	for _, p := range phases {
		if err := r.runPhase(ctx, state, p, summary); err != nil {
			return state, r.fail(ctx, state, err)
		}
	}

	now := r.now()
	state.FinishedAt = &now
	state.Status = StatusSuccess
	state.Summary = summary
	if err := state.save(); err != nil {
		return state, err
	}

	r.notify(ctx, notify.Event{
		Title: "Job pipeline completed",
		Body: fmt.Sprintf("Run %s finished. Researched %d jobs, synced %d new roles.",
			state.RunID, summary.Researched, summary.Inserted),
		Severity:  notify.SeveritySuccess,
		EventType: "pipeline_success",
		Metadata: map[string]string{
			"run_id":     state.RunID,
			"researched": fmt.Sprintf("%d", summary.Researched),
			"inserted":   fmt.Sprintf("%d", summary.Inserted),
		},
	})

	return state, nil
}

func (r *Runner) runPhase(ctx context.Context, state *RunState, p phase, summary *Summary) error {
	started := r.now()
	step := StepState{Name: p.name, Status: StatusRunning, StartedAt: started}

	if p.skip {
		step.Status = StatusSkipped
		state.Steps = append(state.Steps, step)
		r.deps.Logger.Info("phase skipped", zap.String("phase", p.name))
		return state.save()
	}

	state.Steps = append(state.Steps, step)
	if err := state.save(); err != nil {
		return err
	}
	r.deps.Logger.Info("phase started", zap.String("phase", p.name))

	phaseCtx, cancel := context.WithTimeout(ctx, r.phaseTimeout)
	err := p.run(phaseCtx, summary)
	cancel()

	finished := r.now()
	last := &state.Steps[len(state.Steps)-1]
	last.FinishedAt = &finished
	last.DurationMs = finished.Sub(started).Milliseconds()

	if err != nil {
		last.Status = StatusFailed
		last.Error = err.Error()
		if saveErr := state.save(); saveErr != nil {
			r.deps.Logger.Error("could not persist run state", zap.Error(saveErr))
		}
		return fmt.Errorf("%s: %w", p.name, err)
	}

	last.Status = StatusSuccess
	r.deps.Logger.Info("phase finished",
		zap.String("phase", p.name),
		zap.Int64("duration_ms", last.DurationMs),
	)
	return state.save()
}

func (r *Runner) fail(ctx context.Context, state *RunState, err error) error {
	now := r.now()
	state.FinishedAt = &now
	state.Status = StatusFailed
	state.Error = err.Error()
	if saveErr := state.save(); saveErr != nil {
		r.deps.Logger.Error("could not persist run state", zap.Error(saveErr))
	}

	event := notify.Event{
		Title:     "Job pipeline failed",
		Severity:  notify.SeverityError,
		EventType: "pipeline_failed",
	}
	if ai.IsNeedsIntervention(err) {
		event.Title = "Job pipeline needs intervention"
		event.Severity = notify.SeverityWarning
		event.EventType = "pipeline_attention_needed"
	}
	event.Body = fmt.Sprintf("Run %s failed at %s. Error: %v", state.RunID, state.lastStep(), err)
	event.Metadata = map[string]string{
		"run_id": state.RunID,
		"step":   state.lastStep(),
	}
	r.notify(ctx, event)

	return err
}

// notify delivers best-effort; a failed notification never changes the run
// outcome.
func (r *Runner) notify(ctx context.Context, event notify.Event) {
	if r.deps.Notifier == nil {
		return
	}
	if err := r.deps.Notifier.Notify(ctx, event); err != nil {
		r.deps.Logger.Warn("notification delivery failed",
			zap.String("title", event.Title),
			zap.Error(err),
		)
	}
}

// fetchPhase pulls the board APIs. Individual sources may fail without
// failing the phase; the phase fails only when every source failed.
func (r *Runner) fetchPhase(ctx context.Context, _ *Summary) error {
	if len(r.deps.Sources) == 0 {
		r.deps.Logger.Info("no board sources configured")
		return nil
	}

	results := fetch.All(ctx, r.deps.Sources, r.deps.Processor, r.deps.Files, r.deps.Logger)

	failed := 0
	for _, result := range results {
		if result.Err != nil {
			failed++
		}
	}
	if failed == len(results) {
		return fmt.Errorf("all %d board sources failed", failed)
	}
	return nil
}

// gatherPhase runs AI intake and routes the results through the same
// normalize-filter-score path the board sources use, so the model's own
// scoring never bypasses the configured rules.
func (r *Runner) gatherPhase(ctx context.Context, _ *Summary) error {
	gathered, err := r.deps.Gatherer.Gather(ctx)
	if err != nil {
		return err
	}

	for source, rows := range gathered {
		processed := r.deps.Processor.Process(source, rows)
		if err := r.deps.Files.Save(source, processed); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) filterPhase(ctx context.Context, summary *Summary) error {
	existing, err := r.deps.Identities.IdentityRows(ctx)
	if err != nil {
		return err
	}

	stats, err := r.deps.Research.PlanQueue(dedupe.NewIndex(existing))
	if err != nil {
		return err
	}
	summary.ResearchQueue = stats.Queued
	return nil
}

func (r *Runner) researchPhase(ctx context.Context, summary *Summary) error {
	queue, err := r.deps.Research.LoadQueue()
	if err != nil {
		return err
	}
	if len(queue) == 0 {
		r.deps.Logger.Info("no jobs need research")
		return r.deps.Research.SaveResults(nil)
	}

	results, err := r.deps.Researcher.Research(ctx, queue)
	if err != nil {
		return err
	}
	summary.Researched = len(results)
	return r.deps.Research.SaveResults(results)
}

func (r *Runner) mergePhase(_ context.Context, _ *Summary) error {
	results, err := r.deps.Research.LoadResults()
	if err != nil {
		return err
	}
	_, err = r.deps.Research.MergeResults(results)
	return err
}

func (r *Runner) syncPhase(ctx context.Context, summary *Summary) error {
	res, err := r.deps.Syncer.Sync(ctx)
	if err != nil {
		return err
	}
	summary.Inserted = res.Inserted
	return nil
}
