package claim

import (
	"context"
	"sync"
	"time"

	"github.com/covena/covena/pkg/adapter"
	"github.com/covena/covena/pkg/model"
	"github.com/covena/covena/pkg/policy"
	"github.com/covena/covena/pkg/repository"
	"github.com/covena/covena/pkg/scheduler"
	"github.com/covena/covena/pkg/utils/logging"
)

// Advisor produces adjuster commentary for a claim. It never fails: a
// broken advisory service degrades to a fallback string.
type Advisor interface {
	AdviseClaim(ctx context.Context, description string, amount float64) string
}

// UseCase orchestrates the claim lifecycle: submission, the concurrent
// advisory fetch, the policy-scheduled automatic resolution, and the
// administrative review actions.
type UseCase struct {
	repo    repository.Repository
	advisor Advisor
	policy  *policy.Engine
	sched   scheduler.Scheduler
	storage adapter.Storage
	audit   adapter.AuditSink

	mu     sync.Mutex
	closed bool
	timers map[model.ClaimID]scheduler.Handle
	wg     sync.WaitGroup
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithScheduler replaces the wall-clock scheduler, mainly for tests.
func WithScheduler(s scheduler.Scheduler) Option {
	return func(uc *UseCase) {
		uc.sched = s
	}
}

// WithStorage enables attachment upload on submission.
func WithStorage(s adapter.Storage) Option {
	return func(uc *UseCase) {
		uc.storage = s
	}
}

// WithAuditSink enables audit event recording for lifecycle actions.
func WithAuditSink(s adapter.AuditSink) Option {
	return func(uc *UseCase) {
		uc.audit = s
	}
}

// New creates a new claim UseCase instance
func New(
	repo repository.Repository,
	advisor Advisor,
	policyEngine *policy.Engine,
	opts ...Option,
) *UseCase {
	uc := &UseCase{
		repo:    repo,
		advisor: advisor,
		policy:  policyEngine,
		sched:   scheduler.New(),
		timers:  make(map[model.ClaimID]scheduler.Handle),
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// Wait blocks until all in-flight advisory fetches have settled.
func (u *UseCase) Wait() {
	u.wg.Wait()
}

// Close cancels every pending scheduled resolution and drains in-flight
// advisory fetches. Claims whose timer had not fired stay in analyzing;
// no mutation happens after Close returns.
func (u *UseCase) Close() {
	u.mu.Lock()
	u.closed = true
	for id, handle := range u.timers {
		handle.Cancel()
		delete(u.timers, id)
	}
	u.mu.Unlock()

	u.wg.Wait()
}

// fetchAdvisory attaches adjuster commentary in the background. The
// advisory write touches only the advisory field, so it can land before
// or after the status settles without clobbering it.
func (u *UseCase) fetchAdvisory(ctx context.Context, claim *model.Claim) {
	ctx = context.WithoutCancel(ctx)

	u.wg.Add(1)
	go func() {
		defer u.wg.Done()

		text := u.advisor.AdviseClaim(ctx, claim.Description, claim.Amount)
		if err := u.repo.AttachAdvisory(ctx, claim.ID, text); err != nil {
			logging.From(ctx).Warn("failed to attach advisory",
				"claim_id", claim.ID, "error", err)
		}
	}()
}

func (u *UseCase) recordAudit(ctx context.Context, ev *model.AuditEvent) {
	if u.audit == nil {
		return
	}
	if err := u.audit.InsertAuditEvent(ctx, ev); err != nil {
		logging.From(ctx).Warn("failed to record audit event",
			"claim_id", ev.ClaimID, "action", ev.Action, "error", err)
	}
}

func newAuditEvent(id model.ClaimID, action model.AuditAction, actor string, prev, next model.ClaimStatus) *model.AuditEvent {
	return &model.AuditEvent{
		ClaimID:    id,
		Action:     action,
		Actor:      actor,
		PrevStatus: prev,
		NextStatus: next,
		OccurredAt: time.Now(),
	}
}
