package claim_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/covena/covena/pkg/advisory"
	"github.com/covena/covena/pkg/model"
	"github.com/covena/covena/pkg/policy"
	"github.com/covena/covena/pkg/repository"
	"github.com/covena/covena/pkg/scheduler"
	claimuc "github.com/covena/covena/pkg/usecase/claim"
	"github.com/m-mizutani/gt"
)

// mockAdvisor returns a fixed advisory. When block is set it waits until
// the channel closes, simulating a slow advisory service.
type mockAdvisor struct {
	text  string
	block chan struct{}
}

func (m *mockAdvisor) AdviseClaim(ctx context.Context, description string, amount float64) string {
	if m.block != nil {
		<-m.block
	}
	return m.text
}

type mockAuditSink struct {
	mu     sync.Mutex
	events []*model.AuditEvent
}

func (m *mockAuditSink) InsertAuditEvent(ctx context.Context, ev *model.AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *mockAuditSink) actions() []model.AuditAction {
	m.mu.Lock()
	defer m.mu.Unlock()
	actions := make([]model.AuditAction, 0, len(m.events))
	for _, ev := range m.events {
		actions = append(actions, ev.Action)
	}
	return actions
}

type mockStorage struct {
	mu      sync.Mutex
	objects map[string]*bytes.Buffer
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func (m *mockStorage) Put(ctx context.Context, key string) (io.WriteCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = make(map[string]*bytes.Buffer)
	}
	buf := &bytes.Buffer{}
	m.objects[key] = buf
	return nopWriteCloser{buf}, nil
}

func (m *mockStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf, ok := m.objects[key]
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(buf.Bytes())), nil
}

func defaultEngine(t *testing.T) *policy.Engine {
	t.Helper()
	engine, err := policy.New(context.Background(), "")
	gt.NoError(t, err)
	return engine
}

func customEngine(t *testing.T, module string) *policy.Engine {
	t.Helper()
	dir := t.TempDir()
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "resolution.rego"), []byte(module), 0600))
	engine, err := policy.New(context.Background(), dir)
	gt.NoError(t, err)
	return engine
}

func submitInput() claimuc.SubmitInput {
	return claimuc.SubmitInput{
		OwnerID:     "USR-001",
		OwnerName:   "Alex Rivera",
		Category:    model.CategoryWaterDamage,
		Amount:      1200,
		Description: "Pipe burst in kitchen.",
	}
}

func TestSubmitAutoApproval(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	sched := scheduler.NewManual()
	uc := claimuc.New(repo, &mockAdvisor{text: "Legitimacy score: 92."}, defaultEngine(t),
		claimuc.WithScheduler(sched))
	defer uc.Close()

	claim, err := uc.Submit(ctx, submitInput())
	gt.NoError(t, err)
	gt.Equal(t, claim.Status, model.StatusAnalyzing)
	gt.S(t, string(claim.ID)).Contains("CLM-")

	// The default policy arms a five second approval.
	gt.Equal(t, sched.Pending(), 1)

	sched.Advance(4 * time.Second)
	got, err := uc.Get(ctx, claim.ID)
	gt.NoError(t, err)
	gt.Equal(t, got.Status, model.StatusAnalyzing)

	sched.Advance(time.Second)
	got, err = uc.Get(ctx, claim.ID)
	gt.NoError(t, err)
	gt.Equal(t, got.Status, model.StatusApproved)

	uc.Wait()
	got, err = uc.Get(ctx, claim.ID)
	gt.NoError(t, err)
	gt.Equal(t, got.AdvisoryText, "Legitimacy score: 92.")

	// Submission inputs survive the resolution untouched.
	gt.Equal(t, got.Amount, float64(1200))
	gt.Equal(t, got.CreatedAt, claim.CreatedAt)
}

func TestSubmitAdvisoryFailureDoesNotBlockResolution(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	sched := scheduler.NewManual()

	// The advisory service hangs; resolution must proceed regardless.
	block := make(chan struct{})
	advisor := &mockAdvisor{text: advisory.FallbackClaimAdvisory, block: block}
	uc := claimuc.New(repo, advisor, defaultEngine(t), claimuc.WithScheduler(sched))

	claim, err := uc.Submit(ctx, submitInput())
	gt.NoError(t, err)

	sched.Advance(5 * time.Second)
	got, err := uc.Get(ctx, claim.ID)
	gt.NoError(t, err)
	gt.Equal(t, got.Status, model.StatusApproved)
	gt.Equal(t, got.AdvisoryText, "")

	// The late advisory lands without reverting the approved status.
	close(block)
	uc.Wait()
	got, err = uc.Get(ctx, claim.ID)
	gt.NoError(t, err)
	gt.Equal(t, got.Status, model.StatusApproved)
	gt.Equal(t, got.AdvisoryText, advisory.FallbackClaimAdvisory)

	uc.Close()
}

func TestSubmitValidation(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	uc := claimuc.New(repo, &mockAdvisor{text: "ok"}, defaultEngine(t),
		claimuc.WithScheduler(scheduler.NewManual()))
	defer uc.Close()

	bad := submitInput()
	bad.Description = "   "
	_, err := uc.Submit(ctx, bad)
	gt.Error(t, err)

	bad = submitInput()
	bad.Amount = -5
	_, err = uc.Submit(ctx, bad)
	gt.Error(t, err)

	bad = submitInput()
	bad.Category = "meteor_strike"
	_, err = uc.Submit(ctx, bad)
	gt.Error(t, err)

	// Nothing was persisted.
	queue, err := uc.Queue(ctx)
	gt.NoError(t, err)
	gt.Equal(t, len(queue), 0)
}

func TestSubmitPolicyReview(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	sched := scheduler.NewManual()

	engine := customEngine(t, `package resolution

default decision := {"action": "approve", "delay_seconds": 5}

decision := {"action": "review", "delay_seconds": 0} if {
	input.amount > 1000
}
`)
	uc := claimuc.New(repo, &mockAdvisor{text: "needs a human"}, engine,
		claimuc.WithScheduler(sched))
	defer uc.Close()

	claim, err := uc.Submit(ctx, submitInput())
	gt.NoError(t, err)
	gt.Equal(t, claim.Status, model.StatusPendingReview)
	gt.Equal(t, sched.Pending(), 0)

	// A reviewed claim never auto-approves.
	sched.Advance(time.Minute)
	got, err := uc.Get(ctx, claim.ID)
	gt.NoError(t, err)
	gt.Equal(t, got.Status, model.StatusPendingReview)
}

func TestSubmitPolicyHold(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	sched := scheduler.NewManual()

	engine := customEngine(t, `package resolution

default decision := {"action": "hold"}
`)
	uc := claimuc.New(repo, &mockAdvisor{text: "ok"}, engine,
		claimuc.WithScheduler(sched))
	defer uc.Close()

	claim, err := uc.Submit(ctx, submitInput())
	gt.NoError(t, err)
	gt.Equal(t, claim.Status, model.StatusAnalyzing)
	gt.Equal(t, sched.Pending(), 0)

	sched.Advance(time.Hour)
	got, err := uc.Get(ctx, claim.ID)
	gt.NoError(t, err)
	gt.Equal(t, got.Status, model.StatusAnalyzing)
}

func TestIntakeAndReview(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	uc := claimuc.New(repo, &mockAdvisor{text: "looks suspicious"}, defaultEngine(t),
		claimuc.WithScheduler(scheduler.NewManual()))
	defer uc.Close()

	claim, err := uc.Intake(ctx, claimuc.IntakeInput{
		OwnerID:     "USR-002",
		OwnerName:   "Sarah Connor",
		Category:    model.CategoryTheft,
		Amount:      3500,
		Description: "Laptop stolen from parked car.",
	})
	gt.NoError(t, err)
	gt.Equal(t, claim.Status, model.StatusPendingReview)

	gt.NoError(t, uc.Approve(ctx, claim.ID, "admin-01"))

	got, err := uc.Get(ctx, claim.ID)
	gt.NoError(t, err)
	gt.Equal(t, got.Status, model.StatusApproved)

	// Approved is terminal: neither approve nor reject may run again.
	err = uc.Approve(ctx, claim.ID, "admin-01")
	gt.Error(t, err)
	gt.V(t, errors.Is(err, model.ErrInvalidTransition)).Equal(true)

	err = uc.Reject(ctx, claim.ID, "admin-01")
	gt.Error(t, err)
	gt.V(t, errors.Is(err, model.ErrInvalidTransition)).Equal(true)

	got, err = uc.Get(ctx, claim.ID)
	gt.NoError(t, err)
	gt.Equal(t, got.Status, model.StatusApproved)
}

func TestReject(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	uc := claimuc.New(repo, &mockAdvisor{text: "ok"}, defaultEngine(t),
		claimuc.WithScheduler(scheduler.NewManual()))
	defer uc.Close()

	claim, err := uc.Intake(ctx, claimuc.IntakeInput{
		OwnerID:     "USR-002",
		Category:    model.CategoryTheft,
		Amount:      3500,
		Description: "Laptop stolen from parked car.",
	})
	gt.NoError(t, err)

	gt.NoError(t, uc.Reject(ctx, claim.ID, "admin-01"))

	got, err := uc.Get(ctx, claim.ID)
	gt.NoError(t, err)
	gt.Equal(t, got.Status, model.StatusRejected)
}

func TestReviewGuards(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	uc := claimuc.New(repo, &mockAdvisor{text: "ok"}, defaultEngine(t),
		claimuc.WithScheduler(scheduler.NewManual()))
	defer uc.Close()

	// A claim still in analyzing cannot be acted on by an admin.
	claim, err := uc.Submit(ctx, submitInput())
	gt.NoError(t, err)

	err = uc.Approve(ctx, claim.ID, "admin-01")
	gt.Error(t, err)
	gt.V(t, errors.Is(err, model.ErrInvalidTransition)).Equal(true)

	got, err := uc.Get(ctx, claim.ID)
	gt.NoError(t, err)
	gt.Equal(t, got.Status, model.StatusAnalyzing)

	// Unknown IDs surface not-found.
	err = uc.Approve(ctx, "CLM-MISSING", "admin-01")
	gt.Error(t, err)
	gt.V(t, errors.Is(err, model.ErrClaimNotFound)).Equal(true)
}

func TestCloseCancelsScheduledResolution(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	sched := scheduler.NewManual()
	uc := claimuc.New(repo, &mockAdvisor{text: "ok"}, defaultEngine(t),
		claimuc.WithScheduler(sched))

	claim, err := uc.Submit(ctx, submitInput())
	gt.NoError(t, err)
	gt.Equal(t, sched.Pending(), 1)

	uc.Close()
	gt.Equal(t, sched.Pending(), 0)

	// The cancelled timer never fires; the claim stays in analyzing.
	sched.Advance(time.Minute)
	got, err := uc.Get(ctx, claim.ID)
	gt.NoError(t, err)
	gt.Equal(t, got.Status, model.StatusAnalyzing)
}

func TestSubmitAttachments(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	store := &mockStorage{}
	uc := claimuc.New(repo, &mockAdvisor{text: "ok"}, defaultEngine(t),
		claimuc.WithScheduler(scheduler.NewManual()),
		claimuc.WithStorage(store))
	defer uc.Close()

	input := submitInput()
	input.Attachments = []claimuc.Attachment{
		{Name: "report.pdf", Data: strings.NewReader("police report")},
		{Name: "photo.jpg", Data: strings.NewReader("jpeg bytes")},
	}

	claim, err := uc.Submit(ctx, input)
	gt.NoError(t, err)
	gt.Equal(t, len(claim.Attachments), 2)
	gt.Equal(t, claim.Attachments[0], "claims/"+string(claim.ID)+"/report.pdf")

	r, err := store.Get(ctx, claim.Attachments[0])
	gt.NoError(t, err)
	data, err := io.ReadAll(r)
	gt.NoError(t, err)
	gt.Equal(t, string(data), "police report")
}

func TestSubmitAttachmentsWithoutStorage(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	uc := claimuc.New(repo, &mockAdvisor{text: "ok"}, defaultEngine(t),
		claimuc.WithScheduler(scheduler.NewManual()))
	defer uc.Close()

	input := submitInput()
	input.Attachments = []claimuc.Attachment{
		{Name: "report.pdf", Data: strings.NewReader("police report")},
	}

	_, err := uc.Submit(ctx, input)
	gt.Error(t, err)

	queue, err := uc.Queue(ctx)
	gt.NoError(t, err)
	gt.Equal(t, len(queue), 0)
}

func TestAuditTrail(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	sched := scheduler.NewManual()
	sink := &mockAuditSink{}
	uc := claimuc.New(repo, &mockAdvisor{text: "ok"}, defaultEngine(t),
		claimuc.WithScheduler(sched),
		claimuc.WithAuditSink(sink))
	defer uc.Close()

	claim, err := uc.Submit(ctx, submitInput())
	gt.NoError(t, err)
	sched.Advance(5 * time.Second)

	intake, err := uc.Intake(ctx, claimuc.IntakeInput{
		OwnerID:     "USR-002",
		Category:    model.CategoryTheft,
		Amount:      3500,
		Description: "Laptop stolen from parked car.",
	})
	gt.NoError(t, err)
	gt.NoError(t, uc.Reject(ctx, intake.ID, "admin-01"))

	gt.Equal(t, sink.actions(), []model.AuditAction{
		model.AuditClaimSubmitted,
		model.AuditClaimAutoApproved,
		model.AuditClaimIntake,
		model.AuditClaimRejected,
	})

	// The auto-approval is attributed to the system, not a person.
	gt.Equal(t, sink.events[1].ClaimID, claim.ID)
	gt.Equal(t, sink.events[1].Actor, "system")
}

func TestListAndQueue(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	uc := claimuc.New(repo, &mockAdvisor{text: "ok"}, defaultEngine(t),
		claimuc.WithScheduler(scheduler.NewManual()))
	defer uc.Close()

	first, err := uc.Submit(ctx, submitInput())
	gt.NoError(t, err)

	other := submitInput()
	other.OwnerID = "USR-002"
	second, err := uc.Submit(ctx, other)
	gt.NoError(t, err)

	mine, err := uc.List(ctx, "USR-001")
	gt.NoError(t, err)
	gt.Equal(t, len(mine), 1)
	gt.Equal(t, mine[0].ID, first.ID)

	queue, err := uc.Queue(ctx)
	gt.NoError(t, err)
	gt.Equal(t, len(queue), 2)
	gt.Equal(t, queue[0].ID, first.ID)
	gt.Equal(t, queue[1].ID, second.ID)
}
