package wizard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"quickfolio-backend/internal/catalog"
	"quickfolio-backend/internal/domain"
	"quickfolio-backend/internal/generator"
)

// --- fakes ---

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, userID string, record domain.ContentRecord, intent domain.SubmitIntent) (*domain.PublishResult, error) {
	args := m.Called(ctx, userID, record, intent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PublishResult), args.Error(1)
}

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, profession string) (*domain.GeneratedContent, error) {
	args := m.Called(ctx, profession)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GeneratedContent), args.Error(1)
}

// blockingGenerator parks every call until release is closed.
type blockingGenerator struct {
	started chan struct{}
	release chan struct{}
	calls   int32
}

func newBlockingGenerator() *blockingGenerator {
	return &blockingGenerator{started: make(chan struct{}, 4), release: make(chan struct{})}
}

func (g *blockingGenerator) Generate(_ context.Context, profession string) (*domain.GeneratedContent, error) {
	atomic.AddInt32(&g.calls, 1)
	g.started <- struct{}{}
	<-g.release
	return generator.Content(profession), nil
}

// blockingPublisher parks every call until release is closed.
type blockingPublisher struct {
	started chan struct{}
	release chan struct{}
	calls   int32
}

func (p *blockingPublisher) Publish(_ context.Context, _ string, _ domain.ContentRecord, intent domain.SubmitIntent) (*domain.PublishResult, error) {
	atomic.AddInt32(&p.calls, 1)
	p.started <- struct{}{}
	<-p.release
	return &domain.PublishResult{PortfolioID: "p-1", Published: intent == domain.IntentPublish}, nil
}

type recorder struct {
	mu      sync.Mutex
	notices []domain.Notice
}

func (r *recorder) Notify(_ context.Context, n domain.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recorder) all() []domain.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Notice(nil), r.notices...)
}

func (r *recorder) last() domain.Notice {
	all := r.all()
	if len(all) == 0 {
		return domain.Notice{}
	}
	return all[len(all)-1]
}

func newWizard(t *testing.T, gen domain.ContentGenerator, pub domain.Publisher) (*Wizard, *recorder) {
	t.Helper()
	rec := &recorder{}
	if gen == nil {
		gen = generator.NewSimulated(0)
	}
	if pub == nil {
		pub = new(MockPublisher)
	}
	w := New("session-1", "user-1", Deps{
		Catalog:   catalog.Default(),
		Generator: gen,
		Publisher: pub,
		Notifier:  rec,
	})
	return w, rec
}

func strPtr(s string) *string { return &s }

// toPreview fills the required fields and walks to step 4.
func toPreview(t *testing.T, w *Wizard) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, w.UpdateContent(ctx, domain.ContentPatch{Name: strPtr("Ada"), Profession: strPtr("developer")}))
	require.NoError(t, w.Advance(ctx))
	_, err := w.SelectTemplate(ctx, "minimalist")
	require.NoError(t, err)
	require.NoError(t, w.Advance(ctx))
	require.NoError(t, w.Advance(ctx))
	require.Equal(t, domain.StepPreview, w.Snapshot().Step)
}

// --- navigation ---

func TestAdvance_BasicInfoGate(t *testing.T) {
	tests := []struct {
		name       string
		record     domain.ContentPatch
		wantField  string
		wantNotice bool
	}{
		{"empty record", domain.ContentPatch{}, "name", true},
		{"name only", domain.ContentPatch{Name: strPtr("Ada")}, "profession", true},
		{"profession only", domain.ContentPatch{Profession: strPtr("designer")}, "name", true},
		{"whitespace name", domain.ContentPatch{Name: strPtr("   "), Profession: strPtr("designer")}, "name", true},
		{"unknown profession", domain.ContentPatch{Name: strPtr("Ada"), Profession: strPtr("astronaut")}, "profession", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, rec := newWizard(t, nil, nil)
			require.NoError(t, w.UpdateContent(context.Background(), tt.record))
			before := w.Snapshot()

			err := w.Advance(context.Background())

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
			after := w.Snapshot()
			assert.Equal(t, domain.StepBasicInfo, after.Step)
			assert.Equal(t, before.Record, after.Record)
			if tt.wantNotice {
				assert.Equal(t, domain.NoticeError, rec.last().Kind)
				assert.Equal(t, "Missing information", rec.last().Title)
			}
		})
	}
}

func TestAdvance_MovesOneStepPerCall(t *testing.T) {
	w, rec := newWizard(t, nil, nil)
	ctx := context.Background()
	require.NoError(t, w.UpdateContent(ctx, domain.ContentPatch{Name: strPtr("Ada"), Profession: strPtr("designer")}))

	require.NoError(t, w.Advance(ctx))
	assert.Equal(t, domain.StepChooseTemplate, w.Snapshot().Step)
	assert.Empty(t, rec.all())

	// step 2 gate: no template yet
	err := w.Advance(ctx)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "template_id", verr.Field)
	assert.Equal(t, "Template required", rec.last().Title)
	assert.Equal(t, domain.StepChooseTemplate, w.Snapshot().Step)

	_, err = w.SelectTemplate(ctx, "professional")
	require.NoError(t, err)
	require.NoError(t, w.Advance(ctx))
	assert.Equal(t, domain.StepContent, w.Snapshot().Step)

	// content step has no gate
	require.NoError(t, w.Advance(ctx))
	assert.Equal(t, domain.StepPreview, w.Snapshot().Step)

	// last step: no-op
	require.NoError(t, w.Advance(ctx))
	assert.Equal(t, domain.StepPreview, w.Snapshot().Step)
}

func TestRetreat(t *testing.T) {
	w, _ := newWizard(t, nil, nil)
	ctx := context.Background()

	require.NoError(t, w.Retreat(ctx))
	assert.Equal(t, domain.StepBasicInfo, w.Snapshot().Step)

	toPreview(t, w)
	require.NoError(t, w.Retreat(ctx))
	assert.Equal(t, domain.StepContent, w.Snapshot().Step)
	require.NoError(t, w.Retreat(ctx))
	require.NoError(t, w.Retreat(ctx))
	require.NoError(t, w.Retreat(ctx))
	assert.Equal(t, domain.StepBasicInfo, w.Snapshot().Step)
}

// --- template selection ---

func TestApplyExternalTemplate(t *testing.T) {
	ctx := context.Background()

	t.Run("redelivery on step 1 fast-forwards once", func(t *testing.T) {
		w, _ := newWizard(t, nil, nil)

		assert.True(t, w.ApplyExternalTemplate(ctx, "creative"))
		assert.Equal(t, domain.StepChooseTemplate, w.Snapshot().Step)

		assert.False(t, w.ApplyExternalTemplate(ctx, "creative"))
		s := w.Snapshot()
		assert.Equal(t, domain.StepChooseTemplate, s.Step)
		assert.Equal(t, "creative", s.Record.TemplateID)
		assert.False(t, s.TemplateExplicit)
	})

	t.Run("redelivery after navigating back does not fast-forward again", func(t *testing.T) {
		w, _ := newWizard(t, nil, nil)
		require.True(t, w.ApplyExternalTemplate(ctx, "creative"))
		require.NoError(t, w.Retreat(ctx))

		assert.False(t, w.ApplyExternalTemplate(ctx, "creative"))
		assert.Equal(t, domain.StepBasicInfo, w.Snapshot().Step)
	})

	t.Run("explicit selection wins over earlier hint", func(t *testing.T) {
		w, _ := newWizard(t, nil, nil)
		require.True(t, w.ApplyExternalTemplate(ctx, "creative"))

		changed, err := w.SelectTemplate(ctx, "professional")
		require.NoError(t, err)
		assert.True(t, changed)

		assert.False(t, w.ApplyExternalTemplate(ctx, "bento"))
		assert.Equal(t, "professional", w.Snapshot().Record.TemplateID)
	})

	t.Run("hint ignored after explicit selection", func(t *testing.T) {
		w, _ := newWizard(t, nil, nil)
		_, err := w.SelectTemplate(ctx, "minimalist")
		require.NoError(t, err)

		assert.False(t, w.ApplyExternalTemplate(ctx, "creative"))
		s := w.Snapshot()
		assert.Equal(t, "minimalist", s.Record.TemplateID)
		assert.Equal(t, domain.StepBasicInfo, s.Step)
	})

	t.Run("applied beyond step 1 does not move the step", func(t *testing.T) {
		w, _ := newWizard(t, nil, nil)
		require.NoError(t, w.UpdateContent(ctx, domain.ContentPatch{Name: strPtr("Ada"), Profession: strPtr("writer")}))
		require.NoError(t, w.Advance(ctx))

		assert.True(t, w.ApplyExternalTemplate(ctx, "bento"))
		assert.Equal(t, domain.StepChooseTemplate, w.Snapshot().Step)
	})

	t.Run("empty and unknown hints are ignored", func(t *testing.T) {
		w, _ := newWizard(t, nil, nil)

		assert.False(t, w.ApplyExternalTemplate(ctx, ""))
		assert.False(t, w.ApplyExternalTemplate(ctx, "layers"))
		s := w.Snapshot()
		assert.Empty(t, s.Record.TemplateID)
		assert.Equal(t, domain.StepBasicInfo, s.Step)

		assert.True(t, w.ApplyExternalTemplate(ctx, "bento"))
	})
}

func TestSelectTemplate(t *testing.T) {
	ctx := context.Background()
	w, _ := newWizard(t, nil, nil)

	changed, err := w.SelectTemplate(ctx, "bento")
	require.NoError(t, err)
	assert.True(t, changed)
	stamp := w.Snapshot().UpdatedAt

	changed, err = w.SelectTemplate(ctx, "bento")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, stamp, w.Snapshot().UpdatedAt)

	_, err = w.SelectTemplate(ctx, "unknown")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "bento", w.Snapshot().Record.TemplateID)
}

// --- content generation ---

func TestGenerateContent(t *testing.T) {
	ctx := context.Background()

	t.Run("overwrites content fields", func(t *testing.T) {
		w, rec := newWizard(t, nil, nil)
		require.NoError(t, w.UpdateContent(ctx, domain.ContentPatch{
			Name:       strPtr("Ada"),
			Profession: strPtr("designer"),
			About:      strPtr("hand written"),
			Skills:     strPtr("Knitting"),
		}))

		require.NoError(t, w.GenerateContent(ctx))

		r := w.Snapshot().Record
		assert.NotEmpty(t, r.About)
		assert.NotEqual(t, "hand written", r.About)
		assert.NotEmpty(t, r.Skills)
		assert.NotContains(t, r.Skills, "Knitting")
		assert.NotEmpty(t, r.Experience)
		assert.NotEmpty(t, r.Projects)
		assert.Equal(t, "Ada", r.Name)
		assert.False(t, w.Snapshot().Generating)
		assert.Equal(t, "Content generated", rec.last().Title)
	})

	t.Run("requires a profession", func(t *testing.T) {
		gen := new(MockGenerator)
		w, rec := newWizard(t, gen, nil)

		err := w.GenerateContent(ctx)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "profession", verr.Field)
		assert.Equal(t, domain.NoticeError, rec.last().Kind)
		gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	})

	t.Run("second call while loading is a no-op", func(t *testing.T) {
		gen := newBlockingGenerator()
		w, _ := newWizard(t, gen, nil)
		require.NoError(t, w.UpdateContent(ctx, domain.ContentPatch{Profession: strPtr("designer"), About: strPtr("mine")}))

		done := make(chan error, 1)
		go func() { done <- w.GenerateContent(ctx) }()
		<-gen.started

		assert.True(t, w.Snapshot().Generating)
		assert.ErrorIs(t, w.GenerateContent(ctx), ErrBusy)
		assert.Equal(t, "mine", w.Snapshot().Record.About)

		close(gen.release)
		require.NoError(t, <-done)
		assert.Equal(t, int32(1), atomic.LoadInt32(&gen.calls))
		assert.False(t, w.Snapshot().Generating)
		assert.Contains(t, w.Snapshot().Record.About, "passionate designer")
	})

	t.Run("failure leaves record untouched and clears flag", func(t *testing.T) {
		gen := new(MockGenerator)
		gen.On("Generate", mock.Anything, "writer").Return(nil, errors.New("model unavailable")).Once()
		w, rec := newWizard(t, gen, nil)
		require.NoError(t, w.UpdateContent(ctx, domain.ContentPatch{
			Profession: strPtr("writer"),
			About:      strPtr("keep me"),
			Projects:   strPtr("Novel - 300 pages"),
		}))
		before := w.Snapshot().Record

		err := w.GenerateContent(ctx)

		require.Error(t, err)
		after := w.Snapshot()
		assert.Equal(t, before, after.Record)
		assert.False(t, after.Generating)
		assert.Equal(t, "Generation failed", rec.last().Title)

		// retry is possible once the flag is clear
		gen.On("Generate", mock.Anything, "writer").Return(generator.Content("writer"), nil).Once()
		require.NoError(t, w.GenerateContent(ctx))
		gen.AssertExpectations(t)
	})

	t.Run("empty result counts as a failure", func(t *testing.T) {
		gen := new(MockGenerator)
		gen.On("Generate", mock.Anything, "marketer").Return(nil, nil).Once()
		w, rec := newWizard(t, gen, nil)
		require.NoError(t, w.UpdateContent(ctx, domain.ContentPatch{Profession: strPtr("marketer"), About: strPtr("keep me")}))

		err := w.GenerateContent(ctx)

		assert.ErrorIs(t, err, ErrNoContent)
		assert.Equal(t, "keep me", w.Snapshot().Record.About)
		assert.False(t, w.Snapshot().Generating)
		assert.Equal(t, "Generation failed", rec.last().Title)
	})
}

// --- submit ---

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("only from preview step", func(t *testing.T) {
		pub := new(MockPublisher)
		w, _ := newWizard(t, nil, pub)

		_, err := w.Submit(ctx, domain.IntentPublish)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid intent", func(t *testing.T) {
		w, _ := newWizard(t, nil, nil)
		toPreview(t, w)

		_, err := w.Submit(ctx, "archive")
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("publish hands off record and closes the flow", func(t *testing.T) {
		pub := new(MockPublisher)
		w, rec := newWizard(t, nil, pub)
		toPreview(t, w)
		record := w.Snapshot().Record
		want := &domain.PublishResult{PortfolioID: "p-1", Slug: "ada", Published: true}
		pub.On("Publish", mock.Anything, "user-1", record, domain.IntentPublish).Return(want, nil).Once()

		got, err := w.Submit(ctx, domain.IntentPublish)

		require.NoError(t, err)
		assert.Equal(t, want, got)
		s := w.Snapshot()
		assert.True(t, s.Done)
		assert.Equal(t, want, s.Result)
		assert.Equal(t, "Portfolio published!", rec.last().Title)

		_, err = w.Submit(ctx, domain.IntentPublish)
		assert.ErrorIs(t, err, ErrClosed)
		assert.ErrorIs(t, w.Advance(ctx), ErrClosed)
		assert.ErrorIs(t, w.UpdateContent(ctx, domain.ContentPatch{Name: strPtr("x")}), ErrClosed)
		assert.False(t, w.ApplyExternalTemplate(ctx, "creative"))
		pub.AssertExpectations(t)
	})

	t.Run("draft intent reaches the publisher", func(t *testing.T) {
		pub := new(MockPublisher)
		w, rec := newWizard(t, nil, pub)
		toPreview(t, w)
		pub.On("Publish", mock.Anything, "user-1", mock.Anything, domain.IntentDraft).
			Return(&domain.PublishResult{PortfolioID: "p-2"}, nil).Once()

		_, err := w.Submit(ctx, domain.IntentDraft)

		require.NoError(t, err)
		assert.Equal(t, "Draft saved", rec.last().Title)
		pub.AssertExpectations(t)
	})

	t.Run("double submit is a no-op while loading", func(t *testing.T) {
		pub := &blockingPublisher{started: make(chan struct{}, 2), release: make(chan struct{})}
		w, _ := newWizard(t, nil, pub)
		toPreview(t, w)

		done := make(chan error, 1)
		go func() {
			_, err := w.Submit(ctx, domain.IntentPublish)
			done <- err
		}()
		<-pub.started

		_, err := w.Submit(ctx, domain.IntentPublish)
		assert.ErrorIs(t, err, ErrBusy)
		assert.ErrorIs(t, w.Retreat(ctx), ErrBusy)

		close(pub.release)
		require.NoError(t, <-done)
		assert.Equal(t, int32(1), atomic.LoadInt32(&pub.calls))
	})

	t.Run("failure is recoverable", func(t *testing.T) {
		pub := new(MockPublisher)
		w, rec := newWizard(t, nil, pub)
		toPreview(t, w)
		before := w.Snapshot()
		pub.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("db down")).Once()

		_, err := w.Submit(ctx, domain.IntentPublish)

		require.Error(t, err)
		after := w.Snapshot()
		assert.False(t, after.Submitting)
		assert.False(t, after.Done)
		assert.Equal(t, before.Record, after.Record)
		assert.Equal(t, domain.NoticeError, rec.last().Kind)

		pub.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(&domain.PublishResult{PortfolioID: "p-3"}, nil).Once()
		_, err = w.Submit(ctx, domain.IntentPublish)
		require.NoError(t, err)
	})

	t.Run("blocked while generating", func(t *testing.T) {
		gen := newBlockingGenerator()
		w, _ := newWizard(t, gen, new(MockPublisher))
		toPreview(t, w)

		done := make(chan error, 1)
		go func() { done <- w.GenerateContent(ctx) }()
		<-gen.started

		_, err := w.Submit(ctx, domain.IntentDraft)
		assert.ErrorIs(t, err, ErrBusy)

		close(gen.release)
		require.NoError(t, <-done)
	})
}

// --- persistence ---

func TestRestore_ClearsLoadingFlags(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	state := &domain.WizardState{
		SessionID:  "s",
		UserID:     "u",
		Step:       domain.StepContent,
		Generating: true,
		Submitting: true,
		SeenHints:  []string{"creative"},
		CreatedAt:  now,
	}

	w := Restore(state, Deps{Catalog: catalog.Default(), Generator: generator.NewSimulated(0)})
	s := w.Snapshot()

	assert.False(t, s.Generating)
	assert.False(t, s.Submitting)
	assert.Equal(t, domain.StepContent, s.Step)
	assert.True(t, s.HasSeenHint("creative"))
	assert.True(t, state.Generating, "input state must not be modified")

	assert.False(t, w.ApplyExternalTemplate(context.Background(), "creative"))
}
