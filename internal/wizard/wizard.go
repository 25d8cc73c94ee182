// Package wizard implements the portfolio creation flow: four linear steps,
// gated transitions, template selection from either the user or an external
// hint, content generation and the final publish/draft handoff.
package wizard

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"quickfolio-backend/internal/domain"
)

// Deps are the collaborators a wizard needs. All are required except Now.
type Deps struct {
	Catalog   domain.TemplateCatalog
	Generator domain.ContentGenerator
	Publisher domain.Publisher
	Notifier  domain.Notifier
	Now       func() time.Time
}

// Wizard owns one ContentRecord for the lifetime of a creation flow. It is
// safe for concurrent use; the slow operations (GenerateContent, Submit) run
// their collaborator call without holding the lock and are guarded by
// loading flags instead.
type Wizard struct {
	mu    sync.Mutex
	state *domain.WizardState
	deps  Deps
}

// New starts an empty flow on step 1.
func New(sessionID, userID string, deps Deps) *Wizard {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	now := deps.Now().UTC()
	return &Wizard{
		state: &domain.WizardState{
			SessionID: sessionID,
			UserID:    userID,
			Step:      domain.StepBasicInfo,
			CreatedAt: now,
			UpdatedAt: now,
		},
		deps: deps,
	}
}

// Restore rebuilds a wizard from persisted state. Loading flags are cleared:
// an operation that was in flight when the state was saved is gone.
func Restore(state *domain.WizardState, deps Deps) *Wizard {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	s := state.Clone()
	s.Generating = false
	s.Submitting = false
	if !s.Step.IsValid() {
		s.Step = domain.StepBasicInfo
	}
	return &Wizard{state: s, deps: deps}
}

// Snapshot returns a copy of the current state.
func (w *Wizard) Snapshot() *domain.WizardState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Clone()
}

func (w *Wizard) touch() {
	w.state.UpdatedAt = w.deps.Now().UTC()
}

func (w *Wizard) notify(ctx context.Context, n *domain.Notice) {
	if n == nil || w.deps.Notifier == nil {
		return
	}
	w.deps.Notifier.Notify(ctx, *n)
}

// mutable reports why the state cannot be changed right now, if at all.
// Caller holds the lock.
func (w *Wizard) mutable() error {
	if w.state.Done {
		return ErrClosed
	}
	if w.state.Submitting {
		return ErrBusy
	}
	return nil
}

// ============================================================================
// Navigation
// ============================================================================

// Advance validates the current step and moves forward one step. On a gate
// failure it notifies, returns a *ValidationError and changes nothing. On the
// last step it is a no-op: leaving the flow is Submit's job.
func (w *Wizard) Advance(ctx context.Context) error {
	w.mu.Lock()
	if err := w.mutable(); err != nil {
		w.mu.Unlock()
		return err
	}
	if w.state.Step >= domain.LastStep {
		w.mu.Unlock()
		return nil
	}
	if verr := w.gate(); verr != nil {
		w.mu.Unlock()
		w.notify(ctx, &domain.Notice{Kind: domain.NoticeError, Title: verr.Title, Message: verr.Message})
		return verr
	}
	w.state.Step++
	w.touch()
	w.mu.Unlock()
	return nil
}

// gate checks the requirements for leaving the current step.
func (w *Wizard) gate() *ValidationError {
	r := w.state.Record
	switch w.state.Step {
	case domain.StepBasicInfo:
		if strings.TrimSpace(r.Name) == "" {
			return missing("name", "Missing information", "Please enter a portfolio name before proceeding.")
		}
		if strings.TrimSpace(r.Profession) == "" {
			return missing("profession", "Missing information", "Please select your profession before proceeding.")
		}
		if !domain.Profession(r.Profession).IsValid() {
			return missing("profession", "Missing information", "Please select a valid profession before proceeding.")
		}
	case domain.StepChooseTemplate:
		if r.TemplateID == "" || !w.deps.Catalog.Contains(r.TemplateID) {
			return missing("template_id", "Template required", "Please select a template before proceeding.")
		}
	}
	return nil
}

// Retreat moves back one step without validation. No-op on step 1.
func (w *Wizard) Retreat(_ context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.mutable(); err != nil {
		return err
	}
	if w.state.Step <= domain.FirstStep {
		return nil
	}
	w.state.Step--
	w.touch()
	return nil
}

// ============================================================================
// Template selection
// ============================================================================

// SelectTemplate records an explicit user choice. Selecting the current
// template again reports changed=false and has no side effects. Once a user
// has chosen, external hints are ignored for the rest of the flow.
func (w *Wizard) SelectTemplate(_ context.Context, templateID string) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.mutable(); err != nil {
		return false, err
	}
	if !w.deps.Catalog.Contains(templateID) {
		return false, missing("template_id", "Template required", fmt.Sprintf("Unknown template %q.", templateID))
	}
	if w.state.Record.TemplateID == templateID {
		w.state.TemplateExplicit = true
		return false, nil
	}
	w.state.Record.TemplateID = templateID
	w.state.TemplateExplicit = true
	w.touch()
	return true, nil
}

// ApplyExternalTemplate consumes a template hint from outside the flow (a
// deep link parameter). Hints are at-least-once: each distinct id is handled
// once. A hint applies only while no template has been chosen; applied on
// step 1 it also moves the flow to step 2. Reports whether the hint applied.
func (w *Wizard) ApplyExternalTemplate(_ context.Context, templateID string) bool {
	templateID = strings.TrimSpace(templateID)
	if templateID == "" {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.mutable() != nil || w.state.HasSeenHint(templateID) {
		return false
	}
	w.state.SeenHints = append(w.state.SeenHints, templateID)

	if w.state.TemplateExplicit || w.state.Record.TemplateID != "" {
		return false
	}
	if !w.deps.Catalog.Contains(templateID) {
		return false
	}

	w.state.Record.TemplateID = templateID
	if w.state.Step == domain.StepBasicInfo {
		w.state.Step = domain.StepChooseTemplate
	}
	w.touch()
	return true
}

// ============================================================================
// Content
// ============================================================================

// UpdateContent applies a partial edit to the record.
func (w *Wizard) UpdateContent(_ context.Context, patch domain.ContentPatch) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.mutable(); err != nil {
		return err
	}
	if patch.IsEmpty() {
		return nil
	}
	patch.Apply(&w.state.Record)
	w.touch()
	return nil
}

// GenerateContent asks the generator for content matching the record's
// profession and overwrites about, skills, experience and projects. A second
// call while one is running returns ErrBusy. On failure the record is left
// exactly as it was.
func (w *Wizard) GenerateContent(ctx context.Context) error {
	w.mu.Lock()
	if err := w.mutable(); err != nil {
		w.mu.Unlock()
		return err
	}
	if w.state.Generating {
		w.mu.Unlock()
		return ErrBusy
	}
	profession := strings.TrimSpace(w.state.Record.Profession)
	if profession == "" {
		w.mu.Unlock()
		verr := missing("profession", "Missing information", "Please select your profession to generate content.")
		w.notify(ctx, &domain.Notice{Kind: domain.NoticeError, Title: verr.Title, Message: verr.Message})
		return verr
	}
	w.state.Generating = true
	w.mu.Unlock()

	content, genErr := w.deps.Generator.Generate(ctx, profession)
	if genErr == nil && content == nil {
		genErr = ErrNoContent
	}

	w.mu.Lock()
	w.state.Generating = false
	if genErr == nil {
		w.state.Record.About = content.About
		w.state.Record.Skills = content.Skills
		w.state.Record.Experience = content.Experience
		w.state.Record.Projects = content.Projects
		w.touch()
	}
	w.mu.Unlock()

	if genErr != nil {
		w.notify(ctx, &domain.Notice{
			Kind:    domain.NoticeError,
			Title:   "Generation failed",
			Message: "We couldn't generate content right now. Your existing content was kept.",
		})
		return fmt.Errorf("generate content: %w", genErr)
	}
	w.notify(ctx, &domain.Notice{
		Kind:    domain.NoticeSuccess,
		Title:   "Content generated",
		Message: "AI has generated content based on your profession.",
	})
	return nil
}

// ============================================================================
// Submit
// ============================================================================

// Submit hands a snapshot of the record to the publisher. It is only allowed
// from the preview step. A second call while one is in flight returns
// ErrBusy. On success the flow is closed; on failure the flag clears and the
// flow can be retried.
func (w *Wizard) Submit(ctx context.Context, intent domain.SubmitIntent) (*domain.PublishResult, error) {
	if !intent.IsValid() {
		return nil, missing("intent", "Invalid action", "Choose to publish or save as draft.")
	}

	w.mu.Lock()
	if err := w.mutable(); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	if w.state.Step != domain.StepPreview {
		w.mu.Unlock()
		return nil, missing("step", "Not ready", "Review your portfolio on the preview step before submitting.")
	}
	if w.state.Generating {
		w.mu.Unlock()
		return nil, ErrBusy
	}
	w.state.Submitting = true
	record := w.state.Record
	userID := w.state.UserID
	w.mu.Unlock()

	result, err := w.deps.Publisher.Publish(ctx, userID, record, intent)

	w.mu.Lock()
	w.state.Submitting = false
	if err == nil {
		w.state.Done = true
		w.state.Result = result
		w.touch()
	}
	w.mu.Unlock()

	if err != nil {
		w.notify(ctx, &domain.Notice{
			Kind:    domain.NoticeError,
			Title:   "Something went wrong",
			Message: "Your portfolio could not be saved. Please try again.",
		})
		return nil, fmt.Errorf("submit %s: %w", intent, err)
	}

	if intent == domain.IntentPublish {
		w.notify(ctx, &domain.Notice{
			Kind:    domain.NoticeSuccess,
			Title:   "Portfolio published!",
			Message: "Your portfolio has been successfully published.",
		})
	} else {
		w.notify(ctx, &domain.Notice{
			Kind:    domain.NoticeSuccess,
			Title:   "Draft saved",
			Message: "Your portfolio has been saved as a draft.",
		})
	}
	return result, nil
}
