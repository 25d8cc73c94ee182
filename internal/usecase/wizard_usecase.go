package usecase

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"quickfolio-backend/internal/domain"
	"quickfolio-backend/internal/notify"
	"quickfolio-backend/internal/wizard"
	"quickfolio-backend/pkg/apperror"
	"quickfolio-backend/pkg/audit"
	"quickfolio-backend/pkg/logger"
)

const defaultWizardTTL = 2 * time.Hour

// WizardConfig controls how long idle wizard sessions are kept.
type WizardConfig struct {
	SessionTTL time.Duration
}

type liveWizard struct {
	wizard   *wizard.Wizard
	lastUsed time.Time
}

// wizardUsecase keeps running wizards in process and mirrors every state
// change to the session store so a restart or another replica can pick the
// flow back up. The in-process copy wins while it exists.
type wizardUsecase struct {
	mu   sync.Mutex
	live map[string]*liveWizard

	store     domain.WizardSessionStore
	catalog   domain.TemplateCatalog
	generator domain.ContentGenerator
	publisher domain.Publisher
	hub       *notify.Hub
	validate  *validator.Validate
	audit     *audit.Logger
	ttl       time.Duration
	now       func() time.Time
}

func NewWizardUsecase(
	store domain.WizardSessionStore,
	catalog domain.TemplateCatalog,
	generator domain.ContentGenerator,
	publisher domain.Publisher,
	hub *notify.Hub,
	validate *validator.Validate,
	cfg WizardConfig,
	auditLog *audit.Logger,
) domain.WizardUsecase {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultWizardTTL
	}
	return &wizardUsecase{
		live:      make(map[string]*liveWizard),
		store:     store,
		catalog:   catalog,
		generator: generator,
		publisher: publisher,
		hub:       hub,
		validate:  validate,
		audit:     auditLog,
		ttl:       cfg.SessionTTL,
		now:       time.Now,
	}
}

func (u *wizardUsecase) deps(sessionID string) wizard.Deps {
	notifiers := notify.Multi{notify.Log{SessionID: sessionID}, notify.Request{}}
	if u.hub != nil {
		notifiers = append(notifiers, u.hub.For(sessionID))
	}
	return wizard.Deps{
		Catalog:   u.catalog,
		Generator: u.generator,
		Publisher: u.publisher,
		Notifier:  notifiers,
		Now:       u.now,
	}
}

// ============================================================================
// Session lifecycle
// ============================================================================

func (u *wizardUsecase) Start(ctx context.Context, userID, templateHint string) (*domain.WizardView, error) {
	if err := requireUser(ctx, userID, "start a portfolio for yourself"); err != nil {
		return nil, err
	}

	sessionID := uuid.NewString()
	w := wizard.New(sessionID, userID, u.deps(sessionID))

	collector := notify.NewCollector()
	ctx = notify.WithCollector(ctx, collector)
	if templateHint != "" {
		w.ApplyExternalTemplate(ctx, templateHint)
	}

	u.mu.Lock()
	u.pruneLocked()
	u.live[sessionID] = &liveWizard{wizard: w, lastUsed: u.now()}
	u.mu.Unlock()

	state := w.Snapshot()
	u.persist(ctx, state)

	u.audit.Record(ctx, audit.ActionWizardStarted, userID, "", map[string]any{
		"session_id":    sessionID,
		"template_hint": templateHint,
	})

	view := domain.NewWizardView(state)
	view.Notices = collector.Drain()
	return view, nil
}

func (u *wizardUsecase) Get(ctx context.Context, userID, sessionID string) (*domain.WizardView, error) {
	w, err := u.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	return domain.NewWizardView(w.Snapshot()), nil
}

func (u *wizardUsecase) Preview(ctx context.Context, userID, sessionID string) (*domain.WizardState, error) {
	w, err := u.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	return w.Snapshot(), nil
}

func (u *wizardUsecase) Discard(ctx context.Context, userID, sessionID string) error {
	if _, err := u.load(ctx, userID, sessionID); err != nil {
		return err
	}

	u.mu.Lock()
	delete(u.live, sessionID)
	u.mu.Unlock()

	if err := u.store.Delete(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return apperror.New(http.StatusInternalServerError, "Failed to discard wizard session", err)
	}
	return nil
}

// load returns the caller's wizard, restoring it from the store when this
// process has not seen it yet.
func (u *wizardUsecase) load(ctx context.Context, userID, sessionID string) (*wizard.Wizard, error) {
	if err := requireUser(ctx, userID, "access your own portfolio drafts"); err != nil {
		return nil, err
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if lw, ok := u.live[sessionID]; ok {
		if lw.wizard.Snapshot().UserID != userID {
			return nil, apperror.Forbidden("You can only access your own portfolio drafts")
		}
		lw.lastUsed = u.now()
		return lw.wizard, nil
	}

	state, err := u.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Wizard session not found")
		}
		return nil, apperror.New(http.StatusInternalServerError, "Failed to load wizard session", err)
	}
	if state.UserID != userID {
		return nil, apperror.Forbidden("You can only access your own portfolio drafts")
	}

	w := wizard.Restore(state, u.deps(sessionID))
	u.live[sessionID] = &liveWizard{wizard: w, lastUsed: u.now()}
	return w, nil
}

// persist is best effort: the live wizard stays authoritative when the store
// is unavailable.
func (u *wizardUsecase) persist(ctx context.Context, state *domain.WizardState) {
	if err := u.store.Save(context.WithoutCancel(ctx), state); err != nil {
		logger.Log.Warn("failed to persist wizard session", "session_id", state.SessionID, "error", err)
	}
}

// pruneLocked drops idle wizards. Caller holds u.mu.
func (u *wizardUsecase) pruneLocked() {
	cutoff := u.now().Add(-u.ttl)
	for id, lw := range u.live {
		if lw.lastUsed.Before(cutoff) {
			delete(u.live, id)
		}
	}
}

// run executes one wizard operation with a per-call notice collector and
// returns the resulting view. Finished flows leave the live registry; their
// stored copy still answers reads until it expires.
func (u *wizardUsecase) run(ctx context.Context, userID, sessionID string, op func(context.Context, *wizard.Wizard) error) (*domain.WizardView, error) {
	w, err := u.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	collector := notify.NewCollector()
	opErr := op(notify.WithCollector(ctx, collector), w)

	state := w.Snapshot()
	u.persist(ctx, state)
	if state.Done {
		u.mu.Lock()
		delete(u.live, sessionID)
		u.mu.Unlock()
	}

	notices := collector.Drain()
	if opErr != nil {
		return nil, wizardError(opErr, notices)
	}

	view := domain.NewWizardView(state)
	view.Notices = notices
	return view, nil
}

// wizardError maps wizard failures onto HTTP errors, carrying any notices
// raised along the way.
func wizardError(err error, notices []domain.Notice) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		if appErr.Details == nil && len(notices) > 0 {
			return apperror.New(appErr.Code, appErr.Message, appErr.Err).WithDetails(map[string]any{"notices": notices})
		}
		return appErr
	}

	var verr *wizard.ValidationError
	switch {
	case errors.As(err, &verr):
		return apperror.BadRequest(verr.Message).WithDetails(map[string]any{
			"field":   verr.Field,
			"title":   verr.Title,
			"notices": notices,
		})
	case errors.Is(err, wizard.ErrBusy):
		return apperror.Conflict("Another operation is already in progress")
	case errors.Is(err, wizard.ErrClosed):
		return apperror.Gone("This portfolio has already been submitted")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apperror.New(http.StatusRequestTimeout, "Request cancelled", err)
	default:
		return apperror.New(http.StatusBadGateway, "Something went wrong", err).WithDetails(map[string]any{"notices": notices})
	}
}

// ============================================================================
// Operations
// ============================================================================

func (u *wizardUsecase) Advance(ctx context.Context, userID, sessionID string) (*domain.WizardView, error) {
	return u.run(ctx, userID, sessionID, func(ctx context.Context, w *wizard.Wizard) error {
		return w.Advance(ctx)
	})
}

func (u *wizardUsecase) Retreat(ctx context.Context, userID, sessionID string) (*domain.WizardView, error) {
	return u.run(ctx, userID, sessionID, func(ctx context.Context, w *wizard.Wizard) error {
		return w.Retreat(ctx)
	})
}

func (u *wizardUsecase) SelectTemplate(ctx context.Context, userID, sessionID, templateID string) (*domain.WizardView, error) {
	return u.run(ctx, userID, sessionID, func(ctx context.Context, w *wizard.Wizard) error {
		_, err := w.SelectTemplate(ctx, templateID)
		return err
	})
}

func (u *wizardUsecase) ApplyTemplateHint(ctx context.Context, userID, sessionID, templateID string) (*domain.WizardView, error) {
	return u.run(ctx, userID, sessionID, func(ctx context.Context, w *wizard.Wizard) error {
		w.ApplyExternalTemplate(ctx, templateID)
		return nil
	})
}

func (u *wizardUsecase) UpdateContent(ctx context.Context, userID, sessionID string, patch domain.ContentPatch) (*domain.WizardView, error) {
	if err := u.validate.Struct(patch); err != nil {
		return nil, validationFailed(err)
	}
	return u.run(ctx, userID, sessionID, func(ctx context.Context, w *wizard.Wizard) error {
		return w.UpdateContent(ctx, patch)
	})
}

// Generate runs on the request context: a client that disconnects cancels
// generation and the record is left untouched.
func (u *wizardUsecase) Generate(ctx context.Context, userID, sessionID string) (*domain.WizardView, error) {
	return u.run(ctx, userID, sessionID, func(ctx context.Context, w *wizard.Wizard) error {
		return w.GenerateContent(ctx)
	})
}

func (u *wizardUsecase) Submit(ctx context.Context, userID, sessionID string, intent domain.SubmitIntent) (*domain.WizardView, error) {
	return u.run(ctx, userID, sessionID, func(ctx context.Context, w *wizard.Wizard) error {
		_, err := w.Submit(ctx, intent)
		return err
	})
}
