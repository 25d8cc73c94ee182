package domain

import (
	"context"
	"time"
)

// ============================================================================
// Steps
// ============================================================================

// Step is a position in the portfolio creation wizard.
type Step int

const (
	StepBasicInfo Step = iota + 1
	StepChooseTemplate
	StepContent
	StepPreview
)

const (
	FirstStep = StepBasicInfo
	LastStep  = StepPreview
)

var stepNames = map[Step]string{
	StepBasicInfo:      "Basic Info",
	StepChooseTemplate: "Choose Template",
	StepContent:        "Content",
	StepPreview:        "Preview",
}

func (s Step) Name() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "Unknown"
}

func (s Step) IsValid() bool {
	return s >= FirstStep && s <= LastStep
}

// StepInfo is one entry of the progress indicator.
type StepInfo struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

// Steps returns the ordered step list for progress indicators
func Steps() []StepInfo {
	out := make([]StepInfo, 0, LastStep)
	for s := FirstStep; s <= LastStep; s++ {
		out = append(out, StepInfo{Number: int(s), Name: s.Name()})
	}
	return out
}

// ============================================================================
// Submit
// ============================================================================

type SubmitIntent string

const (
	IntentPublish SubmitIntent = "publish"
	IntentDraft   SubmitIntent = "draft"
)

func (i SubmitIntent) IsValid() bool {
	return i == IntentPublish || i == IntentDraft
}

// PublishResult is what the persistence side hands back after a submit.
type PublishResult struct {
	PortfolioID  string `json:"portfolio_id"`
	Slug         string `json:"slug"`
	Published    bool   `json:"published"`
	URL          string `json:"url,omitempty"`
	DeploymentID string `json:"deployment_id,omitempty"`
}

// Publisher persists a submitted record. Draft intent must never deploy.
type Publisher interface {
	Publish(ctx context.Context, userID string, record ContentRecord, intent SubmitIntent) (*PublishResult, error)
}

// ============================================================================
// Wizard State
// ============================================================================

// WizardState is the serializable state of one creation flow.
type WizardState struct {
	SessionID        string         `json:"session_id"`
	UserID           string         `json:"user_id"`
	Step             Step           `json:"step"`
	Record           ContentRecord  `json:"record"`
	TemplateExplicit bool           `json:"template_explicit"`
	SeenHints        []string       `json:"seen_hints,omitempty"`
	Generating       bool           `json:"generating"`
	Submitting       bool           `json:"submitting"`
	Done             bool           `json:"done"`
	Result           *PublishResult `json:"result,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// HasSeenHint reports whether an external template hint was already applied
// or discarded for this flow.
func (s *WizardState) HasSeenHint(id string) bool {
	for _, seen := range s.SeenHints {
		if seen == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe to hand out of a lock.
func (s *WizardState) Clone() *WizardState {
	cp := *s
	if s.SeenHints != nil {
		cp.SeenHints = append([]string(nil), s.SeenHints...)
	}
	if s.Result != nil {
		res := *s.Result
		cp.Result = &res
	}
	return &cp
}

// WizardView is the API projection of a wizard session.
type WizardView struct {
	SessionID        string         `json:"session_id"`
	Step             int            `json:"step"`
	StepName         string         `json:"step_name"`
	Steps            []StepInfo     `json:"steps"`
	Record           ContentRecord  `json:"record"`
	TemplateExplicit bool           `json:"template_explicit"`
	Generating       bool           `json:"generating"`
	Submitting       bool           `json:"submitting"`
	Done             bool           `json:"done"`
	Result           *PublishResult `json:"result,omitempty"`
	Notices          []Notice       `json:"notices,omitempty"`
}

// NewWizardView projects a state snapshot.
func NewWizardView(s *WizardState) *WizardView {
	return &WizardView{
		SessionID:        s.SessionID,
		Step:             int(s.Step),
		StepName:         s.Step.Name(),
		Steps:            Steps(),
		Record:           s.Record,
		TemplateExplicit: s.TemplateExplicit,
		Generating:       s.Generating,
		Submitting:       s.Submitting,
		Done:             s.Done,
		Result:           s.Result,
	}
}

// ============================================================================
// Session Store
// ============================================================================

type WizardSessionStore interface {
	Save(ctx context.Context, state *WizardState) error
	Get(ctx context.Context, sessionID string) (*WizardState, error)
	Delete(ctx context.Context, sessionID string) error
}

// ============================================================================
// Usecase Interface
// ============================================================================

type WizardUsecase interface {
	Start(ctx context.Context, userID, templateHint string) (*WizardView, error)
	Get(ctx context.Context, userID, sessionID string) (*WizardView, error)
	Advance(ctx context.Context, userID, sessionID string) (*WizardView, error)
	Retreat(ctx context.Context, userID, sessionID string) (*WizardView, error)
	SelectTemplate(ctx context.Context, userID, sessionID, templateID string) (*WizardView, error)
	ApplyTemplateHint(ctx context.Context, userID, sessionID, templateID string) (*WizardView, error)
	UpdateContent(ctx context.Context, userID, sessionID string, patch ContentPatch) (*WizardView, error)
	Generate(ctx context.Context, userID, sessionID string) (*WizardView, error)
	Submit(ctx context.Context, userID, sessionID string, intent SubmitIntent) (*WizardView, error)
	Preview(ctx context.Context, userID, sessionID string) (*WizardState, error)
	Discard(ctx context.Context, userID, sessionID string) error
}
