// Package onboarding drives the three-step profile setup flow new
// accounts go through: personal info, interest selection, profile
// photo. Each step validates before advancing and keeps its data when
// the user steps back.
package onboarding

import (
	"context"
	"fmt"
	"sync"

	"github.com/mingleapp/mingle/internal/api"
	"github.com/mingleapp/mingle/internal/bus"
	"github.com/mingleapp/mingle/internal/interests"
	"github.com/mingleapp/mingle/internal/media"
	"github.com/mingleapp/mingle/internal/validate"
	"go.uber.org/zap"
)

// Step identifies a position in the flow.
type Step string

const (
	StepPersonalInfo Step = "personal_info"
	StepInterests    Step = "interests"
	StepPhoto        Step = "photo"
	StepDone         Step = "done"
)

// Interest selection bounds.
const (
	MinInterests = 3
	MaxInterests = 10
)

var validTransitions = map[Step][]Step{
	StepPersonalInfo: {StepInterests},
	StepInterests:    {StepPersonalInfo, StepPhoto},
	StepPhoto:        {StepInterests, StepDone},
	StepDone:         {},
}

func canTransition(from, to Step) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Submitter posts the completed flow to the backend.
type Submitter interface {
	CompleteOnboarding(ctx context.Context, userID string, payload api.OnboardingPayload) (*api.Profile, error)
}

// Identity names the user being onboarded and records completion.
type Identity interface {
	RequireID() (string, error)
	SetOnboarded()
}

// Flow holds the accumulated onboarding data and the current step.
type Flow struct {
	mu        sync.Mutex
	submitter Submitter
	identity  Identity
	bus       *bus.Bus
	logger    *zap.Logger

	step      Step
	personal  validate.PersonalInfoValues
	selected  []string
	photoPath string
}

// NewFlow creates a flow positioned at the personal info step.
func NewFlow(submitter Submitter, ident Identity, b *bus.Bus, logger *zap.Logger) *Flow {
	return &Flow{
		submitter: submitter,
		identity:  ident,
		bus:       b,
		logger:    logger,
		step:      StepPersonalInfo,
	}
}

// Step returns the current step.
func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// PersonalInfo returns the personal info entered so far, so the form
// can re-render it after a step back.
func (f *Flow) PersonalInfo() validate.PersonalInfoValues {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.personal
}

// Selected returns a copy of the chosen interests in selection order.
func (f *Flow) Selected() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.selected...)
}

// PhotoPath returns the staged photo path, or "".
func (f *Flow) PhotoPath() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.photoPath
}

// SubmitPersonalInfo validates the first step and advances to the
// interest selection. The returned error map is empty on success.
func (f *Flow) SubmitPersonalInfo(values validate.PersonalInfoValues) validate.Errors {
	errs := validate.PersonalInfo(values)
	if !errs.Valid() {
		return errs
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.personal = values
	f.advance(StepInterests)
	return errs
}

// ToggleInterest adds or removes a tag from the selection. Selecting
// past the maximum is rejected without touching the current selection;
// unknown tags are rejected outright.
func (f *Flow) ToggleInterest(tag string) error {
	if !interests.Contains(tag) {
		return fmt.Errorf("unknown interest %q", tag)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.selected {
		if t == tag {
			f.selected = append(f.selected[:i], f.selected[i+1:]...)
			return nil
		}
	}
	if len(f.selected) >= MaxInterests {
		return fmt.Errorf("you can select at most %d interests", MaxInterests)
	}
	f.selected = append(f.selected, tag)
	return nil
}

// SubmitInterests checks the minimum selection and advances to the
// photo step.
func (f *Flow) SubmitInterests() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.selected) < MinInterests {
		return fmt.Errorf("please select at least %d interests", MinInterests)
	}
	f.advance(StepPhoto)
	return nil
}

// SetPhoto stages the profile photo for the final step.
func (f *Flow) SetPhoto(path string) error {
	if err := media.ValidatePhoto(path); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.photoPath = path
	return nil
}

// ClearPhoto removes the staged photo.
func (f *Flow) ClearPhoto() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.photoPath = ""
}

// Back steps to the previous step. Data entered on the current step is
// kept, so stepping forward again restores it.
func (f *Flow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var prev Step
	switch f.step {
	case StepInterests:
		prev = StepPersonalInfo
	case StepPhoto:
		prev = StepInterests
	default:
		return fmt.Errorf("cannot step back from %q", f.step)
	}
	f.advance(prev)
	return nil
}

// Complete submits the aggregated flow to the backend, marks the
// identity onboarded and finishes the flow. The flow stays at the
// photo step when the submission fails, so it can be retried.
func (f *Flow) Complete(ctx context.Context) (*api.Profile, error) {
	userID, err := f.identity.RequireID()
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	if f.step != StepPhoto {
		f.mu.Unlock()
		return nil, fmt.Errorf("flow is at %q, not ready to complete", f.step)
	}
	if f.photoPath == "" {
		f.mu.Unlock()
		return nil, fmt.Errorf("please select a profile photo")
	}
	payload := api.OnboardingPayload{
		FirstName:  f.personal.FirstName,
		LastName:   f.personal.LastName,
		Location:   f.personal.Location,
		Occupation: f.personal.Occupation,
		Bio:        f.personal.Bio,
		Interests:  append([]string(nil), f.selected...),
		PhotoPath:  f.photoPath,
	}
	f.mu.Unlock()

	profile, err := f.submitter.CompleteOnboarding(ctx, userID, payload)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.advance(StepDone)
	f.mu.Unlock()

	f.identity.SetOnboarded()
	f.bus.Emit("onboarding.completed", userID)
	if f.logger != nil {
		f.logger.Info("onboarding completed", zap.String("user_id", userID))
	}
	return profile, nil
}

// advance must be called with f.mu held.
func (f *Flow) advance(to Step) {
	if !canTransition(f.step, to) {
		return
	}
	f.step = to
	f.bus.Emit("onboarding.step", string(to))
}
