// Package wizard drives multi-step resource creation over a kind's steps.
//
// The wizard moves through steps 1..K. Next only advances when the current
// step's fields validate, and Submit freezes a snapshot of the draft; after
// that every mutating call returns ErrFrozen.
package wizard

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"goout/internal/schema"
)

var (
	ErrFrozen        = errors.New("wizard already submitted")
	ErrFirstStep     = errors.New("already at the first step")
	ErrLastStep      = errors.New("already at the last step")
	ErrNotLastStep   = errors.New("submit is only allowed from the last step")
	ErrUnknownField  = errors.New("field is not declared by this kind")
	ErrTooManyImages = errors.New("too many images")
)

// Image is one file attached to the draft.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// StepError is a failed transition guard.
type StepError struct {
	Step   int
	Fields schema.FieldErrors
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d: %s", e.Step, e.Fields.Error())
}

// Wizard is not safe for concurrent use.
type Wizard struct {
	kind   *schema.Kind
	step   int
	values map[string]string
	images []Image
	frozen bool
}

func New(kind *schema.Kind) *Wizard {
	return &Wizard{kind: kind, values: map[string]string{}}
}

func (w *Wizard) Kind() *schema.Kind { return w.kind }

// Step is the 1-based current step.
func (w *Wizard) Step() int { return w.step + 1 }

// Steps is K, the number of steps.
func (w *Wizard) Steps() int { return len(w.kind.Steps) }

// Current is the descriptor of the current step.
func (w *Wizard) Current() schema.Step { return w.kind.Steps[w.step] }

func (w *Wizard) Submitted() bool { return w.frozen }

// Value returns what has been entered for name so far.
func (w *Wizard) Value(name string) string { return w.values[name] }

// Images returns a copy of the attached images.
func (w *Wizard) Images() []Image { return slices.Clone(w.images) }

// Set records a raw value. Any declared field may be set from any step.
func (w *Wizard) Set(name, value string) error {
	if w.frozen {
		return ErrFrozen
	}
	if _, ok := w.kind.Field(name); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	w.values[name] = value
	return nil
}

// AddImage attaches an image; the kind's maximum is enforced here too.
func (w *Wizard) AddImage(img Image) error {
	if w.frozen {
		return ErrFrozen
	}
	if len(w.images) >= w.kind.MaxImages {
		return fmt.Errorf("%w: at most %d", ErrTooManyImages, w.kind.MaxImages)
	}
	img.Data = slices.Clone(img.Data)
	w.images = append(w.images, img)
	return nil
}

// RemoveImage drops the i-th image.
func (w *Wizard) RemoveImage(i int) error {
	if w.frozen {
		return ErrFrozen
	}
	if i < 0 || i >= len(w.images) {
		return fmt.Errorf("image %d not attached", i)
	}
	w.images = slices.Delete(w.images, i, i+1)
	return nil
}

// Next validates the current step and advances.
func (w *Wizard) Next() error {
	if w.frozen {
		return ErrFrozen
	}
	if w.step == len(w.kind.Steps)-1 {
		return ErrLastStep
	}
	if err := w.guard(w.step); err != nil {
		return err
	}
	w.step++
	return nil
}

// Back never validates.
func (w *Wizard) Back() error {
	if w.frozen {
		return ErrFrozen
	}
	if w.step == 0 {
		return ErrFirstStep
	}
	w.step--
	return nil
}

// Submit validates every field from the last step and freezes the wizard.
func (w *Wizard) Submit() (*Draft, error) {
	if w.frozen {
		return nil, ErrFrozen
	}
	if w.step != len(w.kind.Steps)-1 {
		return nil, ErrNotLastStep
	}
	if err := w.guard(w.step); err != nil {
		return nil, err
	}
	if _, errs := w.kind.Parse(w.values); len(errs) > 0 {
		return nil, &StepError{Step: w.Step(), Fields: errs}
	}

	w.frozen = true
	imgs := make([]Image, len(w.images))
	for i, img := range w.images {
		img.Data = slices.Clone(img.Data)
		imgs[i] = img
	}
	return &Draft{
		kind:   w.kind.Name,
		values: maps.Clone(w.values),
		images: imgs,
	}, nil
}

func (w *Wizard) guard(step int) error {
	s := w.kind.Steps[step]
	errs := w.kind.Validate(w.values, s.Fields...)
	if errs == nil {
		errs = schema.FieldErrors{}
	}
	if s.Images && len(w.images) > w.kind.MaxImages {
		errs.Add("images", fmt.Sprintf("Cannot upload more than %d images", w.kind.MaxImages))
	}
	if len(errs) > 0 {
		return &StepError{Step: step + 1, Fields: errs}
	}
	return nil
}

// Draft is the immutable record produced by Submit. Accessors return copies.
type Draft struct {
	kind   string
	values map[string]string
	images []Image
}

func (d *Draft) Kind() string { return d.kind }

func (d *Draft) Values() map[string]string { return maps.Clone(d.values) }

func (d *Draft) Images() []Image {
	out := make([]Image, len(d.images))
	for i, img := range d.images {
		img.Data = slices.Clone(img.Data)
		out[i] = img
	}
	return out
}
