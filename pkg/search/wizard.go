package search

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/yair/localgeo/pkg/domain"
)

type Step int

const (
	StepCity    Step = 1
	StepDate    Step = 2
	StepResults Step = 3
)

func (s Step) String() string {
	switch s {
	case StepCity:
		return "city"
	case StepDate:
		return "date"
	case StepResults:
		return "results"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Wizard is the city -> date -> results flow. Input is what the user is editing;
// Committed is the query the results belong to and only changes on entering
// Results or an explicit Submit.
type Wizard struct {
	Step      Step         `json:"step"`
	Input     domain.Query `json:"input"`
	Committed domain.Query `json:"committed"`
}

func NewWizard() Wizard {
	return Wizard{Step: StepCity}
}

func (w *Wizard) SetCity(city string) { w.Input.City = city }
func (w *Wizard) SetDate(date string) { w.Input.Date = date }

// Next advances one step. It reports true when the move committed a new query.
func (w *Wizard) Next() (bool, error) {
	switch w.Step {
	case StepCity:
		if w.Input.City == "" {
			return false, domain.ValidationError{Field: "city", Message: "city is required"}
		}
		w.Step = StepDate
		return false, nil
	case StepDate:
		if err := w.Input.Validate(); err != nil {
			return false, err
		}
		w.Step = StepResults
		w.Committed = w.Input
		return true, nil
	}
	return false, fmt.Errorf("cannot advance from %s: %w", w.Step, domain.ErrInvalidTransition)
}

func (w *Wizard) Back() error {
	if w.Step <= StepCity {
		return fmt.Errorf("cannot go back from %s: %w", w.Step, domain.ErrInvalidTransition)
	}
	w.Step--
	return nil
}

// Submit re-commits the edited input while already showing results.
func (w *Wizard) Submit() error {
	if w.Step != StepResults {
		return fmt.Errorf("cannot search from %s: %w", w.Step, domain.ErrInvalidTransition)
	}
	if err := w.Input.Validate(); err != nil {
		return err
	}
	w.Committed = w.Input
	return nil
}

func (w *Wizard) Reset() {
	*w = NewWizard()
}

// EncodeURL projects the wizard onto URL query parameters.
func EncodeURL(w Wizard) url.Values {
	q := w.Input
	if w.Step == StepResults {
		q = w.Committed
	}
	return url.Values{
		"step": {strconv.Itoa(int(w.Step))},
		"city": {q.City},
		"date": {q.Date},
	}
}

// DecodeURL rebuilds the initial wizard from URL parameters. A results step
// without a complete query falls back to the first step that is missing input.
func DecodeURL(values url.Values) Wizard {
	w := NewWizard()
	w.Input = domain.Query{City: values.Get("city"), Date: values.Get("date")}

	step, err := strconv.Atoi(values.Get("step"))
	if err != nil || step < int(StepCity) || step > int(StepResults) {
		step = int(StepCity)
	}
	w.Step = Step(step)

	if w.Step >= StepDate && w.Input.City == "" {
		w.Step = StepCity
	}
	if w.Step == StepResults {
		if w.Input.Date == "" {
			w.Step = StepDate
		} else {
			w.Committed = w.Input
		}
	}

	return w
}
