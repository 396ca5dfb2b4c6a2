package sim

import (
	"time"
)

// Transition kinds reported by the evaluator.
const (
	TransitionFault = "fault"
	TransitionAlarm = "alarm"
)

// Transition records one membership change of a component's active set.
type Transition struct {
	Kind        string
	ID          string
	ComponentID string
	Description string
	Severity    string
	Appeared    bool
	At          time.Time
}

// Evaluator derives the discrete fault and alarm sets from continuous
// component state. Membership changes are edge triggered on the binding's
// condition: an id is added on the false-to-true crossing and removed on
// true-to-false. While a condition holds steady nothing is touched, so
// first-seen timestamps stay stable and injected entries whose condition
// never fired are left alone.
type Evaluator struct {
	faults []Definition
	alarms []Definition
	last   map[string]bool // condition state per catalog id, from the previous pass
}

func NewEvaluator() *Evaluator {
	return &Evaluator{
		faults: faultCatalog,
		alarms: alarmCatalog,
		last:   make(map[string]bool),
	}
}

// Recompute applies every catalog binding against its owning component and
// returns the membership transitions that occurred. Running it twice on
// unchanged state yields no transitions the second time.
func (e *Evaluator) Recompute(now time.Time, components map[string]*Component) []Transition {
	var out []Transition
	for _, def := range e.faults {
		if c, ok := components[def.Component]; ok {
			out = e.apply(now, c, def, TransitionFault, out)
		}
	}
	for _, def := range e.alarms {
		if c, ok := components[def.Component]; ok {
			out = e.apply(now, c, def, TransitionAlarm, out)
		}
	}
	return out
}

func (e *Evaluator) apply(now time.Time, c *Component, def Definition, kind string, out []Transition) []Transition {
	cond := def.Binding.triggered(c)
	prev := e.last[def.ID]
	e.last[def.ID] = cond
	if cond == prev {
		return out
	}

	var changed bool
	if kind == TransitionFault {
		if cond {
			changed = c.addFault(def.ID, now)
		} else {
			changed = c.removeFault(def.ID)
		}
	} else {
		if cond {
			changed = c.addAlarm(def.ID, now)
		} else {
			changed = c.removeAlarm(def.ID)
		}
	}
	if !changed {
		return out
	}
	return append(out, Transition{
		Kind:        kind,
		ID:          def.ID,
		ComponentID: c.ID,
		Description: def.Description,
		Severity:    def.Severity,
		Appeared:    cond,
		At:          now,
	})
}

// ResetFaults forgets the remembered condition state of every fault
// binding. The next pass then re-derives membership from scratch, so a
// condition that still holds after an explicit clear re-enters the set.
func (e *Evaluator) ResetFaults() {
	for _, def := range e.faults {
		delete(e.last, def.ID)
	}
}

// ResetAlarms forgets the remembered condition state of every alarm binding.
func (e *Evaluator) ResetAlarms() {
	for _, def := range e.alarms {
		delete(e.last, def.ID)
	}
}

// ResetComponent forgets condition state for every binding owned by the
// given component, after a maintenance visit wipes its active sets.
func (e *Evaluator) ResetComponent(componentID string) {
	for _, def := range e.faults {
		if def.Component == componentID {
			delete(e.last, def.ID)
		}
	}
	for _, def := range e.alarms {
		if def.Component == componentID {
			delete(e.last, def.ID)
		}
	}
}
