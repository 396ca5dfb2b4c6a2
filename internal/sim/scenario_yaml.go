package sim

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v2"
)

// ScenarioList decodes a YAML scenario catalog. Each entry's events are
// generic maps dispatched on their "type" key, so the file format stays
// open to new event kinds without schema churn.
type ScenarioList []ScenarioDefinition

type yamlScenario struct {
	Name        string                   `yaml:"name"`
	Description string                   `yaml:"description"`
	Duration    float64                  `yaml:"duration"`
	Events      []map[string]interface{} `yaml:"events"`
}

func (l *ScenarioList) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw []yamlScenario
	if err := unmarshal(&raw); err != nil {
		return err
	}
	for _, entry := range raw {
		def, err := scenarioFromYAML(entry)
		if err != nil {
			return err
		}
		*l = append(*l, def)
	}
	return nil
}

func scenarioFromYAML(entry yamlScenario) (ScenarioDefinition, error) {
	if entry.Name == "" {
		return ScenarioDefinition{}, fmt.Errorf("scenario with empty name")
	}
	if entry.Duration <= 0 {
		return ScenarioDefinition{}, fmt.Errorf("scenario %q: duration must be positive", entry.Name)
	}
	def := ScenarioDefinition{
		Name:        entry.Name,
		Description: entry.Description,
		Duration:    entry.Duration,
	}
	for i, m := range entry.Events {
		ev, err := scenarioEventFromYAML(m)
		if err != nil {
			return ScenarioDefinition{}, fmt.Errorf("scenario %q: event %d: %w", entry.Name, i, err)
		}
		if ev.Offset < 0 || ev.Offset > entry.Duration {
			return ScenarioDefinition{}, fmt.Errorf("scenario %q: event %d: time %.1f outside scenario duration", entry.Name, i, ev.Offset)
		}
		def.Events = append(def.Events, ev)
	}
	return def, nil
}

func scenarioEventFromYAML(m map[string]interface{}) (ScenarioEvent, error) {
	var ev ScenarioEvent
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &ev,
	})
	if err != nil {
		return ScenarioEvent{}, err
	}
	if err := dec.Decode(m); err != nil {
		return ScenarioEvent{}, err
	}
	return ev, validateScenarioEvent(ev)
}

func validateScenarioEvent(ev ScenarioEvent) error {
	switch ev.Kind {
	case EventKindFault:
		if ev.Code == "" || ev.Component == "" {
			return fmt.Errorf("fault event needs id and component")
		}
		if _, ok := faultByID[ev.Code]; !ok {
			return fmt.Errorf("unknown fault id %q", ev.Code)
		}
	case EventKindAlarm:
		if ev.Code == "" || ev.Component == "" {
			return fmt.Errorf("alarm event needs id and component")
		}
		if _, ok := alarmByID[ev.Code]; !ok {
			return fmt.Errorf("unknown alarm id %q", ev.Code)
		}
	case EventKindClear:
		switch ev.Target {
		case "", ClearAll, ClearFaults, ClearAlarms:
		default:
			return fmt.Errorf("unknown clear target %q", ev.Target)
		}
	case EventKindLoadChange:
		if ev.Component == "" {
			return fmt.Errorf("load_change event needs component")
		}
		if ev.Load < 0 || ev.Load > 100 {
			return fmt.Errorf("load_percentage %.1f outside [0,100]", ev.Load)
		}
	case EventKindMaintenance:
		if ev.Component == "" {
			return fmt.Errorf("maintenance event needs component")
		}
	case EventKindMaintenanceSkip:
	case "":
		return fmt.Errorf("event without type")
	default:
		return fmt.Errorf("unknown event type %q", ev.Kind)
	}
	return nil
}

// LoadScenarioFile reads additional scenario definitions from a YAML file.
func LoadScenarioFile(path string) ([]ScenarioDefinition, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	var list ScenarioList
	if err := yaml.Unmarshal(b, &list); err != nil {
		return nil, fmt.Errorf("parse scenario file: %w", err)
	}
	return list, nil
}
