package sim

import (
	drive "drive_diagnostics"
)

// Field names an observable a binding can read from a component.
type Field string

const (
	FieldCurrent        Field = "current"
	FieldTemperature    Field = "temperature"
	FieldVibration      Field = "vibration"
	FieldVoltage        Field = "voltage"
	FieldEfficiency     Field = "efficiency"
	FieldFatigue        Field = "fatigue"
	FieldHealth         Field = "health"
	FieldMaintenanceDue Field = "maintenance_due"
)

// Comparison gives the trigger direction of a binding.
type Comparison string

const (
	CompareAbove Comparison = "above"
	CompareBelow Comparison = "below"
)

// Binding ties a catalog entry to one observable and a trigger condition.
// RunningOnly gates the check on the component actually running, for
// conditions that are meaningless on a stopped unit.
type Binding struct {
	Field       Field
	Compare     Comparison
	Threshold   float64
	RunningOnly bool
}

// value reads the bound observable. Boolean observables map to 0 or 1.
func (b Binding) value(c *Component) float64 {
	switch b.Field {
	case FieldCurrent:
		return c.Current
	case FieldTemperature:
		return c.Temperature
	case FieldVibration:
		return c.Vibration
	case FieldVoltage:
		return c.Voltage
	case FieldEfficiency:
		return c.Efficiency
	case FieldFatigue:
		return c.FatigueLevel
	case FieldHealth:
		return c.HealthScore
	case FieldMaintenanceDue:
		if c.MaintenanceDue {
			return 1
		}
		return 0
	}
	return 0
}

// triggered reports whether the binding's condition currently holds.
func (b Binding) triggered(c *Component) bool {
	if b.RunningOnly && !c.IsRunning {
		return false
	}
	v := b.value(c)
	if b.Compare == CompareBelow {
		return v < b.Threshold
	}
	return v > b.Threshold
}

// Definition is one static row of the fault or alarm catalog.
type Definition struct {
	ID          string
	Description string
	Component   string
	Severity    string
	Binding     Binding
}

// faultCatalog lists the derivable fault conditions, keyed to the component
// that owns them. IDs follow the drive's native numbering.
var faultCatalog = []Definition{
	{ID: "F30001", Description: "Motor overcurrent", Component: ComponentMotor, Severity: drive.SeverityHigh,
		Binding: Binding{Field: FieldCurrent, Compare: CompareAbove, Threshold: 60.0}},
	{ID: "F30002", Description: "Motor overtemperature", Component: ComponentMotor, Severity: drive.SeverityHigh,
		Binding: Binding{Field: FieldTemperature, Compare: CompareAbove, Threshold: 75.0}},
	{ID: "F30005", Description: "Rectifier overcurrent", Component: ComponentRectifier, Severity: drive.SeverityHigh,
		Binding: Binding{Field: FieldCurrent, Compare: CompareAbove, Threshold: 55.0}},
	{ID: "F30011", Description: "Motor bearing fault", Component: ComponentMotor, Severity: drive.SeverityMedium,
		Binding: Binding{Field: FieldVibration, Compare: CompareAbove, Threshold: 8.0}},
	{ID: "F30012", Description: "Inverter overcurrent", Component: ComponentInverter, Severity: drive.SeverityHigh,
		Binding: Binding{Field: FieldCurrent, Compare: CompareAbove, Threshold: 50.0}},
	{ID: "F30020", Description: "DC link overvoltage", Component: ComponentDCLink, Severity: drive.SeverityHigh,
		Binding: Binding{Field: FieldVoltage, Compare: CompareAbove, Threshold: 800.0}},
	{ID: "F30021", Description: "DC link undervoltage", Component: ComponentDCLink, Severity: drive.SeverityMedium,
		Binding: Binding{Field: FieldVoltage, Compare: CompareBelow, Threshold: 350.0, RunningOnly: true}},
	{ID: "F30030", Description: "Fan failure", Component: ComponentFan, Severity: drive.SeverityMedium,
		Binding: Binding{Field: FieldHealth, Compare: CompareBelow, Threshold: 15.0}},
	{ID: "F30040", Description: "Control unit fault", Component: ComponentCU320, Severity: drive.SeverityHigh,
		Binding: Binding{Field: FieldFatigue, Compare: CompareAbove, Threshold: 20.0}},
	{ID: "F30050", Description: "Communication fault", Component: ComponentCU320, Severity: drive.SeverityMedium,
		Binding: Binding{Field: FieldVibration, Compare: CompareAbove, Threshold: 10.0}},
}

// alarmCatalog lists the warning conditions. Alarms fire earlier than their
// related faults so operators get a graduated picture.
var alarmCatalog = []Definition{
	{ID: "A05010", Description: "Fan speed low", Component: ComponentFan, Severity: drive.SeverityLow,
		Binding: Binding{Field: FieldVibration, Compare: CompareAbove, Threshold: 5.0}},
	{ID: "A05020", Description: "Motor temperature high", Component: ComponentMotor, Severity: drive.SeverityMedium,
		Binding: Binding{Field: FieldTemperature, Compare: CompareAbove, Threshold: 65.0}},
	{ID: "A05030", Description: "DC link voltage high", Component: ComponentDCLink, Severity: drive.SeverityMedium,
		Binding: Binding{Field: FieldVoltage, Compare: CompareAbove, Threshold: 750.0}},
	{ID: "A05040", Description: "Inverter temperature high", Component: ComponentInverter, Severity: drive.SeverityMedium,
		Binding: Binding{Field: FieldTemperature, Compare: CompareAbove, Threshold: 70.0}},
	{ID: "A05050", Description: "Communication warning", Component: ComponentCU320, Severity: drive.SeverityLow,
		Binding: Binding{Field: FieldVibration, Compare: CompareAbove, Threshold: 3.0}},
	{ID: "A05060", Description: "Motor bearing wear", Component: ComponentMotor, Severity: drive.SeverityLow,
		Binding: Binding{Field: FieldVibration, Compare: CompareAbove, Threshold: 6.0}},
	{ID: "A05070", Description: "Maintenance due", Component: ComponentCU320, Severity: drive.SeverityLow,
		Binding: Binding{Field: FieldMaintenanceDue, Compare: CompareAbove, Threshold: 0.0}},
	{ID: "A05080", Description: "Efficiency low", Component: ComponentCU320, Severity: drive.SeverityMedium,
		Binding: Binding{Field: FieldEfficiency, Compare: CompareBelow, Threshold: 85.0, RunningOnly: true}},
}

func catalogIndex(defs []Definition) map[string]Definition {
	idx := make(map[string]Definition, len(defs))
	for _, d := range defs {
		idx[d.ID] = d
	}
	return idx
}

var (
	faultByID = catalogIndex(faultCatalog)
	alarmByID = catalogIndex(alarmCatalog)
)
