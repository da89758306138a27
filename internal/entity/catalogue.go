package entity

import (
	"fmt"

	"github.com/dm/voltie-go/internal/model"
)

// Units of measurement reported by the charger.
const (
	UnitVolt     = "V"
	UnitAmpere   = "A"
	UnitWatt     = "W"
	UnitKiloWatt = "kW"
	UnitKWh      = "kWh"
	UnitSeconds  = "s"

	classVoltage  = "voltage"
	classCurrent  = "current"
	classPower    = "power"
	classEnergy   = "energy"
	classDuration = "duration"

	stateMeasurement     = "measurement"
	stateTotalIncreasing = "total_increasing"
)

func statusSensor(key, name string, path []string, unit, class, state string) Descriptor {
	return Descriptor{
		Key: key, Name: name, Kind: KindSensor,
		Source: model.SourceStatus, Path: path,
		Unit: unit, DeviceClass: class, StateClass: state,
	}
}

var statusSensors = []Descriptor{
	{Key: "id", Name: "ID", Kind: KindSensor, Source: model.SourceStatus, Path: []string{"charger_id"}, Icon: "mdi:identifier"},
	statusSensor("mains_voltage", "Mains Voltage", []string{"mains_voltage"}, UnitVolt, classVoltage, stateMeasurement),
	statusSensor("phases", "Phases", []string{"phases"}, "", "", stateMeasurement),
	statusSensor("current_offered", "Current Offered", []string{"current_offered"}, UnitAmpere, classCurrent, stateMeasurement),
	statusSensor("charge_current", "Charge Current", []string{"charge_current"}, UnitAmpere, classCurrent, stateMeasurement),
	statusSensor("charge_power", "Charge Power", []string{"charge_power"}, UnitWatt, classPower, stateMeasurement),
	statusSensor("session_energy", "Session Energy", []string{"cdr", "chg_energy"}, UnitKWh, classEnergy, stateTotalIncreasing),
	statusSensor("session_charge_time", "Session Charge Time", []string{"cdr", "chg_time"}, UnitSeconds, classDuration, stateMeasurement),
	statusSensor("session_idle_time", "Session Idle Time", []string{"cdr", "idle_time"}, UnitSeconds, classDuration, stateMeasurement),
	statusSensor("average_power", "Average Power", []string{"cdr", "avg_power"}, UnitKiloWatt, classPower, stateMeasurement),
}

// phase sensors read power_stat.<field><phase> for phases 1..3
var phaseFields = []struct {
	field, key, name, unit, class string
}{
	{"voltage", "voltage", "Voltage", UnitVolt, classVoltage},
	{"current", "current", "Current", UnitAmpere, classCurrent},
	{"power", "power", "Power", UnitWatt, classPower},
	{"dlm_current", "dlm_current", "DLM Current", UnitAmpere, classCurrent},
	{"ipm_current", "ipm_current", "IPM Current", UnitAmpere, classCurrent},
}

func phaseSensors() []Descriptor {
	out := make([]Descriptor, 0, len(phaseFields)*3)
	for _, f := range phaseFields {
		for phase := 1; phase <= 3; phase++ {
			out = append(out, Descriptor{
				Key:         fmt.Sprintf("%s_l%d", f.key, phase),
				Name:        fmt.Sprintf("%s L%d", f.name, phase),
				Kind:        KindSensor,
				Source:      model.SourcePower,
				Path:        []string{"power_stat", fmt.Sprintf("%s%d", f.field, phase)},
				Unit:        f.unit,
				DeviceClass: f.class,
				StateClass:  stateMeasurement,
			})
		}
	}
	return out
}

var binarySensors = []Descriptor{
	{Key: "car_connected", Name: "Car Connected", Kind: KindBinarySensor, Source: model.SourceStatus, Path: []string{"is_car_connected"}, DeviceClass: "plug"},
	{Key: "is_charging", Name: "Is Charging", Kind: KindBinarySensor, Source: model.SourceStatus, Path: []string{"is_charging"}, DeviceClass: "battery_charging"},
	{Key: "autostart", Name: "Autostart", Kind: KindBinarySensor, Source: model.SourceStatus, Path: []string{"autostart"}},
	{Key: "dlm_valid", Name: "DLM Valid", Kind: KindBinarySensor, Source: model.SourcePower, Path: []string{"power_stat", "dlm_valid"}},
	{Key: "ipm_valid", Name: "IPM Valid", Kind: KindBinarySensor, Source: model.SourcePower, Path: []string{"power_stat", "ipm_valid"}},
}

// ChargeSwitch reflects charge_enabled; turning it on or off maps to the
// start and stop commands.
var ChargeSwitch = Descriptor{
	Key:    "switch",
	Name:   "Switch",
	Kind:   KindSwitch,
	Source: model.SourceStatus,
	Path:   []string{"charge_enabled"},
	Icon:   "mdi:ev-station",
}

// Sensors returns the numeric and text sensors in display order.
func Sensors() []Descriptor {
	out := make([]Descriptor, 0, len(statusSensors)+len(phaseFields)*3)
	out = append(out, statusSensors...)
	return append(out, phaseSensors()...)
}

// BinarySensors returns the on/off sensors.
func BinarySensors() []Descriptor {
	return append([]Descriptor(nil), binarySensors...)
}

// Catalogue returns every entity of a charger: sensors, binary sensors and
// the charge switch.
func Catalogue() []Descriptor {
	out := Sensors()
	out = append(out, binarySensors...)
	return append(out, ChargeSwitch)
}

// Lookup finds a catalogue entry by key.
func Lookup(key string) (Descriptor, bool) {
	for _, d := range Catalogue() {
		if d.Key == key {
			return d, true
		}
	}
	return Descriptor{}, false
}
