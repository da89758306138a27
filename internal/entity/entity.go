// Package entity describes the readings a charger exposes to consumers and
// projects a Snapshot onto them.
package entity

import (
	"fmt"
	"strconv"

	"github.com/dm/voltie-go/internal/model"
)

// Kind is the platform entity type.
type Kind string

const (
	KindSensor       Kind = "sensor"
	KindBinarySensor Kind = "binary_sensor"
	KindSwitch       Kind = "switch"
)

const (
	Manufacturer = "Voltie"
	ModelName    = "Voltie Charger"
)

// Descriptor is the static definition of one entity.
type Descriptor struct {
	Key         string
	Name        string
	Kind        Kind
	Source      model.Source
	Path        []string
	Unit        string
	DeviceClass string
	StateClass  string
	Icon        string
}

// UniqueID returns the stable identifier of the entity for the named charger.
func (d Descriptor) UniqueID(instance string) string {
	return "voltie_charger_" + d.Key + "_" + instance
}

// DisplayName returns the human-readable entity name.
func (d Descriptor) DisplayName(instance string) string {
	return ModelName + " " + d.Name + " " + instance
}

// Read extracts the entity value from s. Sensors whose key is missing are
// unavailable; binary sensors and switches default to false.
func (d Descriptor) Read(s *model.Snapshot) Reading {
	r := Reading{Descriptor: d}
	if s == nil {
		return r
	}
	switch d.Kind {
	case KindBinarySensor, KindSwitch:
		on, _ := s.Bool(d.Source, d.Path...)
		r.Value, r.Available = on, true
	default:
		r.Value, r.Available = s.Value(d.Source, d.Path...)
		if r.Value == nil {
			r.Available = false
		}
	}
	return r
}

// Reading is the current value of one entity.
type Reading struct {
	Descriptor
	Value     any
	Available bool
}

// Float returns the reading as a number. Booleans map to 0/1 and numeric
// strings are parsed; anything else reports false.
func (r Reading) Float() (float64, bool) {
	if !r.Available {
		return 0, false
	}
	switch v := r.Value.(type) {
	case float64:
		return v, true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

// State renders the reading the way the home-automation platform expects it
// on a state topic.
func (r Reading) State() string {
	if !r.Available {
		return "unavailable"
	}
	if b, ok := r.Value.(bool); ok {
		if b {
			return "ON"
		}
		return "OFF"
	}
	if f, ok := r.Value.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(r.Value)
}

// DeviceInfo groups all entities of one charger under a single device.
type DeviceInfo struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model"`
}

// Device returns the device description for the named charger.
func Device(instance string) DeviceInfo {
	return DeviceInfo{
		Identifiers:  []string{"voltie_charger_" + instance},
		Name:         ModelName,
		Manufacturer: Manufacturer,
		Model:        ModelName,
	}
}

// Project reads every catalogue entry from s.
func Project(s *model.Snapshot) []Reading {
	all := Catalogue()
	out := make([]Reading, len(all))
	for i, d := range all {
		out[i] = d.Read(s)
	}
	return out
}
