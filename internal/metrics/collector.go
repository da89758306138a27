package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dm/voltie-go/internal/engine"
	"github.com/dm/voltie-go/internal/entity"
	"github.com/dm/voltie-go/internal/model"
)

const namespace = "voltie"

var unitSuffix = map[string]string{
	"V":   "_volts",
	"A":   "_amperes",
	"W":   "_watts",
	"kW":  "_kilowatts",
	"kWh": "_kilowatt_hours",
	"s":   "_seconds",
}

type entityDesc struct {
	entity.Descriptor
	desc      *prometheus.Desc
	valueType prometheus.ValueType
}

// Collector implements prometheus.Collector over the cached snapshots of a set
// of chargers. Scrapes never touch the network.
type Collector struct {
	instances []*engine.Instance
	entities  []entityDesc

	up          *prometheus.Desc
	lastSuccess *prometheus.Desc
	info        *prometheus.Desc
}

// NewCollector creates a collector for the given instances.
func NewCollector(instances []*engine.Instance) *Collector {
	c := &Collector{
		instances: instances,
		up: prometheus.NewDesc(
			namespace+"_up",
			"Whether the last refresh of the charger succeeded (1=yes, 0=no)",
			[]string{"charger"}, nil,
		),
		lastSuccess: prometheus.NewDesc(
			namespace+"_last_success_timestamp_seconds",
			"Unix time of the last successful refresh",
			[]string{"charger"}, nil,
		),
		info: prometheus.NewDesc(
			namespace+"_info",
			"Charger identity",
			[]string{"charger", "charger_id", "host"}, nil,
		),
	}
	for _, d := range entity.Catalogue() {
		if d.Key == "id" {
			continue
		}
		vt := prometheus.GaugeValue
		if d.StateClass == "total_increasing" {
			vt = prometheus.CounterValue
		}
		c.entities = append(c.entities, entityDesc{
			Descriptor: d,
			desc:       prometheus.NewDesc(MetricName(d), help(d), []string{"charger"}, nil),
			valueType:  vt,
		})
	}
	return c
}

// MetricName returns the exported metric name for an entity.
func MetricName(d entity.Descriptor) string {
	name := namespace + "_" + d.Key
	if d.Kind == entity.KindSwitch {
		name = namespace + "_charge_enabled"
	}
	return name + unitSuffix[d.Unit]
}

func help(d entity.Descriptor) string {
	switch d.Kind {
	case entity.KindBinarySensor, entity.KindSwitch:
		return d.Name + " (1=on, 0=off)"
	}
	if d.Unit != "" {
		return d.Name + " in " + d.Unit
	}
	return d.Name
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.up
	ch <- c.lastSuccess
	ch <- c.info
	for _, e := range c.entities {
		ch <- e.desc
	}
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, inst := range c.instances {
		c.collectInstance(inst, ch)
	}
}

func (c *Collector) collectInstance(inst *engine.Instance, ch chan<- prometheus.Metric) {
	st := inst.Cache.State()

	up := 0.0
	if st.Ready() && st.LastError == nil {
		up = 1
	}
	ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, up, inst.Name)

	if !st.Ready() {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.lastSuccess, prometheus.GaugeValue,
		float64(st.LastSuccess.UnixMilli())/1000, inst.Name)

	id, _ := st.Snapshot.String(model.SourceStatus, "charger_id")
	ch <- prometheus.MustNewConstMetric(c.info, prometheus.GaugeValue, 1, inst.Name, id, inst.Client.BaseURL())

	for _, e := range c.entities {
		v, ok := e.Read(st.Snapshot).Float()
		if !ok {
			continue
		}
		ch <- prometheus.MustNewConstMetric(e.desc, e.valueType, v, inst.Name)
	}
}
