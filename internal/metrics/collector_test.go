package metrics

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/voltie-go/internal/engine"
	"github.com/dm/voltie-go/internal/entity"
)

type fakeClient struct {
	status map[string]any
	err    error
}

func (f *fakeClient) GetStatus(context.Context) (map[string]any, error) { return f.status, f.err }
func (f *fakeClient) GetPower(context.Context) (map[string]any, error) {
	return map[string]any{"power_stat": map[string]any{"voltage1": 231.0, "dlm_valid": true}}, nil
}
func (f *fakeClient) Start(context.Context) error { return nil }
func (f *fakeClient) Stop(context.Context) error  { return nil }
func (f *fakeClient) BaseURL() string             { return "http://192.168.1.40" }
func (f *fakeClient) Close()                      {}

func readyInstance(t *testing.T, name string) (*engine.Instance, *fakeClient) {
	t.Helper()
	fc := &fakeClient{status: map[string]any{
		"charger_id":       "ABC1",
		"mains_voltage":    230.0,
		"is_car_connected": false,
		"cdr":              map[string]any{"chg_energy": 12.5},
	}}
	inst := engine.NewInstance(name, fc, engine.Options{Pace: 1}, zerolog.Nop())
	require.NoError(t, inst.Setup(context.Background()))
	return inst, fc
}

func TestCollector_Describe(t *testing.T) {
	c := NewCollector(nil)
	ch := make(chan *prometheus.Desc, 64)
	c.Describe(ch)
	close(ch)

	count := 0
	for range ch {
		count++
	}
	// up, last_success, info plus every catalogue entry except the id sensor
	assert.Equal(t, 3+len(entity.Catalogue())-1, count)
}

func TestCollector_ReadyInstance(t *testing.T) {
	inst, _ := readyInstance(t, "garage")
	c := NewCollector([]*engine.Instance{inst})

	expected := `
# HELP voltie_mains_voltage_volts Mains Voltage in V
# TYPE voltie_mains_voltage_volts gauge
voltie_mains_voltage_volts{charger="garage"} 230
# HELP voltie_voltage_l1_volts Voltage L1 in V
# TYPE voltie_voltage_l1_volts gauge
voltie_voltage_l1_volts{charger="garage"} 231
# HELP voltie_session_energy_kilowatt_hours Session Energy in kWh
# TYPE voltie_session_energy_kilowatt_hours counter
voltie_session_energy_kilowatt_hours{charger="garage"} 12.5
# HELP voltie_car_connected Car Connected (1=on, 0=off)
# TYPE voltie_car_connected gauge
voltie_car_connected{charger="garage"} 0
# HELP voltie_dlm_valid DLM Valid (1=on, 0=off)
# TYPE voltie_dlm_valid gauge
voltie_dlm_valid{charger="garage"} 1
# HELP voltie_up Whether the last refresh of the charger succeeded (1=yes, 0=no)
# TYPE voltie_up gauge
voltie_up{charger="garage"} 1
# HELP voltie_info Charger identity
# TYPE voltie_info gauge
voltie_info{charger="garage",charger_id="ABC1",host="http://192.168.1.40"} 1
`
	err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"voltie_mains_voltage_volts",
		"voltie_voltage_l1_volts",
		"voltie_session_energy_kilowatt_hours",
		"voltie_car_connected",
		"voltie_dlm_valid",
		"voltie_up",
		"voltie_info",
	)
	assert.NoError(t, err)

	// unavailable sensors are not exported
	assert.Equal(t, 0, testutil.CollectAndCount(c, "voltie_charge_power_watts"))
}

func TestCollector_FailedRefreshKeepsValues(t *testing.T) {
	inst, fc := readyInstance(t, "garage")
	c := NewCollector([]*engine.Instance{inst})

	fc.err = assert.AnError
	require.Error(t, inst.Cache.Refresh(context.Background()))

	expected := `
# HELP voltie_up Whether the last refresh of the charger succeeded (1=yes, 0=no)
# TYPE voltie_up gauge
voltie_up{charger="garage"} 0
`
	assert.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected), "voltie_up"))
	assert.Equal(t, 1, testutil.CollectAndCount(c, "voltie_mains_voltage_volts"))
}

func TestCollector_NotReady(t *testing.T) {
	fc := &fakeClient{err: assert.AnError}
	inst := engine.NewInstance("garage", fc, engine.Options{Pace: 1}, zerolog.Nop())
	c := NewCollector([]*engine.Instance{inst})

	assert.Equal(t, 1, testutil.CollectAndCount(c), "only voltie_up for a charger that never answered")
}

func TestMetricName(t *testing.T) {
	d, ok := entity.Lookup("session_charge_time")
	require.True(t, ok)
	assert.Equal(t, "voltie_session_charge_time_seconds", MetricName(d))
	assert.Equal(t, "voltie_charge_enabled", MetricName(entity.ChargeSwitch))

	d, _ = entity.Lookup("average_power")
	assert.Equal(t, "voltie_average_power_kilowatts", MetricName(d))
}
