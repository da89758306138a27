package model

import "time"

const defaultTrendCap = 60

// Series identifies one charted reading.
type Series int

const (
	SeriesChargePower Series = iota
	SeriesChargeCurrent
	SeriesSessionEnergy
	SeriesMainsVoltage
	seriesCount
)

// seriesPaths locates each series in the /status body.
var seriesPaths = [seriesCount][]string{
	SeriesChargePower:   {"charge_power"},
	SeriesChargeCurrent: {"charge_current"},
	SeriesSessionEnergy: {"cdr", "chg_energy"},
	SeriesMainsVoltage:  {"mains_voltage"},
}

// TrendPoint holds the charted readings of one snapshot.
type TrendPoint struct {
	At     time.Time
	Values [seriesCount]float64
}

// Get returns the value of series s.
func (p TrendPoint) Get(s Series) float64 {
	if s < 0 || s >= seriesCount {
		return 0
	}
	return p.Values[s]
}

// PointFromSnapshot extracts the charted readings from a snapshot. Missing
// values are recorded as zero.
func PointFromSnapshot(s *Snapshot) TrendPoint {
	p := TrendPoint{At: s.FetchedAt}
	for i, path := range seriesPaths {
		p.Values[i], _ = s.Number(SourceStatus, path...)
	}
	return p
}

// Trend keeps the most recent points in a ring. Once full, each push drops the
// oldest point.
type Trend struct {
	buf  []TrendPoint
	next int
	n    int
}

// NewTrend creates a Trend holding up to capacity points; capacity <= 0 means
// defaultTrendCap.
func NewTrend(capacity int) *Trend {
	if capacity <= 0 {
		capacity = defaultTrendCap
	}
	return &Trend{buf: make([]TrendPoint, capacity)}
}

func (t *Trend) Push(p TrendPoint) {
	t.buf[t.next] = p
	t.next = (t.next + 1) % len(t.buf)
	if t.n < len(t.buf) {
		t.n++
	}
}

func (t *Trend) Len() int {
	return t.n
}

func (t *Trend) Clear() {
	t.next, t.n = 0, 0
}

// Last returns the newest point.
func (t *Trend) Last() (TrendPoint, bool) {
	if t.n == 0 {
		return TrendPoint{}, false
	}
	return t.at(t.n - 1), true
}

// Values returns series s oldest first.
func (t *Trend) Values(s Series) []float64 {
	out := make([]float64, t.n)
	for i := range out {
		out[i] = t.at(i).Get(s)
	}
	return out
}

// at returns the i-th retained point counting from the oldest.
func (t *Trend) at(i int) TrendPoint {
	oldest := (t.next - t.n + len(t.buf)) % len(t.buf)
	return t.buf[(oldest+i)%len(t.buf)]
}
