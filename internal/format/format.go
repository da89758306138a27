package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dm/voltie-go/internal/entity"
)

// Missing is rendered for readings the charger did not report.
const Missing = "---"

// FormatPower formats a power value in watts. Values of 1 kW and above are
// shown in kW with 2 decimal places.
// Example: 850 → "850 W", 7360 → "7.36 kW".
func FormatPower(watts float64) string {
	if watts >= 1000 || watts <= -1000 {
		return fmt.Sprintf("%.2f kW", watts/1000)
	}
	return fmt.Sprintf("%.0f W", watts)
}

// FormatKiloWatt formats a power value already expressed in kW.
func FormatKiloWatt(kw float64) string {
	return fmt.Sprintf("%.2f kW", kw)
}

// FormatEnergy formats an energy value in kWh with comma-separated thousands
// and 2 decimal places.
// Example: 1234.5 → "1,234.50 kWh".
func FormatEnergy(kwh float64) string {
	return formatCommaFloat(kwh, 2) + " kWh"
}

// FormatCurrent formats a current in amperes with one decimal place.
func FormatCurrent(amps float64) string {
	return fmt.Sprintf("%.1f A", amps)
}

// FormatVoltage formats a voltage with one decimal place.
func FormatVoltage(volts float64) string {
	return fmt.Sprintf("%.1f V", volts)
}

// FormatDuration formats a number of seconds as "1h 02m 03s", dropping
// leading zero units. Negative values return Missing.
func FormatDuration(seconds float64) string {
	if seconds < 0 {
		return Missing
	}
	d := time.Duration(seconds) * time.Second
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// FormatAge formats the time elapsed since t, or Missing for the zero time.
func FormatAge(t, now time.Time) string {
	if t.IsZero() {
		return Missing
	}
	age := now.Sub(t)
	if age < time.Second {
		return "just now"
	}
	return FormatDuration(age.Seconds()) + " ago"
}

// FormatReading renders an entity reading according to its unit.
func FormatReading(r entity.Reading) string {
	if !r.Available {
		return Missing
	}
	if b, ok := r.Value.(bool); ok {
		if b {
			return "on"
		}
		return "off"
	}
	f, ok := r.Float()
	if !ok {
		return fmt.Sprint(r.Value)
	}
	switch r.Unit {
	case entity.UnitWatt:
		return FormatPower(f)
	case entity.UnitKiloWatt:
		return FormatKiloWatt(f)
	case entity.UnitKWh:
		return FormatEnergy(f)
	case entity.UnitAmpere:
		return FormatCurrent(f)
	case entity.UnitVolt:
		return FormatVoltage(f)
	case entity.UnitSeconds:
		return FormatDuration(f)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatCommaFloat formats a float with comma-separated thousands and the
// given number of decimal places.
func formatCommaFloat(f float64, decimals int) string {
	formatted := strconv.FormatFloat(f, 'f', decimals, 64)
	sign := ""
	if strings.HasPrefix(formatted, "-") {
		sign = "-"
		formatted = formatted[1:]
	}
	intPart, frac, hasFrac := strings.Cut(formatted, ".")
	intPart = insertCommas(intPart)
	if hasFrac {
		return sign + intPart + "." + frac
	}
	return sign + intPart
}

// insertCommas inserts comma separators into a digit string every 3 digits from the right.
func insertCommas(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var buf strings.Builder
	lead := n % 3
	if lead > 0 {
		buf.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(s[i : i+3])
	}
	return buf.String()
}
