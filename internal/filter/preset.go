package filter

import (
	"fmt"
	"time"
)

// DatePreset is a named range relative to the current moment.
type DatePreset string

const (
	PresetToday     DatePreset = "today"
	PresetYesterday DatePreset = "yesterday"
	Preset7Days     DatePreset = "7days"
	Preset30Days    DatePreset = "30days"
	Preset90Days    DatePreset = "90days"
)

// Presets lists every date preset in display order.
var Presets = []DatePreset{PresetToday, PresetYesterday, Preset7Days, Preset30Days, Preset90Days}

func (p DatePreset) IsValid() bool {
	_, _, ok := p.Range(time.Now())
	return ok
}

// Range returns the inclusive bounds of p evaluated at now.
// "Ndays" ranges start N days before today and end today.
func (p DatePreset) Range(now time.Time) (time.Time, time.Time, bool) {
	switch p {
	case PresetToday:
		return startOfDay(now), endOfDay(now), true
	case PresetYesterday:
		y := now.AddDate(0, 0, -1)
		return startOfDay(y), endOfDay(y), true
	case Preset7Days:
		return startOfDay(now.AddDate(0, 0, -7)), endOfDay(now), true
	case Preset30Days:
		return startOfDay(now.AddDate(0, 0, -30)), endOfDay(now), true
	case Preset90Days:
		return startOfDay(now.AddDate(0, 0, -90)), endOfDay(now), true
	default:
		return time.Time{}, time.Time{}, false
	}
}

func (p DatePreset) Label() string {
	switch p {
	case PresetToday:
		return "Hoy"
	case PresetYesterday:
		return "Ayer"
	case Preset7Days:
		return "Últimos 7 días"
	case Preset30Days:
		return "Últimos 30 días"
	case Preset90Days:
		return "Últimos 90 días"
	default:
		return string(p)
	}
}

const dateLayout = "2006-01-02"

// Describe lists the active filters as display labels.
func Describe(f Filters) []string {
	active := []string{}

	if f.DatePreset != "" {
		active = append(active, f.DatePreset.Label())
	}

	switch {
	case f.StartDate != nil && f.EndDate != nil:
		active = append(active, fmt.Sprintf("Rango: %s - %s", f.StartDate.Format(dateLayout), f.EndDate.Format(dateLayout)))
	case f.StartDate != nil:
		active = append(active, "Desde: "+f.StartDate.Format(dateLayout))
	case f.EndDate != nil:
		active = append(active, "Hasta: "+f.EndDate.Format(dateLayout))
	}

	if f.Status != "" && f.Status != StatusAll {
		active = append(active, "Estado: "+f.Status)
	}
	if f.Product != "" {
		active = append(active, "Producto: "+f.Product)
	}
	if f.Client != "" {
		active = append(active, "Cliente: "+f.Client)
	}
	if f.SearchText != "" {
		active = append(active, fmt.Sprintf("Búsqueda: %q", f.SearchText))
	}

	return active
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
