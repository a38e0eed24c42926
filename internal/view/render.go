package view

import (
	"bytes"
	"html/template"
	"strconv"

	"github.com/zahid-01/Running-Tracker/internal/domain"
)

// Marker is a map pin with an always-open popup.
type Marker struct {
	WorkoutID    string             `json:"workout_id"`
	Coords       domain.Coordinates `json:"coords"`
	PopupText    string             `json:"popup_text"`
	ClassName    string             `json:"class_name"`
	MinWidth     int                `json:"min_width"`
	MaxWidth     int                `json:"max_width"`
	AutoClose    bool               `json:"auto_close"`
	CloseOnClick bool               `json:"close_on_click"`
}

// Detail is one icon/value/unit cell of a list entry.
type Detail struct {
	Icon  string `json:"icon"`
	Value string `json:"value"`
	Unit  string `json:"unit"`
}

// Entry is a rendered workout list item.
type Entry struct {
	WorkoutID string   `json:"workout_id"`
	Type      string   `json:"type"`
	Title     string   `json:"title"`
	Details   []Detail `json:"details"`
	HTML      string   `json:"html"`
}

var entryTemplate = template.Must(template.New("entry").Parse(
	`<li class="workout workout--{{.Type}}" data-id="{{.WorkoutID}}">
  <h2 class="workout__title">{{.Title}}</h2>
{{- range .Details}}
  <div class="workout__details">
    <span class="workout__icon">{{.Icon}}</span>
    <span class="workout__value">{{.Value}}</span>
    <span class="workout__unit">{{.Unit}}</span>
  </div>
{{- end}}
</li>`))

// NewMarker builds the marker for a workout.
func NewMarker(w domain.Workout) Marker {
	return Marker{
		WorkoutID: w.ID,
		Coords:    w.Coords,
		PopupText: w.Description,
		ClassName: string(w.Kind) + "-popup",
		MinWidth:  100,
		MaxWidth:  250,
	}
}

// NewEntry builds the list item for a workout.
func NewEntry(w domain.Workout) (Entry, error) {
	metric := w.Metric()
	entry := Entry{
		WorkoutID: w.ID,
		Type:      string(w.Kind),
		Title:     w.Description,
		Details: []Detail{
			{Icon: kindIcon(w.Kind), Value: formatNumber(w.Distance), Unit: "km"},
			{Icon: "⏱", Value: formatNumber(w.Duration), Unit: "min"},
			{Icon: "⚡️", Value: strconv.Itoa(metric.Value), Unit: metric.Unit},
		},
	}
	if w.Kind == domain.KindCycling {
		entry.Details = append(entry.Details, Detail{Icon: "⛰", Value: formatNumber(w.ElevationGain), Unit: "M"})
	} else {
		entry.Details = append(entry.Details, Detail{Icon: "🦶🏼", Value: formatNumber(w.Cadence), Unit: "SPM"})
	}

	var buf bytes.Buffer
	if err := entryTemplate.Execute(&buf, entry); err != nil {
		return Entry{}, err
	}
	entry.HTML = buf.String()
	return entry, nil
}

func kindIcon(kind domain.Kind) string {
	if kind == domain.KindCycling {
		return "🚴‍♂️"
	}
	return "🏃‍♂️"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
