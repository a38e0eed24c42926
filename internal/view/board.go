// Package view keeps the rendered state of the map, workout list, form and
// alerts so that HTTP clients can read back what the tracker drew.
package view

import (
	"sync"

	"go.uber.org/zap"

	"github.com/zahid-01/Running-Tracker/internal/domain"
	"github.com/zahid-01/Running-Tracker/internal/tracker"
)

// MapState describes the map widget.
type MapState struct {
	Ready  bool               `json:"ready"`
	Center domain.Coordinates `json:"center"`
	Zoom   int                `json:"zoom"`
}

// FormState describes the workout form.
type FormState struct {
	Visible    bool   `json:"visible"`
	ExtraField string `json:"extra_field"`
	Cleared    bool   `json:"cleared"`
}

// Snapshot is a copy of the board contents.
type Snapshot struct {
	Map     MapState  `json:"map"`
	Markers []Marker  `json:"markers"`
	Entries []Entry   `json:"entries"`
	Form    FormState `json:"form"`
	Alerts  []string  `json:"alerts"`
}

// Board implements the tracker's map, list, form and notifier collaborators.
type Board struct {
	mu      sync.Mutex
	logger  *zap.Logger
	mapView MapState
	markers []Marker
	entries []Entry
	form    FormState
	alerts  []string
	changed chan struct{}
}

// NewBoard constructs an empty Board. The form starts on the running field.
func NewBoard(logger *zap.Logger) *Board {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Board{
		logger:  logger,
		form:    FormState{ExtraField: fieldFor(domain.KindRunning)},
		changed: make(chan struct{}),
	}
}

// Changed returns a channel that is closed on the next board mutation.
func (b *Board) Changed() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.changed
}

func (b *Board) unlockChanged() {
	close(b.changed)
	b.changed = make(chan struct{})
	b.mu.Unlock()
}

// Load implements tracker.MapView.
func (b *Board) Load(center domain.Coordinates, zoom int) {
	b.mu.Lock()
	defer b.unlockChanged()
	b.mapView = MapState{Ready: true, Center: center, Zoom: zoom}
	b.markers = nil
}

// AddMarker implements tracker.MapView.
func (b *Board) AddMarker(w domain.Workout) {
	b.mu.Lock()
	defer b.unlockChanged()
	b.markers = append(b.markers, NewMarker(w))
}

// Recenter implements tracker.MapView.
func (b *Board) Recenter(center domain.Coordinates, zoom int) {
	b.mu.Lock()
	defer b.unlockChanged()
	b.mapView.Center = center
	b.mapView.Zoom = zoom
}

// Unload implements tracker.MapView.
func (b *Board) Unload() {
	b.mu.Lock()
	defer b.unlockChanged()
	b.mapView = MapState{}
	b.markers = nil
}

// Views exposes the board as the tracker's collaborators.
func (b *Board) Views() tracker.Views {
	return tracker.Views{Map: b, List: list{b}, Form: b, Notifier: b}
}

// list adapts the board's entries to tracker.ListView.
type list struct {
	b *Board
}

func (l list) Append(w domain.Workout) {
	entry, err := NewEntry(w)
	if err != nil {
		l.b.logger.Error("render list entry", zap.String("workout_id", w.ID), zap.Error(err))
		return
	}
	l.b.mu.Lock()
	defer l.b.unlockChanged()
	l.b.entries = append(l.b.entries, entry)
}

func (l list) Clear() {
	l.b.mu.Lock()
	defer l.b.unlockChanged()
	l.b.entries = nil
}

// Show implements tracker.Form.
func (b *Board) Show() {
	b.mu.Lock()
	defer b.unlockChanged()
	b.form.Visible = true
	b.form.Cleared = false
}

// Hide implements tracker.Form.
func (b *Board) Hide() {
	b.mu.Lock()
	defer b.unlockChanged()
	b.form.Visible = false
}

// Clear implements tracker.Form by resetting the input fields.
func (b *Board) Clear() {
	b.mu.Lock()
	defer b.unlockChanged()
	b.form.Cleared = true
}

// ShowExtraField implements tracker.Form.
func (b *Board) ShowExtraField(kind domain.Kind) {
	b.mu.Lock()
	defer b.unlockChanged()
	b.form.ExtraField = fieldFor(kind)
}

// Alert implements tracker.Notifier.
func (b *Board) Alert(message string) {
	b.mu.Lock()
	defer b.unlockChanged()
	b.alerts = append(b.alerts, message)
}

// Snapshot copies the board. When drainAlerts is set, pending alerts are
// returned once and then dropped.
func (b *Board) Snapshot(drainAlerts bool) Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	snap := Snapshot{
		Map:     b.mapView,
		Markers: append([]Marker{}, b.markers...),
		Entries: append([]Entry{}, b.entries...),
		Form:    b.form,
		Alerts:  append([]string{}, b.alerts...),
	}
	if drainAlerts {
		b.alerts = nil
	}
	return snap
}

func fieldFor(kind domain.Kind) string {
	if kind == domain.KindCycling {
		return "elevationGain"
	}
	return "cadence"
}
