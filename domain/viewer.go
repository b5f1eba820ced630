// Package domain contains the room synchronization core.
// This file defines the Viewer entity and its change tracking.
// No runtime, network, or storage logic should be added here.
package domain

import (
	"maps"
	"slices"
	"time"
)

type ViewerID string

// Viewer is one participant's playback, presence and preference state inside
// a single Room. It is owned by that Room and only mutated through it.
//
// Every setter compares the new value with the current one and reports whether
// it changed; changed fields are accumulated in a bitmask until the owning Room
// clears it at the end of a unit of work.
type Viewer struct {
	id         ViewerID
	userName   string
	photoKey   string
	onPause    bool
	timeLine   time.Duration
	speed      float64
	fullScreen bool
	muted      bool
	season     int
	episode    int
	online     bool
	settings   Settings
	tags       map[string]struct{}
	statistic  map[string]int
	changed    Field
}

// NewViewer returns a viewer as it appears right after joining a room:
// online, paused at the beginning, normal speed, attention signals allowed.
func NewViewer(id ViewerID, userName, photoKey string) Viewer {
	return Viewer{
		id:        id,
		userName:  userName,
		photoKey:  photoKey,
		onPause:   true,
		speed:     1,
		online:    true,
		settings:  DefaultSettings(),
		tags:      make(map[string]struct{}),
		statistic: make(map[string]int),
	}
}

func (v *Viewer) ID() ViewerID              { return v.id }
func (v *Viewer) UserName() string          { return v.userName }
func (v *Viewer) PhotoKey() string          { return v.photoKey }
func (v *Viewer) OnPause() bool             { return v.onPause }
func (v *Viewer) TimeLine() time.Duration   { return v.timeLine }
func (v *Viewer) Speed() float64            { return v.speed }
func (v *Viewer) FullScreen() bool          { return v.fullScreen }
func (v *Viewer) Muted() bool               { return v.muted }
func (v *Viewer) Online() bool              { return v.online }
func (v *Viewer) Settings() Settings        { return v.settings.clone() }
func (v *Viewer) ChangedFields() Field      { return v.changed }
func (v *Viewer) Statistic(name string) int { return v.statistic[name] }

// Season returns the current season, 0 when the room is not a series.
func (v *Viewer) Season() int { return v.season }

// Episode returns the current episode, 0 when the room is not a series.
func (v *Viewer) Episode() int { return v.episode }

func (v *Viewer) HasTag(tag string) bool {
	_, ok := v.tags[tag]
	return ok
}

// Tags returns the viewer tags sorted alphabetically.
func (v *Viewer) Tags() []string {
	return slices.Sorted(maps.Keys(v.tags))
}

func (v *Viewer) Statistics() map[string]int {
	return maps.Clone(v.statistic)
}

// SameEpisode reports whether both viewers are on the same season and episode.
func (v *Viewer) SameEpisode(other *Viewer) bool {
	return v.season == other.season && v.episode == other.episode
}

func set[T comparable](v *Viewer, dst *T, value T, field Field) bool {
	if *dst == value {
		return false
	}
	*dst = value
	v.changed |= field
	return true
}

func (v *Viewer) setOnline(online bool) bool {
	return set(v, &v.online, online, FieldOnline)
}

func (v *Viewer) setOnPause(pause bool) bool {
	return set(v, &v.onPause, pause, FieldOnPause)
}

func (v *Viewer) setTimeLine(timeLine time.Duration) bool {
	return set(v, &v.timeLine, timeLine, FieldTimeLine)
}

func (v *Viewer) setSpeed(speed float64) bool {
	return set(v, &v.speed, speed, FieldSpeed)
}

func (v *Viewer) setFullScreen(fullScreen bool) bool {
	return set(v, &v.fullScreen, fullScreen, FieldFullScreen)
}

func (v *Viewer) setMuted(muted bool) bool {
	return set(v, &v.muted, muted, FieldMuted)
}

func (v *Viewer) setSeason(season int) bool {
	return set(v, &v.season, season, FieldSeason)
}

func (v *Viewer) setEpisode(episode int) bool {
	return set(v, &v.episode, episode, FieldEpisode)
}

func (v *Viewer) setPhotoKey(photoKey string) bool {
	return set(v, &v.photoKey, photoKey, FieldPhoto)
}

func (v *Viewer) setUserName(userName string) bool {
	return set(v, &v.userName, userName, FieldUserName)
}

func (v *Viewer) setSettings(settings Settings) bool {
	if v.settings.Equal(settings) {
		return false
	}
	v.settings = settings.clone()
	v.changed |= FieldSettings
	return true
}

func (v *Viewer) addTag(tag string) bool {
	if v.HasTag(tag) {
		return false
	}
	v.tags[tag] = struct{}{}
	v.changed |= FieldTags
	return true
}

func (v *Viewer) removeTag(tag string) bool {
	if !v.HasTag(tag) {
		return false
	}
	delete(v.tags, tag)
	v.changed |= FieldTags
	return true
}

func (v *Viewer) incrementStatistic(name string) int {
	v.statistic[name]++
	return v.statistic[name]
}

func (v *Viewer) clearChanges() {
	v.changed = 0
}
