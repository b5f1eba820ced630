package domain

import (
	"fmt"
	"maps"
	"math"
	"time"
	"watch-party/errors"
)

// tickDuration is the wire unit for durations: 100 nanoseconds.
const tickDuration = 100 * time.Nanosecond

func ToTicks(d time.Duration) int64 {
	return int64(d / tickDuration)
}

// maxTicks is the largest tick count a time.Duration can hold.
const maxTicks = math.MaxInt64 / int64(tickDuration)

// FromTicks converts trusted tick counts, such as the stored ones.
func FromTicks(ticks int64) time.Duration {
	return time.Duration(ticks) * tickDuration
}

// ParseTicks converts client tick counts. Counts a time.Duration cannot hold
// fail with ErrOutOfRange instead of wrapping around.
func ParseTicks(ticks int64) (time.Duration, error) {
	if ticks > maxTicks || ticks < -maxTicks {
		return 0, fmt.Errorf("%w: %d ticks", errors.ErrOutOfRange, ticks)
	}
	return FromTicks(ticks), nil
}

// RoomSnapshot is the flat persisted form of a Room.
type RoomSnapshot struct {
	ID       string           `json:"id"`
	FilmID   string           `json:"filmId"`
	IsSerial bool             `json:"isSerial"`
	OwnerID  string           `json:"ownerId"`
	Version  uint64           `json:"version"`
	Viewers  []ViewerSnapshot `json:"viewers"`
}

// ViewerSnapshot is the flat persisted form of a Viewer. TimeLine is in ticks.
type ViewerSnapshot struct {
	ID         string         `json:"id"`
	UserName   string         `json:"userName"`
	PhotoKey   string         `json:"photoKey,omitempty"`
	OnPause    bool           `json:"onPause"`
	TimeLine   int64          `json:"timeLine"`
	Speed      float64        `json:"speed"`
	FullScreen bool           `json:"fullScreen"`
	Muted      bool           `json:"muted"`
	Season     int            `json:"season,omitempty"`
	Episode    int            `json:"episode,omitempty"`
	Online     bool           `json:"online"`
	Settings   Settings       `json:"settings"`
	Tags       []string       `json:"tags,omitempty"`
	Statistic  map[string]int `json:"statistic,omitempty"`
}

// Snapshot captures the persisted state of the room. Pending events and change
// sets are transient and not part of it.
func (r *Room) Snapshot() RoomSnapshot {
	viewers := make([]ViewerSnapshot, 0, len(r.viewers))
	for i := range r.viewers {
		viewers = append(viewers, r.viewers[i].Snapshot())
	}
	return RoomSnapshot{
		ID:       string(r.ID),
		FilmID:   r.FilmID,
		IsSerial: r.IsSerial,
		OwnerID:  string(r.ownerID),
		Version:  r.version,
		Viewers:  viewers,
	}
}

func (v *Viewer) Snapshot() ViewerSnapshot {
	return ViewerSnapshot{
		ID:         string(v.id),
		UserName:   v.userName,
		PhotoKey:   v.photoKey,
		OnPause:    v.onPause,
		TimeLine:   ToTicks(v.timeLine),
		Speed:      v.speed,
		FullScreen: v.fullScreen,
		Muted:      v.muted,
		Season:     v.season,
		Episode:    v.episode,
		Online:     v.online,
		Settings:   v.settings.clone(),
		Tags:       v.Tags(),
		Statistic:  maps.Clone(v.statistic),
	}
}

// FromSnapshot rebuilds a Room without raising any event.
func FromSnapshot(s RoomSnapshot) *Room {
	r := &Room{
		ID:       RoomID(s.ID),
		FilmID:   s.FilmID,
		IsSerial: s.IsSerial,
		ownerID:  ViewerID(s.OwnerID),
		version:  s.Version,
		viewers:  make([]Viewer, 0, len(s.Viewers)),
		index:    make(map[ViewerID]int, len(s.Viewers)),
	}
	for _, vs := range s.Viewers {
		r.index[ViewerID(vs.ID)] = len(r.viewers)
		r.viewers = append(r.viewers, viewerFromSnapshot(vs))
	}
	return r
}

func viewerFromSnapshot(s ViewerSnapshot) Viewer {
	v := Viewer{
		id:         ViewerID(s.ID),
		userName:   s.UserName,
		photoKey:   s.PhotoKey,
		onPause:    s.OnPause,
		timeLine:   FromTicks(s.TimeLine),
		speed:      s.Speed,
		fullScreen: s.FullScreen,
		muted:      s.Muted,
		season:     s.Season,
		episode:    s.Episode,
		online:     s.Online,
		settings:   s.Settings.clone(),
		tags:       make(map[string]struct{}, len(s.Tags)),
		statistic:  make(map[string]int, len(s.Statistic)),
	}
	for _, tag := range s.Tags {
		v.tags[tag] = struct{}{}
	}
	maps.Copy(v.statistic, s.Statistic)
	return v
}
