package event

import (
	"strings"
	"unicode"

	"watch-party/domain"
)

// Mirror handlers recompute a tag from the current viewer state on every
// relevant event. They never count anything.

type MutedHandler struct{}

func NewMutedHandler() *MutedHandler { return &MutedHandler{} }

func (h *MutedHandler) Handle(room *domain.Room, e domain.DomainEvent) error {
	changed, ok := e.(domain.ViewerMuteChanged)
	if !ok {
		return nil
	}
	return room.SetTag(changed.Viewer, TagMuted, changed.Muted)
}

type NoAvatarHandler struct{}

func NewNoAvatarHandler() *NoAvatarHandler { return &NoAvatarHandler{} }

func (h *NoAvatarHandler) Handle(room *domain.Room, e domain.DomainEvent) error {
	changed, ok := e.(domain.ViewerPhotoChanged)
	if !ok {
		return nil
	}
	return room.SetTag(changed.Viewer, TagNoAvatar, strings.TrimSpace(changed.PhotoKey) == "")
}

// SlowWatcherHandler flags viewers playing below normal speed.
type SlowWatcherHandler struct{}

func NewSlowWatcherHandler() *SlowWatcherHandler { return &SlowWatcherHandler{} }

func (h *SlowWatcherHandler) Handle(room *domain.Room, e domain.DomainEvent) error {
	changed, ok := e.(domain.ViewerSpeedChanged)
	if !ok {
		return nil
	}
	return room.SetTag(changed.Viewer, TagSlowWatcher, changed.Speed < 1.0)
}

// FullscreenerHandler ignores sync changes, such as leaving fullscreen when
// going offline.
type FullscreenerHandler struct{}

func NewFullscreenerHandler() *FullscreenerHandler { return &FullscreenerHandler{} }

func (h *FullscreenerHandler) Handle(room *domain.Room, e domain.DomainEvent) error {
	changed, ok := e.(domain.ViewerFullScreenChanged)
	if !ok || changed.IsSync {
		return nil
	}
	return room.SetTag(changed.Viewer, TagFullscreener, changed.FullScreen)
}

type ForeignNameHandler struct{}

func NewForeignNameHandler() *ForeignNameHandler { return &ForeignNameHandler{} }

func (h *ForeignNameHandler) Handle(room *domain.Room, e domain.DomainEvent) error {
	changed, ok := e.(domain.ViewerNameChanged)
	if !ok {
		return nil
	}
	return room.SetTag(changed.Viewer, TagForeignName, latinLettersOnly(changed.UserName))
}

// latinLettersOnly reports whether s holds at least one letter and every letter
// is ASCII. Digits, spaces and punctuation are ignored.
func latinLettersOnly(s string) bool {
	letters := 0
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		if r > unicode.MaxASCII {
			return false
		}
		letters++
	}
	return letters > 0
}
