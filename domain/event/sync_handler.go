package event

import (
	"time"

	"watch-party/domain"
)

const (
	pauseMasterThreshold = 30
	turtleLag            = 5 * time.Minute
)

// PauseMasterHandler counts the pauses a viewer makes by hand.
// Pauses flagged as sync or caused by buffering are not counted.
// The tag is granted only while the viewer pauses against a playing owner.
type PauseMasterHandler struct{}

func NewPauseMasterHandler() *PauseMasterHandler { return &PauseMasterHandler{} }

func (h *PauseMasterHandler) Handle(room *domain.Room, e domain.DomainEvent) error {
	changed, ok := e.(domain.ViewerPauseChanged)
	if !ok || changed.IsSync || changed.Buffering || !changed.Pause {
		return nil
	}
	count, err := room.IncrementStatistic(changed.Viewer, StatPauseCount)
	if err != nil {
		return err
	}
	owner, ok := room.Owner()
	if !ok || owner.OnPause() || count <= pauseMasterThreshold {
		return nil
	}
	return room.AddTag(changed.Viewer, TagPauseMaster)
}

// PauseSyncHandler keeps OffSyncLeader and OnPause in line with the owner.
// A change on the owner side re-evaluates every follower.
type PauseSyncHandler struct{}

func NewPauseSyncHandler() *PauseSyncHandler { return &PauseSyncHandler{} }

func (h *PauseSyncHandler) Handle(room *domain.Room, e domain.DomainEvent) error {
	changed, ok := e.(domain.ViewerPauseChanged)
	if !ok {
		return nil
	}
	if !room.IsOwner(changed.Viewer) {
		return h.evaluate(room, changed.Viewer)
	}
	for _, v := range room.Viewers() {
		if err := h.evaluate(room, v.ID()); err != nil {
			return err
		}
	}
	return nil
}

func (h *PauseSyncHandler) evaluate(room *domain.Room, id domain.ViewerID) error {
	viewer, ok := room.Viewer(id)
	if !ok {
		return nil
	}
	offSync, onPause := false, false
	if owner, ok := room.Owner(); ok && !room.IsOwner(id) {
		offSync = owner.OnPause() && !viewer.OnPause()
		onPause = viewer.OnPause() && !owner.OnPause()
	}
	if err := room.SetTag(id, TagOffSyncLeader, offSync); err != nil {
		return err
	}
	return room.SetTag(id, TagOnPause, onPause)
}

// TurtleHandler flags a viewer lagging at least five minutes behind the owner
// on the same episode.
type TurtleHandler struct{}

func NewTurtleHandler() *TurtleHandler { return &TurtleHandler{} }

func (h *TurtleHandler) Handle(room *domain.Room, e domain.DomainEvent) error {
	var id domain.ViewerID
	switch changed := e.(type) {
	case domain.ViewerTimeLineChanged:
		id = changed.Viewer
	case domain.ViewerEpisodeChanged:
		id = changed.Viewer
	default:
		return nil
	}
	viewer, ok := room.Viewer(id)
	if !ok {
		return nil
	}
	lagging := false
	if owner, ok := room.Owner(); ok && viewer.SameEpisode(owner) {
		lagging = owner.TimeLine()-viewer.TimeLine() >= turtleLag
	}
	return room.SetTag(id, TagTurtle, lagging)
}

// WrongEpisodeHandler flags a viewer watching another episode than the owner.
type WrongEpisodeHandler struct{}

func NewWrongEpisodeHandler() *WrongEpisodeHandler { return &WrongEpisodeHandler{} }

func (h *WrongEpisodeHandler) Handle(room *domain.Room, e domain.DomainEvent) error {
	changed, ok := e.(domain.ViewerEpisodeChanged)
	if !ok {
		return nil
	}
	viewer, ok := room.Viewer(changed.Viewer)
	if !ok {
		return nil
	}
	wrong := false
	if owner, ok := room.Owner(); ok {
		wrong = !viewer.SameEpisode(owner)
	}
	return room.SetTag(changed.Viewer, TagWrongEpisode, wrong)
}
