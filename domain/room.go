package domain

import (
	"fmt"
	"strings"
	"time"

	"watch-party/errors"
)

type RoomID string

// Room is the aggregate root of one synchronized viewing session.
//
// Viewers are stored in a slice addressed through an id -> index map. Pointers
// returned by Viewer, Owner and Viewers stay valid until the next Join, Leave
// or Kick.
//
// Mutators never perform I/O: they update viewer state and append domain
// events to the room outbox, which the caller drains with FlushEvents once the
// unit of work is committed.
type Room struct {
	ID       RoomID
	FilmID   string
	IsSerial bool

	ownerID ViewerID
	version uint64
	viewers []Viewer
	index   map[ViewerID]int
	outbox  []DomainEvent
}

// NewRoom creates a room and joins its owner.
func NewRoom(id RoomID, filmID string, isSerial bool, owner Viewer) *Room {
	r := &Room{
		ID:       id,
		FilmID:   filmID,
		IsSerial: isSerial,
		ownerID:  owner.id,
		index:    make(map[ViewerID]int),
	}
	// The owner cannot already be present in an empty room.
	_ = r.Join(owner)
	return r
}

func (r *Room) OwnerID() ViewerID { return r.ownerID }

func (r *Room) Version() uint64 { return r.version }

// SetVersion is used by repositories once a snapshot has been stored.
func (r *Room) SetVersion(version uint64) { r.version = version }

func (r *Room) Len() int { return len(r.viewers) }

func (r *Room) IsOwner(id ViewerID) bool { return id == r.ownerID }

// Owner returns the owner viewer, or false when the owner has left.
func (r *Room) Owner() (*Viewer, bool) {
	return r.Viewer(r.ownerID)
}

func (r *Room) Viewer(id ViewerID) (*Viewer, bool) {
	i, ok := r.index[id]
	if !ok {
		return nil, false
	}
	return &r.viewers[i], true
}

// Viewers returns every viewer currently in the room.
func (r *Room) Viewers() []*Viewer {
	res := make([]*Viewer, len(r.viewers))
	for i := range r.viewers {
		res[i] = &r.viewers[i]
	}
	return res
}

func (r *Room) viewer(id ViewerID) (*Viewer, error) {
	v, ok := r.Viewer(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrViewerNotFound, id)
	}
	return v, nil
}

func (r *Room) raise(e DomainEvent) {
	r.outbox = append(r.outbox, e)
}

// PendingEvents returns the events raised since the last flush, in order.
func (r *Room) PendingEvents() []DomainEvent {
	return append([]DomainEvent(nil), r.outbox...)
}

// FlushEvents returns the pending events and empties the outbox.
func (r *Room) FlushEvents() []DomainEvent {
	events := r.outbox
	r.outbox = nil
	return events
}

// ClearChanges resets the changed-field set of every viewer.
func (r *Room) ClearChanges() {
	for i := range r.viewers {
		r.viewers[i].clearChanges()
	}
}

func (r *Room) Join(viewer Viewer) error {
	if _, ok := r.index[viewer.id]; ok {
		return fmt.Errorf("%w: %s", errors.ErrViewerAlreadyExists, viewer.id)
	}
	if viewer.tags == nil {
		viewer.tags = make(map[string]struct{})
	}
	if viewer.statistic == nil {
		viewer.statistic = make(map[string]int)
	}
	if r.IsSerial {
		viewer.season = max(viewer.season, 1)
		viewer.episode = max(viewer.episode, 1)
	} else {
		viewer.season, viewer.episode = 0, 0
	}
	viewer.changed = 0

	before := len(r.viewers)
	r.index[viewer.id] = before
	r.viewers = append(r.viewers, viewer)
	r.raise(ViewerJoined{Room: r.ID, Viewer: viewer.id, ViewersBefore: before})
	return nil
}

func (r *Room) Leave(id ViewerID) error {
	if err := r.remove(id); err != nil {
		return err
	}
	r.raise(ViewerLeaved{Room: r.ID, Viewer: id})
	return nil
}

func (r *Room) Kick(id ViewerID) error {
	if err := r.remove(id); err != nil {
		return err
	}
	r.raise(ViewerKicked{Room: r.ID, Viewer: id})
	return nil
}

func (r *Room) remove(id ViewerID) error {
	i, ok := r.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrViewerNotFound, id)
	}
	last := len(r.viewers) - 1
	if i != last {
		r.viewers[i] = r.viewers[last]
		r.index[r.viewers[i].id] = i
	}
	r.viewers[last] = Viewer{}
	r.viewers = r.viewers[:last]
	delete(r.index, id)
	return nil
}

// SetOnline updates presence. Going offline also pauses the viewer and leaves
// fullscreen, both flagged as sync so they are not counted as user actions.
func (r *Room) SetOnline(id ViewerID, online bool) error {
	v, err := r.viewer(id)
	if err != nil {
		return err
	}
	if v.setOnline(online) {
		r.raise(ViewerOnlineChanged{Room: r.ID, Viewer: id, Online: online})
	}
	if !online {
		r.setPause(v, true, true, false)
		r.setFullScreen(v, false, true)
	}
	return nil
}

// SetPause sets the pause state together with the position it happened at.
// The position update is a sync side effect of the pause.
func (r *Room) SetPause(id ViewerID, pause bool, timeLine time.Duration, buffering bool) error {
	if timeLine < 0 {
		return fmt.Errorf("%w: negative time line %s", errors.ErrOutOfRange, timeLine)
	}
	v, err := r.viewer(id)
	if err != nil {
		return err
	}
	r.setPause(v, pause, false, buffering)
	r.setTimeLine(v, timeLine, true)
	return nil
}

func (r *Room) setPause(v *Viewer, pause, isSync, buffering bool) {
	if v.setOnPause(pause) {
		r.raise(ViewerPauseChanged{Room: r.ID, Viewer: v.id, Pause: pause, IsSync: isSync, Buffering: buffering})
	}
}

func (r *Room) SetTimeLine(id ViewerID, timeLine time.Duration, isSync bool) error {
	if timeLine < 0 {
		return fmt.Errorf("%w: negative time line %s", errors.ErrOutOfRange, timeLine)
	}
	v, err := r.viewer(id)
	if err != nil {
		return err
	}
	r.setTimeLine(v, timeLine, isSync)
	return nil
}

func (r *Room) setTimeLine(v *Viewer, timeLine time.Duration, isSync bool) {
	if v.setTimeLine(timeLine) {
		r.raise(ViewerTimeLineChanged{Room: r.ID, Viewer: v.id, TimeLine: timeLine, IsSync: isSync})
	}
}

func (r *Room) SetFullScreen(id ViewerID, fullScreen bool, isSync bool) error {
	v, err := r.viewer(id)
	if err != nil {
		return err
	}
	r.setFullScreen(v, fullScreen, isSync)
	return nil
}

func (r *Room) setFullScreen(v *Viewer, fullScreen, isSync bool) {
	if v.setFullScreen(fullScreen) {
		r.raise(ViewerFullScreenChanged{Room: r.ID, Viewer: v.id, FullScreen: fullScreen, IsSync: isSync})
	}
}

func (r *Room) SetSpeed(id ViewerID, speed float64, isSync bool) error {
	if speed <= 0 {
		return fmt.Errorf("%w: speed must be positive, got %v", errors.ErrOutOfRange, speed)
	}
	v, err := r.viewer(id)
	if err != nil {
		return err
	}
	if v.setSpeed(speed) {
		r.raise(ViewerSpeedChanged{Room: r.ID, Viewer: id, Speed: speed, IsSync: isSync})
	}
	return nil
}

func (r *Room) SetMuted(id ViewerID, muted bool) error {
	v, err := r.viewer(id)
	if err != nil {
		return err
	}
	if v.setMuted(muted) {
		r.raise(ViewerMuteChanged{Room: r.ID, Viewer: id, Muted: muted})
	}
	return nil
}

func (r *Room) SetPhoto(id ViewerID, photoKey string) error {
	v, err := r.viewer(id)
	if err != nil {
		return err
	}
	if v.setPhotoKey(photoKey) {
		r.raise(ViewerPhotoChanged{Room: r.ID, Viewer: id, PhotoKey: photoKey})
	}
	return nil
}

func (r *Room) SetUserName(id ViewerID, userName string) error {
	v, err := r.viewer(id)
	if err != nil {
		return err
	}
	if v.setUserName(userName) {
		r.raise(ViewerNameChanged{Room: r.ID, Viewer: id, UserName: userName})
	}
	return nil
}

func (r *Room) SetSettings(id ViewerID, settings Settings) error {
	v, err := r.viewer(id)
	if err != nil {
		return err
	}
	if v.setSettings(settings) {
		r.raise(ViewerSettingsChanged{Room: r.ID, Viewer: id, Settings: settings.clone()})
	}
	return nil
}

// SetEpisode switches the viewer to another episode of a series. The position
// is reset and playback paused; those two updates raise no events of their own.
func (r *Room) SetEpisode(id ViewerID, season, episode int, isSync bool) error {
	if !r.IsSerial {
		return fmt.Errorf("%w: room %s", errors.ErrChangeFilmSeries, r.ID)
	}
	if season < 1 || episode < 1 {
		return fmt.Errorf("%w: season %d episode %d", errors.ErrOutOfRange, season, episode)
	}
	v, err := r.viewer(id)
	if err != nil {
		return err
	}
	seasonChanged := v.setSeason(season)
	episodeChanged := v.setEpisode(episode)
	timeLineChanged := v.setTimeLine(0)
	v.setOnPause(true)

	if seasonChanged || episodeChanged || timeLineChanged {
		r.raise(ViewerEpisodeChanged{Room: r.ID, Viewer: id, Season: season, Episode: episode, IsSync: isSync})
	}
	return nil
}

func (r *Room) Beep(initiatorID, targetID ViewerID) error {
	if err := r.checkAttention(initiatorID, targetID, func(s Settings) bool { return s.Beep }); err != nil {
		return err
	}
	r.raise(ViewerBeeped{Room: r.ID, Initiator: initiatorID, Target: targetID})
	return nil
}

func (r *Room) Scream(initiatorID, targetID ViewerID) error {
	if err := r.checkAttention(initiatorID, targetID, func(s Settings) bool { return s.Screamer }); err != nil {
		return err
	}
	r.raise(ViewerScreamed{Room: r.ID, Initiator: initiatorID, Target: targetID})
	return nil
}

func (r *Room) checkAttention(initiatorID, targetID ViewerID, enabled func(Settings) bool) error {
	if initiatorID == targetID {
		return fmt.Errorf("%w: viewer %s targets itself", errors.ErrActionNotAllowed, initiatorID)
	}
	initiator, err := r.viewer(initiatorID)
	if err != nil {
		return err
	}
	target, err := r.viewer(targetID)
	if err != nil {
		return err
	}
	if !enabled(initiator.settings) || !enabled(target.settings) {
		return fmt.Errorf("%w: disabled in settings", errors.ErrActionNotAllowed)
	}
	if !target.online {
		return fmt.Errorf("%w: viewer %s is offline", errors.ErrActionNotAllowed, targetID)
	}
	return nil
}

// SendMessage posts a chat message on behalf of an online viewer.
func (r *Room) SendMessage(id ViewerID, message Message) error {
	v, err := r.viewer(id)
	if err != nil {
		return err
	}
	if !v.online {
		return fmt.Errorf("%w: viewer %s is offline", errors.ErrActionNotAllowed, id)
	}
	if strings.TrimSpace(message.Content) == "" {
		return fmt.Errorf("%w: empty message", errors.ErrInvalidPayload)
	}
	message.SenderID = id
	message.RoomID = r.ID
	r.raise(NewMessage{Room: r.ID, Viewer: id, Message: message})
	return nil
}

// AddTag, RemoveTag and IncrementStatistic are used by derivation handlers.
// They raise no domain events.

func (r *Room) AddTag(id ViewerID, tag string) error {
	v, err := r.viewer(id)
	if err != nil {
		return err
	}
	v.addTag(tag)
	return nil
}

func (r *Room) RemoveTag(id ViewerID, tag string) error {
	v, err := r.viewer(id)
	if err != nil {
		return err
	}
	v.removeTag(tag)
	return nil
}

// SetTag adds the tag when on is true and removes it otherwise.
func (r *Room) SetTag(id ViewerID, tag string, on bool) error {
	if on {
		return r.AddTag(id, tag)
	}
	return r.RemoveTag(id, tag)
}

func (r *Room) IncrementStatistic(id ViewerID, name string) (int, error) {
	v, err := r.viewer(id)
	if err != nil {
		return 0, err
	}
	return v.incrementStatistic(name), nil
}
