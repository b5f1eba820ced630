package domain

import (
	"errors"
	"fmt"
	"time"

	domainerrors "watch-party/errors"
)

// Command is one inbound intent targeting a single room. Apply runs the
// matching Room mutator; it must not perform I/O.
type Command interface {
	RoomID() RoomID
	Apply(room *Room) error
}

// ConnectCommand joins the viewer, or marks it back online when it is already
// part of the room.
type ConnectCommand struct {
	Room     RoomID   `validate:"required"`
	Viewer   ViewerID `validate:"required"`
	UserName string   `validate:"required,max=64"`
	PhotoKey string   `validate:"max=256"`
}

type JoinCommand struct {
	Room     RoomID   `validate:"required"`
	Viewer   ViewerID `validate:"required"`
	UserName string   `validate:"required,max=64"`
	PhotoKey string   `validate:"max=256"`
}

type LeaveCommand struct {
	Room   RoomID   `validate:"required"`
	Viewer ViewerID `validate:"required"`
}

// KickCommand removes Target from the room. Only the owner may kick, and not
// itself.
type KickCommand struct {
	Room      RoomID   `validate:"required"`
	Initiator ViewerID `validate:"required"`
	Target    ViewerID `validate:"required"`
}

type SetOnlineCommand struct {
	Room   RoomID   `validate:"required"`
	Viewer ViewerID `validate:"required"`
	Online bool
}

type SetPauseCommand struct {
	Room      RoomID        `validate:"required"`
	Viewer    ViewerID      `validate:"required"`
	Pause     bool
	TimeLine  time.Duration `validate:"min=0"`
	Buffering bool
}

type SetTimeLineCommand struct {
	Room     RoomID        `validate:"required"`
	Viewer   ViewerID      `validate:"required"`
	TimeLine time.Duration `validate:"min=0"`
	IsSync   bool
}

type SetSpeedCommand struct {
	Room   RoomID   `validate:"required"`
	Viewer ViewerID `validate:"required"`
	Speed  float64  `validate:"gt=0,lte=16"`
	IsSync bool
}

type SetFullScreenCommand struct {
	Room       RoomID   `validate:"required"`
	Viewer     ViewerID `validate:"required"`
	FullScreen bool
}

type SetMutedCommand struct {
	Room   RoomID   `validate:"required"`
	Viewer ViewerID `validate:"required"`
	Muted  bool
}

type SetEpisodeCommand struct {
	Room    RoomID   `validate:"required"`
	Viewer  ViewerID `validate:"required"`
	Season  int
	Episode int
	IsSync  bool
}

type SetPhotoCommand struct {
	Room     RoomID   `validate:"required"`
	Viewer   ViewerID `validate:"required"`
	PhotoKey string   `validate:"max=256"`
}

type SetUserNameCommand struct {
	Room     RoomID   `validate:"required"`
	Viewer   ViewerID `validate:"required"`
	UserName string   `validate:"required,max=64"`
}

type SetSettingsCommand struct {
	Room     RoomID   `validate:"required"`
	Viewer   ViewerID `validate:"required"`
	Settings Settings
}

type BeepCommand struct {
	Room      RoomID   `validate:"required"`
	Initiator ViewerID `validate:"required"`
	Target    ViewerID `validate:"required"`
}

type ScreamCommand struct {
	Room      RoomID   `validate:"required"`
	Initiator ViewerID `validate:"required"`
	Target    ViewerID `validate:"required"`
}

type PostMessageCommand struct {
	Room    RoomID   `validate:"required"`
	Viewer  ViewerID `validate:"required"`
	Message Message
}

func (c ConnectCommand) RoomID() RoomID       { return c.Room }
func (c JoinCommand) RoomID() RoomID          { return c.Room }
func (c LeaveCommand) RoomID() RoomID         { return c.Room }
func (c KickCommand) RoomID() RoomID          { return c.Room }
func (c SetOnlineCommand) RoomID() RoomID     { return c.Room }
func (c SetPauseCommand) RoomID() RoomID      { return c.Room }
func (c SetTimeLineCommand) RoomID() RoomID   { return c.Room }
func (c SetSpeedCommand) RoomID() RoomID      { return c.Room }
func (c SetFullScreenCommand) RoomID() RoomID { return c.Room }
func (c SetMutedCommand) RoomID() RoomID      { return c.Room }
func (c SetEpisodeCommand) RoomID() RoomID    { return c.Room }
func (c SetPhotoCommand) RoomID() RoomID      { return c.Room }
func (c SetUserNameCommand) RoomID() RoomID   { return c.Room }
func (c SetSettingsCommand) RoomID() RoomID   { return c.Room }
func (c BeepCommand) RoomID() RoomID          { return c.Room }
func (c ScreamCommand) RoomID() RoomID        { return c.Room }
func (c PostMessageCommand) RoomID() RoomID   { return c.Room }

func (c ConnectCommand) Apply(r *Room) error {
	err := r.Join(NewViewer(c.Viewer, c.UserName, c.PhotoKey))
	if errors.Is(err, domainerrors.ErrViewerAlreadyExists) {
		return r.SetOnline(c.Viewer, true)
	}
	return err
}

func (c JoinCommand) Apply(r *Room) error {
	return r.Join(NewViewer(c.Viewer, c.UserName, c.PhotoKey))
}

func (c LeaveCommand) Apply(r *Room) error {
	return r.Leave(c.Viewer)
}

func (c KickCommand) Apply(r *Room) error {
	if !r.IsOwner(c.Initiator) || c.Initiator == c.Target {
		return fmt.Errorf("%w: %s cannot kick %s", domainerrors.ErrActionNotAllowed, c.Initiator, c.Target)
	}
	return r.Kick(c.Target)
}

func (c SetOnlineCommand) Apply(r *Room) error {
	return r.SetOnline(c.Viewer, c.Online)
}

func (c SetPauseCommand) Apply(r *Room) error {
	return r.SetPause(c.Viewer, c.Pause, c.TimeLine, c.Buffering)
}

func (c SetTimeLineCommand) Apply(r *Room) error {
	return r.SetTimeLine(c.Viewer, c.TimeLine, c.IsSync)
}

func (c SetSpeedCommand) Apply(r *Room) error {
	return r.SetSpeed(c.Viewer, c.Speed, c.IsSync)
}

func (c SetFullScreenCommand) Apply(r *Room) error {
	return r.SetFullScreen(c.Viewer, c.FullScreen, false)
}

func (c SetMutedCommand) Apply(r *Room) error {
	return r.SetMuted(c.Viewer, c.Muted)
}

func (c SetEpisodeCommand) Apply(r *Room) error {
	return r.SetEpisode(c.Viewer, c.Season, c.Episode, c.IsSync)
}

func (c SetPhotoCommand) Apply(r *Room) error {
	return r.SetPhoto(c.Viewer, c.PhotoKey)
}

func (c SetUserNameCommand) Apply(r *Room) error {
	return r.SetUserName(c.Viewer, c.UserName)
}

func (c SetSettingsCommand) Apply(r *Room) error {
	return r.SetSettings(c.Viewer, c.Settings)
}

func (c BeepCommand) Apply(r *Room) error {
	return r.Beep(c.Initiator, c.Target)
}

func (c ScreamCommand) Apply(r *Room) error {
	return r.Scream(c.Initiator, c.Target)
}

func (c PostMessageCommand) Apply(r *Room) error {
	return r.SendMessage(c.Viewer, c.Message)
}
