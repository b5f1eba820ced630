package domain

import "time"

// DomainEvent is produced by the Room for every mutation that actually changed
// state. Events are ephemeral: they live for one unit of work.
type DomainEvent interface {
	RoomID() RoomID
	Name() string
}

// ViewerEvent is implemented by every event about a single viewer.
type ViewerEvent interface {
	DomainEvent
	ViewerID() ViewerID
}

type ViewerJoined struct {
	Room   RoomID
	Viewer ViewerID
	// ViewersBefore is the number of viewers in the room before this join.
	ViewersBefore int
}

type ViewerLeaved struct {
	Room   RoomID
	Viewer ViewerID
}

type ViewerKicked struct {
	Room   RoomID
	Viewer ViewerID
}

type ViewerOnlineChanged struct {
	Room   RoomID
	Viewer ViewerID
	Online bool
}

type ViewerPauseChanged struct {
	Room      RoomID
	Viewer    ViewerID
	Pause     bool
	IsSync    bool
	Buffering bool
}

type ViewerFullScreenChanged struct {
	Room       RoomID
	Viewer     ViewerID
	FullScreen bool
	IsSync     bool
}

type ViewerTimeLineChanged struct {
	Room     RoomID
	Viewer   ViewerID
	TimeLine time.Duration
	IsSync   bool
}

type ViewerSpeedChanged struct {
	Room   RoomID
	Viewer ViewerID
	Speed  float64
	IsSync bool
}

type ViewerEpisodeChanged struct {
	Room    RoomID
	Viewer  ViewerID
	Season  int
	Episode int
	IsSync  bool
}

type ViewerMuteChanged struct {
	Room   RoomID
	Viewer ViewerID
	Muted  bool
}

type ViewerPhotoChanged struct {
	Room     RoomID
	Viewer   ViewerID
	PhotoKey string
}

type ViewerNameChanged struct {
	Room     RoomID
	Viewer   ViewerID
	UserName string
}

type ViewerSettingsChanged struct {
	Room     RoomID
	Viewer   ViewerID
	Settings Settings
}

type ViewerBeeped struct {
	Room      RoomID
	Initiator ViewerID
	Target    ViewerID
}

type ViewerScreamed struct {
	Room      RoomID
	Initiator ViewerID
	Target    ViewerID
}

type NewMessage struct {
	Room    RoomID
	Viewer  ViewerID
	Message Message
}

func (e ViewerJoined) RoomID() RoomID            { return e.Room }
func (e ViewerLeaved) RoomID() RoomID            { return e.Room }
func (e ViewerKicked) RoomID() RoomID            { return e.Room }
func (e ViewerOnlineChanged) RoomID() RoomID     { return e.Room }
func (e ViewerPauseChanged) RoomID() RoomID      { return e.Room }
func (e ViewerFullScreenChanged) RoomID() RoomID { return e.Room }
func (e ViewerTimeLineChanged) RoomID() RoomID   { return e.Room }
func (e ViewerSpeedChanged) RoomID() RoomID      { return e.Room }
func (e ViewerEpisodeChanged) RoomID() RoomID    { return e.Room }
func (e ViewerMuteChanged) RoomID() RoomID       { return e.Room }
func (e ViewerPhotoChanged) RoomID() RoomID      { return e.Room }
func (e ViewerNameChanged) RoomID() RoomID       { return e.Room }
func (e ViewerSettingsChanged) RoomID() RoomID   { return e.Room }
func (e ViewerBeeped) RoomID() RoomID            { return e.Room }
func (e ViewerScreamed) RoomID() RoomID          { return e.Room }
func (e NewMessage) RoomID() RoomID              { return e.Room }

func (e ViewerJoined) Name() string            { return "ViewerJoined" }
func (e ViewerLeaved) Name() string            { return "ViewerLeaved" }
func (e ViewerKicked) Name() string            { return "ViewerKicked" }
func (e ViewerOnlineChanged) Name() string     { return "ViewerOnlineChanged" }
func (e ViewerPauseChanged) Name() string      { return "ViewerPauseChanged" }
func (e ViewerFullScreenChanged) Name() string { return "ViewerFullScreenChanged" }
func (e ViewerTimeLineChanged) Name() string   { return "ViewerTimeLineChanged" }
func (e ViewerSpeedChanged) Name() string      { return "ViewerSpeedChanged" }
func (e ViewerEpisodeChanged) Name() string    { return "ViewerEpisodeChanged" }
func (e ViewerMuteChanged) Name() string       { return "ViewerMuteChanged" }
func (e ViewerPhotoChanged) Name() string      { return "ViewerPhotoChanged" }
func (e ViewerNameChanged) Name() string       { return "ViewerNameChanged" }
func (e ViewerSettingsChanged) Name() string   { return "ViewerSettingsChanged" }
func (e ViewerBeeped) Name() string            { return "ViewerBeeped" }
func (e ViewerScreamed) Name() string          { return "ViewerScreamed" }
func (e NewMessage) Name() string              { return "NewMessage" }

func (e ViewerJoined) ViewerID() ViewerID            { return e.Viewer }
func (e ViewerLeaved) ViewerID() ViewerID            { return e.Viewer }
func (e ViewerKicked) ViewerID() ViewerID            { return e.Viewer }
func (e ViewerOnlineChanged) ViewerID() ViewerID     { return e.Viewer }
func (e ViewerPauseChanged) ViewerID() ViewerID      { return e.Viewer }
func (e ViewerFullScreenChanged) ViewerID() ViewerID { return e.Viewer }
func (e ViewerTimeLineChanged) ViewerID() ViewerID   { return e.Viewer }
func (e ViewerSpeedChanged) ViewerID() ViewerID      { return e.Viewer }
func (e ViewerEpisodeChanged) ViewerID() ViewerID    { return e.Viewer }
func (e ViewerMuteChanged) ViewerID() ViewerID       { return e.Viewer }
func (e ViewerPhotoChanged) ViewerID() ViewerID      { return e.Viewer }
func (e ViewerNameChanged) ViewerID() ViewerID       { return e.Viewer }
func (e ViewerSettingsChanged) ViewerID() ViewerID   { return e.Viewer }
func (e NewMessage) ViewerID() ViewerID              { return e.Viewer }
