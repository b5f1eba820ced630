package event

import (
	"fmt"
	"log/slog"

	"watch-party/domain"
)

// Handler Each kind of event has his own handler
// Based on the Chain of responsibility pattern
//
// Handlers run before the room is persisted, so the tags and statistics they
// write are saved in the same unit of work. A handler ignores every event it is
// not interested in.
type Handler interface {
	Handle(room *domain.Room, e domain.DomainEvent) error
}

const (
	TagBeeper           = "Beeper"
	TagBeepVictim       = "BeepVictim"
	TagScreamer         = "Screamer"
	TagScreamed         = "Screamed"
	TagChatter          = "Chatter"
	TagChatterOverdrive = "ChatterOverdrive"
	TagEpisodeHopper    = "EpisodeHopper"
	TagSeeker           = "Seeker"
	TagPauseMaster      = "PauseMaster"
	TagLeaver           = "Leaver"
	TagHost             = "Host"
	TagFirstIn          = "FirstIn"
	TagMuted            = "Muted"
	TagNoAvatar         = "NoAvatar"
	TagSlowWatcher      = "SlowWatcher"
	TagFullscreener     = "Fullscreener"
	TagForeignName      = "ForeignName"
	TagOffSyncLeader    = "OffSyncLeader"
	TagOnPause          = "OnPause"
	TagTurtle           = "Turtle"
	TagWrongEpisode     = "WrongEpisode"
)

const (
	StatBeepCount          = "BeepCount"
	StatBeepedCount        = "BeepedCount"
	StatScreamCount        = "ScreamCount"
	StatScreamedCount      = "ScreamedCount"
	StatMessagesCount      = "MessagesCount"
	StatEpisodeChangeCount = "EpisodeChangeCount"
	StatSeekCount          = "SeekCount"
	StatPauseCount         = "PauseCount"
	StatDisconnectCount    = "DisconnectCount"
)

// Pipeline runs every handler for every event, in the order the events were
// raised.
type Pipeline struct {
	log      *slog.Logger
	handlers []Handler
}

func NewPipeline(log *slog.Logger, handlers ...Handler) *Pipeline {
	return &Pipeline{log: log, handlers: handlers}
}

// NewDefaultPipeline wires every tag and statistic rule.
func NewDefaultPipeline(log *slog.Logger) *Pipeline {
	return NewPipeline(log,
		NewBeepHandler(),
		NewScreamHandler(),
		NewChatterHandler(),
		NewEpisodeHopperHandler(),
		NewWrongEpisodeHandler(),
		NewSeekerHandler(),
		NewPauseMasterHandler(),
		NewPauseSyncHandler(),
		NewLeaverHandler(),
		NewHostHandler(),
		NewFirstInHandler(),
		NewMutedHandler(),
		NewNoAvatarHandler(),
		NewSlowWatcherHandler(),
		NewFullscreenerHandler(),
		NewForeignNameHandler(),
		NewTurtleHandler(),
	)
}

// Dispatch derives tags and statistics from events. Events about a viewer who
// already left the room are skipped.
func (p *Pipeline) Dispatch(room *domain.Room, events []domain.DomainEvent) error {
	for _, e := range events {
		if ve, ok := e.(domain.ViewerEvent); ok && !inRoom(room, ve.ViewerID()) {
			continue
		}
		for _, h := range p.handlers {
			if err := h.Handle(room, e); err != nil {
				return fmt.Errorf("%T on %s: %w", h, e.Name(), err)
			}
		}
		p.log.Debug("event derived", "room_id", room.ID, "event", e.Name())
	}
	return nil
}

// countAndTag increments a statistic and adds the tag once the counter goes
// strictly above threshold.
func countAndTag(room *domain.Room, id domain.ViewerID, statistic string, threshold int, tag string) error {
	count, err := room.IncrementStatistic(id, statistic)
	if err != nil {
		return err
	}
	if count > threshold {
		return room.AddTag(id, tag)
	}
	return nil
}

func inRoom(room *domain.Room, ids ...domain.ViewerID) bool {
	for _, id := range ids {
		if _, ok := room.Viewer(id); !ok {
			return false
		}
	}
	return true
}
