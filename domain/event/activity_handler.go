package event

import "watch-party/domain"

const (
	chatterThreshold          = 50
	chatterOverdriveThreshold = 100
	episodeHopperThreshold    = 30
	seekerThreshold           = 20
	leaverThreshold           = 5
)

// ChatterHandler counts chat messages per viewer.
type ChatterHandler struct{}

func NewChatterHandler() *ChatterHandler { return &ChatterHandler{} }

func (h *ChatterHandler) Handle(room *domain.Room, e domain.DomainEvent) error {
	msg, ok := e.(domain.NewMessage)
	if !ok {
		return nil
	}
	count, err := room.IncrementStatistic(msg.Viewer, StatMessagesCount)
	if err != nil {
		return err
	}
	if count > chatterThreshold {
		if err = room.AddTag(msg.Viewer, TagChatter); err != nil {
			return err
		}
	}
	if count > chatterOverdriveThreshold {
		return room.AddTag(msg.Viewer, TagChatterOverdrive)
	}
	return nil
}

// EpisodeHopperHandler counts episode switches made by the viewer itself.
type EpisodeHopperHandler struct{}

func NewEpisodeHopperHandler() *EpisodeHopperHandler { return &EpisodeHopperHandler{} }

func (h *EpisodeHopperHandler) Handle(room *domain.Room, e domain.DomainEvent) error {
	changed, ok := e.(domain.ViewerEpisodeChanged)
	if !ok || changed.IsSync {
		return nil
	}
	return countAndTag(room, changed.Viewer, StatEpisodeChangeCount, episodeHopperThreshold, TagEpisodeHopper)
}

// SeekerHandler counts manual seeks.
type SeekerHandler struct{}

func NewSeekerHandler() *SeekerHandler { return &SeekerHandler{} }

func (h *SeekerHandler) Handle(room *domain.Room, e domain.DomainEvent) error {
	changed, ok := e.(domain.ViewerTimeLineChanged)
	if !ok || changed.IsSync {
		return nil
	}
	return countAndTag(room, changed.Viewer, StatSeekCount, seekerThreshold, TagSeeker)
}

// LeaverHandler counts disconnections.
type LeaverHandler struct{}

func NewLeaverHandler() *LeaverHandler { return &LeaverHandler{} }

func (h *LeaverHandler) Handle(room *domain.Room, e domain.DomainEvent) error {
	changed, ok := e.(domain.ViewerOnlineChanged)
	if !ok || changed.Online {
		return nil
	}
	return countAndTag(room, changed.Viewer, StatDisconnectCount, leaverThreshold, TagLeaver)
}
