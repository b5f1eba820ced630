package event

import "watch-party/domain"

const (
	beeperThreshold     = 10
	beepVictimThreshold = 20
	screamerThreshold   = 5
	screamedThreshold   = 10
)

// BeepHandler handles beeps between two viewers.
// It counts beeps sent by the initiator and received by the target, and flags
// viewers who abuse the signal or are harassed with it.
type BeepHandler struct{}

func NewBeepHandler() *BeepHandler { return &BeepHandler{} }

func (h *BeepHandler) Handle(room *domain.Room, e domain.DomainEvent) error {
	beeped, ok := e.(domain.ViewerBeeped)
	if !ok {
		return nil
	}
	if !inRoom(room, beeped.Initiator, beeped.Target) {
		return nil
	}
	if err := countAndTag(room, beeped.Initiator, StatBeepCount, beeperThreshold, TagBeeper); err != nil {
		return err
	}
	return countAndTag(room, beeped.Target, StatBeepedCount, beepVictimThreshold, TagBeepVictim)
}

// ScreamHandler is the screamer counterpart of BeepHandler.
type ScreamHandler struct{}

func NewScreamHandler() *ScreamHandler { return &ScreamHandler{} }

func (h *ScreamHandler) Handle(room *domain.Room, e domain.DomainEvent) error {
	screamed, ok := e.(domain.ViewerScreamed)
	if !ok || !inRoom(room, screamed.Initiator, screamed.Target) {
		return nil
	}
	if err := countAndTag(room, screamed.Initiator, StatScreamCount, screamerThreshold, TagScreamer); err != nil {
		return err
	}
	return countAndTag(room, screamed.Target, StatScreamedCount, screamedThreshold, TagScreamed)
}
