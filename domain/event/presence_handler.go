package event

import "watch-party/domain"

// HostHandler tags the owner every time it joins.
type HostHandler struct{}

func NewHostHandler() *HostHandler { return &HostHandler{} }

func (h *HostHandler) Handle(room *domain.Room, e domain.DomainEvent) error {
	joined, ok := e.(domain.ViewerJoined)
	if !ok || !room.IsOwner(joined.Viewer) {
		return nil
	}
	return room.AddTag(joined.Viewer, TagHost)
}

// FirstInHandler tags the viewer who joined a room holding exactly one viewer.
type FirstInHandler struct{}

func NewFirstInHandler() *FirstInHandler { return &FirstInHandler{} }

func (h *FirstInHandler) Handle(room *domain.Room, e domain.DomainEvent) error {
	joined, ok := e.(domain.ViewerJoined)
	if !ok || joined.ViewersBefore != 1 {
		return nil
	}
	return room.AddTag(joined.Viewer, TagFirstIn)
}
