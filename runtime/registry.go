package runtime

import (
	"sync"
	"watch-party/contract"
	"watch-party/domain"
)

// Registry knows which connections listen to which room.
// A connection listens to a single room at a time.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]map[string]contract.EventSink
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[domain.RoomID]map[string]contract.EventSink)}
}

// GetSinksForRoom returns the sinks of every connection of the room but
// excludeConnectionID. Nil when nobody listens.
func (r *Registry) GetSinksForRoom(roomID domain.RoomID, excludeConnectionID string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	connections := r.rooms[roomID]
	if len(connections) == 0 {
		return nil
	}
	sinks := make([]contract.EventSink, 0, len(connections))
	for connectionID, sink := range connections {
		if connectionID != excludeConnectionID {
			sinks = append(sinks, sink)
		}
	}
	return sinks
}

// Subscribe binds the sink of a connection to a room. Subscribing again
// replaces the previous sink.
func (r *Registry) Subscribe(connectionID string, roomID domain.RoomID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	connections, ok := r.rooms[roomID]
	if !ok {
		connections = make(map[string]contract.EventSink)
		r.rooms[roomID] = connections
	}
	connections[connectionID] = sink
}

// Unsubscribe forgets a connection. A room without connections is forgotten
// too.
func (r *Registry) Unsubscribe(connectionID string, roomID domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	connections, ok := r.rooms[roomID]
	if !ok {
		return
	}
	delete(connections, connectionID)
	if len(connections) == 0 {
		delete(r.rooms, roomID)
	}
}

func (r *Registry) Connections(roomID domain.RoomID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomID])
}
