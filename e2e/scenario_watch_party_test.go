package e2e

import (
	"net/http"
	"testing"
	"time"
	"watch-party/domain"
	"watch-party/domain/outbound"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type testWatchPartySuite struct {
	BaseSuite
}

func TestWatchPartySuite(t *testing.T) {
	suite.Run(t, &testWatchPartySuite{})
}

func (s *testWatchPartySuite) TestOwnerDrivesPlayback() {
	roomID := uuid.NewString()
	owner := s.Token("owner-"+roomID, "Owner")
	guest := s.Token("guest-"+roomID, "Guest")

	// --- STEP 1: ROOM CREATION ---
	s.Step("Owner creates the room")
	var created domain.RoomSnapshot
	status := s.Do(http.MethodPost, "/rooms", owner, map[string]any{"id": roomID, "filmId": "film-42"}, &created)
	s.Require().Equal(http.StatusCreated, status)
	s.Require().Equal("owner-"+roomID, created.OwnerID)

	// --- STEP 2: BOTH VIEWERS CONNECT ---
	s.Step("Owner and guest connect")
	ownerConn := s.Dial(roomID, owner)
	s.Await(ownerConn, "JoinEvent", nil)
	guestConn := s.Dial(roomID, guest)
	var joined outbound.JoinEvent
	s.Await(guestConn, "JoinEvent", &joined)
	s.Await(ownerConn, "JoinEvent", nil)

	// --- STEP 3: OWNER PAUSES ---
	s.Step("Owner pauses at one minute")
	s.Send(ownerConn, "pause", map[string]any{"pause": true, "ticks": domain.ToTicks(time.Minute)})

	var pause outbound.PauseEvent
	s.Await(guestConn, "PauseEvent", &pause)
	s.Require().True(pause.Pause)
	var timeLine outbound.TimeLineEvent
	s.Await(guestConn, "TimeLineEvent", &timeLine)
	s.Require().Equal(domain.ToTicks(time.Minute), timeLine.Ticks)

	// --- STEP 4: CHAT ---
	s.Step("Guest writes in the chat")
	s.Send(guestConn, "message", map[string]any{"content": "ready when you are"})
	var message outbound.MessageEvent
	s.Await(ownerConn, "MessageEvent", &message)
	s.Require().Equal("ready when you are", message.Content)

	// --- STEP 5: PERSISTED STATE ---
	s.Step("Owner state is persisted")
	s.Eventually(func() bool {
		var room domain.RoomSnapshot
		if s.Do(http.MethodGet, "/rooms/"+roomID, "", nil, &room) != http.StatusOK {
			return false
		}
		for _, v := range room.Viewers {
			if v.ID == "owner-"+roomID {
				return v.OnPause && v.TimeLine == domain.ToTicks(time.Minute)
			}
		}
		return false
	}, readTimeout, 100*time.Millisecond)

	var history struct {
		Messages []outbound.MessageEvent `json:"messages"`
	}
	s.Require().Equal(http.StatusOK, s.Do(http.MethodGet, "/rooms/"+roomID+"/messages", "", nil, &history))
	s.Require().NotEmpty(history.Messages)
}
