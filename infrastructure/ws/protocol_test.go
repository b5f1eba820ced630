package ws

import (
	"encoding/json"
	"testing"
	"time"
	"watch-party/domain"
	"watch-party/errors"

	"github.com/stretchr/testify/require"
)

func inbound(t *testing.T, typ string, payload any) Inbound {
	t.Helper()
	if payload == nil {
		return Inbound{Type: typ}
	}
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return Inbound{Type: typ, Payload: data}
}

func TestToCommand(t *testing.T) {
	const roomID, viewerID = domain.RoomID("room-1"), domain.ViewerID("alice")
	tests := []struct {
		name string
		in   Inbound
		want domain.Command
	}{
		{"Pause", inbound(t, TypePause, map[string]any{"pause": true, "ticks": 600_000_000, "buffering": true}),
			domain.SetPauseCommand{Room: roomID, Viewer: viewerID, Pause: true, TimeLine: time.Minute, Buffering: true}},
		{"Timeline", inbound(t, TypeTimeLine, map[string]any{"ticks": 10_000_000, "isSync": true}),
			domain.SetTimeLineCommand{Room: roomID, Viewer: viewerID, TimeLine: time.Second, IsSync: true}},
		{"Speed", inbound(t, TypeSpeed, map[string]any{"speed": 1.25}),
			domain.SetSpeedCommand{Room: roomID, Viewer: viewerID, Speed: 1.25}},
		{"Fullscreen", inbound(t, TypeFullScreen, map[string]any{"fullScreen": true}),
			domain.SetFullScreenCommand{Room: roomID, Viewer: viewerID, FullScreen: true}},
		{"Mute", inbound(t, TypeMute, map[string]any{"muted": true}),
			domain.SetMutedCommand{Room: roomID, Viewer: viewerID, Muted: true}},
		{"Episode", inbound(t, TypeEpisode, map[string]any{"season": 2, "episode": 3}),
			domain.SetEpisodeCommand{Room: roomID, Viewer: viewerID, Season: 2, Episode: 3}},
		{"Photo", inbound(t, TypePhoto, map[string]any{"photoKey": "a.png"}),
			domain.SetPhotoCommand{Room: roomID, Viewer: viewerID, PhotoKey: "a.png"}},
		{"Name", inbound(t, TypeName, map[string]any{"userName": "Alicia"}),
			domain.SetUserNameCommand{Room: roomID, Viewer: viewerID, UserName: "Alicia"}},
		{"Settings", inbound(t, TypeSettings, map[string]any{"beep": false, "screamer": true, "extra": map[string]string{"theme": "dark"}}),
			domain.SetSettingsCommand{Room: roomID, Viewer: viewerID, Settings: domain.Settings{Screamer: true, Extra: map[string]string{"theme": "dark"}}}},
		{"Beep", inbound(t, TypeBeep, map[string]any{"target": "bob"}),
			domain.BeepCommand{Room: roomID, Initiator: viewerID, Target: "bob"}},
		{"Scream", inbound(t, TypeScream, map[string]any{"target": "bob"}),
			domain.ScreamCommand{Room: roomID, Initiator: viewerID, Target: "bob"}},
		{"Kick", inbound(t, TypeKick, map[string]any{"target": "bob"}),
			domain.KickCommand{Room: roomID, Initiator: viewerID, Target: "bob"}},
		{"Leave", inbound(t, TypeLeave, nil),
			domain.LeaveCommand{Room: roomID, Viewer: viewerID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToCommand(roomID, viewerID, tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestToCommand_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   Inbound
	}{
		{"Unknown type", inbound(t, "rewind", map[string]any{})},
		{"Missing payload", inbound(t, TypePause, nil)},
		{"Wrong payload", Inbound{Type: TypeSpeed, Payload: json.RawMessage(`{"speed":"fast"}`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToCommand("room-1", "alice", tt.in)
			require.ErrorIs(t, err, errors.ErrInvalidPayload)
		})
	}
}

func TestToCommand_TicksOverflow(t *testing.T) {
	// Ticks past what a duration holds would wrap to a valid looking position
	for _, typ := range []string{TypePause, TypeTimeLine} {
		t.Run(typ, func(t *testing.T) {
			in := Inbound{Type: typ, Payload: json.RawMessage(`{"pause":true,"ticks":92233720368547759}`)}
			_, err := ToCommand("room-1", "alice", in)
			require.ErrorIs(t, err, errors.ErrOutOfRange)
		})
	}
}

func TestToMessage(t *testing.T) {
	req := require.New(t)

	content, err := ToMessage(inbound(t, TypeMessage, map[string]any{"content": "hello"}))

	req.NoError(err)
	req.Equal("hello", content)
}
