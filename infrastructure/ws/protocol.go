// Package ws speaks the JSON envelope protocol of a viewer websocket.
package ws

import (
	"encoding/json"
	"fmt"
	"watch-party/domain"
	"watch-party/errors"
)

// Message types sent by clients.
const (
	TypePause      = "pause"
	TypeTimeLine   = "timeline"
	TypeSpeed      = "speed"
	TypeFullScreen = "fullscreen"
	TypeMute       = "mute"
	TypeEpisode    = "episode"
	TypePhoto      = "photo"
	TypeName       = "name"
	TypeSettings   = "settings"
	TypeBeep       = "beep"
	TypeScream     = "scream"
	TypeMessage    = "message"
	TypeKick       = "kick"
	TypeLeave      = "leave"
)

// Inbound is one client frame. Payload is decoded according to Type.
type Inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type pausePayload struct {
	Pause     bool  `json:"pause"`
	Ticks     int64 `json:"ticks"`
	Buffering bool  `json:"buffering"`
}

type timeLinePayload struct {
	Ticks  int64 `json:"ticks"`
	IsSync bool  `json:"isSync"`
}

type speedPayload struct {
	Speed  float64 `json:"speed"`
	IsSync bool    `json:"isSync"`
}

type fullScreenPayload struct {
	FullScreen bool `json:"fullScreen"`
}

type mutePayload struct {
	Muted bool `json:"muted"`
}

type episodePayload struct {
	Season  int  `json:"season"`
	Episode int  `json:"episode"`
	IsSync  bool `json:"isSync"`
}

type photoPayload struct {
	PhotoKey string `json:"photoKey"`
}

type namePayload struct {
	UserName string `json:"userName"`
}

type targetPayload struct {
	Target string `json:"target"`
}

type messagePayload struct {
	Content string `json:"content"`
}

// ToCommand decodes a frame into the room command issued by viewerID.
// Chat messages are not commands, use ToMessage.
func ToCommand(roomID domain.RoomID, viewerID domain.ViewerID, in Inbound) (domain.Command, error) {
	switch in.Type {
	case TypePause:
		var p pausePayload
		if err := decode(in, &p); err != nil {
			return nil, err
		}
		timeLine, err := domain.ParseTicks(p.Ticks)
		if err != nil {
			return nil, err
		}
		return domain.SetPauseCommand{Room: roomID, Viewer: viewerID, Pause: p.Pause,
			TimeLine: timeLine, Buffering: p.Buffering}, nil
	case TypeTimeLine:
		var p timeLinePayload
		if err := decode(in, &p); err != nil {
			return nil, err
		}
		timeLine, err := domain.ParseTicks(p.Ticks)
		if err != nil {
			return nil, err
		}
		return domain.SetTimeLineCommand{Room: roomID, Viewer: viewerID, TimeLine: timeLine, IsSync: p.IsSync}, nil
	case TypeSpeed:
		var p speedPayload
		if err := decode(in, &p); err != nil {
			return nil, err
		}
		return domain.SetSpeedCommand{Room: roomID, Viewer: viewerID, Speed: p.Speed, IsSync: p.IsSync}, nil
	case TypeFullScreen:
		var p fullScreenPayload
		if err := decode(in, &p); err != nil {
			return nil, err
		}
		return domain.SetFullScreenCommand{Room: roomID, Viewer: viewerID, FullScreen: p.FullScreen}, nil
	case TypeMute:
		var p mutePayload
		if err := decode(in, &p); err != nil {
			return nil, err
		}
		return domain.SetMutedCommand{Room: roomID, Viewer: viewerID, Muted: p.Muted}, nil
	case TypeEpisode:
		var p episodePayload
		if err := decode(in, &p); err != nil {
			return nil, err
		}
		return domain.SetEpisodeCommand{Room: roomID, Viewer: viewerID, Season: p.Season, Episode: p.Episode, IsSync: p.IsSync}, nil
	case TypePhoto:
		var p photoPayload
		if err := decode(in, &p); err != nil {
			return nil, err
		}
		return domain.SetPhotoCommand{Room: roomID, Viewer: viewerID, PhotoKey: p.PhotoKey}, nil
	case TypeName:
		var p namePayload
		if err := decode(in, &p); err != nil {
			return nil, err
		}
		return domain.SetUserNameCommand{Room: roomID, Viewer: viewerID, UserName: p.UserName}, nil
	case TypeSettings:
		var p domain.Settings
		if err := decode(in, &p); err != nil {
			return nil, err
		}
		return domain.SetSettingsCommand{Room: roomID, Viewer: viewerID, Settings: p}, nil
	case TypeBeep:
		var p targetPayload
		if err := decode(in, &p); err != nil {
			return nil, err
		}
		return domain.BeepCommand{Room: roomID, Initiator: viewerID, Target: domain.ViewerID(p.Target)}, nil
	case TypeScream:
		var p targetPayload
		if err := decode(in, &p); err != nil {
			return nil, err
		}
		return domain.ScreamCommand{Room: roomID, Initiator: viewerID, Target: domain.ViewerID(p.Target)}, nil
	case TypeKick:
		var p targetPayload
		if err := decode(in, &p); err != nil {
			return nil, err
		}
		return domain.KickCommand{Room: roomID, Initiator: viewerID, Target: domain.ViewerID(p.Target)}, nil
	case TypeLeave:
		return domain.LeaveCommand{Room: roomID, Viewer: viewerID}, nil
	default:
		return nil, fmt.Errorf("%w: unknown message type %q", errors.ErrInvalidPayload, in.Type)
	}
}

// ToMessage decodes the content of a chat frame.
func ToMessage(in Inbound) (string, error) {
	var p messagePayload
	if err := decode(in, &p); err != nil {
		return "", err
	}
	return p.Content, nil
}

func decode(in Inbound, v any) error {
	if len(in.Payload) == 0 {
		return fmt.Errorf("%w: missing payload for %q", errors.ErrInvalidPayload, in.Type)
	}
	if err := json.Unmarshal(in.Payload, v); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	return nil
}
