package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
	"watch-party/auth"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
)

const readTimeout = 5 * time.Second

type BaseSuite struct {
	suite.Suite
	Config    Config
	tokenizer *auth.Tokenizer
	client    *http.Client
}

// Received is an outbound envelope with its payload left raw.
type Received struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.ServerAddr == "" {
		s.T().Skip("SERVER_ADDR is not set")
	}
	s.tokenizer = auth.NewTokenizer(s.Config.JWTSecret)
	s.client = &http.Client{Timeout: 10 * time.Second}
}

// Step prints a colorized header for a scenario step
func (s *BaseSuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// Token mints a viewer token signed with the server secret
func (s *BaseSuite) Token(userID, userName string) string {
	token, err := s.tokenizer.GenerateToken(userID, userName, "", time.Hour)
	s.Require().NoError(err)
	return token
}

// Do sends a JSON request and decodes the response into out when given
func (s *BaseSuite) Do(method, path, token string, body, out any) int {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		s.Require().NoError(err)
	}
	request, err := http.NewRequest(method, "http://"+s.Config.ServerAddr+path, bytes.NewReader(payload))
	s.Require().NoError(err)
	request.Header.Set("Content-Type", "application/json")
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	response, err := s.client.Do(request)
	s.Require().NoError(err)
	defer response.Body.Close()

	var raw json.RawMessage
	if err := json.NewDecoder(response.Body).Decode(&raw); err == nil && out != nil {
		s.Require().NoError(json.Unmarshal(raw, out))
	}
	s.T().Logf("HTTP %s %s [%d] in %v", method, path, response.StatusCode, time.Since(start))
	if s.Config.DebugJSON {
		s.T().Logf("\nREQUEST:\n%s\nRESPONSE:\n%s", payload, raw)
	}
	return response.StatusCode
}

// Dial opens a websocket on a room as the bearer of token
func (s *BaseSuite) Dial(roomID, token string) *websocket.Conn {
	u := url.URL{
		Scheme:   "ws",
		Host:     s.Config.ServerAddr,
		Path:     "/rooms/" + roomID + "/ws",
		RawQuery: url.Values{"token": {token}}.Encode(),
	}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	s.Require().NoError(err, "Failed to open websocket on room "+roomID)
	s.T().Cleanup(func() { _ = conn.Close() })
	return conn
}

// Send writes an inbound command on the socket
func (s *BaseSuite) Send(conn *websocket.Conn, kind string, payload any) {
	s.Require().NoError(conn.WriteJSON(map[string]any{"type": kind, "payload": payload}))
}

// Await reads envelopes until one of the expected type arrives
func (s *BaseSuite) Await(conn *websocket.Conn, kind string, out any) {
	deadline := time.Now().Add(readTimeout)
	s.Require().NoError(conn.SetReadDeadline(deadline))
	for {
		var received Received
		s.Require().NoError(conn.ReadJSON(&received), "No %s before deadline", kind)
		if s.Config.DebugJSON {
			s.T().Logf("WS %s %s", received.Type, received.Payload)
		}
		if received.Type != kind {
			continue
		}
		if out != nil {
			s.Require().NoError(json.Unmarshal(received.Payload, out))
		}
		return
	}
}
