package auth

import (
	"strings"
	"testing"
	"time"
	"watch-party/domain"
	"watch-party/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestToken_GenerateAndValidate(t *testing.T) {
	req := require.New(t)
	tokenizer := NewTokenizer("secret")

	token, err := tokenizer.GenerateToken("alice", "Alice", "alice.png", time.Hour)
	req.NoError(err)

	claims, err := tokenizer.ValidateToken(token)
	req.NoError(err)
	req.Equal("alice", claims.UserID)
	req.Equal("Alice", claims.UserName)
	req.Equal("alice.png", claims.PhotoKey)
}

func TestToken_Invalid(t *testing.T) {
	tokenizer := NewTokenizer("secret")
	expired, err := tokenizer.GenerateToken("alice", "Alice", "", -time.Minute)
	require.NoError(t, err)
	otherSecret, err := NewTokenizer("other").GenerateToken("alice", "Alice", "", time.Hour)
	require.NoError(t, err)
	noName, err := tokenizer.GenerateToken("alice", "", "", time.Hour)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "alice", UserName: "Alice",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer}}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"Garbage", "not-a-token"},
		{"Expired", expired},
		{"Wrong secret", otherSecret},
		{"Missing user name", noName},
		{"Unsigned", none},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokenizer.ValidateToken(tt.token)
			require.ErrorIs(t, err, errors.ErrInvalidToken)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		command any
		wantErr bool
	}{
		{"Valid join", domain.JoinCommand{Room: "room", Viewer: "alice", UserName: "Alice"}, false},
		{"Missing room", domain.JoinCommand{Viewer: "alice", UserName: "Alice"}, true},
		{"Name too long", domain.SetUserNameCommand{Room: "room", Viewer: "alice", UserName: strings.Repeat("a", 65)}, true},
		{"Null speed", domain.SetSpeedCommand{Room: "room", Viewer: "alice", Speed: 0}, true},
		{"Valid speed", domain.SetSpeedCommand{Room: "room", Viewer: "alice", Speed: 1.5}, false},
		{"Negative timeline", domain.SetTimeLineCommand{Room: "room", Viewer: "alice", TimeLine: -time.Second}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.command)
			if tt.wantErr {
				require.ErrorIs(t, err, errors.ErrInvalidPayload)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
