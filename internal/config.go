package internal

import (
	"fmt"
	"time"
)

// Config is read from the environment, a .env file being loaded first when
// present.
type Config struct {
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=8080"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	BufferSize           int           `env:"BUFFER_SIZE,default=1024"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=200ms"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	HealthInterval       time.Duration `env:"HEALTH_INTERVAL,default=1m"`
	JWTSecret            string        `env:"JWT_SECRET,required=true"`
	LimitMessages        *int          `env:"LIMIT_MESSAGES"`
	DeleteEmptyRooms     bool          `env:"DELETE_EMPTY_ROOMS,default=true"`
	CharReplacement      string        `env:"CHARACTER_REPLACEMENT,default=*"`
	KeyMutexSize         uint16        `env:"KEY_MUTEX_SIZE,default=256"`
}

func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
