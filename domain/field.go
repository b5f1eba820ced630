package domain

import "math/bits"

// Field identifies one mutable Viewer property. A Field value is a bitmask,
// so a set of changed properties is a single Field.
type Field uint16

const (
	FieldOnline Field = 1 << iota
	FieldOnPause
	FieldTimeLine
	FieldSpeed
	FieldFullScreen
	FieldMuted
	FieldSeason
	FieldEpisode
	FieldPhoto
	FieldUserName
	FieldSettings
	FieldTags
)

// fieldNames holds the lowerCamelCase wire names, ordered by bit position.
var fieldNames = [...]string{
	"online",
	"onPause",
	"timeLine",
	"speed",
	"fullScreen",
	"muted",
	"season",
	"episode",
	"photoKey",
	"userName",
	"settings",
	"tags",
}

func (f Field) Has(other Field) bool {
	return f&other == other && other != 0
}

func (f Field) IsEmpty() bool {
	return f == 0
}

// Names returns the wire names of every field in the set, in declaration order.
func (f Field) Names() []string {
	if f == 0 {
		return nil
	}
	names := make([]string, 0, bits.OnesCount16(uint16(f)))
	for i, name := range fieldNames {
		if f&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	return names
}
