package domain

import (
	"math"
	"testing"
	"time"
	"watch-party/errors"

	"github.com/stretchr/testify/require"
)

func TestRoom_SnapshotRoundTrip(t *testing.T) {
	req := require.New(t)
	room := newSerialRoom(t)
	req.NoError(room.SetPause(guestID, false, 95*time.Second+300*time.Millisecond, false))
	req.NoError(room.SetSpeed(guestID, 1.25, false))
	req.NoError(room.SetEpisode(ownerID, 3, 7, false))
	req.NoError(room.SetSettings(ownerID, Settings{Beep: true, Extra: map[string]string{"lang": "fr"}}))
	req.NoError(room.AddTag(ownerID, "Host"))
	_, err := room.IncrementStatistic(guestID, "SeekCount")
	req.NoError(err)
	room.SetVersion(4)

	snapshot := room.Snapshot()
	restored := FromSnapshot(snapshot)

	req.Equal(room.ID, restored.ID)
	req.Equal(room.FilmID, restored.FilmID)
	req.Equal(room.IsSerial, restored.IsSerial)
	req.Equal(room.OwnerID(), restored.OwnerID())
	req.Equal(uint64(4), restored.Version())
	req.Equal(snapshot, restored.Snapshot())
	req.Empty(restored.PendingEvents())

	guest, ok := restored.Viewer(guestID)
	req.True(ok)
	req.Equal(95*time.Second+300*time.Millisecond, guest.TimeLine())
	req.Equal(1, guest.Statistic("SeekCount"))
	req.True(guest.ChangedFields().IsEmpty())

	owner, ok := restored.Owner()
	req.True(ok)
	req.Equal(3, owner.Season())
	req.True(owner.HasTag("Host"))
	req.Equal("fr", owner.Settings().Extra["lang"])
}

func TestTicks(t *testing.T) {
	req := require.New(t)
	req.Equal(int64(6_000_000_000), ToTicks(10*time.Minute))
	req.Equal(10*time.Minute, FromTicks(6_000_000_000))
}

func TestParseTicks(t *testing.T) {
	req := require.New(t)

	// The largest holdable count converts exactly
	d, err := ParseTicks(math.MaxInt64 / 100)
	req.NoError(err)
	req.Equal(time.Duration(math.MaxInt64/100*100), d)

	// One more would wrap around, it is refused
	for _, ticks := range []int64{math.MaxInt64/100 + 1, math.MaxInt64, math.MinInt64} {
		_, err = ParseTicks(ticks)
		req.ErrorIs(err, errors.ErrOutOfRange, "ticks=%d", ticks)
	}
}

func TestField_Names(t *testing.T) {
	req := require.New(t)
	req.Nil(Field(0).Names())
	req.Equal([]string{"online", "tags"}, (FieldTags | FieldOnline).Names())
	req.True((FieldTags | FieldOnline).Has(FieldOnline))
	req.False(FieldTags.Has(FieldOnline))
	req.False(FieldTags.Has(0))
}
