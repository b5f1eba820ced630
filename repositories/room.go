package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"watch-party/domain"
	domainerrors "watch-party/errors"

	"github.com/dgraph-io/badger/v4"
)

const roomPrefix = "room:"

// RoomRepository stores one msgpack encoded snapshot per room under
// "room:{id}". The snapshot version is bumped on every write and checked on
// Update.
type RoomRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewRoomRepository(db *badger.DB, log *slog.Logger) *RoomRepository {
	return &RoomRepository{db: db, log: log}
}

func roomKey(id domain.RoomID) []byte {
	return []byte(roomPrefix + string(id))
}

func (r *RoomRepository) Get(_ context.Context, id domain.RoomID) (*domain.Room, error) {
	var snapshot domain.RoomSnapshot
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		snapshot, err = readSnapshot(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return domain.FromSnapshot(snapshot), nil
}

// Add stores a new room at version 1.
func (r *RoomRepository) Add(_ context.Context, room *domain.Room) error {
	snapshot := room.Snapshot()
	snapshot.Version = 1
	data, err := marshal(snapshot)
	if err != nil {
		return err
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(roomKey(room.ID)); err == nil {
			return fmt.Errorf("%w: %s", domainerrors.ErrRoomAlreadyExists, room.ID)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(roomKey(room.ID), data)
	})
	if err != nil {
		return err
	}
	room.SetVersion(snapshot.Version)
	return nil
}

// Update fails with ErrConcurrentUpdate when the stored version differs from
// the version the room was loaded at.
func (r *RoomRepository) Update(_ context.Context, room *domain.Room) error {
	snapshot := room.Snapshot()
	snapshot.Version = room.Version() + 1
	data, err := marshal(snapshot)
	if err != nil {
		return err
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		stored, err := readSnapshot(txn, room.ID)
		if err != nil {
			return err
		}
		if stored.Version != room.Version() {
			return fmt.Errorf("%w: %s loaded at version %d, stored %d",
				domainerrors.ErrConcurrentUpdate, room.ID, room.Version(), stored.Version)
		}
		return txn.Set(roomKey(room.ID), data)
	})
	if errors.Is(err, badger.ErrConflict) {
		return fmt.Errorf("%w: %s", domainerrors.ErrConcurrentUpdate, room.ID)
	}
	if err != nil {
		return err
	}
	room.SetVersion(snapshot.Version)
	return nil
}

func (r *RoomRepository) Delete(_ context.Context, id domain.RoomID) error {
	return r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(roomKey(id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", domainerrors.ErrRoomNotFound, id)
			}
			return err
		}
		return txn.Delete(roomKey(id))
	})
}

// List scans every stored room. Used by the inspector.
func (r *RoomRepository) List(_ context.Context) ([]domain.RoomSnapshot, error) {
	snapshots := make([]domain.RoomSnapshot, 0)
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(roomPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var snapshot domain.RoomSnapshot
			err := it.Item().Value(func(val []byte) error {
				return unmarshal(val, &snapshot)
			})
			if err != nil {
				return err
			}
			snapshots = append(snapshots, snapshot)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.log.Debug(fmt.Sprintf("%d rooms listed", len(snapshots)))
	return snapshots, nil
}

func readSnapshot(txn *badger.Txn, id domain.RoomID) (domain.RoomSnapshot, error) {
	var snapshot domain.RoomSnapshot
	item, err := txn.Get(roomKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return snapshot, fmt.Errorf("%w: %s", domainerrors.ErrRoomNotFound, id)
	}
	if err != nil {
		return snapshot, err
	}
	err = item.Value(func(val []byte) error {
		return unmarshal(val, &snapshot)
	})
	return snapshot, err
}
