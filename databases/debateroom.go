package databases

// go generate: mockery --name DebateRoomDatabase

import (
	"context"
	"errors"
	"fmt"

	"github.com/linesmerrill/ai-court-api/models"
)

const debateRoomsKey = "debateRooms"

// ErrRoomExists is returned by Create when the shared key is already taken
var ErrRoomExists = errors.New("debate room already exists")

func sharedDebateKey(roomCode string) string {
	return "shared_debate_" + roomCode
}

func debateRoleKey(roomCode string) string {
	return fmt.Sprintf("debate_%s_role", roomCode)
}

// RoomChannel is the notifier channel carrying snapshots of a room
func RoomChannel(roomCode string) string {
	return "debate:" + roomCode
}

// DebateRoomDatabase contains the methods to use with the debate room records
type DebateRoomDatabase interface {
	// Register adds the code to the debateRooms registry; false when already taken
	Register(ctx context.Context, entry models.RoomRegistryEntry) (bool, error)
	Registry(ctx context.Context) ([]models.RoomRegistryEntry, error)
	Create(ctx context.Context, room *models.DebateRoom) error
	FindOne(ctx context.Context, roomCode string) (*models.DebateRoom, error)
	// Update atomically applies fn to the stored room and returns the result.
	// fn reports whether it changed the room; errors abort without writing.
	Update(ctx context.Context, roomCode string, fn func(room *models.DebateRoom) (bool, error)) (*models.DebateRoom, error)
	SetRole(ctx context.Context, clientID, roomCode string, role models.Role) error
	Role(ctx context.Context, clientID, roomCode string) (models.Role, error)
}

type debateRoomDatabase struct {
	store KeyValueStore
}

// NewDebateRoomDatabase initializes a new instance of debate room database with the provided store
func NewDebateRoomDatabase(store KeyValueStore) DebateRoomDatabase {
	return &debateRoomDatabase{
		store: store,
	}
}

func (d *debateRoomDatabase) Register(ctx context.Context, entry models.RoomRegistryEntry) (bool, error) {
	registered := false
	err := UpdateJSON(ctx, d.store, debateRoomsKey, func(entries *[]models.RoomRegistryEntry, _ bool) (bool, error) {
		for _, e := range *entries {
			if e.RoomCode == entry.RoomCode {
				return false, nil
			}
		}
		*entries = append(*entries, entry)
		registered = true
		return true, nil
	})
	return registered, err
}

func (d *debateRoomDatabase) Registry(ctx context.Context) ([]models.RoomRegistryEntry, error) {
	var entries []models.RoomRegistryEntry
	if _, err := GetJSON(ctx, d.store, debateRoomsKey, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (d *debateRoomDatabase) Create(ctx context.Context, room *models.DebateRoom) error {
	return UpdateJSON(ctx, d.store, sharedDebateKey(room.RoomCode), func(stored *models.DebateRoom, found bool) (bool, error) {
		if found {
			return false, ErrRoomExists
		}
		*stored = *room
		return true, nil
	})
}

func (d *debateRoomDatabase) FindOne(ctx context.Context, roomCode string) (*models.DebateRoom, error) {
	room := &models.DebateRoom{}
	found, err := GetJSON(ctx, d.store, sharedDebateKey(roomCode), room)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &models.NotFoundError{Kind: "debate room", ID: roomCode}
	}
	normalizeRoom(room)
	return room, nil
}

func (d *debateRoomDatabase) Update(ctx context.Context, roomCode string, fn func(room *models.DebateRoom) (bool, error)) (*models.DebateRoom, error) {
	var result *models.DebateRoom
	err := UpdateJSON(ctx, d.store, sharedDebateKey(roomCode), func(room *models.DebateRoom, found bool) (bool, error) {
		if !found {
			return false, &models.NotFoundError{Kind: "debate room", ID: roomCode}
		}
		normalizeRoom(room)
		changed, err := fn(room)
		if err != nil {
			return false, err
		}
		result = room
		return changed, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (d *debateRoomDatabase) SetRole(ctx context.Context, clientID, roomCode string, role models.Role) error {
	return SetJSON(ctx, Scoped(d.store, clientID), debateRoleKey(roomCode), role)
}

func (d *debateRoomDatabase) Role(ctx context.Context, clientID, roomCode string) (models.Role, error) {
	var role models.Role
	if _, err := GetJSON(ctx, Scoped(d.store, clientID), debateRoleKey(roomCode), &role); err != nil {
		return "", err
	}
	return role, nil
}

// normalizeRoom fills the fields older records may lack
func normalizeRoom(room *models.DebateRoom) {
	if room.Chat == nil {
		room.Chat = []models.ChatMessage{}
	}
	if room.Events == nil {
		room.Events = []models.RoomEvent{}
	}
	if room.Status == "" {
		room.Status = models.RoomStatusWaiting
	}
}
