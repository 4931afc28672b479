package domain

import (
	"errors"
	"fmt"
)

const MaxRoomCodeLen = 64

var ErrInvalidRoomCode = errors.New("invalid room code")

// RoomCode is the externally supplied, case-sensitive key of a room.
type RoomCode string

func NewRoomCode(raw string) (RoomCode, error) {
	code := RoomCode(raw)
	if err := code.Validate(); err != nil {
		return "", err
	}
	return code, nil
}

func (c RoomCode) Validate() error {
	if c == "" {
		return fmt.Errorf("%w: room code is required", ErrInvalidRoomCode)
	}
	if len(c) > MaxRoomCodeLen {
		return fmt.Errorf("%w: room code longer than %d bytes", ErrInvalidRoomCode, MaxRoomCodeLen)
	}
	return nil
}
