// Package protocol defines the JSON frames exchanged over the signal socket.
// Every frame carries a "type" discriminator with the event fields next to it.
package protocol

import (
	json "github.com/goccy/go-json"

	"github.com/dkeye/watchparty/internal/domain"
)

// Message types from client.
const (
	TypeJoinRoom           = "join_room"
	TypeLeaveRoom          = "leave_room"
	TypeChatMessage        = "chat_message"
	TypeVideoPlay          = "video_play"
	TypeVideoPause         = "video_pause"
	TypeVideoSeek          = "video_seek"
	TypeVideoLoad          = "video_load"
	TypeWebRTCOffer        = "webrtc_offer"
	TypeWebRTCAnswer       = "webrtc_answer"
	TypeWebRTCICECandidate = "webrtc_ice_candidate"
	TypePing               = "ping"
)

// Message types to client. Echoed events reuse the inbound names.
const (
	TypeConnected  = "connected"
	TypeRoomJoined = "room_joined"
	TypeUserJoined = "user_joined"
	TypeUserLeft   = "user_left"
	TypePong       = "pong"
	TypeError      = "error"
)

// Error codes
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeInvalidRoomCode = "INVALID_ROOM_CODE"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeInternalError   = "INTERNAL_ERROR"
)

// Envelope is decoded first to pick the variant.
type Envelope struct {
	Type string `json:"type"`
}

// Inbound is one decoded client event.
type Inbound interface {
	Type() string
}

// RoomScoped is implemented by events addressed to a room.
type RoomScoped interface {
	Inbound
	Room() domain.RoomCode
}

// SignalPayload is implemented by the three relayed negotiation events.
type SignalPayload interface {
	Inbound
	Target() domain.ConnID
	Payload() json.RawMessage
}

// Client -> Server messages

// JoinRoom, ChatMessage and VideoLoad use pointers so that an absent field is
// rejected while an empty string is accepted.
type JoinRoom struct {
	RoomCode domain.RoomCode `json:"room_code"`
	Username *string         `json:"username" validate:"required,max=64"`
}

type LeaveRoom struct {
	RoomCode domain.RoomCode `json:"room_code"`
}

type ChatMessage struct {
	RoomCode  domain.RoomCode `json:"room_code"`
	Username  *string         `json:"username" validate:"required,max=64"`
	Message   *string         `json:"message" validate:"required,max=4096"`
	Timestamp json.RawMessage `json:"timestamp,omitempty"`
}

// VideoPlay and VideoPause default Time to 0 when absent.
type VideoPlay struct {
	RoomCode domain.RoomCode `json:"room_code"`
	Time     *float64        `json:"time" validate:"omitempty,gte=0"`
	Username *string         `json:"username" validate:"omitempty,max=64"`
}

type VideoPause struct {
	RoomCode domain.RoomCode `json:"room_code"`
	Time     *float64        `json:"time" validate:"omitempty,gte=0"`
	Username *string         `json:"username" validate:"omitempty,max=64"`
}

type VideoSeek struct {
	RoomCode domain.RoomCode `json:"room_code"`
	Time     *float64        `json:"time" validate:"required,gte=0"`
}

type VideoLoad struct {
	RoomCode domain.RoomCode `json:"room_code"`
	URL      *string         `json:"url" validate:"required,max=2048"`
	Username *string         `json:"username" validate:"omitempty,max=64"`
}

type WebRTCOffer struct {
	TargetSID domain.ConnID   `json:"target_sid" validate:"required"`
	Offer     json.RawMessage `json:"offer" validate:"required"`
}

type WebRTCAnswer struct {
	TargetSID domain.ConnID   `json:"target_sid" validate:"required"`
	Answer    json.RawMessage `json:"answer" validate:"required"`
}

type WebRTCICECandidate struct {
	TargetSID domain.ConnID   `json:"target_sid" validate:"required"`
	Candidate json.RawMessage `json:"candidate" validate:"required"`
}

type Ping struct{}

func (*JoinRoom) Type() string           { return TypeJoinRoom }
func (*LeaveRoom) Type() string          { return TypeLeaveRoom }
func (*ChatMessage) Type() string        { return TypeChatMessage }
func (*VideoPlay) Type() string          { return TypeVideoPlay }
func (*VideoPause) Type() string         { return TypeVideoPause }
func (*VideoSeek) Type() string          { return TypeVideoSeek }
func (*VideoLoad) Type() string          { return TypeVideoLoad }
func (*WebRTCOffer) Type() string        { return TypeWebRTCOffer }
func (*WebRTCAnswer) Type() string       { return TypeWebRTCAnswer }
func (*WebRTCICECandidate) Type() string { return TypeWebRTCICECandidate }
func (*Ping) Type() string               { return TypePing }

func (m *JoinRoom) Room() domain.RoomCode    { return m.RoomCode }
func (m *LeaveRoom) Room() domain.RoomCode   { return m.RoomCode }
func (m *ChatMessage) Room() domain.RoomCode { return m.RoomCode }
func (m *VideoPlay) Room() domain.RoomCode   { return m.RoomCode }
func (m *VideoPause) Room() domain.RoomCode  { return m.RoomCode }
func (m *VideoSeek) Room() domain.RoomCode   { return m.RoomCode }
func (m *VideoLoad) Room() domain.RoomCode   { return m.RoomCode }

func (m *WebRTCOffer) Target() domain.ConnID        { return m.TargetSID }
func (m *WebRTCAnswer) Target() domain.ConnID       { return m.TargetSID }
func (m *WebRTCICECandidate) Target() domain.ConnID { return m.TargetSID }

func (m *WebRTCOffer) Payload() json.RawMessage        { return m.Offer }
func (m *WebRTCAnswer) Payload() json.RawMessage       { return m.Answer }
func (m *WebRTCICECandidate) Payload() json.RawMessage { return m.Candidate }

// Server -> Client messages

type Connected struct {
	Type    string        `json:"type"`
	SID     domain.ConnID `json:"sid"`
	Message string        `json:"message"`
}

type RoomJoined struct {
	Type       string               `json:"type"`
	RoomCode   domain.RoomCode      `json:"room_code"`
	UserCount  int                  `json:"user_count"`
	VideoState domain.PlaybackState `json:"video_state"`
}

type UserJoined struct {
	Type      string        `json:"type"`
	Username  string        `json:"username"`
	SID       domain.ConnID `json:"sid"`
	UserCount int           `json:"user_count"`
}

type UserLeft struct {
	Type      string        `json:"type"`
	SID       domain.ConnID `json:"sid"`
	UserCount int           `json:"user_count"`
	Username  string        `json:"username,omitempty"`
}

// ChatBroadcast keeps timestamp as sent; it is null when the client gave none.
type ChatBroadcast struct {
	Type      string          `json:"type"`
	Username  string          `json:"username"`
	Message   string          `json:"message"`
	Timestamp json.RawMessage `json:"timestamp"`
}

// PlaybackBroadcast serves video_play and video_pause.
type PlaybackBroadcast struct {
	Type     string  `json:"type"`
	Time     float64 `json:"time"`
	Username *string `json:"username"`
}

type SeekBroadcast struct {
	Type string  `json:"type"`
	Time float64 `json:"time"`
}

type LoadBroadcast struct {
	Type     string  `json:"type"`
	URL      string  `json:"url"`
	Username *string `json:"username"`
}

// RelayedSignal carries exactly one of Offer, Answer or Candidate.
type RelayedSignal struct {
	Type      string          `json:"type"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
	SenderSID domain.ConnID   `json:"sender_sid"`
}

type Pong struct {
	Type string `json:"type"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewErrorMessage(code, message string) *ErrorMessage {
	return &ErrorMessage{
		Type:    TypeError,
		Code:    code,
		Message: message,
	}
}
