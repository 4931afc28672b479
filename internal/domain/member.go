package domain

// Member is a read-only view of one room participant for APIs.
// No transport or lifecycle logic here.
type Member struct {
	SID      ConnID `json:"sid"`
	Username string `json:"username,omitempty"`
}
