package models

// UserRegistration is the wire form of one node registered for a user.
type UserRegistration struct {
	NodeID string `json:"nodeId" validate:"required"`
	URL    string `json:"url" validate:"required,nodeurl"`
}

type UserRegistrations []UserRegistration

type InternalStatsResponse struct {
	Users int `json:"users"`
	Nodes int `json:"nodes"`
}

type UsersResponse []string
