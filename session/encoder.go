package session

import (
	"encoding/json"
	"errors"
)

const schemaVersionCurrent = 1

// ErrCorruptBlob is returned by [Decode] for any blob that does not
// carry a complete, well-formed session.
var ErrCorruptBlob = errors.New("corrupt session blob")

type userBlob struct {
	ID          string `json:"id"`
	Username    string `json:"username,omitempty"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Role        string `json:"role,omitempty"`
}

type sessionBlob struct {
	Version      int      `json:"v"`
	SessionID    string   `json:"sessionId"`
	User         userBlob `json:"user"`
	Token        string   `json:"token"`
	RefreshToken string   `json:"refreshToken,omitempty"`
	IssuedAt     int64    `json:"issuedAt"`
	ExpiresAt    int64    `json:"expiresAt"`
	Mode         string   `json:"mode"`
}

// Encode serializes a session to its versioned JSON form.
func Encode(s *Session) ([]byte, error) {
	if s == nil {
		return nil, errors.New("nil session")
	}
	if s.Token == "" {
		return nil, errors.New("session token required")
	}
	if s.User.ID == "" {
		return nil, errors.New("session user required")
	}

	return json.Marshal(sessionBlob{
		Version:   schemaVersionCurrent,
		SessionID: s.SessionID,
		User: userBlob{
			ID:          s.User.ID,
			Username:    s.User.Username,
			Email:       s.User.Email,
			DisplayName: s.User.DisplayName,
			Role:        s.User.Role,
		},
		Token:        s.Token,
		RefreshToken: s.RefreshToken,
		IssuedAt:     s.IssuedAt,
		ExpiresAt:    s.ExpiresAt,
		Mode:         s.Mode.String(),
	})
}

// Decode parses a stored blob. Any structural defect (bad JSON, unknown
// schema version, missing token, user, or expiry) yields
// [ErrCorruptBlob]; partial sessions are never returned.
func Decode(data []byte) (*Session, error) {
	var blob sessionBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, errors.Join(ErrCorruptBlob, err)
	}

	if blob.Version < 1 || blob.Version > schemaVersionCurrent {
		return nil, ErrCorruptBlob
	}
	if blob.Token == "" || blob.User.ID == "" || blob.ExpiresAt <= 0 {
		return nil, ErrCorruptBlob
	}

	mode := Ephemeral
	if blob.Mode == Remembered.String() {
		mode = Remembered
	}

	return &Session{
		SessionID: blob.SessionID,
		User: User{
			ID:          blob.User.ID,
			Username:    blob.User.Username,
			Email:       blob.User.Email,
			DisplayName: blob.User.DisplayName,
			Role:        blob.User.Role,
		},
		Token:        blob.Token,
		RefreshToken: blob.RefreshToken,
		IssuedAt:     blob.IssuedAt,
		ExpiresAt:    blob.ExpiresAt,
		Mode:         mode,
	}, nil
}
