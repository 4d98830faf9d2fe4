package model

import "time"

// JWTTokenBlacklist stores revoked token JTIs until they expire
type JWTTokenBlacklist struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Token     string    `gorm:"uniqueIndex;not null" json:"token"` // JTI, not the raw token
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Reason    string    `gorm:"type:varchar(100)" json:"reason"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
}
