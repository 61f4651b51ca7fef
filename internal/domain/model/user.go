//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"time"

	domainauth "github.com/safemesh/mesh-console/internal/domain/auth"
)

// UserStatus is the account state of a mesh user.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// Toggled returns the opposite status.
func (s UserStatus) Toggled() UserStatus {
	if s == UserStatusActive {
		return UserStatusSuspended
	}
	return UserStatusActive
}

// User is a tourist, guide or staff member registered on the mesh.
type User struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Role     domainauth.Role `json:"role"`
	Status   UserStatus      `json:"status"`
	LastSeen time.Time       `json:"lastSeen"`
	DeviceID string          `json:"deviceId,omitempty"`
}

// UserQuery filters and paginates user listings.
type UserQuery struct {
	Search   string `json:"search,omitempty"`
	Page     int    `json:"page,omitempty"`
	PageSize int    `json:"pageSize,omitempty"`
}

const (
	defaultUserPageSize = 10
	maxUserPageSize     = 100
)

// Normalize applies paging defaults and bounds.
func (q *UserQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = defaultUserPageSize
	}
	if q.PageSize > maxUserPageSize {
		q.PageSize = maxUserPageSize
	}
}

// UserPage is one page of a user listing plus the filtered total.
type UserPage struct {
	Users    []User `json:"users"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}
