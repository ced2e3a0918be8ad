package model

import (
	"strings"
	"time"
)

type Role string

const (
	RoleFarmer     Role = "FARMER"
	RoleSupplier   Role = "SUPPLIER"
	RoleBuyer      Role = "BUYER"
	RoleAdmin      Role = "ADMIN"
	RoleGovernment Role = "GOVERNMENT"
)

// ParseRoleは大文字小文字を問わずロール名を解釈する
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RoleFarmer, RoleSupplier, RoleBuyer, RoleAdmin, RoleGovernment:
		return r, true
	}
	return "", false
}

type Address struct {
	Province string `json:"province"`
	District string `json:"district"`
}

type User struct {
	ID          string    `json:"id"`
	Names       string    `json:"names"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	Role        Role      `json:"role"`
	Verified    bool      `json:"verified"`
	Address     Address   `json:"address"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (u User) Key() string { return u.ID }

// Principalは検証済みトークンから取り出した呼び出し元
type Principal struct {
	UserID string
	Email  string
	Role   Role
	Token  string
}
