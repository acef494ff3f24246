package chat

import "fmt"

// Role 用戶角色
type Role int

const (
	RolePlayer Role = iota + 1
	RoleTrusted
	RoleAssistant
	RoleGameMaster
	// RoleNone 只作為權限設置使用，表示任何人都不允許
	RoleNone
)

// String 角色名稱
func (r Role) String() string {
	switch r {
	case RolePlayer:
		return "玩家"
	case RoleTrusted:
		return "信任玩家"
	case RoleAssistant:
		return "助理主持人"
	case RoleGameMaster:
		return "主持人"
	case RoleNone:
		return "無"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Valid 是否為已知角色
func (r Role) Valid() bool {
	return r >= RolePlayer && r <= RoleNone
}

// User 用戶
type User struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Role Role   `yaml:"role"`
}

// IsGM 是否擁有主持人權限
func (u *User) IsGM() bool {
	return u != nil && u.Role >= RoleAssistant && u.Role < RoleNone
}

// HasRole 角色是否達到要求
// 要求為 RoleNone 時總是返回 false。
func (u *User) HasRole(min Role) bool {
	if u == nil || min >= RoleNone {
		return false
	}
	return u.Role >= min && u.Role < RoleNone
}
