package security

import (
	"Applyhub/internal/pkg/consts"
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// UserClaims 定义了我们 Token 中需要包含的业务信息
type UserClaims struct {
	UserID uint64   `json:"user_id"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// Actor 当前操作人
type Actor struct {
	UserID uint64
	Roles  []string
}

func (a Actor) HasRole(roles ...string) bool {
	for _, r := range roles {
		if slices.Contains(a.Roles, r) {
			return true
		}
	}
	return false
}

// IsReviewer 评审员或管理员拥有评审能力
func (a Actor) IsReviewer() bool {
	return a.HasRole(consts.RoleReviewer, consts.RoleAdmin)
}
