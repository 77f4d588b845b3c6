package model

import (
	"time"

	"github.com/google/uuid"
)

// Role — закрытый набор ролей участника проекта с явным порядком.
// Сравнение ролей идет только через Meets, чтобы неизвестное значение
// никогда не проходило проверку прав.
type Role string

const (
	RoleMember Role = "MEMBER"
	RoleAdmin  Role = "ADMIN"
)

var roleRank = map[Role]int{
	RoleMember: 1,
	RoleAdmin:  2,
}

func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// Meets reports whether r grants at least the rights of required.
// An unknown role on either side never passes.
func (r Role) Meets(required Role) bool {
	rr, ok := roleRank[r]
	if !ok {
		return false
	}
	req, ok := roleRank[required]
	if !ok {
		return false
	}
	return rr >= req
}

// Collaborator связывает пользователя с проектом и его ролью.
// Пара (user_id, project_id) уникальна; владелец проекта получает
// запись с ролью ADMIN при создании проекта.
type Collaborator struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_project"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_project"`
	Role      Role      `gorm:"type:varchar(16);not null;check:role IN ('ADMIN', 'MEMBER')"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	User    User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}
