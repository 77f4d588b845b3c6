package authz

import (
	"context"
	"errors"

	"collabs/internal/model"

	"github.com/google/uuid"
)

// Authorization failures. Handlers map both to 403.
var (
	ErrNotAMember       = errors.New("not a member of the project")
	ErrInsufficientRole = errors.New("insufficient role for this action")
)

// MembershipStore — источник актуального членства. Gate читает его на
// каждый вызов: результат проверки никогда не кэшируется, чтобы не
// авторизовать по устаревшему членству.
type MembershipStore interface {
	Find(ctx context.Context, userID, projectID uuid.UUID) (*model.Collaborator, error)
}

// Gate решает, разрешено ли действие пользователю в проекте.
// Чистая проверка без побочных эффектов; вызывается синхронно перед
// каждой мутацией.
type Gate struct {
	members MembershipStore
}

func NewGate(members MembershipStore) *Gate {
	return &Gate{members: members}
}

// Check возвращает запись участника, если actor состоит в проекте и его
// роль покрывает required. Пустая required роль означает: достаточно
// любого членства.
func (g *Gate) Check(ctx context.Context, actorID, projectID uuid.UUID, required model.Role) (*model.Collaborator, error) {
	member, err := g.members.Find(ctx, actorID, projectID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrNotAMember
	}
	if required != "" && !member.Role.Meets(required) {
		return nil, ErrInsufficientRole
	}
	return member, nil
}
