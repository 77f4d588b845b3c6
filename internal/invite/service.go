package invite

import (
	"context"
	"log"

	"collabs/internal/event"
	"collabs/internal/model"
	"collabs/internal/repository"

	"github.com/google/uuid"
)

type ProjectStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
}

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

type MembershipStore interface {
	Find(ctx context.Context, userID, projectID uuid.UUID) (*model.Collaborator, error)
	Create(ctx context.Context, collaborator *model.Collaborator) error
}

type Gate interface {
	Check(ctx context.Context, actorID, projectID uuid.UUID, required model.Role) (*model.Collaborator, error)
}

type Publisher interface {
	Publish(e event.Event)
}

type MailSender interface {
	SendInvite(email, token string) error
}

type Dispatcher interface {
	Submit(job func()) bool
}

// Service реализует двухфазный протокол приглашений: Issue чеканит
// подписанный токен, Accept спустя время обменивает его на членство.
type Service struct {
	projects ProjectStore
	users    UserStore
	members  MembershipStore
	gate     Gate
	codec    *TokenCodec
	bus      Publisher
	mail     MailSender
	dispatch Dispatcher
}

func NewService(
	projects ProjectStore,
	users UserStore,
	members MembershipStore,
	gate Gate,
	codec *TokenCodec,
	bus Publisher,
	mail MailSender,
	dispatch Dispatcher,
) *Service {
	return &Service{
		projects: projects,
		users:    users,
		members:  members,
		gate:     gate,
		codec:    codec,
		bus:      bus,
		mail:     mail,
		dispatch: dispatch,
	}
}

// Issue чеканит инвайт-токен для email в проекте. Только ADMIN проекта
// может приглашать. Письмо уходит в фоне; его судьба не влияет на ответ.
func (s *Service) Issue(ctx context.Context, issuerID, projectID uuid.UUID, email string, role model.Role) (string, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return "", err
	}
	if project == nil {
		return "", repository.ErrProjectNotFound
	}

	if _, err := s.gate.Check(ctx, issuerID, projectID, model.RoleAdmin); err != nil {
		return "", err
	}

	if role == "" {
		role = model.RoleMember
	}
	if !role.Valid() {
		return "", ErrInvalidRole
	}

	// Email может принадлежать еще не зарегистрированному пользователю —
	// это нормально, проверка членства возможна только для существующего
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user != nil {
		existing, err := s.members.Find(ctx, user.ID, projectID)
		if err != nil {
			return "", err
		}
		if existing != nil {
			return "", ErrAlreadyMember
		}
	}

	token, err := s.codec.Sign(email, projectID, role)
	if err != nil {
		return "", err
	}

	accepted := s.dispatch.Submit(func() {
		if err := s.mail.SendInvite(email, token); err != nil {
			log.Printf("⚠️  invite mail failed, email: %s, err: %v", email, err)
		}
	})
	if !accepted {
		log.Printf("⚠️  invite mail dropped, worker pool rejected job, email: %s", email)
	}

	return token, nil
}

// Accept проверяет токен и создает запись участника. Принять инвайт
// может только аутентифицированный владелец указанного в токене email.
// Повторное принятие упирается в существующую пару (user, project) и
// возвращает ErrAlreadyMember — дубликат не создается.
func (s *Service) Accept(ctx context.Context, token string, acceptingUserID uuid.UUID) (*model.Collaborator, error) {
	claims, err := s.codec.Verify(token)
	if err != nil {
		return nil, err
	}

	project, err := s.projects.GetByID(ctx, claims.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, repository.ErrProjectNotFound
	}

	user, err := s.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnknownUser
	}
	if user.ID != acceptingUserID {
		return nil, ErrIdentityMismatch
	}

	existing, err := s.members.Find(ctx, user.ID, project.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyMember
	}

	role := claims.Role
	if role == "" {
		role = model.RoleMember
	}
	if !role.Valid() {
		return nil, ErrInvalidToken
	}

	collaborator := &model.Collaborator{
		UserID:    user.ID,
		ProjectID: project.ID,
		Role:      role,
	}
	if err := s.members.Create(ctx, collaborator); err != nil {
		return nil, err
	}

	s.bus.Publish(event.InviteAccepted{
		ProjectID:    project.ID,
		Collaborator: collaborator,
	})

	return collaborator, nil
}
