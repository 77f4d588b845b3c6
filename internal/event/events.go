package event

import (
	"collabs/internal/model"

	"github.com/google/uuid"
)

// Name идентифицирует вид доменного события. Набор закрыт: публиковать
// можно только перечисленные ниже варианты с типизированными payload.
type Name string

const (
	NameCommentCreated Name = "comment.created"
	NameColumnCreated  Name = "column.created"
	NameColumnUpdated  Name = "column.updated"
	NameColumnDeleted  Name = "column.deleted"
	NameTaskCreated    Name = "task.created"
	NameInviteAccepted Name = "invite.accepted"
)

// Event — зафиксированное изменение домена. Публикуется строго после
// коммита породившей его транзакции.
type Event interface {
	EventName() Name
}

type CommentCreated struct {
	TaskID  uuid.UUID
	Comment *model.Comment
}

func (CommentCreated) EventName() Name { return NameCommentCreated }

type ColumnCreated struct {
	ProjectID uuid.UUID
	Column    *model.Column
}

func (ColumnCreated) EventName() Name { return NameColumnCreated }

// ColumnUpdated публикуется и для одиночного изменения, и один раз на
// батч переупорядочивания (репрезентативная колонка — клиентам этого
// достаточно, чтобы перечитать доску)
type ColumnUpdated struct {
	ProjectID uuid.UUID
	Column    *model.Column
}

func (ColumnUpdated) EventName() Name { return NameColumnUpdated }

type ColumnDeleted struct {
	ProjectID uuid.UUID
	ColumnID  uuid.UUID
}

func (ColumnDeleted) EventName() Name { return NameColumnDeleted }

type TaskCreated struct {
	ProjectID uuid.UUID
	Task      *model.Task
}

func (TaskCreated) EventName() Name { return NameTaskCreated }

type InviteAccepted struct {
	ProjectID    uuid.UUID
	Collaborator *model.Collaborator
}

func (InviteAccepted) EventName() Name { return NameInviteAccepted }
