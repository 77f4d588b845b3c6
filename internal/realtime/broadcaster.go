package realtime

import (
	"fmt"

	"collabs/internal/event"

	"github.com/google/uuid"
)

// Имена каналов: комментарии идут в канал задачи, структурные события и
// членство — в приватный канал проекта.
func taskChannel(taskID uuid.UUID) string {
	return fmt.Sprintf("task-%s", taskID)
}

func projectChannel(projectID uuid.UUID) string {
	return fmt.Sprintf("private-project-%s", projectID)
}

// Broadcaster переводит доменные события в push-сообщения. Доставка
// best-effort: ошибка возвращается шине, которая ее логирует; исходная
// мутация к этому моменту давно завершена.
type Broadcaster struct {
	pusher Pusher
}

func NewBroadcaster(pusher Pusher) *Broadcaster {
	return &Broadcaster{pusher: pusher}
}

// Register подписывает broadcaster на все транслируемые события.
// Вызывается один раз на старте.
func (b *Broadcaster) Register(bus *event.Bus) {
	bus.Subscribe(event.NameCommentCreated, b.handleCommentCreated)
	bus.Subscribe(event.NameColumnCreated, b.handleColumnCreated)
	bus.Subscribe(event.NameColumnUpdated, b.handleColumnUpdated)
	bus.Subscribe(event.NameColumnDeleted, b.handleColumnDeleted)
	bus.Subscribe(event.NameTaskCreated, b.handleTaskCreated)
	bus.Subscribe(event.NameInviteAccepted, b.handleInviteAccepted)
}

func (b *Broadcaster) handleCommentCreated(e event.Event) error {
	payload := e.(event.CommentCreated)
	return b.pusher.Trigger(taskChannel(payload.TaskID), "new-comment", payload.Comment)
}

func (b *Broadcaster) handleColumnCreated(e event.Event) error {
	payload := e.(event.ColumnCreated)
	return b.pusher.Trigger(projectChannel(payload.ProjectID), "column-created", payload.Column)
}

func (b *Broadcaster) handleColumnUpdated(e event.Event) error {
	payload := e.(event.ColumnUpdated)
	return b.pusher.Trigger(projectChannel(payload.ProjectID), "column-updated", payload.Column)
}

func (b *Broadcaster) handleColumnDeleted(e event.Event) error {
	payload := e.(event.ColumnDeleted)
	return b.pusher.Trigger(projectChannel(payload.ProjectID), "column-deleted", map[string]interface{}{
		"deleted":   true,
		"projectId": payload.ProjectID,
	})
}

func (b *Broadcaster) handleTaskCreated(e event.Event) error {
	payload := e.(event.TaskCreated)
	return b.pusher.Trigger(projectChannel(payload.ProjectID), "task-created", payload.Task)
}

func (b *Broadcaster) handleInviteAccepted(e event.Event) error {
	payload := e.(event.InviteAccepted)
	return b.pusher.Trigger(projectChannel(payload.ProjectID), "invite-accepted", payload.Collaborator)
}
