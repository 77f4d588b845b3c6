package event

import (
	"log"
	"sync"
)

// Handler обрабатывает одно событие. Ошибка логируется шиной и не
// влияет ни на остальных подписчиков, ни на уже завершившуюся мутацию.
type Handler func(Event) error

// Dispatcher выполняет работу вне потока запроса. Submit возвращает
// false, если задача не принята (очередь переполнена или остановлена).
type Dispatcher interface {
	Submit(job func()) bool
}

// Bus — внутрипроцессная шина доменных событий. Подписки регистрируются
// один раз на старте; Publish вызывается после коммита транзакции и
// никогда не ждет обработчиков.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Name][]Handler
	dispatch Dispatcher
}

func NewBus(dispatch Dispatcher) *Bus {
	return &Bus{
		handlers: make(map[Name][]Handler),
		dispatch: dispatch,
	}
}

func (b *Bus) Subscribe(name Name, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], handler)
}

// Publish рассылает событие всем подписчикам его имени. Каждый handler
// уходит в dispatcher отдельной задачей: упавший или медленный
// подписчик не задевает остальных.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	handlers := b.handlers[e.EventName()]
	b.mu.RUnlock()

	for _, handler := range handlers {
		h := handler
		accepted := b.dispatch.Submit(func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("⚠️  event handler panic, event: %s, panic: %v", e.EventName(), r)
				}
			}()
			if err := h(e); err != nil {
				log.Printf("⚠️  event handler failed, event: %s, err: %v", e.EventName(), err)
			}
		})
		if !accepted {
			log.Printf("⚠️  event dropped, dispatcher rejected job, event: %s", e.EventName())
		}
	}
}
