package realtime

import (
	"log"
	"sync"

	"collabs/internal/config"

	"github.com/pusher/pusher-http-go/v5"
)

// Pusher — внешний push-коллаборатор. Интерфейс сужен до единственного
// используемого вызова, чтобы broadcaster тестировался без сети.
type Pusher interface {
	Trigger(channel string, eventName string, data interface{}) error
}

var (
	once   sync.Once
	client *pusher.Client
)

// Init создает процессный singleton Pusher-клиента. Вызывается один раз
// на старте до регистрации broadcaster; повторные вызовы игнорируются.
func Init(cfg *config.Config) {
	once.Do(func() {
		client = &pusher.Client{
			AppID:   cfg.PusherAppID,
			Key:     cfg.PusherKey,
			Secret:  cfg.PusherSecret,
			Cluster: cfg.PusherCluster,
			Secure:  true,
		}
		log.Println("✅ Pusher client initialized")
	})
}

// Client возвращает инициализированный клиент. Конкретный тип: помимо
// Trigger клиент авторизует подписки на приватные каналы. Паника до
// Init — ошибка порядка запуска, а не рантайма.
func Client() *pusher.Client {
	if client == nil {
		panic("realtime: Init must be called before Client")
	}
	return client
}

// Shutdown сбрасывает клиент при остановке процесса. Для тестов.
func Shutdown() {
	client = nil
	once = sync.Once{}
}
