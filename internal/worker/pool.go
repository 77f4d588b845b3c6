package worker

import (
	"log"
	"sync"
)

// Pool — ограниченный пул горутин для fire-and-forget работы (письма,
// push-уведомления). Отказ от задачи при переполнении буфера логируется
// и не распространяется: фоновая доставка — не условие корректности.
type Pool struct {
	jobs chan func()
	wg   sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func NewPool(workers, buffer int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}

	p := &Pool{jobs: make(chan func(), buffer)}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("⚠️  background job panic: %v", r)
				}
			}()
			job()
		}()
	}
}

// Submit передает задачу пулу без блокировки. Возвращает false, если
// буфер заполнен или пул остановлен.
func (p *Pool) Submit(job func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}

	select {
	case p.jobs <- job:
		return true
	default:
		return false
	}
}

// Shutdown прекращает прием задач и дожидается уже принятых.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
}
