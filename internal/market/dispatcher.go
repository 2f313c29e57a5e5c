package market

import "sync"

// Handler 在接收循环的协程里同步调用，别阻塞太久，否则会拖慢读
type Handler func(Message)

type subscription struct {
	h Handler
}

// Dispatcher 每种消息一个订阅槽，Publish 时槽里所有订阅者各调用一次
type Dispatcher struct {
	mu   sync.RWMutex
	subs map[Kind][]*subscription
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{subs: make(map[Kind][]*subscription)}
}

// Subscribe 注册回调，返回取消函数（重复调用无副作用）
func (d *Dispatcher) Subscribe(kind Kind, h Handler) (unsubscribe func()) {
	s := &subscription{h: h}
	d.mu.Lock()
	// copy-on-write：Publish 拿到的旧切片不受影响
	list := d.subs[kind]
	next := make([]*subscription, 0, len(list)+1)
	next = append(next, list...)
	d.subs[kind] = append(next, s)
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { d.remove(kind, s) })
	}
}

func (d *Dispatcher) remove(kind Kind, s *subscription) {
	d.mu.Lock()
	defer d.mu.Unlock()
	list := d.subs[kind]
	next := make([]*subscription, 0, len(list))
	for _, x := range list {
		if x != s {
			next = append(next, x)
		}
	}
	if len(next) == 0 {
		delete(d.subs, kind)
		return
	}
	d.subs[kind] = next
}

// Publish 没有订阅者时什么都不做
func (d *Dispatcher) Publish(msg Message) {
	if msg == nil {
		return
	}
	d.mu.RLock()
	list := d.subs[msg.Kind()]
	d.mu.RUnlock()

	for _, s := range list {
		s.h(msg)
	}
}

// Subscribers 当前槽位订阅数
func (d *Dispatcher) Subscribers(kind Kind) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subs[kind])
}

// On 类型化订阅：market.On(d, func(b market.Book) {...})
// T 必须是具体的消息结构体（Hello/Book/Fill...），不能是 Message 接口本身
func On[T Message](d *Dispatcher, fn func(T)) (unsubscribe func()) {
	var zero T
	return d.Subscribe(zero.Kind(), func(m Message) {
		if v, ok := m.(T); ok {
			fn(v)
		}
	})
}
