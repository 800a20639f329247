package notify

import (
	"sync"

	"chat-service/service"
)

// Snapshot is one delivery of the conversations-with-unread live
// query.
type Snapshot = []service.ConversationSummary

// Subscription drains a snapshot feed into a callback until the feed
// closes or Cancel is called.
type Subscription struct {
	done chan struct{}
	once sync.Once
}

func Subscribe(feed <-chan Snapshot, fn func(Snapshot)) *Subscription {
	sub := &Subscription{done: make(chan struct{})}
	go func() {
		for {
			select {
			case snapshot, ok := <-feed:
				if !ok {
					return
				}
				fn(snapshot)
			case <-sub.done:
				return
			}
		}
	}()
	return sub
}

func (s *Subscription) Cancel() {
	s.once.Do(func() { close(s.done) })
}
