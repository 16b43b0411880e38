package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/tablesync/internal/events"
	"github.com/five82/tablesync/internal/state"
)

const bridgeBuffer = 128

// bridge forwards store events into the Bubble Tea loop. Handlers never
// block: when the buffer is full the event is dropped, and the next
// snapshot fetch still picks up the state it described.
type bridge struct {
	ch          chan events.Event
	done        chan struct{}
	unsubscribe func()
	once        sync.Once
}

func newBridge(store *state.Store) *bridge {
	b := &bridge{
		ch:   make(chan events.Event, bridgeBuffer),
		done: make(chan struct{}),
	}
	b.unsubscribe = store.Subscribe("", b.handle)
	return b
}

func (b *bridge) handle(ev events.Event) error {
	select {
	case b.ch <- ev:
	case <-b.done:
	default:
	}
	return nil
}

func (b *bridge) close() {
	b.once.Do(func() {
		b.unsubscribe()
		close(b.done)
	})
}

type storeEventMsg events.Event

func (b *bridge) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-b.ch:
			return storeEventMsg(ev)
		case <-b.done:
			return nil
		}
	}
}
