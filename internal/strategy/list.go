package strategy

import "vlower/internal/host"

// itemList 是 FIFO 和 DFS 共用的存储, head 之前的元素已经出队
type itemList struct {
	items []*host.Item
	head  int
}

func (l *itemList) Size() int {
	return len(l.items) - l.head
}

func (l *itemList) HasNext() bool {
	return l.Size() > 0
}

func (l *itemList) Push(items ...*host.Item) error {
	l.items = append(l.items, items...)
	return nil
}

func (l *itemList) front() *host.Item {
	item := l.items[l.head]
	l.items[l.head] = nil
	l.head++
	l.compact()
	return item
}

func (l *itemList) back() *host.Item {
	last := len(l.items) - 1
	item := l.items[last]
	l.items[last] = nil
	l.items = l.items[:last]
	l.compact()
	return item
}

func (l *itemList) compact() {
	if l.head == len(l.items) {
		l.items = l.items[:0]
		l.head = 0
	}
}
