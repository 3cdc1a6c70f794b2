package strategy

import (
	"github.com/pkg/errors"

	"vlower/internal/host"
)

// FIFO 按源码顺序处理声明
type FIFO struct {
	itemList
}

func NewFIFO() *FIFO {
	return &FIFO{}
}

func (q *FIFO) Pop() (*host.Item, error) {
	if !q.HasNext() {
		return nil, errors.New("item queue is empty")
	}
	return q.front(), nil
}
