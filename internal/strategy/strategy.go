// Package strategy 实现声明处理的策略
package strategy

import (
	"github.com/pkg/errors"

	"vlower/internal/host"
)

type Strategy interface {
	Size() int
	HasNext() bool
	Pop() (*host.Item, error)
	Push(...*host.Item) error
}

// New 根据名称返回策略, 默认 fifo
func New(name string) (Strategy, error) {
	switch name {
	case "", "fifo":
		return NewFIFO(), nil
	case "lifo", "dfs":
		return NewDFS(), nil
	}
	return nil, errors.Errorf("unknown strategy %q", name)
}
