package strategy

import (
	"github.com/pkg/errors"

	"vlower/internal/host"
)

// DFS 后进先出, 最后压入的声明最先处理
type DFS struct {
	itemList
}

func NewDFS() *DFS {
	return &DFS{}
}

func (s *DFS) Pop() (*host.Item, error) {
	if !s.HasNext() {
		return nil, errors.New("item stack is empty")
	}
	return s.back(), nil
}
