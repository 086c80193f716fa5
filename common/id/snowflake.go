package id

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init sets up the Snowflake node. Only the first call has effect.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New returns a time-ordered unique id. Init must have succeeded.
func New() int64 {
	return node.Generate().Int64()
}

// Parse reads an id rendered in base 10, as the API does.
func Parse(s string) (int64, error) {
	sid, err := snowflake.ParseString(s)
	if err != nil {
		return 0, err
	}
	return sid.Int64(), nil
}
