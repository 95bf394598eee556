package common

import (
	"os"

	"github.com/bwmarrin/snowflake"
)

var snowflakeNode *snowflake.Node

func init() {
	var err error
	snowflakeNode, err = snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
}

// UUIDint64 returns a snowflake-based int64 identifier.
func UUIDint64() int64 {
	return snowflakeNode.Generate().Int64()
}

// UUID returns a snowflake-based string identifier.
func UUID() string {
	return snowflakeNode.Generate().String()
}

// FileExists tests whether path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// MakeDir creates dir and parents when missing.
func MakeDir(path string) error {
	if FileExists(path) {
		return nil
	}
	return os.MkdirAll(path, 0755)
}
