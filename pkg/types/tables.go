package types

import "fmt"

type TableName string

func (s TableName) Name() string {
	return fmt.Sprintf("%s%s", TABLE_PREFIX, s)
}

const TABLE_PREFIX = "workbench_"

const (
	TABLE_WORKSPACE = TableName("workspaces")
)
