package snowflake

import (
	"errors"
	"sync"

	"github.com/bwmarrin/snowflake"
)

// GeneratorType 区分不同实体的 ID 序列，避免多类实体争用同一个节点。
type GeneratorType int

const (
	GeneratorTypeCheckIn GeneratorType = iota
	GeneratorTypeNotification
	GeneratorTypeMessage
	generatorTypeCount
)

var (
	nodes    [generatorTypeCount]*snowflake.Node
	initOnce sync.Once

	errInvalidMachineID   = errors.New("invalid snowflake machine id")
	errInvalidGenerator   = errors.New("unknown snowflake generator type")
	errGeneratorUninitial = errors.New("snowflake generator is not initialized")
)

func Init(machineID, dataCenterID int64) error {
	var initErr error

	initOnce.Do(func() {
		if machineID < 0 || machineID > 31 {
			initErr = errInvalidMachineID
			return
		}

		// datacenterID 和 machineID 都是 0~31，组合成 10 位基础节点号，
		// 每种 generator 在基础节点号上偏移，保证序列互不重叠
		base := (dataCenterID << 5) | machineID
		for i := GeneratorType(0); i < generatorTypeCount; i++ {
			node, err := snowflake.NewNode((base + int64(i)) % 1024)
			if err != nil {
				initErr = err
				return
			}
			nodes[i] = node
		}
	})

	return initErr
}

func NextID(kind GeneratorType) (int64, error) {
	if kind < 0 || kind >= generatorTypeCount {
		return 0, errInvalidGenerator
	}
	if nodes[kind] == nil {
		return 0, errGeneratorUninitial
	}

	return nodes[kind].Generate().Int64(), nil
}
