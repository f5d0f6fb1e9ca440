package bus

import (
	"github.com/segmentio/kafka-go"
)

// Partition maps a message key to a partition index using a polynomial
// rolling hash (h = h*31 + code) with 32-bit wraparound. The mapping is a
// pure function of the key: no seed, no randomness, stable across process
// restarts, so per-symbol ordering holds for the lifetime of a topic.
func Partition(key string, partitions int) int {
	if partitions <= 0 {
		return 0
	}

	var h int32
	for _, r := range key {
		h = h*31 + r
	}

	v := int64(h)
	if v < 0 {
		v = -v
	}
	return int(v % int64(partitions))
}

// KeyBalancer routes kafka messages with the same deterministic hash the
// rest of the pipeline uses for partition selection.
type KeyBalancer struct{}

// Balance implements kafka.Balancer.
func (KeyBalancer) Balance(msg kafka.Message, partitions ...int) int {
	if len(partitions) == 0 {
		return 0
	}
	return partitions[Partition(string(msg.Key), len(partitions))]
}
