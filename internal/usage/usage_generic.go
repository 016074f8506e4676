//go:build !linux

package usage

import "fmt"

func statfs(path string) (blockSize uint64, totalBlocks, availBlocks, totalInodes, availInodes uint64, err error) {
	return 0, 0, 0, 0, 0, fmt.Errorf("usage: filesystem statistics are not supported on this platform")
}
