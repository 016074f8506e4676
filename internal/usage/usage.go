// Package usage computes how full a cache's backing filesystem is, relative
// to the configured free-space and free-inode floors, via statfs.
package usage

import "github.com/yourusername/htcacheclean/internal/sizespec"

// Probe reads filesystem statistics for root and returns the worse of the
// space-usage and inode-usage percentages, each expressed relative to its
// configured floor: 100 means exactly at the floor, values above 100 mean
// the floor has already been breached.
//
// The "+1" in each denominator avoids a divide-by-zero when a floor of zero
// is configured (percentage 0% or absolute 0), matching the original
// calculate_usage behavior of treating a zero target as "any usage at all
// exceeds it."
func Probe(root string, minFreeSpace, minFreeInodes sizespec.SizeSpec) (float64, error) {
	blockSize, totalBlocks, availBlocks, totalInodes, availInodes, err := statfs(root)
	if err != nil {
		return 0, err
	}

	totalSpace := blockSize * totalBlocks
	spaceUsageTarget := saturatingSub(totalSpace, minFreeSpace.Value(totalSpace))
	usedSpace := saturatingSub(blockSize*totalBlocks, blockSize*availBlocks)
	spaceUsage := float64(usedSpace) * 100 / float64(spaceUsageTarget+1)

	inodeUsageTarget := saturatingSub(totalInodes, minFreeInodes.Value(totalInodes))
	usedInodes := saturatingSub(totalInodes, availInodes)
	inodeUsage := float64(usedInodes) * 100 / float64(inodeUsageTarget+1)

	if spaceUsage > inodeUsage {
		return spaceUsage, nil
	}
	return inodeUsage, nil
}

func saturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}
