//go:build linux

package usage

import "golang.org/x/sys/unix"

func statfs(path string) (blockSize uint64, totalBlocks, availBlocks, totalInodes, availInodes uint64, err error) {
	var st unix.Statfs_t
	if err = unix.Statfs(path, &st); err != nil {
		return 0, 0, 0, 0, 0, err
	}
	return uint64(st.Bsize), st.Blocks, st.Bavail, st.Files, st.Ffree, nil
}
