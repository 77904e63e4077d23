//go:build !windows

package diskusage

import (
	"syscall"
)

// DiskUsage returns the usage of the file system holding path.
func DiskUsage(path string) (*DiskStatus, error) {
	fs := syscall.Statfs_t{}
	if err := syscall.Statfs(path, &fs); err != nil {
		return nil, err
	}
	status := &DiskStatus{
		All:  int64(fs.Blocks) * int64(fs.Bsize),
		Free: int64(fs.Bavail) * int64(fs.Bsize),
	}
	status.Used = status.All - int64(fs.Bfree)*int64(fs.Bsize)
	return status, nil
}
