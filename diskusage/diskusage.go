// Package diskusage reports free space so caches can stop growing on a full
// disk.
package diskusage

type DiskStatus struct {
	All  int64
	Used int64
	Free int64
}

// HasFreeSpace reports whether the disk holding path has at least min bytes
// free. When the usage cannot be determined it reports true.
func HasFreeSpace(path string, min int64) bool {
	status, err := DiskUsage(path)
	if err != nil {
		return true
	}
	return status.Free >= min
}
