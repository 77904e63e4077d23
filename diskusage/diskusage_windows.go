//go:build windows

package diskusage

import (
	"syscall"
	"unsafe"
)

var (
	kernel32            = syscall.NewLazyDLL("kernel32.dll")
	pGetDiskFreeSpaceEx = kernel32.NewProc("GetDiskFreeSpaceExW")
)

// DiskUsage returns the usage of the volume holding path.
func DiskUsage(path string) (*DiskStatus, error) {
	dir, err := syscall.UTF16PtrFromString(path)
	if err != nil {
		return nil, err
	}
	var freeAvailable, total, totalFree int64
	ret, _, callErr := pGetDiskFreeSpaceEx.Call(
		uintptr(unsafe.Pointer(dir)),
		uintptr(unsafe.Pointer(&freeAvailable)),
		uintptr(unsafe.Pointer(&total)),
		uintptr(unsafe.Pointer(&totalFree)))
	if ret == 0 {
		return nil, callErr
	}
	return &DiskStatus{
		All:  total,
		Free: freeAvailable,
		Used: total - totalFree,
	}, nil
}
