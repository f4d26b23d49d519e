//go:build linux

package blobstore

import "golang.org/x/sys/unix"

func adviseSequential(fd uintptr) {
	_ = unix.Fadvise(int(fd), 0, 0, unix.FADV_SEQUENTIAL)
}
