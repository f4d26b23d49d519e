//go:build !linux

package blobstore

func adviseSequential(uintptr) {}
