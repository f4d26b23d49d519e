// Package hash provides the CRC32-Castagnoli checksum stamped on published
// catalogs. Hardware acceleration is used when available.
package hash
