// Package storage provides file persistence below a root directory.
//
// FileService mirrors the operations an application needs for its private
// storage area: open, create directory, existence checks, move, delete, save
// text or streams, and recursive deletion. Paths are slash separated and
// relative to the root; paths escaping the root are rejected.
//
// Reads and writes take advisory file locks through lockedfile, so several
// processes sharing one storage root never observe torn writes.
package storage
