package session

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
)

// renameFile is swapped in tests to simulate a cross-device rename
var renameFile = os.Rename

// moveFile renames src to dst. When the two paths live on different
// filesystems it copies into the destination directory, verifies the copy
// and only then removes the source.
func moveFile(src, dst string) error {
	err := renameFile(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return newIOError("rename", src, err)
	}
	return copyAcrossDevices(src, dst)
}

func copyAcrossDevices(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return newIOError("open", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return newIOError("stat", src, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".move-*")
	if err != nil {
		return newIOError("create", filepath.Dir(dst), err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	n, err := io.Copy(tmp, in)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		cleanup()
		return newIOError("copy", dst, err)
	}
	if n != info.Size() {
		cleanup()
		return newIOError("verify", dst, fmt.Errorf("copied %d of %d bytes", n, info.Size()))
	}

	if err := os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		cleanup()
		return newIOError("chmod", tmpPath, err)
	}
	// Same directory as dst, so a plain rename
	if err := os.Rename(tmpPath, dst); err != nil {
		cleanup()
		return newIOError("rename", tmpPath, err)
	}

	if err := os.Remove(src); err != nil {
		// Keep exactly one copy
		_ = os.Remove(dst)
		return newIOError("remove", src, err)
	}
	return nil
}
