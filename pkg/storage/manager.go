package storage

import (
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/ganzorig/mishil/config"
	"github.com/ganzorig/mishil/pkg/logger"
)

var (
	managerMu   sync.RWMutex
	disks       = map[string]Disk{}
	defaultDisk string
)

// Connect boots the storage manager. Call once at application startup.
func Connect() {
	managerMu.Lock()
	defer managerMu.Unlock()

	defaultDisk = "local"
	disks["local"] = newLocalDisk()

	// Boot the S3 disk only when a bucket is configured, and prefer it.
	if config.StorageS3Bucket() != "" {
		d, err := newS3Disk()
		if err != nil {
			logger.Warn("storage: s3 disk disabled", "error", err)
		} else {
			disks["s3"] = d
			defaultDisk = "s3"
		}
	}
}

// Use returns the named disk ("local" or "s3").
func Use(name string) Disk {
	managerMu.RLock()
	d, ok := disks[name]
	managerMu.RUnlock()
	if !ok {
		panic(fmt.Sprintf("storage: disk %q is not configured", name))
	}
	return d
}

// Default returns the active disk.
func Default() Disk {
	managerMu.RLock()
	defer managerMu.RUnlock()
	return disks[defaultDisk]
}

// SaveImage persists one product image and returns its public URL.
//
// In serverless mode there is no writable filesystem and no object store is
// assumed, so the image is returned as an inline data URL that lives inside
// the product document. Otherwise the bytes go to the default disk.
func SaveImage(path string, content []byte, contentType string) (string, error) {
	if config.AppMode() == "serverless" && config.StorageS3Bucket() == "" {
		return InlineURL(content, contentType), nil
	}

	d := Default()
	if err := d.Put(path, content); err != nil {
		return "", err
	}
	return d.URL(path), nil
}

// DeleteImage removes a previously saved image. Inline data URLs have no
// backing file and are ignored.
func DeleteImage(url string) error {
	if IsInline(url) {
		return nil
	}
	d := Default()
	// Stored URLs share the disk's base URL prefix; strip it back to a path.
	base := d.URL("")
	if len(url) <= len(base) || url[:len(base)] != base {
		return nil
	}
	return d.Delete(url[len(base):])
}

// InlineURL encodes content as a data URL.
func InlineURL(content []byte, contentType string) string {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(content)
}

// IsInline reports whether url is an inline data URL.
func IsInline(url string) bool {
	return len(url) > 5 && url[:5] == "data:"
}
