package storage

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/bazaar/config"
)

// Open builds the disk named by driver ("local", "s3" or "memory") from
// configuration.
func Open(ctx context.Context, driver string) (Disk, error) {
	switch driver {
	case "local", "":
		return NewLocalDisk(config.StorageLocalRoot(), config.StorageURL()), nil
	case "s3":
		return NewS3Disk(ctx, S3Config{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			BaseURL:  config.StorageS3URL(),
		})
	case "memory":
		return NewMemoryDisk(config.StorageURL()), nil
	default:
		return nil, fmt.Errorf("storage: unknown disk %q (supported: local, s3, memory)", driver)
	}
}
