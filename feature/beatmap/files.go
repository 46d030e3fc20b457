package beatmap

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"beatmap-manager/core/storage"
)

// FileManager keeps the raw .osu files of resolved beatmaps available in
// object storage, downloading them from upstream on demand.
type FileManager struct {
	client storage.Client
	bucket string
	api    Catalogue
	logger *zap.Logger
}

// NewFileManager creates a file manager.
func NewFileManager(client storage.Client, bucket string, api Catalogue, logger *zap.Logger) *FileManager {
	return &FileManager{client: client, bucket: bucket, api: api, logger: logger}
}

func osuObjectName(beatmapID int) string {
	return "osu/" + strconv.Itoa(beatmapID) + ".osu"
}

// EnsureOsuFile makes sure the .osu file for a beatmap is present in object
// storage. With a non-empty expectedMD5 the stored copy is verified against
// it and replaced when outdated — the usual way of forcing the latest
// version after a map update. Reports whether the file is available for use.
func (f *FileManager) EnsureOsuFile(ctx context.Context, beatmapID int, expectedMD5 string) (bool, error) {
	stored, err := f.fetchStored(ctx, beatmapID)
	if err != nil {
		return false, err
	}

	if stored != nil {
		if expectedMD5 == "" {
			return true, nil
		}
		sum := md5.Sum(stored)
		if hex.EncodeToString(sum[:]) == expectedMD5 {
			return true, nil
		}
		f.logger.Info("stored .osu file outdated, refreshing",
			zap.Int("beatmap_id", beatmapID),
		)
	}

	latest, err := f.api.GetOsuFile(ctx, beatmapID)
	if err != nil {
		return false, fmt.Errorf("download .osu for %d: %w", beatmapID, err)
	}

	_, err = f.client.PutObject(ctx, f.bucket, osuObjectName(beatmapID),
		bytes.NewReader(latest), int64(len(latest)), minio.PutObjectOptions{
			ContentType: "text/plain",
		})
	if err != nil {
		return false, fmt.Errorf("store .osu for %d: %w", beatmapID, err)
	}

	return true, nil
}

// RemoveOsuFile deletes the stored .osu file for a beatmap, if any. Minio
// treats removing a missing object as success, which suits cleanup paths.
func (f *FileManager) RemoveOsuFile(ctx context.Context, beatmapID int) error {
	return f.client.RemoveObject(ctx, f.bucket, osuObjectName(beatmapID), minio.RemoveObjectOptions{})
}

// OsuFile returns the stored .osu file for a beatmap, or nil when absent.
func (f *FileManager) OsuFile(ctx context.Context, beatmapID int) ([]byte, error) {
	return f.fetchStored(ctx, beatmapID)
}

// fetchStored reads the stored .osu file. Absence is reported as nil bytes,
// not an error: object storage only tells us apart on read.
func (f *FileManager) fetchStored(ctx context.Context, beatmapID int) ([]byte, error) {
	obj, err := f.client.GetObject(ctx, f.bucket, osuObjectName(beatmapID), minio.GetObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, nil
		}
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return nil, nil
		}
		return nil, err
	}

	return data, nil
}
