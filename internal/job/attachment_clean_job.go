package job

import (
	"context"
	log "log/slog"
	"time"

	"maurizone/internal/api/dto"
	"maurizone/internal/pkg/consts"
	"maurizone/internal/pkg/minio"
	"maurizone/internal/pkg/redis"

	"github.com/goccy/go-json"
)

// AttachmentCleanupJob 回收上传后未成功挂到消息上的孤儿附件。
// 正常流程会在消息落库后撤销临时登记，登记超过 24 小时仍在即视为孤儿。
type AttachmentCleanupJob struct{}

func NewAttachmentCleanupJob() *AttachmentCleanupJob {
	return &AttachmentCleanupJob{}
}

func (s *AttachmentCleanupJob) Run() {
	ctx := context.Background()
	log.Info("start attachment cleanup job")

	entries, err := redis.HGetAll(ctx, consts.ChatUploadTempKey)
	if err != nil {
		log.Error("failed to get upload temp hash", "err", err)
		return
	}

	now := time.Now().Unix()
	expiration := int64(24 * 60 * 60)
	count := 0

	for objectKey, val := range entries {
		var meta dto.UploadTempMetadata
		if err := json.Unmarshal([]byte(val), &meta); err != nil {
			log.Warn("invalid upload meta format", "objectKey", objectKey)
			continue
		}

		if now-meta.CreatedAt <= expiration {
			continue
		}

		if err = minio.DeleteFile(ctx, objectKey); err != nil {
			log.Error("failed to delete orphan attachment from minio", "objectKey", objectKey, "err", err)
			continue
		}
		if err = redis.HDel(ctx, consts.ChatUploadTempKey, objectKey); err != nil {
			log.Error("failed to remove upload entry from redis", "objectKey", objectKey, "err", err)
		}

		count++
		log.Info("cleanup orphan attachment", "objectKey", objectKey, "mime", meta.Mime)
	}

	if count > 0 {
		log.Info("attachment cleanup job finished", "cleaned_count", count)
	}
}
