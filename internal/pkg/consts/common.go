package consts

const (
	MimePrefixImage = "image"
)

// AllowedImageMimes 图片消息允许的类型 (jpeg/png/webp/gif)
var AllowedImageMimes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

// AllowedDocumentMimes 通用附件额外允许的文档类型
var AllowedDocumentMimes = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"text/plain": {},
}

const (
	MaxImageSizeBytes      = 5 * 1024 * 1024
	MaxAttachmentSizeBytes = 10 * 1024 * 1024
	MaxMessageContentLen   = 4000
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)
