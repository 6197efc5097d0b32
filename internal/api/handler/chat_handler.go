package handler

import (
	log "log/slog"
	"mime/multipart"
	"path"
	"strconv"
	"strings"
	"time"

	"maurizone/internal/api/dto"
	"maurizone/internal/pkg/consts"
	"maurizone/internal/pkg/minio"
	"maurizone/internal/pkg/redis"
	"maurizone/internal/pkg/response"
	"maurizone/internal/pkg/util"
	"maurizone/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type ChatHandler struct {
	chatService service.ChatService
}

func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// OpenConversation 打开（或复用）与目标用户的会话
func (s *ChatHandler) OpenConversation(c *gin.Context) {
	var req dto.OpenConversationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	res, err := s.chatService.OpenConversation(c.Request.Context(), c.GetUint64("user_id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// ListConversations 会话列表
func (s *ChatHandler) ListConversations(c *gin.Context) {
	var query dto.PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, err)
		return
	}

	items, total, err := s.chatService.ListConversations(c.Request.Context(), c.GetUint64("user_id"), query.Page, query.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.PageDTO{Items: items, Total: total})
}

// GetConversation 会话详情
func (s *ChatHandler) GetConversation(c *gin.Context) {
	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := s.chatService.GetConversation(c.Request.Context(), c.GetUint64("user_id"), convID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetMessages 历史消息，游标分页
func (s *ChatHandler) GetMessages(c *gin.Context) {
	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	var query dto.MessagePageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, err)
		return
	}

	res, err := s.chatService.GetMessages(c.Request.Context(), c.GetUint64("user_id"), convID, query.Cursor, query.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// SendMessage 发送文本消息
func (s *ChatHandler) SendMessage(c *gin.Context) {
	var req dto.SendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	res, err := s.chatService.SendText(c.Request.Context(), c.GetUint64("user_id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// MarkRead 标记会话已读
func (s *ChatHandler) MarkRead(c *gin.Context) {
	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := s.chatService.MarkRead(c.Request.Context(), c.GetUint64("user_id"), convID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// DeleteConversation 删除会话
func (s *ChatHandler) DeleteConversation(c *gin.Context) {
	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err := s.chatService.DeleteConversation(c.Request.Context(), c.GetUint64("user_id"), convID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// UploadImage 发送图片消息，仅接受 jpeg/png/webp/gif 且不超过 5MB
func (s *ChatHandler) UploadImage(c *gin.Context) {
	s.upload(c, true)
}

// UploadAttachment 发送通用附件消息（图片或文档），不超过 10MB
func (s *ChatHandler) UploadAttachment(c *gin.Context) {
	s.upload(c, false)
}

func (s *ChatHandler) upload(c *gin.Context, imageOnly bool) {
	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	maxSize := int64(consts.MaxAttachmentSizeBytes)
	if imageOnly {
		maxSize = consts.MaxImageSizeBytes
	}
	if file.Size > maxSize {
		response.Error(c, service.ErrFileTooLarge)
		return
	}

	reader, err := file.Open()
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	defer func() { _ = reader.Close() }()

	contentType, err := util.GetSafeContentType(reader)
	if err != nil {
		response.Error(c, service.UnExpectedError)
		return
	}
	// DetectContentType 可能带 charset 参数，如 text/plain; charset=utf-8
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	if !mimeAllowed(contentType, imageOnly) {
		response.Error(c, service.ErrFileNotSupported)
		return
	}

	meta := &service.AttachmentMeta{
		MimeType:  contentType,
		SizeBytes: file.Size,
	}
	if strings.HasPrefix(contentType, consts.MimePrefixImage) {
		if w, h, err := util.GetImageDimensions(reader); err == nil {
			meta.Width, meta.Height = &w, &h
		} else {
			log.WarnContext(c.Request.Context(), "图片尺寸解析失败", "file", file.Filename, "err", err)
		}
	}
	if name := file.Filename; name != "" {
		meta.OriginalName = &name
	}

	objectKey, err := s.store(c, file, reader, contentType)
	if err != nil {
		log.ErrorContext(c.Request.Context(), "附件上传失败", "err", err)
		response.Error(c, service.UnExpectedError)
		return
	}
	meta.URL = minio.GetPublicURL(objectKey)

	var content *string
	if caption := strings.TrimSpace(c.PostForm("content")); caption != "" {
		content = &caption
	}

	res, err := s.chatService.SendAttachment(c.Request.Context(), c.GetUint64("user_id"), convID, content, meta)
	if err != nil {
		response.Error(c, err)
		return
	}

	// 消息已落库，撤销临时登记，清理任务不再回收该对象
	_ = redis.HDel(c.Request.Context(), consts.ChatUploadTempKey, objectKey)

	response.Success(c, res)
}

// store 对象先在 Redis 临时登记再上传，消息落库失败时由清理任务回收
func (s *ChatHandler) store(c *gin.Context, file *multipart.FileHeader, reader multipart.File, contentType string) (string, error) {
	objectName := time.Now().Format("2006/01/02/") + uuid.NewString() + path.Ext(file.Filename)

	entry, _ := json.Marshal(dto.UploadTempMetadata{
		Mime:      contentType,
		Size:      file.Size,
		CreatedAt: time.Now().Unix(),
	})
	_ = redis.HSet(c.Request.Context(), consts.ChatUploadTempKey, objectName, string(entry))

	return minio.UploadFile(c.Request.Context(), objectName, reader, file.Size, contentType)
}

func mimeAllowed(contentType string, imageOnly bool) bool {
	if _, ok := consts.AllowedImageMimes[contentType]; ok {
		return true
	}
	if imageOnly {
		return false
	}
	_, ok := consts.AllowedDocumentMimes[contentType]
	return ok
}
