package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"LinkUp/internal/model"
	"LinkUp/internal/pkg/errcode"
	"LinkUp/internal/service"
)

var errMediaTooLarge = errcode.InvalidArg("media file too large")

type PostHandler struct {
	svc          *service.PostService
	maxUploadLen int64
}

// PostForm multipart 表单或 JSON 均可，媒体文件字段名为 media
type PostForm struct {
	Type    *string `form:"type" json:"type"`
	Content *string `form:"content" json:"content"`
}

func NewPostHandler(svc *service.PostService, maxUploadMB int64) *PostHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 100
	}
	return &PostHandler{svc: svc, maxUploadLen: maxUploadMB << 20}
}

// formOverhead 媒体文件之外留给其他表单字段和 multipart 边界的余量
const formOverhead = 1 << 20

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

// bindPost 解析表单，带文件时返回打开的文件，调用方负责关闭
func (h *PostHandler) bindPost(c *gin.Context) (*PostForm, *service.MediaFile, multipart.File, error) {
	// 在落盘之前限制请求体大小
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadLen+formOverhead)

	var form PostForm
	if err := c.ShouldBind(&form); err != nil {
		if isTooLarge(err) {
			return nil, nil, nil, errMediaTooLarge
		}
		return nil, nil, nil, errcode.ErrInvalidParams
	}
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return &form, nil, nil, nil
	}

	fh, err := c.FormFile("media")
	if errors.Is(err, http.ErrMissingFile) {
		return &form, nil, nil, nil
	}
	if isTooLarge(err) {
		return nil, nil, nil, errMediaTooLarge
	}
	if err != nil {
		return nil, nil, nil, errcode.ErrInvalidParams
	}
	if fh.Size > h.maxUploadLen {
		return nil, nil, nil, errMediaTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, nil, errcode.Internal(err)
	}
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	media := &service.MediaFile{
		Filename:    fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
		Reader:      f,
	}
	return &form, media, f, nil
}

func (h *PostHandler) Create(c *gin.Context) {
	uid, creatorID, ok := actorAndCreator(c)
	if !ok {
		return
	}
	form, media, f, err := h.bindPost(c)
	if err != nil {
		writeError(c, err)
		return
	}
	if f != nil {
		defer f.Close()
	}
	if form.Type == nil {
		writeError(c, service.ErrInvalidPostType)
		return
	}

	post, err := h.svc.Create(c.Request.Context(), uid, creatorID, service.CreatePostInput{
		Type:    model.PostType(*form.Type),
		Content: form.Content,
		Media:   media,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// List 帖子列表，按创建时间倒序
func (h *PostHandler) List(c *gin.Context) {
	uid, creatorID, ok := actorAndCreator(c)
	if !ok {
		return
	}
	list, err := h.svc.List(c.Request.Context(), uid, creatorID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *PostHandler) Get(c *gin.Context) {
	uid, creatorID, ok := actorAndCreator(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "postId")
	if !ok {
		return
	}
	post, err := h.svc.Get(c.Request.Context(), uid, creatorID, postID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Update(c *gin.Context) {
	uid, creatorID, ok := actorAndCreator(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "postId")
	if !ok {
		return
	}
	form, media, f, err := h.bindPost(c)
	if err != nil {
		writeError(c, err)
		return
	}
	if f != nil {
		defer f.Close()
	}

	in := service.UpdatePostInput{Content: form.Content, Media: media}
	if form.Type != nil {
		t := model.PostType(*form.Type)
		in.Type = &t
	}
	post, err := h.svc.Update(c.Request.Context(), uid, creatorID, postID, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Delete(c *gin.Context) {
	uid, creatorID, ok := actorAndCreator(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "postId")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), uid, creatorID, postID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PostHandler) DeleteAll(c *gin.Context) {
	uid, creatorID, ok := actorAndCreator(c)
	if !ok {
		return
	}
	n, err := h.svc.DeleteAll(c.Request.Context(), uid, creatorID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}
