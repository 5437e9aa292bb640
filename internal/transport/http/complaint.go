package httptransport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"aparichit/backend/internal/content"
	"aparichit/backend/internal/domain"
	"aparichit/backend/internal/service"
	"aparichit/backend/internal/storage"
)

// ComplaintHandler 处理诉状相关的 HTTP 请求
type ComplaintHandler struct {
	complaints *service.ComplaintService
	log        *zap.Logger
}

// NewComplaintHandler 创建诉状处理器实例
func NewComplaintHandler(complaints *service.ComplaintService, log *zap.Logger) *ComplaintHandler {
	return &ComplaintHandler{
		complaints: complaints,
		log:        log,
	}
}

// Submit 受理浏览器表单的 multipart 提交
//
// 表单字段: reporterName, reporterEmail, targetName, identifier, text,
// category, severity, punishment；文件字段 attachments（最多 6 个）。
// 成功时返回 {"id": <新ID>}。
func (h *ComplaintHandler) Submit(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form"})
		return
	}

	severity, _ := strconv.Atoi(c.PostForm("severity"))

	input := service.SubmitInput{
		Category:      c.PostForm("category"),
		Severity:      severity,
		Punishment:    c.PostForm("punishment"),
		ReporterName:  c.PostForm("reporterName"),
		ReporterEmail: c.PostForm("reporterEmail"),
		TargetName:    c.PostForm("targetName"),
		Identifier:    c.PostForm("identifier"),
		Text:          c.PostForm("text"),
	}

	for _, fh := range form.File["attachments"] {
		if fh.Size > service.MaxAttachmentSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "File too large"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			h.log.Error("读取上传文件失败", zap.String("filename", fh.Filename), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}
		input.Attachments = append(input.Attachments, &domain.Attachment{
			Filename: fh.Filename,
			Mime:     fh.Header.Get("Content-Type"),
			Content:  data,
		})
	}

	result, err := h.complaints.Submit(input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTooManyAttachments):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Too many files"})
		case errors.Is(err, service.ErrAttachmentTooLarge):
			c.JSON(http.StatusBadRequest, gin.H{"error": "File too large"})
		default:
			h.log.Error("诉状入库失败", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "DB error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": result.ID})
}

// List 返回全部诉状，最新在前（需认证）
func (h *ComplaintHandler) List(c *gin.Context) {
	complaints, err := h.complaints.List()
	if err != nil {
		h.log.Error("查询诉状失败", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB"})
		return
	}
	c.JSON(http.StatusOK, complaints)
}

// Export 以下载附件的形式返回完整快照（需认证）
//
// Content-Disposition 文件名为 aparichit_export_<日期>.json。
func (h *ComplaintHandler) Export(c *gin.Context) {
	snapshot, err := h.complaints.Export()
	if err != nil {
		h.log.Error("导出失败", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Export failed"})
		return
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Export failed"})
		return
	}

	name := fmt.Sprintf("aparichit_export_%s.json", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", name))
	c.Data(http.StatusOK, "application/json", data)
}

// Backup 将当前快照写入备份目录（需认证）
//
// 成功时返回 {"ok": true, "file": "<备份文件名>"}。
func (h *ComplaintHandler) Backup(c *gin.Context) {
	name, err := h.complaints.Backup()
	if err != nil {
		h.log.Error("备份失败", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Backup failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "file": name})
}

// Delete 删除一条诉状及其附件（需认证）
func (h *ComplaintHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	if err := h.complaints.Delete(id); err != nil {
		if errors.Is(err, storage.ErrComplaintNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		h.log.Error("删除诉状失败", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Categories 返回静态惩罚内容表（公开）
func (h *ComplaintHandler) Categories(c *gin.Context) {
	keys := content.Keys()
	result := make(map[string]content.Category, len(keys))
	for _, k := range keys {
		cat, _ := content.Get(k)
		result[k] = cat
	}
	c.JSON(http.StatusOK, result)
}
