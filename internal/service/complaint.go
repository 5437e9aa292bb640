package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"aparichit/backend/internal/content"
	"aparichit/backend/internal/domain"
	"aparichit/backend/internal/monitoring"
	"aparichit/backend/internal/storage"
	"aparichit/backend/internal/storage/filesystem"
)

const (
	// MaxAttachments 单条诉状的附件数量上限
	MaxAttachments = 6
	// MaxAttachmentSize 单个附件大小上限
	MaxAttachmentSize = 5 * 1024 * 1024 // 5MB

	// DefaultSeverity 严重等级缺失或非法时的兜底值
	DefaultSeverity = 7

	timestampLayout = "2006-01-02T15:04:05.000Z"
)

var (
	// ErrTooManyAttachments 附件数量超限
	ErrTooManyAttachments = errors.New("too many attachments")
	// ErrAttachmentTooLarge 附件过大
	ErrAttachmentTooLarge = errors.New("attachment too large")
)

// ComplaintService 封装诉状相关业务操作。
type ComplaintService struct {
	repo    storage.ComplaintRepository
	files   *filesystem.Store
	metrics *monitoring.Metrics
	log     *zap.Logger

	now func() time.Time
}

// NewComplaintService 创建诉状业务服务。
func NewComplaintService(
	repo storage.ComplaintRepository,
	files *filesystem.Store,
	metrics *monitoring.Metrics,
	log *zap.Logger,
) *ComplaintService {
	return &ComplaintService{
		repo:    repo,
		files:   files,
		metrics: metrics,
		log:     log,
		now:     time.Now,
	}
}

// SubmitInput 定义提交诉状所需的输入。
//
// 除附件限制外不做拒绝式校验：缺失或非法的字段在服务端
// 宽松归一化后照常入库，表单侧才是严格校验的地方。
type SubmitInput struct {
	Category      string
	Severity      int
	Punishment    string
	ReporterName  string
	ReporterEmail string
	TargetName    string
	Identifier    string
	Text          string
	Attachments   []*domain.Attachment // Content 携带文件内容
}

// Submit 归一化输入、落盘附件并在单个事务内写库。
//
// 附件文件先写入文件系统，数据库事务失败时逐个补偿删除，
// 不留下无主文件。
func (s *ComplaintService) Submit(input SubmitInput) (*domain.Complaint, error) {
	if len(input.Attachments) > MaxAttachments {
		return nil, ErrTooManyAttachments
	}
	for _, a := range input.Attachments {
		if len(a.Content) > MaxAttachmentSize {
			return nil, ErrAttachmentTooLarge
		}
	}

	c := s.normalize(input)

	// 先落盘附件
	saved := make([]*domain.Attachment, 0, len(input.Attachments))
	for _, a := range input.Attachments {
		path, err := s.files.SaveUpload(a.Filename, a.Content)
		if err != nil {
			s.discardUploads(saved)
			return nil, fmt.Errorf("failed to save attachment: %w", err)
		}
		saved = append(saved, &domain.Attachment{
			Filename: a.Filename,
			Path:     path,
			Mime:     a.Mime,
		})
		s.metrics.RecordAttachment(int64(len(a.Content)))
	}

	id, err := s.repo.CreateComplaint(c, saved)
	if err != nil {
		s.discardUploads(saved)
		return nil, fmt.Errorf("failed to persist complaint: %w", err)
	}

	c.ID = id
	c.Attachments = saved
	for _, a := range c.Attachments {
		a.ComplaintID = id
	}

	s.metrics.RecordComplaintSubmitted(c.Category)
	s.log.Info("诉状已受理",
		zap.Int64("id", id),
		zap.String("category", c.Category),
		zap.Int("severity", c.Severity),
		zap.Int("attachments", len(saved)),
	)
	return c, nil
}

// List 返回全部诉状，最新在前。
func (s *ComplaintService) List() ([]*domain.Complaint, error) {
	return s.repo.ListComplaints()
}

// Get 返回单条诉状。
func (s *ComplaintService) Get(id int64) (*domain.Complaint, error) {
	return s.repo.GetComplaint(id)
}

// Export 返回当前全部诉状的完整快照。
func (s *ComplaintService) Export() (*domain.ExportSnapshot, error) {
	complaints, err := s.repo.ListComplaints()
	if err != nil {
		return nil, fmt.Errorf("failed to list complaints: %w", err)
	}

	s.metrics.RecordExport()
	return &domain.ExportSnapshot{
		ExportedAt: s.now().UTC().Format(timestampLayout),
		Complaints: complaints,
	}, nil
}

// Backup 将完整快照写入备份目录，返回备份文件名。
func (s *ComplaintService) Backup() (string, error) {
	complaints, err := s.repo.ListComplaints()
	if err != nil {
		return "", fmt.Errorf("failed to list complaints: %w", err)
	}

	name, err := s.files.WriteBackup(&domain.ExportSnapshot{
		ExportedAt: s.now().UTC().Format(timestampLayout),
		Complaints: complaints,
	})
	if err != nil {
		return "", err
	}

	s.metrics.RecordBackup()
	s.log.Info("备份已写入", zap.String("file", name), zap.Int("complaints", len(complaints)))
	return name, nil
}

// Delete 删除诉状：数据库行在事务内级联删除，附件文件
// 随后尽力删除，文件删除失败只记日志不回滚。
func (s *ComplaintService) Delete(id int64) error {
	removed, err := s.repo.DeleteComplaint(id)
	if err != nil {
		return err
	}

	for _, a := range removed {
		if err := s.files.DeleteUpload(a.Path); err != nil {
			s.log.Warn("附件文件删除失败",
				zap.Int64("complaint_id", id),
				zap.String("path", a.Path),
				zap.Error(err),
			)
			s.metrics.RecordError("filesystem")
		}
	}

	s.metrics.RecordComplaintDeleted()
	return nil
}

// normalize 宽松归一化提交内容。
//
// 未知或缺失的类别回退到兜底类别；严重等级超出 1-10 用兜底值；
// 惩罚文本缺失时从类别候选中现场选取。
func (s *ComplaintService) normalize(input SubmitInput) *domain.Complaint {
	cat := content.Lookup(strings.TrimSpace(input.Category))

	severity := input.Severity
	if severity < 1 || severity > 10 {
		severity = DefaultSeverity
	}

	punishment := strings.TrimSpace(input.Punishment)
	if punishment == "" {
		punishment = cat.RandomPunishment()
	}

	return &domain.Complaint{
		Timestamp:     s.now().UTC().Format(timestampLayout),
		Category:      cat.Key,
		Severity:      severity,
		Punishment:    punishment,
		ReporterName:  strings.TrimSpace(input.ReporterName),
		ReporterEmail: strings.TrimSpace(input.ReporterEmail),
		TargetName:    strings.TrimSpace(input.TargetName),
		Identifier:    strings.TrimSpace(input.Identifier),
		Text:          strings.TrimSpace(input.Text),
		Attachments:   []*domain.Attachment{},
	}
}

// discardUploads 补偿删除已落盘的附件文件。
func (s *ComplaintService) discardUploads(saved []*domain.Attachment) {
	for _, a := range saved {
		if err := s.files.DeleteUpload(a.Path); err != nil {
			s.log.Warn("补偿删除失败", zap.String("path", a.Path), zap.Error(err))
		}
	}
}
