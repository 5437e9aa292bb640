package storage

import (
	"errors"

	"aparichit/backend/internal/domain"
)

var (
	// ErrComplaintNotFound 诉状未找到错误
	ErrComplaintNotFound = errors.New("complaint not found")
	// ErrAdminNotFound 管理员未找到错误
	ErrAdminNotFound = errors.New("admin not found")
	// ErrAdminExists 管理员已存在错误
	ErrAdminExists = errors.New("admin already exists")
)

// ComplaintRepository 定义诉状数据存取操作。
//
// CreateComplaint 在同一事务内写入诉状及其全部附件行；
// 任一写入失败时整体回滚，不留下部分记录。
type ComplaintRepository interface {
	CreateComplaint(c *domain.Complaint, attachments []*domain.Attachment) (int64, error)
	GetComplaint(id int64) (*domain.Complaint, error)
	ListComplaints() ([]*domain.Complaint, error) // 按 id 倒序，含附件
	DeleteComplaint(id int64) ([]*domain.Attachment, error)
	CountComplaints() (int, error)
}

// AdminRepository 定义管理员账户数据存取操作。
type AdminRepository interface {
	CreateAdmin(admin *domain.Admin) error
	GetAdminByUsername(username string) (*domain.Admin, error)
	CountAdmins() (int, error)
}

// Store 定义完整的存储接口。
type Store interface {
	ComplaintRepository
	AdminRepository

	// 工具方法
	Close() error
	Health() error
}
