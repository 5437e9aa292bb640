package memory

import (
	"sort"
	"sync"

	"aparichit/backend/internal/domain"
	"aparichit/backend/internal/storage"
)

// Store 使用内存保存诉状与管理员数据，主要用于开发验证和测试。
type Store struct {
	mu          sync.RWMutex
	complaints  map[int64]*domain.Complaint
	attachments map[int64][]*domain.Attachment // complaintID -> attachments
	admins      map[string]*domain.Admin       // username -> admin

	nextComplaintID  int64
	nextAttachmentID int64
	nextAdminID      int64
}

// NewStore 创建一个内存存储实例。
func NewStore() *Store {
	return &Store{
		complaints:       make(map[int64]*domain.Complaint),
		attachments:      make(map[int64][]*domain.Attachment),
		admins:           make(map[string]*domain.Admin),
		nextComplaintID:  1,
		nextAttachmentID: 1,
		nextAdminID:      1,
	}
}

// CreateComplaint 原子地写入诉状及其全部附件行，返回新诉状ID。
func (s *Store) CreateComplaint(c *domain.Complaint, attachments []*domain.Attachment) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextComplaintID
	s.nextComplaintID++

	stored := *c
	stored.ID = id
	stored.Attachments = nil
	s.complaints[id] = &stored

	rows := make([]*domain.Attachment, 0, len(attachments))
	for _, a := range attachments {
		row := *a
		row.ID = s.nextAttachmentID
		s.nextAttachmentID++
		row.ComplaintID = id
		row.Content = nil
		rows = append(rows, &row)
	}
	s.attachments[id] = rows

	return id, nil
}

// GetComplaint 返回指定ID的诉状，含附件列表。
func (s *Store) GetComplaint(id int64) (*domain.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.complaints[id]
	if !ok {
		return nil, storage.ErrComplaintNotFound
	}
	return s.cloneComplaint(c), nil
}

// ListComplaints 返回全部诉状，按ID倒序（最新在前），含附件列表。
func (s *Store) ListComplaints() ([]*domain.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Complaint, 0, len(s.complaints))
	for _, c := range s.complaints {
		result = append(result, s.cloneComplaint(c))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID > result[j].ID
	})
	return result, nil
}

// DeleteComplaint 删除诉状及其附件行，返回被删除的附件行供调用方清理文件。
func (s *Store) DeleteComplaint(id int64) ([]*domain.Attachment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.complaints[id]; !ok {
		return nil, storage.ErrComplaintNotFound
	}

	removed := s.attachments[id]
	delete(s.complaints, id)
	delete(s.attachments, id)
	if removed == nil {
		removed = []*domain.Attachment{}
	}
	return removed, nil
}

// CountComplaints 返回诉状总数。
func (s *Store) CountComplaints() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.complaints), nil
}

// CreateAdmin 创建管理员账户；用户名已存在时返回 ErrAdminExists。
func (s *Store) CreateAdmin(admin *domain.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.admins[admin.Username]; ok {
		return storage.ErrAdminExists
	}

	admin.ID = s.nextAdminID
	s.nextAdminID++

	stored := *admin
	s.admins[admin.Username] = &stored
	return nil
}

// GetAdminByUsername 按用户名查找管理员账户。
func (s *Store) GetAdminByUsername(username string) (*domain.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	admin, ok := s.admins[username]
	if !ok {
		return nil, storage.ErrAdminNotFound
	}
	clone := *admin
	return &clone, nil
}

// CountAdmins 返回管理员账户数量。
func (s *Store) CountAdmins() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.admins), nil
}

// Close 关闭存储（内存存储为空操作）。
func (s *Store) Close() error {
	return nil
}

// Health 检查存储健康状态（内存存储总是健康）。
func (s *Store) Health() error {
	return nil
}

// cloneComplaint 深拷贝诉状及其附件，避免调用方修改内部状态。
// 调用方必须持有读锁。
func (s *Store) cloneComplaint(c *domain.Complaint) *domain.Complaint {
	clone := *c
	rows := s.attachments[c.ID]
	clone.Attachments = make([]*domain.Attachment, 0, len(rows))
	for _, a := range rows {
		row := *a
		clone.Attachments = append(clone.Attachments, &row)
	}
	return &clone
}
