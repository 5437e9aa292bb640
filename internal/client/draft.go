package client

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	draftsKey    = "aparichitComplaints"
	analyticsKey = "aparichitAnalytics"

	// StatusPending 本地草稿的初始状态
	StatusPending = "PENDING"
)

// DraftAttachment 以内联 data URL 形式保存的附件副本。
type DraftAttachment struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Data string `json:"data"` // data URL（base64 编码）
}

// DeviceInfo 草稿创建时的设备信息。
type DeviceInfo struct {
	UserAgent string `json:"userAgent"`
	Language  string `json:"language"`
	Timestamp string `json:"timestamp"`
}

// Draft 表示服务端不可达时排队在本地的一条诉状草稿。
type Draft struct {
	ID            int64             `json:"id"` // Unix 毫秒时间戳
	Timestamp     string            `json:"timestamp"`
	Status        string            `json:"status"`
	Category      string            `json:"category"`
	Severity      int               `json:"severity"`
	Punishment    string            `json:"punishment"`
	ReporterName  string            `json:"reporterName"`
	ReporterEmail string            `json:"reporterEmail"`
	TargetName    string            `json:"targetName"`
	Identifier    string            `json:"identifier"`
	Text          string            `json:"text"`
	Attachments   []DraftAttachment `json:"attachments"`
	Device        DeviceInfo        `json:"ipInfo"`
}

// DraftStore 基于单个 JSON 文件的键值草稿存储。
//
// 文件内容是 {键: 值} 映射，草稿列表与分析计数各占一个固定键，
// 与浏览器 localStorage 的使用方式一致。
type DraftStore struct {
	mu   sync.Mutex
	path string

	now func() time.Time
}

// NewDraftStore 创建草稿存储；父目录会自动创建。
func NewDraftStore(path string) (*DraftStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create draft directory: %w", err)
		}
	}
	return &DraftStore{path: path, now: time.Now}, nil
}

// Add 将一条草稿追加到本地队列并更新分析计数。
//
// 草稿ID为当前 Unix 毫秒时间戳，与服务端自增ID处于不同的值域。
func (s *DraftStore) Add(draft Draft) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kv, err := s.load()
	if err != nil {
		return Draft{}, err
	}

	drafts, err := decodeDrafts(kv)
	if err != nil {
		return Draft{}, err
	}

	draft.ID = s.now().UnixMilli()
	if draft.Timestamp == "" {
		draft.Timestamp = s.now().Format("2006-01-02 15:04:05")
	}
	if draft.Status == "" {
		draft.Status = StatusPending
	}
	if draft.Attachments == nil {
		draft.Attachments = []DraftAttachment{}
	}
	drafts = append(drafts, draft)

	analytics, err := decodeAnalytics(kv)
	if err != nil {
		return Draft{}, err
	}
	analytics[draft.Category]++

	if err := encodeInto(kv, draftsKey, drafts); err != nil {
		return Draft{}, err
	}
	if err := encodeInto(kv, analyticsKey, analytics); err != nil {
		return Draft{}, err
	}
	if err := s.save(kv); err != nil {
		return Draft{}, err
	}
	return draft, nil
}

// All 返回全部排队草稿。
func (s *DraftStore) All() ([]Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kv, err := s.load()
	if err != nil {
		return nil, err
	}
	return decodeDrafts(kv)
}

// ByCategory 返回指定类别的草稿。
func (s *DraftStore) ByCategory(category string) ([]Draft, error) {
	all, err := s.All()
	if err != nil {
		return nil, err
	}

	matched := make([]Draft, 0)
	for _, d := range all {
		if d.Category == category {
			matched = append(matched, d)
		}
	}
	return matched, nil
}

// Delete 按ID删除一条草稿；ID不存在时为空操作。
func (s *DraftStore) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kv, err := s.load()
	if err != nil {
		return err
	}
	drafts, err := decodeDrafts(kv)
	if err != nil {
		return err
	}

	kept := drafts[:0]
	for _, d := range drafts {
		if d.ID != id {
			kept = append(kept, d)
		}
	}

	if err := encodeInto(kv, draftsKey, kept); err != nil {
		return err
	}
	return s.save(kv)
}

// Analytics 返回按类别累计的提交计数。
//
// 计数在草稿入队时累加，草稿删除后保留，作为历史统计。
func (s *DraftStore) Analytics() (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kv, err := s.load()
	if err != nil {
		return nil, err
	}
	return decodeAnalytics(kv)
}

// Clear 清空草稿队列（分析计数保留）。
func (s *DraftStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kv, err := s.load()
	if err != nil {
		return err
	}
	delete(kv, draftsKey)
	return s.save(kv)
}

// EncodeAttachment 将附件内容编码为 data URL 形式的内联副本。
func EncodeAttachment(name, mime string, content []byte) DraftAttachment {
	return DraftAttachment{
		Name: name,
		Type: mime,
		Data: fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(content)),
	}
}

func (s *DraftStore) load() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return make(map[string]json.RawMessage), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read draft store: %w", err)
	}

	kv := make(map[string]json.RawMessage)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &kv); err != nil {
			return nil, fmt.Errorf("failed to parse draft store: %w", err)
		}
	}
	return kv, nil
}

func (s *DraftStore) save(kv map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(kv, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal draft store: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write draft store: %w", err)
	}
	return nil
}

func decodeDrafts(kv map[string]json.RawMessage) ([]Draft, error) {
	raw, ok := kv[draftsKey]
	if !ok {
		return []Draft{}, nil
	}
	var drafts []Draft
	if err := json.Unmarshal(raw, &drafts); err != nil {
		return nil, fmt.Errorf("failed to decode drafts: %w", err)
	}
	return drafts, nil
}

func decodeAnalytics(kv map[string]json.RawMessage) (map[string]int, error) {
	analytics := make(map[string]int)
	raw, ok := kv[analyticsKey]
	if !ok {
		return analytics, nil
	}
	if err := json.Unmarshal(raw, &analytics); err != nil {
		return nil, fmt.Errorf("failed to decode analytics: %w", err)
	}
	return analytics, nil
}

func encodeInto(kv map[string]json.RawMessage, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	kv[key] = raw
	return nil
}
