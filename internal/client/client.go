// Package client 是提交端的 Go 实现：表单校验、惩罚选取、
// 向服务端的 multipart 提交，以及服务端不可达时的本地草稿兜底。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"aparichit/backend/internal/content"
)

const (
	// MaxAttachmentSize 单个附件的提交前检查上限
	MaxAttachmentSize = 5 * 1024 * 1024 // 5MB

	sessionKey = "currentComplaint"
)

// 校验错误按表单字段顺序触发，文案与表单提示一致。
var (
	ErrMissingName   = errors.New("कृपया अपना नाम दर्ज करें।")
	ErrInvalidEmail  = errors.New("कृपया वैध ईमेल दर्ज करें।")
	ErrMissingTarget = errors.New("कृपया जिस व्यक्ति/संस्था का नाम दर्ज करना है वह भरें।")
	ErrTextTooShort  = errors.New("⚠ कम से कम 10 शब्द लिखो!")
	ErrFileTooLarge  = errors.New("Each attachment must be <= 5MB")
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// Attachment 待提交的附件。
type Attachment struct {
	Name    string
	Mime    string
	Content []byte
}

// Submission 一次表单提交的原始输入。
type Submission struct {
	ReporterName  string
	ReporterEmail string
	TargetName    string
	Identifier    string
	Text          string
	Category      string
	Attachments   []Attachment
}

// trimmed 返回字段裁剪后的副本，提交时发送裁剪后的值。
func (s Submission) trimmed() Submission {
	s.ReporterName = strings.TrimSpace(s.ReporterName)
	s.ReporterEmail = strings.TrimSpace(s.ReporterEmail)
	s.TargetName = strings.TrimSpace(s.TargetName)
	s.Identifier = strings.TrimSpace(s.Identifier)
	s.Text = strings.TrimSpace(s.Text)
	s.Category = strings.TrimSpace(s.Category)
	return s
}

// OutcomeKind 提交结果的判别标签。
type OutcomeKind int

const (
	// OutcomePersisted 服务端已受理，ID 为服务端分配的诉状ID
	OutcomePersisted OutcomeKind = iota
	// OutcomeQueuedLocally 服务端不可达，草稿已排队，ID 为本地毫秒ID
	OutcomeQueuedLocally
)

// Outcome 提交结果：要么服务端持久化，要么本地排队，不存在
// 第三种状态；两个ID值域不同（自增 vs Unix毫秒）。
type Outcome struct {
	Kind       OutcomeKind
	ID         int64
	Category   string
	Severity   int
	Punishment string
}

// Client 提交客户端。
type Client struct {
	baseURL string
	http    *http.Client
	drafts  *DraftStore
	session *SessionStore
	device  DeviceInfo
}

// NewClient 创建提交客户端。
func NewClient(baseURL string, drafts *DraftStore) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		drafts:  drafts,
		session: NewSessionStore(),
		device: DeviceInfo{
			UserAgent: "aparichit-client/1.0",
			Language:  "hi-IN",
		},
	}
}

// Session 返回会话存储（确认页从中读取最近一次提交）。
func (c *Client) Session() *SessionStore {
	return c.session
}

// Validate 按表单字段顺序校验输入，返回第一个失败项。
//
// 所有字段先裁剪首尾空白再检查；正文检查的是字符数下限
// （按 Unicode 字符计数），提示文案沿用表单原文（"शब्द"）。
func (c *Client) Validate(s Submission) error {
	if strings.TrimSpace(s.ReporterName) == "" {
		return ErrMissingName
	}
	email := strings.TrimSpace(s.ReporterEmail)
	if email == "" || !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	if strings.TrimSpace(s.TargetName) == "" {
		return ErrMissingTarget
	}
	if utf8.RuneCountInString(strings.TrimSpace(s.Text)) < 10 {
		return ErrTextTooShort
	}
	for _, a := range s.Attachments {
		if len(a.Content) > MaxAttachmentSize {
			return ErrFileTooLarge
		}
	}
	return nil
}

// Submit 校验并提交诉状。
//
// 先尝试服务端；网络错误或非 2xx 响应时，同一份内容转存
// 本地草稿队列（附件以内联副本保存）。提交至多发生一次：
// 服务端确认受理后不会再写本地队列。
func (c *Client) Submit(ctx context.Context, s Submission) (*Outcome, error) {
	if err := c.Validate(s); err != nil {
		return nil, err
	}
	s = s.trimmed()

	// 惩罚与严重等级取自内容表的快照
	cat := content.Lookup(s.Category)
	punishment := cat.RandomPunishment()

	outcome, err := c.submitRemote(ctx, s, cat, punishment)
	if err != nil {
		outcome, err = c.queueLocally(s, cat, punishment)
		if err != nil {
			return nil, err
		}
	}

	c.session.SetCurrent(outcome)
	return outcome, nil
}

// submitRemote 以 multipart 表单向服务端提交。
func (c *Client) submitRemote(ctx context.Context, s Submission, cat content.Category, punishment string) (*Outcome, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := map[string]string{
		"text":          s.Text,
		"category":      cat.Key,
		"severity":      strconv.Itoa(cat.Severity),
		"punishment":    punishment,
		"reporterName":  s.ReporterName,
		"reporterEmail": s.ReporterEmail,
		"targetName":    s.TargetName,
		"identifier":    s.Identifier,
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	for _, a := range s.Attachments {
		fw, err := mw.CreateFormFile("attachments", a.Name)
		if err != nil {
			return nil, err
		}
		if _, err := fw.Write(a.Content); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/complaints", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var body struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &Outcome{
		Kind:       OutcomePersisted,
		ID:         body.ID,
		Category:   cat.Key,
		Severity:   cat.Severity,
		Punishment: punishment,
	}, nil
}

// queueLocally 将提交转存本地草稿队列。
func (c *Client) queueLocally(s Submission, cat content.Category, punishment string) (*Outcome, error) {
	atts := make([]DraftAttachment, 0, len(s.Attachments))
	for _, a := range s.Attachments {
		atts = append(atts, EncodeAttachment(a.Name, a.Mime, a.Content))
	}

	device := c.device
	device.Timestamp = time.Now().UTC().Format(time.RFC3339)

	draft, err := c.drafts.Add(Draft{
		Category:      cat.Key,
		Severity:      cat.Severity,
		Punishment:    punishment,
		ReporterName:  s.ReporterName,
		ReporterEmail: s.ReporterEmail,
		TargetName:    s.TargetName,
		Identifier:    s.Identifier,
		Text:          s.Text,
		Attachments:   atts,
		Device:        device,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to queue draft: %w", err)
	}

	return &Outcome{
		Kind:       OutcomeQueuedLocally,
		ID:         draft.ID,
		Category:   cat.Key,
		Severity:   cat.Severity,
		Punishment: punishment,
	}, nil
}

// SessionStore 保存最近一次提交结果，供确认页读取。
//
// 会话级存储：进程内有效，固定单键。
type SessionStore struct {
	mu      sync.RWMutex
	entries map[string]*Outcome
}

// NewSessionStore 创建会话存储。
func NewSessionStore() *SessionStore {
	return &SessionStore{entries: make(map[string]*Outcome)}
}

// SetCurrent 记录最近一次提交结果。
func (s *SessionStore) SetCurrent(o *Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sessionKey] = o
}

// Current 返回最近一次提交结果；没有时返回 nil。
func (s *SessionStore) Current() *Outcome {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[sessionKey]
}

// Clear 清除会话内容。
func (s *SessionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionKey)
}
