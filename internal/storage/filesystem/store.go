package filesystem

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"aparichit/backend/internal/domain"
)

// Store 文件系统存储实现，负责附件文件与备份快照。
type Store struct {
	uploadDir string // 附件存储目录
	backupDir string // 备份快照目录
}

// NewStore 创建文件系统存储实例
func NewStore(uploadDir, backupDir string) (*Store, error) {
	for _, dir := range []string{uploadDir, backupDir} {
		if dir == "" {
			return nil, fmt.Errorf("storage directory must not be empty")
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
		}
	}

	return &Store{
		uploadDir: uploadDir,
		backupDir: backupDir,
	}, nil
}

// UploadDir 返回附件存储目录（用于静态文件服务挂载）。
func (s *Store) UploadDir() string {
	return s.uploadDir
}

// ========== 附件存储 ==========

// SaveUpload 将附件内容写入上传目录。
//
// 存储名为 "{uuid}_{清洗后的原始文件名}"，避免同名覆盖与路径注入；
// 返回上传目录内的相对路径。
func (s *Store) SaveUpload(filename string, content []byte) (string, error) {
	name := fmt.Sprintf("%s_%s", uuid.New().String(), sanitizeFilename(filename))

	fullPath := filepath.Join(s.uploadDir, name)
	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	return name, nil
}

// DeleteUpload 删除上传目录内的附件文件。
//
// relPath 必须是 SaveUpload 返回的相对路径；拒绝指向目录外的路径。
func (s *Store) DeleteUpload(relPath string) error {
	if relPath == "" {
		return nil
	}
	if filepath.Base(relPath) != relPath {
		return fmt.Errorf("invalid upload path: %s", relPath)
	}

	err := os.Remove(filepath.Join(s.uploadDir, relPath))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete upload: %w", err)
	}
	return nil
}

// ========== 备份存储 ==========

// WriteBackup 将完整快照序列化为 JSON 并写入备份目录。
//
// 文件名为 "backup_{unix毫秒}.json"，永不覆盖既有文件；返回备份文件名。
func (s *Store) WriteBackup(snapshot *domain.ExportSnapshot) (string, error) {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal backup: %w", err)
	}

	name := fmt.Sprintf("backup_%d.json", time.Now().UnixMilli())
	fullPath := filepath.Join(s.backupDir, name)

	// 同一毫秒内的重复调用追加序号，保证不覆盖
	for i := 1; ; i++ {
		if _, err := os.Stat(fullPath); os.IsNotExist(err) {
			break
		}
		name = fmt.Sprintf("backup_%d_%d.json", time.Now().UnixMilli(), i)
		fullPath = filepath.Join(s.backupDir, name)
	}

	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	return name, nil
}

// ListBackups 返回备份目录中的全部备份文件名。
func (s *Store) ListBackups() ([]string, error) {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), "backup_") && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// sanitizeFilename 清洗原始文件名中的路径分隔符与控制字符。
func sanitizeFilename(filename string) string {
	name := filepath.Base(filename)
	name = strings.Map(func(r rune) rune {
		switch {
		case r < 32:
			return -1
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' || r == '"' || r == '<' || r == '>' || r == '|':
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		name = "file"
	}
	return name
}
