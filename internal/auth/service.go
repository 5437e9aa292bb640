package auth

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"aparichit/backend/internal/domain"
	"aparichit/backend/internal/storage"
)

var (
	// ErrInvalidCredentials 凭证无效（用户名不存在与密码错误返回同一错误，不泄露账户存在性）
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AdminRepository 管理员存储接口
type AdminRepository interface {
	CreateAdmin(admin *domain.Admin) error
	GetAdminByUsername(username string) (*domain.Admin, error)
	CountAdmins() (int, error)
}

// Service 认证服务
type Service struct {
	adminRepo AdminRepository
	log       *zap.Logger
}

// NewService 创建认证服务
func NewService(adminRepo AdminRepository, log *zap.Logger) *Service {
	return &Service{
		adminRepo: adminRepo,
		log:       log,
	}
}

// Login 校验管理员凭证，成功时返回账户。
//
// 用户名不存在和密码错误统一返回 ErrInvalidCredentials。
func (s *Service) Login(username, password string) (*domain.Admin, error) {
	admin, err := s.adminRepo.GetAdminByUsername(username)
	if err != nil {
		// 对不存在的账户也执行一次哈希比较，避免时序差异
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$N9qo8uLOickgx2ZMRZoMye"), []byte(password))
		return nil, ErrInvalidCredentials
	}

	if !CheckPassword(password, admin.PassHash) {
		return nil, ErrInvalidCredentials
	}

	return admin, nil
}

// Seed 在不存在任何管理员账户时播种一个初始账户。
//
// 已有账户时不做任何修改；重复调用是安全的。
func (s *Service) Seed(username, password string) error {
	count, err := s.adminRepo.CountAdmins()
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.adminRepo.CreateAdmin(&domain.Admin{
		Username: username,
		PassHash: hash,
	})
	if errors.Is(err, storage.ErrAdminExists) {
		// 并发播种时另一实例已经创建
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	s.log.Info("管理员账户已播种", zap.String("username", username))
	return nil
}

// HashPassword 哈希密码
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword 检查密码是否匹配
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
