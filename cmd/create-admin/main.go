package main

import (
	"fmt"
	"os"
	"time"

	"aparichit/backend/internal/auth"
	"aparichit/backend/internal/config"
	"aparichit/backend/internal/domain"
	"aparichit/backend/internal/storage"
	sqlstore "aparichit/backend/internal/storage/sql"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: create-admin <username> <password>")
		os.Exit(1)
	}

	username := os.Args[1]
	password := os.Args[2]

	if len(password) < 8 {
		fmt.Println("Password must be at least 8 characters")
		os.Exit(1)
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 打开存储（与服务端相同的数据库）
	store, err := openStore(cfg)
	if err != nil {
		fmt.Printf("Failed to open storage: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	// 哈希密码
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		fmt.Printf("Failed to hash password: %v\n", err)
		os.Exit(1)
	}

	admin := &domain.Admin{
		Username:  username,
		PassHash:  hashedPassword,
		CreatedAt: time.Now().UTC(),
	}

	if err := store.CreateAdmin(admin); err != nil {
		if err == storage.ErrAdminExists {
			fmt.Printf("Admin %q already exists\n", username)
		} else {
			fmt.Printf("Failed to create admin: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Printf("✓ Admin account created successfully!\n")
	fmt.Printf("  ID:       %d\n", admin.ID)
	fmt.Printf("  Username: %s\n", admin.Username)
}

// openStore 按配置打开与服务端一致的数据库
func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Database.Type {
	case "postgres":
		return sqlstore.NewStore(
			"postgres",
			cfg.Database.DSN,
			cfg.Database.MaxOpenConns,
			cfg.Database.MaxIdleConns,
			cfg.Database.ConnMaxLifetime,
		)
	default:
		// 内存模式下创建的账户不会持久化，这里统一走 SQLite
		return sqlstore.NewStore(
			"sqlite",
			cfg.Database.Path,
			cfg.Database.MaxOpenConns,
			cfg.Database.MaxIdleConns,
			cfg.Database.ConnMaxLifetime,
		)
	}
}
