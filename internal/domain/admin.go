package domain

import "time"

// Admin 表示唯一的管理员账户。
//
// 仅在首次启动且不存在任何账户时播种一次，之后不再创建；
// 本服务不提供密码轮换。
type Admin struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Username  string    `json:"username" gorm:"uniqueIndex;type:varchar(100);not null"`
	PassHash  string    `json:"-" gorm:"type:varchar(255);not null"` // bcrypt 哈希，不返回给前端
	CreatedAt time.Time `json:"createdAt"`
}
