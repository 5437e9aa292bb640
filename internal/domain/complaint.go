package domain

// Complaint 表示一条已提交的诉状记录。
//
// 严重等级在提交时从类别表复制（快照语义），之后修改类别表
// 不会回写已存储的记录。
type Complaint struct {
	ID            int64         `json:"id" gorm:"primaryKey;autoIncrement"`
	Timestamp     string        `json:"timestamp" gorm:"type:varchar(40)"`      // 服务端写入时间，ISO-8601
	Category      string        `json:"category" gorm:"type:varchar(64);index"` // 类别键（指向惩罚内容表）
	Severity      int           `json:"severity"`                               // 1-10，提交时的快照值
	Punishment    string        `json:"punishment" gorm:"type:text"`            // 从类别候选列表中选出的惩罚文本
	ReporterName  string        `json:"reporterName" gorm:"type:varchar(255)"`  // 举报人姓名
	ReporterEmail string        `json:"reporterEmail" gorm:"type:varchar(255)"` // 举报人邮箱
	TargetName    string        `json:"targetName" gorm:"type:varchar(255)"`    // 被举报对象名称
	Identifier    string        `json:"identifier" gorm:"type:varchar(255)"`    // 被举报对象的附加标识（自由文本，可为空）
	Text          string        `json:"text" gorm:"type:text"`                  // 诉状正文
	Attachments   []*Attachment `json:"attachments" gorm:"-"`                   // 附件列表（无附件时为空数组，不省略）
}

// Attachment 表示归属于某条诉状的一个附件。
//
// 附件只能随诉状一起创建，归属关系不可变更；删除诉状时级联删除。
type Attachment struct {
	ID          int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	ComplaintID int64  `json:"complaint_id" gorm:"index;not null"` // 所属诉状ID
	Filename    string `json:"filename" gorm:"type:varchar(255)"`  // 原始文件名
	Path        string `json:"path" gorm:"type:varchar(500)"`      // 上传目录内的相对存储路径
	Mime        string `json:"mime" gorm:"type:varchar(100)"`      // 客户端声明的 MIME 类型
	Content     []byte `json:"-" gorm:"-"`                         // 附件内容（不入库，写入文件系统）
}

// ExportSnapshot 表示一次导出的完整快照。
type ExportSnapshot struct {
	ExportedAt string       `json:"exportedAt"`
	Complaints []*Complaint `json:"complaints"`
}
