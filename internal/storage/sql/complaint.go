package sql

import (
	"database/sql"
	"errors"
	"fmt"

	"aparichit/backend/internal/domain"
	"aparichit/backend/internal/storage"
)

// ========== Complaint Repository ==========

// CreateComplaint 在单个事务内写入诉状及其全部附件行。
//
// 任一写入失败时整体回滚，不留下部分记录；返回新诉状ID。
func (s *Store) CreateComplaint(c *domain.Complaint, attachments []*domain.Attachment) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	if s.driverName == "postgres" {
		query := s.rebind(`
			INSERT INTO complaints (timestamp, category, severity, punishment, reporter_name, reporter_email, target_name, identifier, text)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id
		`)
		err = tx.QueryRow(query,
			c.Timestamp, c.Category, c.Severity, c.Punishment,
			c.ReporterName, c.ReporterEmail, c.TargetName, c.Identifier, c.Text,
		).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("failed to insert complaint: %w", err)
		}
	} else {
		query := `
			INSERT INTO complaints (timestamp, category, severity, punishment, reporter_name, reporter_email, target_name, identifier, text)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		res, err := tx.Exec(query,
			c.Timestamp, c.Category, c.Severity, c.Punishment,
			c.ReporterName, c.ReporterEmail, c.TargetName, c.Identifier, c.Text,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert complaint: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("failed to read complaint id: %w", err)
		}
	}

	attQuery := s.rebind(`
		INSERT INTO attachments (complaint_id, filename, path, mime)
		VALUES (?, ?, ?, ?)
	`)
	for _, a := range attachments {
		if _, err := tx.Exec(attQuery, id, a.Filename, a.Path, a.Mime); err != nil {
			return 0, fmt.Errorf("failed to insert attachment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return id, nil
}

// GetComplaint 返回指定ID的诉状，含附件列表。
func (s *Store) GetComplaint(id int64) (*domain.Complaint, error) {
	query := s.rebind(`
		SELECT id, timestamp, category, severity, punishment, reporter_name, reporter_email, target_name, identifier, text
		FROM complaints
		WHERE id = ?
	`)

	var c domain.Complaint
	err := s.db.QueryRow(query, id).Scan(
		&c.ID, &c.Timestamp, &c.Category, &c.Severity, &c.Punishment,
		&c.ReporterName, &c.ReporterEmail, &c.TargetName, &c.Identifier, &c.Text,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrComplaintNotFound
	}
	if err != nil {
		return nil, err
	}

	byComplaint, err := s.loadAttachments(s.rebind(`
		SELECT id, complaint_id, filename, path, mime
		FROM attachments
		WHERE complaint_id = ?
		ORDER BY id
	`), id)
	if err != nil {
		return nil, err
	}

	c.Attachments = byComplaint[c.ID]
	if c.Attachments == nil {
		c.Attachments = []*domain.Attachment{}
	}
	return &c, nil
}

// ListComplaints 返回全部诉状，按ID倒序（最新在前），含附件列表。
//
// 附件通过第二条查询整体加载后按诉状ID分组，避免每条诉状一次往返。
func (s *Store) ListComplaints() ([]*domain.Complaint, error) {
	rows, err := s.db.Query(`
		SELECT id, timestamp, category, severity, punishment, reporter_name, reporter_email, target_name, identifier, text
		FROM complaints
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	complaints := make([]*domain.Complaint, 0)
	for rows.Next() {
		var c domain.Complaint
		err := rows.Scan(
			&c.ID, &c.Timestamp, &c.Category, &c.Severity, &c.Punishment,
			&c.ReporterName, &c.ReporterEmail, &c.TargetName, &c.Identifier, &c.Text,
		)
		if err != nil {
			return nil, err
		}
		c.Attachments = []*domain.Attachment{}
		complaints = append(complaints, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	byComplaint, err := s.loadAttachments(`
		SELECT id, complaint_id, filename, path, mime
		FROM attachments
		ORDER BY complaint_id, id
	`)
	if err != nil {
		return nil, err
	}

	for _, c := range complaints {
		if atts, ok := byComplaint[c.ID]; ok {
			c.Attachments = atts
		}
	}
	return complaints, nil
}

// DeleteComplaint 删除诉状及其附件行，返回被删除的附件行供调用方清理文件。
func (s *Store) DeleteComplaint(id int64) ([]*domain.Attachment, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	attQuery := s.rebind(`
		SELECT id, complaint_id, filename, path, mime
		FROM attachments
		WHERE complaint_id = ?
		ORDER BY id
	`)
	rows, err := tx.Query(attQuery, id)
	if err != nil {
		return nil, err
	}
	removed, err := scanAttachments(rows)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(s.rebind(`DELETE FROM attachments WHERE complaint_id = ?`), id); err != nil {
		return nil, fmt.Errorf("failed to delete attachments: %w", err)
	}

	res, err := tx.Exec(s.rebind(`DELETE FROM complaints WHERE id = ?`), id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete complaint: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, storage.ErrComplaintNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return removed, nil
}

// CountComplaints 返回诉状总数。
func (s *Store) CountComplaints() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM complaints`).Scan(&count)
	return count, err
}

// loadAttachments 执行附件查询并按诉状ID分组。
func (s *Store) loadAttachments(query string, args ...interface{}) (map[int64][]*domain.Attachment, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	atts, err := scanAttachments(rows)
	if err != nil {
		return nil, err
	}

	byComplaint := make(map[int64][]*domain.Attachment)
	for _, a := range atts {
		byComplaint[a.ComplaintID] = append(byComplaint[a.ComplaintID], a)
	}
	return byComplaint, nil
}

// scanAttachments 扫描附件结果集并关闭它。
func scanAttachments(rows *sql.Rows) ([]*domain.Attachment, error) {
	defer rows.Close()

	atts := make([]*domain.Attachment, 0)
	for rows.Next() {
		var a domain.Attachment
		if err := rows.Scan(&a.ID, &a.ComplaintID, &a.Filename, &a.Path, &a.Mime); err != nil {
			return nil, err
		}
		atts = append(atts, &a)
	}
	return atts, rows.Err()
}
