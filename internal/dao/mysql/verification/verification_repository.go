// Package verification 提供手机验证码数据访问层的具体实现
// 本文件实现 VerificationRepository 接口
package verification

import (
	"time"

	"kyte_chat_server/internal/dao/mysql/internal"
	"kyte_chat_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// verificationRepository VerificationRepository 接口的实现
type verificationRepository struct {
	db *gorm.DB
}

// NewVerificationRepository 创建 VerificationRepository 实例
func NewVerificationRepository(db *gorm.DB) *verificationRepository {
	return &verificationRepository{db: db}
}

// SaveCode 保存验证码
// 同手机号已存在则覆盖，重发即重置校验次数和过期时间
func (r *verificationRepository) SaveCode(telephone, code string, expiresAt time.Time) error {
	record := model.PhoneVerification{
		Telephone: telephone,
		Code:      code,
		Attempts:  0,
		ExpiresAt: expiresAt,
	}
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "telephone"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "attempts", "expires_at"}),
	}).Create(&record).Error; err != nil {
		return internal.WrapDBErrorf(err, "保存验证码 telephone=%s", telephone)
	}
	return nil
}

// FindByTelephone 查找手机号的验证码记录
func (r *verificationRepository) FindByTelephone(telephone string) (*model.PhoneVerification, error) {
	var record model.PhoneVerification
	if err := r.db.Where("telephone = ?", telephone).First(&record).Error; err != nil {
		return nil, internal.WrapDBErrorf(err, "查询验证码 telephone=%s", telephone)
	}
	return &record, nil
}

// IncrementAttempts 累加校验次数
func (r *verificationRepository) IncrementAttempts(telephone string) error {
	if err := r.db.Model(&model.PhoneVerification{}).Where("telephone = ?", telephone).
		Update("attempts", gorm.Expr("attempts + 1")).Error; err != nil {
		return internal.WrapDBErrorf(err, "更新校验次数 telephone=%s", telephone)
	}
	return nil
}

// DeleteByTelephone 删除验证码记录（校验通过后清理）
func (r *verificationRepository) DeleteByTelephone(telephone string) error {
	if err := r.db.Unscoped().Where("telephone = ?", telephone).
		Delete(&model.PhoneVerification{}).Error; err != nil {
		return internal.WrapDBErrorf(err, "删除验证码 telephone=%s", telephone)
	}
	return nil
}
