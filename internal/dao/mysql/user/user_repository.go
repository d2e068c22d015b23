// Package user 提供用户相关数据访问层的具体实现
// 本文件实现 UserRepository 接口，处理用户相关的数据库操作
package user

import (
	"time"

	"kyte_chat_server/internal/dao/mysql/internal"
	"kyte_chat_server/internal/model"
	"kyte_chat_server/pkg/aes"

	"gorm.io/gorm"
)

// userRepository UserRepository 接口的实现
// 推送令牌是敏感字段，入库前加密、出库后解密
type userRepository struct {
	db    *gorm.DB
	codec *aes.Codec
}

// NewUserRepository 创建 UserRepository 实例
// db: GORM 数据库实例
// codec: 敏感字段加解密编解码器
func NewUserRepository(db *gorm.DB, codec *aes.Codec) *userRepository {
	return &userRepository{db: db, codec: codec}
}

// decryptSensitive 解密单个用户的敏感字段
// 解密失败按空值处理，不让历史脏数据阻断查询
func (r *userRepository) decryptSensitive(u *model.User) {
	if u.PushToken == "" {
		return
	}
	plain, err := r.codec.Decrypt(u.PushToken)
	if err != nil {
		u.PushToken = ""
		return
	}
	u.PushToken = plain
}

// FindByUuid 根据 UUID 查找用户
func (r *userRepository) FindByUuid(uuid string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("uuid = ?", uuid).First(&user).Error; err != nil {
		return nil, internal.WrapDBErrorf(err, "查询用户 uuid=%s", uuid)
	}
	r.decryptSensitive(&user)
	return &user, nil
}

// FindByTelephone 根据手机号查找用户
func (r *userRepository) FindByTelephone(telephone string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("telephone = ?", telephone).First(&user).Error; err != nil {
		return nil, internal.WrapDBErrorf(err, "查询用户 telephone=%s", telephone)
	}
	r.decryptSensitive(&user)
	return &user, nil
}

// FindByEmail 根据邮箱查找用户
func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, internal.WrapDBErrorf(err, "查询用户 email=%s", email)
	}
	r.decryptSensitive(&user)
	return &user, nil
}

// FindByUuids 批量根据 UUID 查找用户
func (r *userRepository) FindByUuids(uuids []string) ([]model.User, error) {
	var users []model.User
	if len(uuids) == 0 {
		return users, nil
	}
	if err := r.db.Where("uuid IN ?", uuids).Find(&users).Error; err != nil {
		return nil, internal.WrapDBError(err, "批量查询用户")
	}
	for i := range users {
		r.decryptSensitive(&users[i])
	}
	return users, nil
}

// CreateUser 创建新用户
func (r *userRepository) CreateUser(user *model.User) error {
	enc, err := r.codec.Encrypt(user.PushToken)
	if err != nil {
		return internal.WrapDBError(err, "加密推送令牌")
	}
	user.PushToken = enc
	if err := r.db.Create(user).Error; err != nil {
		return internal.WrapDBError(err, "创建用户")
	}
	return nil
}

// UpdateUser 更新用户信息
func (r *userRepository) UpdateUser(user *model.User) error {
	enc, err := r.codec.Encrypt(user.PushToken)
	if err != nil {
		return internal.WrapDBError(err, "加密推送令牌")
	}
	user.PushToken = enc
	if err := r.db.Save(user).Error; err != nil {
		return internal.WrapDBErrorf(err, "更新用户 uuid=%s", user.Uuid)
	}
	return nil
}

// UpdateLastOnlineAt 更新上次上线时间
func (r *userRepository) UpdateLastOnlineAt(uuid string, at time.Time) error {
	if err := r.db.Model(&model.User{}).Where("uuid = ?", uuid).
		Update("last_online_at", at).Error; err != nil {
		return internal.WrapDBErrorf(err, "更新上线时间 uuid=%s", uuid)
	}
	return nil
}

// UpdateLastOfflineAt 更新最近离线时间
func (r *userRepository) UpdateLastOfflineAt(uuid string, at time.Time) error {
	if err := r.db.Model(&model.User{}).Where("uuid = ?", uuid).
		Update("last_offline_at", at).Error; err != nil {
		return internal.WrapDBErrorf(err, "更新离线时间 uuid=%s", uuid)
	}
	return nil
}

// GetUserList 分页获取用户列表
// 返回: 用户列表、总数和错误
func (r *userRepository) GetUserList(page, pageSize int) ([]model.User, int64, error) {
	var users []model.User
	var total int64
	if err := r.db.Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, internal.WrapDBError(err, "统计用户总数")
	}
	offset := (page - 1) * pageSize
	if err := r.db.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
		return nil, 0, internal.WrapDBError(err, "分页查询用户")
	}
	for i := range users {
		r.decryptSensitive(&users[i])
	}
	return users, total, nil
}

// UpdateUserStatusByUuids 批量更新用户状态（启用/禁用）
func (r *userRepository) UpdateUserStatusByUuids(uuids []string, status int8) error {
	if len(uuids) == 0 {
		return nil
	}
	if err := r.db.Model(&model.User{}).Where("uuid IN ?", uuids).
		Update("status", status).Error; err != nil {
		return internal.WrapDBError(err, "批量更新用户状态")
	}
	return nil
}

// SoftDeleteUserByUuids 批量软删除用户
func (r *userRepository) SoftDeleteUserByUuids(uuids []string) error {
	if len(uuids) == 0 {
		return nil
	}
	if err := r.db.Where("uuid IN ?", uuids).Delete(&model.User{}).Error; err != nil {
		return internal.WrapDBError(err, "批量删除用户")
	}
	return nil
}
