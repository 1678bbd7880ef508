package model

import (
	pkgerrors "GoalPulse/pkg/errors"
	"GoalPulse/utils"
)

// UserStatus 用户状态枚举
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// User 用户档案归外部认证模块管理，这里只保留调度和通知需要的字段。
// 邮箱密文加密存储，hash 用于去重和日志脱敏。
type User struct {
	BaseModel
	PublicID       int64      `gorm:"uniqueIndex;not null" json:"public_id"`
	DisplayName    string     `gorm:"type:varchar(64)" json:"display_name"`
	EmailEncrypted string     `gorm:"type:text" json:"-"`
	EmailHash      string     `gorm:"type:char(64);index" json:"-"`
	PushToken      string     `gorm:"type:varchar(255)" json:"-"`
	Timezone       string     `gorm:"type:varchar(64);default:'UTC'" json:"timezone"`
	Status         UserStatus `gorm:"type:varchar(16);not null;default:'active'" json:"status"`

	// 周报/月报订阅开关
	WeeklySummaryEnabled  bool `gorm:"not null;default:false" json:"weekly_summary_enabled"`
	MonthlySummaryEnabled bool `gorm:"not null;default:false" json:"monthly_summary_enabled"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// SetEmail 校验并加密写入收件邮箱，明文不落库
func (u *User) SetEmail(email string) error {
	if !utils.ValidateEmail(email) {
		return pkgerrors.EmailInvalid
	}

	encrypted, err := utils.EncryptRecipient(email)
	if err != nil {
		return err
	}

	u.EmailEncrypted = encrypted
	u.EmailHash = utils.HashEmail(email)
	return nil
}
