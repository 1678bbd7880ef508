package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// 构造器在 storage 未初始化时也要能正常构造（拿到的是零值连接），
// 各 store 持有的是 *gorm.DB 句柄本身而不是取句柄的函数
func TestStoreConstructors(t *testing.T) {
	assert.NotNil(t, NewCheckInStore())
	assert.NotNil(t, NewGoalStore())
	assert.NotNil(t, NewUserStore())
	assert.NotNil(t, NewNotificationStore())
}
