package utils

import (
	"GoalPulse/config"
	"crypto/sha256"
	"encoding/hex"
)

// hash 化 email 存储，密文核对，增加盐值，避免彩虹表攻击，盐 + "：" + email

func HashEmail(email string) string {
	key := config.Cfg.RecipientSalt

	sum := sha256.Sum256([]byte(key + ":" + email))

	return hex.EncodeToString(sum[:])
}
