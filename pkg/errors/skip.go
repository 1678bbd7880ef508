package errors

// SkipMessageError 表示消费者应当 ack 并跳过该消息（幂等命中、重复投递等），
// 而不是 nack 重回队列。
type SkipMessageError struct {
	Reason string
}

func (e *SkipMessageError) Error() string {
	return "skip message: " + e.Reason
}

// IsSkip 判断错误是否为跳过类错误。
func IsSkip(err error) bool {
	_, ok := err.(*SkipMessageError)
	return ok
}
