package errors

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// 校验类错误，输入边界拒绝非法频率/日期。
var (
	FrequencyInvalid     = Definition{Code: "FREQUENCY_INVALID", Message: "Unrecognized check-in frequency"}
	ScheduledDateInvalid = Definition{Code: "SCHEDULED_DATE_INVALID", Message: "Scheduled date invalid"}
	SeriesRangeInvalid   = Definition{Code: "SERIES_RANGE_INVALID", Message: "Series end date precedes start date"}
	ReminderInvalid      = Definition{Code: "REMINDER_INVALID", Message: "Reminder settings invalid"}
	InvalidUserID        = Definition{Code: "INVALID_USER_ID", Message: "Invalid user ID format"}
)

// 未找到类错误。
var (
	GoalNotFound    = Definition{Code: "GOAL_NOT_FOUND", Message: "Goal not found"}
	CheckInNotFound = Definition{Code: "CHECK_IN_NOT_FOUND", Message: "Check-in not found"}
	UserNotFound    = Definition{Code: "USER_NOT_FOUND", Message: "User not found"}
	JobNotFound     = Definition{Code: "JOB_NOT_FOUND", Message: "Scheduled job not found"}
)

// 状态机错误，非法的生命周期迁移。
var (
	CheckInAlreadyCompleted = Definition{Code: "CHECK_IN_ALREADY_COMPLETED", Message: "Check-in already completed"}
	CheckInCompleted        = Definition{Code: "CHECK_IN_COMPLETED", Message: "Completed check-in cannot be rescheduled"}
	CheckInCancelled        = Definition{Code: "CHECK_IN_CANCELLED", Message: "Cancelled check-in cannot transition"}
)

// 通知模块错误。单通道投递失败在 dispatcher 内部降级为 outcome，
// 这里只保留需要上抛到调用方的定义。
var (
	ChannelUnsupported = Definition{Code: "CHANNEL_UNSUPPORTED", Message: "Notification channel unsupported"}
	RecipientMissing   = Definition{Code: "RECIPIENT_MISSING", Message: "Notification recipient missing"}
)

// 请求层错误。
var (
	InvalidRequest  = Definition{Code: "INVALID_REQUEST", Message: "Invalid request"}
	EmailInvalid    = Definition{Code: "EMAIL_INVALID", Message: "Email address invalid"}
	TooManyRequests = Definition{Code: "TOO_MANY_REQUESTS", Message: "Too many requests"}
)

// 认证相关错误。
var (
	Unauthorized                    = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	ErrTokenGeneratorNotInitialized = Definition{Code: "TOKEN_GENERATOR_UNINITIALIZED", Message: "Token generator not initialized"}
	ErrUnexpectedSigningMethod      = Definition{Code: "UNEXPECTED_SIGNING_METHOD", Message: "Unexpected token signing method"}
	ErrInvalidToken                 = Definition{Code: "INVALID_TOKEN", Message: "Invalid token"}
	ErrInvalidTokenClaims           = Definition{Code: "INVALID_TOKEN_CLAIMS", Message: "Invalid token claims"}
	ErrInvalidTokenType             = Definition{Code: "INVALID_TOKEN_TYPE", Message: "Invalid token type"}
	ErrUserIDNotFound               = Definition{Code: "USER_ID_NOT_FOUND", Message: "User ID not found in token"}
)

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	FrequencyInvalid.Code:        FrequencyInvalid,
	ScheduledDateInvalid.Code:    ScheduledDateInvalid,
	SeriesRangeInvalid.Code:      SeriesRangeInvalid,
	ReminderInvalid.Code:         ReminderInvalid,
	InvalidUserID.Code:           InvalidUserID,
	GoalNotFound.Code:            GoalNotFound,
	CheckInNotFound.Code:         CheckInNotFound,
	UserNotFound.Code:            UserNotFound,
	JobNotFound.Code:             JobNotFound,
	CheckInAlreadyCompleted.Code: CheckInAlreadyCompleted,
	CheckInCompleted.Code:        CheckInCompleted,
	CheckInCancelled.Code:        CheckInCancelled,
	ChannelUnsupported.Code:      ChannelUnsupported,
	RecipientMissing.Code:        RecipientMissing,
	InvalidRequest.Code:          InvalidRequest,
	EmailInvalid.Code:            EmailInvalid,
	TooManyRequests.Code:         TooManyRequests,
	Unauthorized.Code:            Unauthorized,
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}
