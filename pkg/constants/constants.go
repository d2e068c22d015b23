package constants

const (
	CHANNEL_SIZE               = 100   // 通道大小
	FILE_MAX_SIZE              = 50000 // 文件最大大小
	REDIS_TIMEOUT              = 1     // redis timeout (分钟)
	REFRESH_TOKEN_EXPIRY_HOURS = 168   // Refresh Token 有效期（小时），168小时 = 7天

	INVITE_CODE_LENGTH  = 6   // 群邀请码长度
	MESSAGE_PAGE_SIZE   = 100 // 消息分页默认条数
	MESSAGE_PAGE_MAX    = 200 // 消息分页最大条数
	SMS_CODE_MAX_VERIFY = 5   // 短信验证码最多校验次数
)
