package request

// AdminSetUserStatusRequest 批量设置用户状态请求
// 使用位置:
//   - internal/handler/admin_handler.go: SetUserStatus
type AdminSetUserStatusRequest struct {
	Uuids  []string `json:"uuids" binding:"required,min=1"`
	Status int8     `json:"status" binding:"oneof=0 1"` // 0=正常 1=禁用
}

// AdminDeleteUsersRequest 批量删除用户请求
// 使用位置:
//   - internal/handler/admin_handler.go: DeleteUsers
type AdminDeleteUsersRequest struct {
	Uuids []string `json:"uuids" binding:"required,min=1"`
}
