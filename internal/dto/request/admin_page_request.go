package request

// AdminPageRequest 管理端分页列表请求
// 使用位置:
//   - internal/handler/admin_handler.go: ListChats, ListUsers, ListMessages
type AdminPageRequest struct {
	Page     int `json:"page" form:"page" binding:"omitempty,min=1"`
	PageSize int `json:"page_size" form:"page_size" binding:"omitempty,min=1,max=100"`
}
