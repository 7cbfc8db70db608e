package handler

import "memora_group_server/internal/service"

// Handlers 聚合所有 Handler 实例
type Handlers struct {
	Group      *GroupHandler
	Invitation *InvitationHandler
}

// NewHandlers 创建所有 Handler 实例
func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Group:      NewGroupHandler(services.Group),
		Invitation: NewInvitationHandler(services.Invitation),
	}
}
