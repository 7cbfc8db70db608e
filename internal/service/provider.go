package service

// Services 聚合所有业务服务实例
// 由 main 在进程启动时构造并注入 Handler 层
type Services struct {
	Group      GroupService
	Invitation InvitationService
}
