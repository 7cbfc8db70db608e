// Package mq 提供群组事件的异步投递
// 成员变更事件在数据库事务提交后投递，投递失败只记录日志，
// 绝不回滚已提交的成员变更
package mq

import (
	"context"
	"encoding/json"
	"time"

	"memora_group_server/internal/config"
	"memora_group_server/pkg/constants"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// 群组事件类型
const (
	EventMemberAdded        = "group.member.added"
	EventMemberRemoved      = "group.member.removed"
	EventMemberRoleChanged  = "group.member.role_changed"
	EventGroupDeleted       = "group.deleted"
	EventInvitationCreated  = "invitation.created"
	EventInvitationAccepted = "invitation.accepted"
	EventInvitationDeclined = "invitation.declined"
)

// GroupEvent 群组事件载荷
// 供下游的通知、信息流等消费方使用，本服务不关心消费结果
type GroupEvent struct {
	Type       string    `json:"type"`               // 事件类型
	GroupId    string    `json:"group_id"`           // 群组 UUID
	UserId     string    `json:"user_id,omitempty"`  // 受影响用户 UUID
	ActorId    string    `json:"actor_id,omitempty"` // 操作者 UUID
	OccurredAt time.Time `json:"occurred_at"`        // 事件发生时间
}

// EventProducer 群组事件生产者接口
// Publish 必须是非阻塞的：事件投递不参与任何请求的关键路径
type EventProducer interface {
	Publish(event GroupEvent)
	Close()
}

// ==================== Kafka 实现 ====================

// kafkaProducer 基于 segmentio/kafka-go 的事件生产者
// 事件先进入缓冲通道，由单个后台协程批量写入 Kafka
type kafkaProducer struct {
	writer    *kafka.Writer
	eventChan chan GroupEvent
	done      chan struct{}
}

// NewKafkaProducer 创建 Kafka 事件生产者
func NewKafkaProducer(conf *config.KafkaConfig) EventProducer {
	p := &kafkaProducer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(conf.HostPort),
			Topic:                  conf.EventTopic,
			Balancer:               &kafka.Hash{},
			WriteTimeout:           conf.Timeout * time.Second,
			RequiredAcks:           kafka.RequireNone,
			AllowAutoTopicCreation: false,
		},
		eventChan: make(chan GroupEvent, constants.CHANNEL_SIZE),
		done:      make(chan struct{}),
	}
	go p.run()
	return p
}

// run 消费事件通道并写入 Kafka
func (p *kafkaProducer) run() {
	for event := range p.eventChan {
		value, err := json.Marshal(event)
		if err != nil {
			zap.L().Error("marshal group event failed", zap.Error(err))
			continue
		}
		// 以群组 ID 为 key，同一群组的事件落到同一分区保证顺序
		if err := p.writer.WriteMessages(context.Background(), kafka.Message{
			Key:   []byte(event.GroupId),
			Value: value,
		}); err != nil {
			zap.L().Error("write group event to kafka failed",
				zap.String("type", event.Type),
				zap.String("group_id", event.GroupId),
				zap.Error(err),
			)
		}
	}
	close(p.done)
}

// Publish 投递事件，通道满时丢弃并告警
// 事件是建议性的，丢弃优于阻塞业务请求
func (p *kafkaProducer) Publish(event GroupEvent) {
	select {
	case p.eventChan <- event:
	default:
		zap.L().Warn("group event channel full, event dropped",
			zap.String("type", event.Type),
			zap.String("group_id", event.GroupId),
		)
	}
}

// Close 关闭生产者，等待通道排空
func (p *kafkaProducer) Close() {
	close(p.eventChan)
	<-p.done
	if err := p.writer.Close(); err != nil {
		zap.L().Error(err.Error())
	}
}

// ==================== 进程内通道实现 ====================

// channelProducer 进程内事件生产者
// 单机部署或本地开发时使用，仅记录事件日志
type channelProducer struct{}

// NewChannelProducer 创建进程内事件生产者
func NewChannelProducer() EventProducer {
	return &channelProducer{}
}

func (p *channelProducer) Publish(event GroupEvent) {
	zap.L().Info("group event",
		zap.String("type", event.Type),
		zap.String("group_id", event.GroupId),
		zap.String("user_id", event.UserId),
		zap.String("actor_id", event.ActorId),
	)
}

func (p *channelProducer) Close() {}

// Init 根据配置选择事件投递模式
// eventMode 为 "kafka" 时使用 Kafka，否则走进程内通道
func Init(conf *config.KafkaConfig) EventProducer {
	if conf.EventMode == "kafka" {
		return NewKafkaProducer(conf)
	}
	return NewChannelProducer()
}
