// Package mysql 提供数据访问层的初始化
// 负责建立 MySQL 连接、自动迁移表结构、创建 Repository 层
package mysql

import (
	"fmt"

	"memora_group_server/internal/config"
	"memora_group_server/internal/dao/mysql/repository"
	"memora_group_server/internal/model"

	"go.uber.org/zap"
	mysqldriver "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Init 初始化数据库连接并返回 Repository 层实例
// 执行步骤：
//  1. 从配置读取 MySQL 连接信息
//  2. 构建 DSN（Data Source Name）连接字符串
//  3. 使用 GORM 建立数据库连接
//  4. 执行 AutoMigrate 自动迁移表结构
//  5. 创建并返回 Repository 实例
func Init() *repository.Repositories {
	conf := config.GetConfig()

	// 构建 MySQL DSN 连接字符串
	// 格式：user:password@tcp(host:port)/database?params
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		conf.MysqlConfig.User,
		conf.MysqlConfig.Password,
		conf.MysqlConfig.Host,
		conf.MysqlConfig.Port,
		conf.MysqlConfig.DatabaseName,
	)

	// TranslateError: 将驱动层错误翻译为 gorm 统一错误，
	// 唯一索引冲突由此表现为 gorm.ErrDuplicatedKey，
	// Repository 层据此映射"已是成员/已有待处理邀请"
	db, err := gorm.Open(mysqldriver.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		// 连接失败，记录致命错误并退出程序
		zap.L().Fatal(err.Error())
	}

	// AutoMigrate 自动迁移表结构
	// 如果表不存在则创建，如果字段变更则更新结构
	// 注意：不会删除已有字段或数据
	err = db.AutoMigrate(
		&model.UserInfo{},                // 用户信息表
		&model.GroupInfo{},               // 群组信息表
		&model.GroupMember{},             // 群成员表
		&model.GroupInvitation{},         // 群邀请表
		&model.RelationshipCategory{},    // 关系分类表
		&model.RelationshipSubcategory{}, // 关系子分类表
	)
	if err != nil {
		// 迁移失败，记录致命错误并退出程序
		zap.L().Fatal(err.Error())
	}

	// 创建并返回 Repository 实例集合
	return repository.NewRepositories(db)
}
