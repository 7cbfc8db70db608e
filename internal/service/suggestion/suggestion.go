// Package suggestion 根据群名称生成关系归档建议
// 建议为只读提示，任何失败都不影响主流程
package suggestion

import (
	"strings"
	"unicode"

	"go.uber.org/zap"

	"memora_group_server/internal/dao/mysql/repository"
	"memora_group_server/internal/dto/respond"
	"memora_group_server/pkg/errorx"
)

// 关系分类 kind，与 relationship_category 表的 kind 字段一致
const (
	KindWork         = "work"
	KindSchool       = "school"
	KindHobby        = "hobby"
	KindOrganization = "organization"
	KindOnline       = "online"
	KindSocial       = "social"
)

// 各分类的命中关键词，大小写不敏感
var kindKeywords = []struct {
	kind     string
	keywords []string
}{
	{KindWork, []string{"work", "company", "corp", "inc"}},
	{KindSchool, []string{"school", "university", "college", "academy"}},
	{KindHobby, []string{"hobby", "club", "sport"}},
	{KindOrganization, []string{"org", "organization", "foundation"}},
	{KindOnline, []string{"online", "gaming", "discord"}},
}

// ClassifyGroupName 按群名称关键词归类，无命中时落入 social
// 按完整单词比较，"Minecraft" 不能因包含 "inc" 被归入工作类
func ClassifyGroupName(name string) string {
	words := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, entry := range kindKeywords {
		for _, kw := range entry.keywords {
			for _, word := range words {
				if word == kw {
					return entry.kind
				}
			}
		}
	}
	return KindSocial
}

type suggestionService struct {
	relationshipRepo repository.RelationshipRepository
}

// NewSuggestionService 创建关系归档建议服务
func NewSuggestionService(relationshipRepo repository.RelationshipRepository) *suggestionService {
	return &suggestionService{relationshipRepo: relationshipRepo}
}

// SuggestForJoin 用户加入群组后生成归档建议
// 查询失败时记录日志并返回 nil，调用方无需处理错误
func (s *suggestionService) SuggestForJoin(userId string, groupName string) *respond.RelationshipSuggestionRespond {
	kind := ClassifyGroupName(groupName)
	suggestion := &respond.RelationshipSuggestionRespond{
		CategoryKind:    kind,
		SubcategoryName: groupName,
		NeedsCreation:   true,
	}

	category, err := s.relationshipRepo.FindCategoryByUserAndKind(userId, kind)
	if err != nil {
		if !errorx.IsNotFound(err) {
			zap.L().Warn("查询关系分类失败", zap.String("userId", userId), zap.Error(err))
			return nil
		}
		return suggestion
	}
	suggestion.CategoryExists = true

	_, err = s.relationshipRepo.FindSubcategoryByName(category.ID, groupName)
	if err != nil {
		if !errorx.IsNotFound(err) {
			zap.L().Warn("查询关系子分类失败", zap.String("userId", userId), zap.Error(err))
			return nil
		}
		return suggestion
	}
	suggestion.NeedsCreation = false
	return suggestion
}
