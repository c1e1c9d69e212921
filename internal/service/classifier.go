package service

import (
	"strings"

	"github.com/shenikar/dispatch_orchestrator/internal/models"
)

// Classifier решает, относится ли тип инцидента к убийствам
type Classifier func(incidentType string) bool

// HomicideLexicon - словарь по умолчанию для классификации
var HomicideLexicon = []string{"homicídio", "homicidio", "assassinato", "morte", "óbito"}

// KeywordClassifier - регистронезависимый поиск подстроки
func KeywordClassifier(keywords ...string) Classifier {
	return func(incidentType string) bool {
		return containsAny(incidentType, keywords)
	}
}

func DefaultClassifier() Classifier {
	return KeywordClassifier(HomicideLexicon...)
}

// TeamKeywords - триггеры дополнительных ролей специализированной группы
type TeamKeywords struct {
	Ballistics []string
	Body       []string
}

func DefaultTeamKeywords() TeamKeywords {
	return TeamKeywords{
		Ballistics: []string{"arma de fogo", "tiro", "firearm", "gunshot"},
		Body:       []string{"corpo", "cadáver", "cadaver", "body", "corpse"},
	}
}

// TeamRoles собирает состав группы по описанию; фотограф всегда последний
func TeamRoles(description string, keywords TeamKeywords) []models.TeamRole {
	roles := []models.TeamRole{models.RoleInvestigator, models.RoleForensicAnalyst}
	if containsAny(description, keywords.Ballistics) {
		roles = append(roles, models.RoleBallisticsExpert)
	}
	if containsAny(description, keywords.Body) {
		roles = append(roles, models.RoleMedicalExaminer)
	}
	return append(roles, models.RolePhotographer)
}

func RolePriority(role models.TeamRole) models.Priority {
	switch role {
	case models.RoleInvestigator, models.RoleForensicAnalyst, models.RoleMedicalExaminer:
		return models.PriorityHigh
	default:
		return models.PriorityMedium
	}
}

func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range keywords {
		if keyword != "" && strings.Contains(lower, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}
