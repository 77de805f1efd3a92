// Package plan задает лимиты тарифных планов для конструктора форм.
//
// Таблица лимитов неизменяема после старта процесса и безопасна для
// конкурентного чтения. Лимиты проверяются только в момент создания или
// изменения формы: понижение тарифа не инвалидирует уже сохранённые формы.
package plan

import (
	"fmt"
	"strings"

	"github.com/magabrotheeeer/feedback-aggregator/internal/models"
)

// Limits описывает ограничения тарифного плана на форму обратной связи.
type Limits struct {
	MaxFields         int
	AllowedFieldTypes map[string]struct{}
}

// Таблица лимитов: basic ⊂ premium ⊂ enterprise по допустимости.
var limitsTable = map[string]Limits{
	models.PlanBasic: {
		MaxFields: 5,
		AllowedFieldTypes: fieldTypeSet(
			models.FieldText, models.FieldTextarea, models.FieldRating,
		),
	},
	models.PlanPremium: {
		MaxFields: 12,
		AllowedFieldTypes: fieldTypeSet(
			models.FieldText, models.FieldTextarea, models.FieldRating,
			models.FieldSingleChoice, models.FieldMultipleChoice,
			models.FieldEmail, models.FieldPhone,
		),
	},
	models.PlanEnterprise: {
		MaxFields: 30,
		AllowedFieldTypes: fieldTypeSet(
			models.FieldText, models.FieldTextarea, models.FieldRating,
			models.FieldSingleChoice, models.FieldMultipleChoice,
			models.FieldEmail, models.FieldPhone, models.FieldFileUpload,
		),
	},
}

func fieldTypeSet(types ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return set
}

// LimitsFor возвращает лимиты для тарифного плана.
// Неизвестный план получает лимиты basic.
func LimitsFor(planName string) Limits {
	if l, ok := limitsTable[planName]; ok {
		return l
	}
	return limitsTable[models.PlanBasic]
}

// LimitError возвращается при нарушении лимитов тарифа. Содержит конкретные
// значения лимита и факта, чтобы клиент получил их в ответе, а не молчаливое
// усечение формы.
type LimitError struct {
	MaxFields    int      `json:"max_fields,omitempty"`
	ActualFields int      `json:"actual_fields,omitempty"`
	InvalidTypes []string `json:"invalid_types,omitempty"`
}

func (e *LimitError) Error() string {
	if len(e.InvalidTypes) > 0 {
		return fmt.Sprintf("plan does not allow field types: %s", strings.Join(e.InvalidTypes, ", "))
	}
	return fmt.Sprintf("plan allows at most %d fields, got %d", e.MaxFields, e.ActualFields)
}

// Validate проверяет набор полей формы против лимитов плана.
// Возвращает *LimitError с описанием нарушения или nil.
func Validate(planName string, fields []models.Field) error {
	limits := LimitsFor(planName)
	if len(fields) > limits.MaxFields {
		return &LimitError{
			MaxFields:    limits.MaxFields,
			ActualFields: len(fields),
		}
	}

	var invalid []string
	seen := make(map[string]struct{})
	for _, f := range fields {
		if _, ok := limits.AllowedFieldTypes[f.Type]; !ok {
			if _, dup := seen[f.Type]; !dup {
				invalid = append(invalid, f.Type)
				seen[f.Type] = struct{}{}
			}
		}
	}
	if len(invalid) > 0 {
		return &LimitError{InvalidTypes: invalid}
	}
	return nil
}
