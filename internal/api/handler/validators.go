package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"roll-call/internal/dto"
	"roll-call/internal/roll"
)

var boardActions = map[string]bool{
	dto.ActionStudentClicked:       true,
	dto.ActionSortChanged:          true,
	dto.ActionSortDirectionToggled: true,
	dto.ActionSortDirectionSet:     true,
	dto.ActionSearchChanged:        true,
	dto.ActionFilterChanged:        true,
	dto.ActionRollModeEntered:      true,
	dto.ActionRollModeExited:       true,
}

// RegisterValidators 向 gin 的 validator 注册自定义校验标签
//   - board_action：看板操作类型
//   - sort_key：排序字段
//   - roll_category：筛选类别
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	if err := v.RegisterValidation("board_action", func(fl validator.FieldLevel) bool {
		return boardActions[fl.Field().String()]
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("sort_key", func(fl validator.FieldLevel) bool {
		_, err := roll.ParseSortKey(fl.Field().String())
		return err == nil
	}); err != nil {
		return err
	}
	return v.RegisterValidation("roll_category", func(fl validator.FieldLevel) bool {
		_, err := roll.ParseCategory(fl.Field().String())
		return err == nil
	})
}
