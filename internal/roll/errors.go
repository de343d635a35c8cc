package roll

import "errors"

// ── 点名核心错误 ──

var (
	ErrInvalidState    = errors.New("无效的点名状态")
	ErrInvalidCategory = errors.New("无效的汇总分类")
	ErrInvalidSortKey  = errors.New("无效的排序字段")
	ErrUnknownAction   = errors.New("未知的看板操作")
	ErrRosterNotLoaded = errors.New("名单尚未加载")
	ErrNotInRollMode   = errors.New("当前不在点名模式")
	ErrStudentNotFound = errors.New("学生不存在")
	ErrBoardClosed     = errors.New("看板已关闭")
)
