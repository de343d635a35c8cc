package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"roll-call/internal/model"
	"roll-call/internal/repository"
	"roll-call/internal/roll"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// calendarRollLimit 日历订阅最多包含的点名记录数
const calendarRollLimit = 500

// ExportService 导出业务接口
//
//   - ExportRoll：单次点名导出为 Excel，一个 Sheet 含汇总与逐人明细
//   - ExportCalendar：已完成的点名导出为 iCalendar，每次点名一个 VEVENT
type ExportService interface {
	ExportRoll(ctx context.Context, rollID, callerID, callerRole string) (*bytes.Buffer, string, error)
	ExportCalendar(ctx context.Context, callerID, callerRole string) (string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// 状态在表格中的显示文字
var stateLabels = map[roll.State]string{
	roll.StateUnmarked: "未点名",
	roll.StatePresent:  "出勤",
	roll.StateLate:     "迟到",
	roll.StateAbsent:   "缺勤",
}

// ═══════════════════════════════════════════════════════════
// ExportRoll 导出单次点名为 Excel
// ═══════════════════════════════════════════════════════════
//
// 表格布局：
//   - 第 1 行：标题（完成时间）
//   - 第 3-6 行：汇总（全部 / 出勤 / 迟到 / 缺勤）
//   - 第 8 行起：ID | 名 | 姓 | 状态

func (s *exportService) ExportRoll(ctx context.Context, rollID, callerID, callerRole string) (*bytes.Buffer, string, error) {
	r, err := s.repo.Roll.GetByID(ctx, rollID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrRollNotFound
		}
		s.logger.Error("查询点名记录失败", zap.String("id", rollID), zap.Error(err))
		return nil, "", err
	}
	if callerRole != model.RoleAdmin && r.StaffID != callerID {
		return nil, "", ErrRollForbidden
	}

	buf, err := buildRollWorkbook(r)
	if err != nil {
		s.logger.Error("生成 Excel 失败", zap.String("roll_id", rollID), zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("roll_%s.xlsx", r.CompletedAt.Format("20060102_1504"))
	return buf, filename, nil
}

func buildRollWorkbook(r *model.Roll) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "点名"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	_ = f.SetColWidth(sheet, "A", "A", 8)
	_ = f.SetColWidth(sheet, "B", "C", 18)
	_ = f.SetColWidth(sheet, "D", "D", 12)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	_ = f.SetCellValue(sheet, "A1", fmt.Sprintf("点名记录 %s", r.CompletedAt.Format("2006-01-02 15:04")))
	_ = f.MergeCell(sheet, "A1", "D1")
	_ = f.SetCellStyle(sheet, "A1", "D1", headerStyle)

	counts := r.Counts()
	summary := []struct {
		label string
		value int
	}{
		{"全部", counts.All},
		{stateLabels[roll.StatePresent], counts.Present},
		{stateLabels[roll.StateLate], counts.Late},
		{stateLabels[roll.StateAbsent], counts.Absent},
	}
	for i, row := range summary {
		_ = f.SetCellValue(sheet, cell("A", 3+i), row.label)
		_ = f.SetCellValue(sheet, cell("B", 3+i), row.value)
	}

	const headerRow = 8
	for i, h := range []string{"ID", "名", "姓", "状态"} {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetCellValue(sheet, cell(col, headerRow), h)
	}
	_ = f.SetCellStyle(sheet, cell("A", headerRow), cell("D", headerRow), headerStyle)

	for i, e := range r.Entries {
		row := headerRow + 1 + i
		_ = f.SetCellValue(sheet, cell("A", row), e.StudentID)
		_ = f.SetCellValue(sheet, cell("B", row), e.FirstName)
		_ = f.SetCellValue(sheet, cell("C", row), e.LastName)
		_ = f.SetCellValue(sheet, cell("D", row), stateLabels[e.RollState])
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// ═══════════════════════════════════════════════════════════
// ExportCalendar 将已完成点名导出为 iCalendar
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportCalendar(ctx context.Context, callerID, callerRole string) (string, error) {
	scope := callerID
	if callerRole == model.RoleAdmin {
		scope = ""
	}

	rolls, _, err := s.repo.Roll.List(ctx, scope, 0, calendarRollLimit)
	if err != nil {
		s.logger.Error("列出点名记录失败", zap.Error(err))
		return "", err
	}

	return buildRollCalendar(rolls, time.Now().UTC()), nil
}

func buildRollCalendar(rolls []model.Roll, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//roll-call//daily roll//ZH")
	cal.SetName("点名记录")

	for i := range rolls {
		r := &rolls[i]
		counts := r.Counts()

		evt := cal.AddEvent(r.RollID + "@roll-call")
		evt.SetDtStampTime(stamp)
		evt.SetStartAt(r.CompletedAt)
		evt.SetEndAt(r.CompletedAt.Add(15 * time.Minute))
		evt.SetSummary(fmt.Sprintf("点名：出勤 %d / 迟到 %d / 缺勤 %d", counts.Present, counts.Late, counts.Absent))
		evt.SetDescription(fmt.Sprintf("全部 %d 人，未点名 %d 人", counts.All, counts.All-counts.Marked()))
	}

	return cal.Serialize()
}
