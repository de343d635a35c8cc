package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"roll-call/internal/model"
)

func setupTestExportService() (ExportService, *mockRollRepo) {
	repo, _, _, rollRepo := newTestRepository()
	return NewExportService(repo, zap.NewNop()), rollRepo
}

// ── ExportRoll 测试 ──

func TestExportService_ExportRoll(t *testing.T) {
	svc, rollRepo := setupTestExportService()
	at := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	seedRoll(rollRepo, "r1", "staff-1", at)

	buf, filename, err := svc.ExportRoll(context.Background(), "r1", "staff-1", model.RoleStaff)
	if err != nil {
		t.Fatalf("期望成功，实际: %v", err)
	}
	if filename != "roll_20260302_0930.xlsx" {
		t.Errorf("文件名不符: %s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("打开 Excel 失败: %v", err)
	}
	defer f.Close()

	checks := map[string]string{
		"A3":  "全部",
		"B3":  "2",
		"B4":  "1",
		"B6":  "1",
		"A8":  "ID",
		"B9":  "Alan",
		"D9":  "出勤",
		"C10": "Key",
		"D10": "缺勤",
	}
	for axis, want := range checks {
		got, err := f.GetCellValue("点名", axis)
		if err != nil {
			t.Fatalf("读取 %s 失败: %v", axis, err)
		}
		if got != want {
			t.Errorf("%s 期望 %q，实际 %q", axis, want, got)
		}
	}
}

func TestExportService_ExportRoll_Errors(t *testing.T) {
	svc, rollRepo := setupTestExportService()
	seedRoll(rollRepo, "r1", "staff-1", time.Now())
	ctx := context.Background()

	if _, _, err := svc.ExportRoll(ctx, "missing", "staff-1", model.RoleStaff); !errors.Is(err, ErrRollNotFound) {
		t.Errorf("期望 ErrRollNotFound，实际: %v", err)
	}
	if _, _, err := svc.ExportRoll(ctx, "r1", "staff-2", model.RoleStaff); !errors.Is(err, ErrRollForbidden) {
		t.Errorf("期望 ErrRollForbidden，实际: %v", err)
	}
	if _, _, err := svc.ExportRoll(ctx, "r1", "admin", model.RoleAdmin); err != nil {
		t.Errorf("管理员导出期望成功，实际: %v", err)
	}
}

// ── ExportCalendar 测试 ──

func TestExportService_ExportCalendar(t *testing.T) {
	svc, rollRepo := setupTestExportService()
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	seedRoll(rollRepo, "r1", "staff-1", base)
	seedRoll(rollRepo, "r2", "staff-1", base.Add(24*time.Hour))
	seedRoll(rollRepo, "r3", "staff-2", base.Add(48*time.Hour))

	out, err := svc.ExportCalendar(context.Background(), "staff-1", model.RoleStaff)
	if err != nil {
		t.Fatalf("期望成功，实际: %v", err)
	}
	if !strings.Contains(out, "BEGIN:VCALENDAR") {
		t.Error("缺少 VCALENDAR")
	}
	if n := strings.Count(out, "BEGIN:VEVENT"); n != 2 {
		t.Errorf("期望 2 个事件，实际 %d", n)
	}
	if !strings.Contains(out, "r1@roll-call") || strings.Contains(out, "r3@roll-call") {
		t.Error("事件范围应仅包含本人的点名")
	}
}

func TestBuildRollCalendar_Empty(t *testing.T) {
	out := buildRollCalendar(nil, time.Now())
	if strings.Contains(out, "BEGIN:VEVENT") {
		t.Error("无点名记录时不应有事件")
	}
	if !strings.Contains(out, "END:VCALENDAR") {
		t.Error("日历结构不完整")
	}
}
