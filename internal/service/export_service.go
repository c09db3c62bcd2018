package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"inv-timesheet/backend/internal/overtime"
	"inv-timesheet/backend/internal/repository"
	pkgerrors "inv-timesheet/backend/pkg/errors"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("生成 Excel 文件失败")

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response。
// 一个 Sheet：每条记录一行，末行为周汇总（不含被驳回记录）。
type ExportService interface {
	ExportWeek(ctx context.Context, actor Actor, employeeID string, date time.Time) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

var exportHeaders = []string{
	"日期", "上班", "下班", "休息(h)", "常规(h)", "加班(h)", "双倍加班(h)", "合计(h)", "计算方式", "状态", "修正原因",
}

// ═══════════════════════════════════════════════════════════
// ExportWeek 导出员工周工时为 Excel
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportWeek(ctx context.Context, actor Actor, employeeID string, date time.Time) (*bytes.Buffer, string, error) {
	if employeeID == "" {
		employeeID = actor.ID
	}
	if err := validateID(employeeID); err != nil {
		return nil, "", err
	}

	emp, err := s.repo.Employee.GetByID(ctx, employeeID)
	if err != nil {
		if isNotFound(err) {
			return nil, "", ErrEmployeeNotFound
		}
		s.logger.Error("查询员工档案失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, "", err
	}
	if !actor.canView(emp) {
		return nil, "", pkgerrors.ErrUnauthorized
	}

	week := overtime.WeekOf(date)
	entries, err := s.repo.TimeEntry.ListByEmployeeRange(ctx, employeeID, week.Start, week.End)
	if err != nil {
		s.logger.Error("查询周工时失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, "", err
	}
	summary := toWeekResponse(employeeID, week, entries)
	loc := employeeLocation(emp)

	f := excelize.NewFile()
	defer f.Close()

	sheetName := week.Label()
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "C", 18)
	f.SetColWidth(sheetName, "D", "H", 11)
	f.SetColWidth(sheetName, "I", "J", 20)
	f.SetColWidth(sheetName, "K", "K", 30)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	hoursStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 2})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s %s (%s ~ %s)", emp.Name, week.Label(), summary.StartDate, summary.EndDate))
	f.MergeCell(sheetName, "A1", cell(colName(len(exportHeaders)-1), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	row := 2
	for i, h := range exportHeaders {
		f.SetCellValue(sheetName, cell(colName(i), row), h)
	}
	f.SetCellStyle(sheetName, cell("A", row), cell(colName(len(exportHeaders)-1), row), headerStyle)

	// 数据行
	row = 3
	for i := range entries {
		e := &entries[i]
		values := []interface{}{
			e.WorkDate.Format(dateLayout),
			formatPunch(e.TimeIn, loc),
			formatPunch(e.TimeOut, loc),
			e.BreakDuration,
			e.RegularHours,
			e.OvertimeHours,
			e.DailyDoubleOvertimeHours,
			e.TotalHours,
			e.CalculationMethod,
			e.Status,
			e.OverrideReason,
		}
		for col, v := range values {
			f.SetCellValue(sheetName, cell(colName(col), row), v)
		}
		f.SetCellStyle(sheetName, cell("D", row), cell("H", row), hoursStyle)
		row++
	}

	// 汇总行
	f.SetCellValue(sheetName, cell("A", row), "合计")
	f.SetCellValue(sheetName, cell("E", row), summary.Totals.RegularHours)
	f.SetCellValue(sheetName, cell("F", row), summary.Totals.OvertimeHours)
	f.SetCellValue(sheetName, cell("G", row), summary.Totals.DailyDoubleOvertimeHours)
	f.SetCellValue(sheetName, cell("H", row), summary.Totals.TotalHours)
	f.SetCellStyle(sheetName, cell("E", row), cell("H", row), hoursStyle)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("工时_%s_%s.xlsx", emp.Name, week.Label())
	return buf, filename, nil
}

// ── 辅助函数 ──

func formatPunch(t *time.Time, loc *time.Location) string {
	if t == nil {
		return "-"
	}
	return t.In(loc).Format("2006-01-02 15:04")
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
