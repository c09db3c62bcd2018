package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"inv-timesheet/backend/internal/model"
	"inv-timesheet/backend/internal/repository"
	pkgerrors "inv-timesheet/backend/pkg/errors"
)

// ── Mock EmployeeRepository ──

type mockEmployeeRepo struct {
	mu        sync.Mutex
	employees map[string]*model.Employee
}

func newMockEmployeeRepo() *mockEmployeeRepo {
	return &mockEmployeeRepo{employees: make(map[string]*model.Employee)}
}

func (m *mockEmployeeRepo) Create(_ context.Context, employee *model.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if employee.EmployeeID == "" {
		employee.EmployeeID = uuid.NewString()
	}
	m.employees[employee.EmployeeID] = employee
	return nil
}

func (m *mockEmployeeRepo) GetByID(_ context.Context, id string) (*model.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.employees[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock TimeEntryRepository ──
// 保存副本以模拟数据库：Service 对返回值的修改不影响存储

type mockTimeEntryRepo struct {
	mu        sync.Mutex
	entries   map[string]*model.TimeEntry
	employees *mockEmployeeRepo
	seq       int

	saveErr  error // SaveComputed 注入错误
	saveCall int
}

func newMockTimeEntryRepo(employees *mockEmployeeRepo) *mockTimeEntryRepo {
	return &mockTimeEntryRepo{entries: make(map[string]*model.TimeEntry), employees: employees}
}

func (m *mockTimeEntryRepo) Create(_ context.Context, entry *model.TimeEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry.TimeEntryID == "" {
		entry.TimeEntryID = uuid.NewString()
	}
	if entry.Version == 0 {
		entry.Version = 1
	}
	m.seq++
	entry.CreatedAt = time.Date(2026, 1, 1, 0, 0, m.seq, 0, time.UTC)
	entry.UpdatedAt = entry.CreatedAt
	cp := *entry
	cp.Employee = nil
	m.entries[entry.TimeEntryID] = &cp
	return nil
}

func (m *mockTimeEntryRepo) GetByID(ctx context.Context, id string) (*model.TimeEntry, error) {
	m.mu.Lock()
	e, ok := m.entries[id]
	if !ok || e.DeletedAt.Valid {
		m.mu.Unlock()
		return nil, gorm.ErrRecordNotFound
	}
	cp := *e
	m.mu.Unlock()

	if emp, err := m.employees.GetByID(ctx, cp.EmployeeID); err == nil {
		cp.Employee = emp
	}
	return &cp, nil
}

func (m *mockTimeEntryRepo) ListByEmployeeRange(_ context.Context, employeeID string, from, to time.Time) ([]model.TimeEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.TimeEntry
	for _, e := range m.entries {
		if e.EmployeeID != employeeID || e.DeletedAt.Valid {
			continue
		}
		if e.WorkDate.Before(from) || !e.WorkDate.Before(to) {
			continue
		}
		result = append(result, *e)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].WorkDate.Equal(result[j].WorkDate) {
			return result[i].WorkDate.Before(result[j].WorkDate)
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *mockTimeEntryRepo) Update(_ context.Context, entry *model.TimeEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.entries[entry.TimeEntryID]
	if !ok || stored.Version != entry.Version {
		return pkgerrors.ErrOptimisticLock
	}
	entry.Version++
	cp := *entry
	cp.Employee = nil
	cp.Status = stored.Status
	m.entries[entry.TimeEntryID] = &cp
	return nil
}

func (m *mockTimeEntryRepo) SoftDelete(_ context.Context, entry *model.TimeEntry, deletedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.entries[entry.TimeEntryID]
	if !ok || stored.Version != entry.Version {
		return pkgerrors.ErrOptimisticLock
	}
	stored.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	stored.DeletedBy = &deletedBy
	stored.Version++
	entry.Version++
	return nil
}

// SaveComputed 全部版本校验通过后才写入，模拟单事务回滚
func (m *mockTimeEntryRepo) SaveComputed(_ context.Context, entries []*model.TimeEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCall++
	if m.saveErr != nil {
		return m.saveErr
	}
	for _, e := range entries {
		stored, ok := m.entries[e.TimeEntryID]
		if !ok || stored.Version != e.Version {
			return pkgerrors.ErrOptimisticLock
		}
	}
	for _, e := range entries {
		stored := m.entries[e.TimeEntryID]
		stored.RegularHours = e.RegularHours
		stored.OvertimeHours = e.OvertimeHours
		stored.DailyDoubleOvertimeHours = e.DailyDoubleOvertimeHours
		stored.TotalHours = e.TotalHours
		stored.CalculationMethod = e.CalculationMethod
		stored.WeeklyHoursAtCalculation = e.WeeklyHoursAtCalculation
		stored.CalculatedAt = e.CalculatedAt
		stored.Version++
	}
	return nil
}

func (m *mockTimeEntryRepo) TransitionStatus(_ context.Context, id string, change repository.StatusChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.entries[id]
	if !ok || stored.DeletedAt.Valid || stored.Status != change.From {
		return pkgerrors.ErrOptimisticLock
	}
	stored.Status = change.To
	stored.Version++
	at := change.At
	actor := change.ActorID
	switch change.To {
	case model.EntryStatusPending:
		stored.SubmittedAt = &at
	case model.EntryStatusApproved:
		stored.ApprovedAt = &at
		stored.ApprovedBy = &actor
	case model.EntryStatusRejected:
		stored.RejectedAt = &at
		stored.RejectedBy = &actor
		stored.RejectReason = change.Reason
	}
	return nil
}

func (m *mockTimeEntryRepo) ListPending(ctx context.Context, managerID *string) ([]model.TimeEntry, error) {
	m.mu.Lock()
	var candidates []model.TimeEntry
	for _, e := range m.entries {
		if e.Status == model.EntryStatusPending && !e.DeletedAt.Valid {
			candidates = append(candidates, *e)
		}
	}
	m.mu.Unlock()

	var result []model.TimeEntry
	for _, e := range candidates {
		emp, err := m.employees.GetByID(ctx, e.EmployeeID)
		if err != nil {
			continue
		}
		if managerID != nil && (!emp.IsManagedBy(*managerID) || e.EmployeeID == *managerID) {
			continue
		}
		e.Employee = emp
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].WorkDate.Before(result[j].WorkDate) })
	return result, nil
}

// Transaction 记录事务内每条记录首次写入前的快照，fn 失败时按快照回滚
func (m *mockTimeEntryRepo) Transaction(_ context.Context, fn func(tx repository.TimeEntryRepository) error) error {
	tx := &mockTimeEntryTx{mockTimeEntryRepo: m, before: make(map[string]*model.TimeEntry)}
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

// mockTimeEntryTx 事务内视图：读直接透传，写之前保存快照
type mockTimeEntryTx struct {
	*mockTimeEntryRepo
	before map[string]*model.TimeEntry // nil 表示事务内新建
}

func (t *mockTimeEntryTx) snapshot(id string) {
	if _, seen := t.before[id]; seen {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[id]; ok {
		cp := *e
		t.before[id] = &cp
		return
	}
	t.before[id] = nil
}

func (t *mockTimeEntryTx) rollback() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, prev := range t.before {
		if prev == nil {
			delete(t.entries, id)
			continue
		}
		t.entries[id] = prev
	}
}

func (t *mockTimeEntryTx) Create(ctx context.Context, entry *model.TimeEntry) error {
	if err := t.mockTimeEntryRepo.Create(ctx, entry); err != nil {
		return err
	}
	if _, seen := t.before[entry.TimeEntryID]; !seen {
		t.before[entry.TimeEntryID] = nil
	}
	return nil
}

func (t *mockTimeEntryTx) Update(ctx context.Context, entry *model.TimeEntry) error {
	t.snapshot(entry.TimeEntryID)
	return t.mockTimeEntryRepo.Update(ctx, entry)
}

func (t *mockTimeEntryTx) SoftDelete(ctx context.Context, entry *model.TimeEntry, deletedBy string) error {
	t.snapshot(entry.TimeEntryID)
	return t.mockTimeEntryRepo.SoftDelete(ctx, entry, deletedBy)
}

func (t *mockTimeEntryTx) SaveComputed(ctx context.Context, entries []*model.TimeEntry) error {
	for _, e := range entries {
		t.snapshot(e.TimeEntryID)
	}
	return t.mockTimeEntryRepo.SaveComputed(ctx, entries)
}

func (t *mockTimeEntryTx) TransitionStatus(ctx context.Context, id string, change repository.StatusChange) error {
	t.snapshot(id)
	return t.mockTimeEntryRepo.TransitionStatus(ctx, id, change)
}

// stored 直接读取存储中的记录（测试断言用）
func (m *mockTimeEntryRepo) stored(id string) model.TimeEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.entries[id]
}

// ── Mock AuditLogRepository ──

type mockAuditLogRepo struct {
	mu      sync.Mutex
	logs    []model.AuditLog
	failErr error
}

func newMockAuditLogRepo() *mockAuditLogRepo {
	return &mockAuditLogRepo{}
}

func (m *mockAuditLogRepo) Create(_ context.Context, log *model.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	log.AuditLogID = int64(len(m.logs) + 1)
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockAuditLogRepo) List(_ context.Context, filter repository.AuditLogFilter) ([]model.AuditLog, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []model.AuditLog
	for _, l := range m.logs {
		if filter.ActorID != "" && l.ActorID != filter.ActorID {
			continue
		}
		if filter.TargetRecordID != "" && l.TargetRecordID != filter.TargetRecordID {
			continue
		}
		if filter.Action != "" && l.Action != filter.Action {
			continue
		}
		if filter.From != nil && l.OccurredAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !l.OccurredAt.Before(*filter.To) {
			continue
		}
		matched = append(matched, l)
	}
	total := int64(len(matched))
	if filter.Offset >= len(matched) {
		return nil, total, nil
	}
	end := len(matched)
	if filter.Limit > 0 && filter.Offset+filter.Limit < end {
		end = filter.Offset + filter.Limit
	}
	return matched[filter.Offset:end], total, nil
}

// actions 按写入顺序返回某记录的审计动作
func (m *mockAuditLogRepo) actions(targetID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []string
	for _, l := range m.logs {
		if l.TargetRecordID == targetID {
			result = append(result, l.Action)
		}
	}
	return result
}

// count 统计某类审计动作的条数
func (m *mockAuditLogRepo) count(action string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.logs {
		if l.Action == action {
			n++
		}
	}
	return n
}

var errMockDB = errors.New("mock db error")

// mutate 绕过 Service 直接修改存储（模拟历史脏数据或并发写入）
func (m *mockTimeEntryRepo) mutate(id string, fn func(e *model.TimeEntry)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.entries[id])
}
