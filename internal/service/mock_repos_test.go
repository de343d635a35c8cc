package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"roll-call/internal/model"
	"roll-call/internal/repository"
	pkgerrors "roll-call/pkg/errors"
)

// ── Mock StaffRepository ──

type mockStaffRepo struct {
	staff map[string]*model.Staff
}

func newMockStaffRepo() *mockStaffRepo {
	return &mockStaffRepo{staff: make(map[string]*model.Staff)}
}

func (m *mockStaffRepo) Create(_ context.Context, staff *model.Staff) error {
	if staff.StaffID == "" {
		staff.StaffID = "staff-" + staff.Username
	}
	m.staff[staff.StaffID] = staff
	return nil
}

func (m *mockStaffRepo) GetByID(_ context.Context, id string) (*model.Staff, error) {
	if s, ok := m.staff[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStaffRepo) GetByUsername(_ context.Context, username string) (*model.Staff, error) {
	for _, s := range m.staff {
		if s.Username == username {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStaffRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.staff)), nil
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students []model.Student
	nextID   int
	listErr  error
}

func newMockStudentRepo(students ...model.Student) *mockStudentRepo {
	m := &mockStudentRepo{nextID: 1}
	for _, s := range students {
		if s.ID >= m.nextID {
			m.nextID = s.ID + 1
		}
		m.students = append(m.students, s)
	}
	return m
}

func (m *mockStudentRepo) List(_ context.Context) ([]model.Student, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]model.Student, len(m.students))
	copy(out, m.students)
	return out, nil
}

func (m *mockStudentRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.students)), nil
}

func (m *mockStudentRepo) CreateBatch(_ context.Context, students []model.Student) error {
	for i := range students {
		students[i].ID = m.nextID
		m.nextID++
		m.students = append(m.students, students[i])
	}
	return nil
}

func (m *mockStudentRepo) DeleteAll(_ context.Context) error {
	m.students = nil
	return nil
}

// ── Mock RollRepository ──

type mockRollRepo struct {
	rolls     map[string]*model.Roll
	createErr error
	onCreate  func() // 写入前回调，用于模拟慢写入
}

func newMockRollRepo() *mockRollRepo {
	return &mockRollRepo{rolls: make(map[string]*model.Roll)}
}

func (m *mockRollRepo) Create(_ context.Context, r *model.Roll) error {
	if m.onCreate != nil {
		m.onCreate()
	}
	if m.createErr != nil {
		return m.createErr
	}
	if r.RollID == "" {
		r.RollID = "roll-" + r.CompletedAt.Format(time.RFC3339Nano)
	}
	m.rolls[r.RollID] = r
	return nil
}

func (m *mockRollRepo) GetByID(_ context.Context, id string) (*model.Roll, error) {
	if r, ok := m.rolls[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRollRepo) List(_ context.Context, staffID string, offset, limit int) ([]model.Roll, int64, error) {
	var all []model.Roll
	for _, r := range m.rolls {
		if staffID != "" && r.StaffID != staffID {
			continue
		}
		all = append(all, *r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CompletedAt.After(all[j].CompletedAt) })

	total := int64(len(all))
	if offset >= len(all) {
		return []model.Roll{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// ── Mock BoardCache ──

type mockBoardCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	saveErr error
}

func newMockBoardCache() *mockBoardCache {
	return &mockBoardCache{data: make(map[string][]byte)}
}

func (m *mockBoardCache) SaveBoard(_ context.Context, staffID string, data []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data[staffID] = append([]byte(nil), data...)
	return nil
}

func (m *mockBoardCache) LoadBoard(_ context.Context, staffID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[staffID]
	if !ok {
		return nil, pkgerrors.ErrCacheMiss
	}
	return d, nil
}

func (m *mockBoardCache) DeleteBoard(_ context.Context, staffID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, staffID)
	return nil
}

func (m *mockBoardCache) DeleteAllBoards(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.data)
	m.data = make(map[string][]byte)
	return n, nil
}

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	tokens map[string]time.Duration
	err    error
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{tokens: make(map[string]time.Duration)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.tokens[jti] = ttl
	return nil
}

func (m *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := m.tokens[jti]
	return ok, nil
}

// ── 测试辅助 ──

var errMockDB = errors.New("mock db down")

func newTestRepository() (*repository.Repository, *mockStaffRepo, *mockStudentRepo, *mockRollRepo) {
	staffRepo := newMockStaffRepo()
	studentRepo := newMockStudentRepo(
		model.Student{ID: 1, FirstName: "Alan", LastName: "Lee"},
		model.Student{ID: 2, FirstName: "John", LastName: "Key"},
		model.Student{ID: 3, FirstName: "Carlos", LastName: "Morris"},
	)
	rollRepo := newMockRollRepo()
	repo := &repository.Repository{
		Staff:   staffRepo,
		Student: studentRepo,
		Roll:    rollRepo,
	}
	return repo, staffRepo, studentRepo, rollRepo
}
