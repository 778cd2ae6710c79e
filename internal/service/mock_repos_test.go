package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gorm.io/gorm"

	"stride/backend/internal/model"
	"stride/backend/internal/repository"
	"stride/backend/pkg/caldate"
)

// ── Mock AcademicEventRepository ──

type mockAcademicEventRepo struct {
	events []model.AcademicEvent
	err    error
}

func newMockAcademicEventRepo(events ...model.AcademicEvent) *mockAcademicEventRepo {
	return &mockAcademicEventRepo{events: events}
}

func (m *mockAcademicEventRepo) ListByOwner(_ context.Context, ownerID string) ([]model.AcademicEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	result := []model.AcademicEvent{}
	for _, e := range m.events {
		if e.OwnerID == ownerID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockAcademicEventRepo) ListByOwnerInRange(ctx context.Context, ownerID string, from, to caldate.Date) ([]model.AcademicEvent, error) {
	all, err := m.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	result := []model.AcademicEvent{}
	for _, e := range all {
		if !to.IsZero() && e.StartDate.After(to) {
			continue
		}
		if !from.IsZero() && e.EndDate.Before(from) {
			continue
		}
		result = append(result, e)
	}
	return result, nil
}

func (m *mockAcademicEventRepo) ReplaceImported(_ context.Context, ownerID, source string, events []model.AcademicEvent) error {
	if m.err != nil {
		return m.err
	}
	kept := []model.AcademicEvent{}
	for _, e := range m.events {
		if e.OwnerID == ownerID && e.Source == source {
			continue
		}
		kept = append(kept, e)
	}
	for i := range events {
		if events[i].AcademicEventID == "" {
			events[i].AcademicEventID = fmt.Sprintf("evt-%d", len(kept)+i+1)
		}
	}
	m.events = append(kept, events...)
	return nil
}

// ── Mock CommitmentRepository ──

type mockCommitmentRepo struct {
	commitments []model.Commitment
	err         error
}

func newMockCommitmentRepo(commitments ...model.Commitment) *mockCommitmentRepo {
	return &mockCommitmentRepo{commitments: commitments}
}

func (m *mockCommitmentRepo) ListByOwner(_ context.Context, ownerID string) ([]model.Commitment, error) {
	if m.err != nil {
		return nil, m.err
	}
	result := []model.Commitment{}
	for _, c := range m.commitments {
		if c.OwnerID == ownerID {
			result = append(result, c)
		}
	}
	return result, nil
}

// ── Mock EnergyLogRepository ──

type mockEnergyLogRepo struct {
	mu   sync.Mutex
	logs map[string]*model.EnergyLog // owner|date → log
	err  error
}

func newMockEnergyLogRepo() *mockEnergyLogRepo {
	return &mockEnergyLogRepo{logs: make(map[string]*model.EnergyLog)}
}

func energyKey(ownerID string, date caldate.Date) string { return ownerID + "|" + date.String() }

func (m *mockEnergyLogRepo) ListRecentByOwner(_ context.Context, ownerID string, limit int) ([]model.EnergyLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	result := []model.EnergyLog{}
	for _, l := range m.logs {
		if l.OwnerID == ownerID {
			result = append(result, *l)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].LogDate.After(result[j].LogDate) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockEnergyLogRepo) GetByOwnerAndDate(_ context.Context, ownerID string, date caldate.Date) (*model.EnergyLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.logs[energyKey(ownerID, date)]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEnergyLogRepo) Upsert(_ context.Context, log *model.EnergyLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	key := energyKey(log.OwnerID, log.LogDate)
	if existing, ok := m.logs[key]; ok {
		log.EnergyLogID = existing.EnergyLogID
	} else if log.EnergyLogID == "" {
		log.EnergyLogID = fmt.Sprintf("log-%d", len(m.logs)+1)
	}
	cp := *log
	m.logs[key] = &cp
	return nil
}

// ── Mock GoalRepository ──

type mockGoalRepo struct {
	goals map[string]*model.Goal
}

func newMockGoalRepo(goals ...*model.Goal) *mockGoalRepo {
	m := &mockGoalRepo{goals: make(map[string]*model.Goal)}
	for _, g := range goals {
		m.goals[g.GoalID] = g
	}
	return m
}

func (m *mockGoalRepo) GetByID(_ context.Context, id string) (*model.Goal, error) {
	if g, ok := m.goals[id]; ok {
		return g, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock RetroplanRepository ──

type mockRetroplanRepo struct {
	mu    sync.Mutex
	plans map[string]*model.Retroplan
	err   error
}

func newMockRetroplanRepo() *mockRetroplanRepo {
	return &mockRetroplanRepo{plans: make(map[string]*model.Retroplan)}
}

func (m *mockRetroplanRepo) GetByGoalID(_ context.Context, goalID string) (*model.Retroplan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if p, ok := m.plans[goalID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRetroplanRepo) Upsert(_ context.Context, plan *model.Retroplan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	cp := *plan
	m.plans[plan.GoalID] = &cp
	return nil
}

func (m *mockRetroplanRepo) DeleteByGoalID(_ context.Context, goalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.plans, goalID)
	return nil
}

// ── 测试仓库聚合 ──

type testRepos struct {
	events      *mockAcademicEventRepo
	commitments *mockCommitmentRepo
	energyLogs  *mockEnergyLogRepo
	goals       *mockGoalRepo
	retroplans  *mockRetroplanRepo
}

func newTestRepos() *testRepos {
	return &testRepos{
		events:      newMockAcademicEventRepo(),
		commitments: newMockCommitmentRepo(),
		energyLogs:  newMockEnergyLogRepo(),
		goals:       newMockGoalRepo(),
		retroplans:  newMockRetroplanRepo(),
	}
}

func (r *testRepos) repository() *repository.Repository {
	return &repository.Repository{
		AcademicEvent: r.events,
		Commitment:    r.commitments,
		EnergyLog:     r.energyLogs,
		Goal:          r.goals,
		Retroplan:     r.retroplans,
	}
}
