package task

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/caretrack/caretrack/internal/platform/auth"
	"github.com/caretrack/caretrack/pkg/errs"
)

// -- Mock Repository --

type mockTaskRepo struct {
	mu            sync.Mutex
	tasks         map[uuid.UUID]*Task
	interventions map[uuid.UUID]*TaskIntervention
}

func newMockTaskRepo() *mockTaskRepo {
	return &mockTaskRepo{
		tasks:         make(map[uuid.UUID]*Task),
		interventions: make(map[uuid.UUID]*TaskIntervention),
	}
}

func (m *mockTaskRepo) Create(_ context.Context, t *Task, ivs []*TaskIntervention) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.tasks[t.ID] = &cp
	for _, iv := range ivs {
		ivCp := *iv
		m.interventions[iv.ID] = &ivCp
	}
	return nil
}

func (m *mockTaskRepo) GetByID(_ context.Context, id uuid.UUID) (*Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (m *mockTaskRepo) matches(t *Task, f Filter) bool {
	if !t.Active {
		return false
	}
	if f.PatientID != nil && t.PatientID != *f.PatientID {
		return false
	}
	return true
}

func (m *mockTaskRepo) List(ctx context.Context, f Filter, limit, offset int) ([]*Task, int, error) {
	all, err := m.ListAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *mockTaskRepo) ListAll(_ context.Context, f Filter) ([]*Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var r []*Task
	for _, t := range m.tasks {
		if m.matches(t, f) {
			cp := *t
			r = append(r, &cp)
		}
	}
	return r, nil
}

func (m *mockTaskRepo) Retire(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok || !t.Active {
		return false, nil
	}
	t.Active = false
	return true, nil
}

func (m *mockTaskRepo) GetIntervention(_ context.Context, id uuid.UUID) (*TaskIntervention, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	iv, ok := m.interventions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *iv
	return &cp, nil
}

func (m *mockTaskRepo) ListInterventions(_ context.Context, taskID uuid.UUID) ([]*TaskIntervention, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var r []*TaskIntervention
	for _, iv := range m.interventions {
		if iv.TaskID == taskID {
			cp := *iv
			r = append(r, &cp)
		}
	}
	return r, nil
}

func (m *mockTaskRepo) InterventionsByTaskIDs(ctx context.Context, taskIDs []uuid.UUID) (map[uuid.UUID][]*TaskIntervention, error) {
	result := make(map[uuid.UUID][]*TaskIntervention)
	for _, id := range taskIDs {
		ivs, err := m.ListInterventions(ctx, id)
		if err != nil {
			return nil, err
		}
		result[id] = ivs
	}
	return result, nil
}

func (m *mockTaskRepo) UpdateInterventionOutcome(_ context.Context, id uuid.UUID, expected, next OutcomeStatus, note *string, outcomeDate *time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	iv, ok := m.interventions[id]
	if !ok || iv.OutcomeStatus != expected {
		return false, nil
	}
	iv.OutcomeStatus = next
	iv.OutcomeNote = note
	iv.OutcomeDate = outcomeDate
	return true, nil
}

// -- Mock References --

type mockCatalog struct {
	wards         map[uuid.UUID]uuid.UUID
	interventions map[uuid.UUID]bool
}

func (m *mockCatalog) WardDepartment(_ context.Context, wardID uuid.UUID) (uuid.UUID, error) {
	dept, ok := m.wards[wardID]
	if !ok {
		return uuid.Nil, errs.NotFoundf("ward %s not found", wardID)
	}
	return dept, nil
}

func (m *mockCatalog) InterventionExists(_ context.Context, id uuid.UUID) (bool, error) {
	return m.interventions[id], nil
}

type mockPatients struct{ known map[uuid.UUID]bool }

func (m *mockPatients) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	return m.known[id], nil
}

// -- Fixture --

type fixture struct {
	svc       *Service
	repo      *mockTaskRepo
	patientID uuid.UUID
	wardID    uuid.UUID
	deptID    uuid.UUID
	ivIDs     []uuid.UUID
}

func newFixture(t *testing.T, interventionCount int) *fixture {
	t.Helper()
	repo := newMockTaskRepo()
	cat := &mockCatalog{
		wards:         make(map[uuid.UUID]uuid.UUID),
		interventions: make(map[uuid.UUID]bool),
	}
	pats := &mockPatients{known: make(map[uuid.UUID]bool)}

	f := &fixture{repo: repo, patientID: uuid.New(), wardID: uuid.New(), deptID: uuid.New()}
	cat.wards[f.wardID] = f.deptID
	pats.known[f.patientID] = true
	for i := 0; i < interventionCount; i++ {
		id := uuid.New()
		cat.interventions[id] = true
		f.ivIDs = append(f.ivIDs, id)
	}

	f.svc = NewService(repo, cat, pats)
	f.svc.nowFn = func() time.Time { return testNow }
	return f
}

func (f *fixture) createInput() CreateInput {
	in := CreateInput{
		Title:     "Post-op mobility review",
		TaskType:  "assessment",
		Priority:  PriorityHigh,
		DueDate:   testNow.AddDate(0, 0, 7),
		PatientID: f.patientID,
	}
	for _, id := range f.ivIDs {
		in.Interventions = append(in.Interventions, InterventionInput{
			InterventionID: id,
			WardID:         f.wardID,
			StartDate:      testNow,
			EndDate:        testNow.AddDate(0, 0, 7),
		})
	}
	return in
}

func testCaller() auth.Caller {
	return auth.Caller{UserID: uuid.New(), Role: auth.RoleProfessional}
}

// -- Create --

func TestCreate_InterventionsStartAssigned(t *testing.T) {
	f := newFixture(t, 3)

	detail, err := f.svc.Create(context.Background(), testCaller(), f.createInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(detail.Interventions) != 3 {
		t.Fatalf("expected 3 interventions, got %d", len(detail.Interventions))
	}
	for _, iv := range detail.Interventions {
		if iv.OutcomeStatus != OutcomeAssigned {
			t.Errorf("intervention started as %s, want %s", iv.OutcomeStatus, OutcomeAssigned)
		}
		if iv.OutcomeDate != nil {
			t.Errorf("new intervention carries outcome date %v", iv.OutcomeDate)
		}
	}
	if detail.Status != StatusAssigned {
		t.Errorf("new task status = %s, want %s", detail.Status, StatusAssigned)
	}
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t, 2)

	tests := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"empty title", func(in *CreateInput) { in.Title = "" }},
		{"bad priority", func(in *CreateInput) { in.Priority = "urgent" }},
		{"no interventions", func(in *CreateInput) { in.Interventions = nil }},
		{"past due date", func(in *CreateInput) { in.DueDate = testNow.AddDate(0, 0, -1) }},
		{"unknown patient", func(in *CreateInput) { in.PatientID = uuid.New() }},
		{"unknown intervention", func(in *CreateInput) { in.Interventions[0].InterventionID = uuid.New() }},
		{"unknown ward", func(in *CreateInput) { in.Interventions[0].WardID = uuid.New() }},
		{"end before start", func(in *CreateInput) {
			in.Interventions[0].EndDate = in.Interventions[0].StartDate.AddDate(0, 0, -1)
		}},
		{"duplicate intervention", func(in *CreateInput) {
			in.Interventions[1].InterventionID = in.Interventions[0].InterventionID
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := f.createInput()
			tc.mutate(&in)
			_, err := f.svc.Create(context.Background(), testCaller(), in)
			if errs.KindOf(err) != errs.KindValidation {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreate_DueTodayIsValid(t *testing.T) {
	f := newFixture(t, 1)
	in := f.createInput()
	in.DueDate = testNow

	if _, err := f.svc.Create(context.Background(), testCaller(), in); err != nil {
		t.Fatalf("due today should be accepted: %v", err)
	}
}

// -- Get --

func TestGet_RetiredReadsAsMissing(t *testing.T) {
	f := newFixture(t, 1)
	detail, err := f.svc.Create(context.Background(), testCaller(), f.createInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := f.svc.Retire(context.Background(), detail.ID); err != nil {
		t.Fatalf("retire failed: %v", err)
	}
	if _, err := f.svc.Get(context.Background(), detail.ID); errs.KindOf(err) != errs.KindNotFound {
		t.Errorf("expected not found after retire, got %v", err)
	}
	if err := f.svc.Retire(context.Background(), detail.ID); errs.KindOf(err) != errs.KindNotFound {
		t.Errorf("second retire should report not found, got %v", err)
	}
}

// -- ApplyOutcome --

func TestApplyOutcome_StampsDateAndDerivesCompleted(t *testing.T) {
	f := newFixture(t, 1)
	detail, err := f.svc.Create(context.Background(), testCaller(), f.createInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	note := "patient reviewed on ward"
	got, err := f.svc.ApplyOutcome(context.Background(), detail.Interventions[0].ID, OutcomeSeen, &note)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	iv := got.Interventions[0]
	if iv.OutcomeStatus != OutcomeSeen {
		t.Errorf("outcome = %s, want %s", iv.OutcomeStatus, OutcomeSeen)
	}
	wantDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	if iv.OutcomeDate == nil || !iv.OutcomeDate.Equal(wantDate) {
		t.Errorf("outcome date = %v, want %s", iv.OutcomeDate, wantDate)
	}
	if got.Status != StatusCompleted {
		t.Errorf("task status = %s, want %s", got.Status, StatusCompleted)
	}
}

func TestApplyOutcome_TerminalIsImmutable(t *testing.T) {
	f := newFixture(t, 1)
	detail, err := f.svc.Create(context.Background(), testCaller(), f.createInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ivID := detail.Interventions[0].ID

	if _, err := f.svc.ApplyOutcome(context.Background(), ivID, OutcomeDeclined, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = f.svc.ApplyOutcome(context.Background(), ivID, OutcomeInProgress, nil)
	if errs.KindOf(err) != errs.KindInvalidTransition {
		t.Errorf("expected invalid transition, got %v", err)
	}
}

func TestApplyOutcome_UnknownIntervention(t *testing.T) {
	f := newFixture(t, 1)
	_, err := f.svc.ApplyOutcome(context.Background(), uuid.New(), OutcomeSeen, nil)
	if errs.KindOf(err) != errs.KindNotFound {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestApplyOutcome_ConcurrentWritersOneWins(t *testing.T) {
	f := newFixture(t, 1)
	detail, err := f.svc.Create(context.Background(), testCaller(), f.createInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ivID := detail.Interventions[0].ID

	const writers = 8
	errors := make(chan error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.ApplyOutcome(context.Background(), ivID, OutcomeSeen, nil)
			errors <- err
		}()
	}
	wg.Wait()
	close(errors)

	wins := 0
	for err := range errors {
		if err == nil {
			wins++
		} else if errs.KindOf(err) != errs.KindInvalidTransition {
			t.Errorf("loser should see invalid transition, got %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("expected exactly one winner, got %d", wins)
	}

	iv, _ := f.repo.GetIntervention(context.Background(), ivID)
	if iv.OutcomeStatus != OutcomeSeen {
		t.Errorf("final outcome = %s, want %s", iv.OutcomeStatus, OutcomeSeen)
	}
}

// -- List --

func TestList_MineWithEmptyScope(t *testing.T) {
	f := newFixture(t, 1)
	if _, err := f.svc.Create(context.Background(), testCaller(), f.createInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	caller := auth.Caller{UserID: uuid.New(), Role: auth.RoleAssistant}
	details, total, err := f.svc.List(context.Background(), caller, ListFilter{Mine: true}, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(details) != 0 || total != 0 {
		t.Errorf("caller with no departments should see nothing, got %d/%d", len(details), total)
	}
}

func TestList_PatientFilter(t *testing.T) {
	f := newFixture(t, 1)
	if _, err := f.svc.Create(context.Background(), testCaller(), f.createInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	other := uuid.New()
	details, total, err := f.svc.List(context.Background(), testCaller(), ListFilter{PatientID: &other}, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(details) != 0 || total != 0 {
		t.Errorf("expected no tasks for other patient, got %d/%d", len(details), total)
	}

	details, total, err = f.svc.List(context.Background(), testCaller(), ListFilter{PatientID: &f.patientID}, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(details) != 1 || total != 1 {
		t.Errorf("expected one task for patient, got %d/%d", len(details), total)
	}
}
