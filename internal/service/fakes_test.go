package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/adobah666/edutrack-sub001/internal/ledger"
	"github.com/adobah666/edutrack-sub001/internal/models"
	"github.com/adobah666/edutrack-sub001/internal/repository"
)

// memDB is a small in-memory school used by the service tests.
type memDB struct {
	mu sync.Mutex

	students      map[string]models.Student
	classes       map[string]models.Class
	subjects      map[string]models.Subject
	classSubjects map[string][]string
	overrides     map[string]models.TermWeightOverride
	schemes       map[string]models.GradingScheme
	items         []models.GradedItem
	results       []models.ResultRecord
	approvals     map[string]models.TermApproval
	history       []models.ClassHistoryEntry
	audits        []models.AuditLog

	promoteErr     error
	reconcileErr   error
	placementErr   error
	reconcileDelay time.Duration

	approvalWrites int
	reconcileCalls int
	historyInserts int
	seq            int
}

func newMemDB() *memDB {
	return &memDB{
		students:      map[string]models.Student{},
		classes:       map[string]models.Class{},
		subjects:      map[string]models.Subject{},
		classSubjects: map[string][]string{},
		overrides:     map[string]models.TermWeightOverride{},
		schemes:       map[string]models.GradingScheme{},
		approvals:     map[string]models.TermApproval{},
	}
}

func (db *memDB) nextID(prefix string) string {
	db.seq++
	return fmt.Sprintf("%s-%d", prefix, db.seq)
}

func (db *memDB) addClass(id, gradeID string) {
	db.classes[id] = models.Class{ID: id, Name: id, GradeID: gradeID}
}

func (db *memDB) addStudent(id, classID, gradeID string) {
	st := models.Student{ID: id, FullName: id, Active: true}
	if classID != "" {
		c, g := classID, gradeID
		st.ClassID = &c
		st.GradeID = &g
	}
	db.students[id] = st
}

func (db *memDB) addSubject(classID string, subject models.Subject) {
	db.subjects[subject.ID] = subject
	db.classSubjects[classID] = append(db.classSubjects[classID], subject.ID)
}

func (db *memDB) addItem(item models.GradedItem) {
	db.items = append(db.items, item)
}

func (db *memDB) addResult(itemID, studentID string, score float64) {
	db.results = append(db.results, models.ResultRecord{GradedItemID: itemID, StudentID: studentID, Score: score})
}

func (db *memDB) addHistory(entry models.ClassHistoryEntry) {
	db.history = append(db.history, entry)
}

func (db *memDB) activeEntries(studentID string) []models.ClassHistoryEntry {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []models.ClassHistoryEntry
	for _, e := range db.history {
		if e.StudentID == studentID && e.IsActive {
			out = append(out, e)
		}
	}
	return out
}

func (db *memDB) auditActions() []string {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make([]string, 0, len(db.audits))
	for _, a := range db.audits {
		out = append(out, a.Action)
	}
	return out
}

func overrideKey(subjectID string, term models.Term) string {
	return subjectID + "|" + string(term)
}

type studentStub struct{ db *memDB }

func (s studentStub) FindByID(ctx context.Context, id string) (*models.Student, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	st, ok := s.db.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &st, nil
}

func (s studentStub) FindByIDs(ctx context.Context, ids []string) ([]models.Student, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Student
	for _, id := range ids {
		if st, ok := s.db.students[id]; ok {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s studentStub) UpdatePlacement(ctx context.Context, ids []string, fromClassID, classID, gradeID string) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.placementErr != nil {
		return 0, s.db.placementErr
	}
	for _, id := range ids {
		st, ok := s.db.students[id]
		if !ok || st.CurrentClassID() != fromClassID {
			return 0, fmt.Errorf("%w: student %s", repository.ErrPlacementChanged, id)
		}
	}
	for _, id := range ids {
		st := s.db.students[id]
		c, g := classID, gradeID
		st.ClassID, st.GradeID = &c, &g
		s.db.students[id] = st
	}
	return int64(len(ids)), nil
}

type classStub struct{ db *memDB }

func (s classStub) FindByID(ctx context.Context, id string) (*models.Class, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.classes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

type subjectStub struct{ db *memDB }

func (s subjectStub) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	sub, ok := s.db.subjects[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &sub, nil
}

func (s subjectStub) ListByClass(ctx context.Context, classID string) ([]models.Subject, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Subject
	for _, id := range s.db.classSubjects[classID] {
		out = append(out, s.db.subjects[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

type overrideStub struct{ db *memDB }

func (s overrideStub) Find(ctx context.Context, subjectID string, term models.Term) (*models.TermWeightOverride, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	o, ok := s.db.overrides[overrideKey(subjectID, term)]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (s overrideStub) Upsert(ctx context.Context, override *models.TermWeightOverride) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if override.ID == "" {
		override.ID = s.db.nextID("override")
	}
	s.db.overrides[overrideKey(override.SubjectID, override.Term)] = *override
	return nil
}

func (s overrideStub) Delete(ctx context.Context, subjectID string, term models.Term) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	key := overrideKey(subjectID, term)
	if _, ok := s.db.overrides[key]; !ok {
		return false, nil
	}
	delete(s.db.overrides, key)
	return true, nil
}

type schemeStub struct{ db *memDB }

func (s schemeStub) FindByID(ctx context.Context, id string) (*models.GradingScheme, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	scheme, ok := s.db.schemes[id]
	if !ok {
		return nil, nil
	}
	return &scheme, nil
}

func (s schemeStub) FindDefault(ctx context.Context) (*models.GradingScheme, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, scheme := range s.db.schemes {
		if scheme.IsDefault {
			sc := scheme
			return &sc, nil
		}
	}
	return nil, nil
}

type itemStub struct{ db *memDB }

func (s itemStub) List(ctx context.Context, filter models.GradedItemFilter) ([]models.GradedItem, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.GradedItem
	for _, item := range s.db.items {
		if item.SubjectID == filter.SubjectID && item.ClassID == filter.ClassID && item.Term == filter.Term {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s itemStub) ResultsForStudent(ctx context.Context, studentID string, itemIDs []string) ([]models.ResultRecord, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	wanted := map[string]bool{}
	for _, id := range itemIDs {
		wanted[id] = true
	}
	var out []models.ResultRecord
	for _, r := range s.db.results {
		if r.StudentID == studentID && wanted[r.GradedItemID] {
			out = append(out, r)
		}
	}
	return out, nil
}

type approvalStub struct{ db *memDB }

func (s approvalStub) Get(ctx context.Context, classID string, term models.Term) (*models.TermApproval, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	a, ok := s.db.approvals[classID+"|"+string(term)]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s approvalStub) Upsert(ctx context.Context, approval *models.TermApproval) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if approval.ID == "" {
		approval.ID = s.db.nextID("approval")
	}
	s.db.approvalWrites++
	s.db.approvals[approval.ClassID+"|"+string(approval.Term)] = *approval
	return nil
}

type historyStub struct{ db *memDB }

func (s historyStub) ListByStudent(ctx context.Context, studentID string) ([]models.ClassHistoryEntry, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.ClassHistoryEntry
	for _, e := range s.db.history {
		if e.StudentID == studentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s historyStub) Reconcile(ctx context.Context, studentID string, planner repository.ReconcilePlanner) (models.ReconcilePlan, error) {
	if s.db.reconcileDelay > 0 {
		time.Sleep(s.db.reconcileDelay)
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.reconcileCalls++
	if s.db.reconcileErr != nil {
		return models.ReconcilePlan{}, s.db.reconcileErr
	}
	student, ok := s.db.students[studentID]
	if !ok {
		return models.ReconcilePlan{}, sql.ErrNoRows
	}

	var mine, others []models.ClassHistoryEntry
	for _, e := range s.db.history {
		if e.StudentID == studentID {
			mine = append(mine, e)
		} else {
			others = append(others, e)
		}
	}
	plan, err := planner(student, mine)
	if err != nil || !plan.NeedsWrite() {
		return plan, err
	}
	if plan.Insert != nil {
		plan.Insert.ID = s.db.nextID("history")
		s.db.historyInserts++
	}
	s.db.history = append(others, ledger.Apply(mine, plan)...)
	return plan, nil
}

func (s historyStub) Promote(ctx context.Context, params models.PromotionParams) ([]models.ClassHistoryEntry, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.promoteErr != nil {
		return nil, s.db.promoteErr
	}
	for _, id := range params.StudentIDs {
		st := s.db.students[id]
		if st.CurrentClassID() != params.FromClassID {
			return nil, fmt.Errorf("%w: student %s", repository.ErrPlacementChanged, id)
		}
	}
	promoted := map[string]bool{}
	for _, id := range params.StudentIDs {
		promoted[id] = true
	}
	for i, e := range s.db.history {
		if promoted[e.StudentID] && e.IsActive {
			at := params.At
			s.db.history[i].IsActive = false
			s.db.history[i].EndDate = &at
		}
	}
	entries := ledger.PromotionEntries(params, func() string { return s.db.nextID("history") })
	s.db.history = append(s.db.history, entries...)
	s.db.historyInserts += len(entries)
	for _, id := range params.StudentIDs {
		st := s.db.students[id]
		c, g := params.ToClassID, params.ToGradeID
		st.ClassID, st.GradeID = &c, &g
		s.db.students[id] = st
	}
	return entries, nil
}

type auditStub struct{ db *memDB }

func (s auditStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.audits = append(s.db.audits, *log)
	return nil
}

// accessStub grants or denies every check.
type accessStub struct {
	allow bool
	err   error
}

func (a accessStub) CanActOnClass(ctx context.Context, caller models.Caller, classID string) (bool, error) {
	return a.allow, a.err
}

func (a accessStub) CanActOnSubject(ctx context.Context, caller models.Caller, subjectID string) (bool, error) {
	return a.allow, a.err
}

func (a accessStub) CanViewStudent(ctx context.Context, caller models.Caller, student models.Student) (bool, error) {
	return a.allow, a.err
}

type invalidationStub struct {
	mu    sync.Mutex
	calls []string
}

func (s *invalidationStub) InvalidateReports(ctx context.Context, classID string, term models.Term) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, classID+"|"+string(term))
}

var (
	adminCaller   = models.Caller{UserID: "admin-1", Role: models.RoleAdmin}
	teacherCaller = models.Caller{UserID: "teacher-1", Role: models.RoleTeacher}
	studentCaller = models.Caller{UserID: "s1", Role: models.RoleStudent}
)

func float(v float64) *float64 { return &v }

func boolean(v bool) *bool { return &v }
