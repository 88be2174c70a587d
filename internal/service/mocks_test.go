package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/JonnyWalker81/fittrack/backend/internal/models"
	"github.com/JonnyWalker81/fittrack/backend/internal/repository"
)

// memDB is an in-memory backing store shared by the mock repositories.
// The stats rollup reads concurrently, so every access takes the lock.
type memDB struct {
	mu sync.Mutex

	habits         map[string]*models.Habit
	progress       map[string]*models.HabitProgress // habitID|date -> row
	workouts       []models.Workout
	nutrition      []models.NutritionEntry
	stats          map[string]*models.UserStats
	workoutStats   map[string]*models.WorkoutStats
	nutritionStats map[string]*models.NutritionStats

	nextID         int
	upsertCalls    int
	saveRollupErr  error
	saveRollupHits int
}

func newMemDB() *memDB {
	return &memDB{
		habits:         make(map[string]*models.Habit),
		progress:       make(map[string]*models.HabitProgress),
		stats:          make(map[string]*models.UserStats),
		workoutStats:   make(map[string]*models.WorkoutStats),
		nutritionStats: make(map[string]*models.NutritionStats),
	}
}

func (db *memDB) repos() *repository.Repositories {
	return &repository.Repositories{
		Habits:     &mockHabitRepository{db: db},
		Progress:   &mockProgressRepository{db: db},
		Workouts:   &mockWorkoutRepository{db: db},
		Nutrition:  &mockNutritionRepository{db: db},
		UserStats:  &mockUserStatsRepository{db: db},
		DailyStats: &mockDailyStatsRepository{db: db},
	}
}

func (db *memDB) genID() string {
	db.nextID++
	return fmt.Sprintf("mock-%d", db.nextID)
}

func dayKey(id string, d models.Date) string {
	return id + "|" + d.String()
}

// seed helpers (call before the code under test runs)

func (db *memDB) addHabit(h models.Habit) *models.Habit {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.habits[h.ID] = &h
	return &h
}

func (db *memDB) addProgress(habitID, date string, completed bool, value float64) {
	db.mu.Lock()
	defer db.mu.Unlock()
	d := models.MustParseDate(date)
	db.progress[dayKey(habitID, d)] = &models.HabitProgress{
		ID: db.genID(), HabitID: habitID, Date: d, Completed: completed, ActualValue: value,
	}
}

func (db *memDB) addWorkout(userID, date string, minutes, calories int) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.workouts = append(db.workouts, models.Workout{
		ID: db.genID(), UserID: userID, Date: models.MustParseDate(date),
		DurationMinutes: minutes, Calories: calories,
	})
}

func (db *memDB) addNutrition(e models.NutritionEntry) {
	db.mu.Lock()
	defer db.mu.Unlock()
	e.ID = db.genID()
	db.nutrition = append(db.nutrition, e)
}

func (db *memDB) progressRow(habitID, date string) (models.HabitProgress, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	p, ok := db.progress[dayKey(habitID, models.MustParseDate(date))]
	if !ok {
		return models.HabitProgress{}, false
	}
	return *p, true
}

func (db *memDB) progressCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.progress)
}

// mockHabitRepository is a mock implementation of HabitRepository for testing
type mockHabitRepository struct {
	db *memDB
}

func (m *mockHabitRepository) Create(ctx context.Context, habit *models.Habit) (*models.Habit, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	h := *habit
	if h.ID == "" {
		h.ID = m.db.genID()
	}
	m.db.habits[h.ID] = &h
	return &h, nil
}

func (m *mockHabitRepository) GetByID(ctx context.Context, id string) (*models.Habit, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	h, ok := m.db.habits[id]
	if !ok {
		return nil, fmt.Errorf("habit %s: %w", id, repository.ErrNotFound)
	}
	out := *h
	return &out, nil
}

func (m *mockHabitRepository) GetByUserID(ctx context.Context, userID string) ([]models.Habit, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []models.Habit
	for _, h := range m.db.habits {
		if h.UserID == userID {
			out = append(out, *h)
		}
	}
	return out, nil
}

// mockProgressRepository is a mock implementation of HabitProgressRepository for testing
type mockProgressRepository struct {
	db *memDB
}

func (m *mockProgressRepository) ownerOf(habitID string) string {
	if h, ok := m.db.habits[habitID]; ok {
		return h.UserID
	}
	return ""
}

func (m *mockProgressRepository) GetByHabitAndDate(ctx context.Context, habitID string, date models.Date) (*models.HabitProgress, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	p, ok := m.db.progress[dayKey(habitID, date)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (m *mockProgressRepository) Upsert(ctx context.Context, progress *models.HabitProgress) (*models.HabitProgress, bool, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	m.db.upsertCalls++

	key := dayKey(progress.HabitID, progress.Date)
	if existing, ok := m.db.progress[key]; ok {
		existing.Completed = progress.Completed
		existing.ActualValue = progress.ActualValue
		out := *existing
		return &out, false, nil
	}

	p := *progress
	p.ID = m.db.genID()
	p.CreatedAt = time.Now()
	m.db.progress[key] = &p
	out := p
	return &out, true, nil
}

func (m *mockProgressRepository) SetCompleted(ctx context.Context, habitID string, date models.Date, completed bool) (*models.HabitProgress, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	p, ok := m.db.progress[dayKey(habitID, date)]
	if !ok {
		return nil, fmt.Errorf("progress: %w", repository.ErrNotFound)
	}
	p.Completed = completed
	out := *p
	return &out, nil
}

func (m *mockProgressRepository) filter(keep func(p *models.HabitProgress) bool) []models.HabitProgress {
	var out []models.HabitProgress
	for _, p := range m.db.progress {
		if keep(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func (m *mockProgressRepository) GetByHabitAndDateRange(ctx context.Context, habitID string, start, end models.Date) ([]models.HabitProgress, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	return m.filter(func(p *models.HabitProgress) bool {
		return p.HabitID == habitID && p.Date.InRange(start, end)
	}), nil
}

func (m *mockProgressRepository) GetByUserAndDateRange(ctx context.Context, userID string, start, end models.Date) ([]models.HabitProgress, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	return m.filter(func(p *models.HabitProgress) bool {
		return m.ownerOf(p.HabitID) == userID && p.Date.InRange(start, end)
	}), nil
}

func (m *mockProgressRepository) CompletedDates(ctx context.Context, userID string, start, end models.Date) ([]models.Date, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	rows := m.filter(func(p *models.HabitProgress) bool {
		return p.Completed && m.ownerOf(p.HabitID) == userID && p.Date.InRange(start, end)
	})
	out := make([]models.Date, 0, len(rows))
	for _, p := range rows {
		out = append(out, p.Date)
	}
	return out, nil
}

func (m *mockProgressRepository) CountCompletedByUser(ctx context.Context, userID string) (int, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	return len(m.filter(func(p *models.HabitProgress) bool {
		return p.Completed && m.ownerOf(p.HabitID) == userID
	})), nil
}

func (m *mockProgressRepository) LastCompletedDate(ctx context.Context, userID string) (*models.Date, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	rows := m.filter(func(p *models.HabitProgress) bool {
		return p.Completed && m.ownerOf(p.HabitID) == userID
	})
	if len(rows) == 0 {
		return nil, nil
	}
	d := rows[len(rows)-1].Date
	return &d, nil
}

// mockWorkoutRepository is a mock implementation of WorkoutRepository for testing
type mockWorkoutRepository struct {
	db *memDB
}

func (m *mockWorkoutRepository) Create(ctx context.Context, w *models.Workout) (*models.Workout, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := *w
	out.ID = m.db.genID()
	m.db.workouts = append(m.db.workouts, out)
	return &out, nil
}

func (m *mockWorkoutRepository) GetByUserAndDateRange(ctx context.Context, userID string, start, end models.Date) ([]models.Workout, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []models.Workout
	for _, w := range m.db.workouts {
		if w.UserID == userID && w.Date.InRange(start, end) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (m *mockWorkoutRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	n := 0
	for _, w := range m.db.workouts {
		if w.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *mockWorkoutRepository) LastWorkoutDate(ctx context.Context, userID string) (*models.Date, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var last *models.Date
	for _, w := range m.db.workouts {
		if w.UserID == userID && (last == nil || w.Date.After(*last)) {
			d := w.Date
			last = &d
		}
	}
	return last, nil
}

// mockNutritionRepository is a mock implementation of NutritionRepository for testing
type mockNutritionRepository struct {
	db *memDB
}

func (m *mockNutritionRepository) Create(ctx context.Context, e *models.NutritionEntry) (*models.NutritionEntry, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := *e
	out.ID = m.db.genID()
	m.db.nutrition = append(m.db.nutrition, out)
	return &out, nil
}

func (m *mockNutritionRepository) GetByUserAndDateRange(ctx context.Context, userID string, start, end models.Date) ([]models.NutritionEntry, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []models.NutritionEntry
	for _, e := range m.db.nutrition {
		if e.UserID == userID && e.Date.InRange(start, end) {
			out = append(out, e)
		}
	}
	return out, nil
}

// mockUserStatsRepository is a mock implementation of UserStatsRepository for testing
type mockUserStatsRepository struct {
	db *memDB
}

func (m *mockUserStatsRepository) GetOrCreate(ctx context.Context, userID string) (*models.UserStats, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	s, ok := m.db.stats[userID]
	if !ok {
		s = &models.UserStats{ID: m.db.genID(), UserID: userID}
		m.db.stats[userID] = s
	}
	out := *s
	return &out, nil
}

func (m *mockUserStatsRepository) SaveRollup(ctx context.Context, stats *models.UserStats) (*models.UserStats, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	m.db.saveRollupHits++
	if m.db.saveRollupErr != nil {
		return nil, m.db.saveRollupErr
	}
	s, ok := m.db.stats[stats.UserID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// calorie totals are not copied; longest is a running maximum like the real stores
	s.TotalWorkouts = stats.TotalWorkouts
	s.TotalHabitsCompleted = stats.TotalHabitsCompleted
	s.CurrentStreak = stats.CurrentStreak
	s.LongestStreak = max(s.LongestStreak, stats.LongestStreak)
	s.LastActivityDate = stats.LastActivityDate
	out := *s
	return &out, nil
}

// mockDailyStatsRepository is a mock implementation of DailyStatsRepository for testing
type mockDailyStatsRepository struct {
	db *memDB
}

func (m *mockDailyStatsRepository) UpsertWorkoutStats(ctx context.Context, s *models.WorkoutStats) (*models.WorkoutStats, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := *s
	key := dayKey(s.UserID, s.Date)
	if existing, ok := m.db.workoutStats[key]; ok {
		out.ID = existing.ID
	} else {
		out.ID = m.db.genID()
	}
	m.db.workoutStats[key] = &out
	return &out, nil
}

func (m *mockDailyStatsRepository) UpsertNutritionStats(ctx context.Context, s *models.NutritionStats) (*models.NutritionStats, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := *s
	key := dayKey(s.UserID, s.Date)
	if existing, ok := m.db.nutritionStats[key]; ok {
		out.ID = existing.ID
	} else {
		out.ID = m.db.genID()
	}
	m.db.nutritionStats[key] = &out
	return &out, nil
}

func (m *mockDailyStatsRepository) GetWorkoutStats(ctx context.Context, userID string, start, end models.Date) ([]models.WorkoutStats, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []models.WorkoutStats
	for _, s := range m.db.workoutStats {
		if s.UserID == userID && s.Date.InRange(start, end) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockDailyStatsRepository) GetNutritionStats(ctx context.Context, userID string, start, end models.Date) ([]models.NutritionStats, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []models.NutritionStats
	for _, s := range m.db.nutritionStats {
		if s.UserID == userID && s.Date.InRange(start, end) {
			out = append(out, *s)
		}
	}
	return out, nil
}

// spyCache records calls and serves whatever was last set
type spyCache struct {
	mu          sync.Mutex
	entries     map[string]*models.StatsSummary
	gets        int
	sets        int
	invalidated []string
	getErr      error
}

func newSpyCache() *spyCache {
	return &spyCache{entries: make(map[string]*models.StatsSummary)}
}

func (c *spyCache) GetSummary(ctx context.Context, userID string, asOf models.Date) (*models.StatsSummary, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	s, ok := c.entries[dayKey(userID, asOf)]
	return s, ok, nil
}

func (c *spyCache) SetSummary(ctx context.Context, userID string, asOf models.Date, summary *models.StatsSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.entries[dayKey(userID, asOf)] = summary
	return nil
}

func (c *spyCache) Invalidate(ctx context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, userID)
	for k := range c.entries {
		if len(k) > len(userID) && k[:len(userID)+1] == userID+"|" {
			delete(c.entries, k)
		}
	}
	return nil
}
