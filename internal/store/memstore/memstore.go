package memstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/Makepad-fr/tada-tasks/internal/model"
)

// In-memory task storage for the reference server. Nothing is written back
// to disk; a JSON seed file can pre-populate it at startup.

var ErrNotFound = errors.New("task not found")

type Store struct {
	mu     sync.RWMutex
	tasks  []model.Task
	nextID int
}

func New() *Store { return &Store{nextID: 1} }

// Create appends a new pending task and returns it with its id.
func (s *Store) Create(text, expire string) model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := model.Task{ID: model.IDOf(s.nextID), Text: text, Expire: expire}
	s.nextID++
	s.tasks = append(s.tasks, t)
	return copyTask(t)
}

// MarkDone flips done on the task with the given id.
func (s *Store) MarkDone(id int) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if *s.tasks[i].ID == id {
			s.tasks[i].Done = true
			return copyTask(s.tasks[i]), nil
		}
	}
	return model.Task{}, fmt.Errorf("id %d: %w", id, ErrNotFound)
}

// Remaining lists tasks not yet done, in creation order.
func (s *Store) Remaining() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Task{}
	for _, t := range s.tasks {
		if !t.Done {
			out = append(out, copyTask(t))
		}
	}
	return out
}

// All lists every task, done or not.
func (s *Store) All() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, copyTask(t))
	}
	return out
}

// Seed adds tasks as given. Tasks without an id get the next free one;
// duplicate ids are rejected.
func (s *Store) Seed(tasks []model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[int]bool, len(s.tasks)+len(tasks))
	for _, t := range s.tasks {
		seen[*t.ID] = true
	}
	for _, t := range tasks {
		if t.ID != nil && seen[*t.ID] {
			return fmt.Errorf("seed: duplicate id %d", *t.ID)
		}
		if t.ID != nil {
			seen[*t.ID] = true
		}
	}
	for _, t := range tasks {
		if t.ID == nil {
			for seen[s.nextID] {
				s.nextID++
			}
			t.ID = model.IDOf(s.nextID)
			seen[s.nextID] = true
		}
		if *t.ID >= s.nextID {
			s.nextID = *t.ID + 1
		}
		s.tasks = append(s.tasks, copyTask(t))
	}
	return nil
}

// LoadSeed reads a JSON array of tasks. A missing file yields no tasks.
func LoadSeed(path string) ([]model.Task, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.Task{}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	var tasks []model.Task
	if err := json.Unmarshal(b, &tasks); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	return tasks, nil
}

func copyTask(t model.Task) model.Task {
	if t.ID != nil {
		t.ID = model.IDOf(*t.ID)
	}
	return t
}
