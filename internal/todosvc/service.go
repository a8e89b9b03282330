// Package todosvc implements Service B: the todo service backing
// /service-b/* routes on the gateway. The todo list lives in process memory,
// seeded with five sample items, and is reset on restart. Not-found is an
// ordinary result, never an error.
package todosvc

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"gateway-services/internal/domain/todo"
)

// ServiceName is the name the todo service registers its patterns under.
const ServiceName = "todoservice"

// Service owns the in-memory todo sequence and its id counter. Identifiers
// are unique and strictly increasing in assignment order, starting one past
// the highest seeded id, and are never reused after deletion. The mutex
// keeps each mutation a single uninterrupted step; nothing outside this type
// touches the sequence.
type Service struct {
	log *zap.Logger

	mu     sync.Mutex
	todos  []todo.Todo
	nextID int64
}

// New creates the todo service seeded with the sample items.
func New(log *zap.Logger) *Service {
	seed := []todo.Todo{
		{ID: 1, Title: "Buy groceries", Description: "Milk, eggs, bread, and fruits", Completed: false},
		{ID: 2, Title: "Read a book", Description: "Finish reading \"Clean Code\"", Completed: false},
		{ID: 3, Title: "Workout", Description: "30 minutes of cardio", Completed: true},
		{ID: 4, Title: "Call mom", Description: "Catch up on the weekend", Completed: false},
		{ID: 5, Title: "Finish project report", Description: "Due by Friday", Completed: false},
	}
	return &Service{
		log:    log,
		todos:  seed,
		nextID: int64(len(seed)) + 1,
	}
}

// GetAll returns the full sequence in insertion order, completed items
// included.
func (s *Service) GetAll() []todo.Todo {
	s.log.Info("Service B: Fetching all todos")

	s.mu.Lock()
	out := make([]todo.Todo, len(s.todos))
	copy(out, s.todos)
	s.mu.Unlock()

	s.log.Info(fmt.Sprintf("Service B: Returning %d todos", len(out)))
	return out
}

// GetByID returns the first item whose id matches, or nil if absent.
func (s *Service) GetByID(id int64) *todo.Todo {
	s.log.Info(fmt.Sprintf("Service B: Fetching todo with ID %d", id))

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.todos {
		if s.todos[i].ID == id {
			t := s.todos[i]
			s.log.Info(fmt.Sprintf("Service B: Found todo - %s", t.Title))
			return &t
		}
	}

	s.log.Warn(fmt.Sprintf("Service B: Todo with ID %d not found", id))
	return nil
}

// Create assigns the next sequential identifier, appends the item, and
// returns it.
func (s *Service) Create(title, description string, completed bool) todo.Todo {
	s.log.Info(fmt.Sprintf("Service B: Creating new todo - %s", title))

	s.mu.Lock()
	created := todo.Todo{
		ID:          s.nextID,
		Title:       title,
		Description: description,
		Completed:   completed,
	}
	s.nextID++
	s.todos = append(s.todos, created)
	s.mu.Unlock()

	s.log.Info(fmt.Sprintf("Service B: Successfully created todo - %s with ID %d", created.Title, created.ID))
	return created
}

// Delete removes the first item whose id matches, preserving the relative
// order of the remaining items. It reports whether anything was removed.
func (s *Service) Delete(id int64) bool {
	s.log.Info(fmt.Sprintf("Service B: Deleting todo with ID %d", id))

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.todos {
		if s.todos[i].ID == id {
			s.todos = append(s.todos[:i], s.todos[i+1:]...)
			s.log.Info(fmt.Sprintf("Service B: Successfully deleted todo with ID %d", id))
			return true
		}
	}

	s.log.Warn(fmt.Sprintf("Service B: Todo with ID %d not found for deletion", id))
	return false
}
