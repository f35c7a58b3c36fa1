package client

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arnold/studytrack-api/internal/models"
)

// Caller is the part of the API that State mutates through. *Client
// satisfies it.
type Caller interface {
	ToggleTopicProgress(ctx context.Context, topicID uint) (bool, error)
	AddComment(ctx context.Context, missionID uint, content string) (uint, error)
}

var _ Caller = (*Client)(nil)

type commentEntry struct {
	comment   models.Comment
	requestID string
}

// State is a local view of a learner's progress and mission comments.
// Mutations are applied before the server answers and undone if it fails.
type State struct {
	mu        sync.Mutex
	user      *models.User
	completed map[uint]bool
	comments  map[uint][]commentEntry
	pending   map[string]func()
	now       func() time.Time
}

func NewState(user *models.User) *State {
	return &State{
		user:      user,
		completed: map[uint]bool{},
		comments:  map[uint][]commentEntry{},
		pending:   map[string]func(){},
		now:       time.Now,
	}
}

// SetProgress replaces the progress view with server rows.
func (s *State) SetProgress(rows []models.Progress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed = make(map[uint]bool, len(rows))
	for _, row := range rows {
		s.completed[row.TopicID] = row.Completed == 1
	}
}

// SetComments replaces a mission's comments. They are expected newest first.
func (s *State) SetComments(missionID uint, comments []models.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]commentEntry, len(comments))
	for i, c := range comments {
		entries[i] = commentEntry{comment: c}
	}
	s.comments[missionID] = entries
}

func (s *State) Completed(topicID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed[topicID]
}

// CompletedCount counts completed topics among ids.
func (s *State) CompletedCount(ids []uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, id := range ids {
		if s.completed[id] {
			n++
		}
	}
	return n
}

func (s *State) Comments(missionID uint) []models.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.comments[missionID]
	out := make([]models.Comment, len(entries))
	for i, e := range entries {
		out[i] = e.comment
	}
	return out
}

// Pending is the number of mutations still waiting on the server.
func (s *State) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Apply runs patch and records undo under a new request id. Both run with
// the state locked and must not call back into State.
func (s *State) Apply(patch, undo func()) string {
	id := uuid.NewString()
	s.apply(id, patch, undo)
	return id
}

func (s *State) apply(id string, patch, undo func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	patch()
	s.pending[id] = undo
}

// Commit keeps the patch recorded under id.
func (s *State) Commit(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, id)
}

// Rollback restores the values the patch under id replaced. Unknown ids
// are ignored.
func (s *State) Rollback(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if undo, ok := s.pending[id]; ok {
		undo()
		delete(s.pending, id)
	}
}

// ToggleTopic flips a topic locally, then asks the server. The server's
// answer wins on success; on failure the previous value is restored.
func (s *State) ToggleTopic(ctx context.Context, api Caller, topicID uint) (bool, error) {
	var prev, had bool
	id := s.Apply(func() {
		prev, had = s.completed[topicID]
		s.completed[topicID] = !prev
	}, func() {
		if had {
			s.completed[topicID] = prev
		} else {
			delete(s.completed, topicID)
		}
	})

	completed, err := api.ToggleTopicProgress(ctx, topicID)
	if err != nil {
		s.Rollback(id)
		return prev, err
	}

	s.mu.Lock()
	s.completed[topicID] = completed
	delete(s.pending, id)
	s.mu.Unlock()
	return completed, nil
}

// AddComment shows the comment at the top of the mission right away. It
// gets its id once the server accepts it and disappears if the server
// refuses.
func (s *State) AddComment(ctx context.Context, api Caller, missionID uint, content string) (uint, error) {
	requestID := uuid.NewString()
	s.apply(requestID, func() {
		entry := commentEntry{
			comment: models.Comment{
				MissionID: missionID,
				Content:   strings.TrimSpace(content),
				CreatedAt: s.now(),
				User:      s.user,
			},
			requestID: requestID,
		}
		if s.user != nil {
			entry.comment.UserID = s.user.ID
		}
		s.comments[missionID] = append([]commentEntry{entry}, s.comments[missionID]...)
	}, func() {
		s.removeComment(missionID, requestID)
	})

	id, err := api.AddComment(ctx, missionID, content)
	if err != nil {
		s.Rollback(requestID)
		return 0, err
	}

	s.mu.Lock()
	for i := range s.comments[missionID] {
		if s.comments[missionID][i].requestID == requestID {
			s.comments[missionID][i].comment.ID = id
			s.comments[missionID][i].requestID = ""
			break
		}
	}
	delete(s.pending, requestID)
	s.mu.Unlock()
	return id, nil
}

func (s *State) removeComment(missionID uint, requestID string) {
	entries := s.comments[missionID]
	for i, e := range entries {
		if e.requestID == requestID {
			s.comments[missionID] = append(entries[:i:i], entries[i+1:]...)
			return
		}
	}
}
