package chat

import (
	"strings"
	"sync"

	"github.com/gemchat/gemchat/pkg/models"
)

// Registry is the in-memory source of truth the UI renders from: the session
// index, the active view pointer, the rendered transcript, per-session drafts
// and the processing set. Dispatches complete on goroutines while the UI
// reads, so every access goes through the mutex.
//
// Drafts and processing membership are deliberately never persisted.
type Registry struct {
	mu         sync.RWMutex
	sessions   []models.Session
	activeID   int64
	messages   []models.Message
	drafts     map[int64]string
	processing map[int64]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		drafts:     make(map[int64]string),
		processing: make(map[int64]struct{}),
	}
}

// Sessions returns the session index in append order.
func (r *Registry) Sessions() []models.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Session, len(r.sessions))
	copy(out, r.sessions)
	return out
}

// SetSessions replaces the session index.
func (r *Registry) SetSessions(sessions []models.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions = make([]models.Session, len(sessions))
	copy(r.sessions, sessions)
}

// ActiveSessionID returns the id of the session currently viewed, or zero
// when none is selected yet.
func (r *Registry) ActiveSessionID() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.activeID
}

// SetActive points the view at id and replaces the rendered transcript.
func (r *Registry) SetActive(id int64, messages []models.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.activeID = id
	r.messages = make([]models.Message, len(messages))
	copy(r.messages, messages)
}

// Messages returns the rendered transcript of the active session.
func (r *Registry) Messages() []models.Message {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Draft returns the unsent input text for a session.
func (r *Registry) Draft(id int64) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.drafts[id]
}

// UpdateDraft stores the unsent input text for a session.
func (r *Registry) UpdateDraft(id int64, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.drafts[id] = text
}

// DeleteDraft discards a session's draft.
func (r *Registry) DeleteDraft(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.drafts, id)
}

// IsGenerating reports whether a session is awaiting a backend response.
func (r *Registry) IsGenerating(id int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.processing[id]
	return ok
}

// Generating reports whether any session is awaiting a backend response.
func (r *Registry) Generating() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.processing) > 0
}

// BeginDispatch atomically accepts or rejects a send for a session. A send is
// accepted when the trimmed draft is non-empty and the session has no request
// in flight. On accept the draft is cleared, the session joins the processing
// set, and when the session is the active view the user message is appended
// to the rendered transcript. Returns the captured draft text.
func (r *Registry) BeginDispatch(id int64) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	text := r.drafts[id]
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	if _, inFlight := r.processing[id]; inFlight {
		return "", false
	}

	r.drafts[id] = ""
	r.processing[id] = struct{}{}
	if r.activeID == id {
		r.messages = append(r.messages, models.Message{Text: text, IsUser: true})
	}
	return text, true
}

// EndDispatch removes a session from the processing set. It must run on every
// dispatch path, success or failure.
func (r *Registry) EndDispatch(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.processing, id)
}

// ReconcileMessages replaces the rendered transcript with the freshly
// persisted one, but only when the session is still the active view. A full
// replacement, not an append: the persisted store wins any content race.
func (r *Registry) ReconcileMessages(id int64, messages []models.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.activeID != id {
		return
	}
	r.messages = make([]models.Message, len(messages))
	copy(r.messages, messages)
}

// UpdateTitle rewrites a session's title in the index.
func (r *Registry) UpdateTitle(id int64, title string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.sessions {
		if r.sessions[i].ID == id {
			r.sessions[i].Title = title
			return
		}
	}
}
