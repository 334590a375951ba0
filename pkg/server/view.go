package server

import (
	"sync"

	"github.com/matst80/slask-intel/pkg/controller"
)

// RecordingView keeps the suggestions and notifications the controller produced
// until a handler hands them to the client.
type RecordingView struct {
	mu            sync.Mutex
	query         string
	suggestions   []string
	notifications []controller.Notification
}

func (v *RecordingView) SetVisible(string, bool) {}

func (v *RecordingView) Reorder([]string) {}

func (v *RecordingView) ReportResults(controller.Result) {}

func (v *RecordingView) ShowSuggestions(query string, suggestions []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.query = query
	v.suggestions = suggestions
}

func (v *RecordingView) Notify(n controller.Notification) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notifications = append(v.notifications, n)
}

// Suggestions returns the last accepted suggestion list and the query it answers.
func (v *RecordingView) Suggestions() (string, []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.query, v.suggestions
}

// TakeNotifications returns and forgets the pending notifications.
func (v *RecordingView) TakeNotifications() []controller.Notification {
	v.mu.Lock()
	defer v.mu.Unlock()
	ret := v.notifications
	v.notifications = nil
	if ret == nil {
		ret = []controller.Notification{}
	}
	return ret
}
