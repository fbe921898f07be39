package handlers

import (
	"exercisetracker/internal/models"
	"exercisetracker/internal/services"
)

type userResponse struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

type exerciseResponse struct {
	ID          string  `json:"_id"`
	Username    string  `json:"username"`
	Description string  `json:"description"`
	Duration    float64 `json:"duration"`
	Date        string  `json:"date"`
}

type logEntryResponse struct {
	Description string  `json:"description"`
	Duration    float64 `json:"duration"`
	Date        string  `json:"date"`
}

type logResponse struct {
	ID       string             `json:"_id"`
	Username string             `json:"username"`
	Count    int                `json:"count"`
	Log      []logEntryResponse `json:"log"`
}

func newUserResponse(u models.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username}
}

func newExerciseResponse(entry *services.ExerciseEntry) exerciseResponse {
	return exerciseResponse{
		ID:          entry.User.ID,
		Username:    entry.User.Username,
		Description: entry.Exercise.Description,
		Duration:    entry.Exercise.Duration,
		Date:        entry.Exercise.Date.UTC().Format(models.DateLayout),
	}
}

// newLogResponse derives count from the returned entries, never from a total.
func newLogResponse(l *services.ExerciseLog) logResponse {
	entries := make([]logEntryResponse, 0, len(l.Entries))
	for _, e := range l.Entries {
		entries = append(entries, logEntryResponse{
			Description: e.Description,
			Duration:    e.Duration,
			Date:        e.Date.UTC().Format(models.DateLayout),
		})
	}
	return logResponse{
		ID:       l.User.ID,
		Username: l.User.Username,
		Count:    len(entries),
		Log:      entries,
	}
}
