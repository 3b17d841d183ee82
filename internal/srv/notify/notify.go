package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v68/github"
	"github.com/sirupsen/logrus"
)

type Notification struct {
	Repository string
	Reason     string
	Unread     bool
	Title      string
	// URL is the api url of the subject, empty for subjects without one.
	URL       string
	UpdatedAt time.Time
}

// Cursor persists the date from which notifications are requested.
type Cursor interface {
	NotificationCursor() time.Time
	SetNotificationCursor(t time.Time)
}

type GithubSource struct {
	client *github.Client
	cursor Cursor
}

func NewGithubSource(token string, cursor Cursor, httpClient *http.Client) *GithubSource {
	client := github.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &GithubSource{client: client, cursor: cursor}
}

// Notifications fetches the notifications updated since the last call and
// moves the cursor past the newest one.
func (s *GithubSource) Notifications(ctx context.Context) ([]Notification, error) {
	opts := &github.NotificationListOptions{Since: s.cursor.NotificationCursor()}
	items, _, err := s.client.Activity.ListNotifications(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list github notifications: %w", err)
	}

	notifications := make([]Notification, 0, len(items))
	var newest time.Time
	for _, item := range items {
		n := Notification{
			Repository: item.GetRepository().GetName(),
			Reason:     item.GetReason(),
			Unread:     item.GetUnread(),
			Title:      item.GetSubject().GetTitle(),
			URL:        item.GetSubject().GetURL(),
			UpdatedAt:  item.GetUpdatedAt().Time,
		}
		if n.UpdatedAt.After(newest) {
			newest = n.UpdatedAt
		}
		notifications = append(notifications, n)
	}
	if !newest.IsZero() {
		s.cursor.SetNotificationCursor(newest.Add(5 * time.Second))
	}
	logrus.Debugf("Received %d github notifications", len(notifications))
	return notifications, nil
}

// SetBaseURL points the source to another api endpoint.
func (s *GithubSource) SetBaseURL(baseURL string) error {
	client, err := s.client.WithEnterpriseURLs(baseURL, baseURL)
	if err != nil {
		return err
	}
	s.client = client
	return nil
}
