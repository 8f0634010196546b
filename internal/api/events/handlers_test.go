package events

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	appdb "github.com/codr1/clubconnect/internal/db"
	appevents "github.com/codr1/clubconnect/internal/events"
	"github.com/codr1/clubconnect/internal/testutil"
)

func setupEventsTest(t *testing.T) *appdb.DB {
	t.Helper()

	database := testutil.NewTestDB(t)

	store = nil
	handlersOnce = sync.Once{}
	InitHandlers(database, time.UTC)

	t.Cleanup(func() {
		store = nil
		location = nil
		handlersOnce = sync.Once{}
	})

	return database
}

func TestHandleCreateEvent(t *testing.T) {
	setupEventsTest(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{
			name:   "valid",
			body:   `{"title":"Training","type":"training","date":"2099-05-01","time":"18:00","location":"Pitch 1","clothing":"training"}`,
			status: http.StatusCreated,
		},
		{
			name:   "unknown type",
			body:   `{"title":"Party","type":"party","date":"2099-05-01","time":"18:00"}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "bad date",
			body:   `{"title":"Training","type":"training","date":"01.05.2099","time":"18:00"}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown field",
			body:   `{"title":"Training","type":"training","date":"2099-05-01","time":"18:00","coach":"x"}`,
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			HandleCreateEvent(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if tt.status != http.StatusCreated {
				return
			}
			var event appevents.Event
			if err := json.NewDecoder(rec.Body).Decode(&event); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if event.ID == 0 || event.Type != appevents.TypeTraining || event.Location != "Pitch 1" {
				t.Fatalf("unexpected event: %+v", event)
			}
		})
	}
}

func TestHandleGetEvent(t *testing.T) {
	database := setupEventsTest(t)
	eventID := testutil.InsertEvent(t, database, "Match day", "2099-06-01", "10:00")

	tests := []struct {
		name   string
		id     string
		status int
	}{
		{name: "found", id: itoa(eventID), status: http.StatusOK},
		{name: "missing", id: "9999", status: http.StatusNotFound},
		{name: "invalid", id: "abc", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/events/"+tt.id, nil)
			req.SetPathValue("id", tt.id)
			rec := httptest.NewRecorder()

			HandleGetEvent(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestHandleListEventsUpcomingAndSearch(t *testing.T) {
	database := setupEventsTest(t)
	testutil.InsertEvent(t, database, "Old training", "2000-01-01", "10:00")
	testutil.InsertEvent(t, database, "Cup final", "2099-06-01", "10:00")
	testutil.InsertEvent(t, database, "Training", "2099-05-01", "18:00")

	tests := []struct {
		name string
		url  string
		want []string
	}{
		{name: "upcoming", url: "/api/v1/events", want: []string{"Training", "Cup final"}},
		{name: "search", url: "/api/v1/events?query=CUP", want: []string{"Cup final"}},
		{name: "limit", url: "/api/v1/events?limit=1", want: []string{"Training"}},
		{name: "no match", url: "/api/v1/events?query=zzz", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleListEvents(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
			}
			var list []appevents.Event
			if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if len(list) != len(tt.want) {
				t.Fatalf("got %d events, want %d", len(list), len(tt.want))
			}
			for i, title := range tt.want {
				if list[i].Title != title {
					t.Fatalf("event %d = %q, want %q", i, list[i].Title, title)
				}
			}
		})
	}
}

func TestHandleUpdateEvent(t *testing.T) {
	database := setupEventsTest(t)
	eventID := testutil.InsertEvent(t, database, "Training", "2099-05-01", "18:00")

	body := `{"title":"Training moved","type":"training","date":"2099-05-02","time":"19:00"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/events/"+itoa(eventID), strings.NewReader(body))
	req.SetPathValue("id", itoa(eventID))
	rec := httptest.NewRecorder()

	HandleUpdateEvent(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var event appevents.Event
	if err := json.NewDecoder(rec.Body).Decode(&event); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if event.Title != "Training moved" || event.Date != "2099-05-02" || event.Time != "19:00" {
		t.Fatalf("unexpected event: %+v", event)
	}

	req = httptest.NewRequest(http.MethodPut, "/api/v1/events/9999", strings.NewReader(body))
	req.SetPathValue("id", "9999")
	rec = httptest.NewRecorder()
	HandleUpdateEvent(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d for missing event, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestHandleDeleteEventCascades(t *testing.T) {
	database := setupEventsTest(t)
	eventID := testutil.InsertEvent(t, database, "Training", "2099-05-01", "18:00")
	playerID := testutil.InsertPlayer(t, database, "Ada")
	if _, err := database.Exec("INSERT INTO invites (player_id, event_id, status) VALUES (?, ?, 'pending')", playerID, eventID); err != nil {
		t.Fatalf("insert invite: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/events/"+itoa(eventID), nil)
	req.SetPathValue("id", itoa(eventID))
	rec := httptest.NewRecorder()
	HandleDeleteEvent(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	var count int
	if err := database.QueryRow("SELECT COUNT(*) FROM invites WHERE event_id = ?", eventID).Scan(&count); err != nil {
		t.Fatalf("count invites: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected invites to be removed, have %d", count)
	}

	rec = httptest.NewRecorder()
	HandleDeleteEvent(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d on second delete, got %d", http.StatusNotFound, rec.Code)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
