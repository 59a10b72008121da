package gitlab

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"

	"github.com/tzrikka/revowners/internal/httpclient"
)

// fakeGitLab serves canned responses for a single project ("42"),
// and records the JSON bodies of all the write requests it receives.
type fakeGitLab struct {
	*httptest.Server

	mu     sync.Mutex
	bodies map[string][]map[string]any
}

func newFakeGitLab(t *testing.T, responses map[string]string) *fakeGitLab {
	t.Helper()

	f := &fakeGitLab{bodies: map[string][]map[string]any{}}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The client reads the API root once, to configure its rate limiter.
		if r.URL.Path == "/api/v4/" {
			return
		}

		if got := r.Header.Get("Private-Token"); got != "token" {
			t.Errorf("Private-Token header = %q, want %q", got, "token")
		}

		key := r.Method + " " + r.URL.Path
		resp, ok := responses[key]
		if !ok {
			t.Errorf("unexpected request: %s", key)
			http.NotFound(w, r)
			return
		}

		if r.Method != http.MethodGet {
			body, _ := io.ReadAll(r.Body)
			m := map[string]any{}
			if err := json.Unmarshal(body, &m); err != nil {
				t.Errorf("request body of %s isn't a JSON object: %q", key, body)
			}
			f.mu.Lock()
			f.bodies[key] = append(f.bodies[key], m)
			f.mu.Unlock()
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(resp))
	}))
	t.Cleanup(f.Close)

	return f
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()

	c, err := NewClient(url, "42", "token", 0)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func TestMergeRequestByBranch(t *testing.T) {
	srv := newFakeGitLab(t, map[string]string{
		"GET /api/v4/projects/42/merge_requests": `[
			{"iid": 7, "title": "Fix", "web_url": "https://gl/g/p/-/merge_requests/7", "draft": true,
			 "author": {"id": 1, "username": "carol"},
			 "reviewers": [{"id": 3, "username": "dave"}, {"id": 2, "username": "bob"}]},
			{"iid": 8}
		]`,
	})

	c := newTestClient(t, srv.URL+"/")
	got, err := c.MergeRequestByBranch(context.Background(), "feature")
	if err != nil {
		t.Fatalf("MergeRequestByBranch() error = %v", err)
	}

	want := &MergeRequest{
		IID:       7,
		Title:     "Fix",
		WebURL:    "https://gl/g/p/-/merge_requests/7",
		Draft:     true,
		Author:    User{ID: 1, Username: "carol"},
		Reviewers: []User{{ID: 3, Username: "dave"}, {ID: 2, Username: "bob"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MergeRequestByBranch() = %+v, want %+v", got, want)
	}

	if names := got.ReviewerUsernames(); !reflect.DeepEqual(names, []string{"bob", "dave"}) {
		t.Errorf("ReviewerUsernames() = %q", names)
	}
	if ids := got.ReviewerIDs(); !reflect.DeepEqual(ids, map[string]int{"bob": 2, "dave": 3}) {
		t.Errorf("ReviewerIDs() = %v", ids)
	}
}

func TestMergeRequestByBranchNotFound(t *testing.T) {
	srv := newFakeGitLab(t, map[string]string{
		"GET /api/v4/projects/42/merge_requests": `[]`,
	})

	_, err := newTestClient(t, srv.URL).MergeRequestByBranch(context.Background(), "feature")
	if !errors.Is(err, ErrMergeRequestNotFound) {
		t.Errorf("MergeRequestByBranch() error = %v, want %v", err, ErrMergeRequestNotFound)
	}
}

func TestChangedPathsAndApprovers(t *testing.T) {
	srv := newFakeGitLab(t, map[string]string{
		"GET /api/v4/projects/42/merge_requests/7/diffs": `[
			{"old_path": "src/a.go", "new_path": "src/a.go"},
			{"old_path": "old/b.go", "new_path": "new/b.go", "renamed_file": true},
			{"old_path": "", "new_path": "c.go", "new_file": true}
		]`,
		"GET /api/v4/projects/42/merge_requests/7/approvals": `{"approved_by": [
			{"user": {"id": 2, "username": "bob"}},
			{"user": {"id": 1, "username": "alice"}}
		]}`,
	})

	c := newTestClient(t, srv.URL)
	ctx := context.Background()

	paths, err := c.ChangedPaths(ctx, 7)
	if err != nil {
		t.Fatalf("ChangedPaths() error = %v", err)
	}
	if want := []string{"c.go", "new/b.go", "old/b.go", "src/a.go"}; !reflect.DeepEqual(paths, want) {
		t.Errorf("ChangedPaths() = %q, want %q", paths, want)
	}

	approvers, err := c.Approvers(ctx, 7)
	if err != nil {
		t.Fatalf("Approvers() error = %v", err)
	}
	if want := []string{"alice", "bob"}; !reflect.DeepEqual(approvers, want) {
		t.Errorf("Approvers() = %q, want %q", approvers, want)
	}
}

func TestChangedPathsPagination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v4/projects/42/merge_requests/7/diffs" {
			return
		}

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("page") {
		case "1":
			w.Header().Set("X-Next-Page", "2")
			_, _ = w.Write([]byte(`[{"old_path": "b.go", "new_path": "b.go"}]`))
		case "2":
			_, _ = w.Write([]byte(`[{"old_path": "a.go", "new_path": "a.go"}]`))
		default:
			t.Errorf("unexpected page: %q", r.URL.RawQuery)
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	defer srv.Close()

	paths, err := newTestClient(t, srv.URL).ChangedPaths(context.Background(), 7)
	if err != nil {
		t.Fatalf("ChangedPaths() error = %v", err)
	}
	if want := []string{"a.go", "b.go"}; !reflect.DeepEqual(paths, want) {
		t.Errorf("ChangedPaths() = %q, want %q", paths, want)
	}
}

func TestWriteOperations(t *testing.T) {
	const (
		update     = "PUT /api/v4/projects/42/merge_requests/7"
		notes      = "POST /api/v4/projects/42/merge_requests/7/notes"
		discussion = "POST /api/v4/projects/42/merge_requests/7/discussions"
	)
	srv := newFakeGitLab(t, map[string]string{
		update:     `{"iid": 7}`,
		notes:      `{"id": 1}`,
		discussion: `{"id": "abc"}`,
	})

	c := newTestClient(t, srv.URL)
	ctx := context.Background()

	if err := c.SetReviewers(ctx, 7, []int{1, 2}); err != nil {
		t.Errorf("SetReviewers() error = %v", err)
	}
	if err := c.SetReviewers(ctx, 7, nil); err != nil {
		t.Errorf("SetReviewers(nil) error = %v", err)
	}
	if err := c.CreateComment(ctx, 7, "hi"); err != nil {
		t.Errorf("CreateComment() error = %v", err)
	}
	if err := c.CreateThread(ctx, 7, "thread"); err != nil {
		t.Errorf("CreateThread() error = %v", err)
	}

	want := map[string][]map[string]any{
		update: {
			{"reviewer_ids": []any{1.0, 2.0}},
			{"reviewer_ids": []any{}},
		},
		notes:      {{"body": "hi"}},
		discussion: {{"body": "thread"}},
	}
	if !reflect.DeepEqual(srv.bodies, want) {
		t.Errorf("request bodies = %v, want %v", srv.bodies, want)
	}
}

func TestRawFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v4/projects/42/repository/files/codeowners.json/raw" || r.URL.Query().Get("ref") != "feature" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message": "404 File Not Found"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"paths": map[string]any{}})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	ctx := context.Background()

	got, err := c.RawFile(ctx, "feature", "codeowners.json")
	if err != nil {
		t.Fatalf("RawFile() error = %v", err)
	}
	if want := "{\"paths\":{}}\n"; string(got) != want {
		t.Errorf("RawFile() = %q, want %q", got, want)
	}

	if _, err := c.RawFile(ctx, "main", "codeowners.json"); !errors.Is(err, ErrConfigMissing) {
		t.Errorf("RawFile() error = %v, want %v", err, ErrConfigMissing)
	}
}

func TestRawFileUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).RawFile(context.Background(), "main", "codeowners.json")
	if errors.Is(err, ErrConfigMissing) || !errors.Is(err, httpclient.ErrUpstream) {
		t.Errorf("RawFile() error = %v, want %v", err, httpclient.ErrUpstream)
	}
}

func TestUserIDByUsername(t *testing.T) {
	srv := newFakeGitLab(t, map[string]string{
		"GET /api/v4/users": `[{"id": 9, "username": "alice"}]`,
	})

	c := newTestClient(t, srv.URL)

	id, err := c.UserIDByUsername(context.Background(), "alice")
	if err != nil || id != 9 {
		t.Errorf("UserIDByUsername(alice) = %d, %v; want 9, nil", id, err)
	}

	id, err = c.UserIDByUsername(context.Background(), "bob")
	if err != nil || id != 0 {
		t.Errorf("UserIDByUsername(bob) = %d, %v; want 0, nil", id, err)
	}
}
