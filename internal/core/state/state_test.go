// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-19
// Last Modified: 2026-10-19

package state

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/similigh/fb2gh/internal/core/target"
	"github.com/similigh/fb2gh/internal/fogbugz"
)

func TestFileLedgerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ledger.json")
	ctx := context.Background()

	l, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	if e, _ := l.Get(ctx, 7); e != nil {
		t.Fatalf("expected empty ledger, got %+v", e)
	}

	for _, id := range []int{30, 7, 12} {
		if err := l.Record(ctx, &Entry{CaseID: id, IssueNumber: id + 100}); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}
	if err := l.Record(ctx, &Entry{CaseID: 7, IssueNumber: 999, IssueURL: "u"}); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenFile(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	entries, _ := reopened.List(ctx)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, want := range []int{7, 12, 30} {
		if entries[i].CaseID != want {
			t.Errorf("entries[%d].CaseID = %d, want %d", i, entries[i].CaseID, want)
		}
	}
	if entries[0].IssueNumber != 999 || entries[0].IssueURL != "u" {
		t.Errorf("expected entry to be replaced, got %+v", entries[0])
	}

	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".ledger-*"))
	if len(matches) != 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}

func TestOpenFileErrors(t *testing.T) {
	if _, err := OpenFile(""); err == nil {
		t.Error("expected error for empty path")
	}

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte("{not json"), 0o644)
	if _, err := OpenFile(bad); err == nil {
		t.Error("expected parse error")
	}

	badKey := filepath.Join(dir, "key.json")
	os.WriteFile(badKey, []byte(`{"abc":{"issue_number":1}}`), 0o644)
	if _, err := OpenFile(badKey); err == nil {
		t.Error("expected invalid case id error")
	}

	empty := filepath.Join(dir, "empty.json")
	os.WriteFile(empty, nil, 0o644)
	if _, err := OpenFile(empty); err != nil {
		t.Errorf("empty file should be an empty ledger: %v", err)
	}
}

func TestRecorderAndNotMigrated(t *testing.T) {
	ctx := context.Background()
	l, _ := OpenFile(filepath.Join(t.TempDir(), "l.json"))

	hook := Recorder(ctx, l, "o/r")
	if err := hook(&fogbugz.Case{ID: 5}, &target.Issue{Number: 2, URL: "https://github.com/o/r/issues/2"}); err != nil {
		t.Fatalf("hook failed: %v", err)
	}

	e, err := l.Get(ctx, 5)
	if err != nil || e == nil {
		t.Fatalf("expected entry, got %v, %v", e, err)
	}
	if e.Repo != "o/r" || e.IssueNumber != 2 || e.MigratedAt.IsZero() {
		t.Errorf("unexpected entry: %+v", e)
	}

	pred, err := NotMigrated(ctx, l)
	if err != nil {
		t.Fatal(err)
	}
	if pred(&fogbugz.Case{ID: 5}) {
		t.Error("case 5 is in the ledger and must be rejected")
	}
	if !pred(&fogbugz.Case{ID: 6}) {
		t.Error("case 6 is not in the ledger and must be accepted")
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name       string
		location   string
		owner      string
		wantErr    bool
		wantBranch string
	}{
		{name: "file", location: filepath.Join(t.TempDir(), "l.json")},
		{name: "github default branch", location: "github:", owner: "o", wantBranch: DefaultStateBranch},
		{name: "github custom branch", location: "github:ledger", owner: "o", wantBranch: "ledger"},
		{name: "github without repo", location: "github:", wantErr: true},
		{name: "empty", location: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := ""
			if tt.owner != "" {
				repo = "r"
			}
			l, err := Open(tt.location, "tok", tt.owner, repo)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if tt.wantBranch != "" {
				gl, ok := l.(*GitHubLedger)
				if !ok || gl.branch != tt.wantBranch {
					t.Errorf("expected GitHub ledger on %s, got %#v", tt.wantBranch, l)
				}
			}
		})
	}
}

// fakeContents is a minimal contents API for a single repository.
type fakeContents struct {
	mu           sync.Mutex
	branchExists bool
	files        map[string][]byte
	refsCreated  int
}

func (f *fakeContents) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/o/r/branches/{branch}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if !f.branchExists {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"name":"fb2gh-state"}`)
	})
	mux.HandleFunc("GET /repos/o/r", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"default_branch":"main"}`)
	})
	mux.HandleFunc("GET /repos/o/r/git/ref/heads/main", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"object":{"sha":"abc123"}}`)
	})
	mux.HandleFunc("POST /repos/o/r/git/refs", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["ref"] != "refs/heads/fb2gh-state" || req["sha"] != "abc123" {
			t.Errorf("unexpected ref request: %v", req)
		}
		f.mu.Lock()
		f.branchExists = true
		f.refsCreated++
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{}`)
	})
	mux.HandleFunc("GET /repos/o/r/contents/{path...}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		p := r.PathValue("path")
		if data, ok := f.files[p]; ok {
			fmt.Fprintf(w, `{"encoding":"base64","sha":"sha-%s","content":%q}`, p, base64.StdEncoding.EncodeToString(data))
			return
		}
		var items []map[string]string
		for name := range f.files {
			if strings.HasPrefix(name, p+"/") {
				items = append(items, map[string]string{"path": name, "type": "file"})
			}
		}
		if items == nil {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(items)
	})
	mux.HandleFunc("PUT /repos/o/r/contents/{path...}", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		p := r.PathValue("path")
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, exists := f.files[p]; exists && req["sha"] != "sha-"+p {
			w.WriteHeader(http.StatusConflict)
			return
		}
		data, _ := base64.StdEncoding.DecodeString(req["content"])
		f.files[p] = data
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{}`)
	})
	return mux
}

func TestGitHubLedger(t *testing.T) {
	fake := &fakeContents{files: map[string][]byte{}}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()
	ctx := context.Background()

	l := NewGitHubLedger("tok", "o", "r").WithBaseURL(srv.URL)

	entries, err := l.List(ctx)
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected empty ledger, got %v, %v", entries, err)
	}

	for _, e := range []*Entry{{CaseID: 9, IssueNumber: 2}, {CaseID: 3, IssueNumber: 1}, {CaseID: 9, IssueNumber: 5}} {
		if err := l.Record(ctx, e); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}
	if fake.refsCreated != 1 {
		t.Errorf("expected branch to be created once, got %d", fake.refsCreated)
	}

	got, err := l.Get(ctx, 9)
	if err != nil || got == nil || got.IssueNumber != 5 {
		t.Fatalf("Get(9) = %+v, %v", got, err)
	}
	if missing, err := l.Get(ctx, 4); missing != nil || err != nil {
		t.Errorf("Get(4) = %+v, %v", missing, err)
	}

	entries, err = l.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].CaseID != 3 || entries[1].CaseID != 9 {
		t.Errorf("unexpected entries: %+v", entries)
	}
}
