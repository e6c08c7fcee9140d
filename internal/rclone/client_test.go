package rclone

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSyncReturnsEngineJobID(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jobid": 7}`))
	}))
	defer server.Close()

	client := New(server.URL)
	id, err := client.Sync("local:/src", "remote:/dst", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 7 {
		t.Fatalf("expected job id 7, got %d", id)
	}
	if gotPath != "/sync/sync" {
		t.Fatalf("expected POST to /sync/sync, got %q", gotPath)
	}
	if gotBody["srcFs"] != "local:/src" || gotBody["dstFs"] != "remote:/dst" {
		t.Fatalf("unexpected request body %v", gotBody)
	}
	if gotBody["_async"] != true {
		t.Fatalf("expected _async true, got %v", gotBody["_async"])
	}
}

func TestJobStatusDecodesFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/job/status" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"id": 7, "finished": true, "success": true, "duration": 12.5, "startTime": "2024-01-01T00:00:00Z"}`))
	}))
	defer server.Close()

	status, err := New(server.URL).JobStatus(7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.Finished || !status.Success {
		t.Fatalf("expected finished successful status, got %+v", status)
	}
	if status.Duration != 12.5 {
		t.Fatalf("expected duration 12.5, got %v", status.Duration)
	}
}

func TestCallUnwrapsEngineErrorPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "directory not found"}`))
	}))
	defer server.Close()

	_, err := New(server.URL).Sync("a:", "b:", true)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "directory not found") {
		t.Fatalf("expected engine message in error, got %v", err)
	}
	if IsDecodeError(err) {
		t.Fatalf("engine error must not be classified as decode error")
	}
}

func TestCallReportsUnexpectedStatusWithoutPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("gateway troubles"))
	}))
	defer server.Close()

	_, err := New(server.URL).JobList()
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Fatalf("expected status code in error, got %v", err)
	}
}

func TestMalformedSuccessBodyIsDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jobid": "seven"}`))
	}))
	defer server.Close()

	_, err := New(server.URL).Sync("a:", "b:", true)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !IsDecodeError(err) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestUnreachableEngineIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := New(server.URL).ListRemotes()
	if err == nil {
		t.Fatalf("expected error")
	}
	if IsDecodeError(err) {
		t.Fatalf("transport failure must not be classified as decode error")
	}
}

func TestListRemotesReturnsNames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/config/listremotes" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"remotes": ["gdrive", "s3-backup"]}`))
	}))
	defer server.Close()

	names, err := New(server.URL).ListRemotes()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 2 || names[0] != "gdrive" || names[1] != "s3-backup" {
		t.Fatalf("unexpected remotes %v", names)
	}
}
