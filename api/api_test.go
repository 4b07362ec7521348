package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"reelscript/downloader"
	"reelscript/events"
	"reelscript/pipeline"
	"reelscript/store"
	"reelscript/transcribe"
	"reelscript/types"
)

type memStorage struct {
	mu          sync.Mutex
	videos      map[string]*types.Video
	byURL       map[string]string
	transcripts map[string]*types.Transcript
	collections map[string]*types.Collection
}

func newMemStorage() *memStorage {
	return &memStorage{
		videos:      map[string]*types.Video{},
		byURL:       map[string]string{},
		transcripts: map[string]*types.Transcript{},
		collections: map[string]*types.Collection{},
	}
}

func (m *memStorage) CreateVideo(_ context.Context, v *types.Video) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	hash := types.HashURL(v.URL)
	if id, ok := m.byURL[hash]; ok {
		return id, false, nil
	}
	clone := *v
	m.videos[v.ID] = &clone
	m.byURL[hash] = v.ID
	return v.ID, true, nil
}

func (m *memStorage) SaveVideo(_ context.Context, v *types.Video) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *v
	m.videos[v.ID] = &clone
	return nil
}

func (m *memStorage) GetVideo(_ context.Context, id string) (*types.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.videos[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *v
	return &clone, nil
}

func (m *memStorage) ListVideos(_ context.Context) ([]*types.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*types.Video, 0, len(m.videos))
	for _, v := range m.videos {
		clone := *v
		out = append(out, &clone)
	}
	return out, nil
}

func (m *memStorage) DeleteVideo(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.videos[id]; ok {
		delete(m.byURL, types.HashURL(v.URL))
	}
	delete(m.videos, id)
	delete(m.transcripts, id)
	return nil
}

func (m *memStorage) SaveTranscript(_ context.Context, t *types.Transcript) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *t
	m.transcripts[t.VideoID] = &clone
	return nil
}

func (m *memStorage) GetTranscript(_ context.Context, videoID string) (*types.Transcript, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transcripts[videoID]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *t
	return &clone, nil
}

func (m *memStorage) SaveCollection(_ context.Context, c *types.Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *c
	m.collections[c.ID] = &clone
	return nil
}

func (m *memStorage) GetCollection(_ context.Context, id string) (*types.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (m *memStorage) ListCollections(_ context.Context) ([]*types.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*types.Collection, 0, len(m.collections))
	for _, c := range m.collections {
		clone := *c
		out = append(out, &clone)
	}
	return out, nil
}

func (m *memStorage) DeleteCollection(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collections, id)
	return nil
}

type stubDownloader struct{}

func (stubDownloader) Probe(context.Context, string) (*downloader.Info, error) {
	return &downloader.Info{Title: "probed"}, nil
}

func (stubDownloader) Download(context.Context, string, string) *downloader.Result {
	return &downloader.Result{Success: false, Error: "offline"}
}

type stubRecognizer struct{}

func (stubRecognizer) Transcribe(context.Context, string) (*transcribe.Result, error) {
	return &transcribe.Result{}, nil
}

func testRouterHub(storage *memStorage) (*gin.Engine, *events.Hub) {
	gin.SetMode(gin.TestMode)
	hub := events.NewHub(8)
	runner := pipeline.NewRunner(pipeline.Options{
		Store:      storage,
		Downloader: stubDownloader{},
		Recognizer: stubRecognizer{},
		Hub:        hub,
		VideosDir:  "data/videos",
	})
	return NewRouter(Deps{
		Pipeline:   runner,
		Store:      storage,
		Hub:        hub,
		Downloader: stubDownloader{},
		VideosDir:  "data/videos",
	}), hub
}

func testRouter(storage *memStorage) *gin.Engine {
	r, _ := testRouterHub(storage)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var parsed map[string]any
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &parsed); err != nil {
			t.Fatalf("%s %s: invalid JSON response %q", method, path, w.Body.String())
		}
	}
	return w, parsed
}

func TestHealthEndpoint(t *testing.T) {
	r := testRouter(newMemStorage())
	w, body := doJSON(t, r, http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["status"] != "healthy" {
		t.Fatalf("body = %v", body)
	}
}

func TestProcessRejectsUnsupportedURL(t *testing.T) {
	r := testRouter(newMemStorage())
	w, body := doJSON(t, r, http.MethodPost, "/api/videos/process", `{"url":"https://vimeo.com/99"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if body["error"] == nil {
		t.Fatal("missing error message")
	}
}

func TestProcessAcceptsSupportedURL(t *testing.T) {
	r := testRouter(newMemStorage())
	w, body := doJSON(t, r, http.MethodPost, "/api/videos/process", `{"url":"https://youtu.be/ok1"}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", w.Code)
	}
	if id, _ := body["video_id"].(string); id == "" {
		t.Fatal("missing video_id")
	}
	if body["status"] != types.StatusDownloading {
		t.Fatalf("status field = %v", body["status"])
	}
}

func TestGetVideoNotFound(t *testing.T) {
	r := testRouter(newMemStorage())
	w, _ := doJSON(t, r, http.MethodGet, "/api/videos/nope", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestGetVideoWithTranscript(t *testing.T) {
	storage := newMemStorage()
	storage.SaveVideo(context.Background(), &types.Video{ID: "v1", Status: types.StatusReady})
	storage.SaveTranscript(context.Background(), &types.Transcript{
		VideoID:  "v1",
		FullText: "Hello.",
		Segments: []types.Segment{{Index: 1, Text: "Hello."}},
	})
	r := testRouter(storage)

	w, body := doJSON(t, r, http.MethodGet, "/api/videos/v1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["transcript"] == nil {
		t.Fatal("transcript not attached")
	}
}

func TestDeleteVideo(t *testing.T) {
	storage := newMemStorage()
	storage.SaveVideo(context.Background(), &types.Video{ID: "v1", Status: types.StatusReady})
	r := testRouter(storage)

	w, _ := doJSON(t, r, http.MethodDelete, "/api/videos/v1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if _, err := storage.GetVideo(context.Background(), "v1"); err == nil {
		t.Fatal("video still present after delete")
	}
}

func TestAnnotationOnMissingTranscript(t *testing.T) {
	storage := newMemStorage()
	storage.SaveVideo(context.Background(), &types.Video{ID: "v1", Status: types.StatusTranscribing})
	r := testRouter(storage)

	w, _ := doJSON(t, r, http.MethodPost, "/api/videos/v1/translate", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
}

func TestProgressWebsocket(t *testing.T) {
	router, hub := testRouterHub(newMemStorage())
	srv := httptest.NewServer(router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/progress"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	// Application-level liveness: a "ping" text frame is answered with a
	// pong event. Receiving it also proves the observer is subscribed.
	if err := conn.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	var ev events.Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read pong: %v", err)
	}
	if ev.Type != events.TypePong {
		t.Fatalf("got %q, want %q", ev.Type, events.TypePong)
	}

	hub.Broadcast(events.Event{
		Type: events.TypeDownloadProgress,
		Data: map[string]any{"video_id": "v9", "progress": 42.5},
	})
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	if ev.Type != events.TypeDownloadProgress {
		t.Fatalf("got %q, want %q", ev.Type, events.TypeDownloadProgress)
	}
	if ev.Data["video_id"] != "v9" {
		t.Fatalf("event data = %v", ev.Data)
	}
}

func TestProgressWebsocketDetachOnDisconnect(t *testing.T) {
	router, hub := testRouterHub(newMemStorage())
	srv := httptest.NewServer(router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/progress"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	// Confirm subscription via the ping/pong exchange before dropping.
	if err := conn.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	var ev events.Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read pong: %v", err)
	}

	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.SubscriberCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("observer not detached after disconnect, %d still subscribed", hub.SubscriberCount())
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Broadcasting after the observer is gone must not panic or block.
	hub.Broadcast(events.Event{Type: events.TypeProcessError})
}

func TestCollectionLifecycle(t *testing.T) {
	storage := newMemStorage()
	storage.SaveVideo(context.Background(), &types.Video{ID: "vid1", Status: types.StatusReady})
	r := testRouter(storage)

	w, body := doJSON(t, r, http.MethodPost, "/api/collections", `{"name":"Study Set"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d", w.Code)
	}
	colID, _ := body["id"].(string)
	if colID == "" {
		t.Fatal("missing collection id")
	}

	w, body = doJSON(t, r, http.MethodPost, "/api/collections/"+colID+"/add", `{"video_id":"vid1","notes":"review"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("add status = %d", w.Code)
	}
	items, _ := body["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("items = %v", body["items"])
	}

	// Adding the same video again is a no-op.
	_, body = doJSON(t, r, http.MethodPost, "/api/collections/"+colID+"/add", `{"video_id":"vid1"}`)
	items, _ = body["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("duplicate add grew items: %v", body["items"])
	}

	w, body = doJSON(t, r, http.MethodDelete, "/api/collections/"+colID+"/remove/vid1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("remove status = %d", w.Code)
	}
	if items, _ := body["items"].([]any); len(items) != 0 {
		t.Fatalf("items after remove = %v", body["items"])
	}

	w, _ = doJSON(t, r, http.MethodDelete, "/api/collections/"+colID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	if _, err := storage.GetCollection(context.Background(), colID); err == nil {
		t.Fatal("collection still present after delete")
	}
}
