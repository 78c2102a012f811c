package endpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/voxkit/diarization"
	"github.com/kbukum/voxkit/errors"
	"github.com/kbukum/voxkit/logger"
	"github.com/kbukum/voxkit/storage/local"
	"github.com/kbukum/voxkit/transcript"
)

type fakeTranscriber struct {
	got    transcript.Request
	staged []byte
	result *transcript.Transcript
	err    error
}

func (f *fakeTranscriber) Run(_ context.Context, req transcript.Request) (*transcript.Transcript, error) {
	f.got = req
	f.staged, _ = os.ReadFile(req.AudioPath)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fixture struct {
	engine  *gin.Engine
	store   string
	tempDir string
	fake    *fakeTranscriber
}

func newFixture(t *testing.T, fake *fakeTranscriber) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	storeDir := filepath.Join(t.TempDir(), "transcripts")
	store, err := local.NewStorage(storeDir, 0)
	if err != nil {
		t.Fatal(err)
	}
	tempDir := t.TempDir()

	engine := gin.New()
	engine.POST("/transcribe", Transcribe(fake, TranscribeOptions{
		Storage: store,
		TempDir: tempDir,
		Logger:  logger.NewNop(),
		Now:     func() time.Time { return time.Date(2026, 3, 4, 15, 4, 5, 0, time.UTC) },
	}))
	return &fixture{engine: engine, store: store.BasePath(), tempDir: tempDir, fake: fake}
}

func upload(t *testing.T, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if filename != "" {
		part, err := w.CreateFormFile(UploadField, filename)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = part.Write(data)
	} else {
		_ = w.WriteField("note", "no file")
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &body, w.FormDataContentType()
}

func (f *fixture) post(t *testing.T, query, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := upload(t, filename, data)
	req := httptest.NewRequest(http.MethodPost, "/transcribe"+query, body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	f.engine.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON %q: %v", rr.Body.String(), err)
	}
	return body
}

func TestTranscribe_Success(t *testing.T) {
	fake := &fakeTranscriber{result: &transcript.Transcript{
		Original:    []string{"SPEAKER_00: Hallo.", "SPEAKER_01: Guten Tag."},
		Translation: []string{"SPEAKER_00: Hello.", "SPEAKER_01: Good day."},
		Translated:  true,
		Language:    "de",
		Duration:    6,
		Diarization: &diarization.Result{NumSpeakers: 2},
	}}
	f := newFixture(t, fake)

	rr := f.post(t, "?translate=true&diarize=1&diarize_threshold=0.5&max_speakers=2&use_silhouette=true",
		"Team Meeting.m4a", []byte("audio-bytes"))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}

	var resp TranscribeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	want := "--- ORIGINAL TRANSCRIPT ---\nSPEAKER_00: Hallo.\nSPEAKER_01: Guten Tag.\n\n" +
		"--- ENGLISH TRANSLATION ---\nSPEAKER_00: Hello.\nSPEAKER_01: Good day."
	if resp.Status != "success" || resp.Transcript != want {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Speakers != 2 || resp.Language != "de" {
		t.Errorf("speakers = %d, language = %q", resp.Speakers, resp.Language)
	}

	wantPath := filepath.Join(f.store, "Team_Meeting_20260304_150405.txt")
	if resp.SavedTo != wantPath {
		t.Errorf("saved_to = %q, want %q", resp.SavedTo, wantPath)
	}
	saved, err := os.ReadFile(wantPath)
	if err != nil || string(saved) != want {
		t.Errorf("saved file = %q, %v", saved, err)
	}

	got := fake.got
	if !got.Translate || !got.Diarize {
		t.Errorf("switches not forwarded: %+v", got)
	}
	if got.Diarization.DistanceThreshold != 0.5 || got.Diarization.MaxSpeakers != 2 || !got.Diarization.UseSilhouette {
		t.Errorf("diarization config = %+v", got.Diarization)
	}
	if string(fake.staged) != "audio-bytes" {
		t.Errorf("staged upload = %q", fake.staged)
	}
	if filepath.Ext(got.AudioPath) != ".m4a" || filepath.Dir(got.AudioPath) != f.tempDir {
		t.Errorf("staged path = %q", got.AudioPath)
	}
	if _, err := os.Stat(got.AudioPath); !os.IsNotExist(err) {
		t.Errorf("staged upload was not removed: %v", err)
	}
}

func TestTranscribe_Defaults(t *testing.T) {
	fake := &fakeTranscriber{result: &transcript.Transcript{Original: []string{"Hello."}}}
	f := newFixture(t, fake)

	rr := f.post(t, "", "a.wav", []byte("x"))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	cfg := fake.got.Diarization
	if fake.got.Translate || fake.got.Diarize {
		t.Errorf("switches should default off: %+v", fake.got)
	}
	if cfg.DistanceThreshold != diarization.DefaultDistanceThreshold || cfg.MaxSpeakers != 0 || cfg.UseSilhouette {
		t.Errorf("diarization config = %+v", cfg)
	}
	if body := decode(t, rr); body["warnings"] != nil {
		t.Errorf("unexpected warnings: %v", body["warnings"])
	}
}

func TestTranscribe_ReportsWarnings(t *testing.T) {
	fake := &fakeTranscriber{result: &transcript.Transcript{
		Original:         []string{"Hello."},
		DiarizationError: errors.DependencyUnavailable("speaker embedding model", nil),
	}}
	f := newFixture(t, fake)

	rr := f.post(t, "?diarize=true", "a.wav", []byte("x"))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	warnings, _ := decode(t, rr)["warnings"].([]any)
	if len(warnings) != 1 || !strings.Contains(warnings[0].(string), "speaker embedding model") {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestTranscribe_Errors(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		filename   string
		runErr     error
		wantStatus int
		wantCode   string
	}{
		{"missing file", "", "", nil, http.StatusBadRequest, string(errors.ErrCodeMissingField)},
		{"bad bool", "?diarize=maybe", "a.wav", nil, http.StatusBadRequest, string(errors.ErrCodeInvalidInput)},
		{"threshold out of range", "?diarize_threshold=3", "a.wav", nil, http.StatusBadRequest, string(errors.ErrCodeInvalidInput)},
		{"zero speakers", "?max_speakers=0", "a.wav", nil, http.StatusBadRequest, string(errors.ErrCodeInvalidInput)},
		{"asr down", "", "a.wav", errors.ConnectionFailed("whisper sidecar"), http.StatusServiceUnavailable, string(errors.ErrCodeConnectionFailed)},
		{"undecodable", "", "a.wav", errors.UnsupportedAudio("a.wav", nil), http.StatusUnprocessableEntity, string(errors.ErrCodeUnsupportedAudio)},
		{"plain error", "", "a.wav", os.ErrPermission, http.StatusInternalServerError, string(errors.ErrCodeInternal)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeTranscriber{err: tt.runErr, result: &transcript.Transcript{}}
			f := newFixture(t, fake)

			rr := f.post(t, tt.query, tt.filename, []byte("x"))
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rr.Code, tt.wantStatus, rr.Body.String())
			}
			body := decode(t, rr)
			if body["status"] != "error" || body["message"] == "" {
				t.Errorf("body = %v", body)
			}
			if errBody, _ := body["error"].(map[string]any); errBody["code"] != tt.wantCode {
				t.Errorf("code = %v, want %s", errBody["code"], tt.wantCode)
			}

			entries, _ := os.ReadDir(f.tempDir)
			if len(entries) != 0 {
				t.Errorf("temp dir not cleaned: %v", entries)
			}
		})
	}
}
