// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/jeranaias/relay-tui/internal/model"
)

// received captures what the fake server saw.
type received struct {
	mu          sync.Mutex
	path        string
	text        string
	fileName    string
	fileType    string
	fileBody    []byte
	csrf        string
	session     string
	contentType string
}

func startServer(t *testing.T, handler func(ctx *fasthttp.RequestCtx, got *received)) (*Coordinator, *received) {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	got := &received{}

	srv := &fasthttp.Server{
		Handler: func(ctx *fasthttp.RequestCtx) {
			got.mu.Lock()
			got.path = string(ctx.Path())
			got.csrf = string(ctx.Request.Header.Peek("X-CSRFToken"))
			got.session = string(ctx.Request.Header.Cookie("sessionid"))
			got.contentType = string(ctx.Request.Header.ContentType())
			if form, err := ctx.MultipartForm(); err == nil {
				if v := form.Value["text"]; len(v) > 0 {
					got.text = v[0]
				}
				if files := form.File["file"]; len(files) > 0 {
					got.fileName = files[0].Filename
					got.fileType = files[0].Header.Get("Content-Type")
					if f, err := files[0].Open(); err == nil {
						got.fileBody, _ = io.ReadAll(f)
						f.Close()
					}
				}
			}
			got.mu.Unlock()
			handler(ctx, got)
		},
	}
	go srv.Serve(ln) //nolint:errcheck
	t.Cleanup(func() { ln.Close() })

	client := &fasthttp.Client{
		Dial: func(addr string) (net.Conn, error) { return ln.Dial() },
	}
	opts := Options{
		URLFor:        func(room string) string { return "http://relay.test/api/upload/" + room + "/" },
		SessionCookie: "sess-1",
		CSRFToken:     "tok-1",
		Timeout:       2 * time.Second,
		MaxBytes:      1024,
		Logger:        zerolog.Nop(),
	}
	return NewCoordinatorWithClient(opts, client), got
}

func okHandler(ctx *fasthttp.RequestCtx, _ *received) {
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusCreated)
	fmt.Fprint(ctx, `{"file_url":"/media/uploads/voice_message.webm","message_id":77}`)
}

func TestUploadSuccess(t *testing.T) {
	coord, got := startServer(t, okHandler)

	att := Attachment{FileName: "voice_message.webm", ContentType: "audio/webm", Data: []byte("opus-bytes")}
	res, err := coord.Upload(context.Background(), "lobby", "", att)
	require.NoError(t, err)

	assert.Equal(t, model.ID("77"), res.MessageID)
	assert.Equal(t, "/media/uploads/voice_message.webm", res.FileURL)

	got.mu.Lock()
	defer got.mu.Unlock()
	assert.Equal(t, "/api/upload/lobby/", got.path)
	assert.Equal(t, "tok-1", got.csrf)
	assert.Equal(t, "sess-1", got.session)
	assert.Contains(t, got.contentType, "multipart/form-data")
	assert.Equal(t, "", got.text)
	assert.Equal(t, "voice_message.webm", got.fileName)
	assert.Equal(t, "audio/webm", got.fileType)
	assert.Equal(t, []byte("opus-bytes"), got.fileBody)
}

func TestUploadSendsText(t *testing.T) {
	coord, got := startServer(t, okHandler)

	att := Attachment{FileName: "cat.png", Data: []byte{0x89, 'P', 'N', 'G'}}
	_, err := coord.Upload(context.Background(), "lobby", "look", att)
	require.NoError(t, err)

	got.mu.Lock()
	defer got.mu.Unlock()
	assert.Equal(t, "look", got.text)
	assert.Equal(t, "image/png", got.fileType)
}

func TestUploadRejected(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"forbidden", fasthttp.StatusForbidden, `{"error":"Not authorized"}`, "Not authorized"},
		{"bad form", fasthttp.StatusBadRequest, `{"error":"Invalid form"}`, "Invalid form"},
		{"server error", fasthttp.StatusInternalServerError, `oops`, "500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coord, _ := startServer(t, func(ctx *fasthttp.RequestCtx, _ *received) {
				ctx.SetStatusCode(tt.status)
				fmt.Fprint(ctx, tt.body)
			})

			_, err := coord.Upload(context.Background(), "lobby", "", Attachment{FileName: "a.txt", Data: []byte("x")})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUploadRejected))
			assert.Contains(t, err.Error(), tt.want)

			var uerr *Error
			require.True(t, errors.As(err, &uerr))
			assert.Equal(t, tt.status, uerr.Status)
		})
	}
}

func TestUploadInvalidResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"no message id", `{"file_url":"/media/x"}`},
		{"null file url", `{"file_url":null,"message_id":9}`},
		{"empty file url", `{"file_url":"","message_id":9}`},
		{"missing file url", `{"message_id":9}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coord, _ := startServer(t, func(ctx *fasthttp.RequestCtx, _ *received) {
				fmt.Fprint(ctx, tt.body)
			})

			res, err := coord.Upload(context.Background(), "lobby", "", Attachment{FileName: "a.txt", Data: []byte("x")})
			assert.True(t, errors.Is(err, ErrInvalidResponse), "err = %v", err)
			assert.Equal(t, Result{}, res)
		})
	}
}

func TestUploadLocalChecks(t *testing.T) {
	coord, _ := startServer(t, okHandler)

	_, err := coord.Upload(context.Background(), "lobby", "", Attachment{FileName: "a.txt"})
	assert.True(t, errors.Is(err, ErrEmpty))

	big := Attachment{FileName: "big.bin", Data: make([]byte, 2048)}
	_, err = coord.Upload(context.Background(), "lobby", "", big)
	assert.True(t, errors.Is(err, ErrTooLarge))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = coord.Upload(ctx, "lobby", "", Attachment{FileName: "a.txt", Data: []byte("x")})
	assert.True(t, errors.Is(err, ErrNetwork))
}

func TestUploadNetworkFailure(t *testing.T) {
	client := &fasthttp.Client{
		Dial: func(addr string) (net.Conn, error) { return nil, errors.New("connection refused") },
	}
	coord := NewCoordinatorWithClient(Options{
		URLFor:  func(room string) string { return "http://relay.test/api/upload/" + room + "/" },
		Timeout: time.Second,
	}, client)

	_, err := coord.Upload(context.Background(), "lobby", "", Attachment{FileName: "a.txt", Data: []byte("x")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
}

func TestAttachmentFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.JPG")
	require.NoError(t, os.WriteFile(path, []byte("jpeg"), 0o600))

	att, err := AttachmentFromFile(path, 0)
	require.NoError(t, err)
	assert.Equal(t, "photo.JPG", att.FileName)
	assert.Equal(t, "image/jpeg", att.ContentType)
	assert.Equal(t, 4, att.Size())

	_, err = AttachmentFromFile(path, 2)
	assert.True(t, errors.Is(err, ErrTooLarge))

	_, err = AttachmentFromFile(filepath.Join(dir, "missing"), 0)
	assert.Error(t, err)

	_, err = AttachmentFromFile(dir, 0)
	assert.Error(t, err)
}

func TestContentTypeFor(t *testing.T) {
	tests := map[string]string{
		"voice_message.webm": "audio/webm",
		"a.OGG":              "audio/ogg",
		"song.mp3":           "audio/mpeg",
		"x.png":              "image/png",
		"noext":              "application/octet-stream",
	}
	for name, want := range tests {
		assert.Equal(t, want, ContentTypeFor(name), name)
	}
}

// =============================================================================
// TRACKER TESTS
// =============================================================================

func TestTrackerAnnounceFlow(t *testing.T) {
	tr := NewTracker(zerolog.Nop())
	mode := model.Replying("5", "bob", "hi")

	p := tr.Begin(PurposeVoice, "lobby", "", mode, "voice_message.webm")
	assert.Equal(t, PhaseUploading, p.Phase)
	assert.NotEmpty(t, p.FlowID)
	assert.True(t, tr.Busy(PurposeVoice))
	assert.False(t, tr.Busy(PurposeAttachment))

	got, announce := tr.Complete(p.FlowID, Result{FileURL: "/m/v.webm", MessageID: "9"}, nil)
	require.True(t, announce)
	assert.Equal(t, PhaseUploaded, got.Phase)
	assert.Equal(t, model.ID("5"), got.ParentID())

	tr.MarkAnnounced(p.FlowID)
	assert.Equal(t, PhaseAnnounced, p.Phase)
	assert.Equal(t, 0, tr.Len())
}

func TestTrackerFailure(t *testing.T) {
	tr := NewTracker(zerolog.Nop())
	p := tr.Begin(PurposeAttachment, "lobby", "caption", model.Idle(), "a.txt")

	got, announce := tr.Complete(p.FlowID, Result{}, ErrUploadRejected)
	assert.False(t, announce)
	assert.Equal(t, PhaseFailed, got.Phase)
	assert.Equal(t, ErrUploadRejected, got.Err)
	assert.Equal(t, 0, tr.Len())
}

func TestTrackerAbandon(t *testing.T) {
	tr := NewTracker(zerolog.Nop())
	p := tr.Begin(PurposeAttachment, "lobby", "", model.Idle(), "a.txt")
	other := tr.Begin(PurposeVoice, "lobby", "", model.Idle(), "v.webm")

	assert.Equal(t, 1, tr.AbandonPurpose(PurposeAttachment))
	assert.False(t, tr.Abandon(p.FlowID), "already abandoned")
	assert.Len(t, tr.InFlight(), 1)
	assert.Equal(t, other.FlowID, tr.InFlight()[0].FlowID)

	_, announce := tr.Complete(p.FlowID, Result{MessageID: "3"}, nil)
	assert.False(t, announce)
	assert.Equal(t, 1, tr.Len())

	_, announce = tr.Complete("nope", Result{}, nil)
	assert.False(t, announce)
}

func TestTrackerDrop(t *testing.T) {
	tr := NewTracker(zerolog.Nop())
	p := tr.Begin(PurposeAttachment, "lobby", "", model.Idle(), "a.txt")
	_, announce := tr.Complete(p.FlowID, Result{MessageID: "4"}, nil)
	require.True(t, announce)

	tr.Drop(p.FlowID, errors.New("channel closed"))
	assert.Equal(t, PhaseFailed, p.Phase)
	assert.Equal(t, 0, tr.Len())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "uploading", PhaseUploading.String())
	assert.Equal(t, "abandoned", PhaseAbandoned.String())
	assert.True(t, PhaseAnnounced.Terminal())
	assert.False(t, PhaseUploaded.Terminal())
	assert.Equal(t, "voice", PurposeVoice.String())
}
