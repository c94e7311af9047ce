// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/jeranaias/relay-tui/internal/config"
	"github.com/jeranaias/relay-tui/internal/model"
)

// Result is the server's answer to a successful upload. MessageID is
// provisioned by the server before the message is announced on the chat
// channel.
type Result struct {
	FileURL   string
	MessageID model.ID
}

// Uploader performs one out-of-band upload.
type Uploader interface {
	Upload(ctx context.Context, room, text string, att Attachment) (Result, error)
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// Options configures a Coordinator.
type Options struct {
	// URLFor returns the upload endpoint of a room.
	URLFor func(room string) string

	SessionCookie string
	CSRFToken     string
	Referer       string

	Timeout  time.Duration
	MaxBytes int64

	Logger zerolog.Logger
}

// OptionsFromConfig builds Options from the server and upload sections.
func OptionsFromConfig(cfg *config.Config) Options {
	server := cfg.Server
	return Options{
		URLFor:        server.UploadURL,
		SessionCookie: server.SessionCookie,
		CSRFToken:     server.CSRFToken,
		Referer:       server.BaseURL,
		Timeout:       cfg.Upload.Timeout(),
		MaxBytes:      cfg.Upload.MaxBytes(),
		Logger:        zerolog.Nop(),
	}
}

// =============================================================================
// COORDINATOR
// =============================================================================

// Coordinator uploads attachments over HTTP. It is safe for concurrent use.
type Coordinator struct {
	opts   Options
	client *fasthttp.Client
	log    zerolog.Logger
}

// NewCoordinator creates a coordinator using its own fasthttp client.
func NewCoordinator(opts Options) *Coordinator {
	return NewCoordinatorWithClient(opts, &fasthttp.Client{
		Name:                "relay",
		MaxResponseBodySize: 1 << 20,
	})
}

// NewCoordinatorWithClient creates a coordinator around client. Tests use it
// to dial an in-memory listener.
func NewCoordinatorWithClient(opts Options, client *fasthttp.Client) *Coordinator {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Coordinator{opts: opts, client: client, log: opts.Logger}
}

type uploadResponse struct {
	FileURL   *string  `json:"file_url"`
	MessageID model.ID `json:"message_id"`
	Error     string   `json:"error"`
}

// Upload sends text and att as one multipart request to the room's upload
// endpoint. It performs exactly one attempt. The context bounds the wait;
// an upload already on the wire is not aborted.
func (c *Coordinator) Upload(ctx context.Context, room, text string, att Attachment) (Result, error) {
	if att.Size() == 0 {
		return Result{}, &Error{Type: ErrTypeEmpty, Message: "attachment is empty"}
	}
	if c.opts.MaxBytes > 0 && int64(att.Size()) > c.opts.MaxBytes {
		return Result{}, &Error{
			Type:    ErrTypeTooLarge,
			Message: fmt.Sprintf("attachment is %d bytes, limit is %d", att.Size(), c.opts.MaxBytes),
		}
	}
	if err := ctx.Err(); err != nil {
		return Result{}, &Error{Type: ErrTypeNetwork, Message: "upload cancelled", Cause: err}
	}

	body, contentType, err := encodeForm(text, att)
	if err != nil {
		return Result{}, &Error{Type: ErrTypeUnknown, Message: "failed to encode form", Cause: err}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	url := c.opts.URLFor(room)
	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType(contentType)
	req.Header.Set("Accept", "application/json")
	if c.opts.CSRFToken != "" {
		req.Header.Set("X-CSRFToken", c.opts.CSRFToken)
		req.Header.SetCookie("csrftoken", c.opts.CSRFToken)
	}
	if c.opts.SessionCookie != "" {
		req.Header.SetCookie("sessionid", c.opts.SessionCookie)
	}
	if c.opts.Referer != "" {
		req.Header.SetReferer(c.opts.Referer)
	}
	req.SetBody(body)

	deadline := time.Now().Add(c.opts.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	start := time.Now()
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		c.log.Warn().Err(err).Str("room", room).Str("file", att.FileName).Msg("upload failed")
		if errors.Is(err, fasthttp.ErrTimeout) {
			return Result{}, &Error{Type: ErrTypeNetwork, Message: "upload timed out", Cause: err}
		}
		return Result{}, &Error{Type: ErrTypeNetwork, Message: "upload failed", Cause: err}
	}

	status := resp.StatusCode()
	var parsed uploadResponse
	decodeErr := json.Unmarshal(resp.Body(), &parsed)

	if status < 200 || status > 299 {
		msg := fmt.Sprintf("upload rejected (%d)", status)
		if decodeErr == nil && parsed.Error != "" {
			msg += ": " + parsed.Error
		}
		c.log.Warn().Int("status", status).Str("room", room).Msg(msg)
		return Result{}, &Error{Type: ErrTypeRejected, Status: status, Message: msg}
	}
	if decodeErr != nil {
		return Result{}, &Error{Type: ErrTypeInvalidResponse, Status: status, Message: "invalid upload response", Cause: decodeErr}
	}
	if parsed.MessageID.IsZero() {
		return Result{}, &Error{Type: ErrTypeInvalidResponse, Status: status, Message: "upload response has no message_id"}
	}

	// The server answers file_url null when it stored no file; nothing
	// can be announced without a reference.
	if parsed.FileURL == nil || strings.TrimSpace(*parsed.FileURL) == "" {
		return Result{}, &Error{Type: ErrTypeInvalidResponse, Status: status, Message: "upload response has no file_url"}
	}

	res := Result{MessageID: parsed.MessageID, FileURL: *parsed.FileURL}
	c.log.Debug().
		Str("room", room).
		Str("file", att.FileName).
		Int("bytes", att.Size()).
		Dur("elapsed", time.Since(start)).
		Str("message_id", res.MessageID.String()).
		Msg("upload complete")
	return res, nil
}

// encodeForm builds the multipart body with a "text" field and a "file"
// part carrying the attachment's real content type.
func encodeForm(text string, att Attachment) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("text", text); err != nil {
		return nil, "", err
	}

	name := att.FileName
	if name == "" {
		name = "attachment"
	}
	ct := att.ContentType
	if ct == "" {
		ct = ContentTypeFor(name)
	}

	// CreateFormFile would force application/octet-stream.
	partHeader := textproto.MIMEHeader{}
	partHeader.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(name)))
	partHeader.Set("Content-Type", ct)

	part, err := writer.CreatePart(partHeader)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(att.Data); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
