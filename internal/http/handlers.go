package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/syedarman1/screenme-sub001/internal/app"
	"github.com/syedarman1/screenme-sub001/internal/domain"
	"github.com/syedarman1/screenme-sub001/internal/service/conversation"
	"github.com/syedarman1/screenme-sub001/internal/service/prep"
)

// multipartOverhead is allowed on top of the audio limit for form fields
// and part headers.
const multipartOverhead = 1 << 20

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

type handlers struct {
	app *app.Application
}

type prepRequest struct {
	Job     string `json:"job"`
	Context string `json:"context,omitempty"`
}

type transcribeResponse struct {
	Transcript string `json:"transcript"`
}

type speechRequest struct {
	Text string `json:"text"`
}

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}

// conversationTurn accepts multipart fields "audio" (file) and "history"
// (JSON string).
func (h *handlers) conversationTurn(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.app.Cfg.Audio.MaxBytes+multipartOverhead)

	in := conversation.Input{RequestID: requestID(r)}
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, domain.ErrAudioTooLarge)
			return
		}
		// Not a multipart body: nothing was uploaded.
		writeError(w, r, domain.ErrMissingAudio)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("audio")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		writeError(w, r, domain.Internal(err))
		return
	default:
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, r, domain.Internal(err))
			return
		}
		in.Audio = data
		in.Filename = header.Filename
	}
	// History is only read from the multipart body, never the query string.
	if values := r.MultipartForm.Value["history"]; len(values) > 0 {
		in.History = values[0]
	}

	result, err := h.app.Turns.ProcessTurn(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// transcribe reads the raw request body as one audio clip. The optional
// "filename" query parameter hints the container format.
func (h *handlers) transcribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.app.Cfg.Audio.MaxBytes)

	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMessageOnly(w, domain.ErrAudioTooLarge)
			return
		}
		writeMessageOnly(w, domain.Internal(err))
		return
	}
	if data == nil {
		data = []byte{}
	}

	transcript, err := h.app.Turns.Transcribe(r.Context(), requestID(r), data, r.URL.Query().Get("filename"))
	if err != nil {
		writeMessageOnly(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transcribeResponse{Transcript: transcript})
}

func (h *handlers) interviewPrep(w http.ResponseWriter, r *http.Request) {
	var req prepRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.app.Prep.Generate(r.Context(), prep.Request{
		RequestID: requestID(r),
		Job:       req.Job,
		Context:   req.Context,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) speech(w http.ResponseWriter, r *http.Request) {
	var req speechRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	speech, err := h.app.Chat.Speak(r.Context(), requestID(r), req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", speech.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(speech.Data)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return &domain.Error{Kind: domain.KindInvalidBody, Message: domain.ErrInvalidBody.Message, Err: err}
	}
	return nil
}
