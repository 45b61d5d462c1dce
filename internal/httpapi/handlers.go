package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cfaprep/cfaprep/internal/progress"
)

type handlers struct {
	svc    progress.Service
	logger *slog.Logger
}

func (h *handlers) moduleQuestions(w http.ResponseWriter, r *http.Request) {
	book, ok := pathInt(w, r, "book")
	if !ok {
		return
	}
	module, ok := pathInt(w, r, "module")
	if !ok {
		return
	}
	qs, err := h.svc.ModuleQuestions(r.Context(), book, module)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if limit := queryInt(r, "limit", 0); limit > 0 && limit < len(qs) {
		qs = qs[:limit]
	}
	writeJSON(w, http.StatusOK, qs)
}

func (h *handlers) bookQuestions(w http.ResponseWriter, r *http.Request) {
	book, ok := pathInt(w, r, "book")
	if !ok {
		return
	}
	limit := queryInt(r, "limit", queryInt(r, "num_questions", 0))
	qs, err := h.svc.BookQuestions(r.Context(), book, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, qs)
}

func (h *handlers) bookInfo(w http.ResponseWriter, r *http.Request) {
	book, ok := pathInt(w, r, "book")
	if !ok {
		return
	}
	info, err := h.svc.BookInfo(r.Context(), book)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *handlers) mockExam(w http.ResponseWriter, r *http.Request) {
	qs, err := h.svc.MockExam(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, qs)
}

func (h *handlers) dueItems(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.DueItems(r.Context(), queryInt(r, "limit", 0))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handlers) submitResult(w http.ResponseWriter, r *http.Request) {
	var sub progress.Submission
	if !decode(w, r, &sub) {
		return
	}
	if sub.TestType == "" || sub.TestMode == "" {
		writeError(w, http.StatusBadRequest, "test_type and test_mode are required")
		return
	}
	res, err := h.svc.SubmitResult(r.Context(), sub)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) submitReview(w http.ResponseWriter, r *http.Request) {
	var a progress.ReviewAnswer
	if !decode(w, r, &a) {
		return
	}
	if a.QuestionID == "" {
		writeError(w, http.StatusBadRequest, "question_id is required")
		return
	}
	ack, err := h.svc.SubmitReview(r.Context(), a)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

func (h *handlers) history(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.History(r.Context(), queryInt(r, "limit", 0))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) errorStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.ErrorStats(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *handlers) progress(w http.ResponseWriter, r *http.Request) {
	ov, err := h.svc.Progress(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

// fail maps service errors onto status codes. Not-found keeps its message;
// anything else is logged and hidden behind a generic 500.
func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, progress.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	var status *progress.ErrStatus
	if errors.As(err, &status) {
		writeError(w, status.StatusCode, status.Body)
		return
	}
	h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

type errorBody struct {
	Detail string `json:"detail"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Detail: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 4<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || v <= 0 {
		writeError(w, http.StatusBadRequest, name+" must be a positive integer")
		return 0, false
	}
	return v, true
}

func queryInt(r *http.Request, name string, def int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}
