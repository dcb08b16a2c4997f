package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/bktrade/site/internal/service"
)

// maxBodyBytes caps request bodies of the form and admin endpoints.
const maxBodyBytes = 64 << 10

// User-facing messages.
const (
	msgSubmitted       = "Спасибо! Заявка принята, менеджер свяжется с вами в течение часа."
	msgSpam            = "Spam protection triggered."
	msgTooFrequent     = "Слишком частые заявки. Попробуйте ещё раз через несколько секунд."
	msgLockedOut       = "Слишком много неудачных попыток входа. Попробуйте позже."
	msgBadCredentials  = "Неверный логин или пароль."
	msgNotConfigured   = "Вход в панель управления не настроен."
	msgLeadNotFound    = "Заявка не найдена."
	msgInvalidBody     = "Некорректный формат запроса."
	msgInternal        = "Внутренняя ошибка сервера."
	msgLoggedIn        = "Вход выполнен."
	msgLoggedOut       = "Выход выполнен."
	msgStatusUpdated   = "Статус заявки обновлён."
	msgTooManyRequests = "Слишком много запросов. Попробуйте позже."
)

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// writeServiceError maps service errors onto HTTP statuses. Anything
// unexpected is logged and answered with a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	var locked *service.LockedOutError
	switch {
	case errors.As(err, &verr):
		writeMessage(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, service.ErrSpam):
		writeMessage(w, http.StatusBadRequest, msgSpam)
	case errors.Is(err, service.ErrRateLimited):
		writeMessage(w, http.StatusTooManyRequests, msgTooFrequent)
	case errors.As(err, &locked):
		w.Header().Set("Retry-After", retryAfterSeconds(locked.RetryAfter))
		writeMessage(w, http.StatusTooManyRequests, msgLockedOut)
	case errors.Is(err, service.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, msgBadCredentials)
	case errors.Is(err, service.ErrAdminNotConfigured):
		writeMessage(w, http.StatusServiceUnavailable, msgNotConfigured)
	case errors.Is(err, service.ErrLeadNotFound):
		writeMessage(w, http.StatusNotFound, msgLeadNotFound)
	default:
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", RequestIDFromContext(r.Context()),
			"error", err,
		)
		writeMessage(w, http.StatusInternalServerError, msgInternal)
	}
}

// decodeBody reads a JSON or urlencoded form body into dst. Form fields
// are matched against dst's json tags.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return err
		}
		fields := make(map[string]string, len(r.PostForm))
		for k, v := range r.PostForm {
			if len(v) > 0 {
				fields[k] = v[0]
			}
		}
		raw, err := json.Marshal(fields)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dst)
	}
	return json.NewDecoder(r.Body).Decode(dst)
}

// parsePositiveInt parses s as an integer greater than zero.
func parsePositiveInt(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
