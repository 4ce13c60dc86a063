// Package server отдаёт сессию по HTTP: JSON API и HTML-страница с
// таблицей и сгенерированной формой.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"usersgrid/app/internal/model"
	"usersgrid/app/internal/session"
	"usersgrid/app/internal/stats"
)

type Server struct {
	session  *session.Session
	recorder *stats.Recorder
	history  *stats.History
	router   *mux.Router
}

// New регистрирует маршруты. После каждой перезагрузки строк в history
// добавляется снимок статистики.
func New(sess *session.Session, recorder *stats.Recorder, history *stats.History) *Server {
	s := &Server{
		session:  sess,
		recorder: recorder,
		history:  history,
		router:   mux.NewRouter(),
	}
	sess.Subscribe(func([]model.UserRecord) {
		history.Add(recorder.Snapshot())
	})
	history.Add(recorder.Snapshot())

	s.router.HandleFunc("/getRows", getRowsHandler(sess)).Methods("GET")
	s.router.HandleFunc("/columns", columnsHandler(sess)).Methods("GET")
	s.router.HandleFunc("/addRow", addRowHandler(sess)).Methods("POST")
	s.router.HandleFunc("/stats", statsHandler(recorder)).Methods("GET")
	s.router.HandleFunc("/chart", chartHandler(history)).Methods("GET")
	s.router.Handle("/metrics", recorder.Handler()).Methods("GET")
	s.router.HandleFunc("/", pageHandler(sess)).Methods("GET")
	s.router.HandleFunc("/", submitHandler(sess)).Methods("POST")
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// statusFor переводит ошибки в HTTP-статусы.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrFormat), errors.Is(err, model.ErrUnhandledType):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrDatabase):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("Encoding response")
	}
}

func getRowsHandler(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, sess.Rows())
	}
}

func columnsHandler(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, sess.Columns())
	}
}

// decodeValues читает JSON-объект значений столбцов. Числа и булевы
// значения берутся в исходном текстовом виде.
func decodeValues(r *http.Request) (map[string]string, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		switch v := v.(type) {
		case nil:
			values[k] = ""
		case string:
			values[k] = v
		case json.Number:
			values[k] = v.String()
		default:
			values[k] = fmt.Sprint(v)
		}
	}
	return values, nil
}

func addRowHandler(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		values, err := decodeValues(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := sess.Insert(r.Context(), values); err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		w.WriteHeader(http.StatusCreated)
	}
}

func statsHandler(recorder *stats.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, recorder.Snapshot())
	}
}

func chartHandler(history *stats.History) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := stats.RenderChart(w, history.All())
		if errors.Is(err, stats.ErrNoSnapshots) {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		if err != nil {
			logrus.WithError(err).Warn("Rendering chart")
		}
	}
}
