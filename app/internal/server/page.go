package server

import (
	"html/template"
	"net/http"

	"github.com/sirupsen/logrus"

	"usersgrid/app/internal/model"
	"usersgrid/app/internal/session"
	"usersgrid/app/internal/viewmodel"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
	<title>{{.Table}}</title>
	<style>
		body { display: flex; gap: 2em; width: 600px; height: 400px; font-family: sans-serif; }
		table { border-collapse: collapse; }
		td, th { border: 1px solid #ccc; padding: 2px 8px; }
		.error { color: #b00; }
	</style>
</head>
<body>
	<table>
		<tr><th>id</th><th>name</th></tr>
		{{range .Rows}}<tr><td>{{.ID}}</td><td>{{.Name}}</td></tr>
		{{end}}
	</table>
	<div>
		{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
		<form method="post" action="/">
			<fieldset>
				<legend>New Row</legend>
				{{range .Fields}}<p><label>{{.Label}} <input type="text" name="{{.Column}}" value="{{.Value}}"></label></p>
				{{end}}
			</fieldset>
			<button type="submit">Add to database</button>
		</form>
	</div>
</body>
</html>
`))

type pageField struct {
	viewmodel.Field
	Value string
}

type pageData struct {
	Table  string
	Rows   []model.UserRecord
	Fields []pageField
	Error  string
}

func renderPage(w http.ResponseWriter, status int, sess *session.Session, values map[string]string, err error) {
	data := pageData{
		Table: sess.Table(),
		Rows:  sess.Rows(),
	}
	for _, f := range sess.Fields() {
		data.Fields = append(data.Fields, pageField{Field: f, Value: values[f.Column]})
	}
	if err != nil {
		data.Error = err.Error()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		logrus.WithError(err).Warn("Rendering page")
	}
}

func pageHandler(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderPage(w, http.StatusOK, sess, nil, nil)
	}
}

// submitHandler добавляет строку из отправленной формы. При ошибке
// страница показывается снова с введёнными значениями и текстом ошибки.
func submitHandler(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		values := make(map[string]string)
		for _, f := range sess.Fields() {
			values[f.Column] = r.PostForm.Get(f.Column)
		}

		if err := sess.Insert(r.Context(), values); err != nil {
			renderPage(w, statusFor(err), sess, values, err)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
