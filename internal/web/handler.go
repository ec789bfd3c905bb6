// Package web serves the fruits resource over HTTP as server-rendered pages.
package web

import (
	"bytes"
	"net/http"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/fruits/pkg/types"
)

const collectionPath = "/fruits"

// Form field names submitted by the new and edit views.
const (
	fieldName       = "name"
	fieldColor      = "color"
	fieldReadyToEat = "readyToEat"
)

// Handler is the fruits resource controller. It reads the store, coerces
// form input and renders views or redirects to the collection.
type Handler struct {
	Fruits  types.Table
	Views   Renderer
	Log     *zap.Logger
	Metrics *Metrics

	// Strict turns store failures into 404 and 500 responses. When false,
	// failures are logged and the request completes as if it succeeded.
	Strict bool
}

// NewHandler constructs a strict fruits controller.
func NewHandler(fruits types.Table, views Renderer, log *zap.Logger) *Handler {
	return &Handler{Fruits: fruits, Views: views, Log: log, Strict: true}
}

// Register adds the fruits routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /fruits", h.list)
	mux.HandleFunc("GET /fruits/{$}", h.list)
	mux.HandleFunc("GET /fruits/new", h.newForm)
	mux.HandleFunc("GET /fruits/{id}", h.show)
	mux.HandleFunc("GET /fruits/{id}/edit", h.edit)
	mux.HandleFunc("POST /fruits", h.create)
	mux.HandleFunc("POST /fruits/{$}", h.create)
	mux.HandleFunc("PUT /fruits/{id}", h.update)
	mux.HandleFunc("PATCH /fruits/{id}", h.update)
	mux.HandleFunc("DELETE /fruits/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	fruits, err := h.Fruits.Fetch(r.Context(), nil)
	if err != nil {
		if h.Strict {
			h.fail(w, r, "list", err)
			return
		}
		h.ignore(r, "list", err)
		fruits = nil
	}
	h.render(w, http.StatusOK, viewIndex, page{Title: "Fruits", Fruits: fruits})
}

func (h *Handler) newForm(w http.ResponseWriter, _ *http.Request) {
	h.render(w, http.StatusOK, viewNew, page{Title: "New fruit"})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	h.lookup(w, r, "show", viewShow)
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	h.lookup(w, r, "edit", viewEdit)
}

// lookup renders view with the fruit named by the path id. An absent fruit
// renders the view without a record.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request, op, view string) {
	id := r.PathValue("id")
	fruit, err := h.Fruits.Get(r.Context(), id)
	switch {
	case err == nil:
		h.render(w, http.StatusOK, view, page{Title: fruit.Name, Fruit: fruit})
	case !h.Strict:
		h.ignore(r, op, err, zap.String("id", id))
		h.render(w, http.StatusOK, view, page{Title: "Fruit"})
	case types.IsAbsent(err):
		h.Log.Info("fruit not found", zap.String("op", op), zap.String("id", id), zap.Error(err))
		h.render(w, http.StatusNotFound, view, page{Title: "Fruit not found"})
	default:
		h.fail(w, r, op, err, zap.String("id", id))
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	fruit := fruitFromForm(r)
	id, err := h.Fruits.Set(r.Context(), "", fruit)
	if err != nil {
		if h.Strict {
			h.fail(w, r, "create", err)
			return
		}
		h.ignore(r, "create", err)
	} else {
		h.Log.Debug("fruit created", zap.String("id", id))
	}
	redirectToCollection(w, r)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	_, err := h.Fruits.Set(r.Context(), id, fruitFromForm(r))
	h.finishWrite(w, r, "update", id, err)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := h.Fruits.Delete(r.Context(), id)
	h.finishWrite(w, r, "delete", id, err)
}

// finishWrite redirects after an update or delete. A missing id is a no-op.
func (h *Handler) finishWrite(w http.ResponseWriter, r *http.Request, op, id string, err error) {
	switch {
	case err == nil:
	case !h.Strict:
		h.ignore(r, op, err, zap.String("id", id))
	case types.IsAbsent(err):
		h.Log.Info("fruit not found", zap.String("op", op), zap.String("id", id), zap.Error(err))
	default:
		h.fail(w, r, op, err, zap.String("id", id))
		return
	}
	redirectToCollection(w, r)
}

// fruitFromForm reads the submitted fields. A missing readyToEat reads as
// the empty string and coerces to false.
func fruitFromForm(r *http.Request) *types.Fruit {
	return types.NewFruit(
		r.PostFormValue(fieldName),
		r.PostFormValue(fieldColor),
		r.PostFormValue(fieldReadyToEat),
	)
}

func redirectToCollection(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, collectionPath, http.StatusFound)
}

// ignore logs a store failure that legacy mode swallows.
func (h *Handler) ignore(r *http.Request, op string, err error, fields ...zap.Field) {
	h.Metrics.storeError(op)
	fields = append(fields, zap.String("op", op), zap.String("path", r.URL.Path), zap.Error(err))
	h.Log.Warn("store failure ignored", fields...)
}

// fail logs a store failure and renders the error view with status 500.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error, fields ...zap.Field) {
	h.Metrics.storeError(op)
	fields = append(fields, zap.String("op", op), zap.String("path", r.URL.Path), zap.Error(err))
	h.Log.Error("store failure", fields...)
	h.render(w, http.StatusInternalServerError, viewError, page{
		Title:  "Error",
		Status: http.StatusInternalServerError,
	})
}

// render executes view into a buffer before writing the status line.
func (h *Handler) render(w http.ResponseWriter, status int, view string, data page) {
	var buf bytes.Buffer
	if err := h.Views.Render(&buf, view, data); err != nil {
		h.Log.Error("render view", zap.String("view", view), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
