package routing

import (
	"net/http"
	"runtime/debug"
)

type Router struct {
	classifier *Classifier
	routes     map[string]*pathRoutes
}

type pathRoutes struct {
	rc       RouteClass
	byMethod map[string]http.Handler
}

func NewRouter(classifier *Classifier) *Router {
	return &Router{
		classifier: classifier,
		routes:     make(map[string]*pathRoutes),
	}
}

func (r *Router) Handle(rc RouteClass, method string, path string, h http.Handler) {
	pr := r.routes[path]
	if pr == nil {
		pr = &pathRoutes{rc: rc, byMethod: make(map[string]http.Handler)}
		r.routes[path] = pr
	}
	pr.byMethod[method] = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				_ = debug.Stack()
				WriteError(w, req, rc, http.StatusInternalServerError, "internal_error", "internal error")
			}
		}()
		h.ServeHTTP(w, req)
	})
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	pr, ok := r.routes[req.URL.Path]
	if !ok {
		WriteError(w, req, r.classifier.Classify(req.URL.Path), http.StatusNotFound, "not_found", "not found")
		return
	}
	h, ok := pr.byMethod[req.Method]
	if !ok {
		WriteError(w, req, pr.rc, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	h.ServeHTTP(w, req)
}
