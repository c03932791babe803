package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Exams       *ExamHandler
	Assignments *AssignmentHandler
	Attendance  *AttendanceHandler
	Catalog     *CatalogHandler
	Health      *HealthHandler
	Middleware  []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Health != nil {
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Health.Check(w, r)
		})
	}

	if cfg.Exams != nil {
		mux.HandleFunc("/exams", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Exams.List(w, r)
			case http.MethodPost:
				cfg.Exams.Schedule(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/exams/schedule", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Exams.Schedule(w, r)
		})
		mux.HandleFunc("/exams/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/exams/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithResourceID(r.Context(), id))
			switch r.Method {
			case http.MethodGet:
				cfg.Exams.Get(w, r)
			case http.MethodPut:
				cfg.Exams.Update(w, r)
			case http.MethodDelete:
				cfg.Exams.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		})
	}

	if cfg.Assignments != nil {
		mux.HandleFunc("/assignments", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Assignments.List(w, r)
			case http.MethodPost:
				cfg.Assignments.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/assignments/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/assignments/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithResourceID(r.Context(), id))
			switch r.Method {
			case http.MethodGet:
				cfg.Assignments.Get(w, r)
			case http.MethodPut:
				cfg.Assignments.Update(w, r)
			case http.MethodDelete:
				cfg.Assignments.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		})
	}

	if cfg.Attendance != nil {
		mux.HandleFunc("/attendance", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Attendance.Mark(w, r)
		})
		mux.HandleFunc("/attendance/", func(w http.ResponseWriter, r *http.Request) {
			regNumber, action, ok := strings.Cut(strings.TrimPrefix(r.URL.Path, "/attendance/"), "/")
			if !ok || regNumber == "" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			r = r.WithContext(ContextWithResourceID(r.Context(), regNumber))
			switch action {
			case "eligibility":
				cfg.Attendance.Eligibility(w, r)
			case "stats":
				cfg.Attendance.Stats(w, r)
			default:
				http.NotFound(w, r)
			}
		})
	}

	if cfg.Catalog != nil {
		mux.HandleFunc("/courses", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Catalog.ListCourses(w, r)
			case http.MethodPost:
				cfg.Catalog.CreateCourse(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/faculty", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Catalog.ListFacultyMembers(w, r)
			case http.MethodPost:
				cfg.Catalog.CreateFacultyMember(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
