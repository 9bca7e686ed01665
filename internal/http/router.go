package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/go-chi/chi/v5"

	"guard-monitor/backend/internal/config"
	"guard-monitor/backend/internal/domain/checkin"
	"guard-monitor/backend/internal/domain/employee"
	"guard-monitor/backend/internal/domain/report"
	"guard-monitor/backend/internal/middleware"
	"guard-monitor/backend/internal/pdf"
)

type RouterDeps struct {
	Cfg         config.Config
	AuthClient  *auth.Client
	EmployeeSvc *employee.Service
	CheckinSvc  *checkin.Service
	ReportSvc   *report.Service
	Renderer    *pdf.Renderer
	Uploads     *Uploads
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS(d.Cfg.AllowedOrigins))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, 200, map[string]any{"ok": true, "ts": time.Now().UTC().Format(time.RFC3339)})
	})

	// Protected routes
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.WithAuth(d.AuthClient))

		pr.Get("/v1/me", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			WriteJSON(w, 200, map[string]any{
				"uid":    au.UID,
				"email":  au.Email,
				"claims": au.Claims,
			})
		})

		// ===== Report routes =====
		pr.Post("/v1/reports", func(w http.ResponseWriter, r *http.Request) {
			var in report.Request
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}
			in.Trim()

			st, err := d.ReportSvc.Generate(r.Context(), in)
			if err != nil {
				// "Nothing matched" is a successful outcome, not a failure.
				if report.IsErrNoResults(err) {
					WriteJSON(w, 200, map[string]any{
						"records": []checkin.Record{},
						"total":   0,
						"notice":  "Nenhum registro encontrado para os filtros selecionados.",
					})
					return
				}
				status, msg := mapReportError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 201, reportPayload(st))
		})

		pr.Get("/v1/reports/{reportId}", func(w http.ResponseWriter, r *http.Request) {
			st, err := d.ReportSvc.Get(chi.URLParam(r, "reportId"))
			if err != nil {
				status, msg := mapReportError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, reportPayload(st))
		})

		pr.Get("/v1/reports/{reportId}/export.pdf", func(w http.ResponseWriter, r *http.Request) {
			st, err := d.ReportSvc.Get(chi.URLParam(r, "reportId"))
			if err != nil {
				status, msg := mapReportError(err)
				Fail(w, status, msg)
				return
			}
			records := st.Snapshot()
			if len(records) == 0 {
				Fail(w, 409, report.ErrNoData.Error())
				return
			}

			meta := pdf.Meta{
				StartLabel: report.DateLabel(st.Request.StartDate),
				EndLabel:   report.DateLabel(st.Request.EndDate),
				LogoPath:   d.Cfg.ReportLogoPath,
			}
			var employeeName string
			if st.Employee != nil {
				employeeName = st.Employee.Username
				meta.Employee = &pdf.EmployeeInfo{
					Name:  st.Employee.Username,
					Phone: st.Employee.Phone,
					Email: st.Employee.Email,
					Role:  employee.RoleDisplayName(st.Employee.Role),
				}
			}

			out, _, err := d.Renderer.Render(records, meta)
			if err != nil {
				Fail(w, 500, err.Error())
				return
			}

			w.Header().Set("Content-Type", "application/pdf")
			w.Header().Set("Content-Disposition",
				fmt.Sprintf("attachment; filename=%q", report.Filename(st.Request, employeeName, "pdf")))
			w.WriteHeader(200)
			_, _ = w.Write(out)
		})

		pr.Get("/v1/reports/{reportId}/export.csv", func(w http.ResponseWriter, r *http.Request) {
			st, err := d.ReportSvc.Get(chi.URLParam(r, "reportId"))
			if err != nil {
				status, msg := mapReportError(err)
				Fail(w, status, msg)
				return
			}

			var buf bytes.Buffer
			if err := report.WriteCSV(&buf, st.Snapshot()); err != nil {
				if report.IsErrNoData(err) {
					Fail(w, 409, err.Error())
					return
				}
				Fail(w, 500, err.Error())
				return
			}

			var employeeName string
			if st.Employee != nil {
				employeeName = st.Employee.Username
			}
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			w.Header().Set("Content-Disposition",
				fmt.Sprintf("attachment; filename=%q", report.Filename(st.Request, employeeName, "csv")))
			w.WriteHeader(200)
			_, _ = buf.WriteTo(w)
		})

		// ===== Check-in feed routes =====
		pr.Get("/v1/checkins", func(w http.ResponseWriter, r *http.Request) {
			limit := 0
			if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
				if l, err := strconv.Atoi(limitStr); err == nil {
					limit = l
				}
			}

			out, err := d.CheckinSvc.Recent(r.Context(), r.URL.Query().Get("employeeId"), limit)
			if err != nil {
				status, msg := mapCheckinError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"checkins": out, "total": len(out)})
		})

		pr.Get("/v1/checkins/stats", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.CheckinSvc.Stats(r.Context())
			if err != nil {
				status, msg := mapCheckinError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, out)
		})

		// Live feed over SSE; one event per store change until the client
		// disconnects.
		pr.Get("/v1/checkins/live", func(w http.ResponseWriter, r *http.Request) {
			flusher, ok := w.(http.Flusher)
			if !ok {
				Fail(w, 500, "streaming unsupported")
				return
			}

			limit := 20
			if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
				if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
					limit = l
				}
			}

			w.Header().Set("Content-Type", "text/event-stream")
			w.Header().Set("Cache-Control", "no-cache")
			w.Header().Set("Connection", "keep-alive")
			w.WriteHeader(200)
			flusher.Flush()

			err := d.CheckinSvc.Stream(r.Context(), limit, func(records []checkin.Record) {
				payload, err := json.Marshal(map[string]any{"checkins": records})
				if err != nil {
					return
				}
				fmt.Fprintf(w, "data: %s\n\n", payload)
				flusher.Flush()
			})
			if err != nil && r.Context().Err() == nil {
				fmt.Fprintf(w, "event: error\ndata: %q\n\n", err.Error())
				flusher.Flush()
			}
		})

		// ===== Employee routes (admin only) =====
		pr.Route("/v1/employees", func(er chi.Router) {
			er.Use(requireAdmin)

			er.Get("/", func(w http.ResponseWriter, r *http.Request) {
				out, err := d.EmployeeSvc.List(r.Context())
				if err != nil {
					status, msg := mapEmployeeError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, map[string]any{"employees": out})
			})

			er.Post("/", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())

				var in employee.CreateEmployeeInput
				if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
					Fail(w, 400, "invalid json")
					return
				}

				out, err := d.EmployeeSvc.Create(r.Context(), au.UID, in)
				if err != nil {
					status, msg := mapEmployeeError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 201, out)
			})

			er.Get("/{uid}", func(w http.ResponseWriter, r *http.Request) {
				out, err := d.EmployeeSvc.Get(r.Context(), chi.URLParam(r, "uid"))
				if err != nil {
					status, msg := mapEmployeeError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, out)
			})

			er.Put("/{uid}", func(w http.ResponseWriter, r *http.Request) {
				var in employee.UpdateEmployeeInput
				if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
					Fail(w, 400, "invalid json")
					return
				}

				out, err := d.EmployeeSvc.Update(r.Context(), chi.URLParam(r, "uid"), in)
				if err != nil {
					status, msg := mapEmployeeError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, out)
			})

			er.Delete("/{uid}", func(w http.ResponseWriter, r *http.Request) {
				uid := chi.URLParam(r, "uid")
				if err := d.EmployeeSvc.Delete(r.Context(), uid); err != nil {
					status, msg := mapEmployeeError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, map[string]any{"ok": true, "deleted": uid})
			})

			er.Post("/{uid}/block", func(w http.ResponseWriter, r *http.Request) {
				var in employee.BlockEmployeeInput
				if r.ContentLength > 0 {
					if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
						Fail(w, 400, "invalid json")
						return
					}
				}

				out, err := d.EmployeeSvc.Block(r.Context(), chi.URLParam(r, "uid"), in)
				if err != nil {
					status, msg := mapEmployeeError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, out)
			})

			er.Post("/{uid}/unblock", func(w http.ResponseWriter, r *http.Request) {
				out, err := d.EmployeeSvc.Unblock(r.Context(), chi.URLParam(r, "uid"))
				if err != nil {
					status, msg := mapEmployeeError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, out)
			})
		})

		// ===== Upload routes =====
		if d.Uploads != nil {
			pr.Post("/v1/uploads/signed-url", d.Uploads.CreateSignedUploadURL)
		}
	})

	return r
}

func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		au, ok := middleware.GetAuthUser(r.Context())
		if !ok || !middleware.IsAdmin(au.Claims) {
			Fail(w, 403, "admin privileges required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func reportPayload(st *report.State) map[string]any {
	records := st.Snapshot()
	out := map[string]any{
		"id":        st.ID,
		"request":   st.Request,
		"createdAt": st.CreatedAt,
		"total":     len(records),
		"records":   records,
	}
	if st.Employee != nil {
		out["employee"] = st.Employee
	}
	return out
}

func mapReportError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case report.IsErrNotFound(err):
		return 404, err.Error()
	case report.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapCheckinError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case checkin.IsErrUnauthorized(err):
		return 403, err.Error()
	case checkin.IsErrNotFound(err):
		return 404, err.Error()
	case checkin.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapEmployeeError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case employee.IsErrUnauthorized(err):
		return 403, err.Error()
	case employee.IsErrNotFound(err):
		return 404, err.Error()
	case employee.IsErrBadRequest(err):
		return 400, err.Error()
	case employee.IsErrConflict(err):
		return 409, err.Error()
	default:
		return 500, err.Error()
	}
}
