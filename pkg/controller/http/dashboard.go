package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/retention/pkg/domain/model"
	"github.com/secmon-lab/retention/pkg/domain/types"
	"github.com/secmon-lab/retention/pkg/usecase"
)

type dashboardHandler struct {
	uc *usecase.DashboardUseCase
}

// employeeView adds the derived risk level to an employee record
type employeeView struct {
	*model.Employee
	RiskLevel model.RiskLevel `json:"risk_level"`
}

type employeeAdviceView struct {
	Employee        employeeView           `json:"employee"`
	Recommendations []model.Recommendation `json:"recommendations"`
}

func newEmployeeView(emp *model.Employee) employeeView {
	return employeeView{Employee: emp, RiskLevel: emp.RiskLevel()}
}

func newEmployeeAdviceView(a *model.EmployeeAdvice) employeeAdviceView {
	return employeeAdviceView{
		Employee:        newEmployeeView(a.Employee),
		Recommendations: a.Recommendations,
	}
}

func filterParams(r *http.Request) (string, types.Department) {
	q := r.URL.Query()
	return q.Get("q"), types.Department(q.Get("department"))
}

func (h *dashboardHandler) getDashboard(w http.ResponseWriter, r *http.Request) {
	query, dept := filterParams(r)
	dashboard, err := h.uc.Dashboard(r.Context(), query, dept)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dashboard)
}

func (h *dashboardHandler) getDepartments(w http.ResponseWriter, r *http.Request) {
	depts, err := h.uc.Departments(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"departments": depts})
}

func (h *dashboardHandler) listEmployees(w http.ResponseWriter, r *http.Request) {
	query, dept := filterParams(r)
	employees, err := h.uc.ListEmployees(r.Context(), query, dept)
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]employeeView, len(employees))
	for i, emp := range employees {
		views[i] = newEmployeeView(emp)
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"employees": views})
}

func (h *dashboardHandler) listHighRisk(w http.ResponseWriter, r *http.Request) {
	advice, err := h.uc.HighRisk(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]employeeAdviceView, len(advice))
	for i, a := range advice {
		views[i] = newEmployeeAdviceView(a)
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"employees": views})
}

func (h *dashboardHandler) getEmployee(w http.ResponseWriter, r *http.Request) {
	id := types.EmployeeID(chi.URLParam(r, "employeeID"))
	advice, err := h.uc.Employee(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newEmployeeAdviceView(advice))
}
