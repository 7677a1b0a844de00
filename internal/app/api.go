package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/tutoring-admin/internal/ctxutil"
	"github.com/Spok95/tutoring-admin/internal/db"
	"github.com/Spok95/tutoring-admin/internal/export"
	"github.com/Spok95/tutoring-admin/internal/models"
	"github.com/Spok95/tutoring-admin/internal/service"
)

// API — внутренний JSON-API для админки. Аутентификацию делает
// вышестоящий шлюз платформы; сюда личность оператора приходит в
// заголовках X-User-ID / X-User-Role.
type API struct {
	Classes    *service.Classes
	Timetables *service.Timetables
	Sessions   *service.Sessions
	Payslips   *service.Payslips
	Log        *zap.SugaredLogger
}

func (a *API) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/teachers", a.op("teacher.create", a.createTeacher))
	mux.HandleFunc("POST /api/teachers/{id}/active", a.op("teacher.active", a.setTeacherActive))
	mux.HandleFunc("GET /api/teachers/{id}/classes", a.op("class.list", a.listClasses))

	mux.HandleFunc("POST /api/classes", a.op("class.create", a.createClass))
	mux.HandleFunc("POST /api/classes/{id}/status", a.op("class.status", a.setClassStatus))
	mux.HandleFunc("GET /api/sessions/{id}/attendance", a.op("attendance.list", a.listAttendance))
	mux.HandleFunc("PUT /api/sessions/{id}/attendance", a.op("attendance.mark", a.markAttendance))
	mux.HandleFunc("POST /api/classes/{id}/timetable", a.op("timetable.create", a.createTimetable))
	mux.HandleFunc("PUT /api/timetables/{id}/schedule", a.op("timetable.update", a.updateSchedule))
	mux.HandleFunc("POST /api/timetables/{id}/deactivate", a.op("timetable.deactivate", a.deactivateTimetable))
	mux.HandleFunc("GET /api/classes/{id}/sessions", a.op("session.list", a.listSessions))

	mux.HandleFunc("POST /api/sessions/{id}/start", a.op("session.start", a.sessionAction))
	mux.HandleFunc("POST /api/sessions/{id}/end", a.op("session.end", a.sessionAction))
	mux.HandleFunc("POST /api/sessions/{id}/cancel", a.op("session.cancel", a.sessionAction))
	mux.HandleFunc("POST /api/sessions/{id}/no-show", a.op("session.no_show", a.sessionAction))
	mux.HandleFunc("POST /api/sessions/{id}/reschedule", a.op("session.reschedule", a.sessionAction))
	mux.HandleFunc("POST /api/sessions/{id}/verify", a.op("session.verify", a.sessionAction))
	mux.HandleFunc("POST /api/sessions/{id}/unverify", a.op("session.unverify", a.sessionAction))
	mux.HandleFunc("POST /api/sessions/{id}/substitute", a.op("session.substitute", a.assignSubstitute))

	mux.HandleFunc("GET /api/payslips/preview", a.op("payslip.preview", a.previewPayslip))
	mux.HandleFunc("POST /api/payslips", a.op("payslip.generate", a.generatePayslips))
	mux.HandleFunc("POST /api/payslips/{id}/finalize", a.op("payslip.finalize", a.payslipStatus))
	mux.HandleFunc("POST /api/payslips/{id}/paid", a.op("payslip.paid", a.payslipStatus))
	mux.HandleFunc("DELETE /api/payslips/{id}", a.op("payslip.delete", a.deletePayslip))
	mux.HandleFunc("GET /api/payslips/export", a.op("payslip.export", a.exportPayslips))
}

// op — обёртка операции: кладёт в контекст имя операции и id оператора,
// логирует завершение запроса.
func (a *API) op(name string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := actorFrom(r)
		ctx := ctxutil.WithOp(ctxutil.WithUserID(r.Context(), actor.UserID), name)
		start := time.Now()
		h(w, r.WithContext(ctx))
		a.Log.Debugw("api-запрос", "op", name, "user_id", actor.UserID, "took", time.Since(start))
	}
}

// --- преподаватели и классы ---

func (a *API) createTeacher(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		a.fail(w, models.NewValidationError("name", "пустое имя преподавателя"))
		return
	}
	id, err := db.CreateTeacher(r.Context(), a.Classes.DB, req.Name)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.ok(w, http.StatusCreated, map[string]int64{"teacher_id": id})
}

func (a *API) setTeacherActive(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Active bool `json:"active"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	if err := db.SetTeacherActive(r.Context(), a.Classes.DB, id, req.Active); err != nil {
		a.fail(w, err)
		return
	}
	a.ok(w, http.StatusOK, map[string]bool{"ok": true})
}

func (a *API) listClasses(w http.ResponseWriter, r *http.Request) {
	teacherID, ok := a.pathID(w, r)
	if !ok {
		return
	}
	classes, err := db.ListClassesByTeacher(r.Context(), a.Classes.DB, teacherID)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.ok(w, http.StatusOK, classes)
}

func (a *API) setClassStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	status := models.ClassStatus(req.Status)
	if !status.Valid() {
		a.fail(w, models.NewValidationError("status", "недопустимый статус класса"))
		return
	}
	if err := db.SetClassStatus(r.Context(), a.Classes.DB, id, status); err != nil {
		a.fail(w, err)
		return
	}
	a.ok(w, http.StatusOK, map[string]bool{"ok": true})
}

func (a *API) listAttendance(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := a.pathID(w, r)
	if !ok {
		return
	}
	rows, err := db.ListAttendance(r.Context(), a.Sessions.DB, sessionID)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.ok(w, http.StatusOK, rows)
}

func (a *API) markAttendance(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := a.pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		StudentID int64  `json:"student_id"`
		Status    string `json:"status"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	status := models.AttendanceStatus(req.Status)
	if !status.Valid() {
		a.fail(w, models.NewValidationError("status", "недопустимый статус посещаемости"))
		return
	}
	found, err := db.SetAttendanceStatus(r.Context(), a.Sessions.DB, sessionID, req.StudentID, status)
	if err != nil {
		a.fail(w, err)
		return
	}
	if !found {
		a.fail(w, fmt.Errorf("посещаемость (занятие %d, ученик %d): %w", sessionID, req.StudentID, models.ErrNotFound))
		return
	}
	a.ok(w, http.StatusOK, map[string]bool{"ok": true})
}

// --- расписания и занятия ---

type scheduleSlotReq struct {
	Weekday int      `json:"weekday"` // 0 = воскресенье, как time.Weekday
	Times   []string `json:"times"`   // "HH:MM"
}

func parseWeekly(slots []scheduleSlotReq) (models.WeeklySchedule, error) {
	var ws models.WeeklySchedule
	for _, s := range slots {
		if s.Weekday < 0 || s.Weekday > 6 {
			return ws, models.NewValidationError("weekday", fmt.Sprintf("недопустимый день недели %d", s.Weekday))
		}
		for _, raw := range s.Times {
			t, err := models.ParseTimeOfDay(raw)
			if err != nil {
				return ws, models.NewValidationError("times", err.Error())
			}
			ws[s.Weekday] = append(ws[s.Weekday], t)
		}
	}
	return ws, nil
}

func (a *API) createClass(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CourseID        int64   `json:"course_id"`
		TeacherID       int64   `json:"teacher_id"`
		Title           string  `json:"title"`
		DurationMinutes int     `json:"duration_minutes"`
		Type            string  `json:"class_type"`
		Capacity        int     `json:"capacity"`
		TeacherRate     float64 `json:"teacher_rate"`
		RateType        string  `json:"rate_type"`
		CommissionType  string  `json:"commission_type"`
		CommissionValue float64 `json:"commission_value"`
		SessionDate     *string `json:"session_date"` // для неповторяющегося класса
		SessionTime     *string `json:"session_time"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	class := models.Class{
		CourseID:        req.CourseID,
		TeacherID:       req.TeacherID,
		Title:           req.Title,
		DurationMinutes: req.DurationMinutes,
		Type:            models.ClassType(req.Type),
		Capacity:        req.Capacity,
		TeacherRate:     req.TeacherRate,
		RateType:        models.RateType(req.RateType),
		CommissionType:  models.CommissionType(req.CommissionType),
		CommissionValue: req.CommissionValue,
	}
	ctx := r.Context()

	if req.SessionDate != nil && req.SessionTime != nil {
		date, err := time.Parse("2006-01-02", *req.SessionDate)
		if err != nil {
			a.fail(w, models.NewValidationError("session_date", err.Error()))
			return
		}
		tod, err := models.ParseTimeOfDay(*req.SessionTime)
		if err != nil {
			a.fail(w, models.NewValidationError("session_time", err.Error()))
			return
		}
		classID, sessionID, err := a.Classes.CreateWithSession(ctx, class, date, tod)
		if err != nil {
			a.fail(w, err)
			return
		}
		a.ok(w, http.StatusCreated, map[string]int64{"class_id": classID, "session_id": sessionID})
		return
	}

	id, err := a.Classes.Create(ctx, class)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.ok(w, http.StatusCreated, map[string]int64{"class_id": id})
}

func (a *API) createTimetable(w http.ResponseWriter, r *http.Request) {
	classID, ok := a.pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Schedule  []scheduleSlotReq `json:"schedule"`
		Pattern   string            `json:"recurrence_pattern"`
		StartDate string            `json:"start_date"`
		EndDate   *string           `json:"end_date"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	ws, err := parseWeekly(req.Schedule)
	if err != nil {
		a.fail(w, err)
		return
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		a.fail(w, models.NewValidationError("start_date", err.Error()))
		return
	}
	var end *time.Time
	if req.EndDate != nil {
		e, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			a.fail(w, models.NewValidationError("end_date", err.Error()))
			return
		}
		end = &e
	}

	t, report, err := a.Timetables.Create(r.Context(), classID, ws, models.RecurrencePattern(req.Pattern), start, end)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.ok(w, http.StatusCreated, map[string]any{"timetable_id": t.ID, "report": report})
}

func (a *API) updateSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Schedule []scheduleSlotReq `json:"schedule"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	ws, err := parseWeekly(req.Schedule)
	if err != nil {
		a.fail(w, err)
		return
	}
	report, err := a.Timetables.UpdateSchedule(r.Context(), id, ws)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.ok(w, http.StatusOK, report)
}

func (a *API) deactivateTimetable(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	if err := a.Timetables.Deactivate(r.Context(), id); err != nil {
		a.fail(w, err)
		return
	}
	a.ok(w, http.StatusOK, map[string]bool{"ok": true})
}

func (a *API) listSessions(w http.ResponseWriter, r *http.Request) {
	classID, ok := a.pathID(w, r)
	if !ok {
		return
	}
	from, err := time.Parse("2006-01-02", r.URL.Query().Get("from"))
	if err != nil {
		a.fail(w, models.NewValidationError("from", "ожидается дата YYYY-MM-DD"))
		return
	}
	to, err := time.Parse("2006-01-02", r.URL.Query().Get("to"))
	if err != nil {
		a.fail(w, models.NewValidationError("to", "ожидается дата YYYY-MM-DD"))
		return
	}
	sessions, err := db.ListSessions(r.Context(), a.Sessions.DB, classID, from, to)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.ok(w, http.StatusOK, sessions)
}

// sessionAction — общий обработчик переходов; действие берём из
// последнего сегмента пути.
func (a *API) sessionAction(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	actor := actorFrom(r)
	ctx := r.Context()

	var sess *models.Session
	var err error
	switch action := lastSegment(r.URL.Path); action {
	case "start":
		sess, err = a.Sessions.Start(ctx, id, actor)
	case "end":
		sess, err = a.Sessions.End(ctx, id)
	case "cancel":
		sess, err = a.Sessions.Cancel(ctx, id)
	case "no-show":
		sess, err = a.Sessions.MarkNoShow(ctx, id)
	case "reschedule":
		sess, err = a.Sessions.Reschedule(ctx, id)
	case "verify":
		sess, err = a.Sessions.Verify(ctx, id, actor)
	case "unverify":
		sess, err = a.Sessions.Unverify(ctx, id)
	default:
		http.NotFound(w, r)
		return
	}
	if err != nil {
		a.fail(w, err)
		return
	}
	a.ok(w, http.StatusOK, sess)
}

func (a *API) assignSubstitute(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		TeacherID *int64 `json:"teacher_id"` // null снимает подмену
	}
	if !a.decode(w, r, &req) {
		return
	}
	sess, err := a.Sessions.AssignSubstitute(r.Context(), id, req.TeacherID)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.ok(w, http.StatusOK, sess)
}

// --- расчётные листы ---

func (a *API) previewPayslip(w http.ResponseWriter, r *http.Request) {
	teacherID, year, month, err := payrollParams(r)
	if err != nil {
		a.fail(w, err)
		return
	}
	elig, err := a.Payslips.Preview(r.Context(), teacherID, year, month)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.ok(w, http.StatusOK, elig)
}

func (a *API) generatePayslips(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TeacherIDs []int64 `json:"teacher_ids"`
		Year       int     `json:"year"`
		Month      int     `json:"month"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	if req.Month < 1 || req.Month > 12 {
		a.fail(w, models.NewValidationError("month", "ожидается месяц 1..12"))
		return
	}
	actor := actorFrom(r)
	if len(req.TeacherIDs) == 1 {
		p, err := a.Payslips.Generate(r.Context(), req.TeacherIDs[0], req.Year, time.Month(req.Month), actor)
		if err != nil {
			a.fail(w, err)
			return
		}
		a.ok(w, http.StatusCreated, p)
		return
	}
	res := a.Payslips.GenerateBatch(r.Context(), req.TeacherIDs, req.Year, time.Month(req.Month), actor)
	a.ok(w, http.StatusOK, res)
}

func (a *API) payslipStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	var err error
	switch lastSegment(r.URL.Path) {
	case "finalize":
		err = a.Payslips.Finalize(r.Context(), id)
	case "paid":
		err = a.Payslips.MarkPaid(r.Context(), id)
	default:
		http.NotFound(w, r)
		return
	}
	if err != nil {
		a.fail(w, err)
		return
	}
	a.ok(w, http.StatusOK, map[string]bool{"ok": true})
}

func (a *API) deletePayslip(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	if err := a.Payslips.DeleteDraft(r.Context(), id); err != nil {
		a.fail(w, err)
		return
	}
	a.ok(w, http.StatusOK, map[string]bool{"ok": true})
}

// exportPayslips — xlsx с листом на каждого преподавателя из запроса.
func (a *API) exportPayslips(w http.ResponseWriter, r *http.Request) {
	_, year, month, err := payrollParams(r)
	if err != nil {
		// teacher_id не обязателен: без него берём всех из teacher_ids
		var ve *models.ValidationError
		if !errors.As(err, &ve) || ve.Field != "teacher_id" {
			a.fail(w, err)
			return
		}
	}
	ids, err := parseIDList(r.URL.Query().Get("teacher_ids"))
	if err != nil || len(ids) == 0 {
		a.fail(w, models.NewValidationError("teacher_ids", "ожидается список id через запятую"))
		return
	}

	ctx := r.Context()
	var sheets []export.PayslipSheet
	for _, teacherID := range ids {
		p, err := db.GetPayslipForMonth(ctx, a.Payslips.DB, teacherID, year, month)
		if err != nil {
			a.fail(w, err)
			return
		}
		if p == nil {
			continue
		}
		teacher, err := db.GetTeacher(ctx, a.Payslips.DB, teacherID)
		if err != nil {
			a.fail(w, err)
			return
		}
		name := fmt.Sprintf("teacher %d", teacherID)
		if teacher != nil {
			name = teacher.Name
		}
		lines, err := a.Payslips.Lines(ctx, teacherID, year, month)
		if err != nil {
			a.fail(w, err)
			return
		}
		sheets = append(sheets, export.PayslipSheet{TeacherName: name, Payslip: *p, Lines: lines})
	}
	if len(sheets) == 0 {
		a.fail(w, fmt.Errorf("расчётные листы за %04d-%02d: %w", year, int(month), models.ErrNotFound))
		return
	}

	wb, err := export.NewPayslipWorkbook(sheets)
	if err != nil {
		a.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="payslips_%04d-%02d.xlsx"`, year, int(month)))
	if _, err := wb.WriteTo(w); err != nil {
		a.Log.Errorw("выгрузка xlsx", "err", err)
	}
}

// --- helpers ---

func (a *API) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		a.fail(w, models.NewValidationError("id", "ожидается положительный числовой id"))
		return 0, false
	}
	return id, true
}

func (a *API) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		a.fail(w, models.NewValidationError("body", "некорректный JSON: "+err.Error()))
		return false
	}
	return true
}

func (a *API) ok(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.Log.Errorw("кодирование ответа", "err", err)
	}
}

// fail — единое сопоставление доменных ошибок статусам HTTP.
func (a *API) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var ve *models.ValidationError
	var de *models.DuplicateError
	switch {
	case errors.As(err, &ve):
		status = http.StatusBadRequest
	case errors.As(err, &de):
		status = http.StatusConflict
	case errors.Is(err, models.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		a.Log.Errorw("внутренняя ошибка", "err", err)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func actorFrom(r *http.Request) service.Actor {
	id, _ := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
	role := r.Header.Get("X-User-Role")
	if role == "" {
		role = "admin"
	}
	return service.Actor{UserID: id, Role: role}
}

func payrollParams(r *http.Request) (teacherID int64, year int, month time.Month, err error) {
	q := r.URL.Query()
	teacherID, err = strconv.ParseInt(q.Get("teacher_id"), 10, 64)
	if err != nil {
		err = models.NewValidationError("teacher_id", "ожидается числовой id")
	}
	year, yerr := strconv.Atoi(q.Get("year"))
	if yerr != nil {
		return 0, 0, 0, models.NewValidationError("year", "ожидается год")
	}
	m, merr := strconv.Atoi(q.Get("month"))
	if merr != nil || m < 1 || m > 12 {
		return 0, 0, 0, models.NewValidationError("month", "ожидается месяц 1..12")
	}
	return teacherID, year, time.Month(m), err
}

func parseIDList(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func lastSegment(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}
