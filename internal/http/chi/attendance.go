package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/marcelsud/attendance-relay/attendance"
)

// maxBodyBytes caps an attendance submission
const maxBodyBytes = 100 << 10

/* HTTP layer DTOs for the attendance API
 * Separate from domain entities to avoid leaking internal structure
 */

type attendanceRequest struct {
	Name       string `json:"name"`
	Department string `json:"department"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Action     string `json:"action"`
}

type submitResponse struct {
	Success bool   `json:"success"`
	JobID   string `json:"jobId"`
	Message string `json:"message"`
	Action  string `json:"action"`
}

type statusResponse struct {
	Status             string          `json:"status"`
	Action             string          `json:"action"`
	Name               string          `json:"name"`
	Timestamp          string          `json:"timestamp"`
	Error              string          `json:"error,omitempty"`
	DownstreamResponse json.RawMessage `json:"downstreamResponse,omitempty"`
}

type activityResponse struct {
	JobID     string `json:"jobId"`
	Name      string `json:"name"`
	Action    string `json:"action"`
	Timestamp string `json:"timestamp"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func getHealth() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{
			Status:    "healthy",
			Timestamp: attendance.FormatTimestamp(time.Now()),
		})
	})
}

// postAttendance handles POST /attendance, and /login and /logout when action is fixed
func postAttendance(attendanceService attendance.UseCase, action attendance.Action, dev bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var ar attendanceRequest
		err := json.NewDecoder(r.Body).Decode(&ar)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "Request body too large"})
				return
			}
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON body"})
			return
		}
		if action != 0 {
			ar.Action = action.String()
		}

		receipt, err := attendanceService.Submit(r.Context(), attendance.Event{
			Name:       ar.Name,
			Department: ar.Department,
			Date:       ar.Date,
			Time:       ar.Time,
			Action:     ar.Action,
		})
		if err != nil {
			var verr *attendance.ValidationError
			if errors.As(err, &verr) {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Message})
				return
			}
			writeInternalError(w, err, dev)
			return
		}

		writeJSON(w, http.StatusOK, submitResponse{
			Success: true,
			JobID:   receipt.JobID,
			Message: "Attendance " + receipt.Action.String() + " is being processed",
			Action:  receipt.Action.String(),
		})
	})
}

// getStatus handles GET /status/{jobId}
func getStatus(attendanceService attendance.UseCase, dev bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		job, err := attendanceService.Status(r.Context(), chi.URLParam(r, "jobId"))
		if err != nil {
			if errors.Is(err, attendance.ErrNotFound) {
				writeJSON(w, http.StatusNotFound, map[string]string{"status": "not_found"})
				return
			}
			writeInternalError(w, err, dev)
			return
		}

		result := statusResponse{
			Status:    job.Status.String(),
			Action:    job.Action.String(),
			Name:      job.Name,
			Timestamp: attendance.FormatTimestamp(job.CreatedAt),
		}
		switch job.Status {
		case attendance.Failed:
			result.Error = job.Error
		case attendance.Success:
			result.DownstreamResponse = job.Response
		}
		writeJSON(w, http.StatusOK, result)
	})
}

// getRecentActivities handles GET /recent-activities
func getRecentActivities(attendanceService attendance.UseCase, limit int, dev bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jobs, err := attendanceService.RecentActivities(r.Context(), limit)
		if err != nil {
			writeInternalError(w, err, dev)
			return
		}
		result := make([]activityResponse, 0, len(jobs))
		for _, job := range jobs {
			result = append(result, activityResponse{
				JobID:     job.ID,
				Name:      job.Name,
				Action:    job.Action.String(),
				Timestamp: attendance.FormatTimestamp(job.CreatedAt),
			})
		}
		writeJSON(w, http.StatusOK, result)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// writeInternalError hides the cause unless running in development
func writeInternalError(w http.ResponseWriter, err error, dev bool) {
	message := "Internal server error"
	if dev {
		message = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: message})
}
