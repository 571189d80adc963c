package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/AndersonGC/dryfit/internal/logging"
	"github.com/AndersonGC/dryfit/internal/service"
	"github.com/gin-gonic/gin"
)

type StudentHandler struct {
	workoutService service.WorkoutService
	log            logging.Logger
}

func NewStudentHandler(ws service.WorkoutService, log logging.Logger) *StudentHandler {
	return &StudentHandler{workoutService: ws, log: log}
}

// WorkoutForDate godoc
// @Summary The student's workout for a day
// @Description Responds with null when nothing is assigned.
// @Tags student
// @Produce json
// @Security BearerAuth
// @Param date query string false "Day (YYYY-MM-DD), defaults to today UTC"
// @Success 200 {object} WorkoutResponse
// @Router /student/workout [get]
func (h *StudentHandler) WorkoutForDate(c *gin.Context) {
	studentID, ok := mustUserID(c)
	if !ok {
		return
	}

	workout, err := h.workoutService.ForStudentOnDate(c.Request.Context(), studentID, c.Query("date"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if workout == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

// ListWorkouts godoc
// @Summary The student's workout history, newest first
// @Tags student
// @Produce json
// @Security BearerAuth
// @Success 200 {array} WorkoutResponse
// @Router /student/workouts [get]
func (h *StudentHandler) ListWorkouts(c *gin.Context) {
	studentID, ok := mustUserID(c)
	if !ok {
		return
	}

	workouts, err := h.workoutService.ListForStudent(c.Request.Context(), studentID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutsToResponse(workouts))
}

// CompleteWorkout godoc
// @Summary Mark a workout as completed
// @Description Completing an already completed workout returns it unchanged.
// @Tags student
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Param request body CompleteWorkoutRequest false "Optional feedback"
// @Success 200 {object} WorkoutResponse
// @Failure 404 {object} map[string]string "Workout not found"
// @Router /student/workouts/{workoutId}/complete [patch]
func (h *StudentHandler) CompleteWorkout(c *gin.Context) {
	studentID, ok := mustUserID(c)
	if !ok {
		return
	}
	workoutID, ok := workoutIDParam(c)
	if !ok {
		return
	}

	// The body is optional.
	var req CompleteWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondBindError(c, err)
		return
	}

	workout, err := h.workoutService.Complete(c.Request.Context(), workoutID, studentID, req.Feedback)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}
