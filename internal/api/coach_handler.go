package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/AndersonGC/dryfit/internal/dayrange"
	"github.com/AndersonGC/dryfit/internal/logging"
	"github.com/AndersonGC/dryfit/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CoachHandler struct {
	workoutService service.WorkoutService
	inviteService  service.InviteService
	profileService service.ProfileService
	log            logging.Logger
}

func NewCoachHandler(ws service.WorkoutService, is service.InviteService, ps service.ProfileService, log logging.Logger) *CoachHandler {
	return &CoachHandler{workoutService: ws, inviteService: is, profileService: ps, log: log}
}

// ListStudents godoc
// @Summary List the coach's students
// @Tags coach
// @Produce json
// @Security BearerAuth
// @Param q query string false "Filter by name or e-mail"
// @Success 200 {array} AccountResponse
// @Router /coach/students [get]
func (h *CoachHandler) ListStudents(c *gin.Context) {
	coachID, ok := mustUserID(c)
	if !ok {
		return
	}

	students, err := h.profileService.Students(c.Request.Context(), coachID, c.Query("q"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapStudentsToResponse(c.Request.Context(), students, h.profileService.AvatarURL))
}

// StudentsForDate godoc
// @Summary Students with their workout for a day
// @Description Students without a workout that day come first.
// @Tags coach
// @Produce json
// @Security BearerAuth
// @Param date query string true "Day (YYYY-MM-DD)"
// @Success 200 {array} StudentDayResponse
// @Failure 400 {object} map[string]string "Missing or invalid date"
// @Router /coach/students/by-date [get]
func (h *CoachHandler) StudentsForDate(c *gin.Context) {
	coachID, ok := mustUserID(c)
	if !ok {
		return
	}

	days, err := h.workoutService.CoachStudentsForDate(c.Request.Context(), coachID, c.Query("date"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapStudentDaysToResponse(c.Request.Context(), days, h.profileService.AvatarURL))
}

// CurrentInviteCode godoc
// @Summary The coach's active invite code
// @Tags coach
// @Produce json
// @Security BearerAuth
// @Success 200 {object} InviteCodeResponse
// @Failure 404 {object} map[string]string "No unused code"
// @Router /coach/invite-code [get]
func (h *CoachHandler) CurrentInviteCode(c *gin.Context) {
	coachID, ok := mustUserID(c)
	if !ok {
		return
	}

	invite, err := h.inviteService.Current(c.Request.Context(), coachID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapInviteToResponse(invite))
}

// ListInviteCodes godoc
// @Summary All invite codes of the coach, newest first
// @Tags coach
// @Produce json
// @Security BearerAuth
// @Success 200 {array} InviteCodeResponse
// @Router /coach/invite-codes [get]
func (h *CoachHandler) ListInviteCodes(c *gin.Context) {
	coachID, ok := mustUserID(c)
	if !ok {
		return
	}

	invites, err := h.inviteService.List(c.Request.Context(), coachID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapInvitesToResponse(invites))
}

// GenerateInviteCode godoc
// @Summary Generate a new invite code
// @Description Earlier unused codes stay valid.
// @Tags coach
// @Produce json
// @Security BearerAuth
// @Success 201 {object} InviteCodeResponse
// @Router /coach/invite-codes [post]
func (h *CoachHandler) GenerateInviteCode(c *gin.Context) {
	coachID, ok := mustUserID(c)
	if !ok {
		return
	}

	invite, err := h.inviteService.Generate(c.Request.Context(), coachID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, MapInviteToResponse(invite))
}

// ListWorkouts godoc
// @Summary Workouts assigned by the coach, newest first
// @Tags coach
// @Produce json
// @Security BearerAuth
// @Success 200 {array} WorkoutResponse
// @Router /coach/workouts [get]
func (h *CoachHandler) ListWorkouts(c *gin.Context) {
	coachID, ok := mustUserID(c)
	if !ok {
		return
	}

	workouts, err := h.workoutService.ListForCoach(c.Request.Context(), coachID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutsToResponse(workouts))
}

// CreateWorkout godoc
// @Summary Assign a workout to a student
// @Tags coach
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workout body CreateWorkoutRequest true "Workout"
// @Success 201 {object} WorkoutResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Student not found"
// @Router /coach/workouts [post]
func (h *CoachHandler) CreateWorkout(c *gin.Context) {
	coachID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req CreateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid student ID format")
		return
	}
	scheduledAt, err := parseScheduledAt(req.ScheduledAt)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	blocks, err := toBlockInputs(req.Blocks)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	workout, err := h.workoutService.Create(c.Request.Context(), coachID, service.CreateWorkoutInput{
		StudentID:   studentID,
		Title:       req.Title,
		Description: req.Description,
		VideoRef:    req.VideoRef,
		ScheduledAt: scheduledAt,
		Blocks:      blocks,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, MapWorkoutToResponse(workout))
}

// UpdateWorkout godoc
// @Summary Edit a pending workout
// @Description Only supplied fields change; blocks, when given, replace the whole list.
// @Tags coach
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Param patch body UpdateWorkoutRequest true "Fields to change"
// @Success 200 {object} WorkoutResponse
// @Failure 404 {object} map[string]string "Workout not found"
// @Failure 409 {object} map[string]string "Workout already completed"
// @Router /coach/workouts/{workoutId} [patch]
func (h *CoachHandler) UpdateWorkout(c *gin.Context) {
	coachID, ok := mustUserID(c)
	if !ok {
		return
	}
	workoutID, ok := workoutIDParam(c)
	if !ok {
		return
	}
	var req UpdateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	patch := service.WorkoutPatchInput{Title: req.Title, Description: req.Description, VideoRef: req.VideoRef}
	if req.ScheduledAt != nil {
		scheduledAt, err := parseScheduledAt(*req.ScheduledAt)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		patch.ScheduledAt = scheduledAt
	}
	if req.Blocks != nil {
		blocks, err := toBlockInputs(*req.Blocks)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		patch.Blocks = &blocks
	}

	workout, err := h.workoutService.Update(c.Request.Context(), workoutID, coachID, patch)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

// DeleteWorkout godoc
// @Summary Delete a pending workout
// @Tags coach
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Success 204
// @Failure 404 {object} map[string]string "Workout not found"
// @Failure 409 {object} map[string]string "Workout already completed"
// @Router /coach/workouts/{workoutId} [delete]
func (h *CoachHandler) DeleteWorkout(c *gin.Context) {
	coachID, ok := mustUserID(c)
	if !ok {
		return
	}
	workoutID, ok := workoutIDParam(c)
	if !ok {
		return
	}

	if err := h.workoutService.Delete(c.Request.Context(), workoutID, coachID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func workoutIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("workoutId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout ID format")
		return uuid.Nil, false
	}
	return id, true
}

// parseScheduledAt accepts a bare date (midnight UTC) or an RFC 3339
// timestamp. Blank means unset.
func parseScheduledAt(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return &t, nil
	}
	day, err := dayrange.Parse(s)
	if err != nil {
		return nil, errors.New("scheduledAt must be YYYY-MM-DD or an RFC 3339 timestamp")
	}
	return &day.Start, nil
}

func toBlockInputs(blocks []BlockRequest) ([]service.BlockInput, error) {
	out := make([]service.BlockInput, len(blocks))
	for i, b := range blocks {
		id, err := uuid.Parse(b.CategoryID)
		if err != nil {
			return nil, errors.New("categoryId must be a valid id")
		}
		out[i] = service.BlockInput{CategoryID: id, Description: b.Description}
	}
	return out, nil
}
