package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/localnerve/ops-portal/internal/services"
	"github.com/localnerve/ops-portal/internal/utils"
	"github.com/localnerve/ops-portal/internal/validation"
)

// JobHandler handles job routes
type JobHandler struct {
	Service *services.Service
}

// List handles GET /api/jobs
// @Summary List jobs
// @Description Every job with its faction resolved
// @Tags Jobs
// @Produce json
// @Success 200 {array} models.JobView
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /jobs [get]
func (h *JobHandler) List(c *fiber.Ctx) error {
	jobs, err := h.Service.ListJobs(c.UserContext())
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return c.JSON(jobs)
}

// Get handles GET /api/jobs/:id
// @Summary Get a job
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} models.JobView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /jobs/{id} [get]
func (h *JobHandler) Get(c *fiber.Ctx) error {
	job, err := h.Service.GetJob(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return c.JSON(job)
}

// Create handles POST /api/jobs
// @Summary Create a job
// @Tags Jobs
// @Accept json
// @Produce json
// @Param body body validation.JobInput true "Job"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 503 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /jobs [post]
func (h *JobHandler) Create(c *fiber.Ctx) error {
	var body validation.JobInput
	if err := parseBody(c, &body); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	job, err := h.Service.CreateJob(c.UserContext(), body)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusCreated, "Job created", fiber.Map{"job": job})
}

// Update handles PUT /api/jobs/:id
// @Summary Replace a job
// @Tags Jobs
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param body body validation.JobInput true "Job"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /jobs/{id} [put]
func (h *JobHandler) Update(c *fiber.Ctx) error {
	var body validation.JobInput
	if err := parseBody(c, &body); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	job, err := h.Service.UpdateJob(c.UserContext(), c.Params("id"), body)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, "Job updated", fiber.Map{"job": job})
}

// SetState handles PATCH /api/jobs/:id/state
// @Summary Change a job's state
// @Tags Jobs
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param body body object true "{state}"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /jobs/{id}/state [patch]
func (h *JobHandler) SetState(c *fiber.Ctx) error {
	var body struct {
		State string `json:"state"`
	}
	if err := parseBody(c, &body); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	job, err := h.Service.SetJobState(c.UserContext(), c.Params("id"), body.State)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, "Job state updated", fiber.Map{"job": job})
}

// Progress handles POST /api/jobs/progress
// @Summary Advance the job board
// @Description Active jobs become Ignored and Pending jobs become Active
// @Tags Jobs
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Security CookieAuth
// @Router /jobs/progress [post]
func (h *JobHandler) Progress(c *fiber.Ctx) error {
	progress, err := h.Service.ProgressJobs(c.UserContext())
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, "Jobs progressed", fiber.Map{
		"activated": progress.Activated,
		"ignored":   progress.Ignored,
	})
}

// Delete handles DELETE /api/jobs/:id
// @Summary Delete a job
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /jobs/{id} [delete]
func (h *JobHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Service.DeleteJob(c.UserContext(), id); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, "Job deleted", fiber.Map{"id": id})
}
