package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"job-board-backend/internal/delivery/http/response"
	"job-board-backend/internal/domain"
	"job-board-backend/internal/form"
	"job-board-backend/pkg/apperror"
	"job-board-backend/pkg/validation"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type JobHandler struct {
	jobUC domain.JobUsecase
}

func NewJobHandler(public *gin.RouterGroup, admin *gin.RouterGroup, jobUC domain.JobUsecase) {
	handler := &JobHandler{jobUC: jobUC}

	publicJobs := public.Group("/jobs")
	{
		publicJobs.GET("", handler.List)
		publicJobs.GET("/:slug", handler.Get)
		publicJobs.GET("/:slug/form", handler.Form)
	}

	adminJobs := admin.Group("/jobs")
	{
		adminJobs.POST("", handler.Create)
		adminJobs.GET("/:slug/applicants", handler.Applicants)
		adminJobs.GET("/:slug/applicants/export", handler.Export)
	}
}

// CreateJobRequest leaves presence checks to the usecase so every missing
// attribute is reported in one response.
type CreateJobRequest struct {
	JobName        *string           `json:"jobName" binding:"omitempty,max=150"`
	JobType        *string           `json:"jobType"`
	JobDescription *string           `json:"jobDescription" binding:"omitempty,max=10000"`
	NumOfCandidate *int              `json:"numOfCandidate"`
	MinSalary      *int64            `json:"minSalary"`
	MaxSalary      *int64            `json:"maxSalary"`
	Status         *string           `json:"status"`
	Requirements   map[string]string `json:"requirements"`
}

// JobFormResponse is what the applicant-facing form is rendered from.
type JobFormResponse struct {
	Job    *domain.Job            `json:"job"`
	Fields []form.FieldDescriptor `json:"fields"`
}

// CreateJob godoc
// @Summary      Create a job posting
// @Description  Creates a job with its scalar attributes and one requirement level per applicant field
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        job  body      CreateJobRequest  true  "Job JSON"
// @Success      201  {object}  response.Response{data=domain.Job}
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /jobs [post]
// @Security     BearerAuth
func (h *JobHandler) Create(c *gin.Context) {
	var req CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.Validation("Invalid request body", validation.FormatValidationErrors(err)))
		return
	}

	job, err := h.jobUC.CreateJob(c.Request.Context(), domain.JobDraft{
		JobName:        req.JobName,
		JobType:        req.JobType,
		JobDescription: req.JobDescription,
		NumOfCandidate: req.NumOfCandidate,
		MinSalary:      req.MinSalary,
		MaxSalary:      req.MaxSalary,
		Status:         req.Status,
		Requirements:   req.Requirements,
	})
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Job created", job)
}

// ListJobs godoc
// @Summary      List jobs
// @Description  Newest first; search matches the job name case-insensitively
// @Tags         jobs
// @Produce      json
// @Param        search  query     string  false  "Name substring"
// @Param        status  query     string  false  "DRAFT, ACTIVE or INACTIVE"
// @Success      200     {object}  response.Response{data=[]domain.Job}
// @Failure      400     {object}  response.Response
// @Router       /jobs [get]
func (h *JobHandler) List(c *gin.Context) {
	filter := domain.JobFilter{Search: strings.TrimSpace(c.Query("search"))}
	if s := c.Query("status"); s != "" {
		status := domain.JobStatus(strings.ToUpper(s))
		if !status.Valid() {
			c.Error(apperror.BadRequest("status must be one of DRAFT, ACTIVE, INACTIVE"))
			return
		}
		filter.Status = status
	}

	jobs, err := h.jobUC.ListJobs(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	if jobs == nil {
		jobs = []domain.Job{}
	}

	response.Success(c, http.StatusOK, "Job list", jobs)
}

// GetJob godoc
// @Summary      Get a job by slug
// @Tags         jobs
// @Produce      json
// @Param        slug  path      string  true  "Job slug"
// @Success      200   {object}  response.Response{data=domain.Job}
// @Failure      404   {object}  response.Response
// @Router       /jobs/{slug} [get]
func (h *JobHandler) Get(c *gin.Context) {
	job, err := h.jobUC.GetJob(c.Request.Context(), c.Param("slug"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job details", job)
}

// JobForm godoc
// @Summary      Get the application form of a job
// @Description  Field descriptors derived from the job's requirement policy
// @Tags         jobs
// @Produce      json
// @Param        slug  path      string  true  "Job slug"
// @Success      200   {object}  response.Response{data=JobFormResponse}
// @Failure      404   {object}  response.Response
// @Router       /jobs/{slug}/form [get]
func (h *JobHandler) Form(c *gin.Context) {
	job, err := h.jobUC.GetJob(c.Request.Context(), c.Param("slug"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application form", JobFormResponse{
		Job:    job,
		Fields: form.Describe(job.Requirements),
	})
}

// ListApplicants godoc
// @Summary      List applicants of a job
// @Description  Unknown sort fields fall back to createdAt desc
// @Tags         jobs
// @Produce      json
// @Param        slug   path      string  true   "Job slug"
// @Param        sort   query     string  false  "fullName, email, phoneNumber, gender, domicile, linkedin, dateOfBirth or createdAt"
// @Param        order  query     string  false  "asc or desc"
// @Success      200    {object}  response.Response{data=domain.JobApplicants}
// @Failure      401    {object}  response.Response
// @Failure      404    {object}  response.Response
// @Router       /jobs/{slug}/applicants [get]
// @Security     BearerAuth
func (h *JobHandler) Applicants(c *gin.Context) {
	order := domain.ParseApplicantOrder(c.Query("sort"), strings.ToLower(c.Query("order")))

	result, err := h.jobUC.ListApplicants(c.Request.Context(), c.Param("slug"), order)
	if err != nil {
		c.Error(err)
		return
	}
	if result.Applicants == nil {
		result.Applicants = []domain.Applicant{}
	}

	response.Success(c, http.StatusOK, "Applicants", result)
}

// ExportApplicants godoc
// @Summary      Export applicants to Excel
// @Tags         jobs
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        slug  path  string  true  "Job slug"
// @Success      200   {file}    file
// @Failure      401   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /jobs/{slug}/applicants/export [get]
// @Security     BearerAuth
func (h *JobHandler) Export(c *gin.Context) {
	data, filename, err := h.jobUC.ExportApplicants(c.Request.Context(), c.Param("slug"))
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}
