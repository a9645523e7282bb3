package v1

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"job-board-backend/internal/delivery/http/response"
	"job-board-backend/internal/domain"
	"job-board-backend/pkg/apperror"
)

// multipartOverhead is allowed on top of the photo limit for the text
// fields and part headers.
const multipartOverhead = 1 << 20

type ApplicationHandler struct {
	applicationUC domain.ApplicationUsecase
	maxBody       int64
}

func NewApplicationHandler(public *gin.RouterGroup, applicationUC domain.ApplicationUsecase, maxPhotoBytes int64) {
	handler := &ApplicationHandler{
		applicationUC: applicationUC,
		maxBody:       maxPhotoBytes + multipartOverhead,
	}
	public.POST("/applications", handler.Submit)
}

// SubmitApplication godoc
// @Summary      Apply to a job
// @Description  multipart/form-data with jobId, one part per applicant field and the photoProfile file. Fields switched OFF for the job must not be sent.
// @Tags         applications
// @Accept       multipart/form-data
// @Produce      json
// @Param        jobId         formData  int     true   "Job ID"
// @Param        fullName      formData  string  false  "Full name"
// @Param        email         formData  string  false  "Email"
// @Param        photoProfile  formData  file    false  "Profile photo"
// @Success      201  {object}  response.Response{data=domain.Applicant}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /applications [post]
func (h *ApplicationHandler) Submit(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody)
	if err := c.Request.ParseMultipartForm(h.maxBody); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.Error(apperror.Validation("Submission is invalid", []domain.FieldViolation{
				domain.InvalidValue(domain.FieldPhotoProfile, "is too large"),
			}))
			return
		}
		c.Error(apperror.BadRequest("Request must be multipart/form-data"))
		return
	}
	defer c.Request.MultipartForm.RemoveAll()

	payload, err := payloadFromForm(c.Request.MultipartForm)
	if err != nil {
		c.Error(err)
		return
	}

	applicant, err := h.applicationUC.Submit(c.Request.Context(), payload)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Application submitted", applicant)
}

// payloadFromForm keeps only what was sent: a part that is absent stays
// absent, so the validator can tell OFF fields that were populated.
func payloadFromForm(mf *multipart.Form) (domain.SubmissionPayload, error) {
	payload := domain.SubmissionPayload{Values: make(map[domain.Field]string)}

	for key, vals := range mf.Value {
		if len(vals) == 0 {
			continue
		}
		if key == "jobId" {
			raw := strings.TrimSpace(vals[0])
			if raw == "" {
				continue
			}
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				return payload, apperror.Validation("Submission is invalid", []domain.FieldViolation{{
					Field: "jobId", Code: domain.CodeInvalidValue, Message: "jobId must be a positive number",
				}})
			}
			payload.JobID = id
			continue
		}
		payload.Values[domain.Field(key)] = vals[0]
	}

	files := mf.File[string(domain.FieldPhotoProfile)]
	if len(files) == 0 {
		return payload, nil
	}
	fh := files[0]
	src, err := fh.Open()
	if err != nil {
		return payload, apperror.BadRequest("Failed to read photo")
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return payload, apperror.BadRequest("Failed to read photo")
	}
	payload.Photo = &domain.Photo{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}
	return payload, nil
}
