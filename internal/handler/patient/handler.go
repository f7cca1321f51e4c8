package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/omniclinic/clinic-api/internal/handler"
	"github.com/omniclinic/clinic-api/internal/model"
	"github.com/omniclinic/clinic-api/internal/service/document"
	"github.com/omniclinic/clinic-api/internal/service/patient"
	apperrors "github.com/omniclinic/clinic-api/pkg/errors"
	"github.com/omniclinic/clinic-api/pkg/httputil"
)

// maxDocumentSize caps uploads at 10 MiB.
const maxDocumentSize = 10 << 20

type Handler struct {
	service   *patient.Service
	documents *document.Service
}

func NewHandler(service *patient.Service, documents *document.Service) *Handler {
	return &Handler{service: service, documents: documents}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.Register)
		patients.GET("", h.List)
		patients.GET("/:id", h.Get)
		patients.PUT("/:id", h.Update)

		patients.POST("/:id/documents", h.UploadDocument)
		patients.GET("/:id/documents", h.ListDocuments)
		patients.GET("/:id/documents/:docId", h.DownloadDocument)
		patients.DELETE("/:id/documents/:docId", h.DeleteDocument)
	}
}

func (h *Handler) Register(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}

	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	p, err := h.service.Register(c.Request.Context(), tc.OrganizationID(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, p)
}

func (h *Handler) Get(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	p, err := h.service.Get(c.Request.Context(), tc.OrganizationID(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, p)
}

func (h *Handler) Update(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	p, err := h.service.Update(c.Request.Context(), tc.OrganizationID(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, p)
}

func (h *Handler) List(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}

	filters := &model.PatientFilters{
		OrganizationID: tc.OrganizationID(),
		SearchTerm:     c.Query("search"),
	}
	if err := c.ShouldBindQuery(&filters.Pagination); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid pagination", err))
		return
	}

	patients, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, patients)
}

func (h *Handler) UploadDocument(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}
	patientID, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("missing file", err))
		return
	}
	if file.Size > maxDocumentSize {
		httputil.RespondWithError(c, apperrors.BadRequest("file too large", nil))
		return
	}

	src, err := file.Open()
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("unreadable file", err))
		return
	}
	defer src.Close()

	doc, err := h.documents.Upload(
		c.Request.Context(),
		tc.OrganizationID(),
		patientID,
		file.Filename,
		file.Header.Get("Content-Type"),
		file.Size,
		src,
	)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, doc)
}

func (h *Handler) ListDocuments(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}
	patientID, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	docs, err := h.documents.List(c.Request.Context(), tc.OrganizationID(), patientID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, docs)
}

func (h *Handler) DownloadDocument(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}
	docID, ok := handler.ParseID(c, "docId")
	if !ok {
		return
	}

	doc, rc, err := h.documents.Download(c.Request.Context(), tc.OrganizationID(), docID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", `attachment; filename="`+doc.Name+`"`)
	c.DataFromReader(http.StatusOK, doc.FileSize, doc.FileType, rc, nil)
}

func (h *Handler) DeleteDocument(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}
	docID, ok := handler.ParseID(c, "docId")
	if !ok {
		return
	}
	if err := h.documents.Delete(c.Request.Context(), tc.OrganizationID(), docID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}
