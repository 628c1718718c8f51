package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/zitaharry/ai-podcast-saas/internal/pkg/ctxutil"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/logger"
	"github.com/zitaharry/ai-podcast-saas/internal/services"
)

type ProjectHandler struct {
	log *logger.Logger
	svc *services.ProjectService
}

func NewProjectHandler(log *logger.Logger, svc *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{log: log, svc: svc}
}

// Create accepts either a multipart upload (field "audio") or a JSON body
// carrying an audio_ref to already-hosted audio.
func (h *ProjectHandler) Create(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	in := services.CreateProjectInput{}
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		fileHeader, err := c.FormFile("audio")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{"message": "missing audio file", "code": "validation"},
			})
			return
		}
		f, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{"message": "unreadable audio file", "code": "validation"},
			})
			return
		}
		defer f.Close()
		in.Audio = f
		in.FileName = fileHeader.Filename
		in.FileSize = fileHeader.Size
		in.ContentType = fileHeader.Header.Get("Content-Type")
		in.Format = c.PostForm("format")
	} else {
		var body struct {
			AudioRef string `json:"audio_ref"`
			FileName string `json:"file_name"`
			Format   string `json:"format"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{"message": "invalid request body", "code": "validation"},
			})
			return
		}
		in.AudioRef = body.AudioRef
		in.FileName = body.FileName
		in.Format = body.Format
	}

	p, err := h.svc.CreateProject(c.Request.Context(), userID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"project": p})
}

func (h *ProjectHandler) Get(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	p, err := h.svc.GetProject(c.Request.Context(), userID, projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": p})
}

func (h *ProjectHandler) GetTranscript(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	t, err := h.svc.GetTranscript(c.Request.Context(), userID, projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transcript": t})
}

// Process kicks off the pipeline workflow and returns immediately; progress
// arrives over the SSE stream.
func (h *ProjectHandler) Process(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	workflowID, err := h.svc.StartProcessing(c.Request.Context(), userID, projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"workflow_id": workflowID})
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteProject(c.Request.Context(), userID, projectID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": projectID})
}

func callerID(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": gin.H{"message": "not authenticated", "code": "unauthorized"},
		})
		return uuid.Nil, false
	}
	return rd.UserID, true
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"message": "invalid " + name, "code": "validation"},
		})
		return uuid.Nil, false
	}
	return id, true
}
