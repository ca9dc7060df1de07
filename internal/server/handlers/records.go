package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/service/herd"
)

// CreateTreatment records a treatment of ?animal=.
func (h *HerdHandler) CreateTreatment(c *gin.Context) {
	parent, ok := h.parent(c)
	if !ok {
		return
	}
	var in herd.TreatmentInput
	if !bind(c, h.logger, &in) {
		return
	}
	treatment, err := h.svc.CreateTreatment(c.Request.Context(), actorOf(c), parent, in)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, treatment)
}

func (h *HerdHandler) GetTreatment(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	treatment, err := h.svc.GetTreatment(c.Request.Context(), actorOf(c), id)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, treatment)
}

func (h *HerdHandler) UpdateTreatment(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var in herd.TreatmentInput
	if !bind(c, h.logger, &in) {
		return
	}
	treatment, err := h.svc.UpdateTreatment(c.Request.Context(), actorOf(c), id, in)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, treatment)
}

// CreateNote records a note of ?animal=. A multipart "file" part is kept as
// the note's attachment.
func (h *HerdHandler) CreateNote(c *gin.Context) {
	parent, ok := h.parent(c)
	if !ok {
		return
	}
	var in herd.NoteInput
	if !bind(c, h.logger, &in) {
		return
	}

	var upload *herd.Upload
	header, err := c.FormFile("file")
	switch {
	case err == nil:
		f, err := header.Open()
		if err != nil {
			fail(c, h.logger, err)
			return
		}
		defer f.Close()
		upload = &herd.Upload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Body:        f,
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		h.logger.Warn("unreadable note upload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file upload"})
		return
	}

	note, err := h.svc.CreateNote(c.Request.Context(), actorOf(c), parent, in, upload)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

func (h *HerdHandler) GetNote(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	note, err := h.svc.GetNote(c.Request.Context(), actorOf(c), id)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

// NoteAttachment streams the file stored with a note.
func (h *HerdHandler) NoteAttachment(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	info, body, err := h.svc.OpenAttachment(c.Request.Context(), actorOf(c), id)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	defer body.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, info.Size, contentType, body, nil)
}
