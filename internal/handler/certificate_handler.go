package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/cursohub/cursohub-api/pkg/errors"
	"github.com/cursohub/cursohub-api/pkg/response"
)

type certificateDownloader interface {
	ResolveDownload(token string) (*os.File, error)
}

// CertificateHandler streams certificate files for signed tokens.
type CertificateHandler struct {
	service certificateDownloader
}

// NewCertificateHandler constructs the handler.
func NewCertificateHandler(service certificateDownloader) *CertificateHandler {
	return &CertificateHandler{service: service}
}

// Download godoc
// @Summary Download a certificate
// @Description Streams the PDF for a valid signed token; no session is required, the token is the credential
// @Tags Certificates
// @Produce application/pdf
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /certificates/download [get]
func (h *CertificateHandler) Download(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}

	file, err := h.service.ResolveDownload(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read certificate"))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filepath.Base(file.Name())+`"`)
	c.DataFromReader(http.StatusOK, info.Size(), "application/pdf", file, nil)
}
