package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/lvillar/brandform"
	"github.com/lvillar/brandform/branding"
	"github.com/lvillar/brandform/config"
	"github.com/lvillar/brandform/template"
	"github.com/lvillar/brandform/vision"
)

type generateRequest struct {
	CompanyName   string   `json:"company_name"`
	DocumentTitle string   `json:"document_title"`
	CopyText      string   `json:"copy_text"`
	PageSize      string   `json:"page_size"`
	FooterText    string   `json:"footer_text"`
	FileData      []string `json:"file_data"`
	UseAI         *bool    `json:"use_ai"`
}

type convertRequest struct {
	FileData      string              `json:"file_data"`
	ImageData     string              `json:"image_data"`
	DocumentTitle string              `json:"document_title"`
	PageFields    template.PageFields `json:"page_fields"` // PDF templates only
}

// handleGenerate builds a branded fillable PDF. With an enhancer configured
// and use_ai left on, the uploaded brand materials and brief drive the form
// design; otherwise the default intake layout is used.
func (s *Server) handleGenerate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	images := make([][]byte, 0, len(req.FileData))
	for i, encoded := range req.FileData {
		raw, err := template.DecodeBase64(encoded)
		if err != nil {
			jsonError(c, http.StatusBadRequest, fmt.Errorf("file_data[%d]: %w", i, err))
			return
		}
		images = append(images, raw)
	}

	// The first upload doubles as the logo and the palette source.
	logoPath := ""
	if len(images) > 0 {
		path, err := saveLogo(images[0])
		if err != nil {
			s.log.WithError(err).Warn("could not stage logo upload")
		} else if path != "" {
			logoPath = path
			defer os.Remove(path)
		}
	}

	theme := branding.Default()
	if logoPath != "" {
		if t, err := branding.FromLogo(logoPath); err == nil {
			theme = t
		} else {
			s.log.WithError(err).Warn("logo palette extraction failed, using default theme")
		}
	}

	cfg := config.Minimal(logoPath, req.CompanyName, req.DocumentTitle, "")
	if req.PageSize != "" {
		cfg.PageSize = req.PageSize
	}
	if req.FooterText != "" {
		cfg.FooterText = req.FooterText
	}

	useAI := req.UseAI == nil || *req.UseAI
	if useAI && s.enhancer != nil && (req.CopyText != "" || len(images) > 0) {
		enh, err := s.enhancer.EnhanceBrand(c.Request.Context(), images, req.CopyText, req.CompanyName, req.DocumentTitle)
		if err != nil {
			s.log.WithError(err).Warn("brand enhancement failed, falling back to default layout")
		} else {
			applyEnhancement(cfg, enh, req.FooterText != "")
			enh.ApplyColors(theme)
		}
	}

	builder, err := brandform.New(cfg, brandform.WithTheme(theme), brandform.WithLogger(s.log))
	if err != nil {
		jsonError(c, http.StatusBadRequest, err)
		return
	}
	var buf bytes.Buffer
	if err := builder.Build(&buf); err != nil {
		s.log.WithError(err).Error("form build failed")
		jsonError(c, http.StatusInternalServerError, err)
		return
	}

	s.log.WithFields(logrus.Fields{
		"title": cfg.DocumentTitle,
		"bytes": buf.Len(),
		"ai":    useAI && s.enhancer != nil,
	}).Info("form generated")
	sendPDF(c, cfg.DocumentTitle, buf.Bytes())
}

// applyEnhancement folds the model's design into the configuration. The
// model owns the subtitle, and the footer too unless the request pinned one.
func applyEnhancement(cfg *config.Document, enh *vision.Enhancement, footerPinned bool) {
	cfg.DocumentSubtitle = ""
	if !footerPinned {
		cfg.FooterText = ""
	}
	enh.Apply(cfg)
}

// handleConvertTemplate turns an uploaded PDF or image template into a
// fillable PDF. Image input runs through the detector; PDF input keeps its
// vector pages, so widget positions come from the request's page_fields.
func (s *Server) handleConvertTemplate(c *gin.Context) {
	var req convertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	encoded := req.FileData
	if encoded == "" {
		encoded = req.ImageData
	}
	if encoded == "" {
		jsonError(c, http.StatusBadRequest, errors.New("file_data is required"))
		return
	}
	raw, err := template.DecodeBase64(encoded)
	if err != nil {
		jsonError(c, http.StatusBadRequest, fmt.Errorf("file_data: %w", err))
		return
	}

	title := req.DocumentTitle
	if title == "" {
		title = "Converted Template"
	}
	out, count, err := s.converter.Convert(c.Request.Context(), raw, title, req.PageFields)
	if err != nil {
		s.log.WithError(err).Error("template conversion failed")
		jsonError(c, http.StatusInternalServerError, err)
		return
	}

	s.log.WithFields(logrus.Fields{
		"title":  title,
		"fields": count,
	}).Info("template converted")
	c.Header("X-Field-Count", strconv.Itoa(count))
	sendPDF(c, title, out)
}

// sendPDF writes the document as a download attachment named after the
// title.
func sendPDF(c *gin.Context, title string, pdf []byte) {
	if title == "" {
		title = "document"
	}
	filename := config.Slug(title) + ".pdf"
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// saveLogo stages an uploaded image on disk so the PDF layer and palette
// extractor can read it. Non-image uploads are skipped rather than rejected.
func saveLogo(data []byte) (string, error) {
	var ext string
	switch http.DetectContentType(data) {
	case "image/png":
		ext = ".png"
	case "image/jpeg":
		ext = ".jpg"
	case "image/gif":
		ext = ".gif"
	default:
		return "", nil
	}
	f, err := os.CreateTemp("", "brandform-logo-*"+ext)
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
