package gateway

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/models"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/session"
)

// Rejection is the canonical body of every reject endpoint.
type Rejection struct {
	Comment string `json:"comment" validate:"required"`
}

// Upload is a PDF submitted by the student.
type Upload struct {
	Filename string `json:"filename" validate:"required"`
	Data     []byte `json:"-" validate:"required"`
}

// PendingCVs lists CVs awaiting review.
func (c *Client) PendingCVs(ctx context.Context, s session.Session) ([]models.CV, error) {
	var cvs []models.CV
	if err := c.getJSON(ctx, &s, "/gestionnaire/cvs/pending", &cvs); err != nil {
		return nil, err
	}
	return cvs, nil
}

// ApproveCV approves a pending CV.
func (c *Client) ApproveCV(ctx context.Context, s session.Session, id int64) error {
	return c.sendJSON(ctx, &s, http.MethodPost, fmt.Sprintf("/gestionnaire/cv/%d/approve", id), nil, nil)
}

// RejectCV rejects a pending CV. A blank comment is refused before any request is made.
func (c *Client) RejectCV(ctx context.Context, s session.Session, id int64, comment string) error {
	body := Rejection{Comment: strings.TrimSpace(comment)}
	if err := c.check(body); err != nil {
		return err
	}
	return c.sendJSON(ctx, &s, http.MethodPost, fmt.Sprintf("/gestionnaire/cv/%d/reject", id), body, nil)
}

// CVPDF downloads a student's CV for review.
func (c *Client) CVPDF(ctx context.Context, s session.Session, id int64) (Blob, error) {
	return c.getBlob(ctx, &s, fmt.Sprintf("/gestionnaire/cv/%d/download", id))
}

// MyCV returns the student's own CV.
func (c *Client) MyCV(ctx context.Context, s session.Session) (models.CV, error) {
	var cv models.CV
	if err := c.getJSON(ctx, &s, "/student/cv", &cv); err != nil {
		return models.CV{}, err
	}
	return cv, nil
}

// MyCVPDF downloads the student's own CV.
func (c *Client) MyCVPDF(ctx context.Context, s session.Session) (Blob, error) {
	return c.getBlob(ctx, &s, "/student/cv/download")
}

// UploadCV replaces the student's CV. The file is sent as the multipart field pdfFile.
func (c *Client) UploadCV(ctx context.Context, s session.Session, upload Upload) (models.CV, error) {
	upload.Filename = filepath.Base(strings.TrimSpace(upload.Filename))
	if upload.Filename == "." || upload.Filename == "/" {
		upload.Filename = ""
	}
	if err := c.check(upload); err != nil {
		return models.CV{}, err
	}
	if !strings.EqualFold(filepath.Ext(upload.Filename), ".pdf") {
		return models.CV{}, invalid("filename", "pdf", "only PDF files are accepted")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {fmt.Sprintf(`form-data; name="pdfFile"; filename=%q`, upload.Filename)},
		"Content-Type":        {"application/pdf"},
	})
	if err != nil {
		return models.CV{}, fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := part.Write(upload.Data); err != nil {
		return models.CV{}, fmt.Errorf("write multipart part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return models.CV{}, fmt.Errorf("close multipart body: %w", err)
	}

	resp, err := c.do(ctx, call{
		method:      http.MethodPost,
		path:        "/student/cv",
		session:     &s,
		body:        &buf,
		contentType: writer.FormDataContentType(),
		accept:      "application/json",
	})
	if err != nil {
		return models.CV{}, err
	}

	var cv models.CV
	if err := decode("/student/cv", resp.body, &cv); err != nil {
		return models.CV{}, err
	}
	return cv, nil
}
