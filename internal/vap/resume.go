package vap

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

const (
	apiResumesPath  = "/resumes"
	apiGeneratePath = "/resumes/generate"
)

// Document formats a generated resume can be requested in.
const (
	DocTypeDOCX = "docx"
	DocTypePDF  = "pdf"
)

// DeveloperSummary is the denormalised developer embedded in a resume.
type DeveloperSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Link string `json:"link"`
}

// Resume is a generated document. It never changes after creation except for PDFURL,
// which is filled in by a conversion.
type Resume struct {
	ID             string `json:"id" validate:"required"`
	Title          string `json:"title"`
	JobDescription string `json:"jobDescription"`
	// Skills is free text separated by commas or whitespace; nil when the backend sent null.
	Skills      *string          `json:"skills"`
	ResumeURL   string           `json:"resumeUrl" validate:"required"`
	PDFURL      string           `json:"pdfUrl,omitempty"`
	DeveloperID string           `json:"developerId"`
	Developer   DeveloperSummary `json:"developer"`
	CreatedAt   string           `json:"createdAt"`
}

// OwnerID returns the id of the developer the resume was generated for.
func (r *Resume) OwnerID() string {
	if r.Developer.ID != "" {
		return r.Developer.ID
	}
	return r.DeveloperID
}

// SkillsText returns the skills text and whether it was present.
func (r *Resume) SkillsText() (string, bool) {
	if r.Skills == nil {
		return "", false
	}
	return *r.Skills, true
}

// GenerateRequest is the body of a generation request.
type GenerateRequest struct {
	JobDescription string `json:"jobDescription"`
	DeveloperID    string `json:"developerId"`
	DocType        string `json:"docType"`
}

// generatedResume is validated more loosely than listed resumes: the backend may answer
// a generation with only the document locations.
type generatedResume Resume

type conversionResult struct {
	PDFURL string `json:"pdfUrl" validate:"required"`
}

func (c *Client) ListResumes(ctx context.Context) ([]Resume, error) {
	var resumes []Resume
	err := c.getJSON(ctx, call{
		op:       "list resumes",
		fallback: "Failed to fetch resumes",
		method:   http.MethodGet,
		path:     apiResumesPath,
	}, &resumes)
	if err != nil {
		return nil, err
	}

	if resumes == nil {
		resumes = []Resume{}
	}

	return resumes, nil
}

// GenerateResume asks the backend to tailor a resume of a developer to a job description.
func (c *Client) GenerateResume(ctx context.Context, req GenerateRequest) (*Resume, error) {
	var generated generatedResume
	err := c.sendJSON(ctx, call{
		op:       "generate resume",
		fallback: "Failed to generate resume",
		method:   http.MethodPost,
		path:     apiGeneratePath,
	}, req, &generated)
	if err != nil {
		return nil, err
	}

	resume := Resume(generated)
	if resume.DeveloperID == "" {
		resume.DeveloperID = req.DeveloperID
	}
	if resume.JobDescription == "" {
		resume.JobDescription = req.JobDescription
	}

	return &resume, nil
}

// ConvertToPDF asks the backend to render the resume's document as PDF and returns the PDF location.
func (c *Client) ConvertToPDF(ctx context.Context, resumeID string) (string, error) {
	var result conversionResult
	err := c.sendJSON(ctx, call{
		op:       "convert resume",
		fallback: "Failed to convert resume to PDF",
		method:   http.MethodPost,
		path:     fmt.Sprintf("%s/%s/convert-to-pdf", apiResumesPath, url.PathEscape(resumeID)),
	}, struct{}{}, &result)
	if err != nil {
		return "", err
	}

	return result.PDFURL, nil
}

// FindResume returns the resume with id, or nil.
func FindResume(resumes []Resume, id string) *Resume {
	for i := range resumes {
		if resumes[i].ID == id {
			return &resumes[i]
		}
	}
	return nil
}
