package vap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

const apiDevelopersPath = "/developers"

// Developer is a profile record: a name and the stored profile document.
type Developer struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
	// Link is the server path of the uploaded profile document.
	Link string `json:"link"`
}

func (c *Client) ListDevelopers(ctx context.Context) ([]Developer, error) {
	var developers []Developer
	err := c.getJSON(ctx, call{
		op:       "list developers",
		fallback: "Failed to fetch developers",
		method:   http.MethodGet,
		path:     apiDevelopersPath,
	}, &developers)
	if err != nil {
		return nil, err
	}

	if developers == nil {
		developers = []Developer{}
	}

	return developers, nil
}

// CreateDeveloper uploads a new developer with its profile document.
func (c *Client) CreateDeveloper(ctx context.Context, name string, doc *Upload) (*Developer, error) {
	cl := call{
		op:       "add developer",
		fallback: "Failed to add developer",
		method:   http.MethodPost,
		path:     apiDevelopersPath,
	}

	if doc == nil {
		return nil, errors.New("add developer: profile document is required")
	}

	var developer Developer
	if err := c.sendMultipart(ctx, cl, map[string]string{"name": name}, doc, &developer); err != nil {
		return nil, err
	}

	return &developer, nil
}

// UpdateDeveloper renames a developer and, when doc is set, replaces its stored document.
func (c *Client) UpdateDeveloper(ctx context.Context, id, name string, doc *Upload) (*Developer, error) {
	cl := call{
		op:       "update developer",
		fallback: "Failed to update developer",
		method:   http.MethodPut,
		path:     fmt.Sprintf("%s/%s", apiDevelopersPath, url.PathEscape(id)),
	}

	var developer Developer
	if err := c.sendMultipart(ctx, cl, map[string]string{"name": name}, doc, &developer); err != nil {
		return nil, err
	}

	return &developer, nil
}

// FindDeveloper returns the developer with id, or nil.
func FindDeveloper(developers []Developer, id string) *Developer {
	for i := range developers {
		if developers[i].ID == id {
			return &developers[i]
		}
	}
	return nil
}
