package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/services"
)

const multipartMemory = 8 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their JSON/form name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type registerRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=64"`
	Name      string `json:"name" validate:"required,min=2,max=100"`
	Email     string `json:"email" validate:"required,email,max=120"`
	Password  string `json:"password" validate:"required,min=6"`
	Password2 string `json:"password2" validate:"required,eqfield=Password"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type profileRequest struct {
	Name  string  `json:"name" validate:"required,min=2,max=100"`
	Email string  `json:"email" validate:"required,email,max=120"`
	Bio   *string `json:"bio" validate:"omitempty,max=500"`
}

type projectRequest struct {
	Title       string   `json:"title" validate:"required,min=3,max=200"`
	Description string   `json:"description" validate:"required,min=10,max=500"`
	Content     *string  `json:"content"`
	DemoURL     *string  `json:"demo_url" validate:"omitempty,url,max=200"`
	GithubURL   *string  `json:"github_url" validate:"omitempty,url,max=200"`
	IsPublished bool     `json:"is_published"`
	IsFeatured  bool     `json:"is_featured"`
	Tags        []string `json:"tags" validate:"dive,uuid"`
}

type tagRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=50"`
	Color string `json:"color" validate:"omitempty,len=7,hexcolor"`
}

type commentRequest struct {
	Content string `json:"content" validate:"required,min=5,max=1000"`
}

func (p projectRequest) input(image *services.ImageUpload) services.ProjectInput {
	in := services.ProjectInput{
		Title:       p.Title,
		Description: p.Description,
		Content:     p.Content,
		DemoURL:     p.DemoURL,
		GithubURL:   p.GithubURL,
		IsPublished: p.IsPublished,
		IsFeatured:  p.IsFeatured,
		Image:       image,
	}
	for _, raw := range p.Tags {
		if id, err := uuid.Parse(raw); err == nil {
			in.TagIDs = append(in.TagIDs, id)
		}
	}
	return in
}

// formRequest is a parsed request body. JSON bodies decode straight into the
// target; form bodies (urlencoded or multipart) fill it through fill.
type formRequest struct {
	r         *http.Request
	multipart bool
	json      bool
}

func parseBody(r *http.Request) (*formRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	f := &formRequest{r: r}

	var err error
	switch mediaType {
	case "application/json":
		f.json = true
		return f, nil
	case "multipart/form-data":
		f.multipart = true
		err = r.ParseMultipartForm(multipartMemory)
	default:
		err = r.ParseForm()
	}
	if err != nil {
		return nil, bodyError("form", err)
	}
	return f, nil
}

// decode binds the body into dst, using fill for form bodies, then validates dst.
func (f *formRequest) decode(dst any, fill func(values formValues)) error {
	if f.json {
		if err := json.NewDecoder(f.r.Body).Decode(dst); err != nil {
			return bodyError("json", err)
		}
	} else {
		fill(formValues{f.r})
	}
	return validateRequest(dst)
}

// file returns the uploaded file in field, or nil when none was sent.
// The caller closes the returned file.
func (f *formRequest) file(field string) (*services.ImageUpload, multipart.File, error) {
	if !f.multipart {
		return nil, nil, nil
	}
	file, header, err := f.r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, errs.NewMalformedPayloadError("multipart", err)
	}
	if header.Filename == "" || header.Size == 0 {
		file.Close()
		return nil, nil, nil
	}
	return &services.ImageUpload{Filename: header.Filename, Content: file}, file, nil
}

type formValues struct {
	r *http.Request
}

func (v formValues) String(key string) string {
	return v.r.PostFormValue(key)
}

// Optional returns nil when key is absent from the form.
func (v formValues) Optional(key string) *string {
	if _, ok := v.r.PostForm[key]; !ok {
		return nil
	}
	s := v.r.PostFormValue(key)
	return &s
}

// NonBlank is Optional with blank values dropped.
func (v formValues) NonBlank(key string) *string {
	s := v.Optional(key)
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

// Bool accepts the usual checkbox spellings.
func (v formValues) Bool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(v.r.PostFormValue(key))) {
	case "on", "true", "1", "y", "yes":
		return true
	}
	return false
}

func (v formValues) List(key string) []string {
	return v.r.PostForm[key]
}

func bodyError(kind string, err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errs.NewMaxBodySizeExceededError(maxErr.Limit)
	}
	if kind == "json" {
		return errs.NewInvalidJSONError(err)
	}
	return errs.NewMalformedPayloadError(kind, err)
}

func validateRequest(dst any) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errs.NewBadRequestError(err.Error())
	}

	fe := verrs[0]
	if fe.Tag() == "required" {
		return errs.NewMissingRequiredFieldError(fe.Field())
	}
	return errs.NewInvalidFieldError(fe.Field(), validationReason(fe))
}

func validationReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "eqfield":
		return "passwords must match"
	case "hexcolor":
		return "must be a hex colour like #007bff"
	case "uuid":
		return "must be a valid id"
	}
	return "is invalid"
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return uuid.Nil, errs.NewBadRequestError("missing " + name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errs.NewBadRequestError("invalid " + name)
	}
	return id, nil
}

// intQuery reads a positive integer query parameter, falling back to def.
func intQuery(r *http.Request, key string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 1 {
		return def
	}
	return n
}
