// Package prompt holds prompt templates for multimodal chat models.
package prompt

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Abraxas-365/kbloader/llm"
)

// reserved variables are resolved by the template itself.
var reserved = []string{"url", "path", "detail"}

// ImagePromptTemplate formats an image reference for a multimodal model.
// Template values that are strings may contain {name} placeholders; "url",
// "path" and "detail" may also be given directly when formatting.
type ImagePromptTemplate struct {
	Template       map[string]any
	InputVariables []string
}

// NewImagePromptTemplate validates that inputVariables do not shadow the
// reserved url, path and detail variables.
func NewImagePromptTemplate(template map[string]any, inputVariables ...string) (*ImagePromptTemplate, error) {
	var overlap []string
	for _, name := range inputVariables {
		if slices.Contains(reserved, name) && !slices.Contains(overlap, name) {
			overlap = append(overlap, name)
		}
	}
	if len(overlap) > 0 {
		slices.Sort(overlap)
		return nil, &llm.LLMError{
			Op:      "NewImagePromptTemplate",
			Code:    llm.ErrInvalidInput,
			Message: fmt.Sprintf("input variables cannot contain any of 'url', 'path', or 'detail'; found: %s", strings.Join(overlap, ", ")),
		}
	}

	if template == nil {
		template = make(map[string]any)
	}
	return &ImagePromptTemplate{
		Template:       template,
		InputVariables: inputVariables,
	}, nil
}

// PromptType identifies this template kind in serialized prompts.
func (t *ImagePromptTemplate) PromptType() string {
	return "image-prompt"
}

// Format resolves the template into an image reference. A url wins over a
// path; a path is read and inlined as a data URL.
func (t *ImagePromptTemplate) Format(vars map[string]any) (llm.ImageURL, error) {
	formatted := make(map[string]any, len(t.Template))
	for k, v := range t.Template {
		s, ok := v.(string)
		if !ok {
			formatted[k] = v
			continue
		}
		out, err := FormatString(s, vars)
		if err != nil {
			return llm.ImageURL{}, llm.NewError("Format", llm.ErrInvalidInput, fmt.Sprintf("template field %q", k), err)
		}
		formatted[k] = out
	}

	url := pick("url", vars, formatted)
	path := pick("path", vars, formatted)
	detail := pick("detail", vars, formatted)

	if url == "" {
		if path == "" {
			return llm.ImageURL{}, llm.NewError("Format", llm.ErrInvalidInput, "image template needs a url or a path", nil)
		}
		dataURL, err := ImageToDataURL(path)
		if err != nil {
			return llm.ImageURL{}, err
		}
		url = dataURL
	}

	return llm.ImageURL{URL: url, Detail: detail}, nil
}

// FormatPrompt formats the template into a prompt value.
func (t *ImagePromptTemplate) FormatPrompt(vars map[string]any) (ImagePromptValue, error) {
	image, err := t.Format(vars)
	if err != nil {
		return ImagePromptValue{}, err
	}
	return ImagePromptValue{ImageURL: image}, nil
}

// pick returns the first non-empty string among vars[key] and formatted[key].
func pick(key string, vars, formatted map[string]any) string {
	if s, ok := vars[key].(string); ok && s != "" {
		return s
	}
	if s, ok := formatted[key].(string); ok {
		return s
	}
	return ""
}

// ImagePromptValue is a formatted image prompt.
type ImagePromptValue struct {
	ImageURL llm.ImageURL
}

func (v ImagePromptValue) String() string {
	return v.ImageURL.URL
}

// Messages returns the value as a single user message carrying the image.
func (v ImagePromptValue) Messages() []llm.Message {
	return []llm.Message{{
		Role:   llm.RoleUser,
		Images: []llm.ImageURL{v.ImageURL},
	}}
}

// ImageToDataURL reads the image at path and returns it as a base64 data
// URL. The media type comes from the file extension, or from the content
// when the extension is unknown.
func ImageToDataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", llm.NewError("ImageToDataURL", llm.ErrInvalidInput, "failed to read image", err)
	}

	mediaType, _, _ := strings.Cut(mime.TypeByExtension(filepath.Ext(path)), ";")
	if !strings.HasPrefix(mediaType, "image/") {
		mediaType, _, _ = strings.Cut(http.DetectContentType(data), ";")
	}
	if !strings.HasPrefix(mediaType, "image/") {
		return "", llm.NewError("ImageToDataURL", llm.ErrUnsupportedContent,
			fmt.Sprintf("%s is not an image (detected %s)", path, mediaType), nil)
	}

	return llm.DataURL(mediaType, data), nil
}
