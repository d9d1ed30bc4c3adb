package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"campus-portal-backend/internal/models"
	"campus-portal-backend/internal/services"
	"campus-portal-backend/internal/storage"
)

const (
	maxImageSize     = 5 << 20
	maxMultipartForm = 32 << 20
	maxJSONBody      = 1 << 20
	imagesField      = "images"
	existingField    = "existingImages"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// listingForm is a parsed create/update request
type listingForm struct {
	fields  services.Fields
	uploads []storage.File
	// existing is nil when the request did not send existingImages
	existing []string
}

// parseListingForm accepts multipart, urlencoded and JSON bodies up to maxMultipartForm.
// Only multipart carries files.
func parseListingForm(w http.ResponseWriter, r *http.Request) (*listingForm, error) {
	form := &listingForm{fields: services.Fields{}}
	r.Body = http.MaxBytesReader(w, r.Body, maxMultipartForm)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		if err := decodeJSONFields(r.Body, form.fields); err != nil {
			return nil, err
		}
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxMultipartForm); err != nil {
			return nil, models.NewValidationError("", "invalid multipart body")
		}
		collectValues(r.MultipartForm.Value, form.fields)
		uploads, err := readUploads(r.MultipartForm.File[imagesField])
		if err != nil {
			return nil, err
		}
		form.uploads = uploads
	default:
		if err := r.ParseForm(); err != nil {
			return nil, models.NewValidationError("", "invalid form body")
		}
		collectValues(r.PostForm, form.fields)
	}

	if raw, ok := form.fields[existingField]; ok {
		delete(form.fields, existingField)
		existing := []string{}
		if raw != "" {
			if err := json.Unmarshal([]byte(raw), &existing); err != nil {
				return nil, models.NewValidationError(existingField, "must be a JSON array of URLs")
			}
		}
		form.existing = existing
	}
	return form, nil
}

func collectValues(values map[string][]string, dst services.Fields) {
	for key, vs := range values {
		if len(vs) > 0 {
			dst[key] = vs[0]
		}
	}
}

// decodeJSONFields flattens a JSON object into form-style text values.
// Arrays and objects keep their JSON text so the list fields parse them the same way.
func decodeJSONFields(body io.Reader, dst services.Fields) error {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return models.NewValidationError("", "invalid request body")
	}
	for key, value := range raw {
		var s string
		if err := json.Unmarshal(value, &s); err == nil {
			dst[key] = s
			continue
		}
		var v any
		if err := json.Unmarshal(value, &v); err != nil {
			return models.NewValidationError(key, "is malformed")
		}
		switch typed := v.(type) {
		case nil:
			continue
		case bool:
			dst[key] = strconv.FormatBool(typed)
		default:
			dst[key] = string(value)
		}
	}
	return nil
}

func readUploads(headers []*multipart.FileHeader) ([]storage.File, error) {
	files := make([]storage.File, 0, len(headers))
	for _, fh := range headers {
		file, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

func readUpload(fh *multipart.FileHeader) (storage.File, error) {
	if fh.Size > maxImageSize {
		return storage.File{}, models.NewValidationError(imagesField, fmt.Sprintf("%s exceeds 5MB", fh.Filename))
	}
	f, err := fh.Open()
	if err != nil {
		return storage.File{}, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImageSize+1))
	if err != nil {
		return storage.File{}, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
	}
	if len(data) > maxImageSize {
		return storage.File{}, models.NewValidationError(imagesField, fmt.Sprintf("%s exceeds 5MB", fh.Filename))
	}

	contentType := http.DetectContentType(data)
	if !allowedImageTypes[contentType] {
		return storage.File{}, models.NewValidationError(imagesField, "only image files are allowed")
	}
	return storage.File{Name: fh.Filename, ContentType: contentType, Data: data}, nil
}
