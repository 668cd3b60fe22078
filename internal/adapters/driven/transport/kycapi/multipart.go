package kycapi

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"

	"github.com/custodia-labs/kycup/internal/core/domain"
)

// encodeMultipart builds the form body: a documentType field and one file
// part per slot named front, back and selfie.
func encodeMultipart(req domain.UploadRequest) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField(domain.FieldDocumentType, string(req.DocumentType)); err != nil {
		return nil, "", err
	}

	for _, slot := range domain.AllSlots() {
		file := req.File(slot)
		if len(file.Data) == 0 {
			return nil, "", fmt.Errorf("%w: %s", domain.ErrIncompleteSubmission, slot)
		}
		contentType := file.MIMEType
		if contentType == "" {
			contentType = domain.MIMEDefault
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, slot.String(), fileName(slot, file)))
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func fileName(slot domain.Slot, file domain.ImageFile) string {
	if file.Name != "" {
		return file.Name
	}
	return slot.String() + ".jpg"
}
